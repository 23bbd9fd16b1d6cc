package protocol

import (
	"encoding/json"
	"fmt"
)

// Wire constants
const (
	EnvelopeType = "pack"
	AppCID       = "app"

	// DefaultPort is the appliance's UDP port.
	DefaultPort = 7000
)

// Sequence is the envelope "i" field.
type Sequence int

const (
	// SeqSteady marks session packets encrypted with the session key.
	SeqSteady Sequence = 0
	// SeqHandshake marks scan/bind packets encrypted with the generic key.
	SeqHandshake Sequence = 1
)

// Version is the pack encryption scheme negotiated for a session.
type Version int

const (
	V1 Version = 1 // AES-ECB
	V2 Version = 2 // AES-GCM with tag
)

func (v Version) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	default:
		return fmt.Sprintf("Version(%d)", int(v))
	}
}

// Envelope is the outer JSON object of every packet.
type Envelope struct {
	TCID string `json:"tcid"`
	CID  string `json:"cid"`
	I    int    `json:"i"`
	T    string `json:"t"`
	UID  int    `json:"uid"`
	Tag  string `json:"tag,omitempty"`
	Pack string `json:"pack"`
}

// Version reports the encryption version signalled on the wire by this envelope.
func (e *Envelope) Version() Version {
	if e.Tag != "" {
		return V2
	}
	return V1
}

// Handshake reports whether the envelope belongs to the handshake phase.
func (e *Envelope) Handshake() bool {
	return e.I == int(SeqHandshake)
}

func (e *Envelope) String() string {
	return fmt.Sprintf("Envelope{cid=%s, tcid=%s, i=%d, %s, pack_len=%d}",
		e.CID, e.TCID, e.I, e.Version(), len(e.Pack))
}

// ParseEnvelope decodes the outer JSON object without touching the pack.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, NewDecodeError("malformed envelope", err)
	}
	if env.T != EnvelopeType {
		return nil, NewDecodeError(fmt.Sprintf("unexpected envelope type %q", env.T), nil)
	}
	if env.Pack == "" {
		return nil, NewDecodeError("envelope has no pack", nil)
	}
	return &env, nil
}
