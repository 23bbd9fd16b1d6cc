package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind is the payload "t" discriminator.
type Kind string

// Payload kinds
const (
	KindScan   Kind = "scan"
	KindDev    Kind = "dev"
	KindBind   Kind = "bind"
	KindBindOK Kind = "bindok"
	KindStatus Kind = "status"
	KindDat    Kind = "dat"
	KindCmd    Kind = "cmd"
	KindRes    Kind = "res"
)

// Payload is a decrypted inbound payload. The concrete type is one of
// *DevPayload, *BindOKPayload, *DatPayload, *ResPayload or *UnknownPayload.
type Payload interface {
	Kind() Kind
}

// DevPayload is the appliance's reply to a scan.
type DevPayload struct {
	T      Kind   `json:"t"`
	CID    string `json:"cid"`
	Mac    string `json:"mac"`
	Name   string `json:"name"`
	Ver    string `json:"ver,omitempty"`
	Brand  string `json:"brand,omitempty"`
	Model  string `json:"model,omitempty"`
	Series string `json:"series,omitempty"`
}

func (p *DevPayload) Kind() Kind { return KindDev }

// DeclaredID is the id the appliance reports about itself inside the payload.
func (p *DevPayload) DeclaredID() string {
	if p.CID != "" {
		return p.CID
	}
	return p.Mac
}

// BindOKPayload confirms a bind and carries the session key.
type BindOKPayload struct {
	T   Kind   `json:"t"`
	Mac string `json:"mac"`
	Key string `json:"key"`
	R   int    `json:"r"`
}

func (p *BindOKPayload) Kind() Kind { return KindBindOK }

// DatPayload is a status report: Cols[i] has value Dat[i].
type DatPayload struct {
	T    Kind     `json:"t"`
	Mac  string   `json:"mac"`
	R    int      `json:"r"`
	Cols []string `json:"cols"`
	Dat  []any    `json:"dat"`
}

func (p *DatPayload) Kind() Kind { return KindDat }

// ResPayload is a command result: Opt[i] has value Values()[i].
type ResPayload struct {
	T   Kind     `json:"t"`
	Mac string   `json:"mac"`
	R   int      `json:"r"`
	Opt []string `json:"opt"`
	P   []any    `json:"p"`
	Val []any    `json:"val"`
}

func (p *ResPayload) Kind() Kind { return KindRes }

// Values returns the "p" list, or "val" when the firmware omits "p".
func (p *ResPayload) Values() []any {
	if p.P != nil {
		return p.P
	}
	return p.Val
}

// UnknownPayload is any payload kind the client does not act on.
type UnknownPayload struct {
	Type string
	Raw  json.RawMessage
}

func (p *UnknownPayload) Kind() Kind { return Kind(p.Type) }

// ParsePayload decodes decrypted pack JSON into the matching payload type.
// Numeric values in dat/p/val lists are returned as int when integral.
func ParsePayload(plain []byte) (Payload, error) {
	var head struct {
		T string `json:"t"`
	}
	if err := json.Unmarshal(plain, &head); err != nil {
		return nil, NewDecodeError("malformed payload", err)
	}

	var p Payload
	switch Kind(head.T) {
	case KindDev:
		p = &DevPayload{}
	case KindBindOK:
		p = &BindOKPayload{}
	case KindDat:
		p = &DatPayload{}
	case KindRes:
		p = &ResPayload{}
	default:
		return &UnknownPayload{Type: head.T, Raw: append(json.RawMessage(nil), plain...)}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(plain))
	dec.UseNumber()
	if err := dec.Decode(p); err != nil {
		return nil, NewDecodeError(fmt.Sprintf("malformed %s payload", head.T), err)
	}

	switch v := p.(type) {
	case *DatPayload:
		normalizeValues(v.Dat)
	case *ResPayload:
		normalizeValues(v.P)
		normalizeValues(v.Val)
	}
	return p, nil
}

func normalizeValues(values []any) {
	for i, v := range values {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i64, err := n.Int64(); err == nil {
			values[i] = int(i64)
		} else if f, err := n.Float64(); err == nil {
			values[i] = f
		}
	}
}

// Outbound payloads

// ScanRequest asks appliances to identify themselves. It is sent unencrypted.
type ScanRequest struct {
	T Kind `json:"t"`
}

// BindRequest asks the appliance for a session key.
type BindRequest struct {
	Mac string `json:"mac"`
	T   Kind   `json:"t"`
	UID int    `json:"uid"`
}

// StatusRequest polls the listed codes.
type StatusRequest struct {
	Cols []string `json:"cols"`
	Mac  string   `json:"mac"`
	T    Kind     `json:"t"`
}

// CommandRequest sets Opt[i] to P[i].
type CommandRequest struct {
	Opt []string `json:"opt"`
	P   []int    `json:"p"`
	T   Kind     `json:"t"`
}

func NewScanRequest() *ScanRequest {
	return &ScanRequest{T: KindScan}
}

func NewBindRequest(id string) *BindRequest {
	return &BindRequest{Mac: id, T: KindBind, UID: 0}
}

func NewStatusRequest(id string, codes []string) *StatusRequest {
	return &StatusRequest{Cols: codes, Mac: id, T: KindStatus}
}

// NewCommandRequest pairs codes with values by position. The lists must have equal length.
func NewCommandRequest(codes []string, values []int) (*CommandRequest, error) {
	if len(codes) != len(values) {
		return nil, fmt.Errorf("%w: %d codes, %d values", ErrLengthMismatch, len(codes), len(values))
	}
	if len(codes) == 0 {
		return nil, ErrEmptyCommand
	}
	return &CommandRequest{Opt: codes, P: values, T: KindCmd}, nil
}
