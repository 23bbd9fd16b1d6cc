package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/muurk/greelink/internal/crypto"
)

// Codec converts payloads to wire envelopes and back.
// It holds only the two pack ciphers; the negotiated version and key are passed in
// on every call.
type Codec struct {
	v1 crypto.Cipher
	v2 crypto.Cipher
}

// NewCodec returns a codec using the appliance ciphers.
func NewCodec() *Codec {
	return NewCodecWithCiphers(crypto.NewECB(), crypto.NewGCM())
}

// NewCodecWithCiphers returns a codec with explicit version 1 and version 2 ciphers.
func NewCodecWithCiphers(v1, v2 crypto.Cipher) *Codec {
	return &Codec{v1: v1, v2: v2}
}

func (c *Codec) cipher(v Version) (crypto.Cipher, error) {
	switch v {
	case V1:
		return c.v1, nil
	case V2:
		return c.v2, nil
	default:
		return nil, fmt.Errorf("unsupported encryption version %d", int(v))
	}
}

// EncodeScan returns the discovery request. Scan is the only unencrypted packet.
func EncodeScan() []byte {
	data, _ := json.Marshal(NewScanRequest())
	return data
}

// Encode wraps payload in an envelope addressed to target.
// Handshake packets (SeqHandshake) always use the generic key and ignore key.
func (c *Codec) Encode(payload any, target string, key []byte, seq Sequence, v Version) ([]byte, error) {
	if seq == SeqHandshake {
		key = nil
	}
	env := Envelope{
		TCID: target,
		CID:  AppCID,
		I:    int(seq),
		T:    EnvelopeType,
		UID:  0,
	}
	return c.Wrap(env, payload, key, v)
}

// Wrap encrypts payload into env and marshals the result. Routing fields of env are
// kept as given; Pack and Tag are overwritten. Tag is set only for V2.
func (c *Codec) Wrap(env Envelope, payload any, key []byte, v Version) ([]byte, error) {
	ciph, err := c.cipher(v)
	if err != nil {
		return nil, err
	}

	plain, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	sealed, err := ciph.Encrypt(plain, key)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt payload: %w", err)
	}

	env.Pack = sealed.Pack
	env.Tag = ""
	if v == V2 {
		env.Tag = sealed.Tag
	}

	return json.Marshal(env)
}

// Decode parses and decrypts an inbound envelope.
//
// The pack is decrypted with the negotiated version, except that a tagged envelope
// is always version 2. Handshake envelopes (i=1) are decrypted with the generic key.
func (c *Codec) Decode(data []byte, key []byte, negotiated Version) (*Envelope, Payload, error) {
	env, err := ParseEnvelope(data)
	if err != nil {
		return nil, nil, err
	}

	v := negotiated
	if env.Tag != "" {
		v = V2
	} else if v == V2 {
		return env, nil, NewDecodeError("version 2 envelope without tag", crypto.ErrMissingTag)
	}

	ciph, err := c.cipher(v)
	if err != nil {
		return env, nil, NewDecodeError("cannot select cipher", err)
	}

	if env.Handshake() {
		key = nil
	}

	plain, err := ciph.Decrypt(crypto.Sealed{Pack: env.Pack, Tag: env.Tag}, key)
	if err != nil {
		return env, nil, NewDecodeError(fmt.Sprintf("failed to decrypt %s pack", v), err)
	}

	payload, err := ParsePayload(plain)
	if err != nil {
		return env, nil, err
	}
	return env, payload, nil
}
