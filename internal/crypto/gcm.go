package crypto

import (
	"crypto/cipher"
	"encoding/base64"
	"fmt"
)

// GenericKeyV2 is the well-known handshake key for version 2 packs.
const GenericKeyV2 = "{yxAHAY_Lm6pbC/<"

// TagSize is the GCM authentication tag length carried in the envelope.
const TagSize = 16

var (
	gcmNonce = []byte{0x54, 0x40, 0x78, 0x44, 0x49, 0x67, 0x5a, 0x51, 0x6c, 0x5e, 0x63, 0x13}
	gcmAAD   = []byte("qualcomm-test")
)

// GCM is the version 2 pack cipher: AES-128-GCM with the appliance's fixed nonce and
// associated data. The tag is detached from the ciphertext.
type GCM struct {
	generic []byte
}

// NewGCM returns a version 2 cipher using GenericKeyV2 as the handshake key.
func NewGCM() *GCM {
	return &GCM{generic: []byte(GenericKeyV2)}
}

func (c *GCM) aead(key []byte) (cipher.AEAD, error) {
	block, err := newBlock(key, c.generic)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext and splits the output into pack and tag.
func (c *GCM) Encrypt(plaintext, key []byte) (Sealed, error) {
	aead, err := c.aead(key)
	if err != nil {
		return Sealed{}, err
	}

	out := aead.Seal(nil, gcmNonce, plaintext, gcmAAD)
	ct, tag := out[:len(out)-TagSize], out[len(out)-TagSize:]

	return Sealed{
		Pack: base64.StdEncoding.EncodeToString(ct),
		Tag:  base64.StdEncoding.EncodeToString(tag),
	}, nil
}

// Decrypt verifies the tag and opens the pack. It fails closed: a missing or
// mismatching tag never yields plaintext.
func (c *GCM) Decrypt(sealed Sealed, key []byte) ([]byte, error) {
	if sealed.Tag == "" {
		return nil, ErrMissingTag
	}

	aead, err := c.aead(key)
	if err != nil {
		return nil, err
	}

	ct, err := decodeBase64("pack", sealed.Pack)
	if err != nil {
		return nil, err
	}
	tag, err := decodeBase64("tag", sealed.Tag)
	if err != nil {
		return nil, err
	}
	if len(tag) != TagSize {
		return nil, fmt.Errorf("%w: tag is %d bytes", ErrAuthentication, len(tag))
	}

	plain, err := aead.Open(nil, gcmNonce, append(ct, tag...), gcmAAD)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	return plain, nil
}
