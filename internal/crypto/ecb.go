package crypto

import (
	"bytes"
	"encoding/base64"
	"fmt"
)

// GenericKeyV1 is the well-known handshake key for version 1 packs.
const GenericKeyV1 = "a3K8Bx%2r8Y7#xDh"

// ECB is the version 1 pack cipher: AES-128-ECB with PKCS#7 padding.
// The standard library deliberately has no ECB mode, so blocks are processed here.
type ECB struct {
	generic []byte
}

// NewECB returns a version 1 cipher using GenericKeyV1 as the handshake key.
func NewECB() *ECB {
	return &ECB{generic: []byte(GenericKeyV1)}
}

// Encrypt pads and encrypts plaintext. The returned Tag is always empty.
func (c *ECB) Encrypt(plaintext, key []byte) (Sealed, error) {
	block, err := newBlock(key, c.generic)
	if err != nil {
		return Sealed{}, err
	}

	bs := block.BlockSize()
	padded := pkcs7Pad(plaintext, bs)
	out := make([]byte, len(padded))
	for i := 0; i < len(padded); i += bs {
		block.Encrypt(out[i:i+bs], padded[i:i+bs])
	}

	return Sealed{Pack: base64.StdEncoding.EncodeToString(out)}, nil
}

// Decrypt reverses Encrypt. A Tag on the input is ignored.
func (c *ECB) Decrypt(sealed Sealed, key []byte) ([]byte, error) {
	block, err := newBlock(key, c.generic)
	if err != nil {
		return nil, err
	}

	data, err := decodeBase64("pack", sealed.Pack)
	if err != nil {
		return nil, err
	}

	bs := block.BlockSize()
	if len(data) == 0 || len(data)%bs != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of %d", ErrInvalidCiphertext, len(data), bs)
	}

	out := make([]byte, len(data))
	for i := 0; i < len(data); i += bs {
		block.Decrypt(out[i:i+bs], data[i:i+bs])
	}

	return pkcs7Unpad(out, bs)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(append([]byte{}, data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrInvalidPadding
		}
	}
	return data[:len(data)-n], nil
}
