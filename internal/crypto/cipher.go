package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
)

// KeySize is the AES-128 key length used by both pack ciphers.
const KeySize = 16

// Errors
var (
	ErrInvalidKeySize    = errors.New("crypto: invalid key size, must be 16 bytes")
	ErrInvalidCiphertext = errors.New("crypto: invalid ciphertext")
	ErrInvalidPadding    = errors.New("crypto: invalid padding")
	ErrMissingTag        = errors.New("crypto: missing authentication tag")
	ErrAuthentication    = errors.New("crypto: message authentication failed")
)

// Sealed is an encrypted pack as carried in the envelope.
type Sealed struct {
	Pack string // base64 ciphertext
	Tag  string // base64 GCM tag, empty for version 1
}

// Cipher encrypts and decrypts envelope packs.
// An empty key selects the cipher's generic handshake key.
type Cipher interface {
	Encrypt(plaintext, key []byte) (Sealed, error)
	Decrypt(sealed Sealed, key []byte) ([]byte, error)
}

func newBlock(key, generic []byte) (cipher.Block, error) {
	if len(key) == 0 {
		key = generic
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidKeySize, len(key))
	}
	return aes.NewCipher(key)
}

func decodeBase64(field, s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not base64: %v", ErrInvalidCiphertext, field, err)
	}
	return data, nil
}
