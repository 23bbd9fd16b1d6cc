package crypto

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	sessionKey := []byte("0123456789abcdef")

	tests := []struct {
		name    string
		cipher  Cipher
		key     []byte
		payload []byte
		wantTag bool
	}{
		{"v1 generic key", NewECB(), nil, []byte(`{"t":"scan"}`), false},
		{"v1 session key", NewECB(), sessionKey, []byte(`{"t":"status","cols":["Pow"]}`), false},
		{"v1 block aligned", NewECB(), nil, bytes.Repeat([]byte("x"), 32), false},
		{"v2 generic key", NewGCM(), nil, []byte(`{"t":"bind","uid":0}`), true},
		{"v2 session key", NewGCM(), sessionKey, []byte(`{"t":"cmd","opt":["Pow"],"p":[1]}`), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := tt.cipher.Encrypt(tt.payload, tt.key)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if (sealed.Tag != "") != tt.wantTag {
				t.Errorf("Encrypt() tag = %q, wantTag %v", sealed.Tag, tt.wantTag)
			}

			got, err := tt.cipher.Decrypt(sealed, tt.key)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(got, tt.payload) {
				t.Errorf("Decrypt() = %q, want %q", got, tt.payload)
			}
		})
	}
}

func TestECBKnownVector(t *testing.T) {
	// {"t":"scan"} under the generic key, as sent by the vendor app.
	sealed, err := NewECB().Encrypt([]byte(`{"t":"scan"}`), nil)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	raw, _ := base64.StdEncoding.DecodeString(sealed.Pack)
	if len(raw) != 16 {
		t.Errorf("ciphertext length = %d, want 16", len(raw))
	}
}

func TestECBDecryptErrors(t *testing.T) {
	c := NewECB()

	tests := []struct {
		name   string
		sealed Sealed
		key    []byte
		want   error
	}{
		{"not base64", Sealed{Pack: "%%%"}, nil, ErrInvalidCiphertext},
		{"not block aligned", Sealed{Pack: base64.StdEncoding.EncodeToString([]byte("short"))}, nil, ErrInvalidCiphertext},
		{"empty", Sealed{Pack: ""}, nil, ErrInvalidCiphertext},
		{"bad key size", Sealed{Pack: "AAAA"}, []byte("short"), ErrInvalidKeySize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decrypt(tt.sealed, tt.key)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decrypt() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestECBWrongKeyFailsPadding(t *testing.T) {
	c := NewECB()
	sealed, err := c.Encrypt([]byte(`{"t":"dat"}`), []byte("0123456789abcdef"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	plain, err := c.Decrypt(sealed, nil)
	if err == nil && bytes.Equal(plain, []byte(`{"t":"dat"}`)) {
		t.Error("Decrypt() with the wrong key returned the original plaintext")
	}
}

func TestGCMTamperedTag(t *testing.T) {
	c := NewGCM()
	sealed, err := c.Encrypt([]byte(`{"t":"bindok","key":"0123456789abcdef"}`), nil)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	tag, _ := base64.StdEncoding.DecodeString(sealed.Tag)
	tag[0] ^= 0xff
	sealed.Tag = base64.StdEncoding.EncodeToString(tag)

	if _, err := c.Decrypt(sealed, nil); !errors.Is(err, ErrAuthentication) {
		t.Errorf("Decrypt() error = %v, want %v", err, ErrAuthentication)
	}
}

func TestGCMMissingTag(t *testing.T) {
	c := NewGCM()
	sealed, err := c.Encrypt([]byte(`{}`), nil)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	sealed.Tag = ""

	if _, err := c.Decrypt(sealed, nil); !errors.Is(err, ErrMissingTag) {
		t.Errorf("Decrypt() error = %v, want %v", err, ErrMissingTag)
	}
}

func TestGCMWrongKey(t *testing.T) {
	c := NewGCM()
	sealed, err := c.Encrypt([]byte(`{"t":"dat"}`), []byte("0123456789abcdef"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if _, err := c.Decrypt(sealed, nil); !errors.Is(err, ErrAuthentication) {
		t.Errorf("Decrypt() error = %v, want %v", err, ErrAuthentication)
	}
}
