// Package crypto implements the two pack ciphers used inside the appliance envelope.
//
// Version 1 encrypts the JSON payload with AES-128 in ECB mode and PKCS#7 padding.
// Version 2 uses AES-128-GCM with a fixed nonce and associated data and returns the
// 16-byte authentication tag separately, so that it can travel in the envelope's
// "tag" field.
//
// Both ciphers fall back to their well-known generic key when no key is given. The
// generic key protects the handshake (scan, bind) only; every packet after bind
// confirmation uses the session key issued by the appliance.
//
// # Usage Example
//
//	var c crypto.Cipher = crypto.NewGCM()
//	sealed, err := c.Encrypt([]byte(`{"t":"bind"}`), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	plain, err := c.Decrypt(sealed, nil)
//
// Pack and Tag are base64 (standard alphabet) exactly as they appear on the wire.
//
// # Thread Safety
//
// Cipher values hold no mutable state and are safe for concurrent use.
package crypto
