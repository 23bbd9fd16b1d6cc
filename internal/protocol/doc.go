// Package protocol implements the appliance's encrypted JSON envelope.
//
// Every datagram exchanged with the appliance after discovery is an envelope whose
// "pack" field carries an encrypted JSON payload. This package builds and parses
// envelopes, decides which pack cipher applies, and turns decrypted payloads into a
// closed set of Go types.
//
// # Envelope Format
//
// The outer object is plain JSON with a fixed field order:
//
//	{"tcid":"<device id>","cid":"app","i":1,"t":"pack","uid":0,"tag":"...","pack":"..."}
//
// Fields:
//   - tcid: target device id (empty for broadcast handshake replies)
//   - cid: sender id, always "app" for outbound packets
//   - i: 1 for handshake packets (generic key), 0 for session packets (session key)
//   - t: always "pack"
//   - uid: always 0
//   - tag: GCM tag, present if and only if the pack uses encryption version 2
//   - pack: base64 ciphertext
//
// # Encryption Versions
//
// Version 1 packs are AES-ECB; version 2 packs are AES-GCM with a detached tag. The
// session decides the version once, from the firmware string in the first "dev"
// reply, and passes it into every Encode and Decode call. The codec itself keeps no
// session state.
//
// # Payload Kinds
//
// Decrypted payloads are dispatched on their "t" field:
//   - dev: handshake reply (name, firmware version, device id)
//   - bindok: bind confirmation carrying the session key
//   - dat: status report with parallel "cols"/"dat" lists
//   - res: command result with parallel "opt"/"p" lists ("val" on some firmware)
//
// Anything else decodes to *UnknownPayload so callers handle it explicitly.
//
// # Usage Example
//
//	codec := protocol.NewCodec()
//
//	// Bind request, handshake phase
//	data, err := codec.Encode(protocol.NewBindRequest(id), id, nil, protocol.SeqHandshake, protocol.V1)
//
//	// Inbound datagram
//	env, payload, err := codec.Decode(raw, sessionKey, protocol.V1)
//	if protocol.IsDecodeError(err) {
//	    // drop it
//	}
//	switch p := payload.(type) {
//	case *protocol.DatPayload:
//	    ...
//	}
//
// # Error Handling
//
// All decode failures (malformed JSON, wrong envelope type, failed decryption,
// malformed inner payload) are reported as *Error with Type ErrTypeDecode.
//
// # Thread Safety
//
// Codec is immutable after construction and safe for concurrent use.
package protocol
