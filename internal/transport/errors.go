package transport

import "errors"

// Transport errors.
var (
	// ErrClosed is returned when an operation is attempted on a closed transport.
	ErrClosed = errors.New("transport: closed")

	// ErrNotListening is returned by Send and SetBroadcast before Listen succeeded.
	ErrNotListening = errors.New("transport: not listening")

	// ErrAlreadyListening is returned when Listen is called twice.
	ErrAlreadyListening = errors.New("transport: already listening")

	// ErrNoHandler is returned when Listen is given a nil handler.
	ErrNoHandler = errors.New("transport: no datagram handler")

	// ErrMessageTooLarge is returned when a datagram exceeds MaxDatagramSize.
	ErrMessageTooLarge = errors.New("transport: message too large")
)
