package protocol

import (
	"errors"
	"fmt"
)

// Command construction errors
var (
	ErrLengthMismatch = errors.New("protocol: codes and values differ in length")
	ErrEmptyCommand   = errors.New("protocol: command has no codes")
)

// ErrorType represents the category of protocol failure
type ErrorType int

const (
	// ErrTypeTransportBind indicates the local socket could not be bound; retried after a delay
	ErrTypeTransportBind ErrorType = iota
	// ErrTypeDecode indicates malformed JSON or a failed decrypt; the datagram is dropped
	ErrTypeDecode
	// ErrTypeUnexpectedPayload indicates a well-formed payload arriving out of sequence
	ErrTypeUnexpectedPayload
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeTransportBind:
		return "Transport Bind Error"
	case ErrTypeDecode:
		return "Decode Error"
	case ErrTypeUnexpectedPayload:
		return "Unexpected Payload"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is a protocol-level failure. None of these reach callers of the command API;
// the session logs them and either retries or drops the datagram.
type Error struct {
	Type      ErrorType // Category of error
	Message   string    // Human-readable error message
	Kind      Kind      // Payload kind involved (unexpected payloads only)
	Err       error     // Underlying error (if any)
	Retryable bool      // Whether the failed action is retried
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewDecodeError creates a decode error
func NewDecodeError(message string, err error) *Error {
	return &Error{Type: ErrTypeDecode, Message: message, Err: err}
}

// NewUnexpectedPayloadError creates an error for a payload received in the wrong state
func NewUnexpectedPayloadError(kind Kind, message string) *Error {
	return &Error{Type: ErrTypeUnexpectedPayload, Kind: kind, Message: message}
}

// NewTransportBindError creates a retryable bind error for the given local port
func NewTransportBindError(localPort int, err error) *Error {
	return &Error{
		Type:      ErrTypeTransportBind,
		Message:   fmt.Sprintf("cannot bind local port %d", localPort),
		Err:       err,
		Retryable: true,
	}
}

func isType(err error, t ErrorType) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Type == t
}

// IsDecodeError reports whether err is a decode error
func IsDecodeError(err error) bool { return isType(err, ErrTypeDecode) }

// IsUnexpectedPayload reports whether err is an unexpected payload error
func IsUnexpectedPayload(err error) bool { return isType(err, ErrTypeUnexpectedPayload) }

// IsTransportBind reports whether err is a transport bind error
func IsTransportBind(err error) bool { return isType(err, ErrTypeTransportBind) }
