package protocol

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		et   ErrorType
		want string
	}{
		{ErrTypeTransportBind, "Transport Bind Error"},
		{ErrTypeDecode, "Decode Error"},
		{ErrTypeUnexpectedPayload, "Unexpected Payload"},
		{ErrorType(99), "ErrorType(99)"},
	}

	for _, tt := range tests {
		if got := tt.et.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %v, want %v", int(tt.et), got, tt.want)
		}
	}
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("address in use")
	err := NewTransportBindError(7000, cause)

	want := "Transport Bind Error: cannot bind local port 7000 (caused by: address in use)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the cause")
	}
	if !err.Retryable {
		t.Error("bind errors should be retryable")
	}

	u := NewUnexpectedPayloadError(KindDat, "not bound")
	if u.Error() != "Unexpected Payload: not bound" {
		t.Errorf("Error() = %v", u.Error())
	}
}

func TestErrorPredicates(t *testing.T) {
	wrapped := fmt.Errorf("session: %w", NewDecodeError("bad", nil))

	if !IsDecodeError(wrapped) {
		t.Error("IsDecodeError() should see through wrapping")
	}
	if IsUnexpectedPayload(wrapped) || IsTransportBind(wrapped) {
		t.Error("predicates should not match other types")
	}
	if IsDecodeError(errors.New("plain")) {
		t.Error("IsDecodeError() matched a plain error")
	}
	if !IsUnexpectedPayload(NewUnexpectedPayloadError(KindRes, "x")) {
		t.Error("IsUnexpectedPayload() failed")
	}
	if !IsTransportBind(NewTransportBindError(0, nil)) {
		t.Error("IsTransportBind() failed")
	}
}
