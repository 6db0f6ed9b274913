package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainErrorFormat(t *testing.T) {
	err := ErrInsufficientBuffer.WithDetails("need 32, have 16")
	want := "[QM-BUFF-4092] insufficient key material in buffer: need 32, have 16"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorIsByCode(t *testing.T) {
	detailed := ErrSessionNotFound.WithDetails("id qmss-x")
	if !errors.Is(detailed, ErrSessionNotFound) {
		t.Error("WithDetails broke errors.Is matching")
	}
	if errors.Is(detailed, ErrSessionExpired) {
		t.Error("distinct codes matched")
	}

	wrapped := fmt.Errorf("store: %w", detailed)
	if !errors.Is(wrapped, ErrSessionNotFound) {
		t.Error("wrapping broke errors.Is matching")
	}
}

func TestWithCauseUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrEntropyUnavailable.WithCause(cause)
	if !errors.Is(err, cause) {
		t.Error("Unwrap does not expose the cause")
	}
	if !errors.Is(err, ErrEntropyUnavailable) {
		t.Error("WithCause broke code matching")
	}
}

func TestIsDomainError(t *testing.T) {
	if !IsDomainError(ErrPeerNotPresent, "QM-PRES-4120") {
		t.Error("IsDomainError missed a matching code")
	}
	if IsDomainError(errors.New("plain"), "QM-PRES-4120") {
		t.Error("IsDomainError matched a plain error")
	}
	if got := ErrorCode(ErrKeyPoolExhausted); got != "QM-POOL-4093" {
		t.Errorf("ErrorCode = %q, want QM-POOL-4093", got)
	}
	if got := ErrorCode(errors.New("plain")); got != "" {
		t.Errorf("ErrorCode on plain error = %q, want empty", got)
	}
}
