package domain

import (
	"errors"
	"fmt"
)

// DomainError is a business error with a structured code.
// Codes follow the format QM-<AREA>-<nnnn>; the numeric suffix drives the
// HTTP status mapping at the API boundary.
type DomainError struct {
	Code    string // error code, e.g. "QM-SESS-4040"
	Message string // human-readable message
	Details string // optional additional details
	Cause   error  // underlying error, if any
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Unwrap support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches two DomainErrors by code, so sentinel values compare equal to
// their WithDetails/WithCause derivatives.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Details: details, Cause: e.Cause}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Details: e.Details, Cause: cause}
}

// IsDomainError reports whether err is a DomainError with the given code.
// An empty code matches any DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return code == "" || de.Code == code
	}
	return false
}

// ErrorCode extracts the code from err if it is a DomainError.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Presence errors (PRES)
// ============================================================================

var (
	// ErrPeerNotPresent indicates one of the requested peers has no live
	// presence record; sessions can only be initiated between two users
	// that are active at the same time.
	ErrPeerNotPresent = NewDomainError("QM-PRES-4120", "peer not present")
)

// ============================================================================
// Session errors (SESS)
// ============================================================================

var (
	// ErrSessionNotFound indicates the requested session was not found.
	ErrSessionNotFound = NewDomainError("QM-SESS-4040", "session not found")

	// ErrSessionExpired indicates the session has expired. Expired
	// sessions are superseded by fresh ones, never revived.
	ErrSessionExpired = NewDomainError("QM-SESS-4041", "session expired")

	// ErrNotSessionParty indicates the requesting user is not one of the
	// two parties of the session.
	ErrNotSessionParty = NewDomainError("QM-SESS-4030", "user is not part of this session")

	// ErrSessionConflict indicates a session ID collision in the store.
	ErrSessionConflict = NewDomainError("QM-SESS-4090", "session id conflict")
)

// ============================================================================
// Key buffer errors (BUFF)
// ============================================================================

var (
	// ErrInsufficientBuffer indicates a reservation exceeds the available
	// (unreserved) key material.
	ErrInsufficientBuffer = NewDomainError("QM-BUFF-4092", "insufficient key material in buffer")

	// ErrBufferCapExceeded indicates a refill requested net growth while
	// the buffer is already at its size cap.
	ErrBufferCapExceeded = NewDomainError("QM-BUFF-4091", "buffer is at maximum size")

	// ErrOutOfRange indicates a read beyond the reserved region of the
	// buffer.
	ErrOutOfRange = NewDomainError("QM-BUFF-4160", "requested range is outside the reserved region")
)

// ============================================================================
// Local key pool errors (POOL)
// ============================================================================

var (
	// ErrKeyPoolExhausted indicates no unused local key of sufficient
	// length exists, even after a refill attempt.
	ErrKeyPoolExhausted = NewDomainError("QM-POOL-4093", "local key pool exhausted")

	// ErrKeyIDMalformed indicates a local key ID that does not match the
	// qmlk- format. Distinguished from "not held here" so receivers can
	// tell a garbled message from a key stored on another device.
	ErrKeyIDMalformed = NewDomainError("QM-POOL-4001", "malformed local key id")
)

// ============================================================================
// Entropy errors (ENTR)
// ============================================================================

var (
	// ErrEntropyUnavailable indicates the external entropy source failed.
	// Always absorbed by the fallback generator; never surfaced to API
	// callers as an error by itself.
	ErrEntropyUnavailable = NewDomainError("QM-ENTR-5030", "entropy source unavailable")
)

// ============================================================================
// Argument and system errors (ARG / SYS)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("QM-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("QM-ARG-1002", "missing required argument")

	// ErrInternal indicates an internal server error.
	ErrInternal = NewDomainError("QM-SYS-5000", "internal server error")

	// ErrStorage indicates a storage layer error.
	ErrStorage = NewDomainError("QM-SYS-5001", "storage error")

	// ErrBadRequest indicates a malformed request body.
	ErrBadRequest = NewDomainError("QM-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("QM-SYS-4290", "too many requests")
)
