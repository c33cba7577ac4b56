package translation

import (
	"errors"
	"fmt"
	"net/http"
)

// Predefined errors.
var (
	// ErrLengthMismatch is returned when a batch response does not carry
	// exactly one translation per requested unit. A mismatch fails the whole
	// attempt; partial results are never accepted.
	ErrLengthMismatch = errors.New("batch response length mismatch")

	// ErrEmptyBatch is returned for a batch request with no units.
	ErrEmptyBatch = errors.New("empty batch")
)

// Error code constants.
const (
	ErrCodeNetwork  = "NETWORK_ERROR"
	ErrCodeProtocol = "PROTOCOL_ERROR"
	ErrCodeBackend  = "BACKEND_ERROR"
	ErrCodeCritical = "CRITICAL_ERROR"
)

// Error is a classified translation failure. Status carries the originating
// HTTP status code when one exists, zero otherwise.
type Error struct {
	Code    string
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("[%s] %s (status %d)", e.Code, e.Message, e.Status)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a classified error without an HTTP status.
func NewError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// NewStatusError creates an error from a backend HTTP status. Critical
// statuses get the critical code so that IsCritical holds without callers
// having to inspect the status themselves.
func NewStatusError(status int, message string, cause error) *Error {
	code := ErrCodeBackend
	if criticalStatus(status) {
		code = ErrCodeCritical
	}
	return &Error{Code: code, Status: status, Message: message, Cause: cause}
}

// IsCritical reports whether err means the whole job cannot succeed (quota
// exhausted, unauthenticated, forbidden). Critical errors are never retried
// and must stop the caller's loop over remaining files.
func IsCritical(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Code == ErrCodeCritical || criticalStatus(te.Status)
	}
	return false
}

func criticalStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}
