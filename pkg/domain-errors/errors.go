// Package domainerrors defines the coded error type every service returns to
// the transport layer. Codes are transport-agnostic; pkg/platform/httputil owns
// the mapping to HTTP statuses.
//
// Stores never construct these directly; they return pkg/platform/sentinel
// errors and services translate them here.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies the kind of domain failure.
type Code string

const (
	// CodeValidation marks input that fails field-level validation rules.
	CodeValidation Code = "validation_error"
	// CodeInvalidInput marks malformed identifiers or enum values.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks requests that cannot be interpreted at all.
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized marks calls with no valid principal.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks a principal acting on a resource it does not own.
	CodeForbidden Code = "forbidden"
	// CodeNotFound marks absent or soft-deleted resources.
	CodeNotFound Code = "not_found"
	// CodeConflict marks uniqueness violations (email, account number).
	CodeConflict Code = "conflict"
	// CodeInsufficientFunds marks a withdrawal exceeding the balance.
	CodeInsufficientFunds Code = "insufficient_funds"
	// CodeNonZeroBalance marks deletion of an account still holding funds.
	CodeNonZeroBalance Code = "non_zero_balance"
	// CodeAllocationExhausted marks account number generation giving up.
	CodeAllocationExhausted Code = "allocation_exhausted"
	// CodeTimeout marks a persistence call exceeding its deadline.
	CodeTimeout Code = "timeout"
	// CodeInternal marks everything else. Never silently swallowed, never
	// detailed to the caller.
	CodeInternal Code = "internal_error"
)

// Error carries a code, a caller-safe message, and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New constructs a domain error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and caller-safe message to an underlying error.
// A nil err yields the same result as New.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// Is extracts the outermost domain error from an error chain.
func Is(err error) (*Error, bool) {
	var derr *Error
	if errors.As(err, &derr) {
		return derr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	derr, ok := Is(err)
	return ok && derr.Code == code
}
