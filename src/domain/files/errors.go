package files

import (
	"errors"
	"fmt"
)

// ErrorKind identifies a machine-stable error category
type ErrorKind string

const (
	KindValidation      ErrorKind = "validation_error"
	KindConflict        ErrorKind = "conflict"
	KindNotFound        ErrorKind = "not_found"
	KindAuthorization   ErrorKind = "unauthorized"
	KindQuotaExceeded   ErrorKind = "quota_exceeded"
	KindExternalService ErrorKind = "external_service_error"
)

// Error is the typed error returned by hierarchy and quota operations.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error returns the human-readable message
func (e *Error) Error() string {
	if e == nil {
		return "files error: <nil>"
	}
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Unwrap exposes the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrUnauthenticated is returned when no principal is attached to the call
var ErrUnauthenticated = &Error{Kind: KindAuthorization, Message: "authentication required"}

func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewAuthorizationError(format string, args ...any) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func NewQuotaExceededError(format string, args ...any) *Error {
	return &Error{Kind: KindQuotaExceeded, Message: fmt.Sprintf(format, args...)}
}

// NewExternalServiceError wraps a failure of the entry store or blob store.
// Errors that already carry a kind are returned unchanged.
func NewExternalServiceError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsError(err); ok {
		return err
	}
	return &Error{Kind: KindExternalService, Message: fmt.Sprintf("%s failed", op), Err: err}
}

// AsError extracts a typed error from the chain
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}

// IsKind reports whether the chain contains an error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	typed, ok := AsError(err)
	return ok && typed.Kind == kind
}
