package memory

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error so transports can map it to a status code
// without string matching.
type Kind string

const (
	KindValidation   Kind = "ValidationError"
	KindUnavailable  Kind = "ServiceUnavailable"
	KindStorage      Kind = "StorageError"
	KindRateLimited  Kind = "RateLimited"
	KindUnauthorized Kind = "Unauthorized"
	KindNotFound     Kind = "NotFound"
	KindInternal     Kind = "InternalError"
)

// Error is a kinded engine error. Code is a stable machine-readable slug;
// Message is human-readable.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a kinded error with no cause.
func NewError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// WrapError creates a kinded error wrapping a cause.
func WrapError(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// KindOf extracts the Kind from err, defaulting to KindInternal for
// unclassified faults.
func KindOf(err error) Kind {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
