// Package errors provides the coded error kinds shared by the registries,
// the asset store and the HTTP layer.
//
// Registries never return bare strings for expected failures. Callers
// branch on the code, not on the message:
//
//	if errors.Is(err, errors.CodeNotFound) {
//	    // 404
//	}
//
// Unexpected failures from lower layers are wrapped with fmt.Errorf and
// carry no code; GetCode reports "" for them.
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error kind
type Code string

const (
	// CodeValidation marks missing or malformed input
	CodeValidation Code = "VALIDATION"
	// CodeConflict marks a uniqueness or integrity rule that rejected the write
	CodeConflict Code = "CONFLICT"
	// CodeNotFound marks an unknown id
	CodeNotFound Code = "NOT_FOUND"
	// CodeUnauthorized marks missing or wrong credentials
	CodeUnauthorized Code = "UNAUTHORIZED"
	// CodeStorage marks a failure persisting an asset
	CodeStorage Code = "STORAGE"
	// CodeInternal marks anything else
	CodeInternal Code = "INTERNAL"
)

// Error is a coded error with an optional cause
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with the given code and formatted message
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an Error around an existing error
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Validation is shorthand for New(CodeValidation, ...)
func Validation(format string, args ...any) *Error {
	return New(CodeValidation, format, args...)
}

// NotFound is shorthand for New(CodeNotFound, ...)
func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, format, args...)
}

// Conflict is shorthand for New(CodeConflict, ...)
func Conflict(format string, args ...any) *Error {
	return New(CodeConflict, format, args...)
}

// Storage is shorthand for Wrap(CodeStorage, ...)
func Storage(cause error, format string, args ...any) *Error {
	return Wrap(CodeStorage, cause, format, args...)
}

// Is reports whether any *Error in err's chain has the given code
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the code of the first *Error in err's chain.
// Returns "" when err carries no code
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix or cause.
// Uncoded errors are returned as-is
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
