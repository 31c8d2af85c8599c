package errors

import (
	"errors"
	"fmt"
)

// Code categorizes an error.
type Code string

const (
	// CodeUnknown indicates an unknown error
	CodeUnknown Code = "unknown"

	// CodeFormat indicates malformed or truncated save bytes. Aborts a load.
	CodeFormat Code = "format"

	// CodeValidation indicates a record that cannot back the requested entity view.
	CodeValidation Code = "validation"

	// CodeInvariant indicates a mutation that would break a structural rule.
	// Entity mutators log these instead of returning them.
	CodeInvariant Code = "invariant"

	// CodeNotFound indicates a requested record or table entry was not found
	CodeNotFound Code = "not_found"

	// CodeInternal indicates an internal error
	CodeInternal Code = "internal"
)

// Error is an application error with code and metadata.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Meta    map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithMeta adds metadata to the error (builder pattern)
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates a new error with the given code and message
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a new error with formatted message
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context, preserving the code of a wrapped *Error.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return &Error{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
			Meta:    copyMeta(appErr.Meta),
		}
	}
	return &Error{Code: CodeUnknown, Message: message, Cause: err}
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a specific code
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, message)
	wrapped.Code = code
	return wrapped
}

// Format creates a format error
func Format(message string) *Error {
	return New(CodeFormat, message)
}

// Formatf creates a formatted format error
func Formatf(format string, args ...any) *Error {
	return Newf(CodeFormat, format, args...)
}

// Validation creates a validation error
func Validation(message string) *Error {
	return New(CodeValidation, message)
}

// Validationf creates a formatted validation error
func Validationf(format string, args ...any) *Error {
	return Newf(CodeValidation, format, args...)
}

// Invariantf creates a formatted invariant error
func Invariantf(format string, args ...any) *Error {
	return Newf(CodeInvariant, format, args...)
}

// NotFoundf creates a formatted not found error
func NotFoundf(format string, args ...any) *Error {
	return Newf(CodeNotFound, format, args...)
}

// Is checks if the error is of a specific code
func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsFormat(err error) bool     { return Is(err, CodeFormat) }
func IsValidation(err error) bool { return Is(err, CodeValidation) }
func IsInvariant(err error) bool  { return Is(err, CodeInvariant) }
func IsNotFound(err error) bool   { return Is(err, CodeNotFound) }

// GetCode returns the error code
func GetCode(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMeta returns the error metadata
func GetMeta(err error) map[string]any {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Meta
	}
	return nil
}

func copyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
