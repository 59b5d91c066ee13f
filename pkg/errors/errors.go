// Package errors provides structured error types for the alluvial engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, HTTP server, and library API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The core taxonomy mirrors the failure modes of the reshaping and layout
// algorithms:
//   - MALFORMED_ALLUVIAL_DATA: input is neither valid alluvia nor lodes form
//   - INCONSISTENT_AXIS_SET: entities do not share identical per-axis coverage
//   - AMBIGUOUS_DISTILLATION: collapsing would lose information and no policy resolves it
//   - ORDERING_SHAPE_MISMATCH: explicit ordering matrix has the wrong dimensions
//
// All of these are fatal and deterministic: a failing call fails identically
// on retry, so the correct response is to fix the input or configuration.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedData, "column %q not found", name)
//	if errors.Is(err, errors.ErrCodeMalformedData) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "failed to read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structural errors from the detection, conversion, and layout algorithms.
	ErrCodeMalformedData         Code = "MALFORMED_ALLUVIAL_DATA"
	ErrCodeInconsistentAxisSet   Code = "INCONSISTENT_AXIS_SET"
	ErrCodeAmbiguousDistillation Code = "AMBIGUOUS_DISTILLATION"
	ErrCodeOrderingShapeMismatch Code = "ORDERING_SHAPE_MISMATCH"

	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidGuidance Code = "INVALID_GUIDANCE"
	ErrCodeInvalidDistill  Code = "INVALID_DISTILL"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeColumnNotFound Code = "COLUMN_NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
