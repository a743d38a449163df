// Package errors provides structured error types for the aagen grouping engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, API, and library callers
//   - Machine-readable error codes for programmatic handling
//   - A clear split between configuration mistakes and algorithm invariant violations
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - CONFIG_*: Missing or malformed caller-supplied settings. The run aborts
//     before any stage executes.
//   - CONSISTENCY_*: A violated invariant inside the algorithm itself (hash
//     collision, node assigned twice, output/input mismatch). Always fatal.
//   - INVALID_*: Input that cannot be decoded or interpreted.
//   - INTERNAL_*: Unexpected internal errors.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateNode, "node %s already in subgraph %s", id, key)
//	if errors.IsFatal(err) {
//	    // stop the run and report
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode checkpoint %s", path)
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeConfig            Code = "CONFIG_INVALID"
	ErrCodeMissingTemplate   Code = "CONFIG_MISSING_TEMPLATE"
	ErrCodeInvalidPredicate  Code = "CONFIG_INVALID_PREDICATE"
	ErrCodeUnknownCategory   Code = "CONFIG_UNKNOWN_CATEGORY"
	ErrCodeDuplicateCategory Code = "CONFIG_DUPLICATE_CATEGORY"

	// Consistency errors
	ErrCodeHashCollision     Code = "CONSISTENCY_HASH_COLLISION"
	ErrCodeDuplicateNode     Code = "CONSISTENCY_DUPLICATE_NODE"
	ErrCodeNodeCountMismatch Code = "CONSISTENCY_NODE_COUNT_MISMATCH"
	ErrCodeInvariant         Code = "CONSISTENCY_INVARIANT"

	// Input errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeNotFound      Code = "NOT_FOUND"

	// Execution errors
	ErrCodeCanceled    Code = "CANCELED"
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

// Canceled wraps a context error raised between items of a stage.
// The returned error still satisfies errors.Is(err, context.Canceled).
func Canceled(stage string, cause error) *Error {
	if cause == nil {
		cause = context.Canceled
	}
	return Wrap(ErrCodeCanceled, cause, "%s interrupted", stage)
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

// IsFatal reports whether err is a consistency error, meaning an invariant of
// the grouping algorithm was violated rather than the input being bad.
func IsFatal(err error) bool {
	return strings.HasPrefix(string(GetCode(err)), "CONSISTENCY_")
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool {
	return strings.HasPrefix(string(GetCode(err)), "CONFIG_")
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
