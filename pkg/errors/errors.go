// Package errors provides structured error types for topfloor.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP service and the library
//   - Machine-readable error codes for programmatic handling
//   - A clear split between configuration, graph and solver failures
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes are grouped by the stage that raises them:
//   - INVALID_* / UNRESOLVED_PIN: problem initialization and option validation
//   - GRAPH_INCONSISTENT: the ordering constraint graph has a cycle or
//     contradictory edge
//   - SOLVER_ERROR / TIMEOUT: the ILP solver could not return a definitive answer
//   - NOT_INITIALIZED / INTERNAL_ERROR: API misuse and unexpected failures
//
// Infeasibility is deliberately not an error code: an infeasible floorplan is a
// normal outcome reported as a boolean failure.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnresolvedPin, "symmetry pair references unknown pin %q", name)
//	if errors.Is(err, errors.ErrCodeUnresolvedPin) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSolver, origErr, "solve with backend %s", name)
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors (raised at initialization only)
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeUnresolvedPin Code = "UNRESOLVED_PIN"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Constraint graph errors
	ErrCodeGraphInconsistent Code = "GRAPH_INCONSISTENT"

	// Solver errors
	ErrCodeSolver  Code = "SOLVER_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeNotInitialized Code = "NOT_INITIALIZED"
	ErrCodeInternal       Code = "INTERNAL_ERROR"
	ErrCodeUnsupported    Code = "UNSUPPORTED"
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

// IsConfig reports whether err is a configuration error raised while
// building a problem (invalid input, invalid config or unresolved pin).
func IsConfig(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidConfig, ErrCodeUnresolvedPin, ErrCodeInvalidPath:
		return true
	}
	return false
}

// IsRetryable reports whether a failed solve may succeed when retried with
// relaxed limits. Only solver failures qualify; configuration and graph
// errors are deterministic.
func IsRetryable(err error) bool {
	switch GetCode(err) {
	case ErrCodeSolver, ErrCodeTimeout:
		return true
	}
	return false
}

// IsTimeout reports whether err carries the TIMEOUT code or stems from an
// expired or cancelled context.
func IsTimeout(err error) bool {
	if GetCode(err) == ErrCodeTimeout {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
