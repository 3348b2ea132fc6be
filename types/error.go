package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the system.
type ErrorCode string

// Workflow error codes. The four codes map to the engine's error
// taxonomy: graph configuration problems are caught at compile time,
// step exhaustion and routing errors during a run, and node failures
// whenever a delegate call inside a node fails.
const (
	ErrGraphInvalid ErrorCode = "GRAPH_INVALID"
	ErrStepLimit    ErrorCode = "STEP_LIMIT_EXCEEDED"
	ErrRouteUnknown ErrorCode = "ROUTE_UNKNOWN"
	ErrNodeFailed   ErrorCode = "NODE_FAILED"
)

// Pipeline error codes
const (
	ErrClassification ErrorCode = "CLASSIFICATION_FAILED"
	ErrEmptyResult    ErrorCode = "EMPTY_RESULT"
	ErrToolNotFound   ErrorCode = "TOOL_NOT_FOUND"
	ErrToolFailed     ErrorCode = "TOOL_FAILED"
)

// Storage error codes
const (
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrStoreFailure ErrorCode = "STORE_FAILURE"
)

// Error represents a structured error with code, message, and cause.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorf creates a new Error with a formatted message.
func NewErrorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// GetErrorCode extracts the error code from an error, unwrapping as
// needed. Returns "" when no *Error is found in the chain.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given error code anywhere in
// its chain. Callers match on codes, never on error text.
func IsCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}
