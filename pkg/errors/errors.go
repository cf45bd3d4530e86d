// Package errors provides the structured error taxonomy used by octowire.
//
// Every failure surfaced by the GitHub client is an [*Error] tagged with one
// code from a closed set. Callers branch on the code instead of inspecting
// HTTP status codes or response bodies:
//
//	resp, err := client.Repos().Get(ctx, "octocat/hello-world")
//	switch {
//	case errors.Is(err, errors.ErrCodeNotFound):
//	    // repository is gone
//	case errors.Is(err, errors.ErrCodeRateLimited):
//	    // back off
//	}
//
// # Error Codes
//
// The API-facing codes mirror what the request pipeline can observe:
//   - CONNECTION_ERROR: no response was obtained (network, timeout, cancellation)
//   - AUTHENTICATION_ERROR, PERMISSION_DENIED: credential problems
//   - RATE_LIMITED: primary or secondary rate limit
//   - NOT_FOUND, NOT_MODIFIED, PAYLOAD_ERROR: status-derived conditions
//   - GRAPHQL_ERROR: errors reported inside a GraphQL body
//   - GENERIC_ERROR: any other API message or unexpected failure
//
// INVALID_INPUT is raised before any I/O when arguments fail validation.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for API failures.
const (
	ErrCodeConnection     Code = "CONNECTION_ERROR"
	ErrCodeAuthentication Code = "AUTHENTICATION_ERROR"
	ErrCodeRateLimited    Code = "RATE_LIMITED"
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeNotModified    Code = "NOT_MODIFIED"
	ErrCodePayload        Code = "PAYLOAD_ERROR"
	ErrCodePermission     Code = "PERMISSION_DENIED"
	ErrCodeGraphQL        Code = "GRAPHQL_ERROR"
	ErrCodeGeneric        Code = "GENERIC_ERROR"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
)

// Codes lists every API-facing code in classification order.
var Codes = []Code{
	ErrCodeConnection,
	ErrCodeAuthentication,
	ErrCodeRateLimited,
	ErrCodeNotFound,
	ErrCodeNotModified,
	ErrCodePayload,
	ErrCodePermission,
	ErrCodeGraphQL,
	ErrCodeGeneric,
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Status  int    // HTTP status, 0 when no response was received
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

// WithStatus records the HTTP status that produced e and returns e.
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
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

// GetStatus returns the HTTP status attached to err, or 0.
func GetStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
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
