// Package errors defines the sentinel errors shared across the engine and
// maps them to HTTP status codes for the search service surface.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEncoding is returned when a codec is handed input it cannot
	// represent, such as a non-ascending sequence for gap coding.
	ErrEncoding = errors.New("encoding error")
	// ErrCorruptEncoding is returned when decode encounters malformed
	// bytes: a truncated stream, a dangling continuation bit, or a frame
	// that runs past the end of the record.
	ErrCorruptEncoding = errors.New("corrupt encoding")
	// ErrIdentityMismatch is returned when an index is loaded with a
	// (mode, compression, optimization) tuple different from the one it
	// was persisted under.
	ErrIdentityMismatch = errors.New("index identity mismatch")
	// ErrConfiguration is returned for invalid option combinations,
	// detected before any build work begins.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrQuerySyntax is returned for malformed boolean query strings.
	// There is no partial-parse fallback.
	ErrQuerySyntax = errors.New("query syntax error")
	// ErrIndexNotFound is returned when load finds no persisted index in
	// the backend.
	ErrIndexNotFound = errors.New("index not found")
	// ErrTimeout is returned when a caller-level deadline expires.
	ErrTimeout = errors.New("operation timed out")
)

// AppError carries a sentinel, a human-readable message, and the HTTP status
// the service layer should respond with.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps a sentinel with a message and status code.
func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Newf is New with Sprintf formatting.
func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the status code the search service should
// return for it.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrQuerySyntax):
		return http.StatusBadRequest
	case errors.Is(err, ErrIndexNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrIdentityMismatch):
		return http.StatusConflict
	case errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
