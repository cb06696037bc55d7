// Package apperror defines the typed failure kinds shared by every service
// in the application and their mapping onto HTTP status codes.  Services
// return *AppError values instead of panicking or returning bare strings so
// that handlers can build a uniform error envelope without inspecting
// message text.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind enumerates the failure categories the API can surface.
type Kind int

const (
	// Unknown is the zero value and maps to HTTP 500.
	Unknown Kind = iota
	// Validation covers malformed or missing input (400).
	Validation
	// Conflict covers uniqueness violations (409).
	Conflict
	// Authentication covers wrong credentials (401).
	Authentication
	// Authorization covers missing, invalid, replayed or expired tokens (401).
	Authorization
	// NotFound covers lookups that matched no record (404).
	NotFound
	// Internal covers storage or downstream faults after input was valid (500).
	Internal
)

// AppError carries a Kind, a client-safe message and an optional wrapped
// cause.  The cause is for logs only and never reaches the response body.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *AppError) Unwrap() error { return e.Err }

// StatusCode maps the error kind to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case Authentication, Authorization:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind Kind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: cause}
}

// NewValidation reports malformed or missing input.
func NewValidation(message string) *AppError {
	return newError(Validation, message, nil)
}

// NewConflict reports a uniqueness violation.
func NewConflict(message string) *AppError {
	return newError(Conflict, message, nil)
}

// NewAuthentication reports a failed credential check.
func NewAuthentication(message string) *AppError {
	return newError(Authentication, message, nil)
}

// NewAuthorization reports a missing, invalid or replayed token.
func NewAuthorization(message string) *AppError {
	return newError(Authorization, message, nil)
}

// NewNotFound reports that no record matched the lookup.
func NewNotFound(message string) *AppError {
	return newError(NotFound, message, nil)
}

// NewInternal reports a storage or downstream fault, wrapping the cause.
func NewInternal(message string, cause error) *AppError {
	return newError(Internal, message, cause)
}

// From extracts an *AppError from err, walking the wrap chain.  Errors that
// are not AppErrors are treated as Internal so nothing leaks raw causes.
func From(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return newError(Internal, "internal server error", err)
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Kind == kind
}
