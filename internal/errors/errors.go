// Package errors provides structured error handling with kind-based
// branching and HTTP status code mapping.
//
// Transport and parse failures are converted into one of these kinds at the
// upstream client boundary; raw errors never reach handlers or views.
// Callers branch on Kind, never on message strings.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an error for branching, metrics, and response formatting.
type Kind string

const (
	// KindInvalidCredentials indicates a rejected login. The message is the
	// upstream service's verbatim message.
	KindInvalidCredentials Kind = "invalid_credentials"
	// KindValidation indicates rejected form input, with per-field messages.
	KindValidation Kind = "validation"
	// KindUnauthorized indicates an authorization rejection on an
	// authenticated call. It forces the logout transition.
	KindUnauthorized Kind = "unauthorized"
	// KindNotFound indicates an absent resource (e.g. a deleted job).
	KindNotFound Kind = "not_found"
	// KindNetwork indicates a transient transport failure, user-retryable.
	KindNetwork Kind = "network"
	// KindConflict indicates a state conflict (e.g. duplicate application).
	KindConflict Kind = "conflict"
	// KindInternal indicates a bug or an unclassified failure.
	KindInternal Kind = "internal"
)

// Error is a structured error with a kind, a user-facing message, an
// optional cause, and optional per-field validation messages.
type Error struct {
	Kind        Kind
	Message     string
	Cause       error
	FieldErrors map[string]string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the kind to a gateway response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidCredentials, KindUnauthorized:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// InvalidCredentials creates a login rejection carrying the upstream
// service's verbatim message.
func InvalidCredentials(message string) *Error {
	return &Error{Kind: KindInvalidCredentials, Message: message}
}

// Validation creates a validation error with per-field messages.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, FieldErrors: fields}
}

// Unauthorized creates an authorization rejection.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NotFound creates a not-found error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Network creates a transient transport error.
func Network(message string, cause error) *Error {
	return &Error{Kind: KindNetwork, Message: message, Cause: cause}
}

// Conflict creates a state-conflict error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal creates an unclassified internal error.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// KindOf extracts the kind from any error, returning KindInternal for
// unclassified errors and "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var structured *Error
	if errors.As(err, &structured) {
		return structured.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Response is the JSON structure the gateway sends to clients.
type Response struct {
	Error  string            `json:"error"`
	Kind   Kind              `json:"kind"`
	Fields map[string]string `json:"fields,omitempty"`
	// Redirect is set for authorization rejections so the collaborator can
	// bounce to the login view without rendering an error dialog.
	Redirect string `json:"redirect,omitempty"`
}

// ToResponse converts an Error to a Response for JSON serialization.
func (e *Error) ToResponse() Response {
	resp := Response{
		Error:  e.Message,
		Kind:   e.Kind,
		Fields: e.FieldErrors,
	}
	if e.Kind == KindUnauthorized {
		resp.Redirect = "/login"
	}
	return resp
}

// AsStructured converts any error into a structured Error. If err is
// already an *Error it is returned unchanged; otherwise it is wrapped as an
// internal error.
func AsStructured(err error) *Error {
	if err == nil {
		return nil
	}
	var structured *Error
	if errors.As(err, &structured) {
		return structured
	}
	return Internal("internal error", err)
}
