// Package errs defines the single error taxonomy shared by every operation.
//
// Services return *Error values carrying a Kind and a human readable message.
// The HTTP layer maps the Kind to a status code and renders one response
// shape, so clients never have to guess which field holds the message.
package errs

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies a failure independently of transport.
type Kind string

const (
	KindInvalidInput       Kind = "INVALID_INPUT"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindWrongRole          Kind = "WRONG_ROLE"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindForbidden          Kind = "FORBIDDEN"
	KindNotFound           Kind = "NOT_FOUND"
	KindDuplicateEmail     Kind = "DUPLICATE_EMAIL"
	KindAlreadyReviewed    Kind = "ALREADY_REVIEWED"
	KindInvalidTransition  Kind = "INVALID_TRANSITION"
	KindConflict           Kind = "CONFLICT"
	KindRateLimited        Kind = "TOO_MANY_REQUESTS"
	KindInternal           Kind = "INTERNAL"
)

// FieldError is a per-field validation failure.
//
//	{ "field": "phone", "error": "must be exactly 10 digits" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Error is the error type returned by the service layer.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	// Err is the underlying cause. It is logged, never sent to clients.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error that keeps err as its cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Internal wraps an unexpected failure. The message stays generic.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: http.StatusText(http.StatusInternalServerError), Err: err}
}

// Validation builds an InvalidInput error with field details.
func Validation(message string, fields []FieldError) *Error {
	return &Error{Kind: KindInvalidInput, Message: message, Fields: fields}
}

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Code turns a status text into an UPPER_SNAKE code, e.g. "Not Found" -> "NOT_FOUND".
func Code(statusText string) string {
	return strings.ToUpper(strings.ReplaceAll(statusText, " ", "_"))
}
