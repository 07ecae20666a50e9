package errs

import (
	"errors"
	"net/http"
)

// Status maps a Kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case KindInvalidInput, KindDuplicateEmail, KindAlreadyReviewed, KindInvalidTransition:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindUnauthorized:
		return http.StatusUnauthorized
	case KindWrongRole, KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Response is the body written for every failed request.
type Response struct {
	Code    Kind         `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// ToResponse renders err for a client. Internal errors never leak their cause.
func ToResponse(err error) (int, Response) {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, Response{
			Code:    KindInternal,
			Message: http.StatusText(http.StatusInternalServerError),
		}
	}
	status := Status(e.Kind)
	msg := e.Message
	if status == http.StatusInternalServerError {
		msg = http.StatusText(http.StatusInternalServerError)
	}
	return status, Response{Code: e.Kind, Message: msg, Errors: e.Fields}
}
