// Package apperr defines the error taxonomy shared by services and the API
// layer. Services return these; one adapter in api/ turns them into
// responses, so no handler ever picks a status code by hand.
package apperr

import (
	"errors"
	"net/http"
)

const (
	CodeValidation     = "validation_error"
	CodeAuthentication = "authentication_error"
	CodeConflict       = "conflict_error"
	CodeNotFound       = "not_found_error"
	CodeUpstream       = "upstream_error"
)

type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: msg}
}

// Authentication failures are always 401, never 403. All causes collapse
// into whatever generic message the caller picks so a client can't probe
// why a token was rejected.
func Authentication(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeAuthentication, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeConflict, Message: msg}
}

// NotFound is surfaced as 400, not 404. Referenced-entity lookups in this
// API have always reported missing rows that way and clients depend on it.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeNotFound, Message: msg}
}

// Upstream wraps a store or mail failure. The original error is kept for
// logging but the client only ever sees the generic message.
func Upstream(cause error) *Error {
	return &Error{
		Status:  http.StatusBadGateway,
		Code:    CodeUpstream,
		Message: "Something went wrong. Please try again later",
		cause:   cause,
	}
}

// From coerces any error into an *Error, defaulting to Upstream for
// anything the services didn't classify themselves.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Upstream(err)
}
