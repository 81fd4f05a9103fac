// Package apperr is the error taxonomy shared by the upstream clients and
// the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

type Code string

const (
	// CodeConfig is a missing or invalid operator setting.
	CodeConfig Code = "config"
	// CodeUpstream is a non-success status or malformed payload from a
	// third-party service.
	CodeUpstream Code = "upstream"
	// CodeUnavailable is an upstream that stayed unavailable after retries.
	CodeUnavailable Code = "unavailable"
	// CodeValidation is bad user input; no network call was attempted.
	CodeValidation Code = "validation"
	// CodeContract is an on-chain failure reported by the wallet.
	CodeContract Code = "contract"
	CodeNotFound Code = "not_found"
	// CodeUnauthorized is a missing, expired or forged session.
	CodeUnauthorized Code = "unauthorized"
)

// Error is the domain error type.
type Error struct {
	Code    Code
	Message string
	// Status is the HTTP status to answer with. Zero falls back to the
	// code's default.
	Status int
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the status the error maps to at the API boundary.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return e.Code.HTTPStatus()
}

func (c Code) HTTPStatus() int {
	switch c {
	case CodeConfig:
		return http.StatusInternalServerError
	case CodeUpstream:
		return http.StatusBadGateway
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// WithStatus creates an error that answers with an explicit HTTP status,
// used when echoing an upstream status code.
func WithStatus(code Code, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// StatusOf returns the HTTP status for err; unknown errors map to 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

// HasCode reports whether err carries code anywhere in its chain.
func HasCode(err error, code Code) bool {
	return errors.Is(err, &Error{Code: code})
}
