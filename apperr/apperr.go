// Package apperr defines the error kinds the API surfaces to clients and
// their HTTP status mapping.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for status mapping.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindForbidden
	KindUnauthenticated
	KindStorage
	KindUpstream
)

// Error carries a client-facing message plus a kind. The wrapped cause, if
// any, is for logs only and never serialized.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports bad input shape, bad file type/size, or a missing
// required field. Maps to 400.
func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

// NotFound reports an absent song/recording/user. Maps to 404.
func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

// Forbidden reports a non-owner mutation attempt. Maps to 403.
func Forbidden(format string, args ...interface{}) *Error {
	return newError(KindForbidden, format, args...)
}

// Unauthenticated reports a missing or invalid bearer token. Maps to 401.
func Unauthenticated(format string, args ...interface{}) *Error {
	return newError(KindUnauthenticated, format, args...)
}

// Storage wraps a backend write/delete failure. Maps to 500.
func Storage(err error, format string, args ...interface{}) *Error {
	e := newError(KindStorage, format, args...)
	e.Err = err
	return e
}

// Upstream wraps an external API failure. Maps to 500.
func Upstream(err error, format string, args ...interface{}) *Error {
	e := newError(KindUpstream, format, args...)
	e.Err = err
	return e
}

// Status returns the HTTP status code for err. Unclassified errors map to
// 500 with the message hidden from clients.
func Status(err error) int {
	var ae *Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message for err. Unclassified errors get
// a generic message so internals never leak.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}

// IsKind reports whether err is an apperr.Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
