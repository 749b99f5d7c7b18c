// Package apperr defines the error taxonomy shared by the API and its clients.
package apperr

import (
	"errors"
	"net/http"
)

// Kinds. Match with errors.Is.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrPersistence = errors.New("persistence error")
)

// Error carries a user-facing message and the kind it belongs to. Err holds the
// underlying cause and is never shown to API callers.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return e.Kind == target }

func Validation(msg string) *Error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: ErrConflict, Message: msg}
}

func Persistence(msg string, cause error) *Error {
	return &Error{Kind: ErrPersistence, Message: msg, Err: cause}
}

// Status maps err onto an HTTP status code. Anything outside the taxonomy is a 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// KindForStatus is the inverse of Status, used by HTTP clients.
func KindForStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	default:
		return ErrPersistence
	}
}

// Message returns the user-facing text of err, or fallback when err is not part
// of the taxonomy.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
