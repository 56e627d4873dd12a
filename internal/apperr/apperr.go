// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInternal        = errors.New("internal error")
)

// Unauthorized wraps ErrUnauthorized with a client-facing reason.
func Unauthorized(msg string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
}

// NotFound wraps ErrNotFound with the missing resource name.
func NotFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// Conflict wraps ErrConflict with the conflicting resource name.
func Conflict(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrConflict)
}

func InvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

// Wrap marks err as internal, recording the failing operation.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to show a client. Internal details are hidden.
func Message(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "Server Error"
	}
	return err.Error()
}
