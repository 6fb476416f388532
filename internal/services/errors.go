package services

import (
	"errors"
	"fmt"

	"task-tracker/internal/database"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrStoreUnavailable = database.ErrStoreUnavailable
)

// Error pairs one of the sentinel kinds with a message safe to show clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...any) *Error {
	return newError(ErrInvalidArgument, format, args...)
}

func notFound(format string, args ...any) *Error {
	return newError(ErrNotFound, format, args...)
}

func forbidden(format string, args ...any) *Error {
	return newError(ErrForbidden, format, args...)
}

// KindName reports the taxonomy name of err for response bodies.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "Unauthorized"
	case errors.Is(err, ErrForbidden):
		return "Forbidden"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrInvalidArgument):
		return "InvalidArgument"
	case errors.Is(err, ErrStoreUnavailable):
		return "StoreUnavailable"
	default:
		return "Internal"
	}
}

// Message returns the client-facing text for err. Anything that is not a
// service error gets a generic message so internals never leak.
func Message(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return "Service temporarily unavailable"
	}
	return "Internal server error"
}
