// Package apperror defines the domain errors shared by services and handlers.
// Services return them; handler.writeError turns Code(err) into an HTTP status.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinels. Every AppError wraps exactly one of these, so callers branch
// with errors.Is instead of matching messages.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized") // bad credentials or a missing/invalid token
)

// Machine-readable codes sent to clients in the "error" field.
const (
	CodeValidation   = "validation_error"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeInternal     = "internal_error"
)

// AppError is a domain error with a message that is safe to show a client.
type AppError struct {
	Err     error  // one of the sentinels above
	Message string // human-readable, returned to the client as-is
	Field   string // request field at fault, validation only
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing resource, e.g. "note not found with id abc".
// Ownership failures on reads use it too, so ids of other users' records
// are never confirmed.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden is for writes to a resource the caller does not own.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is for failed authentication.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Code classifies err by the sentinel it wraps. It walks the whole chain,
// so an AppError wrapped with fmt.Errorf("...: %w", err) keeps its code.
// Anything that is not an AppError is CodeInternal.
func Code(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return CodeInternal
	}
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrConflict):
		return CodeConflict
	}
	return CodeInternal
}
