// Package apperr defines the error kinds shared by services and handlers.
// Callers match kinds with errors.Is; the message carried by *Error is safe
// to show to API clients.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrUpstream         = errors.New("upstream error")
	ErrInternal         = errors.New("internal error")
)

// Error pairs a kind with a client-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func New(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Validation(msg string) *Error   { return New(ErrValidation, msg) }
func Unauthorized(msg string) *Error { return New(ErrUnauthorized, msg) }
func NotFound(msg string) *Error     { return New(ErrNotFound, msg) }
func Conflict(msg string) *Error     { return New(ErrConflict, msg) }
func Upstream(msg string) *Error     { return New(ErrUpstream, msg) }

// Internal marks err as an unexpected failure of op. The cause stays
// reachable through errors.Is for logging; clients only see a fallback.
func Internal(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}

// Message returns the client-facing message of err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
