// internal/errors/errors.go
package errors

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind classifies pipeline errors so the transport layer (out of scope
// here) can map them to client/server responses.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation covers bad input rejected before any store write:
	// missing ids, self-targeting, malformed actions.
	KindValidation
	// KindNotFound covers lookups of rows that do not exist.
	KindNotFound
	// KindPersistence covers store unavailability or unexpected
	// constraint violations. The pipeline performs no retries; retry
	// policy belongs to the caller.
	KindPersistence
)

// Error is the pipeline's error type. It wraps an underlying cause when
// one exists.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// InvalidArgument creates a validation error. Use in service layers for
// bad input before touching the store.
func InvalidArgument(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// NotFound creates a not-found error.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Map converts repo/infra errors into classified pipeline errors.
// Keeps service layers clean by centralizing the mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return err // already classified
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Msg: "record not found", Err: err}

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindPersistence, Msg: "request timed out", Err: err}

	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindPersistence, Msg: "request was canceled", Err: err}

	default:
		return &Error{Kind: KindPersistence, Msg: "store operation failed", Err: err}
	}
}

// KindOf reports the classification of err, KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
