// Package errs defines the error kinds surfaced by the ledger core.
//
// Errors are wrapped with fmt.Errorf("%w: ...", kind) and classified with
// errors.Is. The core never produces user-facing text; callers translate kinds.
package errs

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing user, bill, group or split.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks an actor without the right to perform the action.
	ErrForbidden = errors.New("forbidden")
	// ErrAlreadyLinked marks a friendship that already exists in either direction.
	ErrAlreadyLinked = errors.New("already linked")
	// ErrSelfReference marks an attempt to befriend oneself.
	ErrSelfReference = errors.New("self reference")
	// ErrConflict marks state that changed underfoot, e.g. a store write conflict.
	ErrConflict = errors.New("conflict")
	// ErrStoreUnavailable marks a backing-store timeout or connection failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)

var kinds = []error{
	ErrValidation,
	ErrNotFound,
	ErrForbidden,
	ErrAlreadyLinked,
	ErrSelfReference,
	ErrConflict,
	ErrStoreUnavailable,
}

// Validation returns an ErrValidation with a formatted detail.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound naming the missing entity.
func NotFound(entity, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}

// Forbidden returns an ErrForbidden with a formatted detail.
func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// Kind returns the sentinel kind wrapped by err, or nil if err carries none.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrStoreUnavailable
	}
	return nil
}
