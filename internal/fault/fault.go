// Package fault defines the error taxonomy shared by all tide services
// and storage adapters. Callers classify failures with errors.Is/As.
package fault

import (
	"errors"
	"fmt"
)

// Sentinel errors for the caller-facing failure classes.
var (
	// ErrValidation marks malformed input (bad time zone, non-positive
	// duration, out-of-enum values). Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an absent entity. Cross-user reads also surface
	// as not found unless the caller proves ownership elsewhere.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a duplicate key on create, typically a lost
	// get-or-create race on a deterministic id.
	ErrConflict = errors.New("already exists")

	// ErrUnauthorized marks an access attempt on another user's tide.
	ErrUnauthorized = errors.New("not authorized")
)

// Store identifies which half of the hybrid persistence engine failed.
type Store string

const (
	StoreIndex    Store = "index"
	StoreDocument Store = "document"
)

// StorageError wraps an I/O or integrity failure from one of the two
// stores so callers can tell an inconsistent index from an inconsistent
// document.
type StorageError struct {
	Store Store
	Op    string
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s store: %s: %v", e.Store, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage builds a StorageError for the given store and operation.
func Storage(store Store, op string, err error) *StorageError {
	return &StorageError{Store: store, Op: op, Err: err}
}

// Validationf wraps ErrValidation with a formatted reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// NotFoundf wraps ErrNotFound with a formatted reason.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

// Conflictf wraps ErrConflict with a formatted reason.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConflict}, args...)...)
}

// IsStorage reports whether err is a StorageError, optionally returning it.
func IsStorage(err error) (*StorageError, bool) {
	var se *StorageError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
