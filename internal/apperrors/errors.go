// Package apperrors defines the error taxonomy shared by the review engine
// and its storage adapters.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the referenced record does not exist. The caller
	// decides whether to recreate it.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a concurrent update collided with ours. Safe to
	// retry once with freshly loaded state.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrStorageUnavailable indicates a transient storage failure. Safe to
	// retry with backoff, but the caller must not assume the write did or
	// did not apply.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError reports malformed input. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Reason)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Validation creates a ValidationError for the given field
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFound wraps ErrNotFound with a description of the missing record
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
