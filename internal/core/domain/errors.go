package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrVersionConflict signals a lost optimistic-concurrency race: the
	// record changed between read and write. The caller must re-evaluate
	// from a fresh read; the core never retries on its own.
	ErrVersionConflict = errors.New("record version conflict")
)

// ConflictError reports which field collided on a uniqueness or
// super-admin-limit violation. The caller must resubmit with different data.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already in use", e.Field)
}

// ValidationError reports malformed input. Raised before any persistence
// call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
