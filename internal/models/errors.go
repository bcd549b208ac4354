package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the inventory domain. NotFound and SizeNotFound are
// rejected before any write; StoreUnavailable marks a transient backing
// store failure that is safe to retry.
var (
	ErrItemNotFound     = errors.New("inventory item not found")
	ErrSizeNotFound     = errors.New("size not found on inventory item")
	ErrAlertNotFound    = errors.New("stock alert not found")
	ErrVersionConflict  = errors.New("inventory item version conflict")
	ErrStoreUnavailable = errors.New("backing store unavailable")
)

// ValidationError rejects a mutation before any write occurs. Retrying the
// same request unchanged will fail again.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
