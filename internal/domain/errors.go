package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals a rejected request payload.
	ErrValidation = errors.New("validation failed")
	// ErrUnknownIndex signals a search against an index the stacker does not own.
	ErrUnknownIndex = errors.New("unknown index")
	// ErrUnknownKind signals an unrecognized document kind.
	ErrUnknownKind = errors.New("unknown document kind")
	// ErrUnknownEntity signals an unrecognized change-event entity.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrMixedIDValues signals an id scan that returned both scalar and list values.
	ErrMixedIDValues = errors.New("mixed scalar and list id values")
	// ErrGroupStartNotFound signals a group resume whose start id is absent from the result set.
	ErrGroupStartNotFound = errors.New("could not locate id")
	// ErrBulkIndexFailed signals documents still rejected after the bulk retry.
	ErrBulkIndexFailed = errors.New("bulk index failed")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
)

// ValidationError wraps ErrValidation with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation creates a field-level validation error.
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
