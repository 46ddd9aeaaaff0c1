package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")

	// ErrNotInitialized is returned when an ingestor is used before
	// Initialize or after Close.
	ErrNotInitialized = errors.New("ingestor not initialized")

	// ErrSlugCreation means the slug registry ran out of candidates for a seed.
	ErrSlugCreation = errors.New("slug creation failed")

	// ErrSlugTaken reports that an insert hit the slug unique constraint
	// rather than the natural key. The caller should mint a new slug.
	ErrSlugTaken = errors.New("slug already taken")

	ErrMaxBatchSizeExceeded = errors.New("max batch size exceeded")
)

// IsFatal reports whether err belongs to a category that must abort an
// ingestion run instead of being logged and skipped.
func IsFatal(err error) bool {
	return errors.Is(err, ErrSlugCreation) ||
		errors.Is(err, ErrNotInitialized) ||
		errors.Is(err, ErrMaxBatchSizeExceeded)
}

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
