package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrEmptyMessage indicates that a FeedError was built without a message.
	ErrEmptyMessage = errors.New("feed error message must not be empty")

	// ErrUnknownKind indicates that a FeedError kind is neither error nor warning.
	ErrUnknownKind = errors.New("unknown feed error kind")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
