package message

import (
	"errors"
	"fmt"
)

// ValidationError reports a structurally malformed message or payload.
// Validation never mutates state; the error surfaces to the caller as a
// client error.
type ValidationError struct {
	// Field names the offending descriptor field or schema path, when known.
	Field string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid message: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid message: %s", e.Message)
}

// IsValidation reports whether err is a ValidationError.
// Uses errors.As to handle wrapped errors.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
