package filevalidator

import (
	"errors"
	"fmt"
)

// ReasonCode is the machine-checkable classification of a rejection.
// Callers branch on it instead of parsing messages.
type ReasonCode string

const (
	ReasonNone                ReasonCode = ""
	ReasonNoExtension         ReasonCode = "NO_EXTENSION"
	ReasonExtensionNotAllowed ReasonCode = "EXTENSION_NOT_ALLOWED"
	ReasonContentMismatch     ReasonCode = "CONTENT_MISMATCH"
	ReasonNotAnImage          ReasonCode = "NOT_AN_IMAGE"
	ReasonDangerousContent    ReasonCode = "DANGEROUS_CONTENT"
)

// String implements fmt.Stringer
func (r ReasonCode) String() string {
	if r == ReasonNone {
		return "OK"
	}
	return string(r)
}

// ValidationError is the error form of a rejected ValidationResult.
type ValidationError struct {
	// Reason categorizes the rejection.
	Reason ReasonCode

	// Message is the human-readable description.
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation error: %s", e.Reason, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(reason ReasonCode, message string) *ValidationError {
	return &ValidationError{
		Reason:  reason,
		Message: message,
	}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsReason checks if an error is a ValidationError with the given reason
func IsReason(err error, reason ReasonCode) bool {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Reason == reason
	}
	return false
}

// GetReason returns the reason of a ValidationError, or ReasonNone
func GetReason(err error) ReasonCode {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Reason
	}
	return ReasonNone
}

// GetErrorMessage returns the message of a ValidationError, or empty string if not a ValidationError
func GetErrorMessage(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	return ""
}
