package filevalidator

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := NewValidationError(ReasonContentMismatch, "content doesn't match")
	expected := "CONTENT_MISMATCH validation error: content doesn't match"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "ValidationError",
			err:      NewValidationError(ReasonNoExtension, "test"),
			expected: true,
		},
		{
			name:     "Wrapped ValidationError",
			err:      fmt.Errorf("upload: %w", NewValidationError(ReasonNoExtension, "test")),
			expected: true,
		},
		{
			name:     "Regular error",
			err:      errors.New("regular error"),
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidationError(tt.err); got != tt.expected {
				t.Errorf("IsValidationError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReasonHelpers(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewValidationError(ReasonExtensionNotAllowed, "File type '.exe' is not allowed"))

	if !IsReason(err, ReasonExtensionNotAllowed) {
		t.Error("IsReason() = false, want true")
	}
	if IsReason(err, ReasonContentMismatch) {
		t.Error("IsReason() matched the wrong reason")
	}
	if got := GetReason(err); got != ReasonExtensionNotAllowed {
		t.Errorf("GetReason() = %q", got)
	}
	if got := GetErrorMessage(err); got != "File type '.exe' is not allowed" {
		t.Errorf("GetErrorMessage() = %q", got)
	}
	if got := GetReason(errors.New("x")); got != ReasonNone {
		t.Errorf("GetReason(plain) = %q, want empty", got)
	}
	if ReasonNone.String() != "OK" {
		t.Errorf("ReasonNone.String() = %q", ReasonNone.String())
	}
}
