package filevalidator

import "fmt"

// ValidationResult is the outcome of a single verification call.
type ValidationResult struct {
	// Valid indicates whether the file passed every check
	Valid bool

	// DetectedMIME is the MIME type confirmed from the content (set when Valid)
	DetectedMIME string

	// Extension is the normalized extension taken from the filename
	Extension string

	// Reason classifies a rejection; ReasonNone when Valid
	Reason ReasonCode

	// Message is human-readable and safe to return to the uploader
	Message string
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return NewValidationError(r.Reason, r.Message)
}

// Summary returns a one-line description for logs and CLI output.
func (r ValidationResult) Summary() string {
	if r.Valid {
		return fmt.Sprintf("ok (%s)", r.DetectedMIME)
	}
	return fmt.Sprintf("rejected %s: %s", r.Reason, r.Message)
}

func accept(ext, mime string) ValidationResult {
	return ValidationResult{Valid: true, Extension: ext, DetectedMIME: mime, Message: "OK"}
}

func reject(ext string, reason ReasonCode, format string, args ...any) ValidationResult {
	return ValidationResult{Extension: ext, Reason: reason, Message: fmt.Sprintf(format, args...)}
}
