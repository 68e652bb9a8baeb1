package ingestguard

import (
	"errors"
	"fmt"

	"github.com/gobeaver/ingestguard/filevalidator"
)

// Common storage errors
var (
	ErrNotExist     = errors.New("file does not exist")
	ErrExist        = errors.New("file already exists")
	ErrPermission   = errors.New("permission denied")
	ErrInvalidName  = errors.New("invalid name")
	ErrNotSupported = errors.New("operation not supported")
	ErrNotAllowed   = errors.New("operation not allowed")
	ErrNoSpace      = errors.New("no space left on device")
)

// PathError records an error and the operation and file path that caused it
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *PathError) Unwrap() error {
	return e.Err
}

// IsNotExist reports whether an error indicates that a file does not exist
func IsNotExist(err error) bool {
	return errors.Is(err, ErrNotExist)
}

// IsExist reports whether an error indicates that a file already exists
func IsExist(err error) bool {
	return errors.Is(err, ErrExist)
}

// IsPermission reports whether an error indicates that permission is denied
func IsPermission(err error) bool {
	return errors.Is(err, ErrPermission)
}

// Rejection reasons that only the store produces. Verifier reasons are
// reused as-is.
const (
	ReasonTooLarge    filevalidator.ReasonCode = "TOO_LARGE"
	ReasonBlockedName filevalidator.ReasonCode = "BLOCKED_NAME"
)

// UploadError is returned when the store refuses an upload. Message is
// safe to show to the uploader.
type UploadError struct {
	Filename string
	Reason   filevalidator.ReasonCode
	Message  string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %q rejected (%s): %s", e.Filename, e.Reason, e.Message)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

func newUploadError(filename string, reason filevalidator.ReasonCode, message string) *UploadError {
	return &UploadError{
		Filename: filename,
		Reason:   reason,
		Message:  message,
		Err:      filevalidator.NewValidationError(reason, message),
	}
}

// IsRejected reports whether err is an upload rejection, as opposed to a
// storage failure.
func IsRejected(err error) bool {
	var ue *UploadError
	return errors.As(err, &ue)
}
