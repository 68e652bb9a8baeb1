package filevalidator

import (
	"strings"
)

// Validator checks an untrusted upload before it reaches storage.
type Validator interface {
	ValidateUpload(content []byte, filename string) ValidationResult
}

// UploadValidator binds an extension allow-list to ValidateUpload.
type UploadValidator struct {
	allowed Extensions
}

// New creates an UploadValidator accepting the given extensions.
func New(allowed Extensions) *UploadValidator {
	return &UploadValidator{allowed: allowed}
}

// NewDefault creates an UploadValidator with DefaultUploadExtensions.
func NewDefault() *UploadValidator {
	return New(DefaultUploadExtensions())
}

// Allowed returns the allow-list.
func (v *UploadValidator) Allowed() Extensions {
	return v.allowed
}

// ValidateUpload implements Validator.
func (v *UploadValidator) ValidateUpload(content []byte, filename string) ValidationResult {
	return ValidateUpload(content, filename, v.allowed)
}

// ImageValidator restricts uploads to ImageExtensions and runs CheckImage
// after the general verification.
type ImageValidator struct {
	allowed Extensions
}

// NewImageValidator creates an ImageValidator. A nil allow-list means
// every image extension.
func NewImageValidator(allowed Extensions) *ImageValidator {
	images := ImageExtensions()
	if allowed == nil {
		allowed = images
	}
	narrowed := make(Extensions, len(allowed))
	for ext := range allowed {
		if images.Has(ext) {
			narrowed[ext] = struct{}{}
		}
	}
	return &ImageValidator{allowed: narrowed}
}

// ValidateUpload implements Validator.
func (v *ImageValidator) ValidateUpload(content []byte, filename string) ValidationResult {
	res := ValidateUpload(content, filename, v.allowed)
	if !res.Valid {
		return res
	}
	return CheckImage(content, res.Extension)
}

// ValidateUpload verifies an upload in order: the filename has an
// extension, the extension is in allowed, and the content carries that
// extension's magic bytes.
func ValidateUpload(content []byte, filename string, allowed Extensions) ValidationResult {
	ext, ok := ExtensionOf(filename)
	if !ok {
		return reject("", ReasonNoExtension, "File must have an extension")
	}

	if !allowed.Has(ext) {
		return reject(ext, ReasonExtensionNotAllowed, "File type '.%s' is not allowed", ext)
	}

	valid, detected := ValidateMagicBytes(content, ext)
	if !valid {
		if detected != "" {
			return reject(ext, ReasonContentMismatch,
				"File content doesn't match extension (appears to be %s)", detected)
		}
		return reject(ext, ReasonContentMismatch,
			"Could not verify file type - content doesn't match extension")
	}

	return accept(ext, detected)
}

// ExtensionOf returns the normalized text after the last dot of the
// filename's base name. A name without a dot, or ending in one, has none.
func ExtensionOf(filename string) (string, bool) {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return "", false
	}
	ext := NormalizeExtension(base[i+1:])
	return ext, ext != ""
}
