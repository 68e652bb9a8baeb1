package ingestguard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"github.com/gobeaver/ingestguard/filevalidator"
	"github.com/gobeaver/ingestguard/markup"
)

// Key naming schemes
const (
	NamingUUID     = "uuid"
	NamingChecksum = "checksum"
)

// StoredUpload describes an accepted upload.
type StoredUpload struct {
	// Key is the storage key; the uploader's filename is never used
	Key string
	// URL is PublicPrefix joined with Key
	URL string
	// MIME is the type confirmed from the content
	MIME string
	// Size is the stored size, after any sanitization
	Size int64
	// Checksum is the SHA-256 of the stored content
	Checksum string
	// OriginalName is the base name the uploader supplied
	OriginalName string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger for rejections and accepted uploads.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store verifies untrusted uploads and rich-text fields before anything
// reaches the backing FileSystem.
type Store struct {
	fs      FileSystem
	cfg     Config
	allowed filevalidator.Extensions
	images  *filevalidator.ImageValidator
	xml     *filevalidator.XMLValidator
	blocked []glob.Glob
	logger  *slog.Logger
}

// NewStore wraps fs. A nil cfg means DefaultConfig.
func NewStore(fs FileSystem, cfg *Config, opts ...StoreOption) (*Store, error) {
	if fs == nil {
		return nil, fmt.Errorf("file system is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Store{
		fs:      fs,
		cfg:     *cfg,
		allowed: filevalidator.ParseExtensions(cfg.AllowedExtensions),
		images:  filevalidator.NewImageValidator(filevalidator.ParseExtensions(cfg.ImageExtensions)),
		xml:     filevalidator.DefaultXMLValidator(),
	}

	switch s.cfg.Naming {
	case "":
		s.cfg.Naming = NamingUUID
	case NamingUUID, NamingChecksum:
	default:
		return nil, fmt.Errorf("unknown naming scheme: %s", s.cfg.Naming)
	}

	for _, p := range strings.Split(cfg.BlockedNamePatterns, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid blocked name pattern %q: %w", p, err)
		}
		s.blocked = append(s.blocked, g)
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = NewLogger(&s.cfg)
	}

	return s, nil
}

// FileSystem returns the backing storage.
func (s *Store) FileSystem() FileSystem {
	return s.fs
}

// Put verifies content against its claimed filename and stores it under
// a generated key. A nil allowed list means the configured
// AllowedExtensions. SVG content is sanitized before storage and XML
// reports must be free of DTDs.
//
// Rejections are returned as *UploadError.
func (s *Store) Put(ctx context.Context, filename string, content []byte, allowed filevalidator.Extensions) (*StoredUpload, error) {
	if allowed == nil {
		allowed = s.allowed
	}
	return s.put(ctx, filename, content, func() filevalidator.ValidationResult {
		return filevalidator.ValidateUpload(content, filename, allowed)
	})
}

// PutImage stores an image upload such as a screenshot. Beyond Put's
// checks, SVG files carrying active content are refused outright.
func (s *Store) PutImage(ctx context.Context, filename string, content []byte) (*StoredUpload, error) {
	return s.put(ctx, filename, content, func() filevalidator.ValidationResult {
		return s.images.ValidateUpload(content, filename)
	})
}

// PutReader reads at most MaxUploadSize bytes from r and calls Put.
func (s *Store) PutReader(ctx context.Context, filename string, r io.Reader, allowed filevalidator.Extensions) (*StoredUpload, error) {
	if s.cfg.MaxUploadSize > 0 {
		r = io.LimitReader(r, s.cfg.MaxUploadSize+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return s.Put(ctx, filename, content, allowed)
}

func (s *Store) put(ctx context.Context, filename string, content []byte, verify func() filevalidator.ValidationResult) (*StoredUpload, error) {
	name := baseName(filename)

	if s.cfg.MaxUploadSize > 0 && int64(len(content)) > s.cfg.MaxUploadSize {
		return nil, s.reject(ctx, name, ReasonTooLarge,
			fmt.Sprintf("File exceeds the maximum upload size of %d bytes", s.cfg.MaxUploadSize))
	}
	if s.isBlockedName(name) {
		return nil, s.reject(ctx, name, ReasonBlockedName, fmt.Sprintf("File name '%s' is not allowed", name))
	}

	res := verify()
	if !res.Valid {
		return nil, s.reject(ctx, name, res.Reason, res.Message)
	}

	switch res.Extension {
	case "svg":
		content = markup.SanitizeSVG(content)
	case "xml", "nessus":
		if err := s.xml.ValidateContent(content); err != nil {
			reason := filevalidator.GetReason(err)
			if reason == filevalidator.ReasonNone {
				reason = filevalidator.ReasonDangerousContent
			}
			return nil, s.reject(ctx, name, reason, filevalidator.GetErrorMessage(err))
		}
	}

	sum, err := checksumBytes(content, ChecksumSHA256)
	if err != nil {
		return nil, err
	}
	key, err := s.newKey(content, res.Extension)
	if err != nil {
		return nil, err
	}

	err = s.fs.Write(ctx, key, bytes.NewReader(content),
		WithContentType(res.DetectedMIME),
		WithMetadata(map[string]string{
			"original-name": name,
			"sha256":        sum,
		}),
		// identical content maps to the same checksum key
		WithOverwrite(s.cfg.Naming == NamingChecksum),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	upload := &StoredUpload{
		Key:          key,
		URL:          s.cfg.PublicPrefix + key,
		MIME:         res.DetectedMIME,
		Size:         int64(len(content)),
		Checksum:     sum,
		OriginalName: name,
	}
	s.logger.InfoContext(ctx, "upload stored",
		"key", upload.Key,
		"original_name", upload.OriginalName,
		"mime", upload.MIME,
		"size", upload.Size,
	)
	return upload, nil
}

func (s *Store) newKey(content []byte, ext string) (string, error) {
	if s.cfg.Naming == NamingChecksum {
		sum, err := checksumBytes(content, ChecksumXXHash)
		if err != nil {
			return "", err
		}
		return sum + "." + ext, nil
	}
	return uuid.NewString() + "." + ext, nil
}

func (s *Store) isBlockedName(name string) bool {
	lower := strings.ToLower(name)
	for _, g := range s.blocked {
		if g.Match(lower) {
			return true
		}
	}
	return false
}

func (s *Store) reject(ctx context.Context, name string, reason filevalidator.ReasonCode, message string) error {
	s.logger.WarnContext(ctx, "upload rejected",
		"original_name", name,
		"reason", reason.String(),
		"message", message,
	)
	return newUploadError(name, reason, message)
}

// Get returns the content stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey("get", key); err != nil {
		return nil, err
	}
	return s.fs.ReadAll(ctx, key)
}

// Stat returns metadata for the upload stored under key.
func (s *Store) Stat(ctx context.Context, key string) (*FileInfo, error) {
	if err := checkKey("stat", key); err != nil {
		return nil, err
	}
	return s.fs.Stat(ctx, key)
}

// Exists reports whether an upload is stored under key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := checkKey("exists", key); err != nil {
		return false, err
	}
	return s.fs.FileExists(ctx, key)
}

// Delete removes the upload stored under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := checkKey("delete", key); err != nil {
		return err
	}
	if err := s.fs.Delete(ctx, key); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "upload deleted", "key", key)
	return nil
}

// SanitizeField cleans a user-supplied rich-text HTML field before it is
// persisted or rendered.
func (s *Store) SanitizeField(name, value string) (string, error) {
	if err := s.checkFieldSize(name, value); err != nil {
		return "", err
	}
	return markup.SanitizeHTML(value), nil
}

// RenderField renders a user-supplied Markdown field to sanitized HTML.
func (s *Store) RenderField(name, value string) (string, error) {
	if err := s.checkFieldSize(name, value); err != nil {
		return "", err
	}
	return markup.ToHTML(value), nil
}

func (s *Store) checkFieldSize(name, value string) error {
	if s.cfg.MaxMarkupSize > 0 && len(value) > s.cfg.MaxMarkupSize {
		err := newUploadError(name, ReasonTooLarge,
			fmt.Sprintf("Field '%s' exceeds the maximum size of %d bytes", name, s.cfg.MaxMarkupSize))
		s.logger.Warn("field rejected", "field", name, "size", len(value))
		return err
	}
	return nil
}

// checkKey accepts only keys the store could have generated: a single
// path element that is not hidden.
func checkKey(op, key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return &PathError{Op: op, Path: key, Err: ErrInvalidName}
	}
	return nil
}

func baseName(filename string) string {
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		return filename[i+1:]
	}
	return filename
}
