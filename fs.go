package ingestguard

import (
	"context"
	"io"
	"time"
)

// FileInfo represents stored file metadata
type FileInfo struct {
	Name        string
	Path        string
	Size        int64
	ModTime     time.Time
	ContentType string
	Metadata    map[string]string
}

// FileReader provides read-only storage access.
type FileReader interface {
	// Read returns a stream for reading file content.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// ReadAll reads entire file into memory.
	ReadAll(ctx context.Context, path string) ([]byte, error)

	// FileExists checks if a file exists at path.
	FileExists(ctx context.Context, path string) (bool, error)

	// Stat returns file metadata.
	Stat(ctx context.Context, path string) (*FileInfo, error)
}

// FileWriter provides write storage operations.
type FileWriter interface {
	// Write writes content from reader to path.
	Write(ctx context.Context, path string, r io.Reader, opts ...Option) error

	// Delete removes a file.
	Delete(ctx context.Context, path string) error
}

// FileSystem is the storage backend behind a Store. Drivers implement it
// and register themselves with RegisterDriver.
type FileSystem interface {
	FileReader
	FileWriter
}

// ChecksumAlgorithm represents a supported checksum algorithm
type ChecksumAlgorithm string

const (
	// ChecksumSHA256 is the SHA-256 hash algorithm (256-bit, recommended)
	ChecksumSHA256 ChecksumAlgorithm = "sha256"
	// ChecksumXXHash is the xxHash algorithm (64-bit, extremely fast)
	ChecksumXXHash ChecksumAlgorithm = "xxhash"
)

// CanChecksum indicates the backend can hash stored content without the
// caller streaming it back.
//
//	if cs, ok := fs.(CanChecksum); ok {
//	    sum, err := cs.Checksum(ctx, key, ChecksumSHA256)
//	}
type CanChecksum interface {
	Checksum(ctx context.Context, path string, algorithm ChecksumAlgorithm) (string, error)
}
