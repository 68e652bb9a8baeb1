package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"github.com/gobeaver/ingestguard"
)

// memoryFile represents a file stored in memory
type memoryFile struct {
	content     []byte
	contentType string
	metadata    map[string]string
	modTime     time.Time
}

// Adapter provides an in-memory implementation of ingestguard.FileSystem.
// Useful for tests and for short-lived quarantine of uploads.
type Adapter struct {
	mu      sync.RWMutex
	files   map[string]*memoryFile
	maxSize int64 // Maximum total storage size (0 = unlimited)
	size    int64 // Current total size
}

// Config holds configuration for the memory adapter
type Config struct {
	// MaxSize is the maximum total storage size in bytes (0 = unlimited)
	MaxSize int64
}

// New creates a new in-memory adapter
func New(cfg ...Config) *Adapter {
	var maxSize int64
	if len(cfg) > 0 {
		maxSize = cfg[0].MaxSize
	}

	return &Adapter{
		files:   make(map[string]*memoryFile),
		maxSize: maxSize,
	}
}

// Write implements ingestguard.FileWriter
func (a *Adapter) Write(ctx context.Context, path string, content io.Reader, options ...ingestguard.Option) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, ok := normalizePath(path)
	if !ok {
		return &ingestguard.PathError{Op: "write", Path: path, Err: ingestguard.ErrInvalidName}
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return &ingestguard.PathError{Op: "write", Path: path, Err: err}
	}

	opts := ingestguard.ApplyOptions(options...)

	a.mu.Lock()
	defer a.mu.Unlock()

	newSize := a.size + int64(len(data))
	if existing, exists := a.files[path]; exists {
		if !opts.Overwrite {
			return &ingestguard.PathError{Op: "write", Path: path, Err: ingestguard.ErrExist}
		}
		newSize -= int64(len(existing.content))
	}

	if a.maxSize > 0 && newSize > a.maxSize {
		return &ingestguard.PathError{Op: "write", Path: path, Err: ingestguard.ErrNoSpace}
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	a.files[path] = &memoryFile{
		content:     data,
		contentType: contentType,
		metadata:    copyMetadata(opts.Metadata),
		modTime:     time.Now(),
	}
	a.size = newSize

	return nil
}

// Read implements ingestguard.FileReader
func (a *Adapter) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	data, err := a.ReadAll(ctx, path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// ReadAll implements ingestguard.FileReader. The returned slice is a copy.
func (a *Adapter) ReadAll(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, _ = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, exists := a.files[path]
	if !exists {
		return nil, &ingestguard.PathError{Op: "read", Path: path, Err: ingestguard.ErrNotExist}
	}
	return bytes.Clone(file.content), nil
}

// Delete implements ingestguard.FileWriter
func (a *Adapter) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, _ = normalizePath(path)

	a.mu.Lock()
	defer a.mu.Unlock()

	file, exists := a.files[path]
	if !exists {
		return &ingestguard.PathError{Op: "delete", Path: path, Err: ingestguard.ErrNotExist}
	}

	a.size -= int64(len(file.content))
	delete(a.files, path)
	return nil
}

// FileExists implements ingestguard.FileReader
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path, _ = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	_, exists := a.files[path]
	return exists, nil
}

// Stat implements ingestguard.FileReader
func (a *Adapter) Stat(ctx context.Context, path string) (*ingestguard.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, _ = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, exists := a.files[path]
	if !exists {
		return nil, &ingestguard.PathError{Op: "stat", Path: path, Err: ingestguard.ErrNotExist}
	}

	name := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		name = path[i+1:]
	}
	return &ingestguard.FileInfo{
		Name:        name,
		Path:        path,
		Size:        int64(len(file.content)),
		ModTime:     file.modTime,
		ContentType: file.contentType,
		Metadata:    copyMetadata(file.metadata),
	}, nil
}

// Checksum implements ingestguard.CanChecksum
func (a *Adapter) Checksum(ctx context.Context, path string, algorithm ingestguard.ChecksumAlgorithm) (string, error) {
	data, err := a.ReadAll(ctx, path)
	if err != nil {
		return "", err
	}

	checksum, err := ingestguard.CalculateChecksum(bytes.NewReader(data), algorithm)
	if err != nil {
		return "", &ingestguard.PathError{Op: "checksum", Path: path, Err: err}
	}
	return checksum, nil
}

// Keys returns the stored paths matching a glob pattern such as "*.png",
// sorted. An empty pattern matches everything.
func (a *Adapter) Keys(pattern string) ([]string, error) {
	var g glob.Glob
	if pattern != "" {
		var err error
		if g, err = glob.Compile(pattern, '/'); err != nil {
			return nil, err
		}
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	keys := make([]string, 0, len(a.files))
	for path := range a.files {
		if g == nil || g.Match(path) {
			keys = append(keys, path)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear removes all files
func (a *Adapter) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.files = make(map[string]*memoryFile)
	a.size = 0
}

// Size returns the current total size of all stored files
func (a *Adapter) Size() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.size
}

// FileCount returns the number of files stored
func (a *Adapter) FileCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.files)
}

// normalizePath strips leading slashes and refuses traversal.
func normalizePath(path string) (string, bool) {
	path = strings.TrimLeft(strings.ReplaceAll(path, `\`, "/"), "/")
	if path == "" {
		return "", false
	}
	for _, part := range strings.Split(path, "/") {
		if part == ".." || part == "." || part == "" {
			return path, false
		}
	}
	return path, true
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
