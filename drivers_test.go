package ingestguard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

func init() {
	// Register test drivers
	RegisterDriver("local", newLocalDriver)
	RegisterDriver("s3", newS3Driver)
}

func newLocalDriver(cfg *Config) (FileSystem, error) {
	if cfg.LocalBasePath == "" {
		return nil, fmt.Errorf("local base path is required")
	}
	return &testLocalFS{basePath: cfg.LocalBasePath}, nil
}

func newS3Driver(cfg *Config) (FileSystem, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	return &testS3FS{bucket: cfg.S3Bucket, files: make(map[string][]byte)}, nil
}

// testLocalFS is a simple local filesystem implementation for testing
type testLocalFS struct {
	basePath string
}

func (fs *testLocalFS) Write(ctx context.Context, path string, reader io.Reader, options ...Option) error {
	fullPath := filepath.Join(fs.basePath, path)
	if !ApplyOptions(options...).Overwrite {
		if _, err := os.Stat(fullPath); err == nil {
			return &PathError{Op: "write", Path: path, Err: ErrExist}
		}
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, 0o600)
}

func (fs *testLocalFS) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(fs.basePath, path))
	if os.IsNotExist(err) {
		return nil, &PathError{Op: "read", Path: path, Err: ErrNotExist}
	}
	return f, err
}

func (fs *testLocalFS) ReadAll(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(fs.basePath, path))
	if os.IsNotExist(err) {
		return nil, &PathError{Op: "read", Path: path, Err: ErrNotExist}
	}
	return data, err
}

func (fs *testLocalFS) FileExists(ctx context.Context, path string) (bool, error) {
	stat, err := os.Stat(filepath.Join(fs.basePath, path))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !stat.IsDir(), nil
}

func (fs *testLocalFS) Stat(ctx context.Context, path string) (*FileInfo, error) {
	stat, err := os.Stat(filepath.Join(fs.basePath, path))
	if os.IsNotExist(err) {
		return nil, &PathError{Op: "stat", Path: path, Err: ErrNotExist}
	}
	if err != nil {
		return nil, err
	}
	return &FileInfo{Name: stat.Name(), Path: path, Size: stat.Size(), ModTime: stat.ModTime()}, nil
}

func (fs *testLocalFS) Delete(ctx context.Context, path string) error {
	err := os.Remove(filepath.Join(fs.basePath, path))
	if os.IsNotExist(err) {
		return &PathError{Op: "delete", Path: path, Err: ErrNotExist}
	}
	return err
}

// testS3FS keeps objects in a map, standing in for a bucket
type testS3FS struct {
	mu     sync.Mutex
	bucket string
	files  map[string][]byte
	types  map[string]string
}

func (fs *testS3FS) Write(ctx context.Context, path string, reader io.Reader, options ...Option) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	opts := ApplyOptions(options...)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.files[path]; ok && !opts.Overwrite {
		return &PathError{Op: "write", Path: path, Err: ErrExist}
	}
	fs.files[path] = data
	if fs.types == nil {
		fs.types = make(map[string]string)
	}
	fs.types[path] = opts.ContentType
	return nil
}

func (fs *testS3FS) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	data, err := fs.ReadAll(ctx, path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (fs *testS3FS) ReadAll(ctx context.Context, path string) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	data, ok := fs.files[path]
	if !ok {
		return nil, &PathError{Op: "read", Path: path, Err: ErrNotExist}
	}
	return data, nil
}

func (fs *testS3FS) FileExists(ctx context.Context, path string) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, ok := fs.files[path]
	return ok, nil
}

func (fs *testS3FS) Stat(ctx context.Context, path string) (*FileInfo, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	data, ok := fs.files[path]
	if !ok {
		return nil, &PathError{Op: "stat", Path: path, Err: ErrNotExist}
	}
	return &FileInfo{Name: path, Path: path, Size: int64(len(data)), ContentType: fs.types[path]}, nil
}

func (fs *testS3FS) Delete(ctx context.Context, path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.files[path]; !ok {
		return &PathError{Op: "delete", Path: path, Err: ErrNotExist}
	}
	delete(fs.files, path)
	return nil
}
