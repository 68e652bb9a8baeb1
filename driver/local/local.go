package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobeaver/ingestguard"
	"github.com/gobeaver/ingestguard/filevalidator"
)

// Uploads are private to the service account.
const (
	fileMode = 0o600
	dirMode  = 0o750
)

// Adapter provides a local filesystem implementation of ingestguard.FileSystem
type Adapter struct {
	root string
}

// New creates a new local filesystem adapter rooted at root, creating the
// directory if needed.
func New(root string) (*Adapter, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(absRoot, dirMode); err != nil {
		return nil, err
	}

	return &Adapter{
		root: absRoot,
	}, nil
}

// Root returns the absolute directory files are stored under.
func (a *Adapter) Root() string {
	return a.root
}

// resolve maps path into the root, refusing anything that escapes it.
func (a *Adapter) resolve(op, path string) (string, error) {
	fullPath := filepath.Join(a.root, filepath.Clean(path))
	if path == "" || fullPath == a.root || !isPathUnderRoot(a.root, fullPath) {
		return "", &ingestguard.PathError{Op: op, Path: path, Err: ingestguard.ErrNotAllowed}
	}
	return fullPath, nil
}

// Write implements ingestguard.FileWriter
func (a *Adapter) Write(ctx context.Context, path string, content io.Reader, options ...ingestguard.Option) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := a.resolve("write", path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), dirMode); err != nil {
		return &ingestguard.PathError{Op: "write", Path: path, Err: err}
	}

	opts := ingestguard.ApplyOptions(options...)
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !opts.Overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	f, err := os.OpenFile(fullPath, flags, fileMode)
	if err != nil {
		if os.IsExist(err) {
			return &ingestguard.PathError{Op: "write", Path: path, Err: ingestguard.ErrExist}
		}
		return &ingestguard.PathError{Op: "write", Path: path, Err: err}
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(fullPath)
		return &ingestguard.PathError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &ingestguard.PathError{Op: "write", Path: path, Err: err}
	}

	return nil
}

// Read implements ingestguard.FileReader
func (a *Adapter) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := a.resolve("read", path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, mapError("read", path, err)
	}
	return f, nil
}

// ReadAll implements ingestguard.FileReader
func (a *Adapter) ReadAll(ctx context.Context, path string) ([]byte, error) {
	rc, err := a.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// Delete implements ingestguard.FileWriter
func (a *Adapter) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := a.resolve("delete", path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		return mapError("delete", path, err)
	}
	return nil
}

// FileExists implements ingestguard.FileReader
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fullPath, err := a.resolve("fileexists", path)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &ingestguard.PathError{Op: "fileexists", Path: path, Err: err}
	}

	// Return true only if it's a file (not a directory)
	return !info.IsDir(), nil
}

// Stat implements ingestguard.FileReader
func (a *Adapter) Stat(ctx context.Context, path string) (*ingestguard.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := a.resolve("stat", path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, mapError("stat", path, err)
	}
	if info.IsDir() {
		return nil, &ingestguard.PathError{Op: "stat", Path: path, Err: ingestguard.ErrNotExist}
	}

	return &ingestguard.FileInfo{
		Name:        filepath.Base(fullPath),
		Path:        path,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: contentType(fullPath),
	}, nil
}

// Checksum implements ingestguard.CanChecksum
func (a *Adapter) Checksum(ctx context.Context, path string, algorithm ingestguard.ChecksumAlgorithm) (string, error) {
	rc, err := a.Read(ctx, path)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	checksum, err := ingestguard.CalculateChecksum(rc, algorithm)
	if err != nil {
		return "", &ingestguard.PathError{Op: "checksum", Path: path, Err: err}
	}
	return checksum, nil
}

// isPathUnderRoot checks if a path is under a given root directory
func isPathUnderRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	return !filepath.IsAbs(rel) && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func mapError(op, path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		err = ingestguard.ErrNotExist
	case errors.Is(err, os.ErrPermission):
		err = ingestguard.ErrPermission
	}
	return &ingestguard.PathError{Op: op, Path: path, Err: err}
}

// contentType sniffs the stored bytes, falling back to the extension.
func contentType(fullPath string) string {
	if f, err := os.Open(fullPath); err == nil {
		defer f.Close()
		head := make([]byte, 1024)
		n, _ := io.ReadFull(f, head)
		if ext, ok := filevalidator.DetectFileType(head[:n]); ok {
			return filevalidator.MIMEForExtension(ext)
		}
	}
	if ext, ok := filevalidator.ExtensionOf(fullPath); ok {
		if mime := filevalidator.MIMEForExtension(ext); mime != "" {
			return mime
		}
	}
	return "application/octet-stream"
}
