package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/gobeaver/ingestguard"
)

// API is the subset of *s3.Client the adapter calls.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Adapter provides an S3 implementation of ingestguard.FileSystem
type Adapter struct {
	client API
	bucket string
	prefix string
}

// AdapterOption is a function that configures Adapter
type AdapterOption func(*Adapter)

// WithPrefix sets the prefix for S3 objects
func WithPrefix(prefix string) AdapterOption {
	return func(a *Adapter) {
		// Ensure prefix ends with a slash if it's not empty
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		a.prefix = prefix
	}
}

// New creates a new S3 adapter
func New(client API, bucket string, options ...AdapterOption) *Adapter {
	adapter := &Adapter{
		client: client,
		bucket: bucket,
	}

	for _, option := range options {
		option(adapter)
	}

	return adapter
}

func (a *Adapter) key(op, filePath string) (string, error) {
	for _, part := range strings.Split(filePath, "/") {
		if part == ".." {
			return "", &ingestguard.PathError{Op: op, Path: filePath, Err: ingestguard.ErrNotAllowed}
		}
	}
	clean := strings.TrimPrefix(path.Clean("/"+filePath), "/")
	if clean == "" {
		return "", &ingestguard.PathError{Op: op, Path: filePath, Err: ingestguard.ErrNotAllowed}
	}
	return a.prefix + clean, nil
}

// Write implements ingestguard.FileWriter. Without WithOverwrite the put
// is conditional and fails with ErrExist if the key is taken.
func (a *Adapter) Write(ctx context.Context, filePath string, content io.Reader, options ...ingestguard.Option) error {
	key, err := a.key("write", filePath)
	if err != nil {
		return err
	}
	opts := ingestguard.ApplyOptions(options...)

	// PutObject needs a known length
	var body *bytes.Reader
	switch r := content.(type) {
	case *bytes.Reader:
		body = r
	default:
		data, err := io.ReadAll(content)
		if err != nil {
			return &ingestguard.PathError{Op: "write", Path: filePath, Err: err}
		}
		body = bytes.NewReader(data)
	}

	input := &s3.PutObjectInput{
		Bucket:            aws.String(a.bucket),
		Key:               aws.String(key),
		Body:              body,
		ContentLength:     aws.Int64(int64(body.Len())),
		ChecksumAlgorithm: types.ChecksumAlgorithmSha256,
		ACL:               types.ObjectCannedACLPrivate,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if len(opts.Metadata) > 0 {
		metadata := make(map[string]string, len(opts.Metadata))
		for k, v := range opts.Metadata {
			metadata[k] = v
		}
		input.Metadata = metadata
	}
	if !opts.Overwrite {
		input.IfNoneMatch = aws.String("*")
	}

	if _, err := a.client.PutObject(ctx, input); err != nil {
		return mapS3Error("write", filePath, err)
	}
	return nil
}

// Read implements ingestguard.FileReader
func (a *Adapter) Read(ctx context.Context, filePath string) (io.ReadCloser, error) {
	key, err := a.key("read", filePath)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapS3Error("read", filePath, err)
	}

	return resp.Body, nil
}

// ReadAll implements ingestguard.FileReader
func (a *Adapter) ReadAll(ctx context.Context, filePath string) ([]byte, error) {
	rc, err := a.Read(ctx, filePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// Delete implements ingestguard.FileWriter. S3 deletes are idempotent, so
// existence is checked first to report ErrNotExist like other drivers.
func (a *Adapter) Delete(ctx context.Context, filePath string) error {
	key, err := a.key("delete", filePath)
	if err != nil {
		return err
	}

	exists, err := a.FileExists(ctx, filePath)
	if err != nil {
		return err
	}
	if !exists {
		return &ingestguard.PathError{Op: "delete", Path: filePath, Err: ingestguard.ErrNotExist}
	}

	_, err = a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return mapS3Error("delete", filePath, err)
	}
	return nil
}

// FileExists implements ingestguard.FileReader
func (a *Adapter) FileExists(ctx context.Context, filePath string) (bool, error) {
	key, err := a.key("fileexists", filePath)
	if err != nil {
		return false, err
	}

	_, err = a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, mapS3Error("fileexists", filePath, err)
	}

	return true, nil
}

// Stat implements ingestguard.FileReader
func (a *Adapter) Stat(ctx context.Context, filePath string) (*ingestguard.FileInfo, error) {
	key, err := a.key("stat", filePath)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapS3Error("stat", filePath, err)
	}

	metadata := make(map[string]string, len(resp.Metadata))
	for k, v := range resp.Metadata {
		metadata[k] = v
	}

	return &ingestguard.FileInfo{
		Name:        path.Base(key),
		Path:        filePath,
		Size:        aws.ToInt64(resp.ContentLength),
		ModTime:     aws.ToTime(resp.LastModified),
		ContentType: aws.ToString(resp.ContentType),
		Metadata:    metadata,
	}, nil
}

// Checksum implements ingestguard.CanChecksum by reading and hashing the object.
func (a *Adapter) Checksum(ctx context.Context, filePath string, algorithm ingestguard.ChecksumAlgorithm) (string, error) {
	reader, err := a.Read(ctx, filePath)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	checksum, err := ingestguard.CalculateChecksum(reader, algorithm)
	if err != nil {
		return "", &ingestguard.PathError{Op: "checksum", Path: filePath, Err: err}
	}
	return checksum, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &notFound)
}

// mapS3Error maps S3 errors to ingestguard errors
func mapS3Error(op, filePath string, err error) error {
	if isNotFound(err) {
		return &ingestguard.PathError{Op: op, Path: filePath, Err: ingestguard.ErrNotExist}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return &ingestguard.PathError{Op: op, Path: filePath, Err: ingestguard.ErrNotExist}
		case "PreconditionFailed", "ConditionalRequestConflict":
			return &ingestguard.PathError{Op: op, Path: filePath, Err: ingestguard.ErrExist}
		case "AccessDenied", "Forbidden":
			return &ingestguard.PathError{Op: op, Path: filePath, Err: ingestguard.ErrPermission}
		}
	}

	return &ingestguard.PathError{Op: op, Path: filePath, Err: err}
}
