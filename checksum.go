package ingestguard

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/cespare/xxhash/v2"
)

// NewHasher creates a new hash.Hash for the given algorithm.
// Returns an error if the algorithm is not supported.
func NewHasher(algorithm ChecksumAlgorithm) (hash.Hash, error) {
	switch algorithm {
	case ChecksumSHA256:
		return sha256.New(), nil
	case ChecksumXXHash:
		return xxhash.New(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported checksum algorithm: %s", ErrNotSupported, algorithm)
	}
}

// CalculateChecksum reads from the reader and calculates the checksum using
// the specified algorithm. Returns the hex-encoded checksum string.
func CalculateChecksum(r io.Reader, algorithm ChecksumAlgorithm) (string, error) {
	h, err := NewHasher(algorithm)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to calculate checksum: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func checksumBytes(data []byte, algorithm ChecksumAlgorithm) (string, error) {
	return CalculateChecksum(bytes.NewReader(data), algorithm)
}

// VerifyChecksum checks a stored file against an expected checksum. The
// backend computes it when it implements CanChecksum; otherwise the file
// is read back.
func VerifyChecksum(ctx context.Context, fs FileSystem, path, expected string, algorithm ChecksumAlgorithm) (bool, error) {
	var actual string
	if cs, ok := fs.(CanChecksum); ok {
		sum, err := cs.Checksum(ctx, path, algorithm)
		if err != nil {
			return false, err
		}
		actual = sum
	} else {
		rc, err := fs.Read(ctx, path)
		if err != nil {
			return false, err
		}
		defer rc.Close()
		sum, err := CalculateChecksum(rc, algorithm)
		if err != nil {
			return false, err
		}
		actual = sum
	}
	return actual == expected, nil
}
