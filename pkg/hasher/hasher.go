// Package hasher computes content digests used as identity keys for
// deduplication. The digest is not a security boundary; it only needs to
// be collision-resistant enough to identify content.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

const chunkSize = 32 * 1024

// Sum streams the entire contents of r through SHA-256 and returns the
// hex digest. The read cursor is restored to its original position so
// the same stream can be persisted afterwards.
func Sum(r io.ReadSeeker) (string, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", fmt.Errorf("failed to record stream position: %w", err)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind stream: %w", err)
	}

	h := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("failed to hash stream: %w", err)
	}

	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to restore stream position: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// SumBytes returns the hex SHA-256 digest of b.
func SumBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
