package repository

import (
	"context"
	"io"
)

// BlobRepository is the opaque byte-storage medium. Keys are generated
// by the implementation and carry no meaning to callers.
type BlobRepository interface {
	// Put persists the stream and returns the generated key.
	Put(ctx context.Context, r io.Reader) (string, error)

	// Open returns a readable stream for the given key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the bytes stored under key. Deleting a missing
	// key is not an error.
	Delete(ctx context.Context, key string) error
}

// BlobBackend selects the blob storage implementation.
type BlobBackend string

const (
	BlobBackendLocal BlobBackend = "local"
	BlobBackendS3    BlobBackend = "s3"
)
