package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore keeps blobs on the local filesystem under an opaque
// generated key, sharded two levels deep to keep directories small.
type LocalStore struct {
	basePath string
}

// NewLocalStore creates a local blob store rooted at basePath.
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

func (s *LocalStore) Put(ctx context.Context, r io.Reader) (string, error) {
	key := strings.ReplaceAll(uuid.NewString(), "-", "")

	tempFile, err := os.CreateTemp(s.basePath, "upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := io.Copy(tempFile, r); err != nil {
		tempFile.Close()
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	tempFile.Close()

	targetPath := s.blobPath(key)
	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create shard directory: %w", err)
	}

	if err := os.Rename(tempFile.Name(), targetPath); err != nil {
		return "", fmt.Errorf("failed to place blob: %w", err)
	}

	return key, nil
}

func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.blobPath(key))
	if err != nil {
		return nil, fmt.Errorf("failed to open blob %s: %w", key, err)
	}
	return f, nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.blobPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

func (s *LocalStore) blobPath(key string) string {
	return filepath.Join(s.basePath, key[:2], key[2:4], key)
}
