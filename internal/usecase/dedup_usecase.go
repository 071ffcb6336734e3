package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/zots0127/filehub/internal/domain/entities"
	"github.com/zots0127/filehub/internal/domain/repository"
	"github.com/zots0127/filehub/pkg/hasher"
)

// DedupUseCase orchestrates deduplicating uploads and lifecycle-safe
// deletion. For every distinct content digest exactly one File row is
// materialized; further uploads of the same bytes become FileReference
// rows against it. All count mutations happen inside the repositories'
// transactions, never here.
type DedupUseCase struct {
	files  repository.FileRepository
	refs   repository.ReferenceRepository
	blobs  repository.BlobRepository
	logger *log.Logger
}

// NewDedupUseCase creates a deduplication use case.
func NewDedupUseCase(files repository.FileRepository, refs repository.ReferenceRepository, blobs repository.BlobRepository) *DedupUseCase {
	return &DedupUseCase{
		files:  files,
		refs:   refs,
		blobs:  blobs,
		logger: log.New(os.Stdout, "[Dedup] ", log.LstdFlags),
	}
}

// Upload stores content under filename, deduplicating against existing
// files by content digest. Identical content yields a FileReference; new
// content yields a File. A lost create race against a concurrent upload
// of the same bytes is converted into the reference outcome instead of
// surfacing a constraint error.
func (u *DedupUseCase) Upload(ctx context.Context, r io.ReadSeeker, filename, contentType string, size int64) (*entities.UploadResult, error) {
	if r == nil || size <= 0 {
		return nil, entities.ErrEmptyFile
	}

	digest, err := hasher.Sum(r)
	if err != nil {
		return nil, fmt.Errorf("failed to compute content digest: %w", err)
	}

	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
	}

	existing, err := u.files.GetByHash(ctx, digest)
	if err == nil {
		return u.createReference(ctx, existing, filename)
	}
	if !errors.Is(err, entities.ErrFileNotFound) {
		return nil, fmt.Errorf("failed to look up content digest: %w", err)
	}

	key, err := u.blobs.Put(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to store content: %w", err)
	}

	file := &entities.File{
		ID:               uuid.NewString(),
		StorageKey:       key,
		OriginalFilename: filename,
		FileType:         contentType,
		Size:             size,
		UploadedAt:       time.Now().UTC(),
		ContentHash:      digest,
		ReferenceCount:   1,
		StorageSaved:     0,
	}

	err = u.files.Create(ctx, file)
	if errors.Is(err, entities.ErrContentExists) {
		// A concurrent upload of the same bytes won the create. Drop
		// our blob and resolve against the winning row.
		if derr := u.blobs.Delete(ctx, key); derr != nil {
			u.logger.Printf("failed to discard blob %s after lost create race: %v", key, derr)
		}
		winner, gerr := u.files.GetByHash(ctx, digest)
		if gerr != nil {
			return nil, fmt.Errorf("failed to resolve winning file after create race: %w", gerr)
		}
		return u.createReference(ctx, winner, filename)
	}
	if err != nil {
		if derr := u.blobs.Delete(ctx, key); derr != nil {
			u.logger.Printf("failed to discard blob %s after failed create: %v", key, derr)
		}
		return nil, err
	}

	u.logger.Printf("stored new file %s (%s, %d bytes)", file.ID, filename, size)
	return &entities.UploadResult{Type: entities.UploadTypeOriginal, File: file}, nil
}

func (u *DedupUseCase) createReference(ctx context.Context, file *entities.File, name string) (*entities.UploadResult, error) {
	ref := &entities.FileReference{
		ID:            uuid.NewString(),
		FileID:        file.ID,
		ReferenceName: name,
		CreatedAt:     time.Now().UTC(),
	}

	if err := u.refs.Create(ctx, ref); err != nil {
		return nil, err
	}

	updated, err := u.files.Get(ctx, file.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload file after reference creation: %w", err)
	}

	u.logger.Printf("created reference %s (%s) to file %s", ref.ID, name, file.ID)
	return &entities.UploadResult{
		Type:      entities.UploadTypeReference,
		File:      updated,
		Reference: ref,
	}, nil
}

// GetFile retrieves a File by id.
func (u *DedupUseCase) GetFile(ctx context.Context, id string) (*entities.File, error) {
	return u.files.Get(ctx, id)
}

// Download returns a File together with a readable stream of its bytes.
// The caller owns the returned stream.
func (u *DedupUseCase) Download(ctx context.Context, id string) (*entities.File, io.ReadCloser, error) {
	file, err := u.files.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := u.blobs.Open(ctx, file.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open content of file %s: %w", id, err)
	}

	return file, rc, nil
}

// DeleteFile removes a File that has no live references and releases its
// blob key. A File with outstanding references is refused with
// *entities.ReferenceExistsError; references must be deleted first.
func (u *DedupUseCase) DeleteFile(ctx context.Context, id string) error {
	file, err := u.files.Delete(ctx, id)
	if err != nil {
		return err
	}

	if err := u.blobs.Delete(ctx, file.StorageKey); err != nil {
		// The row is gone; an orphaned blob is recoverable garbage,
		// a resurrected row is not.
		u.logger.Printf("failed to release blob %s for deleted file %s: %v", file.StorageKey, id, err)
	}

	u.logger.Printf("deleted file %s (%s)", id, file.OriginalFilename)
	return nil
}

// DeleteReference removes a FileReference and decrements the owning
// File's reference count in the same transaction.
func (u *DedupUseCase) DeleteReference(ctx context.Context, id string) error {
	file, err := u.refs.Delete(ctx, id)
	if err != nil {
		return err
	}

	u.logger.Printf("deleted reference %s, file %s now has %d holders", id, file.ID, file.ReferenceCount)
	return nil
}

// GetReference retrieves a FileReference by id.
func (u *DedupUseCase) GetReference(ctx context.Context, id string) (*entities.FileReference, error) {
	return u.refs.Get(ctx, id)
}

// ListFiles returns files matching the filter.
func (u *DedupUseCase) ListFiles(ctx context.Context, filter *entities.FileFilter) ([]*entities.File, error) {
	return u.files.List(ctx, filter)
}

// ListReferences returns all references, or only those pointing at
// fileID when it is non-empty.
func (u *DedupUseCase) ListReferences(ctx context.Context, fileID string) ([]*entities.FileReference, error) {
	if fileID == "" {
		return u.refs.List(ctx)
	}
	if _, err := u.files.Get(ctx, fileID); err != nil {
		return nil, err
	}
	return u.refs.ListByFile(ctx, fileID)
}

// Stats summarizes deduplication across the store.
func (u *DedupUseCase) Stats(ctx context.Context) (*entities.StoreStats, error) {
	return u.files.Stats(ctx)
}
