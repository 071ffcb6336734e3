package repository

import (
	"context"

	"github.com/zots0127/filehub/internal/domain/entities"
)

// FileRepository is the durable store of File rows. Implementations must
// enforce a uniqueness constraint on non-null content hashes and expose
// it as entities.ErrContentExists, and must apply reference-count and
// storage-saved changes as a single atomic conditional update.
type FileRepository interface {
	// Create inserts a new File row. A content-hash collision with an
	// existing row returns entities.ErrContentExists.
	Create(ctx context.Context, file *entities.File) error

	// Get retrieves a File by id.
	Get(ctx context.Context, id string) (*entities.File, error)

	// GetByHash retrieves the File holding the given content hash, or
	// entities.ErrFileNotFound when no row matches.
	GetByHash(ctx context.Context, hash string) (*entities.File, error)

	// AdjustRefCount applies delta to the reference count, clamps the
	// result to a minimum of 1, and recomputes storage_saved in the
	// same statement. Returns the updated row.
	AdjustRefCount(ctx context.Context, id string, delta int) (*entities.File, error)

	// Delete removes the File row when it has no live references. A
	// File with outstanding references returns
	// *entities.ReferenceExistsError and leaves all rows unchanged.
	Delete(ctx context.Context, id string) (*entities.File, error)

	// List returns files matching the filter, newest first by default.
	List(ctx context.Context, filter *entities.FileFilter) ([]*entities.File, error)

	// Stats summarizes deduplication across the whole store.
	Stats(ctx context.Context) (*entities.StoreStats, error)
}

// ReferenceRepository is the durable ledger of FileReference rows.
// Reference names are globally unique; creation and deletion adjust the
// owning File's counters inside the same transaction.
type ReferenceRepository interface {
	// Create inserts a new reference and increments the owning File's
	// reference count atomically. A taken reference name returns
	// *entities.DuplicateNameError naming the clashing file.
	Create(ctx context.Context, ref *entities.FileReference) error

	// Get retrieves a reference by id.
	Get(ctx context.Context, id string) (*entities.FileReference, error)

	// Delete removes the reference and decrements the owning File's
	// reference count atomically. Returns the updated owning File.
	Delete(ctx context.Context, id string) (*entities.File, error)

	// ListByFile returns all references pointing at the given File,
	// newest first.
	ListByFile(ctx context.Context, fileID string) ([]*entities.FileReference, error)

	// List returns all references, newest first.
	List(ctx context.Context) ([]*entities.FileReference, error)
}
