package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zots0127/filehub/internal/domain/entities"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestFile(name, hash string, size int64) *entities.File {
	return &entities.File{
		ID:               uuid.NewString(),
		StorageKey:       uuid.NewString(),
		OriginalFilename: name,
		FileType:         "text/plain",
		Size:             size,
		UploadedAt:       time.Now().UTC(),
		ContentHash:      hash,
		ReferenceCount:   1,
	}
}

func TestFileRepositoryCreateAndGet(t *testing.T) {
	repo := NewFileRepository(newTestDB(t))
	ctx := context.Background()

	file := newTestFile("a.txt", "hash-a", 5)
	require.NoError(t, repo.Create(ctx, file))

	got, err := repo.Get(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.OriginalFilename, got.OriginalFilename)
	assert.Equal(t, file.ContentHash, got.ContentHash)
	assert.Equal(t, 1, got.ReferenceCount)
	assert.Equal(t, int64(0), got.StorageSaved)

	byHash, err := repo.GetByHash(ctx, "hash-a")
	require.NoError(t, err)
	assert.Equal(t, file.ID, byHash.ID)
}

func TestFileRepositoryDuplicateHash(t *testing.T) {
	repo := NewFileRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestFile("a.txt", "same-hash", 5)))

	err := repo.Create(ctx, newTestFile("b.txt", "same-hash", 5))
	assert.ErrorIs(t, err, entities.ErrContentExists)
}

func TestFileRepositoryNullHashesDoNotCollide(t *testing.T) {
	repo := NewFileRepository(newTestDB(t))
	ctx := context.Background()

	// Legacy backfill rows may carry no hash; the uniqueness constraint
	// only applies to non-null values.
	require.NoError(t, repo.Create(ctx, newTestFile("legacy1.txt", "", 5)))
	require.NoError(t, repo.Create(ctx, newTestFile("legacy2.txt", "", 7)))
}

func TestFileRepositoryGetMissing(t *testing.T) {
	repo := NewFileRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrFileNotFound)

	_, err = repo.GetByHash(ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrFileNotFound)
}

func TestAdjustRefCount(t *testing.T) {
	repo := NewFileRepository(newTestDB(t))
	ctx := context.Background()

	file := newTestFile("a.txt", "hash-a", 100)
	require.NoError(t, repo.Create(ctx, file))

	updated, err := repo.AdjustRefCount(ctx, file.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.ReferenceCount)
	assert.Equal(t, int64(100), updated.StorageSaved)

	updated, err = repo.AdjustRefCount(ctx, file.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.ReferenceCount)
	assert.Equal(t, int64(200), updated.StorageSaved)

	updated, err = repo.AdjustRefCount(ctx, file.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.ReferenceCount)
	assert.Equal(t, int64(100), updated.StorageSaved)
}

func TestAdjustRefCountFloor(t *testing.T) {
	repo := NewFileRepository(newTestDB(t))
	ctx := context.Background()

	file := newTestFile("a.txt", "hash-a", 100)
	require.NoError(t, repo.Create(ctx, file))

	// Repeated decrements never drive the count below 1: the original
	// upload always counts as one holder.
	for i := 0; i < 3; i++ {
		updated, err := repo.AdjustRefCount(ctx, file.ID, -1)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.ReferenceCount)
		assert.Equal(t, int64(0), updated.StorageSaved)
	}
}

func TestAdjustRefCountMissing(t *testing.T) {
	repo := NewFileRepository(newTestDB(t))

	_, err := repo.AdjustRefCount(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, entities.ErrFileNotFound)
}

func TestFileRepositoryDelete(t *testing.T) {
	db := newTestDB(t)
	files := NewFileRepository(db)
	refs := NewReferenceRepository(db)
	ctx := context.Background()

	file := newTestFile("a.txt", "hash-a", 5)
	require.NoError(t, files.Create(ctx, file))

	ref := &entities.FileReference{
		ID:            uuid.NewString(),
		FileID:        file.ID,
		ReferenceName: "b.txt",
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, refs.Create(ctx, ref))

	// Deletion is refused while a reference is alive and the rows stay
	// untouched.
	_, err := files.Delete(ctx, file.ID)
	var conflict *entities.ReferenceExistsError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, conflict.References)

	still, err := files.Get(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, still.ReferenceCount)

	// After the reference is gone, deletion succeeds.
	_, err = refs.Delete(ctx, ref.ID)
	require.NoError(t, err)

	deleted, err := files.Delete(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.StorageKey, deleted.StorageKey)

	_, err = files.Get(ctx, file.ID)
	assert.ErrorIs(t, err, entities.ErrFileNotFound)
}

func TestFileRepositoryDeleteMissing(t *testing.T) {
	repo := NewFileRepository(newTestDB(t))

	_, err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, entities.ErrFileNotFound)
}

func TestFileRepositoryList(t *testing.T) {
	repo := NewFileRepository(newTestDB(t))
	ctx := context.Background()

	small := newTestFile("report.txt", "hash-1", 10)
	big := newTestFile("archive.bin", "hash-2", 10000)
	big.FileType = "application/octet-stream"
	require.NoError(t, repo.Create(ctx, small))
	require.NoError(t, repo.Create(ctx, big))

	t.Run("NoFilter", func(t *testing.T) {
		files, err := repo.List(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})

	t.Run("ByFilename", func(t *testing.T) {
		files, err := repo.List(ctx, &entities.FileFilter{Filename: "repo"})
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "report.txt", files[0].OriginalFilename)
	})

	t.Run("ByType", func(t *testing.T) {
		files, err := repo.List(ctx, &entities.FileFilter{FileType: "application/octet-stream"})
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "archive.bin", files[0].OriginalFilename)
	})

	t.Run("BySize", func(t *testing.T) {
		min := int64(100)
		files, err := repo.List(ctx, &entities.FileFilter{MinSize: &min})
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "archive.bin", files[0].OriginalFilename)

		max := int64(100)
		files, err = repo.List(ctx, &entities.FileFilter{MaxSize: &max})
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "report.txt", files[0].OriginalFilename)
	})

	t.Run("OrderBySize", func(t *testing.T) {
		files, err := repo.List(ctx, &entities.FileFilter{OrderBy: "size", OrderDir: "asc"})
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Equal(t, "report.txt", files[0].OriginalFilename)
	})

	t.Run("Limit", func(t *testing.T) {
		files, err := repo.List(ctx, &entities.FileFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})
}

func TestFileRepositoryStats(t *testing.T) {
	db := newTestDB(t)
	files := NewFileRepository(db)
	refs := NewReferenceRepository(db)
	ctx := context.Background()

	file := newTestFile("a.txt", "hash-a", 100)
	require.NoError(t, files.Create(ctx, file))
	require.NoError(t, refs.Create(ctx, &entities.FileReference{
		ID:            uuid.NewString(),
		FileID:        file.ID,
		ReferenceName: "b.txt",
		CreatedAt:     time.Now().UTC(),
	}))

	stats, err := files.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalFiles)
	assert.Equal(t, int64(1), stats.TotalReferences)
	assert.Equal(t, int64(100), stats.TotalSize)
	assert.Equal(t, int64(100), stats.TotalStorageSaved)
	assert.Equal(t, int64(1), stats.FilesByType["text/plain"])
}
