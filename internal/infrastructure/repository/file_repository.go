package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zots0127/filehub/internal/domain/entities"
)

// adjustCountQuery applies a reference-count delta and recomputes
// storage_saved in one statement. The count is clamped to a floor of 1:
// the original upload always counts as one holder. Doing both fields in
// a single conditional update keeps concurrent adjustments serialized at
// the storage layer instead of racing read-then-write application code.
const adjustCountQuery = `
	UPDATE files SET
		reference_count = MAX(1, reference_count + ?),
		storage_saved = CASE
			WHEN MAX(1, reference_count + ?) > 1
			THEN size * (MAX(1, reference_count + ?) - 1)
			ELSE 0
		END
	WHERE id = ?`

const fileColumns = `id, storage_key, original_filename, file_type, size,
	uploaded_at, content_hash, reference_count, storage_saved`

// FileRepository is the sqlite-backed store of File rows.
type FileRepository struct {
	db *sql.DB
}

// NewFileRepository creates a file repository on top of an open database.
func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *entities.File) error {
	query := `
	INSERT INTO files (id, storage_key, original_filename, file_type, size,
		uploaded_at, content_hash, reference_count, storage_saved)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var hash sql.NullString
	if file.ContentHash != "" {
		hash = sql.NullString{String: file.ContentHash, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		file.ID,
		file.StorageKey,
		file.OriginalFilename,
		file.FileType,
		file.Size,
		file.UploadedAt,
		hash,
		file.ReferenceCount,
		file.StorageSaved,
	)
	if err != nil {
		if isUniqueViolation(err, "files.content_hash") {
			return entities.ErrContentExists
		}
		return fmt.Errorf("failed to insert file: %w", err)
	}

	return nil
}

func (r *FileRepository) Get(ctx context.Context, id string) (*entities.File, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+fileColumns+" FROM files WHERE id = ?", id)
	return scanFile(row)
}

func (r *FileRepository) GetByHash(ctx context.Context, hash string) (*entities.File, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+fileColumns+" FROM files WHERE content_hash = ?", hash)
	return scanFile(row)
}

func (r *FileRepository) AdjustRefCount(ctx context.Context, id string, delta int) (*entities.File, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	file, err := adjustRefCountTx(ctx, tx, id, delta)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit count adjustment: %w", err)
	}

	return file, nil
}

// adjustRefCountTx applies the conditional count update inside an
// existing transaction and returns the updated row.
func adjustRefCountTx(ctx context.Context, tx *sql.Tx, id string, delta int) (*entities.File, error) {
	result, err := tx.ExecContext(ctx, adjustCountQuery, delta, delta, delta, id)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust reference count: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, entities.ErrFileNotFound
	}

	row := tx.QueryRowContext(ctx,
		"SELECT "+fileColumns+" FROM files WHERE id = ?", id)
	return scanFile(row)
}

func (r *FileRepository) Delete(ctx context.Context, id string) (*entities.File, error) {
	// The immediate transaction takes the database write lock up front,
	// so reference creation and deletion cannot interleave between the
	// count check and the row delete.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		"SELECT "+fileColumns+" FROM files WHERE id = ?", id)
	file, err := scanFile(row)
	if err != nil {
		return nil, err
	}

	var live int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM file_references WHERE file_id = ?", id).Scan(&live)
	if err != nil {
		return nil, fmt.Errorf("failed to count references: %w", err)
	}
	if live > 0 {
		return nil, &entities.ReferenceExistsError{FileID: id, References: live}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM files WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to delete file: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit file deletion: %w", err)
	}

	return file, nil
}

func (r *FileRepository) List(ctx context.Context, filter *entities.FileFilter) ([]*entities.File, error) {
	if filter == nil {
		filter = &entities.FileFilter{}
	}

	query := "SELECT " + fileColumns + " FROM files WHERE 1=1"
	args := []interface{}{}

	if filter.Filename != "" {
		query += " AND original_filename LIKE ?"
		args = append(args, "%"+filter.Filename+"%")
	}
	if filter.FileType != "" {
		query += " AND file_type = ?"
		args = append(args, filter.FileType)
	}
	if filter.MinSize != nil {
		query += " AND size >= ?"
		args = append(args, *filter.MinSize)
	}
	if filter.MaxSize != nil {
		query += " AND size <= ?"
		args = append(args, *filter.MaxSize)
	}
	if filter.UploadedAfter != nil {
		query += " AND uploaded_at >= ?"
		args = append(args, *filter.UploadedAfter)
	}
	if filter.UploadedBefore != nil {
		query += " AND uploaded_at <= ?"
		args = append(args, *filter.UploadedBefore)
	}

	query += " ORDER BY " + orderClause(filter.OrderBy, filter.OrderDir)

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []*entities.File
	for rows.Next() {
		file, err := scanFileRows(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, rows.Err()
}

func (r *FileRepository) Stats(ctx context.Context) (*entities.StoreStats, error) {
	stats := &entities.StoreStats{FilesByType: make(map[string]int64)}

	var totalSize, totalSaved sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), SUM(size), SUM(storage_saved) FROM files").
		Scan(&stats.TotalFiles, &totalSize, &totalSaved)
	if err != nil {
		return nil, fmt.Errorf("failed to read file stats: %w", err)
	}
	stats.TotalSize = totalSize.Int64
	stats.TotalStorageSaved = totalSaved.Int64

	err = r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM file_references").Scan(&stats.TotalReferences)
	if err != nil {
		return nil, fmt.Errorf("failed to count references: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT file_type, COUNT(*) FROM files GROUP BY file_type")
	if err != nil {
		return nil, fmt.Errorf("failed to read type stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fileType string
		var count int64
		if err := rows.Scan(&fileType, &count); err != nil {
			return nil, err
		}
		stats.FilesByType[fileType] = count
	}

	return stats, rows.Err()
}

// orderClause whitelists sortable columns; anything else falls back to
// newest-first.
func orderClause(orderBy, orderDir string) string {
	switch orderBy {
	case "original_filename", "size", "uploaded_at":
	default:
		return "uploaded_at DESC"
	}
	if orderDir == "asc" {
		return orderBy + " ASC"
	}
	return orderBy + " DESC"
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFile(row *sql.Row) (*entities.File, error) {
	file, err := scanFileFrom(row)
	if err == sql.ErrNoRows {
		return nil, entities.ErrFileNotFound
	}
	return file, err
}

func scanFileRows(rows *sql.Rows) (*entities.File, error) {
	return scanFileFrom(rows)
}

func scanFileFrom(s rowScanner) (*entities.File, error) {
	var file entities.File
	var hash sql.NullString

	err := s.Scan(
		&file.ID,
		&file.StorageKey,
		&file.OriginalFilename,
		&file.FileType,
		&file.Size,
		&file.UploadedAt,
		&hash,
		&file.ReferenceCount,
		&file.StorageSaved,
	)
	if err != nil {
		return nil, err
	}

	file.ContentHash = hash.String
	return &file, nil
}
