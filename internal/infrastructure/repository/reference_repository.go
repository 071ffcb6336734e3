package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zots0127/filehub/internal/domain/entities"
)

// ReferenceRepository is the sqlite-backed ledger of FileReference rows.
// Every mutation also adjusts the owning File's counters inside the same
// transaction so the reference-count invariant holds at commit.
type ReferenceRepository struct {
	db *sql.DB
}

// NewReferenceRepository creates a reference repository on top of an
// open database.
func NewReferenceRepository(db *sql.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) Create(ctx context.Context, ref *entities.FileReference) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var owningName string
	err = tx.QueryRowContext(ctx,
		"SELECT original_filename FROM files WHERE id = ?", ref.FileID).
		Scan(&owningName)
	if err == sql.ErrNoRows {
		return entities.ErrFileNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load owning file: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO file_references (id, file_id, reference_name, created_at) VALUES (?, ?, ?, ?)",
		ref.ID, ref.FileID, ref.ReferenceName, ref.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "file_references.reference_name") {
			return &entities.DuplicateNameError{
				ReferenceName: ref.ReferenceName,
				ExistingFile:  owningName,
			}
		}
		return fmt.Errorf("failed to insert reference: %w", err)
	}

	if _, err := adjustRefCountTx(ctx, tx, ref.FileID, 1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reference creation: %w", err)
	}

	return nil
}

func (r *ReferenceRepository) Get(ctx context.Context, id string) (*entities.FileReference, error) {
	var ref entities.FileReference
	err := r.db.QueryRowContext(ctx,
		"SELECT id, file_id, reference_name, created_at FROM file_references WHERE id = ?", id).
		Scan(&ref.ID, &ref.FileID, &ref.ReferenceName, &ref.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, entities.ErrReferenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reference: %w", err)
	}
	return &ref, nil
}

func (r *ReferenceRepository) Delete(ctx context.Context, id string) (*entities.File, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var fileID string
	err = tx.QueryRowContext(ctx,
		"SELECT file_id FROM file_references WHERE id = ?", id).Scan(&fileID)
	if err == sql.ErrNoRows {
		return nil, entities.ErrReferenceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reference: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM file_references WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to delete reference: %w", err)
	}

	file, err := adjustRefCountTx(ctx, tx, fileID, -1)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reference deletion: %w", err)
	}

	return file, nil
}

func (r *ReferenceRepository) ListByFile(ctx context.Context, fileID string) ([]*entities.FileReference, error) {
	return r.list(ctx,
		"SELECT id, file_id, reference_name, created_at FROM file_references WHERE file_id = ? ORDER BY created_at DESC",
		fileID)
}

func (r *ReferenceRepository) List(ctx context.Context) ([]*entities.FileReference, error) {
	return r.list(ctx,
		"SELECT id, file_id, reference_name, created_at FROM file_references ORDER BY created_at DESC")
}

func (r *ReferenceRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entities.FileReference, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	defer rows.Close()

	var refs []*entities.FileReference
	for rows.Next() {
		var ref entities.FileReference
		if err := rows.Scan(&ref.ID, &ref.FileID, &ref.ReferenceName, &ref.CreatedAt); err != nil {
			return nil, err
		}
		refs = append(refs, &ref)
	}

	return refs, rows.Err()
}
