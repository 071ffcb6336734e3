package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// OpenDB opens the sqlite database at dbPath, configures the connection
// pool and creates the schema. Write transactions start immediate so
// read-modify-write paths serialize at BEGIN instead of upgrading locks
// mid-transaction.
func OpenDB(dbPath string) (*sql.DB, error) {
	dsn := dbPath + "?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		storage_key TEXT NOT NULL,
		original_filename TEXT NOT NULL,
		file_type TEXT NOT NULL,
		size INTEGER NOT NULL,
		uploaded_at DATETIME NOT NULL,
		content_hash TEXT,
		reference_count INTEGER NOT NULL DEFAULT 1,
		storage_saved INTEGER NOT NULL DEFAULT 0
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_files_content_hash
		ON files(content_hash) WHERE content_hash IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_files_name_type ON files(original_filename, file_type);
	CREATE INDEX IF NOT EXISTS idx_files_size_uploaded ON files(size, uploaded_at);
	CREATE INDEX IF NOT EXISTS idx_files_hash_size ON files(content_hash, size);

	CREATE TABLE IF NOT EXISTS file_references (
		id TEXT PRIMARY KEY,
		file_id TEXT NOT NULL REFERENCES files(id),
		reference_name TEXT NOT NULL UNIQUE,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_refs_file ON file_references(file_id);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint
// failure on the given table.column.
func isUniqueViolation(err error, indexed string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+indexed)
}
