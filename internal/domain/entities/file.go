package entities

import (
	"time"
)

// File represents one unique content blob and its upload metadata.
// There is exactly one File row per content hash; duplicate uploads of
// the same bytes become FileReference rows pointing at it.
type File struct {
	ID               string    `json:"id"`
	StorageKey       string    `json:"-"`
	OriginalFilename string    `json:"original_filename"`
	FileType         string    `json:"file_type"`
	Size             int64     `json:"size"`
	UploadedAt       time.Time `json:"uploaded_at"`
	ContentHash      string    `json:"content_hash"`
	ReferenceCount   int       `json:"reference_count"`
	StorageSaved     int64     `json:"storage_saved"`
}

// FileReference is an additional logical name pointing at an existing
// File's content. Reference names are unique across the whole store.
type FileReference struct {
	ID            string    `json:"id"`
	FileID        string    `json:"original_file"`
	ReferenceName string    `json:"reference_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// UploadType distinguishes the two successful upload outcomes.
type UploadType string

const (
	UploadTypeOriginal  UploadType = "original"
	UploadTypeReference UploadType = "reference"
)

// UploadResult is the outcome of a deduplicating upload. File is always
// set; Reference is set only when the upload resolved to an existing
// File's content.
type UploadResult struct {
	Type      UploadType     `json:"type"`
	File      *File          `json:"file,omitempty"`
	Reference *FileReference `json:"reference,omitempty"`
}

// FileFilter represents filtering criteria for file listings.
type FileFilter struct {
	Filename       string     `json:"filename"`
	FileType       string     `json:"file_type"`
	MinSize        *int64     `json:"min_size"`
	MaxSize        *int64     `json:"max_size"`
	UploadedAfter  *time.Time `json:"uploaded_after"`
	UploadedBefore *time.Time `json:"uploaded_before"`
	Limit          int        `json:"limit"`
	Offset         int        `json:"offset"`
	OrderBy        string     `json:"order_by"`
	OrderDir       string     `json:"order_dir"` // "asc" or "desc"
}

// StoreStats summarizes the deduplication state of the whole store.
type StoreStats struct {
	TotalFiles        int64            `json:"total_files"`
	TotalReferences   int64            `json:"total_references"`
	TotalSize         int64            `json:"total_size"`
	TotalStorageSaved int64            `json:"total_storage_saved"`
	FilesByType       map[string]int64 `json:"files_by_type"`
}
