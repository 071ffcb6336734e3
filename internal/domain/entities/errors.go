package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyFile is returned when an upload carries no bytes.
	ErrEmptyFile = errors.New("no file content provided")

	// ErrFileNotFound is returned when the target File does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrReferenceNotFound is returned when the target FileReference
	// does not exist.
	ErrReferenceNotFound = errors.New("file reference not found")

	// ErrContentExists signals that a File row with the same content
	// hash already exists. It never escapes the usecase layer: a losing
	// concurrent create is re-resolved into a reference instead.
	ErrContentExists = errors.New("content hash already exists")
)

// DuplicateNameError is returned when a reference name is already taken.
// ExistingFile names the file that holds the content so callers can
// produce an actionable message.
type DuplicateNameError struct {
	ReferenceName string
	ExistingFile  string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("reference name %q already exists for file %q", e.ReferenceName, e.ExistingFile)
}

// ReferenceExistsError is returned when deleting a File that still has
// live references. References carries the live count.
type ReferenceExistsError struct {
	FileID     string
	References int
}

func (e *ReferenceExistsError) Error() string {
	return fmt.Sprintf("file %s has %d references, delete the references first", e.FileID, e.References)
}
