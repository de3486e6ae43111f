// Package location implements the places a translation dictionary can be
// read from and written to: files on disk and read-only embedded resources.
//
// A location loads its content as an XML document tree (etree) and, for
// files, saves documents through a temp file that is renamed over the target
// so a crash mid-write never leaves a truncated dictionary behind. File
// locations also expose a Backup handle managing the ".bak" sidecar used by
// the save pipeline for rollback.
package location

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// ErrNotFound means the location does not currently exist.
	ErrNotFound = errors.New("location not found")
	// ErrNotWritable means the target exists but is read-only.
	ErrNotWritable = errors.New("location not writable")
	// ErrReadOnly is returned by locations that never support writing.
	ErrReadOnly = errors.New("location is read-only")
	// ErrBackupUnavailable means there is nothing to back up.
	ErrBackupUnavailable = errors.New("backup unavailable")
	// ErrRestoreUnavailable means there is no backup to restore from.
	ErrRestoreUnavailable = errors.New("restore unavailable")
	// ErrCleanupUnavailable means there is no backup to clean up.
	ErrCleanupUnavailable = errors.New("backup cleanup unavailable")
)

// ---------------------------------------------------------------------------
// Interfaces
// ---------------------------------------------------------------------------

// Location is a readable (and possibly writable) dictionary source.
type Location interface {
	fmt.Stringer

	// ID is the identity of the location. Two locations referring to the
	// same resource have the same ID however they were constructed.
	ID() string

	// CanLoad returns nil when the location exists and is readable.
	CanLoad() error
	// CanSave returns nil when the location can be written.
	CanSave() error

	// Load parses the location's content into a document tree.
	Load() (*etree.Document, error)
	// Save writes the document to the location.
	Save(doc *etree.Document) error

	// QueryBackup returns the backup handle of the location, or nil when the
	// location does not support backups.
	QueryBackup() Backup
}

// Backup manages the backup sidecar of a location. Each Can* check returns
// the reason the matching operation would fail, or nil.
type Backup interface {
	CanBackup() error
	Backup() error
	CanRestore() error
	Restore() error
	CanCleanBackup() error
	CleanBackup() error
}

// Equal reports whether a and b refer to the same resource.
func Equal(a, b Location) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

// ---------------------------------------------------------------------------
// Document helpers
// ---------------------------------------------------------------------------

// parseDocument parses XML data into a document tree.
func parseDocument(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, errors.New("no root element")
	}
	return doc, nil
}
