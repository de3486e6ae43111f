package location

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/beevik/etree"
)

// Embedded is a dictionary compiled into the binary (or any other read-only
// file system). It can be loaded but never saved or backed up.
type Embedded struct {
	source string
	fsys   fs.FS
	name   string
}

// NewEmbedded returns the location of resource name inside fsys. source
// identifies the file system (for example the owning package) and is part
// of the location identity.
func NewEmbedded(source string, fsys fs.FS, name string) *Embedded {
	if fsys == nil || name == "" {
		panic("location: embedded resource needs a file system and a name")
	}
	return &Embedded{source: source, fsys: fsys, name: name}
}

// Name returns the resource name inside the file system.
func (e *Embedded) Name() string { return e.name }

// ID implements Location.
func (e *Embedded) ID() string { return "embedded:" + e.source + "!" + e.name }

func (e *Embedded) String() string { return e.source + ":" + e.name }

// CanLoad implements Location.
func (e *Embedded) CanLoad() error {
	info, err := fs.Stat(e.fsys, e.name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", e, ErrNotFound)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", e)
	}
	return nil
}

// CanSave implements Location. Embedded resources are never writable.
func (e *Embedded) CanSave() error {
	return fmt.Errorf("%s: %w", e, ErrReadOnly)
}

// Load implements Location.
func (e *Embedded) Load() (*etree.Document, error) {
	if err := e.CanLoad(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", e, err)
	}
	data, err := fs.ReadFile(e.fsys, e.name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", e, err)
	}
	doc, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", e, err)
	}
	return doc, nil
}

// Save implements Location and always fails.
func (e *Embedded) Save(*etree.Document) error {
	return fmt.Errorf("saving %s: %w", e, e.CanSave())
}

// QueryBackup implements Location. Embedded resources have no backups.
func (e *Embedded) QueryBackup() Backup { return nil }
