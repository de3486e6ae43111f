package location

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
)

// BackupSuffix is appended to a file path to name its backup sidecar.
const BackupSuffix = ".bak"

// File is a dictionary stored in a file on disk.
type File struct {
	path string
	id   string
}

// NewFile returns the location of the file at path. Relative paths are made
// absolute against the working directory. The identity of the location is
// case-insensitive.
func NewFile(path string) *File {
	if path == "" {
		panic("location: empty file path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return &File{
		path: abs,
		id:   "file:" + strings.ToLower(abs),
	}
}

// Path returns the absolute file path.
func (f *File) Path() string { return f.path }

// ID implements Location.
func (f *File) ID() string { return f.id }

func (f *File) String() string { return f.path }

// CanLoad implements Location. The file must exist and open for reading.
func (f *File) CanLoad() error {
	info, err := os.Stat(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", f.path, ErrNotFound)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", f.path)
	}
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.path, err)
	}
	return file.Close()
}

// CanSave implements Location. A missing file can be saved; an existing one
// must be a regular file without the read-only bit.
func (f *File) CanSave() error {
	info, err := os.Stat(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", f.path)
	}
	if info.Mode().Perm()&0200 == 0 {
		return fmt.Errorf("%s: %w", f.path, ErrNotWritable)
	}
	return nil
}

// Load implements Location.
func (f *File) Load() (*etree.Document, error) {
	if err := f.CanLoad(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", f, err)
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	doc, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.path, err)
	}
	return doc, nil
}

// Save implements Location. The document is written to a temporary sibling
// which then replaces the target.
func (f *File) Save(doc *etree.Document) error {
	if err := f.CanSave(); err != nil {
		return fmt.Errorf("saving %s: %w", f, err)
	}
	err := writeAtomic(f.path, func(w io.Writer) error {
		_, err := doc.WriteTo(w)
		return err
	})
	if err != nil {
		return fmt.Errorf("saving %s: %w", f, err)
	}
	return nil
}

// QueryBackup implements Location.
func (f *File) QueryBackup() Backup {
	return &fileBackup{target: f.path, backup: f.path + BackupSuffix}
}

// writeAtomic writes path through a temporary file in the same directory and
// renames it into place. The temporary file is removed on any failure.
func writeAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	mode := fs.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	committed = true
	return nil
}

// ---------------------------------------------------------------------------
// Backup sidecar
// ---------------------------------------------------------------------------

type fileBackup struct {
	target string
	backup string
}

func (b *fileBackup) CanBackup() error {
	if !regularFile(b.target) {
		return fmt.Errorf("%s: %w", b.target, ErrBackupUnavailable)
	}
	return nil
}

// Backup copies the target over any existing backup.
func (b *fileBackup) Backup() error {
	if err := b.CanBackup(); err != nil {
		return err
	}
	if err := copyFile(b.target, b.backup); err != nil {
		return fmt.Errorf("backing up %s: %w", b.target, err)
	}
	return nil
}

func (b *fileBackup) CanRestore() error {
	if !regularFile(b.backup) {
		return fmt.Errorf("%s: %w", b.backup, ErrRestoreUnavailable)
	}
	return nil
}

// Restore copies the backup over the target.
func (b *fileBackup) Restore() error {
	if err := b.CanRestore(); err != nil {
		return err
	}
	if err := copyFile(b.backup, b.target); err != nil {
		return fmt.Errorf("restoring %s: %w", b.target, err)
	}
	return nil
}

func (b *fileBackup) CanCleanBackup() error {
	if !regularFile(b.backup) {
		return fmt.Errorf("%s: %w", b.backup, ErrCleanupUnavailable)
	}
	return nil
}

// CleanBackup deletes the backup.
func (b *fileBackup) CleanBackup() error {
	if err := b.CanCleanBackup(); err != nil {
		return err
	}
	if err := os.Remove(b.backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", b.backup, err)
	}
	return nil
}

// copyFile replaces dst with the content of src.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return writeAtomic(dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}

func regularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
