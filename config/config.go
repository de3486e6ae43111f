// Package config loads the .txdict.yaml project configuration.
//
// The file lives in the project root and sets defaults for the CLI: which
// format new dictionaries are written in, which files are scanned, and how
// related v1 files are handled. It may also list the project's
// dictionaries explicitly; commands run without paths then use that list.
// A missing file is not an error.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/txdict/format"
	"github.com/minios-linux/txdict/location"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .txdict.yaml structure.
type File struct {
	// Format is the format for newly written dictionaries: "v1" or "v2"
	// (default "v2").
	Format string `yaml:"format,omitempty"`
	// Extensions are the file extensions scanned in directories
	// (default .txd and .xml).
	Extensions []string `yaml:"extensions,omitempty"`
	// Recursive scans directories recursively.
	Recursive bool `yaml:"recursive,omitempty"`
	// Related sets what happens with related v1 files that were not
	// selected: "ask", "all" or "selected" (default "ask").
	Related string `yaml:"related,omitempty"`
	// Upgrade saves v1 dictionaries as v2 when they are written back.
	Upgrade bool `yaml:"upgrade,omitempty"`
	// Dictionaries lists the project's dictionaries.
	Dictionaries []Dictionary `yaml:"dictionaries,omitempty"`

	// Version is the parsed Format.
	Version format.Version `yaml:"-"`
}

// Dictionary is one dictionary declared in the config.
type Dictionary struct {
	// Name is a label shown in status output (default: file name).
	Name string `yaml:"name,omitempty"`
	// Path is relative to the config file.
	Path string `yaml:"path"`
	// Format forces a format instead of detecting it.
	Format string `yaml:"format,omitempty"`

	// Version is the parsed Format; format.Unknown when detected.
	Version format.Version `yaml:"-"`
}

// Related-file policies.
const (
	RelatedAsk      = "ask"
	RelatedAll      = "all"
	RelatedSelected = "selected"
)

// FileName is the config file name.
const FileName = ".txdict.yaml"

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the configuration used when no config file exists.
func Default() *File {
	f := &File{}
	f.applyDefaults()
	return f
}

func (f *File) applyDefaults() {
	if f.Format == "" {
		f.Format = format.V2.String()
	}
	if len(f.Extensions) == 0 {
		f.Extensions = append([]string(nil), location.DefaultExtensions...)
	}
	if f.Related == "" {
		f.Related = RelatedAsk
	}
	f.Version, _ = format.ParseVersion(f.Format)
}

// Load reads and validates .txdict.yaml from rootDir. It returns nil when
// the file does not exist.
func Load(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// LoadOrDefault is Load with Default as fallback for a missing file.
func LoadOrDefault(rootDir string) (*File, error) {
	f, err := Load(rootDir)
	if err != nil || f != nil {
		return f, err
	}
	return Default(), nil
}

// Parse decodes and validates config file content. Unknown fields are
// rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing: %w", err)
	}

	f.applyDefaults()
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	v, err := format.ParseVersion(f.Format)
	if err != nil {
		return err
	}
	f.Version = v

	switch f.Related {
	case RelatedAsk, RelatedAll, RelatedSelected:
	default:
		return fmt.Errorf("related %q is invalid (valid: ask, all, selected)", f.Related)
	}

	for i, ext := range f.Extensions {
		if ext == "" || ext == "." {
			return fmt.Errorf("extension #%d is empty", i+1)
		}
		if !strings.HasPrefix(ext, ".") {
			f.Extensions[i] = "." + ext
		}
	}

	for i := range f.Dictionaries {
		d := &f.Dictionaries[i]
		if d.Path == "" {
			return fmt.Errorf("dictionary #%d has no path", i+1)
		}
		if d.Name == "" {
			d.Name = filepath.Base(d.Path)
		}
		if d.Format != "" {
			if d.Version, err = format.ParseVersion(d.Format); err != nil {
				return fmt.Errorf("dictionary %q: %w", d.Name, err)
			}
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Resolving
// ---------------------------------------------------------------------------

// Locations returns the file locations of the declared dictionaries,
// resolved against rootDir.
func (f *File) Locations(rootDir string) ([]location.Location, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}
	locs := make([]location.Location, 0, len(f.Dictionaries))
	for _, d := range f.Dictionaries {
		path := d.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(absRoot, path)
		}
		locs = append(locs, location.NewFile(path))
	}
	return locs, nil
}

// Lookup returns the declared dictionary at loc, or nil.
func (f *File) Lookup(rootDir string, loc location.Location) *Dictionary {
	locs, err := f.Locations(rootDir)
	if err != nil {
		return nil
	}
	for i, l := range locs {
		if location.Equal(l, loc) {
			return &f.Dictionaries[i]
		}
	}
	return nil
}

// Forced returns the format declared for loc, or format.Unknown.
func (f *File) Forced(rootDir string, loc location.Location) format.Version {
	if d := f.Lookup(rootDir, loc); d != nil {
		return d.Version
	}
	return format.Unknown
}

// Label returns the declared name of the dictionary at loc, or "".
func (f *File) Label(rootDir string, loc location.Location) string {
	if d := f.Lookup(rootDir, loc); d != nil {
		return d.Name
	}
	return ""
}

// SaveVersion returns the format a dictionary loaded as v is written back
// in.
func (f *File) SaveVersion(v format.Version) format.Version {
	if v == format.V1 && f.Upgrade {
		return format.V2
	}
	if v == format.Unknown {
		return f.Version
	}
	return v
}
