// Package format implements the two on-disk encodings of translation
// dictionaries and dispatches between them.
//
// Format v1 (legacy) stores one culture per file and derives the culture
// from the file name ("strings.de.txd"); the files of one dictionary are
// found through their shared prefix. Format v2 stores all cultures of a
// dictionary in a single file. Both use the same <text> element for keys.
//
// Each Version provides the same capabilities through a dispatch table:
// detection, related-location discovery, description, decoding and
// encoding. Work is handed out as instructions so callers decide when (and
// whether) files are actually read or written.
package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/minios-linux/txdict/dictionary"
	"github.com/minios-linux/txdict/location"
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// ErrUnsupportedFormat means no format recognizes a location's content.
	ErrUnsupportedFormat = errors.New("unsupported dictionary format")
	// ErrUnsupportedLocation means a format cannot read or write a location
	// of that kind.
	ErrUnsupportedLocation = errors.New("unsupported location")
	// ErrInvalidModulo means a key to be written holds a modulo outside
	// [2, 1000].
	ErrInvalidModulo = errors.New("invalid modulo")
)

// ---------------------------------------------------------------------------
// Versions
// ---------------------------------------------------------------------------

// Version identifies a dictionary file format.
type Version int

const (
	// Unknown is the zero Version; it stands for "detect the format".
	Unknown Version = iota
	// V1 is the legacy one-culture-per-file format.
	V1
	// V2 is the unified all-cultures-in-one-file format.
	V2
)

// Versions lists the supported formats in detection order.
var Versions = []Version{V1, V2}

func (v Version) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	}
	return "unknown"
}

// ParseVersion parses "v1"/"1" or "v2"/"2".
func ParseVersion(s string) (Version, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "v1", "1":
		return V1, nil
	case "v2", "2":
		return V2, nil
	}
	return Unknown, fmt.Errorf("format %q: %w (valid: v1, v2)", s, ErrUnsupportedFormat)
}

// codec is the per-version dispatch table.
type codec struct {
	detect   func(loc location.Location) bool
	related  func(loc location.Location) []location.Location
	describe func(loc location.Location) Description
	decode   func(loc location.Location, doc *etree.Document) (*dictionary.Translation, error)
	plan     func(loc location.Location, t *dictionary.Translation) ([]SerializeInstruction, error)
	encode   func(t *dictionary.Translation) (*etree.Document, error)
}

func (v Version) codec() (*codec, error) {
	switch v {
	case V1:
		return &v1Codec, nil
	case V2:
		return &v2Codec, nil
	}
	return nil, fmt.Errorf("format %s: %w", v, ErrUnsupportedFormat)
}

// Detect reports whether loc holds a dictionary in this format. Unreadable
// or malformed locations are never detected.
func (v Version) Detect(loc location.Location) bool {
	c, err := v.codec()
	if err != nil {
		return false
	}
	return c.detect(loc)
}

// Related returns every location that together with loc forms one logical
// dictionary, loc included.
func (v Version) Related(loc location.Location) []location.Location {
	c, err := v.codec()
	if err != nil {
		return []location.Location{loc}
	}
	return c.related(loc)
}

// Describe returns display information for a dictionary rooted at loc.
func (v Version) Describe(loc location.Location) Description {
	c, err := v.codec()
	if err != nil {
		return Description{Location: loc, Version: v, Name: loc.String(), ShortName: loc.String()}
	}
	return c.describe(loc)
}

// Deserialize returns the instruction that reads loc in this format.
func (v Version) Deserialize(loc location.Location) DeserializeInstruction {
	return DeserializeInstruction{Location: loc, Version: v}
}

// Serialize plans the writes that store t at loc in this format. Formats
// that split dictionaries across files return one instruction per file.
func (v Version) Serialize(loc location.Location, t *dictionary.Translation) ([]SerializeInstruction, error) {
	c, err := v.codec()
	if err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("serializing %s: %w", loc, err)
	}
	return c.plan(loc, t)
}

// ---------------------------------------------------------------------------
// Description
// ---------------------------------------------------------------------------

// Description names a dictionary for display.
type Description struct {
	// Location is the root location the dictionary was detected from.
	Location location.Location
	Version  Version
	// Name is the full display name, ShortName the name without directory.
	Name      string
	ShortName string
}

// ---------------------------------------------------------------------------
// Instructions
// ---------------------------------------------------------------------------

// DeserializeInstruction reads one location in a known format. It may be
// executed any number of times; every call reads the location again.
type DeserializeInstruction struct {
	Location location.Location
	Version  Version
}

// Deserialize loads and decodes the location.
func (i DeserializeInstruction) Deserialize() (*dictionary.Translation, error) {
	c, err := i.Version.codec()
	if err != nil {
		return nil, err
	}
	doc, err := i.Location.Load()
	if err != nil {
		return nil, err
	}
	t, err := c.decode(i.Location, doc)
	if err != nil {
		return nil, fmt.Errorf("decoding %s as %s: %w", i.Location, i.Version, err)
	}
	return t, nil
}

// SerializeInstruction is one fragment of a save: a single file write.
type SerializeInstruction struct {
	// Location is the fragment's target.
	Location location.Location
	Version  Version
	// Translation is the part of the dictionary stored by this fragment.
	Translation *dictionary.Translation
}

// Build encodes the fragment's document without writing it.
func (i SerializeInstruction) Build() (*etree.Document, error) {
	c, err := i.Version.codec()
	if err != nil {
		return nil, err
	}
	return c.encode(i.Translation)
}

// Execute builds the document and saves it to the target location.
func (i SerializeInstruction) Execute() error {
	doc, err := i.Build()
	if err != nil {
		return fmt.Errorf("serializing %s: %w", i.Location, err)
	}
	return i.Location.Save(doc)
}

// Locations returns the target locations of instructions in order.
func Locations(instructions []SerializeInstruction) []location.Location {
	locs := make([]location.Location, len(instructions))
	for i, in := range instructions {
		locs[i] = in.Location
	}
	return locs
}
