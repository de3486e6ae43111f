package format

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/beevik/etree"

	"github.com/minios-linux/txdict/culture"
	"github.com/minios-linux/txdict/dictionary"
	"github.com/minios-linux/txdict/location"
)

var v1Codec = codec{
	detect:   detectV1,
	related:  relatedV1,
	describe: describeV1,
	decode:   decodeV1,
	plan:     planV1,
	encode:   encodeV1,
}

// v1Comment is written above the root element of every v1 file.
const v1Comment = " TxTranslation dictionary file. Use TxEditor to edit this file. http://unclassified.software/txtranslation "

// v1Extensions are the file extensions a v1 file name may carry.
var v1Extensions = []string{".txd", ".xml"}

// v1StemPattern splits "prefix.culture" after the extension is removed.
var v1StemPattern = regexp.MustCompile(`(?i)^(.+?)\.([a-z]{2}(?:-[a-z]{2})?)$`)

// ---------------------------------------------------------------------------
// File names
// ---------------------------------------------------------------------------

// v1Name is a parsed v1 file name: prefix + "." + culture + ext.
type v1Name struct {
	// Prefix includes the directory, if any.
	Prefix  string
	Culture string
	// Ext keeps its original spelling (".txd", ".XML").
	Ext string
}

func (n v1Name) String() string { return n.Prefix + "." + n.Culture + n.Ext }

// v1Extension returns the v1 extension of name, or "" when it has none.
func v1Extension(name string) string {
	ext := filepath.Ext(name)
	for _, e := range v1Extensions {
		if strings.EqualFold(ext, e) {
			return ext
		}
	}
	return ""
}

// parseV1Name splits a v1 file name. The culture must be a known language
// with an optional region; it is returned in canonical spelling.
func parseV1Name(name string) (v1Name, bool) {
	ext := v1Extension(name)
	if ext == "" {
		return v1Name{}, false
	}
	m := v1StemPattern.FindStringSubmatch(strings.TrimSuffix(name, ext))
	if m == nil {
		return v1Name{}, false
	}
	c, err := culture.Parse(m[2])
	if err != nil {
		return v1Name{}, false
	}
	return v1Name{Prefix: m[1], Culture: c, Ext: ext}, true
}

// recombineV1 returns the v1 file name for cultureName next to path. When
// path is itself a v1 name its culture is replaced; otherwise the culture is
// inserted before the extension (".xml" is added when path has none).
func recombineV1(path, cultureName string) string {
	if n, ok := parseV1Name(path); ok {
		n.Culture = cultureName
		return n.String()
	}
	ext := v1Extension(path)
	if ext == "" {
		return path + "." + cultureName + ".xml"
	}
	return strings.TrimSuffix(path, ext) + "." + cultureName + ext
}

// onDiskSpelling returns the name of an existing file in the directory of
// path that matches path case-insensitively ("app.EN.xml" for "app.en.xml"),
// or path itself. An exact match wins.
func onDiskSpelling(path string) string {
	dir, base := filepath.Split(path)
	entries, err := os.ReadDir(filepath.Clean(dir))
	if err != nil {
		return path
	}
	match := ""
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(name, base) {
			continue
		}
		if name == base {
			return path
		}
		if match == "" {
			match = name
		}
	}
	if match == "" {
		return path
	}
	return filepath.Join(dir, match)
}

// locationName returns the name a v1 location is parsed from.
func locationName(loc location.Location) (string, bool) {
	switch l := loc.(type) {
	case *location.File:
		return l.Path(), true
	case *location.Embedded:
		return l.Name(), true
	}
	return "", false
}

func locationV1Name(loc location.Location) (v1Name, bool) {
	name, ok := locationName(loc)
	if !ok {
		return v1Name{}, false
	}
	return parseV1Name(name)
}

// ---------------------------------------------------------------------------
// Detection
// ---------------------------------------------------------------------------

// detectV1 requires a culture in the file name, a <translation> root with
// at least one key and no <culture> children.
func detectV1(loc location.Location) bool {
	if _, ok := locationV1Name(loc); !ok {
		return false
	}
	doc, err := loc.Load()
	if err != nil || !isRoot(doc) {
		return false
	}
	root := doc.Root()
	return len(root.SelectElements(elemCulture)) == 0 && len(keyElements(root)) > 0
}

// relatedV1 lists the files in the same directory whose names share the
// prefix and extension of loc and that are v1 files themselves.
func relatedV1(loc location.Location) []location.Location {
	self := []location.Location{loc}
	f, ok := loc.(*location.File)
	if !ok {
		return self
	}
	n, ok := parseV1Name(f.Path())
	if !ok {
		return self
	}

	dir := filepath.Dir(f.Path())
	entries, err := os.ReadDir(dir)
	if err != nil {
		return self
	}

	base := filepath.Base(n.Prefix) + "."
	var related []location.Location
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, base) || !strings.EqualFold(filepath.Ext(name), n.Ext) {
			continue
		}
		candidate := location.NewFile(filepath.Join(dir, name))
		if location.Equal(candidate, loc) || detectV1(candidate) {
			related = append(related, candidate)
		}
	}
	if len(related) == 0 {
		return self
	}
	return related
}

func describeV1(loc location.Location) Description {
	d := Description{Location: loc, Version: V1, Name: loc.String()}
	name, ok := locationName(loc)
	if !ok {
		d.ShortName = d.Name
		return d
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if n, ok := parseV1Name(name); ok {
		stem = n.Prefix
	}
	if f, ok := loc.(*location.File); ok && f.Path() == name {
		d.Name = stem
	}
	d.ShortName = filepath.Base(stem)
	return d
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

func decodeV1(loc location.Location, doc *etree.Document) (*dictionary.Translation, error) {
	n, ok := locationV1Name(loc)
	if !ok {
		return nil, fmt.Errorf("no culture in name of %s: %w", loc, ErrUnsupportedLocation)
	}
	if !isRoot(doc) {
		return nil, fmt.Errorf("missing <%s> root: %w", elemTranslation, ErrUnsupportedFormat)
	}
	root := doc.Root()
	return &dictionary.Translation{
		Name:       root.SelectAttrValue(attrName, ""),
		IsTemplate: isTrue(root, attrTemplate),
		Cultures: []dictionary.Culture{{
			Name:      n.Culture,
			IsPrimary: isTrue(root, attrPrimary),
			Keys:      decodeKeys(root),
		}},
	}, nil
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// planV1 splits t into one file per culture next to loc.
func planV1(loc location.Location, t *dictionary.Translation) ([]SerializeInstruction, error) {
	f, ok := loc.(*location.File)
	if !ok {
		return nil, fmt.Errorf("format v1 cannot write to %s: %w", loc, ErrUnsupportedLocation)
	}

	instructions := make([]SerializeInstruction, 0, len(t.Cultures))
	for _, c := range t.Cultures {
		if !culture.IsFileTag(c.Name) {
			return nil, fmt.Errorf("culture %q cannot be stored in a v1 file name: %w", c.Name, ErrUnsupportedLocation)
		}
		instructions = append(instructions, SerializeInstruction{
			Location: location.NewFile(onDiskSpelling(recombineV1(f.Path(), c.Name))),
			Version:  V1,
			Translation: &dictionary.Translation{
				Name:       t.Name,
				IsTemplate: t.IsTemplate,
				Cultures:   []dictionary.Culture{c},
			},
		})
	}
	return instructions, nil
}

// encodeV1 writes the single culture of t.
func encodeV1(t *dictionary.Translation) (*etree.Document, error) {
	if len(t.Cultures) != 1 {
		return nil, fmt.Errorf("format v1 stores exactly one culture per file, got %d", len(t.Cultures))
	}
	c := t.Cultures[0]

	doc, root := newDocument(v1Comment)
	if t.Name != "" {
		root.CreateAttr(attrName, t.Name)
	}
	setTrue(root, attrPrimary, c.IsPrimary)
	setTrue(root, attrTemplate, t.IsTemplate)
	if err := encodeKeys(root, c.Keys); err != nil {
		return nil, fmt.Errorf("culture %s: %w", c.Name, err)
	}
	finishDocument(doc)
	return doc, nil
}

// ---------------------------------------------------------------------------
// Compatibility
// ---------------------------------------------------------------------------

// v2Placeholder matches placeholder syntax that v1 readers do not know:
// "{#}" and "{=…}" not preceded by another "{".
var v2Placeholder = regexp.MustCompile(`(?:^|[^{])\{(?:#\}|=)`)

// Issue is a key that loses meaning when stored in format v1.
type Issue struct {
	Culture string
	Key     dictionary.KeyID
	Reason  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Culture, i.Key, i.Reason)
}

// V1Issues lists the keys of t that use features format v1 readers do not
// support: modulo counts and the newer placeholder syntax.
func V1Issues(t *dictionary.Translation) []Issue {
	var issues []Issue
	for _, c := range t.Cultures {
		for _, k := range c.Keys {
			if k.Modulo != dictionary.NoModulo {
				issues = append(issues, Issue{Culture: c.Name, Key: k.ID(), Reason: "uses a modulo count"})
			}
			if v2Placeholder.MatchString(k.Text) {
				issues = append(issues, Issue{Culture: c.Name, Key: k.ID(), Reason: "uses {#} or {=…} placeholders"})
			}
		}
	}
	return issues
}
