// Package dictionary defines the format-neutral, in-memory form of a
// translation dictionary: a translation holds cultures, a culture holds
// text keys.
//
// Both on-disk formats decode into and encode from these types, so code
// working with dictionaries never needs to know which format a file uses.
package dictionary

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Limits
// ---------------------------------------------------------------------------

const (
	// NoCount marks a key that is not quantified.
	NoCount = -1
	// MaxCount is the largest count a quantified key may use.
	MaxCount = 65535
	// NoModulo marks a quantified key without modulo reduction.
	NoModulo = 0
	// MinModulo and MaxModulo bound the modulo of a quantified key.
	MinModulo = 2
	MaxModulo = 1000
)

var (
	// ErrDuplicateCulture means two cultures of a translation share a name.
	ErrDuplicateCulture = errors.New("duplicate culture")
	// ErrMultiplePrimary means more than one culture is marked primary.
	ErrMultiplePrimary = errors.New("more than one primary culture")
)

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// Translation is the content of one logical dictionary.
type Translation struct {
	// Name is an optional display name.
	Name string `yaml:"name,omitempty"`
	// IsTemplate marks a dictionary that is not meant to be deployed.
	IsTemplate bool `yaml:"template,omitempty"`
	// Cultures in document order. Names are unique and at most one culture
	// is primary.
	Cultures []Culture `yaml:"cultures"`
}

// Culture is one language variant of a dictionary.
type Culture struct {
	// Name is the IETF language tag ("en", "de-AT").
	Name string `yaml:"name"`
	// IsPrimary marks the culture holding the authoritative source text.
	IsPrimary bool `yaml:"primary,omitempty"`
	// Keys in document order; Key.ID() is unique within the culture.
	Keys []Key `yaml:"keys"`
}

// Key is one text entry of a culture.
type Key struct {
	// Key is the dotted key name ("app.menu.open").
	Key string `yaml:"key"`
	// Text is the translated text; it may be empty.
	Text string `yaml:"text"`
	// Comment is an optional note on the key.
	Comment string `yaml:"comment,omitempty"`
	// Count selects a quantified variant; NoCount when not quantified.
	Count int `yaml:"count"`
	// Modulo reduces the count before matching; NoModulo when unused.
	Modulo int `yaml:"mod,omitempty"`

	AcceptMissing      bool `yaml:"accept_missing,omitempty"`
	AcceptPlaceholders bool `yaml:"accept_placeholders,omitempty"`
	AcceptPunctuation  bool `yaml:"accept_punctuation,omitempty"`
}

// KeyID identifies a key within a culture: quantified variants of the same
// key name are distinct entries.
type KeyID struct {
	Key    string
	Count  int
	Modulo int
}

func (id KeyID) String() string {
	switch {
	case id.Count == NoCount:
		return id.Key
	case id.Modulo == NoModulo:
		return fmt.Sprintf("%s[%d]", id.Key, id.Count)
	default:
		return fmt.Sprintf("%s[%d%%%d]", id.Key, id.Count, id.Modulo)
	}
}

// NewKey returns an unquantified key.
func NewKey(key, text string) Key {
	return Key{Key: key, Text: text, Count: NoCount}
}

// ID returns the identity of the key within its culture.
func (k Key) ID() KeyID {
	return KeyID{Key: k.Key, Count: k.Count, Modulo: k.Modulo}
}

// ValidCount reports whether c is NoCount or inside [0, MaxCount].
func ValidCount(c int) bool {
	return c == NoCount || (c >= 0 && c <= MaxCount)
}

// ValidModulo reports whether m is NoModulo or inside [MinModulo, MaxModulo].
func ValidModulo(m int) bool {
	return m == NoModulo || (m >= MinModulo && m <= MaxModulo)
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Culture returns the culture with the given name, or nil.
func (t *Translation) Culture(name string) *Culture {
	for i := range t.Cultures {
		if t.Cultures[i].Name == name {
			return &t.Cultures[i]
		}
	}
	return nil
}

// AddCulture returns the culture with the given name, appending an empty one
// when it does not exist yet.
func (t *Translation) AddCulture(name string) *Culture {
	if c := t.Culture(name); c != nil {
		return c
	}
	t.Cultures = append(t.Cultures, Culture{Name: name})
	return &t.Cultures[len(t.Cultures)-1]
}

// Primary returns the primary culture, or nil when none is marked.
func (t *Translation) Primary() *Culture {
	for i := range t.Cultures {
		if t.Cultures[i].IsPrimary {
			return &t.Cultures[i]
		}
	}
	return nil
}

// SetPrimary marks the named culture as primary and clears the flag on all
// others. It returns false when no such culture exists.
func (t *Translation) SetPrimary(name string) bool {
	if t.Culture(name) == nil {
		return false
	}
	for i := range t.Cultures {
		t.Cultures[i].IsPrimary = t.Cultures[i].Name == name
	}
	return true
}

// CultureNames returns the culture names in document order.
func (t *Translation) CultureNames() []string {
	names := make([]string, len(t.Cultures))
	for i, c := range t.Cultures {
		names[i] = c.Name
	}
	return names
}

// KeyCount returns the number of distinct key names across all cultures.
func (t *Translation) KeyCount() int {
	seen := make(map[string]bool)
	for _, c := range t.Cultures {
		for _, k := range c.Keys {
			seen[k.Key] = true
		}
	}
	return len(seen)
}

// Validate checks the translation invariants: unique culture names and at
// most one primary culture.
func (t *Translation) Validate() error {
	seen := make(map[string]bool, len(t.Cultures))
	primary := ""
	for _, c := range t.Cultures {
		if seen[c.Name] {
			return fmt.Errorf("culture %q: %w", c.Name, ErrDuplicateCulture)
		}
		seen[c.Name] = true
		if c.IsPrimary {
			if primary != "" {
				return fmt.Errorf("cultures %q and %q: %w", primary, c.Name, ErrMultiplePrimary)
			}
			primary = c.Name
		}
	}
	return nil
}

// Find returns the index of the key with the given identity, or -1.
func (c *Culture) Find(id KeyID) int {
	for i, k := range c.Keys {
		if k.ID() == id {
			return i
		}
	}
	return -1
}

// Get returns the key with the given identity.
func (c *Culture) Get(id KeyID) (Key, bool) {
	if i := c.Find(id); i >= 0 {
		return c.Keys[i], true
	}
	return Key{}, false
}

// Put stores k, replacing the key with the same identity in place or
// appending it. It reports whether the key was added.
func (c *Culture) Put(k Key) bool {
	if i := c.Find(k.ID()); i >= 0 {
		c.Keys[i] = k
		return false
	}
	c.Keys = append(c.Keys, k)
	return true
}
