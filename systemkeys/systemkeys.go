// Package systemkeys ships the template of "Tx:" system keys (separators,
// quotes, relative time phrases) inside the binary and hands out the keys
// of one culture for insertion into a dictionary.
package systemkeys

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/minios-linux/txdict/dictionary"
	"github.com/minios-linux/txdict/format"
	"github.com/minios-linux/txdict/location"
	"github.com/minios-linux/txdict/merge"
)

// Prefix starts the name of every system key.
const Prefix = "Tx:"

// templateName is the embedded template file.
const templateName = "system.txd"

//go:embed system.txd
var files embed.FS

// ErrCultureUnavailable means the template has no keys for a culture.
var ErrCultureUnavailable = errors.New("no system keys for culture")

// Location returns the embedded template.
func Location() location.Location {
	return location.NewEmbedded("txdict", files, templateName)
}

// Loader reads a location in a detected format.
type Loader interface {
	LoadFrom(loc location.Location, v format.Version) (format.DeserializeInstruction, error)
}

// Load reads the whole template.
func Load(l Loader) (*dictionary.Translation, error) {
	in, err := l.LoadFrom(Location(), format.Unknown)
	if err != nil {
		return nil, err
	}
	return in.Deserialize()
}

// ForCulture returns the system keys of one culture. For a regional
// culture ("de-AT") that the template lacks, the keys of its base culture
// are returned under the regional name.
func ForCulture(l Loader, name string) (*dictionary.Translation, error) {
	t, err := Load(l)
	if err != nil {
		return nil, err
	}
	if c := merge.Culture(t, name); c != nil {
		return c, nil
	}
	if base, _, ok := strings.Cut(name, "-"); ok {
		if c := merge.Culture(t, base); c != nil {
			c.Cultures[0].Name = name
			c.Cultures[0].IsPrimary = false
			return c, nil
		}
	}
	return nil, fmt.Errorf("%s (available: %s): %w", name, strings.Join(t.CultureNames(), ", "), ErrCultureUnavailable)
}

// IsSystemKey reports whether key is a system key.
func IsSystemKey(key string) bool {
	return strings.HasPrefix(key, Prefix)
}
