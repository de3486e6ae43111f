// Package merge combines translation dictionaries key by key.
//
// Into folds one dictionary into another (loading the culture files of a v1
// family, importing another dictionary). Template works like msgmerge: keys
// of a template are added to a dictionary without touching existing texts.
package merge

import (
	"github.com/minios-linux/txdict/dictionary"
)

// Stats counts what a merge changed.
type Stats struct {
	// Cultures is the number of cultures added to the destination.
	Cultures int
	// Added is the number of keys that did not exist before.
	Added int
	// Updated is the number of existing keys that were changed.
	Updated int
}

func (s *Stats) add(o Stats) {
	s.Cultures += o.Cultures
	s.Added += o.Added
	s.Updated += o.Updated
}

// Into merges src into dst. Missing cultures are appended, existing keys are
// replaced by the src version and new keys are appended. dst keeps its name
// unless it has none. A primary culture in src becomes primary in dst only
// when dst has no primary culture yet.
func Into(dst, src *dictionary.Translation) Stats {
	if dst.Name == "" {
		dst.Name = src.Name
	}
	dst.IsTemplate = dst.IsTemplate || src.IsTemplate

	var stats Stats
	for _, sc := range src.Cultures {
		stats.add(mergeCulture(dst, sc, func(existing, incoming dictionary.Key) dictionary.Key {
			return incoming
		}))
	}
	return stats
}

// Template adds the keys of tmpl to dst. Keys that already exist keep their
// text; comment and accept flags are taken from the template.
func Template(dst, tmpl *dictionary.Translation) Stats {
	var stats Stats
	for _, tc := range tmpl.Cultures {
		stats.add(mergeCulture(dst, tc, func(existing, incoming dictionary.Key) dictionary.Key {
			existing.Comment = incoming.Comment
			existing.AcceptMissing = incoming.AcceptMissing
			existing.AcceptPlaceholders = incoming.AcceptPlaceholders
			existing.AcceptPunctuation = incoming.AcceptPunctuation
			return existing
		}))
	}
	return stats
}

// mergeCulture merges sc into the culture of dst with the same name,
// resolving keys present on both sides with resolve.
func mergeCulture(dst *dictionary.Translation, sc dictionary.Culture, resolve func(existing, incoming dictionary.Key) dictionary.Key) Stats {
	var stats Stats
	if dst.Culture(sc.Name) == nil {
		stats.Cultures++
	}
	if sc.IsPrimary && dst.Primary() == nil {
		dst.AddCulture(sc.Name)
		dst.SetPrimary(sc.Name)
	}

	dc := dst.AddCulture(sc.Name)
	for _, k := range sc.Keys {
		existing, ok := dc.Get(k.ID())
		if !ok {
			dc.Put(k)
			stats.Added++
			continue
		}
		if merged := resolve(existing, k); merged != existing {
			dc.Put(merged)
			stats.Updated++
		}
	}
	return stats
}

// Culture returns a copy of t that holds only the named culture, or nil when
// t has no such culture.
func Culture(t *dictionary.Translation, name string) *dictionary.Translation {
	c := t.Culture(name)
	if c == nil {
		return nil
	}
	cp := *c
	cp.Keys = append([]dictionary.Key(nil), c.Keys...)
	return &dictionary.Translation{Name: t.Name, IsTemplate: t.IsTemplate, Cultures: []dictionary.Culture{cp}}
}
