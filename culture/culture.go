// Package culture handles the culture (language) tags used to name the
// cultures of a dictionary: validation of the short tags allowed in legacy
// file names, canonical spelling, and display metadata for the CLI.
package culture

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// fileTagPattern matches the culture tags that may appear in a per-culture
// file name: a two-letter language with an optional two-letter region.
var fileTagPattern = regexp.MustCompile(`(?i)^[a-z]{2}(-[a-z]{2})?$`)

// IsFileTag reports whether s has the shape of a per-culture file name tag
// ("de", "de-AT"). It does not check that the language exists.
func IsFileTag(s string) bool {
	return fileTagPattern.MatchString(s)
}

// Parse validates a per-culture file name tag and returns its canonical
// spelling (lower-case language, upper-case region). Tags of the wrong shape
// and unknown languages or regions are rejected.
func Parse(s string) (string, error) {
	if !IsFileTag(s) {
		return "", fmt.Errorf("culture %q: not of the form xx or xx-XX", s)
	}
	canonical := Canonical(s)
	parts := strings.SplitN(canonical, "-", 2)
	if _, err := language.ParseBase(parts[0]); err != nil {
		return "", fmt.Errorf("culture %q: %w", s, err)
	}
	if len(parts) == 2 {
		if _, err := language.ParseRegion(parts[1]); err != nil {
			return "", fmt.Errorf("culture %q: %w", s, err)
		}
	}
	return canonical, nil
}

// Canonical normalizes separators and casing of a culture name, e.g.
// "pt_br" → "pt-BR". Unrecognized shapes are returned trimmed.
func Canonical(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 && len(parts[1]) == 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// ---------------------------------------------------------------------------
// Display metadata
// ---------------------------------------------------------------------------

// Meta describes how a culture is shown to users.
type Meta struct {
	// Name is the culture's name in its own language ("Deutsch").
	Name string
	// Flag is the emoji flag of the culture's (possibly inferred) region.
	Flag string
}

// Resolve returns best-effort display metadata for a culture name. Unknown
// cultures are named by their tag and get no flag.
func Resolve(lang string) Meta {
	tag, err := language.Parse(Canonical(lang))
	if err != nil {
		return Meta{Name: lang}
	}
	name := display.Self.Name(tag)
	if name == "" {
		name = lang
	}
	return Meta{Name: name, Flag: flag(tag)}
}

// flag builds the regional-indicator emoji for the tag's region.
func flag(tag language.Tag) string {
	region, conf := tag.Region()
	if conf == language.No {
		return ""
	}
	code := region.String()
	if len(code) != 2 {
		return ""
	}
	var b strings.Builder
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}
