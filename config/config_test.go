package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/minios-linux/txdict/format"
	"github.com/minios-linux/txdict/location"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	f, err := Load(t.TempDir())
	if err != nil || f != nil {
		t.Fatalf("Load() = %v, %v; want nil, nil", f, err)
	}

	f, err = LoadOrDefault(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if f.Version != format.V2 || f.Related != RelatedAsk {
		t.Fatalf("defaults = %+v", f)
	}
	if !reflect.DeepEqual(f.Extensions, location.DefaultExtensions) {
		t.Fatalf("Extensions = %v, want %v", f.Extensions, location.DefaultExtensions)
	}
}

func TestLoadAppliesValues(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
format: v1
extensions: [txd]
recursive: true
related: all
upgrade: true
dictionaries:
  - path: lang/app.txd
  - name: legacy
    path: lang/old.en.xml
    format: "1"
`)

	f, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Version != format.V1 || !f.Recursive || f.Related != RelatedAll || !f.Upgrade {
		t.Fatalf("config = %+v", f)
	}
	if !reflect.DeepEqual(f.Extensions, []string{".txd"}) {
		t.Fatalf("Extensions = %v, want [.txd]", f.Extensions)
	}
	if f.Dictionaries[0].Name != "app.txd" || f.Dictionaries[0].Version != format.Unknown {
		t.Fatalf("first dictionary = %+v", f.Dictionaries[0])
	}
	if f.Dictionaries[1].Version != format.V1 {
		t.Fatalf("second dictionary = %+v", f.Dictionaries[1])
	}

	locs, err := f.Locations(dir)
	if err != nil {
		t.Fatalf("Locations: %v", err)
	}
	want := filepath.Join(dir, "lang", "old.en.xml")
	if len(locs) != 2 || locs[1].String() != want {
		t.Fatalf("Locations() = %v, want second %s", locs, want)
	}
	if got := f.Forced(dir, location.NewFile(want)); got != format.V1 {
		t.Fatalf("Forced(old.en.xml) = %v, want v1", got)
	}
	if got := f.Forced(dir, location.NewFile(filepath.Join(dir, "other.txd"))); got != format.Unknown {
		t.Fatalf("Forced(other.txd) = %v, want unknown", got)
	}
	if got := f.Label(dir, location.NewFile(want)); got != "legacy" {
		t.Fatalf("Label(old.en.xml) = %q, want legacy", got)
	}
	if got := f.Label(dir, location.NewFile(filepath.Join(dir, "other.txd"))); got != "" {
		t.Fatalf("Label(other.txd) = %q, want empty", got)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name, content, want string
	}{
		{"unknown field", "formats: v2\n", "field formats not found"},
		{"bad format", "format: v3\n", "unsupported dictionary format"},
		{"bad related", "related: sometimes\n", `related "sometimes" is invalid`},
		{"dictionary without path", "dictionaries:\n  - name: x\n", "dictionary #1 has no path"},
		{"dictionary format", "dictionaries:\n  - path: a.txd\n    format: xml\n", `dictionary "a.txd"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)
			_, err := Load(dir)
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) || !strings.Contains(err.Error(), FileName) {
				t.Fatalf("Load() error = %q, want it to mention %q and the file", err, tt.want)
			}
		})
	}
}

func TestSaveVersion(t *testing.T) {
	f := Default()
	if got := f.SaveVersion(format.V1); got != format.V1 {
		t.Fatalf("SaveVersion(v1) = %v, want v1", got)
	}
	if got := f.SaveVersion(format.Unknown); got != format.V2 {
		t.Fatalf("SaveVersion(unknown) = %v, want v2", got)
	}
	f.Upgrade = true
	if got := f.SaveVersion(format.V1); got != format.V2 {
		t.Fatalf("SaveVersion(v1) with upgrade = %v, want v2", got)
	}
}

func TestParseEmpty(t *testing.T) {
	f, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if f.Version != format.V2 {
		t.Fatalf("Version = %v, want v2", f.Version)
	}
}
