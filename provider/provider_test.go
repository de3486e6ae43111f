package provider

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"

	"github.com/minios-linux/txdict/format"
	"github.com/minios-linux/txdict/location"
)

type recorder struct {
	infos []string
	warns []string
}

func (r *recorder) Infof(msg string, args ...any) {
	r.infos = append(r.infos, fmt.Sprintf(msg, args...))
}

func (r *recorder) Warnf(msg string, args ...any) {
	r.warns = append(r.warns, fmt.Sprintf(msg, args...))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}

func v1Body(key, text string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<translation xml:space="preserve">
	<text key=%q>%s</text>
</translation>
`, key, text)
}

// v1Family writes t.en.xml, t.de.xml and t.fr.xml and returns their
// locations in that order.
func v1Family(t *testing.T) (string, []location.Location) {
	t.Helper()
	dir := t.TempDir()
	var locs []location.Location
	for _, c := range []string{"en", "de", "fr"} {
		path := filepath.Join(dir, "t."+c+".xml")
		writeFile(t, path, v1Body("greeting", "hello "+c))
		locs = append(locs, location.NewFile(path))
	}
	return dir, locs
}

func names(locs []location.Location) []string {
	var result []string
	for _, loc := range locs {
		result = append(result, filepath.Base(loc.String()))
	}
	return result
}

func instructionNames(instructions []format.DeserializeInstruction) []string {
	var locs []location.Location
	for _, in := range instructions {
		locs = append(locs, in.Location)
	}
	return names(locs)
}

// ---------------------------------------------------------------------------
// Discovery
// ---------------------------------------------------------------------------

func TestDetectSerializer(t *testing.T) {
	dir := t.TempDir()
	v1 := filepath.Join(dir, "a.en.txd")
	v2 := filepath.Join(dir, "b.txd")
	other := filepath.Join(dir, "c.txd")
	writeFile(t, v1, v1Body("k", "v"))
	writeFile(t, v2, `<translation><culture name="en"><text key="k">v</text></culture></translation>`)
	writeFile(t, other, `<something/>`)

	p := New(nil)
	for path, want := range map[string]format.Version{v1: format.V1, v2: format.V2} {
		got, ok := p.DetectSerializer(location.NewFile(path))
		if !ok || got != want {
			t.Errorf("DetectSerializer(%s) = %v, %v; want %v", filepath.Base(path), got, ok, want)
		}
	}
	if _, ok := p.DetectSerializer(location.NewFile(other)); ok {
		t.Error("DetectSerializer(c.txd) should fail")
	}

	if _, err := p.LoadFrom(location.NewFile(other), format.Unknown); !errors.Is(err, format.ErrUnsupportedFormat) {
		t.Errorf("LoadFrom(c.txd) = %v, want ErrUnsupportedFormat", err)
	}
	in, err := p.LoadFrom(location.NewFile(v2), format.Unknown)
	if err != nil || in.Version != format.V2 {
		t.Errorf("LoadFrom(b.txd) = %+v, %v; want v2 instruction", in, err)
	}
	in, err = p.LoadFrom(location.NewFile(other), format.V2)
	if err != nil || in.Version != format.V2 {
		t.Errorf("LoadFrom with explicit version = %+v, %v", in, err)
	}
}

func TestForceOverridesDetection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.en.txd")
	writeFile(t, path, `<translation/>`)
	loc := location.NewFile(path)

	p := New(nil)
	if _, ok := p.DetectSerializer(loc); ok {
		t.Fatal("DetectSerializer(empty.en.txd) should fail without keys")
	}
	p.Force(loc, format.V1)
	loaded, err := p.Load([]location.Location{location.NewFile(path)}, nil)
	if err != nil || len(loaded) != 1 || loaded[0].Err != nil {
		t.Fatalf("Load() = %+v, %v; want one dictionary", loaded, err)
	}
	if got := loaded[0].Translation.CultureNames(); len(got) != 1 || got[0] != "en" {
		t.Fatalf("cultures = %v, want [en]", got)
	}

	p.Force(loc, format.Unknown)
	if _, err := p.LoadFrom(loc, format.Unknown); !errors.Is(err, format.ErrUnsupportedFormat) {
		t.Fatalf("LoadFrom() after clearing = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDetectUniqueTranslationsReportsMissedRelated(t *testing.T) {
	_, family := v1Family(t)
	rec := &recorder{}
	p := New(rec)

	detected := p.DetectUniqueTranslations(family[:1])
	if len(detected) != 1 {
		t.Fatalf("len(detected) = %d, want 1", len(detected))
	}
	d := detected[0]
	if diff := cmp.Diff([]string{"t.en.xml"}, instructionNames(d.Instructions)); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"t.de.xml", "t.fr.xml"}, names(d.MissedLocations())); diff != "" {
		t.Errorf("missed mismatch (-want +got):\n%s", diff)
	}
	if d.Description.ShortName != "t" || d.Description.Version != format.V1 {
		t.Errorf("description = %+v", d.Description)
	}
}

func TestDetectUniqueTranslationsFoldsFamily(t *testing.T) {
	dir, family := v1Family(t)
	other := filepath.Join(dir, "notes.txt")
	writeFile(t, other, "not a dictionary")
	rec := &recorder{}
	p := New(rec)

	detected := p.DetectUniqueTranslations(append(family, location.NewFile(other)))
	if len(detected) != 1 {
		t.Fatalf("len(detected) = %d, want 1", len(detected))
	}
	d := detected[0]
	if len(d.Missed) != 0 {
		t.Errorf("missed = %v, want none", names(d.MissedLocations()))
	}
	if diff := cmp.Diff([]string{"t.en.xml", "t.de.xml", "t.fr.xml"}, instructionNames(d.Instructions)); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}
	if len(rec.infos) != 1 || !strings.Contains(rec.infos[0], "notes.txt") {
		t.Errorf("infos = %q, want one skip message for notes.txt", rec.infos)
	}
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestLoadPrompterDecisions(t *testing.T) {
	_, family := v1Family(t)

	tests := []struct {
		decision Decision
		cultures []string
	}{
		{LoadSelectedOnly, []string{"en"}},
		{LoadAll, []string{"en", "de", "fr"}},
	}
	for _, tt := range tests {
		t.Run(tt.decision.String(), func(t *testing.T) {
			var asked []location.Location
			prompt := PrompterFunc(func(missed []location.Location) Decision {
				asked = missed
				return tt.decision
			})
			loaded, err := New(nil).Load(family[:1], prompt)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(asked) != 2 {
				t.Fatalf("prompter asked about %v, want 2 locations", names(asked))
			}
			if len(loaded) != 1 || loaded[0].Err != nil {
				t.Fatalf("loaded = %+v", loaded)
			}
			if diff := cmp.Diff(tt.cultures, loaded[0].Translation.CultureNames()); diff != "" {
				t.Fatalf("cultures mismatch (-want +got):\n%s", diff)
			}
			if len(loaded[0].Sources) != len(tt.cultures) {
				t.Fatalf("sources = %v", names(loaded[0].Sources))
			}
		})
	}

	t.Run("cancel", func(t *testing.T) {
		prompt := PrompterFunc(func([]location.Location) Decision { return Cancel })
		if _, err := New(nil).Load(family[:1], prompt); !errors.Is(err, ErrCanceled) {
			t.Fatalf("Load() = %v, want ErrCanceled", err)
		}
	})

	t.Run("nil prompter", func(t *testing.T) {
		loaded, err := New(nil).Load(family[:1], nil)
		if err != nil || len(loaded) != 1 || len(loaded[0].Translation.Cultures) != 1 {
			t.Fatalf("Load() = %+v, %v; want the selected culture only", loaded, err)
		}
	})
}

// flakyLocation loads successfully a limited number of times.
type flakyLocation struct {
	location.Location
	loads int
}

func (f *flakyLocation) Load() (*etree.Document, error) {
	if f.loads == 0 {
		return nil, errors.New("device went away")
	}
	f.loads--
	return f.Location.Load()
}

func TestLoadReportsFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.txd")
	writeFile(t, path, `<translation><culture name="en"><text key="k">v</text></culture></translation>`)
	flaky := &flakyLocation{Location: location.NewFile(path), loads: 1}

	rec := &recorder{}
	loaded, err := New(rec).Load([]location.Location{flaky}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Err == nil {
		t.Fatalf("loaded = %+v, want one result with an error", loaded)
	}
	if len(loaded[0].Sources) != 0 {
		t.Fatalf("sources = %v, want none", loaded[0].Sources)
	}
	if len(rec.warns) != 1 || !strings.Contains(rec.warns[0], "device went away") {
		t.Fatalf("warnings = %q", rec.warns)
	}
}

func TestLoadEmbedded(t *testing.T) {
	fsys := fstest.MapFS{"sys.txd": {Data: []byte(`<translation name="System"><culture name="en"><text key="Tx:yes">yes</text></culture></translation>`)}}
	loaded, err := New(nil).Load([]location.Location{location.NewEmbedded("test", fsys, "sys.txd")}, nil)
	if err != nil || len(loaded) != 1 {
		t.Fatalf("Load() = %+v, %v", loaded, err)
	}
	tr := loaded[0].Translation
	if tr.Name != "System" || tr.Cultures[0].Keys[0].Text != "yes" {
		t.Fatalf("translation = %+v", tr)
	}
}
