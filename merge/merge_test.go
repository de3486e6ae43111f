package merge

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/minios-linux/txdict/dictionary"
)

func key(k, text string) dictionary.Key { return dictionary.NewKey(k, text) }

func TestIntoAddsCulturesAndReplacesKeys(t *testing.T) {
	dst := &dictionary.Translation{Cultures: []dictionary.Culture{
		{Name: "en", Keys: []dictionary.Key{key("a", "A"), key("b", "B")}},
	}}
	src := &dictionary.Translation{Name: "App", Cultures: []dictionary.Culture{
		{Name: "en", IsPrimary: true, Keys: []dictionary.Key{key("b", "B2"), key("c", "C")}},
		{Name: "de", Keys: []dictionary.Key{key("a", "Ä")}},
	}}

	stats := Into(dst, src)

	if stats != (Stats{Cultures: 1, Added: 2, Updated: 1}) {
		t.Fatalf("stats = %+v, want 1 culture, 2 added, 1 updated", stats)
	}
	want := &dictionary.Translation{Name: "App", Cultures: []dictionary.Culture{
		{Name: "en", IsPrimary: true, Keys: []dictionary.Key{key("a", "A"), key("b", "B2"), key("c", "C")}},
		{Name: "de", Keys: []dictionary.Key{key("a", "Ä")}},
	}}
	if diff := cmp.Diff(want, dst); diff != "" {
		t.Fatalf("merged mismatch (-want +got):\n%s", diff)
	}
}

func TestIntoKeepsExistingPrimary(t *testing.T) {
	dst := &dictionary.Translation{Name: "Mine", Cultures: []dictionary.Culture{{Name: "en", IsPrimary: true}}}
	src := &dictionary.Translation{Name: "Theirs", Cultures: []dictionary.Culture{{Name: "de", IsPrimary: true}}}

	Into(dst, src)

	if p := dst.Primary(); p == nil || p.Name != "en" {
		t.Fatalf("Primary() = %v, want en", p)
	}
	if dst.Name != "Mine" {
		t.Fatalf("Name = %q, want Mine", dst.Name)
	}
	if err := dst.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestTemplateKeepsTexts(t *testing.T) {
	existing := key("Tx:date", "my date")
	dst := &dictionary.Translation{Cultures: []dictionary.Culture{{Name: "de", Keys: []dictionary.Key{existing}}}}

	fromTemplate := key("Tx:date", "template date")
	fromTemplate.Comment = "system key"
	fromTemplate.AcceptPlaceholders = true
	tmpl := &dictionary.Translation{Cultures: []dictionary.Culture{
		{Name: "de", Keys: []dictionary.Key{fromTemplate, key("Tx:time", "Zeit")}},
	}}

	stats := Template(dst, tmpl)
	if stats != (Stats{Added: 1, Updated: 1}) {
		t.Fatalf("stats = %+v, want 1 added, 1 updated", stats)
	}
	got, _ := dst.Cultures[0].Get(existing.ID())
	if got.Text != "my date" || got.Comment != "system key" || !got.AcceptPlaceholders {
		t.Fatalf("merged key = %+v", got)
	}

	if again := Template(dst, tmpl); again != (Stats{}) {
		t.Fatalf("second Template() = %+v, want no changes", again)
	}
}

func TestCulture(t *testing.T) {
	tr := &dictionary.Translation{Name: "N", Cultures: []dictionary.Culture{
		{Name: "en", Keys: []dictionary.Key{key("a", "A")}},
		{Name: "de", Keys: []dictionary.Key{key("a", "B")}},
	}}
	got := Culture(tr, "de")
	if got == nil || len(got.Cultures) != 1 || got.Cultures[0].Name != "de" || got.Name != "N" {
		t.Fatalf("Culture(de) = %+v", got)
	}
	got.Cultures[0].Keys[0].Text = "changed"
	if tr.Cultures[1].Keys[0].Text != "B" {
		t.Fatal("Culture() must not share keys with the source")
	}
	if Culture(tr, "fr") != nil {
		t.Fatal("Culture(fr) should be nil")
	}
}
