package systemkeys

import (
	"errors"
	"testing"

	"github.com/minios-linux/txdict/dictionary"
	"github.com/minios-linux/txdict/format"
	"github.com/minios-linux/txdict/provider"
)

func TestTemplateIsV2(t *testing.T) {
	p := provider.New(nil)
	v, ok := p.DetectSerializer(Location())
	if !ok || v != format.V2 {
		t.Fatalf("DetectSerializer(template) = %v, %v; want v2", v, ok)
	}
	tr, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := tr.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for _, c := range tr.Cultures {
		for _, k := range c.Keys {
			if !IsSystemKey(k.Key) {
				t.Errorf("%s: %q is not a system key", c.Name, k.Key)
			}
		}
	}
}

func TestForCulture(t *testing.T) {
	p := provider.New(nil)

	de, err := ForCulture(p, "de")
	if err != nil {
		t.Fatalf("ForCulture(de): %v", err)
	}
	if len(de.Cultures) != 1 || de.Cultures[0].Name != "de" {
		t.Fatalf("ForCulture(de) cultures = %v", de.CultureNames())
	}
	one := dictionary.NewKey("Tx:time.relative.days", "")
	one.Count = 1
	if k, ok := de.Cultures[0].Get(one.ID()); !ok || k.Text != "{#} Tag" {
		t.Fatalf("quantified key = %+v, %v", k, ok)
	}

	at, err := ForCulture(p, "de-AT")
	if err != nil {
		t.Fatalf("ForCulture(de-AT): %v", err)
	}
	if at.Cultures[0].Name != "de-AT" || len(at.Cultures[0].Keys) != len(de.Cultures[0].Keys) {
		t.Fatalf("ForCulture(de-AT) = %+v", at.Cultures[0])
	}

	if _, err := ForCulture(p, "ja"); !errors.Is(err, ErrCultureUnavailable) {
		t.Fatalf("ForCulture(ja) = %v, want ErrCultureUnavailable", err)
	}
}
