package format

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/minios-linux/txdict/dictionary"
	"github.com/minios-linux/txdict/location"
)

var v2Codec = codec{
	detect:   detectV2,
	related:  relatedV2,
	describe: describeV2,
	decode:   decodeV2,
	plan:     planV2,
	encode:   encodeV2,
}

// detectV2 requires a <translation> root with at least one <culture>.
func detectV2(loc location.Location) bool {
	doc, err := loc.Load()
	if err != nil || !isRoot(doc) {
		return false
	}
	return len(doc.Root().SelectElements(elemCulture)) > 0
}

// relatedV2 returns loc alone: a v2 file holds the whole dictionary.
func relatedV2(loc location.Location) []location.Location {
	return []location.Location{loc}
}

func describeV2(loc location.Location) Description {
	d := Description{Location: loc, Version: V2, Name: loc.String()}
	name, ok := locationName(loc)
	if !ok {
		d.ShortName = d.Name
		return d
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if f, ok := loc.(*location.File); ok && f.Path() == name {
		d.Name = stem
	}
	d.ShortName = filepath.Base(stem)
	return d
}

// decodeV2 reads all cultures. A culture without a name is skipped; a
// culture name that appears twice has its keys folded into the first
// occurrence. Only the first culture marked primary stays primary.
func decodeV2(_ location.Location, doc *etree.Document) (*dictionary.Translation, error) {
	if !isRoot(doc) {
		return nil, fmt.Errorf("missing <%s> root: %w", elemTranslation, ErrUnsupportedFormat)
	}
	root := doc.Root()
	t := &dictionary.Translation{
		Name:       root.SelectAttrValue(attrName, ""),
		IsTemplate: isTrue(root, attrTemplate),
	}

	hasPrimary := false
	for _, el := range root.SelectElements(elemCulture) {
		name := el.SelectAttrValue(attrName, "")
		if name == "" {
			continue
		}
		c := t.AddCulture(name)
		for _, k := range decodeKeys(el) {
			c.Put(k)
		}
		if isTrue(el, attrPrimary) && !hasPrimary {
			c.IsPrimary = true
			hasPrimary = true
		}
	}
	return t, nil
}

// planV2 writes t to loc as a single fragment.
func planV2(loc location.Location, t *dictionary.Translation) ([]SerializeInstruction, error) {
	return []SerializeInstruction{{Location: loc, Version: V2, Translation: t}}, nil
}

func encodeV2(t *dictionary.Translation) (*etree.Document, error) {
	doc, root := newDocument("")
	if t.Name != "" {
		root.CreateAttr(attrName, t.Name)
	}
	setTrue(root, attrTemplate, t.IsTemplate)

	for _, c := range t.Cultures {
		el := root.CreateElement(elemCulture)
		el.CreateAttr(attrName, c.Name)
		setTrue(el, attrPrimary, c.IsPrimary)
		if err := encodeKeys(el, c.Keys); err != nil {
			return nil, fmt.Errorf("culture %s: %w", c.Name, err)
		}
	}
	finishDocument(doc)
	return doc, nil
}
