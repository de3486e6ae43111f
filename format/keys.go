package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/minios-linux/txdict/dictionary"
)

// Element and attribute names shared by both formats.
const (
	elemTranslation = "translation"
	elemCulture     = "culture"
	elemText        = "text"

	attrName     = "name"
	attrPrimary  = "primary"
	attrTemplate = "template"
	attrKey      = "key"
	attrCount    = "count"
	attrModulo   = "mod"
	attrComment  = "comment"

	attrAcceptMissing      = "acceptmissing"
	attrAcceptPlaceholders = "acceptplaceholders"
	attrAcceptPunctuation  = "acceptpunctuation"
)

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// isRoot reports whether doc has a <translation> root element.
func isRoot(doc *etree.Document) bool {
	root := doc.Root()
	return root != nil && root.Space == "" && root.Tag == elemTranslation
}

// keyElements returns the <text key="…"> children of parent.
func keyElements(parent *etree.Element) []*etree.Element {
	var result []*etree.Element
	for _, el := range parent.SelectElements(elemText) {
		if el.SelectAttr(attrKey) != nil {
			result = append(result, el)
		}
	}
	return result
}

// isTrue parses a boolean attribute: only "true" (any case) is true.
func isTrue(el *etree.Element, attr string) bool {
	return strings.EqualFold(el.SelectAttrValue(attr, ""), "true")
}

// decodeKeys decodes the keys below parent. Entries with an out-of-range
// count or modulo are dropped. When the same key identity appears more than
// once the last definition wins and keeps the position of the first.
func decodeKeys(parent *etree.Element) []dictionary.Key {
	c := dictionary.Culture{}
	for _, el := range keyElements(parent) {
		if k, ok := decodeKey(el); ok {
			c.Put(k)
		}
	}
	return c.Keys
}

// decodeKey decodes one <text> element. It returns false for entries whose
// count or modulo is out of range.
func decodeKey(el *etree.Element) (dictionary.Key, bool) {
	count := dictionary.NoCount
	if v, err := strconv.Atoi(strings.TrimSpace(el.SelectAttrValue(attrCount, ""))); err == nil {
		if v == dictionary.NoCount || !dictionary.ValidCount(v) {
			return dictionary.Key{}, false
		}
		count = v
	}

	modulo := dictionary.NoModulo
	if v, err := strconv.Atoi(strings.TrimSpace(el.SelectAttrValue(attrModulo, ""))); err == nil && v != dictionary.NoModulo {
		if !dictionary.ValidModulo(v) {
			return dictionary.Key{}, false
		}
		modulo = v
	}

	return dictionary.Key{
		Key:                el.SelectAttrValue(attrKey, ""),
		Text:               innerText(el),
		Comment:            el.SelectAttrValue(attrComment, ""),
		Count:              count,
		Modulo:             modulo,
		AcceptMissing:      isTrue(el, attrAcceptMissing),
		AcceptPlaceholders: isTrue(el, attrAcceptPlaceholders),
		AcceptPunctuation:  isTrue(el, attrAcceptPunctuation),
	}, true
}

// innerText concatenates all character data below el.
func innerText(el *etree.Element) string {
	var b strings.Builder
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(el)
	return b.String()
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// newDocument starts a document with the XML declaration and an empty
// <translation xml:space="preserve"> root.
func newDocument(comment string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	if comment != "" {
		doc.CreateComment(comment)
	}
	root := doc.CreateElement(elemTranslation)
	root.CreateAttr("xml:space", "preserve")
	return doc, root
}

// finishDocument indents the document with tabs. Text content is left
// untouched, including whitespace-only texts.
func finishDocument(doc *etree.Document) {
	s := etree.NewIndentSettings()
	s.UseTabs = true
	s.PreserveLeafWhitespace = true
	doc.IndentWithSettings(s)
}

// setTrue writes attr="true" when v is set.
func setTrue(el *etree.Element, attr string, v bool) {
	if v {
		el.CreateAttr(attr, "true")
	}
}

// encodeKeys appends a <text> element per key to parent.
func encodeKeys(parent *etree.Element, keys []dictionary.Key) error {
	for _, k := range keys {
		if err := encodeKey(parent, k); err != nil {
			return err
		}
	}
	return nil
}

// encodeKey appends one <text> element. A modulo outside [2, 1000] is a
// program error and fails the whole document.
func encodeKey(parent *etree.Element, k dictionary.Key) error {
	if !dictionary.ValidModulo(k.Modulo) {
		return fmt.Errorf("key %q count %d: modulo %d: %w", k.Key, k.Count, k.Modulo, ErrInvalidModulo)
	}

	el := parent.CreateElement(elemText)
	el.CreateAttr(attrKey, k.Key)
	if k.Count >= 0 {
		el.CreateAttr(attrCount, strconv.Itoa(k.Count))
	}
	if k.Modulo != dictionary.NoModulo {
		el.CreateAttr(attrModulo, strconv.Itoa(k.Modulo))
	}
	if strings.TrimSpace(k.Comment) != "" {
		el.CreateAttr(attrComment, k.Comment)
	}
	setTrue(el, attrAcceptMissing, k.AcceptMissing)
	setTrue(el, attrAcceptPlaceholders, k.AcceptPlaceholders)
	setTrue(el, attrAcceptPunctuation, k.AcceptPunctuation)
	if k.Text != "" {
		el.SetText(k.Text)
	}
	return nil
}
