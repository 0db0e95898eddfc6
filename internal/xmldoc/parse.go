package xmldoc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

var (
	// ErrParse indicates the input is not well-formed XML.
	ErrParse = errors.New("xmldoc: parse failed")
	// ErrNoRoot indicates the input holds no element.
	ErrNoRoot = errors.New("xmldoc: no root element")
	// ErrMissingElement indicates a required element is absent.
	ErrMissingElement = errors.New("xmldoc: missing element")
	// ErrNotLeaf indicates a text value was requested from an element with child elements.
	ErrNotLeaf = errors.New("xmldoc: element is not a leaf")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads b into a document. CDATA sections are preserved so they can be
// written back as CDATA.
func Parse(b []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromBytes(bytes.TrimPrefix(b, utf8BOM)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if doc.Root() == nil {
		return nil, ErrNoRoot
	}
	return doc, nil
}

// Find walks from the document root through the named elements. The first
// name must match the root element itself.
//
//	el, err := xmldoc.Find(doc, "system", "default_title_id")
func Find(doc *etree.Document, path ...string) (*etree.Element, error) {
	el := doc.Root()
	if el == nil {
		return nil, ErrNoRoot
	}
	if len(path) == 0 {
		return el, nil
	}
	if el.FullTag() != path[0] {
		return nil, fmt.Errorf("%s: %w", path[0], ErrMissingElement)
	}
	for i, name := range path[1:] {
		child := el.SelectElement(name)
		if child == nil {
			return nil, fmt.Errorf("%s: %w", strings.Join(path[:i+2], "/"), ErrMissingElement)
		}
		el = child
	}
	return el, nil
}

// Text returns the element's first significant text node, the value the
// console's parser would see. ok is false when there is none.
func Text(el *etree.Element) (string, bool) {
	cd := firstText(el)
	if cd == nil {
		return "", false
	}
	return cd.Data, true
}

// SetText replaces the value of a leaf element. When the element holds no
// text yet, a text node is appended.
func SetText(el *etree.Element, value string) error {
	if !IsLeaf(el) {
		return fmt.Errorf("%s: %w", el.FullTag(), ErrNotLeaf)
	}
	if cd := firstText(el); cd != nil {
		cd.Data = value
		return nil
	}
	el.CreateText(value)
	return nil
}

func firstText(el *etree.Element) *etree.CharData {
	for _, tok := range el.Child {
		cd, ok := tok.(*etree.CharData)
		if ok && significant(cd) {
			return cd
		}
	}
	return nil
}

// significant reports whether a text node survives parsing: CDATA always,
// plain text only when it is not pure whitespace.
func significant(cd *etree.CharData) bool {
	if cd.IsCData() {
		return true
	}
	return strings.TrimLeft(cd.Data, " \t\r\n") != ""
}

// IsLeaf reports whether el has no child elements, so SetText will accept it.
func IsLeaf(el *etree.Element) bool {
	for _, tok := range el.Child {
		if _, ok := tok.(*etree.Element); ok {
			return false
		}
	}
	return true
}
