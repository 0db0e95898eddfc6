package xmldoc

import (
	"bytes"
	"strings"

	"github.com/beevik/etree"
)

const (
	indentUnit  = "  "
	declaration = `<?xml version="1.0"?>`
)

const (
	flagNewline = 1 << iota
	flagIndent
)

type writer struct {
	bytes.Buffer
}

// Serialize writes doc in the fixed layout described in the package comment.
func Serialize(doc *etree.Document) []byte {
	var w writer
	w.WriteString(declaration)
	w.WriteByte('\n')

	flags := flagIndent
	for _, tok := range doc.Child {
		el, ok := tok.(*etree.Element)
		if !ok {
			continue
		}
		if flags&flagNewline != 0 {
			w.WriteByte('\n')
		}
		w.element(el, 0)
		flags = flagNewline | flagIndent
	}
	if flags&flagNewline != 0 {
		w.WriteByte('\n')
	}
	return w.Bytes()
}

func (w *writer) indent(depth int) {
	for range depth {
		w.WriteString(indentUnit)
	}
}

func (w *writer) element(el *etree.Element, depth int) {
	w.WriteByte('<')
	w.WriteString(el.FullTag())
	for _, a := range el.Attr {
		w.WriteByte(' ')
		w.WriteString(a.FullKey())
		w.WriteString(`="`)
		w.escapeAttr(a.Value)
		w.WriteByte('"')
	}

	children := significantChildren(el)
	if len(children) == 0 {
		w.WriteString(" />")
		return
	}
	w.WriteByte('>')

	flags := flagNewline | flagIndent
	for _, tok := range children {
		switch t := tok.(type) {
		case *etree.CharData:
			w.text(t)
			flags = 0
		case *etree.Element:
			if flags&flagNewline != 0 {
				w.WriteByte('\n')
			}
			if flags&flagIndent != 0 {
				w.indent(depth + 1)
			}
			w.element(t, depth+1)
			flags = flagNewline | flagIndent
		}
	}

	if flags&flagNewline != 0 {
		w.WriteByte('\n')
	}
	if flags&flagIndent != 0 {
		w.indent(depth)
	}
	w.WriteString("</")
	w.WriteString(el.FullTag())
	w.WriteByte('>')
}

func significantChildren(el *etree.Element) []etree.Token {
	out := make([]etree.Token, 0, len(el.Child))
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			out = append(out, t)
		case *etree.CharData:
			if significant(t) {
				out = append(out, t)
			}
		}
	}
	return out
}

func (w *writer) text(cd *etree.CharData) {
	if cd.IsCData() {
		w.WriteString("<![CDATA[")
		w.WriteString(strings.ReplaceAll(cd.Data, "]]>", "]]]]><![CDATA[>"))
		w.WriteString("]]>")
		return
	}
	for i := 0; i < len(cd.Data); i++ {
		c := cd.Data[i]
		switch {
		case c == '&':
			w.WriteString("&amp;")
		case c == '<':
			w.WriteString("&lt;")
		case c == '>':
			w.WriteString("&gt;")
		case c < 0x20 && c != '\t' && c != '\n' && c != '\r':
			w.charRef(c)
		default:
			w.WriteByte(c)
		}
	}
}

func (w *writer) escapeAttr(v string) {
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case c == '\t' || c == '\n' || c == '\r':
			// attribute whitespace is normalized to spaces on load
			w.WriteByte(' ')
		case c == '&':
			w.WriteString("&amp;")
		case c == '<':
			w.WriteString("&lt;")
		case c == '>':
			w.WriteString("&gt;")
		case c == '"':
			w.WriteString("&quot;")
		case c < 0x20:
			w.charRef(c)
		default:
			w.WriteByte(c)
		}
	}
}

func (w *writer) charRef(c byte) {
	w.WriteString("&#")
	w.WriteByte('0' + c/10)
	w.WriteByte('0' + c%10)
	w.WriteByte(';')
}
