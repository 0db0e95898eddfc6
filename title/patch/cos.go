package patch

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/joshuapare/titlepatch/internal/xmldoc"
)

const (
	// SafeEntryPoint is the executable the patched descriptor boots.
	SafeEntryPoint = "safe.rpx"
	// FullPermissionMask grants every capability in a permission group.
	FullPermissionMask = "FFFFFFFFFFFFFFFF"
)

// cosFields are the app descriptor values replaced by COS, in document order.
var cosFields = []struct {
	name  string
	value string
}{
	{"argstr", SafeEntryPoint},
	{"avail_size", "00000000"},
	{"codegen_size", "02000000"},
	{"codegen_core", "80000001"},
	{"max_size", "40000000"},
	{"max_codesize", "00800000"},
}

// COS rewrites a parsed cos1.xml so the title boots SafeEntryPoint with
// full permissions. Every required element is located before the first
// write, so a document missing any of them is returned untouched with an
// error wrapping ErrMissingElement or ErrNotLeaf.
func COS(doc *etree.Document, opts ...Option) error {
	o := apply(opts)

	type edit struct {
		el    *etree.Element
		value string
	}
	var edits []edit

	for _, f := range cosFields {
		el, err := xmldoc.Find(doc, "app", f.name)
		if err != nil {
			o.log.Debug("cos element missing", "element", f.name)
			return err
		}
		if !xmldoc.IsLeaf(el) {
			return fmt.Errorf("app/%s: %w", f.name, ErrNotLeaf)
		}
		edits = append(edits, edit{el, f.value})
	}

	perms, err := xmldoc.Find(doc, "app", "permissions")
	if err != nil {
		o.log.Debug("cos permissions missing")
		return err
	}
	for _, group := range perms.ChildElements() {
		mask := group.SelectElement("mask")
		if mask == nil {
			o.log.Debug("cos permission group has no mask", "group", group.Tag)
			return fmt.Errorf("app/permissions/%s/mask: %w", group.Tag, ErrMissingElement)
		}
		if !xmldoc.IsLeaf(mask) {
			return fmt.Errorf("app/permissions/%s/mask: %w", group.Tag, ErrNotLeaf)
		}
		edits = append(edits, edit{mask, FullPermissionMask})
	}

	for _, e := range edits {
		old, _ := xmldoc.Text(e.el)
		if err := xmldoc.SetText(e.el, e.value); err != nil {
			return err
		}
		if old != e.value {
			o.log.Debug("cos value set", "element", e.el.GetPath(), "from", old, "to", e.value)
		}
	}
	o.log.Debug("cos patched", "permission_groups", len(perms.ChildElements()))
	return nil
}
