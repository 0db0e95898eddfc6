package patch

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/joshuapare/titlepatch/internal/xmldoc"
	"github.com/joshuapare/titlepatch/title/baseline"
)

var defaultTitlePath = []string{"system", "default_title_id"}

// SystemXML points the coldboot title of a parsed system.xml at titleID and
// returns the mapping record the result must hash to. A title absent from
// table yields ErrInformationNotFound and leaves doc untouched.
func SystemXML(doc *etree.Document, titleID baseline.TitleID, table baseline.ColdbootTable, opts ...Option) (baseline.Coldboot, error) {
	o := apply(opts)

	entry, ok := table.Lookup(titleID)
	if !ok {
		o.log.Debug("no coldboot mapping", "title_id", titleID.String())
		return baseline.Coldboot{}, fmt.Errorf("%s: %w", titleID, ErrInformationNotFound)
	}

	el, err := xmldoc.Find(doc, defaultTitlePath...)
	if err != nil {
		o.log.Debug("system.xml default_title_id missing")
		return entry, err
	}
	old, _ := xmldoc.Text(el)
	if err := xmldoc.SetText(el, titleID.String()); err != nil {
		return entry, err
	}
	o.log.Debug("coldboot title set", "from", old, "to", titleID.String(), "name", entry.Name)
	return entry, nil
}

// DefaultTitleID reads the current coldboot title.
func DefaultTitleID(doc *etree.Document) (baseline.TitleID, error) {
	el, err := xmldoc.Find(doc, defaultTitlePath...)
	if err != nil {
		return 0, err
	}
	v, ok := xmldoc.Text(el)
	if !ok {
		return 0, fmt.Errorf("empty: %w", ErrBadTitleID)
	}
	id, err := baseline.ParseTitleID(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadTitleID, err)
	}
	return id, nil
}
