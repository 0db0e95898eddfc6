package baseline

import "fmt"

// Coldboot maps a title the boot pointer may be set to onto the digest of
// system.xml once the pointer has been set to it.
type Coldboot struct {
	TitleID TitleID `json:"title_id"`
	Name    string  `json:"name"`
	Hash    string  `json:"hash"`
	// Menu marks the stock system menu, the target when removing a coldboot install.
	Menu bool `json:"menu"`
}

// ColdbootTable is an immutable lookup of Coldboot entries.
type ColdbootTable struct {
	entries []Coldboot
}

// NewColdbootTable builds a table, rejecting duplicate ids.
func NewColdbootTable(entries []Coldboot) (ColdbootTable, error) {
	seen := make(map[TitleID]struct{}, len(entries))
	out := make([]Coldboot, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.TitleID]; dup {
			return ColdbootTable{}, fmt.Errorf("coldboot %s: %w", e.TitleID, ErrDuplicate)
		}
		seen[e.TitleID] = struct{}{}
		out = append(out, e)
	}
	return ColdbootTable{entries: out}, nil
}

// Lookup returns the entry for id.
func (t ColdbootTable) Lookup(id TitleID) (Coldboot, bool) {
	for _, e := range t.entries {
		if e.TitleID == id {
			return e, true
		}
	}
	return Coldboot{}, false
}

// Entries returns a copy of the table.
func (t ColdbootTable) Entries() []Coldboot {
	out := make([]Coldboot, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t ColdbootTable) Len() int { return len(t.entries) }

// MenuFor returns the system menu entry of the same region as id.
func (t ColdbootTable) MenuFor(id TitleID) (Coldboot, bool) {
	for _, e := range t.entries {
		if e.Menu && e.TitleID.Region() == id.Region() {
			return e, true
		}
	}
	return Coldboot{}, false
}
