package baseline

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrUnknownTitle indicates a title id with no baseline record.
	ErrUnknownTitle = errors.New("baseline: unknown title")
	// ErrAlreadyInstalled indicates MarkInstalled was called twice for one record.
	ErrAlreadyInstalled = errors.New("baseline: title already marked installed")
	// ErrDuplicate indicates two entries share a title id.
	ErrDuplicate = errors.New("baseline: duplicate title id")
)

// Record is the expected identity of one supported title variant.
type Record struct {
	TitleID   TitleID `json:"title_id"`
	Name      string  `json:"name"`
	Installed bool    `json:"installed"`
	Path      string  `json:"path,omitempty"`
	// FSTHash is the digest of code/title.fst after patching.
	FSTHash string `json:"fst_hash"`
	// COSHash is the digest of code/cos1.xml after patching. Empty or "0"
	// for variants without a COS baseline.
	COSHash string `json:"cos_hash,omitempty"`
	// RPXHash is the digest of the payload written to code/safe.rpx. Empty
	// or "0" accepts any payload; the write is then checked against the
	// payload's own digest.
	RPXHash string `json:"rpx_hash,omitempty"`
}

// HasCOS reports whether the variant carries a COS baseline.
func (r Record) HasCOS() bool { return recorded(r.COSHash) }

// HasRPX reports whether the variant pins the payload digest.
func (r Record) HasRPX() bool { return recorded(r.RPXHash) }

// PayloadHash returns RPXHash, or "" when no payload digest is pinned.
func (r Record) PayloadHash() string {
	if !r.HasRPX() {
		return ""
	}
	return r.RPXHash
}

func recorded(h string) bool {
	h = strings.TrimSpace(h)
	return h != "" && h != "0"
}

// Registry owns the baseline records. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	records []Record
	index   map[TitleID]int
}

// NewRegistry builds a registry from records, in order. Installed state in
// the input is ignored; every record starts as not installed.
func NewRegistry(records []Record) (*Registry, error) {
	r := &Registry{
		records: make([]Record, 0, len(records)),
		index:   make(map[TitleID]int, len(records)),
	}
	for _, rec := range records {
		if _, dup := r.index[rec.TitleID]; dup {
			return nil, fmt.Errorf("%s: %w", rec.TitleID, ErrDuplicate)
		}
		rec.Installed = false
		rec.Path = ""
		r.index[rec.TitleID] = len(r.records)
		r.records = append(r.records, rec)
	}
	return r, nil
}

// Records returns a copy of every record.
func (r *Registry) Records() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Lookup returns the record for id.
func (r *Registry) Lookup(id TitleID) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return Record{}, false
	}
	return r.records[i], true
}

// MarkInstalled records that id is present on the host at path. A record can
// only be marked once.
func (r *Registry) MarkInstalled(id TitleID, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownTitle)
	}
	if r.records[i].Installed {
		return fmt.Errorf("%s: %w", id, ErrAlreadyInstalled)
	}
	r.records[i].Installed = true
	r.records[i].Path = path
	return nil
}

// Installed returns the installed records, in table order.
func (r *Registry) Installed() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Record
	for _, rec := range r.records {
		if rec.Installed {
			out = append(out, rec)
		}
	}
	return out
}

// FirstInstalled returns the first installed record in table order.
func (r *Registry) FirstInstalled() (Record, bool) {
	installed := r.Installed()
	if len(installed) == 0 {
		return Record{}, false
	}
	return installed[0], true
}
