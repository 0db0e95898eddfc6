package baseline

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/titlepatch/internal/digest"
)

// ErrEmptyConfig indicates a baseline file with no titles.
var ErrEmptyConfig = errors.New("baseline: config holds no titles")

// File is the on-disk YAML form of both tables.
//
//	titles:
//	  - title_id: "000500101004E200"
//	    name: "Health and Safety Information [EUR]"
//	    fst_hash: "130A76F8B36B36D43B88BBC74393D9AFD9CFD2A4"
//	    cos_hash: "F6EBF7BC8AE3AF3BB8A42E0CF3FDA051278AEB03"
//	    rpx_hash: "..." # optional, pins the safe.rpx payload
//	coldboot:
//	  - title_id: "0005001010040200"
//	    name: "Wii U Menu [EUR]"
//	    hash: "F06041A4E5B3F899E748F1BAEB524DE058809F1D"
//	    menu: true
type File struct {
	Titles   []TitleEntry    `yaml:"titles"`
	Coldboot []ColdbootEntry `yaml:"coldboot"`
}

// TitleEntry is one baseline record in File.
type TitleEntry struct {
	TitleID string `yaml:"title_id"`
	Name    string `yaml:"name"`
	FSTHash string `yaml:"fst_hash"`
	COSHash string `yaml:"cos_hash,omitempty"`
	RPXHash string `yaml:"rpx_hash,omitempty"`
}

// ColdbootEntry is one coldboot mapping in File.
type ColdbootEntry struct {
	TitleID string `yaml:"title_id"`
	Name    string `yaml:"name"`
	Hash    string `yaml:"hash"`
	Menu    bool   `yaml:"menu,omitempty"`
}

// Load decodes and validates a baseline file. Unknown keys are rejected.
func Load(r io.Reader) (*Registry, ColdbootTable, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ColdbootTable{}, ErrEmptyConfig
		}
		return nil, ColdbootTable{}, fmt.Errorf("baseline: decode: %w", err)
	}
	return f.Build()
}

// LoadFile reads a baseline file from disk.
func LoadFile(path string) (*Registry, ColdbootTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ColdbootTable{}, err
	}
	defer f.Close()
	return Load(f)
}

// Build validates f and constructs the registry and coldboot table.
func (f File) Build() (*Registry, ColdbootTable, error) {
	if len(f.Titles) == 0 {
		return nil, ColdbootTable{}, ErrEmptyConfig
	}

	records := make([]Record, 0, len(f.Titles))
	for i, t := range f.Titles {
		id, err := ParseTitleID(t.TitleID)
		if err != nil {
			return nil, ColdbootTable{}, fmt.Errorf("titles[%d]: %w", i, err)
		}
		if _, err := digest.Parse(t.FSTHash); err != nil {
			return nil, ColdbootTable{}, fmt.Errorf("titles[%d] fst_hash: %w", i, err)
		}
		rec := Record{TitleID: id, Name: t.Name, FSTHash: t.FSTHash, COSHash: t.COSHash, RPXHash: t.RPXHash}
		if rec.HasCOS() {
			if _, err := digest.Parse(t.COSHash); err != nil {
				return nil, ColdbootTable{}, fmt.Errorf("titles[%d] cos_hash: %w", i, err)
			}
		}
		if rec.HasRPX() {
			if _, err := digest.Parse(t.RPXHash); err != nil {
				return nil, ColdbootTable{}, fmt.Errorf("titles[%d] rpx_hash: %w", i, err)
			}
		}
		records = append(records, rec)
	}
	reg, err := NewRegistry(records)
	if err != nil {
		return nil, ColdbootTable{}, err
	}

	entries := make([]Coldboot, 0, len(f.Coldboot))
	for i, c := range f.Coldboot {
		id, err := ParseTitleID(c.TitleID)
		if err != nil {
			return nil, ColdbootTable{}, fmt.Errorf("coldboot[%d]: %w", i, err)
		}
		if _, err := digest.Parse(c.Hash); err != nil {
			return nil, ColdbootTable{}, fmt.Errorf("coldboot[%d] hash: %w", i, err)
		}
		entries = append(entries, Coldboot{TitleID: id, Name: c.Name, Hash: c.Hash, Menu: c.Menu})
	}
	table, err := NewColdbootTable(entries)
	if err != nil {
		return nil, ColdbootTable{}, err
	}
	return reg, table, nil
}

// FileFrom converts tables back to File form.
func FileFrom(reg *Registry, table ColdbootTable) File {
	var f File
	for _, r := range reg.Records() {
		f.Titles = append(f.Titles, TitleEntry{
			TitleID: r.TitleID.String(), Name: r.Name,
			FSTHash: r.FSTHash, COSHash: r.COSHash, RPXHash: r.RPXHash,
		})
	}
	for _, c := range table.Entries() {
		f.Coldboot = append(f.Coldboot, ColdbootEntry{
			TitleID: c.TitleID.String(), Name: c.Name, Hash: c.Hash, Menu: c.Menu,
		})
	}
	return f
}

// DefaultFile returns the built-in tables in File form.
func DefaultFile() File {
	return FileFrom(Default(), DefaultColdbootTable())
}

// Marshal encodes f as YAML.
func (f File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}
