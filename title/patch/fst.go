package patch

import (
	"errors"
	"fmt"

	"github.com/joshuapare/titlepatch/internal/format"
)

// NodeChange records one node moved to the usable section.
type NodeChange struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	From  uint16 `json:"from"`
	To    uint16 `json:"to"`
}

// FSTReport summarizes a patched filesystem table.
type FSTReport struct {
	Sections      int          `json:"sections"`
	UsableSection int          `json:"usable_section"`
	NodeCount     int          `json:"node_count"`
	Updated       []NodeChange `json:"updated,omitempty"`
}

// UsableSection returns the index of the last section with hash mode 2, or -1.
// When several qualify the last one wins.
func UsableSection(sections []format.Section) int {
	usable := -1
	for i, s := range sections {
		if s.HashMode == format.UsableHashMode {
			usable = i
		}
	}
	return usable
}

// FST moves every node whose section is not hash mode 2 onto the usable
// section. data is modified in place. Nothing is written unless the header,
// the section array and every node's section index are valid.
//
// Errors wrap ErrHeaderMismatch, ErrTruncated, ErrNoUsableSection or
// ErrInvalidSection.
func FST(data []byte, opts ...Option) (FSTReport, error) {
	o := apply(opts)

	table, err := format.Parse(data)
	if err != nil {
		if errors.Is(err, format.ErrSignatureMismatch) {
			o.log.Debug("fst header mismatch", "size", len(data))
		} else {
			o.log.Debug("fst parse failed", "error", err)
		}
		return FSTReport{}, err
	}
	report := FSTReport{Sections: len(table.Sections)}

	usable := UsableSection(table.Sections)
	if usable < 0 {
		o.log.Debug("fst has no usable section", "sections", len(table.Sections))
		return report, fmt.Errorf("%d sections: %w", len(table.Sections), ErrNoUsableSection)
	}
	report.UsableSection = usable
	if usable > 0xFFFF {
		return report, fmt.Errorf("usable section %d: %w", usable, ErrInvalidSection)
	}
	o.log.Debug("fst sections",
		"count", len(table.Sections),
		"usable", usable,
		"offset_factor", table.Header.OffsetFactor,
		"nodes_offset", fmt.Sprintf("0x%X", table.NodesOffset()))

	nodes, err := table.Nodes()
	if err != nil {
		o.log.Debug("fst node table out of range", "error", err)
		return report, err
	}
	report.NodeCount = nodes.Len()

	decoded := make([]format.Node, nodes.Len())
	for i := range decoded {
		n, err := nodes.Node(i)
		if err != nil {
			return report, fmt.Errorf("%w: %w", ErrTruncated, err)
		}
		if int(n.Section) >= len(table.Sections) {
			o.log.Debug("fst node refers to missing section", "node", i, "section", n.Section)
			return report, fmt.Errorf("node %d section %d of %d: %w",
				i, n.Section, len(table.Sections), ErrInvalidSection)
		}
		decoded[i] = n
	}

	to := uint16(usable)
	for _, n := range decoded {
		if table.Sections[n.Section].HashMode == format.UsableHashMode {
			continue
		}
		if err := nodes.SetSection(n.Index, to); err != nil {
			return report, err
		}
		change := NodeChange{Index: n.Index, Name: nodes.Name(n), From: n.Section, To: to}
		report.Updated = append(report.Updated, change)
		o.log.Debug("fst node moved",
			"node", change.Index, "name", change.Name, "dir", n.IsDir(),
			"from", change.From, "to", change.To)
	}
	return report, nil
}
