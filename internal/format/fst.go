package format

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/charmap"

	"github.com/joshuapare/titlepatch/internal/buf"
)

// Header captures the FST header fields.
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------
//	 0x00    3    'F' 'S' 'T'
//	 0x03    1    Header type
//	 0x04    4    Offset factor
//	 0x08    4    Number of section entries
//	 0x0C    1    Hash disabled flag
//	 0x0D   19    Padding
type Header struct {
	Type         uint8
	OffsetFactor uint32
	SectionCount uint32
	HashDisabled uint8
}

// HasMagic reports whether b starts with FSTMagic.
func HasMagic(b []byte) bool {
	m, ok := buf.Slice(b, HeaderMagicOffset, HeaderMagicLen)
	return ok && bytes.Equal(m, FSTMagic)
}

// ParseHeader validates the magic and decodes the header.
func ParseHeader(b []byte) (Header, error) {
	if !HasMagic(b) {
		return Header{}, fmt.Errorf("fst header: %w", ErrSignatureMismatch)
	}
	c := buf.NewCursor(b)
	if err := c.Seek(HeaderTypeOffset); err != nil {
		return Header{}, fmt.Errorf("fst header: %w", ErrTruncated)
	}
	var h Header
	var err error
	if h.Type, err = c.U8(); err != nil {
		return Header{}, fmt.Errorf("fst header: %w", ErrTruncated)
	}
	if h.OffsetFactor, err = c.U32(); err != nil {
		return Header{}, fmt.Errorf("fst header: %w", ErrTruncated)
	}
	if h.SectionCount, err = c.U32(); err != nil {
		return Header{}, fmt.Errorf("fst header: %w", ErrTruncated)
	}
	if h.HashDisabled, err = c.U8(); err != nil {
		return Header{}, fmt.Errorf("fst header: %w", ErrTruncated)
	}
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("fst header: %d bytes: %w", len(b), ErrTruncated)
	}
	return h, nil
}

// Section is one entry of the section array.
type Section struct {
	Address  uint32
	Size     uint32
	OwnerID  uint64
	GroupID  uint32
	HashMode uint8
}

// ParseSection decodes a section entry from b, which must hold at least SectionEntrySize bytes.
func ParseSection(b []byte) (Section, error) {
	if len(b) < SectionEntrySize {
		return Section{}, fmt.Errorf("fst section: %w", ErrTruncated)
	}
	return Section{
		Address:  buf.U32BE(b[SectionAddressOffset:]),
		Size:     buf.U32BE(b[SectionSizeOffset:]),
		OwnerID:  buf.U64BE(b[SectionOwnerIDOffset:]),
		GroupID:  buf.U32BE(b[SectionGroupIDOffset:]),
		HashMode: b[SectionHashModeOffset],
	}, nil
}

// Table is a parsed view over an FST buffer. It does not copy the buffer;
// node writes go straight into it.
type Table struct {
	Header   Header
	Sections []Section

	data     []byte
	nodesOff int
}

// Parse decodes the header and the section array. The node table is only
// located by Nodes so callers can reject a table on its sections first.
func Parse(b []byte) (*Table, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return nil, err
	}
	end, err := buf.CheckListBounds(len(b), HeaderSize, int(h.SectionCount), SectionEntrySize)
	if err != nil {
		return nil, fmt.Errorf("fst sections (%d): %w: %w", h.SectionCount, ErrTruncated, err)
	}
	sections := make([]Section, 0, h.SectionCount)
	for off := HeaderSize; off < end; off += SectionEntrySize {
		s, err := ParseSection(b[off : off+SectionEntrySize])
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return &Table{Header: h, Sections: sections, data: b, nodesOff: end}, nil
}

// NodesOffset returns the byte offset of the root node.
func (t *Table) NodesOffset() int { return t.nodesOff }

// Node is one decoded node entry.
type Node struct {
	Index      int
	Type       uint8
	NameOffset uint32
	Word1      uint32
	Word2      uint32
	Flags      uint16
	Section    uint16
}

// IsDir reports whether the node is a directory.
func (n Node) IsDir() bool { return n.Type&NodeTypeDirectory != 0 }

// NodeTable is the node array plus the string table that follows it.
type NodeTable struct {
	data       []byte
	off        int
	count      int
	stringsOff int
}

// Nodes locates the node table. The root node's last-entry field gives the
// node count, and the whole array must fit in the buffer.
func (t *Table) Nodes() (*NodeTable, error) {
	root, ok := buf.Slice(t.data, t.nodesOff, NodeEntrySize)
	if !ok {
		return nil, fmt.Errorf("fst root node at 0x%X: %w", t.nodesOff, ErrTruncated)
	}
	count := buf.U32BE(root[NodeWord2Offset:])
	end, err := buf.CheckListBounds(len(t.data), t.nodesOff, int(count), NodeEntrySize)
	if err != nil {
		return nil, fmt.Errorf("fst nodes (%d): %w: %w", count, ErrTruncated, err)
	}
	return &NodeTable{data: t.data, off: t.nodesOff, count: int(count), stringsOff: end}, nil
}

// Len returns the node count.
func (nt *NodeTable) Len() int { return nt.count }

// StringsOffset returns the byte offset of the string table.
func (nt *NodeTable) StringsOffset() int { return nt.stringsOff }

func (nt *NodeTable) entryOffset(i int) (int, error) {
	if i < 0 || i >= nt.count {
		return 0, fmt.Errorf("fst node %d of %d: %w", i, nt.count, buf.ErrOutOfBounds)
	}
	return nt.off + i*NodeEntrySize, nil
}

// Node decodes node i.
func (nt *NodeTable) Node(i int) (Node, error) {
	off, err := nt.entryOffset(i)
	if err != nil {
		return Node{}, err
	}
	c := buf.NewCursor(nt.data)
	if err := c.Seek(off); err != nil {
		return Node{}, err
	}
	n := Node{Index: i}
	if n.Type, err = c.U8(); err != nil {
		return Node{}, err
	}
	if n.NameOffset, err = c.U24(); err != nil {
		return Node{}, err
	}
	if n.Word1, err = c.U32(); err != nil {
		return Node{}, err
	}
	if n.Word2, err = c.U32(); err != nil {
		return Node{}, err
	}
	if n.Flags, err = c.U16(); err != nil {
		return Node{}, err
	}
	if n.Section, err = c.U16(); err != nil {
		return Node{}, err
	}
	return n, nil
}

// SetSection rewrites the section affinity of node i in place.
func (nt *NodeTable) SetSection(i int, section uint16) error {
	off, err := nt.entryOffset(i)
	if err != nil {
		return err
	}
	if !buf.PutU16BE(nt.data, off+NodeSectionOffset, section) {
		return fmt.Errorf("fst node %d section: %w", i, buf.ErrOutOfBounds)
	}
	return nil
}

// Name returns the node's name from the string table, or "<invalid>" when
// the offset points outside the buffer. Only used for diagnostics.
func (nt *NodeTable) Name(n Node) string {
	start, ok := buf.AddOverflowSafe(nt.stringsOff, int(n.NameOffset))
	if !ok || start >= len(nt.data) {
		return "<invalid>"
	}
	raw := nt.data[start:]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "<invalid>"
	}
	return string(decoded)
}
