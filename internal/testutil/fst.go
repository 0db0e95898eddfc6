package testutil

import (
	"encoding/binary"
)

// FSTSection describes one section for BuildFST.
type FSTSection struct {
	HashMode uint8
	OwnerID  uint64
}

// FSTNode describes one node for BuildFST. Name is appended to the string
// table; the root node should be first and a directory.
type FSTNode struct {
	Dir     bool
	Name    string
	Section uint16
	Size    uint32
}

// BuildFST assembles a well-formed big-endian FST. The root node's last-entry
// field is set to len(nodes).
func BuildFST(sections []FSTSection, nodes []FSTNode) []byte {
	out := make([]byte, 0x20)
	copy(out, "FST")
	binary.BigEndian.PutUint32(out[0x04:], 0x20)
	binary.BigEndian.PutUint32(out[0x08:], uint32(len(sections)))

	for i, s := range sections {
		e := make([]byte, 0x20)
		binary.BigEndian.PutUint32(e[0x00:], uint32(i)*0x10)
		binary.BigEndian.PutUint32(e[0x04:], 0x10)
		binary.BigEndian.PutUint64(e[0x08:], s.OwnerID)
		binary.BigEndian.PutUint32(e[0x10:], 0x400)
		e[0x14] = s.HashMode
		out = append(out, e...)
	}

	strtab := []byte{}
	for i, n := range nodes {
		e := make([]byte, 0x10)
		nameOff := uint32(len(strtab))
		strtab = append(append(strtab, n.Name...), 0)
		binary.BigEndian.PutUint32(e[0x00:], nameOff)
		if n.Dir {
			e[0x00] = 0x01
			if i == 0 {
				binary.BigEndian.PutUint32(e[0x08:], uint32(len(nodes)))
			}
		} else {
			binary.BigEndian.PutUint32(e[0x08:], n.Size)
		}
		binary.BigEndian.PutUint16(e[0x0E:], n.Section)
		out = append(out, e...)
	}
	return append(out, strtab...)
}

// NodeSections reads back every node's section affinity from a buffer built
// by BuildFST.
func NodeSections(fst []byte) []uint16 {
	sectionCount := int(binary.BigEndian.Uint32(fst[0x08:]))
	nodesOff := 0x20 + sectionCount*0x20
	count := int(binary.BigEndian.Uint32(fst[nodesOff+0x08:]))
	out := make([]uint16, count)
	for i := range out {
		out[i] = binary.BigEndian.Uint16(fst[nodesOff+i*0x10+0x0E:])
	}
	return out
}
