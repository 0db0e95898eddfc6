// Package buf contains bounds-checked helpers for decoding big-endian
// on-disk structures.
package buf

import "encoding/binary"

// U16BE reads a big-endian uint16 from b. Returns 0 when b is too short.
func U16BE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// U24BE reads a big-endian 24-bit unsigned integer from b. Returns 0 when b is too short.
func U24BE(b []byte) uint32 {
	if len(b) < 3 {
		return 0
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// U32BE reads a big-endian uint32 from b. Returns 0 when b is too short.
func U32BE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// U64BE reads a big-endian uint64 from b. Returns 0 when b is too short.
func U64BE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// PutU16BE writes v big-endian at b[off:]. It reports false when the write
// would not fit.
func PutU16BE(b []byte, off int, v uint16) bool {
	dst, ok := Slice(b, off, 2)
	if !ok {
		return false
	}
	binary.BigEndian.PutUint16(dst, v)
	return true
}
