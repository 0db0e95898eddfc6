package buf

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrOutOfBounds indicates a read or write would leave the buffer.
	ErrOutOfBounds = errors.New("buf: out of bounds")
	// ErrOverflow indicates an offset or size computation overflowed int.
	ErrOverflow = errors.New("buf: integer overflow")
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two non-negative ints, returning ok = false on
// overflow or when either operand is negative.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// CheckListBounds validates that count elements of elementSize bytes fit in a
// buffer of bufLen bytes starting at offset. It returns the end offset.
//
//	end, err := buf.CheckListBounds(len(data), off, int(count), entrySize)
//	if err != nil {
//	    return fmt.Errorf("sections: %w", err)
//	}
func CheckListBounds(bufLen, offset, count, elementSize int) (int, error) {
	if offset < 0 || count < 0 || elementSize < 0 {
		return 0, fmt.Errorf("offset=%d count=%d size=%d: %w", offset, count, elementSize, ErrOutOfBounds)
	}
	total, ok := MulOverflowSafe(count, elementSize)
	if !ok {
		return 0, fmt.Errorf("count=%d * size=%d: %w", count, elementSize, ErrOverflow)
	}
	end, ok := AddOverflowSafe(offset, total)
	if !ok {
		return 0, fmt.Errorf("offset=%d + size=%d: %w", offset, total, ErrOverflow)
	}
	if end > bufLen {
		return 0, fmt.Errorf("end=%d > len=%d: %w", end, bufLen, ErrOutOfBounds)
	}
	return end, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}
