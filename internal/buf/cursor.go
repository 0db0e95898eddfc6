package buf

import "fmt"

// Cursor walks a byte slice with every read bounds-checked. A failed read
// leaves the position unchanged.
type Cursor struct {
	b   []byte
	off int
}

// NewCursor returns a cursor positioned at the start of b.
func NewCursor(b []byte) *Cursor {
	return &Cursor{b: b}
}

// Offset returns the current position.
func (c *Cursor) Offset() int { return c.off }

// Len returns the length of the underlying buffer.
func (c *Cursor) Len() int { return len(c.b) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.b) - c.off }

// Seek moves the cursor to an absolute offset. Seeking to len(b) is allowed.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.b) {
		return fmt.Errorf("seek %d (len %d): %w", off, len(c.b), ErrOutOfBounds)
	}
	c.off = off
	return nil
}

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int) error {
	end, ok := AddOverflowSafe(c.off, n)
	if !ok {
		return fmt.Errorf("skip %d at %d: %w", n, c.off, ErrOverflow)
	}
	return c.Seek(end)
}

// Bytes returns the next n bytes without copying.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	s, ok := Slice(c.b, c.off, n)
	if !ok {
		return nil, fmt.Errorf("read %d bytes at 0x%X (len %d): %w", n, c.off, len(c.b), ErrOutOfBounds)
	}
	c.off += n
	return s, nil
}

// U8 reads one byte.
func (c *Cursor) U8() (uint8, error) {
	s, err := c.Bytes(1)
	if err != nil {
		return 0, err
	}
	return s[0], nil
}

// U16 reads a big-endian uint16.
func (c *Cursor) U16() (uint16, error) {
	s, err := c.Bytes(2)
	if err != nil {
		return 0, err
	}
	return U16BE(s), nil
}

// U24 reads a big-endian 24-bit value.
func (c *Cursor) U24() (uint32, error) {
	s, err := c.Bytes(3)
	if err != nil {
		return 0, err
	}
	return U24BE(s), nil
}

// U32 reads a big-endian uint32.
func (c *Cursor) U32() (uint32, error) {
	s, err := c.Bytes(4)
	if err != nil {
		return 0, err
	}
	return U32BE(s), nil
}

// U64 reads a big-endian uint64.
func (c *Cursor) U64() (uint64, error) {
	s, err := c.Bytes(8)
	if err != nil {
		return 0, err
	}
	return U64BE(s), nil
}
