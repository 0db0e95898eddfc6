package baseline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadTitleID indicates a title id string that is not up to 16 hex digits.
var ErrBadTitleID = errors.New("baseline: invalid title id")

// TitleID is a 64-bit console title identifier.
type TitleID uint64

// String formats the id as 16 upper-case hex digits, the form system.xml stores.
func (id TitleID) String() string {
	return fmt.Sprintf("%016X", uint64(id))
}

// High returns the upper 32 bits (the title type).
func (id TitleID) High() uint32 { return uint32(id >> 32) }

// Low returns the lower 32 bits.
func (id TitleID) Low() uint32 { return uint32(id) }

// Region identifies the console region a system title belongs to.
type Region string

// Regions encoded in bits 8-9 of system title ids.
const (
	RegionJPN Region = "JPN"
	RegionUSA Region = "USA"
	RegionEUR Region = "EUR"
)

// Region returns the region encoded in the id.
func (id TitleID) Region() Region {
	switch (id >> 8) & 0x3 {
	case 0:
		return RegionJPN
	case 1:
		return RegionUSA
	case 2:
		return RegionEUR
	default:
		return ""
	}
}

// ParseTitleID parses up to 16 hex digits, with or without a 0x prefix.
func ParseTitleID(s string) (TitleID, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" || len(s) > 16 {
		return 0, fmt.Errorf("%q: %w", s, ErrBadTitleID)
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrBadTitleID)
	}
	return TitleID(v), nil
}

// MarshalText implements encoding.TextMarshaler.
func (id TitleID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *TitleID) UnmarshalText(b []byte) error {
	v, err := ParseTitleID(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}
