// Package digest is the single trust oracle for patched content: two byte
// sequences are the same known-good content iff their SHA-1 digests match.
package digest

import (
	"crypto/sha1" //nolint:gosec // baselines were recorded as SHA-1
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Size is the digest length in bytes (160 bits).
const Size = sha1.Size

// ErrInvalid indicates a hex string that is not a 40-digit digest.
var ErrInvalid = errors.New("digest: invalid hex digest")

// Digest is a SHA-1 digest.
type Digest [Size]byte

// Sum hashes b. Empty input yields the digest of the empty string.
func Sum(b []byte) Digest {
	return Digest(sha1.Sum(b)) //nolint:gosec
}

// String returns the digest as 40 upper-case hex digits, the form baselines are recorded in.
func (d Digest) String() string {
	return strings.ToUpper(hex.EncodeToString(d[:]))
}

// Parse decodes a 40-digit hex digest in either case.
func Parse(s string) (Digest, error) {
	var d Digest
	s = strings.TrimSpace(s)
	if len(s) != 2*Size {
		return d, fmt.Errorf("%q: %w", s, ErrInvalid)
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return d, fmt.Errorf("%q: %w", s, ErrInvalid)
	}
	return d, nil
}

// Matches reports whether d equals the recorded hex digest expected.
// Comparison is case-insensitive; an empty or malformed expected value never matches.
func Matches(d Digest, expected string) bool {
	want, err := Parse(expected)
	if err != nil {
		return false
	}
	return want == d
}

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
