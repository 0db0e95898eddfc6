package format

import "errors"

var (
	// ErrSignatureMismatch indicates the buffer does not start with FSTMagic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrInvalidSection indicates a node refers to a section index that does not exist.
	ErrInvalidSection = errors.New("format: invalid section index")
)
