package patch

import (
	"errors"

	"github.com/joshuapare/titlepatch/internal/format"
	"github.com/joshuapare/titlepatch/internal/xmldoc"
)

var (
	// ErrHeaderMismatch indicates the FST does not start with "FST".
	ErrHeaderMismatch = format.ErrSignatureMismatch
	// ErrTruncated indicates an FST structure runs past the end of the buffer.
	ErrTruncated = format.ErrTruncated
	// ErrInvalidSection indicates a node refers to a section that does not exist.
	ErrInvalidSection = format.ErrInvalidSection
	// ErrNoUsableSection indicates no section has hash mode 2.
	ErrNoUsableSection = errors.New("patch: no usable fst section")

	// ErrMissingElement indicates a required XML element is absent.
	ErrMissingElement = xmldoc.ErrMissingElement
	// ErrNotLeaf indicates a value element unexpectedly holds child elements.
	ErrNotLeaf = xmldoc.ErrNotLeaf
	// ErrInformationNotFound indicates the title has no coldboot mapping.
	ErrInformationNotFound = errors.New("patch: no coldboot mapping for title")
	// ErrBadTitleID indicates default_title_id does not hold a title id.
	ErrBadTitleID = errors.New("patch: invalid default_title_id")
)
