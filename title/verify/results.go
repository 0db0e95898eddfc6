package verify

import (
	"errors"

	"github.com/joshuapare/titlepatch/pkg/types"
	"github.com/joshuapare/titlepatch/title/patch"
)

// FSTResult classifies an error returned by patch.FST.
func FSTResult(err error) types.Result {
	switch {
	case err == nil:
		return types.Success
	case errors.Is(err, patch.ErrHeaderMismatch):
		return types.FSTHeaderMismatch
	case errors.Is(err, patch.ErrNoUsableSection):
		return types.FSTNoUsableSectionFound
	default:
		return types.FSTParsingFailed
	}
}

// COSResult classifies an error from parsing or patching cos1.xml.
func COSResult(err error) types.Result {
	if err == nil {
		return types.Success
	}
	return types.COSXMLParsingFailed
}

// SystemXMLResult classifies an error from parsing or patching system.xml.
func SystemXMLResult(err error) types.Result {
	switch {
	case err == nil:
		return types.Success
	case errors.Is(err, patch.ErrInformationNotFound):
		return types.SystemXMLInformationNotFound
	default:
		return types.SystemXMLParsingFailed
	}
}

// LoadResult classifies a Loader error.
func LoadResult(err error) types.Result {
	switch {
	case err == nil:
		return types.Success
	case errors.Is(err, ErrTooLarge):
		return types.MallocFailed
	default:
		return types.FailedToLoadFile
	}
}
