package verify

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/titlepatch/pkg/types"
	"github.com/joshuapare/titlepatch/title/patch"
)

func TestResultClassification(t *testing.T) {
	wrap := func(err error) error { return fmt.Errorf("ctx: %w", err) }

	tests := []struct {
		name string
		got  types.Result
		want types.Result
	}{
		{"fst ok", FSTResult(nil), types.Success},
		{"fst magic", FSTResult(wrap(patch.ErrHeaderMismatch)), types.FSTHeaderMismatch},
		{"fst no usable", FSTResult(wrap(patch.ErrNoUsableSection)), types.FSTNoUsableSectionFound},
		{"fst truncated", FSTResult(wrap(patch.ErrTruncated)), types.FSTParsingFailed},
		{"fst section", FSTResult(wrap(patch.ErrInvalidSection)), types.FSTParsingFailed},
		{"cos", COSResult(wrap(patch.ErrMissingElement)), types.COSXMLParsingFailed},
		{"system no mapping", SystemXMLResult(wrap(patch.ErrInformationNotFound)), types.SystemXMLInformationNotFound},
		{"system missing", SystemXMLResult(wrap(patch.ErrMissingElement)), types.SystemXMLParsingFailed},
		{"load missing", LoadResult(wrap(fs.ErrNotExist)), types.FailedToLoadFile},
		{"load empty", LoadResult(wrap(ErrEmptyFile)), types.FailedToLoadFile},
		{"load too large", LoadResult(wrap(ErrTooLarge)), types.MallocFailed},
		{"load other", LoadResult(errors.New("boom")), types.FailedToLoadFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.got)
		})
	}
}
