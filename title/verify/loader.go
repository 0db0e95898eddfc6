package verify

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joshuapare/titlepatch/title/patch"
)

var (
	// ErrEmptyFile indicates a zero-length file.
	ErrEmptyFile = errors.New("verify: file is empty")
	// ErrTooLarge indicates a file above the loader's size ceiling.
	ErrTooLarge = errors.New("verify: file exceeds size limit")
)

// DefaultMaxSize bounds how much FileLoader reads. Title metadata files are
// a few kilobytes; anything near this size is not one.
const DefaultMaxSize = 16 << 20

// Loader reads a whole file.
type Loader interface {
	Load(path string) ([]byte, error)
}

// FileLoader reads files from the local filesystem.
type FileLoader struct {
	// MaxSize is the largest accepted file. Zero means DefaultMaxSize.
	MaxSize int64
}

// Load reads path. Missing files wrap fs.ErrNotExist.
func (l FileLoader) Load(path string) ([]byte, error) {
	limit := l.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s: is a directory", path)
	}
	if st.Size() > limit {
		return nil, fmt.Errorf("%s (%d bytes): %w", path, st.Size(), ErrTooLarge)
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: %w", path, ErrTooLarge)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}
	return data, nil
}

// FSTPath returns the filesystem table of the title installed at titleRoot.
func FSTPath(titleRoot string) string {
	return filepath.Join(titleRoot, "code", "title.fst")
}

// COSPath returns the app descriptor of the title installed at titleRoot.
func COSPath(titleRoot string) string {
	return filepath.Join(titleRoot, "code", "cos1.xml")
}

// SystemXMLPath returns the boot configuration inside configRoot.
func SystemXMLPath(configRoot string) string {
	return filepath.Join(configRoot, "system.xml")
}

// RPXPath returns where the chain-loaded payload of the title at titleRoot
// goes. The patched app descriptor names it as the entry point.
func RPXPath(titleRoot string) string {
	return filepath.Join(titleRoot, "code", patch.SafeEntryPoint)
}
