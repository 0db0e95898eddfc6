// Package locate finds baseline titles on a mounted or dumped MLC volume.
package locate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshuapare/titlepatch/title/baseline"
)

// ErrNoTitle indicates none of the baseline titles is installed.
var ErrNoTitle = errors.New("locate: no compatible title installed")

// Locator resolves title and config directories under an MLC root.
type Locator struct {
	root string
}

// New returns a locator for the MLC volume at root.
func New(root string) *Locator {
	return &Locator{root: root}
}

// Root returns the MLC root.
func (l *Locator) Root() string { return l.root }

// ConfigDir returns the directory holding system.xml.
func (l *Locator) ConfigDir() string {
	return filepath.Join(l.root, "sys", "config")
}

// TitleDir returns the directory a title is installed to, if it exists.
// Directory names are lower-case hex on the console; upper-case is accepted
// for dumps made on case-preserving hosts.
func (l *Locator) TitleDir(id baseline.TitleID) (string, bool) {
	hi := fmt.Sprintf("%08x", id.High())
	lo := fmt.Sprintf("%08x", id.Low())
	for _, c := range [][2]string{
		{hi, lo},
		{strings.ToUpper(hi), strings.ToUpper(lo)},
	} {
		dir := filepath.Join(l.root, "sys", "title", c[0], c[1])
		if isDir(dir) {
			return dir, true
		}
	}
	return "", false
}

// Locate marks every installed record in reg and returns the first one in
// table order. Records already marked are left alone.
func (l *Locator) Locate(reg *baseline.Registry) (baseline.Record, error) {
	for _, rec := range reg.Records() {
		if rec.Installed {
			continue
		}
		dir, ok := l.TitleDir(rec.TitleID)
		if !ok {
			continue
		}
		if err := reg.MarkInstalled(rec.TitleID, dir); err != nil && !errors.Is(err, baseline.ErrAlreadyInstalled) {
			return baseline.Record{}, err
		}
	}
	first, ok := reg.FirstInstalled()
	if !ok {
		return baseline.Record{}, fmt.Errorf("%s: %w", l.root, ErrNoTitle)
	}
	return first, nil
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
