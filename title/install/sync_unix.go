//go:build linux || freebsd

package install

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncFile flushes file data to stable storage. fdatasync is enough here;
// the rename that follows carries the metadata.
func syncFile(f *os.File, _ bool) error {
	return unix.Fdatasync(int(f.Fd()))
}
