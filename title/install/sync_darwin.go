//go:build darwin

package install

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncFile flushes file data to stable storage. With full set, F_FULLFSYNC
// also drains the drive's write cache.
func syncFile(f *os.File, full bool) error {
	if full {
		_, err := unix.FcntlInt(f.Fd(), unix.F_FULLFSYNC, 0)
		return err
	}
	return unix.Fsync(int(f.Fd()))
}
