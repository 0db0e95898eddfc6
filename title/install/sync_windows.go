//go:build windows

package install

import (
	"os"

	"golang.org/x/sys/windows"
)

// syncFile flushes file data and metadata with FlushFileBuffers.
func syncFile(f *os.File, _ bool) error {
	return windows.FlushFileBuffers(windows.Handle(f.Fd()))
}
