//go:build windows
// +build windows

package dbffile

import (
	"os"

	"golang.org/x/sys/windows"
)

// lockFile takes an exclusive lock on the open file. The lock is released
// when the file is closed.
func lockFile(handle *os.File) error {
	overlapped := &windows.Overlapped{}
	return windows.LockFileEx(windows.Handle(handle.Fd()), windows.LOCKFILE_EXCLUSIVE_LOCK, 0, ^uint32(0), ^uint32(0), overlapped)
}
