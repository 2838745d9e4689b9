//go:build !windows
// +build !windows

package dbffile

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an advisory exclusive lock on the open file. The lock is
// released when the file is closed.
func lockFile(handle *os.File) error {
	return unix.Flock(int(handle.Fd()), unix.LOCK_EX)
}
