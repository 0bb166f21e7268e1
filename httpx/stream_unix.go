//go:build unix

package httpx

import (
	"os"

	"golang.org/x/sys/unix"
)

// fileMode derives an fopen-style mode from the status flags of the open
// file descriptor, so a file opened read-only never reports writable.
func fileMode(f *os.File) string {
	flags, err := unix.FcntlInt(f.Fd(), unix.F_GETFL, 0)
	if err != nil {
		return ""
	}
	appending := flags&unix.O_APPEND != 0
	switch flags & (unix.O_RDONLY | unix.O_WRONLY | unix.O_RDWR) {
	case unix.O_RDONLY:
		return "rb"
	case unix.O_WRONLY:
		if appending {
			return "ab"
		}
		return "wb"
	case unix.O_RDWR:
		if appending {
			return "a+b"
		}
		return "r+b"
	}
	return ""
}
