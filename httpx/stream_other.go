//go:build !unix

package httpx

import "os"

// fileMode cannot query descriptor flags on this platform; an *os.File is
// reported as read-write and the operating system rejects disallowed I/O.
func fileMode(f *os.File) string {
	return "r+b"
}
