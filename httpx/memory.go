package httpx

import (
	"errors"
	"io"
	"os"
)

const memoryURI = "memory"

// memoryHandle is a growable in-memory file: reads and writes share one
// offset, and writes past the end extend the buffer.
type memoryHandle struct {
	buf    []byte
	off    int64
	closed bool
}

// NewMemoryStream returns a readable, writable and seekable Stream backed
// by a copy of data, positioned at the start.
func NewMemoryStream(data []byte) *Stream {
	return &Stream{h: &memoryHandle{buf: append([]byte(nil), data...)}}
}

func (m *memoryHandle) Mode() string { return "w+b" }

func (m *memoryHandle) Size() int64 { return int64(len(m.buf)) }

func (m *memoryHandle) Read(p []byte) (int, error) {
	if m.closed {
		return 0, os.ErrClosed
	}
	if m.off >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.off:])
	m.off += int64(n)
	return n, nil
}

func (m *memoryHandle) Write(p []byte) (int, error) {
	if m.closed {
		return 0, os.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	end := m.off + int64(len(p))
	if end > int64(len(m.buf)) {
		if end > int64(cap(m.buf)) {
			grown := make([]byte, end, 2*end)
			copy(grown, m.buf)
			m.buf = grown
		} else {
			n := len(m.buf)
			m.buf = m.buf[:end]
			clear(m.buf[n:])
		}
	}
	copy(m.buf[m.off:], p)
	m.off = end
	return len(p), nil
}

func (m *memoryHandle) Seek(offset int64, whence int) (int64, error) {
	if m.closed {
		return 0, os.ErrClosed
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.off + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("httpx: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("httpx: negative position")
	}
	m.off = abs
	return abs, nil
}

func (m *memoryHandle) Close() error {
	if m.closed {
		return os.ErrClosed
	}
	m.closed = true
	m.buf = nil
	return nil
}
