package httpx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Handle is an open I/O resource that a Stream can own. What a Stream can
// do with it is discovered from the interfaces it implements: io.Reader,
// io.Writer and io.Seeker.
type Handle interface {
	io.Closer
}

// ModeHandle is implemented by handles that know their fopen-style access
// mode ("r", "w+b", ...). Files opened by the operating system do not need
// it; their mode is read from the file descriptor.
type ModeHandle interface {
	Mode() string
}

// StreamMetadata describes the handle owned by a Stream.
type StreamMetadata struct {
	Mode       string
	URI        string
	Seekable   bool
	StreamType string
}

// Stream owns exactly one Handle until it is detached or closed. After
// that the Stream stays empty: reads, writes and seeks return
// ErrUnavailable, EOF reports true and Close is a no-op.
//
// A Stream is not safe for concurrent use.
type Stream struct {
	h   Handle
	eof bool
}

// NewStream adopts h. The caller must not use h directly afterwards.
func NewStream(h Handle) (*Stream, error) {
	if h == nil {
		return nil, invalidArgf("nil stream handle")
	}
	return &Stream{h: h}, nil
}

// OpenStream opens path with an fopen-style mode: one of r, w, a, x or c,
// optionally followed by "+" and by "b" or "t" which are ignored.
func OpenStream(path, mode string) (*Stream, error) {
	flag, err := openFlags(mode)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, flag, 0o666)
	if err != nil {
		return nil, fmt.Errorf("httpx: open stream: %w", err)
	}
	return &Stream{h: f}, nil
}

func openFlags(mode string) (int, error) {
	m := strings.NewReplacer("b", "", "t", "").Replace(mode)
	plus := strings.HasSuffix(m, "+")
	m = strings.TrimSuffix(m, "+")
	var flag int
	switch m {
	case "r":
		flag = 0
	case "w":
		flag = os.O_CREATE | os.O_TRUNC
	case "a":
		flag = os.O_CREATE | os.O_APPEND
	case "x":
		flag = os.O_CREATE | os.O_EXCL
	case "c":
		flag = os.O_CREATE
	default:
		return 0, invalidArgf("stream mode %q", mode)
	}
	switch {
	case plus:
		flag |= os.O_RDWR
	case m == "r":
		flag |= os.O_RDONLY
	default:
		flag |= os.O_WRONLY
	}
	return flag, nil
}

func (s *Stream) mode() string {
	if s == nil || s.h == nil {
		return ""
	}
	if mh, ok := s.h.(ModeHandle); ok {
		return mh.Mode()
	}
	if f, ok := s.h.(*os.File); ok {
		return fileMode(f)
	}
	_, r := s.h.(io.Reader)
	_, w := s.h.(io.Writer)
	switch {
	case r && w:
		return "r+"
	case r:
		return "r"
	case w:
		return "w"
	}
	return ""
}

// IsReadable reports whether the handle's mode allows reading.
func (s *Stream) IsReadable() bool {
	if _, ok := s.reader(); !ok {
		return false
	}
	mode := s.mode()
	return strings.ContainsAny(mode, "r+")
}

// IsWritable reports whether the handle's mode allows writing.
func (s *Stream) IsWritable() bool {
	if s == nil || s.h == nil {
		return false
	}
	if _, ok := s.h.(io.Writer); !ok {
		return false
	}
	return strings.ContainsAny(s.mode(), "waxc+")
}

// IsSeekable reports whether the handle supports seeking.
func (s *Stream) IsSeekable() bool {
	if s == nil || s.h == nil {
		return false
	}
	sk, ok := s.h.(io.Seeker)
	if !ok {
		return false
	}
	_, err := sk.Seek(0, io.SeekCurrent)
	return err == nil
}

func (s *Stream) reader() (io.Reader, bool) {
	if s == nil || s.h == nil {
		return nil, false
	}
	r, ok := s.h.(io.Reader)
	return r, ok
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	if !s.IsReadable() {
		return 0, ErrUnavailable
	}
	r, _ := s.reader()
	n, err := r.Read(p)
	if errors.Is(err, io.EOF) {
		s.eof = true
	}
	return n, err
}

// ReadN reads up to n bytes. It returns an empty slice and no error once
// the end of the stream has been reached.
func (s *Stream) ReadN(n int) ([]byte, error) {
	if !s.IsReadable() {
		return nil, ErrUnavailable
	}
	if s.eof || n <= 0 {
		return []byte{}, nil
	}
	r, _ := s.reader()
	buf := make([]byte, n)
	k, err := r.Read(buf)
	if errors.Is(err, io.EOF) {
		s.eof = true
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return buf[:k], nil
}

// Write implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	if !s.IsWritable() {
		return 0, ErrUnavailable
	}
	n, err := s.h.(io.Writer).Write(p)
	if n > 0 {
		s.eof = false
	}
	return n, err
}

func (s *Stream) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Seek implements io.Seeker.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if !s.IsSeekable() {
		return 0, ErrUnavailable
	}
	pos, err := s.h.(io.Seeker).Seek(offset, whence)
	if err == nil {
		s.eof = false
	}
	return pos, err
}

func (s *Stream) Rewind() error {
	_, err := s.Seek(0, io.SeekStart)
	return err
}

// Tell returns the current position.
func (s *Stream) Tell() (int64, error) {
	if s == nil || s.h == nil {
		return 0, ErrUnavailable
	}
	sk, ok := s.h.(io.Seeker)
	if !ok {
		return 0, ErrUnavailable
	}
	return sk.Seek(0, io.SeekCurrent)
}

// EOF reports whether a read has hit the end of the stream. It is true for
// a detached stream.
func (s *Stream) EOF() bool {
	if s == nil || s.h == nil {
		return true
	}
	return s.eof
}

// Size returns the total size in bytes when it is known.
func (s *Stream) Size() (int64, bool) {
	if s == nil || s.h == nil {
		return 0, false
	}
	switch h := s.h.(type) {
	case interface{ Stat() (os.FileInfo, error) }:
		fi, err := h.Stat()
		if err != nil || !fi.Mode().IsRegular() {
			return 0, false
		}
		return fi.Size(), true
	case interface{ Size() int64 }:
		return h.Size(), true
	}
	return 0, false
}

// Detach hands the underlying handle to the caller and leaves the Stream
// empty. It returns nil if there was no handle.
func (s *Stream) Detach() Handle {
	if s == nil {
		return nil
	}
	h := s.h
	s.h = nil
	s.eof = false
	return h
}

// Close detaches and closes the handle. Closing an empty Stream is a no-op.
func (s *Stream) Close() error {
	h := s.Detach()
	if h == nil {
		return nil
	}
	return h.Close()
}

// Metadata describes the owned handle. It returns false once detached.
func (s *Stream) Metadata() (StreamMetadata, bool) {
	if s == nil || s.h == nil {
		return StreamMetadata{}, false
	}
	md := StreamMetadata{
		Mode:       s.mode(),
		Seekable:   s.IsSeekable(),
		StreamType: "handle",
	}
	switch h := s.h.(type) {
	case *memoryHandle:
		md.URI, md.StreamType = memoryURI, "memory"
	case *os.File:
		md.URI, md.StreamType = h.Name(), "file"
	case interface{ Name() string }:
		md.URI = h.Name()
	}
	return md, true
}

// MetadataValue returns a single metadata entry by key: "mode", "uri",
// "seekable" or "stream_type". It returns false for unknown keys and once
// the stream is detached.
func (s *Stream) MetadataValue(key string) (interface{}, bool) {
	md, ok := s.Metadata()
	if !ok {
		return nil, false
	}
	switch key {
	case "mode":
		return md.Mode, true
	case "uri":
		return md.URI, true
	case "seekable":
		return md.Seekable, true
	case "stream_type":
		return md.StreamType, true
	}
	return nil, false
}

// Contents reads from the current position to the end of the stream. It
// does not rewind first.
func (s *Stream) Contents() (string, error) {
	if !s.IsReadable() {
		return "", ErrUnavailable
	}
	r, _ := s.reader()
	b, err := io.ReadAll(r)
	s.eof = true
	return string(b), err
}
