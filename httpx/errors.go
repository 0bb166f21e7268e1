package httpx

import (
	"errors"
	"fmt"

	"dqx0.com/go/httpmsg/httpx/internal/http1"
)

var (
	// ErrInvalidArgument is returned by constructors and With* methods
	// when an input violates a documented constraint. The receiver of a
	// failed With* call is never modified.
	ErrInvalidArgument = errors.New("httpx: invalid argument")
	// ErrParse is returned when a URI string cannot be decomposed.
	ErrParse = errors.New("httpx: malformed uri")
	// ErrUnavailable is the soft-fail outcome of Stream I/O: the stream is
	// detached, or not readable, writable or seekable.
	ErrUnavailable = errors.New("httpx: stream operation not available")
	// ErrNoTransport is returned by Client.Do when no Transport is set.
	ErrNoTransport = errors.New("httpx: no transport")

	ErrBadMessage     = http1.ErrBadMessage
	ErrHeaderTooLarge = http1.ErrHeaderTooLarge
)

func invalidArgf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidArgument}, args...)...)
}
