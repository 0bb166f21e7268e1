package httpx

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"dqx0.com/go/httpmsg/httpx/internal/http1"
	"dqx0.com/go/httpmsg/internal/obs"
)

// WireTransport speaks HTTP/1.1 over a connection supplied by the caller.
// It never dials: Conn may be a net.Conn, a pipe or an in-memory buffer.
// Calls are serialized so that responses are read in request order.
type WireTransport struct {
	Conn io.ReadWriter
	// MaxHeaderBytes limits each response header line; 0 selects 8 KiB.
	MaxHeaderBytes int
	// DisableCompression stops the transport from asking for gzip. When
	// it does ask, a gzip response body is decoded transparently.
	DisableCompression bool

	Logger obs.Logger

	mu sync.Mutex
	br *bufio.Reader
}

type deadlineSetter interface {
	SetDeadline(t time.Time) error
}

func (t *WireTransport) RoundTrip(ctx context.Context, r Request) (*Response, error) {
	if t.Conn == nil {
		return nil, fmt.Errorf("%w: WireTransport has no connection", ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.br == nil {
		t.br = bufio.NewReader(t.Conn)
	}
	if ds, ok := t.Conn.(deadlineSetter); ok {
		if dl, ok := ctx.Deadline(); ok {
			_ = ds.SetDeadline(dl)
			defer ds.SetDeadline(time.Time{})
		}
	}

	requestedGzip := false
	if !t.DisableCompression && !r.HasHeader("Accept-Encoding") && r.Method() != MethodHead {
		var err error
		if r, err = r.WithHeader("Accept-Encoding", Single("gzip")); err != nil {
			return nil, err
		}
		requestedGzip = true
	}

	if _, err := r.WriteTo(t.Conn); err != nil {
		t.logf(obs.Warn, "write request failed: %v", err)
		return nil, err
	}

	maxLine := t.MaxHeaderBytes
	if maxLine <= 0 {
		maxLine = defaultMaxHeaderBytes
	}
	hr := &http1.Reader{BR: t.br, MaxHeaderBytes: maxLine, MaxTotalHeaderBytes: defaultMaxTotalHeaderBytes}
	method := r.Method()
	if method == "" {
		method = MethodGet
	}
	pr, err := hr.ReadResponse(method)
	if err != nil {
		t.logf(obs.Warn, "read response failed: %v", err)
		return nil, err
	}
	body, err := io.ReadAll(pr.Body)
	if err != nil {
		t.logf(obs.Warn, "read response body failed: %v", err)
		return nil, err
	}

	msg := Message{proto: pr.Proto}
	for _, f := range pr.Header {
		if msg, err = msg.WithAddedHeader(f.Name, Multiple(f.Values...)); err != nil {
			return nil, err
		}
	}
	if requestedGzip && strings.EqualFold(msg.Header("Content-Encoding"), "gzip") {
		if body, err = gunzip(body); err != nil {
			t.logf(obs.Warn, "decode gzip body failed: %v", err)
			return nil, err
		}
		msg = msg.WithoutHeader("Content-Encoding").WithoutHeader("Content-Length")
	}
	return &Response{
		Message:    msg.WithBody(NewMemoryStream(body)),
		StatusCode: pr.StatusCode,
		Reason:     pr.Reason,
	}, nil
}

func gunzip(b []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func (t *WireTransport) logf(level obs.Level, format string, args ...interface{}) {
	if t.Logger != nil {
		t.Logger.Logf(level, format, args...)
	}
}
