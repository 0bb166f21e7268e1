package httpx

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dqx0.com/go/httpmsg/httpx/internal/http1"
)

const (
	defaultMaxHeaderBytes      = 8 << 10
	defaultMaxTotalHeaderBytes = 64 << 10
)

// WriteTo writes r in HTTP/1.1 wire form. The body is read from its
// current position; when its remaining length is unknown it is sent
// chunked. A request without a method is written as GET.
func (r Request) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	method := r.method
	if method == "" {
		method = MethodGet
	}
	head := http1.RequestHead{
		Method: method,
		Target: r.RequestTarget(),
		Proto:  r.ProtocolVersion(),
		Header: toFields(r.header.fields),
	}
	if u, ok := r.URI(); ok {
		head.Host = hostHeader(u)
	}
	body, n := r.wireBody()
	err := http1.WriteRequest(bufio.NewWriter(cw), head, body, n)
	return cw.n, err
}

// wireBody returns the body reader and its remaining length, -1 when
// unknown. It returns nil when there is nothing to send.
func (r Request) wireBody() (io.Reader, int64) {
	b := r.Body()
	if !b.IsReadable() {
		return nil, 0
	}
	size, ok := b.Size()
	if !ok {
		return b, -1
	}
	pos, err := b.Tell()
	if err != nil {
		return b, -1
	}
	if size-pos <= 0 {
		return nil, 0
	}
	return b, size - pos
}

// hostHeader renders host[:port], leaving out the scheme's standard port.
func hostHeader(u URI) string {
	if u.host == "" {
		return ""
	}
	if std, ok := StandardPort(u.scheme); u.port == 0 || (ok && std == u.port) {
		return u.host
	}
	return u.host + ":" + strconv.Itoa(u.port)
}

func toFields(fields []HeaderField) []http1.Field {
	out := make([]http1.Field, len(fields))
	for i, f := range fields {
		out[i] = http1.Field{Name: f.Name, Values: f.Values}
	}
	return out
}

// ReadRequest parses one HTTP/1.1 request from rd. The body is read fully
// into a memory stream. Origin-form targets are combined with the Host
// header into the request URI; other target forms are also kept as an
// explicit request target.
func ReadRequest(rd io.Reader) (Request, error) {
	br, ok := rd.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(rd)
	}
	hr := &http1.Reader{BR: br, MaxHeaderBytes: defaultMaxHeaderBytes, MaxTotalHeaderBytes: defaultMaxTotalHeaderBytes}
	pr, err := hr.ReadRequest()
	if err != nil {
		return Request{}, err
	}
	body, err := io.ReadAll(pr.Body)
	if err != nil {
		return Request{}, fmt.Errorf("httpx: read request body: %w", err)
	}
	r, err := NewRequestURI(pr.Method, nil, NewMemoryStream(body), nil)
	if err != nil {
		return Request{}, err
	}
	for _, f := range pr.Header {
		if r, err = r.WithAddedHeader(f.Name, Multiple(f.Values...)); err != nil {
			return Request{}, err
		}
	}
	r = r.WithProtocolVersion(pr.Proto)

	target := pr.RequestURI
	switch {
	case strings.HasPrefix(target, "/"):
		u, err := ParseURI(target)
		if err != nil {
			return Request{}, invalidArgf("request target: %w", err)
		}
		if host := r.Header("Host"); host != "" {
			hu, err := ParseURI("//" + host)
			if err != nil {
				return Request{}, invalidArgf("host header: %w", err)
			}
			u.host, u.port = hu.host, hu.port
		}
		r = r.WithURI(u)
	case strings.Contains(target, "://"):
		u, err := ParseURI(target)
		if err != nil {
			return Request{}, invalidArgf("request target: %w", err)
		}
		r = r.WithURI(u)
	}
	if !strings.HasPrefix(target, "/") {
		if r, err = r.WithRequestTarget(target); err != nil {
			return Request{}, err
		}
	}
	return r, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
