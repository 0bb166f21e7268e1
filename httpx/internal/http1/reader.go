package http1

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"
)

var (
	ErrBadMessage     = errors.New("httpx: malformed message")
	ErrHeaderTooLarge = errors.New("httpx: header too large")
)

// Field is one header with all of its values, in wire order.
type Field struct {
	Name   string
	Values []string
}

// ParsedRequest is a minimal representation parsed from the wire.
type ParsedRequest struct {
	Method        string
	RequestURI    string
	Proto         string // "1.1", without the "HTTP/" prefix
	Header        []Field
	ContentLength int64 // -1 when chunked
	Body          io.Reader
}

// ParsedResponse is the status line, headers and framed body of a response.
type ParsedResponse struct {
	Proto         string
	StatusCode    int
	Reason        string
	Header        []Field
	ContentLength int64 // -1 when chunked or close-delimited
	Body          io.Reader
}

type Reader struct {
	BR *bufio.Reader
	// MaxHeaderBytes limits a single start or header line; 0 means no limit.
	MaxHeaderBytes int
	// MaxTotalHeaderBytes limits all header lines together; 0 means no limit.
	MaxTotalHeaderBytes int
}

func (r *Reader) ReadRequest() (*ParsedRequest, error) {
	line, err := readLine(r.BR, r.MaxHeaderBytes)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: request line %q", ErrBadMessage, line)
	}
	method, uri, proto := parts[0], parts[1], parts[2]
	if !httpguts.ValidHeaderFieldName(method) {
		return nil, fmt.Errorf("%w: method %q", ErrBadMessage, method)
	}
	version, err := parseProto(proto)
	if err != nil {
		return nil, err
	}
	hdr, err := r.readHeaders()
	if err != nil {
		return nil, err
	}
	cl, body, err := r.requestBody(hdr)
	if err != nil {
		return nil, err
	}
	return &ParsedRequest{
		Method:        method,
		RequestURI:    uri,
		Proto:         version,
		Header:        hdr,
		ContentLength: cl,
		Body:          body,
	}, nil
}

// ReadResponse reads a response to a request made with method, which
// decides whether a body may follow.
func (r *Reader) ReadResponse(method string) (*ParsedResponse, error) {
	line, err := readLine(r.BR, r.MaxHeaderBytes)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: status line %q", ErrBadMessage, line)
	}
	version, err := parseProto(parts[0])
	if err != nil {
		return nil, err
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil || code < 100 || code > 999 {
		return nil, fmt.Errorf("%w: status code %q", ErrBadMessage, parts[1])
	}
	var reason string
	if len(parts) == 3 {
		reason = parts[2]
	}
	hdr, err := r.readHeaders()
	if err != nil {
		return nil, err
	}
	res := &ParsedResponse{
		Proto:      version,
		StatusCode: code,
		Reason:     reason,
		Header:     hdr,
	}
	switch {
	case noResponseBody(code, method):
		res.Body = strings.NewReader("")
	case hasChunkedTE(hdr):
		res.ContentLength = -1
		res.Body = newChunkedReader(r.BR, r.MaxHeaderBytes)
	default:
		cl, ok, err := contentLength(hdr)
		if err != nil {
			return nil, err
		}
		if ok {
			res.ContentLength = cl
			res.Body = io.LimitReader(r.BR, cl)
		} else {
			res.ContentLength = -1
			res.Body = r.BR
		}
	}
	return res, nil
}

func (r *Reader) requestBody(hdr []Field) (int64, io.Reader, error) {
	cl, hasCL, err := contentLength(hdr)
	if err != nil {
		return 0, nil, err
	}
	if hasChunkedTE(hdr) {
		if hasCL {
			return 0, nil, fmt.Errorf("%w: both Content-Length and chunked Transfer-Encoding", ErrBadMessage)
		}
		return -1, newChunkedReader(r.BR, r.MaxHeaderBytes), nil
	}
	if cl > 0 {
		return cl, io.LimitReader(r.BR, cl), nil
	}
	return 0, strings.NewReader(""), nil
}

func (r *Reader) readHeaders() ([]Field, error) {
	var hdr []Field
	total := 0
	for {
		line, err := readLine(r.BR, r.MaxHeaderBytes)
		if err != nil {
			return nil, err
		}
		if line == "" {
			return hdr, nil
		}
		total += len(line)
		if r.MaxTotalHeaderBytes > 0 && total > r.MaxTotalHeaderBytes {
			return nil, ErrHeaderTooLarge
		}
		i := strings.IndexByte(line, ':')
		if i <= 0 {
			return nil, fmt.Errorf("%w: header line %q", ErrBadMessage, line)
		}
		k := line[:i]
		if !httpguts.ValidHeaderFieldName(k) {
			return nil, fmt.Errorf("%w: header name %q", ErrBadMessage, k)
		}
		hdr = addField(hdr, k, strings.TrimSpace(line[i+1:]))
	}
}

func parseProto(proto string) (string, error) {
	v, ok := strings.CutPrefix(proto, "HTTP/")
	if !ok || !strings.HasPrefix(v, "1.") {
		return "", fmt.Errorf("%w: protocol %q", ErrBadMessage, proto)
	}
	return v, nil
}

func readLine(br *bufio.Reader, limit int) (string, error) {
	var sb strings.Builder
	for {
		b, err := br.ReadByte()
		if err != nil {
			return "", err
		}
		if b == '\n' {
			break
		}
		if b != '\r' {
			sb.WriteByte(b)
		}
		if limit > 0 && sb.Len() > limit {
			return "", ErrHeaderTooLarge
		}
	}
	return sb.String(), nil
}

func addField(hdr []Field, k, v string) []Field {
	for i := range hdr {
		if strings.EqualFold(hdr[i].Name, k) {
			hdr[i].Values = append(hdr[i].Values, v)
			return hdr
		}
	}
	return append(hdr, Field{Name: k, Values: []string{v}})
}

func lookup(hdr []Field, k string) []string {
	for _, f := range hdr {
		if strings.EqualFold(f.Name, k) {
			return f.Values
		}
	}
	return nil
}

// contentLength returns the declared body length. Repeated or
// comma-separated values must all agree.
func contentLength(hdr []Field) (int64, bool, error) {
	vv := lookup(hdr, "Content-Length")
	if len(vv) == 0 {
		return 0, false, nil
	}
	n := int64(-1)
	for _, v := range vv {
		for _, s := range strings.Split(v, ",") {
			m, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil || m < 0 {
				return 0, false, fmt.Errorf("%w: Content-Length %q", ErrBadMessage, v)
			}
			if n >= 0 && m != n {
				return 0, false, fmt.Errorf("%w: conflicting Content-Length values", ErrBadMessage)
			}
			n = m
		}
	}
	return n, true, nil
}

func hasChunkedTE(hdr []Field) bool {
	return httpguts.HeaderValuesContainsToken(lookup(hdr, "Transfer-Encoding"), "chunked")
}

func noResponseBody(status int, method string) bool {
	return method == "HEAD" || (status >= 100 && status < 200) || status == 204 || status == 304
}
