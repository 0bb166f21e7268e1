package http1

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// RequestHead is everything written before the body.
type RequestHead struct {
	Method string
	Target string
	Proto  string // "1.1"
	// Host is written as the Host header when Header has none. It is
	// converted to its punycode form.
	Host   string
	Header []Field
}

// WriteRequest writes head and body to bw and flushes it.
//
// When body is non-nil and the header sets neither Content-Length nor
// Transfer-Encoding, contentLength >= 0 adds a Content-Length header and a
// negative contentLength sends the body chunked.
func WriteRequest(bw *bufio.Writer, head RequestHead, body io.Reader, contentLength int64) error {
	if !httpguts.ValidHeaderFieldName(head.Method) {
		return fmt.Errorf("%w: method %q", ErrBadMessage, head.Method)
	}
	if head.Target == "" || strings.ContainsAny(head.Target, " \r\n") {
		return fmt.Errorf("%w: request target %q", ErrBadMessage, head.Target)
	}
	proto := head.Proto
	if proto == "" {
		proto = "1.1"
	}
	if _, err := fmt.Fprintf(bw, "%s %s HTTP/%s\r\n", head.Method, head.Target, proto); err != nil {
		return err
	}
	if lookup(head.Header, "Host") == nil && head.Host != "" {
		host, err := httpguts.PunycodeHostPort(head.Host)
		if err != nil {
			return fmt.Errorf("%w: host %q: %v", ErrBadMessage, head.Host, err)
		}
		if err := writeField(bw, "Host", host); err != nil {
			return err
		}
	}
	for _, f := range head.Header {
		if !httpguts.ValidHeaderFieldName(f.Name) {
			return fmt.Errorf("%w: header name %q", ErrBadMessage, f.Name)
		}
		for _, v := range f.Values {
			if err := writeField(bw, f.Name, v); err != nil {
				return err
			}
		}
	}
	chunked := false
	if body != nil && lookup(head.Header, "Content-Length") == nil && lookup(head.Header, "Transfer-Encoding") == nil {
		if contentLength >= 0 {
			if err := writeField(bw, "Content-Length", strconv.FormatInt(contentLength, 10)); err != nil {
				return err
			}
		} else {
			chunked = true
			if err := writeField(bw, "Transfer-Encoding", "chunked"); err != nil {
				return err
			}
		}
	}
	if _, err := bw.WriteString("\r\n"); err != nil {
		return err
	}
	if body != nil {
		if err := writeBody(bw, body, chunked); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeBody(bw *bufio.Writer, body io.Reader, chunked bool) error {
	if !chunked {
		_, err := io.Copy(bw, body)
		return err
	}
	buf := make([]byte, 32<<10)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if _, werr := WriteChunked(bw, buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return EndChunked(bw)
		}
		if err != nil {
			return err
		}
	}
}

func writeField(bw *bufio.Writer, k, v string) error {
	_, err := fmt.Fprintf(bw, "%s: %s\r\n", k, SanitizeHeaderValue(v))
	return err
}

// SanitizeHeaderValue removes CR/LF and control chars except HTAB.
func SanitizeHeaderValue(v string) string {
	if httpguts.ValidHeaderFieldValue(v) {
		return v
	}
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == '\r' || c == '\n' || c == 0x7f {
			continue
		}
		if c < 0x20 && c != '\t' {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
