package http1

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func readReq(t *testing.T, raw string, maxLine, maxTotal int) (*ParsedRequest, error) {
	t.Helper()
	r := &Reader{BR: bufio.NewReader(strings.NewReader(raw)), MaxHeaderBytes: maxLine, MaxTotalHeaderBytes: maxTotal}
	return r.ReadRequest()
}

func TestReader_ContentLengthBody(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\n\r\nhello"
	pr, err := readReq(t, raw, 8<<10, 64<<10)
	if err != nil {
		t.Fatalf("ReadRequest error: %v", err)
	}
	if pr.ContentLength != 5 {
		t.Fatalf("ContentLength=%d", pr.ContentLength)
	}
	b, _ := io.ReadAll(pr.Body)
	if string(b) != "hello" {
		t.Fatalf("body=%q", string(b))
	}
}

func TestReader_ChunkedBody(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: x\r\nTransfer-Encoding: chunked\r\n\r\n3\r\nhey\r\n2\r\n!!\r\n0\r\n\r\n"
	pr, err := readReq(t, raw, 8<<10, 64<<10)
	if err != nil {
		t.Fatalf("ReadRequest error: %v", err)
	}
	if pr.ContentLength != -1 {
		t.Fatalf("ContentLength=%d", pr.ContentLength)
	}
	b, _ := io.ReadAll(pr.Body)
	if string(b) != "hey!!" {
		t.Fatalf("body=%q", string(b))
	}
}

func TestReader_CLTEConflict(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: x\r\nTransfer-Encoding: chunked\r\nContent-Length: 5\r\n\r\n"
	if _, err := readReq(t, raw, 8<<10, 64<<10); err == nil {
		t.Fatal("expected error for CL/TE conflict")
	}
}

func TestReader_MultipleContentLengthMismatch(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: x\r\nContent-Length: 5, 6\r\n\r\n"
	if _, err := readReq(t, raw, 8<<10, 64<<10); err == nil {
		t.Fatal("expected error for mismatched Content-Length")
	}
}

func TestReader_InvalidHeaderName(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nBad( : v\r\n\r\n"
	if _, err := readReq(t, raw, 8<<10, 64<<10); err == nil {
		t.Fatal("expected error for invalid header name")
	}
}

func TestReader_MaxTotalHeaderBytes(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nA: b\r\nC: d\r\nE: f\r\n\r\n"
	if _, err := readReq(t, raw, 8<<10, 6); err == nil { // 3 lines exceed total (approx)
		t.Fatal("expected error for MaxTotalHeaderBytes")
	}
}

func TestReader_HeaderOrderAndMerge(t *testing.T) {
	raw := "GET /a?b=1 HTTP/1.0\r\nHost: x\r\nAccept: text/html\r\naccept: text/plain\r\nX-Id: 7\r\n\r\n"
	pr, err := readReq(t, raw, 8<<10, 64<<10)
	if err != nil {
		t.Fatalf("ReadRequest error: %v", err)
	}
	if pr.Proto != "1.0" || pr.RequestURI != "/a?b=1" {
		t.Fatalf("proto=%q uri=%q", pr.Proto, pr.RequestURI)
	}
	want := []Field{
		{Name: "Host", Values: []string{"x"}},
		{Name: "Accept", Values: []string{"text/html", "text/plain"}},
		{Name: "X-Id", Values: []string{"7"}},
	}
	if diff := cmp.Diff(want, pr.Header); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestReader_BadProto(t *testing.T) {
	if _, err := readReq(t, "GET / SPDY/3\r\n\r\n", 0, 0); !errors.Is(err, ErrBadMessage) {
		t.Fatalf("err=%v, want ErrBadMessage", err)
	}
}

func readRes(t *testing.T, raw, method string) *ParsedResponse {
	t.Helper()
	r := &Reader{BR: bufio.NewReader(strings.NewReader(raw))}
	res, err := r.ReadResponse(method)
	if err != nil {
		t.Fatalf("ReadResponse error: %v", err)
	}
	return res
}

func TestReader_ResponseFraming(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		method string
		code   int
		cl     int64
		body   string
	}{
		{"content-length", "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nokEXTRA", "GET", 200, 2, "ok"},
		{"chunked", "HTTP/1.1 201 Created\r\nTransfer-Encoding: chunked\r\n\r\n2\r\nab\r\n1;ext=1\r\nc\r\n0\r\nTrailer: x\r\n\r\n", "POST", 201, -1, "abc"},
		{"close-delimited", "HTTP/1.0 200 OK\r\n\r\nuntil eof", "GET", 200, -1, "until eof"},
		{"head", "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\n", "HEAD", 200, 0, ""},
		{"no-content", "HTTP/1.1 204 No Content\r\n\r\n", "DELETE", 204, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := readRes(t, tt.raw, tt.method)
			if res.StatusCode != tt.code || res.ContentLength != tt.cl {
				t.Fatalf("code=%d cl=%d", res.StatusCode, res.ContentLength)
			}
			b, err := io.ReadAll(res.Body)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			if string(b) != tt.body {
				t.Fatalf("body=%q, want %q", b, tt.body)
			}
		})
	}
}

func TestReader_BadChunkSize(t *testing.T) {
	res := readRes(t, "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\nzz\r\n", "GET")
	if _, err := io.ReadAll(res.Body); !errors.Is(err, ErrBadMessage) {
		t.Fatalf("err=%v, want ErrBadMessage", err)
	}
}
