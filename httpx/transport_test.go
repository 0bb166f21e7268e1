package httpx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn replays canned responses and records what was written.
type fakeConn struct {
	io.Reader
	written bytes.Buffer
}

func (c *fakeConn) Write(p []byte) (int, error) { return c.written.Write(p) }

func newFakeConn(responses ...string) *fakeConn {
	return &fakeConn{Reader: strings.NewReader(strings.Join(responses, ""))}
}

func gzipped(t *testing.T, s string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.String()
}

func TestWireTransportRoundTrip(t *testing.T) {
	conn := newFakeConn("HTTP/1.1 201 Created\r\nContent-Type: text/plain\r\nContent-Length: 2\r\n\r\nok")
	tr := &WireTransport{Conn: conn, DisableCompression: true}

	req, err := NewRequest("POST", "http://example.com/items", NewMemoryStream([]byte("new")), nil)
	require.NoError(t, err)
	res, err := tr.RoundTrip(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "POST /items HTTP/1.1\r\nHost: example.com\r\nContent-Length: 3\r\n\r\nnew", conn.written.String())
	assert.Equal(t, 201, res.StatusCode)
	assert.Equal(t, "201 Created", res.Status())
	assert.Equal(t, "1.1", res.ProtocolVersion())
	assert.Equal(t, "text/plain", res.Header("content-type"))
	body, err := res.Body().Contents()
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.False(t, req.HasHeader("Accept-Encoding"))
}

func TestWireTransportGzip(t *testing.T) {
	gz := gzipped(t, "hello gzip")
	conn := newFakeConn("HTTP/1.1 200 OK\r\nContent-Encoding: gzip\r\nContent-Length: " + strconv.Itoa(len(gz)) + "\r\n\r\n" + gz)
	tr := &WireTransport{Conn: conn}

	req, err := NewRequest("GET", "http://example.com/", nil, nil)
	require.NoError(t, err)
	res, err := tr.RoundTrip(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, conn.written.String(), "Accept-Encoding: gzip\r\n")
	assert.False(t, res.HasHeader("Content-Encoding"))
	assert.False(t, res.HasHeader("Content-Length"))
	body, err := res.Body().Contents()
	require.NoError(t, err)
	assert.Equal(t, "hello gzip", body)
}

func TestWireTransportKeepsCallerEncoding(t *testing.T) {
	gz := gzipped(t, "raw")
	conn := newFakeConn("HTTP/1.1 200 OK\r\nContent-Encoding: gzip\r\nContent-Length: " + strconv.Itoa(len(gz)) + "\r\n\r\n" + gz)
	tr := &WireTransport{Conn: conn}

	req, err := NewRequest("GET", "/", nil, HeaderMap{"Accept-Encoding": Single("gzip")})
	require.NoError(t, err)
	res, err := tr.RoundTrip(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "gzip", res.Header("Content-Encoding"))
	body, err := res.Body().Contents()
	require.NoError(t, err)
	assert.Equal(t, gz, body)
}

func TestWireTransportSequentialResponses(t *testing.T) {
	conn := newFakeConn(
		"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n3\r\none\r\n0\r\n\r\n",
		"HTTP/1.1 204 No Content\r\n\r\n",
		"HTTP/1.1 200 OK\r\nContent-Length: 3\r\n\r\ntwo",
	)
	tr := &WireTransport{Conn: conn, DisableCompression: true}
	req, err := NewRequest("GET", "/", nil, nil)
	require.NoError(t, err)

	var bodies []string
	var codes []int
	for i := 0; i < 3; i++ {
		res, err := tr.RoundTrip(context.Background(), req)
		require.NoError(t, err)
		b, err := res.Body().Contents()
		require.NoError(t, err)
		bodies = append(bodies, b)
		codes = append(codes, res.StatusCode)
	}
	assert.Equal(t, []string{"one", "", "two"}, bodies)
	assert.Equal(t, []int{200, 204, 200}, codes)
}

func TestWireTransportErrors(t *testing.T) {
	req, err := NewRequest("GET", "/", nil, nil)
	require.NoError(t, err)

	_, err = (&WireTransport{}).RoundTrip(context.Background(), req)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&WireTransport{Conn: newFakeConn()}).RoundTrip(ctx, req)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = (&WireTransport{Conn: newFakeConn("NOT HTTP\r\n\r\n")}).RoundTrip(context.Background(), req)
	assert.True(t, errors.Is(err, ErrBadMessage))

	_, err = (&WireTransport{Conn: newFakeConn("HTTP/1.1 200 OK\r\n")}).RoundTrip(context.Background(), req)
	assert.ErrorIs(t, err, io.EOF)
}
