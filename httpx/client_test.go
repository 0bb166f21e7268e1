package httpx

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dqx0.com/go/httpmsg/internal/obs"
)

type recordingTransport struct {
	got  []Request
	res  *Response
	err  error
	wait bool
}

func (rt *recordingTransport) RoundTrip(ctx context.Context, r Request) (*Response, error) {
	rt.got = append(rt.got, r)
	if rt.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return rt.res, rt.err
}

func okTransport() *recordingTransport {
	return &recordingTransport{res: &Response{StatusCode: 200, Reason: "OK"}}
}

func TestClientAddsRequestID(t *testing.T) {
	rt := okTransport()
	c := &Client{Transport: rt}
	req, err := NewRequest("GET", "http://example.com/", nil, nil)
	require.NoError(t, err)

	res, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)

	require.Len(t, rt.got, 1)
	id := rt.got[0].Header("x-request-id")
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "generated id %q", id)
	assert.False(t, req.HasHeader("X-Request-Id"), "caller's request is unchanged")
}

func TestClientRequestIDFromContext(t *testing.T) {
	rt := okTransport()
	c := &Client{Transport: rt}
	req, err := NewRequest("GET", "/", nil, nil)
	require.NoError(t, err)

	ctx := WithCorrelationID(WithRequestID(context.Background(), "req-1"), "corr-9")
	_, err = c.Do(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "req-1", rt.got[0].Header("X-Request-Id"))
	assert.Equal(t, "corr-9", rt.got[0].Header("X-Correlation-Id"))

	req, err = req.WithHeader("x-request-id", Single("mine"))
	require.NoError(t, err)
	_, err = c.Do(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"mine"}, rt.got[1].HeaderLines("X-Request-Id"))
}

func TestClientErrors(t *testing.T) {
	req, err := NewRequest("GET", "/", nil, nil)
	require.NoError(t, err)

	_, err = (&Client{}).Do(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoTransport)

	var meter obs.MemoryMeter
	var logs bytes.Buffer
	boom := errors.New("boom")
	c := &Client{
		Transport: &recordingTransport{err: boom},
		Meter:     &meter,
		Logger:    obs.StdLogger{L: log.New(&logs, "", 0), Min: obs.Warn},
	}
	_, err = c.Do(context.Background(), req)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1.0, meter.CounterValue("httpx_client_requests_error"))
	assert.Zero(t, meter.CounterValue("httpx_client_requests_total"))
	assert.Contains(t, logs.String(), "[WARN] GET / failed: boom")
}

func TestClientMetrics(t *testing.T) {
	var meter obs.MemoryMeter
	c := &Client{Transport: okTransport(), Meter: &meter}
	req, err := NewRequest("POST", "/", nil, nil)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := c.Do(context.Background(), req)
		require.NoError(t, err)
	}
	assert.Equal(t, 2.0, meter.CounterValue("httpx_client_requests_total"))
	assert.Len(t, meter.Observations("httpx_client_roundtrip_duration_ms"), 2)
}

func TestClientContext(t *testing.T) {
	req, err := NewRequest("GET", "/", nil, nil)
	require.NoError(t, err)

	rt := okTransport()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&Client{Transport: rt}).Do(ctx, req)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rt.got, "transport is not called with a done context")

	slow := &recordingTransport{wait: true}
	_, err = (&Client{Transport: slow, Timeout: 10 * time.Millisecond}).Do(context.Background(), req)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClientWithTransportFunc(t *testing.T) {
	var seen string
	c := &Client{Transport: TransportFunc(func(ctx context.Context, r Request) (*Response, error) {
		seen = r.Method() + " " + r.RequestTarget()
		return &Response{StatusCode: 204}, nil
	})}
	req, err := NewRequest("delete", "http://h/items/1", nil, nil)
	require.NoError(t, err)
	res, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "DELETE /items/1", seen)
	assert.Equal(t, "204", res.Status())
}
