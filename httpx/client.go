package httpx

import (
	"context"
	"strconv"
	"time"

	"dqx0.com/go/httpmsg/internal/obs"
)

// Transport sends a Request and returns its Response. Implementations own
// connection handling; the Request they receive is immutable.
type Transport interface {
	RoundTrip(ctx context.Context, r Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, r Request) (*Response, error)

func (f TransportFunc) RoundTrip(ctx context.Context, r Request) (*Response, error) {
	return f(ctx, r)
}

// Client hands requests to a Transport, tagging each with an
// X-Request-Id header and recording logs and metrics.
type Client struct {
	Transport Transport
	// Timeout, if positive, bounds each call to Do.
	Timeout time.Duration

	Logger obs.Logger
	Meter  obs.Meter
}

// Do sends r. When r has no X-Request-Id header one is added, taken from
// ctx (see WithRequestID) or freshly generated. r itself is not modified.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	if c.Transport == nil {
		return nil, ErrNoTransport
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := c.prepare(ctx, r)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	method := r.Method()
	res, err := c.Transport.RoundTrip(ctx, r)
	if err != nil {
		c.logf(obs.Warn, "%s %s failed: %v", method, r.RequestTarget(), err)
		c.meter().Counter("httpx_client_requests_error", 1, obs.Label{Key: "method", Value: method})
		return nil, err
	}
	status := strconv.Itoa(res.StatusCode)
	c.logf(obs.Debug, "%s %s -> %s (%s)", method, r.RequestTarget(), status, r.Header(headerRequestID))
	c.meter().Counter("httpx_client_requests_total", 1, obs.Label{Key: "method", Value: method})
	c.meter().Histogram("httpx_client_roundtrip_duration_ms", float64(time.Since(start).Milliseconds()),
		obs.Label{Key: "method", Value: method}, obs.Label{Key: "status", Value: status})
	return res, nil
}

func (c *Client) prepare(ctx context.Context, r Request) (Request, error) {
	var err error
	if !r.HasHeader(headerRequestID) {
		id, ok := RequestIDFrom(ctx)
		if !ok {
			id = genID()
		}
		if r, err = r.WithHeader(headerRequestID, Single(id)); err != nil {
			return Request{}, err
		}
	}
	if !r.HasHeader(headerCorrelationID) {
		if cid, ok := CorrelationIDFrom(ctx); ok {
			if r, err = r.WithHeader(headerCorrelationID, Single(cid)); err != nil {
				return Request{}, err
			}
		}
	}
	return r, nil
}

func (c *Client) logf(level obs.Level, format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Logf(level, format, args...)
	}
}

func (c *Client) meter() obs.Meter {
	if c.Meter != nil {
		return c.Meter
	}
	return obs.NopMeter{}
}
