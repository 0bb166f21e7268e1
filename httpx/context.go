package httpx

import "context"

// idKey is keyed by the header name the stored ID is sent under.
type idKey string

// WithRequestID returns a copy of ctx carrying id. Client.Do sends it as
// X-Request-Id instead of generating one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey(headerRequestID), id)
}

// RequestIDFrom reports the request ID stored by WithRequestID.
func RequestIDFrom(ctx context.Context) (string, bool) {
	return idFrom(ctx, headerRequestID)
}

// WithCorrelationID returns a copy of ctx carrying id, sent as
// X-Correlation-Id on requests that do not already have one.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey(headerCorrelationID), id)
}

func CorrelationIDFrom(ctx context.Context) (string, bool) {
	return idFrom(ctx, headerCorrelationID)
}

func idFrom(ctx context.Context, header string) (string, bool) {
	s, _ := ctx.Value(idKey(header)).(string)
	return s, s != ""
}
