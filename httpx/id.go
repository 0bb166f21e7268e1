package httpx

import "github.com/google/uuid"

const (
	headerRequestID     = "X-Request-Id"
	headerCorrelationID = "X-Correlation-Id"
)

func genID() string {
	return uuid.NewString()
}
