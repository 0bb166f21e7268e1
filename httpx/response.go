package httpx

import "strconv"

// Response is what a Transport returns for a Request: a Message plus the
// status line.
type Response struct {
	Message

	StatusCode int
	Reason     string
}

// Status returns the status line without the protocol, e.g. "200 OK".
func (r *Response) Status() string {
	if r.Reason == "" {
		return strconv.Itoa(r.StatusCode)
	}
	return strconv.Itoa(r.StatusCode) + " " + r.Reason
}
