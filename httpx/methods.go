package httpx

import "strings"

const (
	MethodConnect = "CONNECT"
	MethodDelete  = "DELETE"
	MethodGet     = "GET"
	MethodHead    = "HEAD"
	MethodOptions = "OPTIONS"
	MethodPatch   = "PATCH"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodTrace   = "TRACE"
)

var allowedMethods = [...]string{
	MethodConnect,
	MethodDelete,
	MethodGet,
	MethodHead,
	MethodOptions,
	MethodPatch,
	MethodPost,
	MethodPut,
	MethodTrace,
}

// Methods returns the request methods accepted by Request, upper-cased.
func Methods() []string {
	return append([]string(nil), allowedMethods[:]...)
}

// canonicalMethod upper-cases m and reports whether it is an accepted
// method.
func canonicalMethod(m string) (string, bool) {
	u := strings.ToUpper(m)
	for _, a := range allowedMethods {
		if u == a {
			return u, true
		}
	}
	return "", false
}
