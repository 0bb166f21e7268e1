package httpx

import (
	"strings"
	"unicode"
)

// Request is an immutable HTTP request: a Message plus method, optional
// URI and optional request-target override.
//
// The Message methods that derive a copy are redefined on Request so that
// they return a Request.
type Request struct {
	Message

	method    string
	uri       URI
	hasURI    bool
	target    string
	hasTarget bool
}

// NewRequest builds a Request. An empty rawURI means no URI; otherwise it
// is parsed with ParseURI. An empty method leaves the method unset;
// otherwise it must be one of Methods, in any case. A nil body is replaced
// by an empty memory stream.
func NewRequest(method, rawURI string, body *Stream, headers HeaderMap) (Request, error) {
	if rawURI == "" {
		return NewRequestURI(method, nil, body, headers)
	}
	u, err := ParseURI(rawURI)
	if err != nil {
		return Request{}, invalidArgf("request uri: %w", err)
	}
	return NewRequestURI(method, &u, body, headers)
}

// NewRequestURI is like NewRequest but takes an already built URI, which
// may be nil.
func NewRequestURI(method string, u *URI, body *Stream, headers HeaderMap) (Request, error) {
	var r Request
	if u != nil {
		r.uri, r.hasURI = *u, true
	}
	if method != "" {
		m, ok := canonicalMethod(method)
		if !ok {
			return Request{}, invalidArgf("method %q", method)
		}
		r.method = m
	}
	if body == nil {
		body = NewMemoryStream(nil)
	}
	msg, err := NewMessage(body, headers)
	if err != nil {
		return Request{}, err
	}
	r.Message = msg
	return r, nil
}

// Method returns the upper-cased method, or "" when unset.
func (r Request) Method() string { return r.method }

func (r Request) WithMethod(method string) (Request, error) {
	m, ok := canonicalMethod(method)
	if !ok {
		return Request{}, invalidArgf("method %q", method)
	}
	r.method = m
	return r, nil
}

// URI returns the request URI and whether one is set.
func (r Request) URI() (URI, bool) { return r.uri, r.hasURI }

func (r Request) WithURI(u URI) Request {
	r.uri, r.hasURI = u, true
	return r
}

// RequestTarget returns the explicit target if one was set, else the
// origin-form target of the URI, else "/".
func (r Request) RequestTarget() string {
	switch {
	case r.hasTarget:
		return r.target
	case r.hasURI:
		return r.uri.requestTarget()
	}
	return "/"
}

// WithRequestTarget overrides the request target, for example with an
// absolute-form or "*" target. It must not contain whitespace.
func (r Request) WithRequestTarget(target string) (Request, error) {
	if strings.IndexFunc(target, unicode.IsSpace) >= 0 {
		return Request{}, invalidArgf("request target %q contains whitespace", target)
	}
	r.target, r.hasTarget = target, true
	return r, nil
}

func (r Request) WithProtocolVersion(v string) Request {
	r.Message = r.Message.WithProtocolVersion(v)
	return r
}

func (r Request) WithHeader(name string, value HeaderValue) (Request, error) {
	m, err := r.Message.WithHeader(name, value)
	if err != nil {
		return Request{}, err
	}
	r.Message = m
	return r, nil
}

func (r Request) WithAddedHeader(name string, value HeaderValue) (Request, error) {
	m, err := r.Message.WithAddedHeader(name, value)
	if err != nil {
		return Request{}, err
	}
	r.Message = m
	return r, nil
}

func (r Request) WithoutHeader(name string) Request {
	r.Message = r.Message.WithoutHeader(name)
	return r
}

func (r Request) WithBody(body *Stream) Request {
	r.Message = r.Message.WithBody(body)
	return r
}
