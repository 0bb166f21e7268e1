package httpx

import "strings"

const defaultProtocolVersion = "1.1"

// Message holds the parts shared by requests and responses: protocol
// version, headers and body. A Message is immutable; the With* methods
// return modified copies and leave the receiver untouched, so a Message
// may be read from several goroutines at once.
//
// The body Stream is shared between copies, not duplicated. Streams are
// stateful and must not be used concurrently.
type Message struct {
	proto  string
	header headerList
	body   *Stream
}

// NewMessage returns a Message with the given headers and body. A nil
// body is allowed.
func NewMessage(body *Stream, headers HeaderMap) (Message, error) {
	m := Message{body: body}
	return m.withHeaders(headers)
}

func (m Message) withHeaders(headers HeaderMap) (Message, error) {
	for _, name := range headers.sortedNames() {
		var err error
		if m, err = m.WithHeader(name, headers[name]); err != nil {
			return Message{}, err
		}
	}
	return m, nil
}

// ProtocolVersion returns the HTTP version without the "HTTP/" prefix,
// "1.1" unless changed.
func (m Message) ProtocolVersion() string {
	if m.proto == "" {
		return defaultProtocolVersion
	}
	return m.proto
}

func (m Message) WithProtocolVersion(v string) Message {
	m.proto = v
	return m
}

// Headers returns a copy of all headers in insertion order.
func (m Message) Headers() []HeaderField {
	return m.header.clone().fields
}

// HeaderNames returns the header names in insertion order.
func (m Message) HeaderNames() []string {
	names := make([]string, len(m.header.fields))
	for i, f := range m.header.fields {
		names[i] = f.Name
	}
	return names
}

// HasHeader reports whether name is present, ignoring case.
func (m Message) HasHeader(name string) bool {
	_, ok := m.header.lookup(name)
	return ok
}

// HeaderLines returns a copy of the values of name, ignoring case. It is
// empty when the header is absent.
func (m Message) HeaderLines(name string) []string {
	f, ok := m.header.lookup(name)
	if !ok {
		return []string{}
	}
	return append([]string(nil), f.Values...)
}

// Header returns the values of name joined by ", ".
func (m Message) Header(name string) string {
	f, _ := m.header.lookup(name)
	return strings.Join(f.Values, ", ")
}

// WithHeader replaces every value of name, matched without regard to case.
// The header keeps its position and takes the spelling of name.
func (m Message) WithHeader(name string, value HeaderValue) (Message, error) {
	if err := validateHeader(name, value); err != nil {
		return Message{}, err
	}
	h := m.header.clone()
	h.set(name, value.values)
	m.header = h
	return m, nil
}

// WithAddedHeader appends value to name, creating the header if needed.
// An existing header keeps its original spelling.
func (m Message) WithAddedHeader(name string, value HeaderValue) (Message, error) {
	if err := validateHeader(name, value); err != nil {
		return Message{}, err
	}
	h := m.header.clone()
	h.add(name, value.values)
	m.header = h
	return m, nil
}

// WithoutHeader returns m without name. If name is absent m is returned
// as is.
func (m Message) WithoutHeader(name string) Message {
	if !m.HasHeader(name) {
		return m
	}
	h := m.header.clone()
	h.remove(name)
	m.header = h
	return m
}

func (m Message) Body() *Stream { return m.body }

// WithBody replaces the body. The previous body is not closed.
func (m Message) WithBody(body *Stream) Message {
	m.body = body
	return m
}
