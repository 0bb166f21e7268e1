package httpx

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// HeaderValue is either a single value or an ordered list of values.
// Construct it with Single or Multiple.
type HeaderValue struct {
	values []string
}

// Single returns a HeaderValue holding exactly one value.
func Single(v string) HeaderValue { return HeaderValue{values: []string{v}} }

// Multiple returns a HeaderValue holding vs in order.
func Multiple(vs ...string) HeaderValue {
	return HeaderValue{values: append([]string(nil), vs...)}
}

// Values returns a copy of the values.
func (v HeaderValue) Values() []string { return append([]string(nil), v.values...) }

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (v *HeaderValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		v.values = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		vals := make([]string, 0, len(node.Content))
		for _, n := range node.Content {
			if n.Kind != yaml.ScalarNode {
				return invalidArgf("header value at line %d: list items must be strings", n.Line)
			}
			vals = append(vals, n.Value)
		}
		v.values = vals
		return nil
	default:
		return invalidArgf("header value at line %d: must be a string or a list of strings", node.Line)
	}
}

// HeaderMap is the construction-time header input: name to value(s).
type HeaderMap map[string]HeaderValue

// HeaderField is one header in iteration order.
type HeaderField struct {
	Name   string
	Values []string
}

func validateHeader(name string, value HeaderValue) error {
	if name == "" {
		return invalidArgf("empty header name")
	}
	if len(value.values) == 0 {
		return invalidArgf("header %q: no values", name)
	}
	return nil
}

// headerList stores headers in insertion order with a case-insensitive
// index. It is never modified after being reachable from a Message; all
// updates go through clone.
type headerList struct {
	fields []HeaderField
	index  map[string]int // lower-cased name -> position in fields
}

func headerKey(name string) string { return strings.ToLower(name) }

func (h headerList) lookup(name string) (HeaderField, bool) {
	i, ok := h.index[headerKey(name)]
	if !ok {
		return HeaderField{}, false
	}
	return h.fields[i], true
}

func (h headerList) clone() headerList {
	c := headerList{
		fields: make([]HeaderField, len(h.fields)),
		index:  make(map[string]int, len(h.fields)),
	}
	for i, f := range h.fields {
		c.fields[i] = HeaderField{Name: f.Name, Values: append([]string(nil), f.Values...)}
		c.index[headerKey(f.Name)] = i
	}
	return c
}

// set replaces the values of name, keeping its position when present.
func (h *headerList) set(name string, values []string) {
	vals := append([]string(nil), values...)
	if i, ok := h.index[headerKey(name)]; ok {
		h.fields[i] = HeaderField{Name: name, Values: vals}
		return
	}
	h.index[headerKey(name)] = len(h.fields)
	h.fields = append(h.fields, HeaderField{Name: name, Values: vals})
}

func (h *headerList) add(name string, values []string) {
	if i, ok := h.index[headerKey(name)]; ok {
		h.fields[i].Values = append(h.fields[i].Values, values...)
		return
	}
	h.set(name, values)
}

func (h *headerList) remove(name string) {
	i, ok := h.index[headerKey(name)]
	if !ok {
		return
	}
	h.fields = append(h.fields[:i], h.fields[i+1:]...)
	delete(h.index, headerKey(name))
	for j := i; j < len(h.fields); j++ {
		h.index[headerKey(h.fields[j].Name)] = j
	}
}

// sortedNames returns the keys of m in a stable order so that construction
// from a map is deterministic.
func (m HeaderMap) sortedNames() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
