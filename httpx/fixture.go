package httpx

import (
	"fmt"
	"io"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RequestFixture is the YAML form of a Request:
//
//	method: post
//	uri: https://api.example.com/v1/items?limit=10
//	headers:
//	  Content-Type: application/json
//	  Accept: [application/json, text/plain]
//	body: '{"name":"x"}'
//
// BodyFile, when set, names a file opened read-only as the body; relative
// paths are resolved against the directory passed to Request.
type RequestFixture struct {
	Method   string    `yaml:"method"`
	URI      *URI      `yaml:"uri"`
	Target   string    `yaml:"target"`
	Protocol string    `yaml:"protocol"`
	Headers  HeaderMap `yaml:"headers"`
	Body     string    `yaml:"body"`
	BodyFile string    `yaml:"body_file"`
}

// LoadRequest decodes a single RequestFixture from rd and builds it with
// body files resolved against dir.
func LoadRequest(rd io.Reader, dir string) (Request, error) {
	var fx RequestFixture
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return Request{}, fmt.Errorf("httpx: decode request fixture: %w", err)
	}
	return fx.Request(dir)
}

// Request builds the Request described by fx.
func (fx RequestFixture) Request(dir string) (Request, error) {
	if fx.Body != "" && fx.BodyFile != "" {
		return Request{}, invalidArgf("fixture sets both body and body_file")
	}
	body := NewMemoryStream([]byte(fx.Body))
	if fx.BodyFile != "" {
		path := fx.BodyFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		s, err := OpenStream(path, "r")
		if err != nil {
			return Request{}, invalidArgf("body_file: %w", err)
		}
		body = s
	}
	r, err := NewRequestURI(fx.Method, fx.URI, body, fx.Headers)
	if err != nil {
		body.Close()
		return Request{}, err
	}
	if fx.Protocol != "" {
		r = r.WithProtocolVersion(fx.Protocol)
	}
	if fx.Target != "" {
		if r, err = r.WithRequestTarget(fx.Target); err != nil {
			body.Close()
			return Request{}, err
		}
	}
	return r, nil
}
