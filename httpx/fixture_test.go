package httpx

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequest(t *testing.T) {
	src := `
method: post
uri: https://API.example.com:8443/v1/items?limit=10
protocol: "1.0"
headers:
  Content-Type: application/json
  Accept: [application/json, text/plain]
body: '{"name":"x"}'
`
	r, err := LoadRequest(strings.NewReader(src), "")
	require.NoError(t, err)

	assert.Equal(t, "POST", r.Method())
	u, ok := r.URI()
	require.True(t, ok)
	assert.Equal(t, "api.example.com:8443", u.Authority())
	assert.Equal(t, "/v1/items?limit=10", r.RequestTarget())
	assert.Equal(t, "1.0", r.ProtocolVersion())
	assert.Equal(t, []string{"Accept", "Content-Type"}, r.HeaderNames())
	assert.Equal(t, []string{"application/json", "text/plain"}, r.HeaderLines("accept"))
	body, err := r.Body().Contents()
	require.NoError(t, err)
	assert.Equal(t, `{"name":"x"}`, body)
}

func TestLoadRequestBodyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "payload.txt"), []byte("from disk"), 0o644))

	r, err := LoadRequest(strings.NewReader("method: PUT\ntarget: '*'\nbody_file: payload.txt\n"), dir)
	require.NoError(t, err)
	defer r.Body().Close()

	assert.Equal(t, "*", r.RequestTarget())
	_, ok := r.URI()
	assert.False(t, ok)
	assert.False(t, r.Body().IsWritable())
	body, err := r.Body().Contents()
	require.NoError(t, err)
	assert.Equal(t, "from disk", body)
}

func TestLoadRequestErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		src  string
		is   error
	}{
		{"both bodies", "body: x\nbody_file: y\n", ErrInvalidArgument},
		{"missing body file", "body_file: nope.txt\n", os.ErrNotExist},
		{"bad uri", "uri: 'http://h:99999/'\n", ErrParse},
		{"bad method", "method: brew\n", ErrInvalidArgument},
		{"bad target", "target: 'a b'\n", ErrInvalidArgument},
		{"bad header", "headers:\n  X: {a: b}\n", ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRequest(strings.NewReader(tt.src), dir)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.is), "err = %v", err)
		})
	}

	_, err := LoadRequest(strings.NewReader("methd: GET\n"), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "methd")
}
