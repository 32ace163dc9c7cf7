// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"name":"gear","tags":["a","b"]}`)
		case "/echo":
			w.Header().Set("X-Method", r.Method)
			w.Header().Set("X-Token", r.Header.Get("X-Token"))
			_, _ = io.Copy(w, r.Body)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func run(t *testing.T, args ...string) (string, error) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--no-color"))
	err := cmd.Execute()
	return out.String(), err
}

func TestGet(t *testing.T) {
	s := newServer(t)
	t.Run("body", func(t *testing.T) {
		out, err := run(t, "get", s.URL+"/json")
		require.NoError(t, err)
		assert.Equal(t, `{"name":"gear","tags":["a","b"]}`+"\n", out)
	})
	t.Run("query", func(t *testing.T) {
		out, err := run(t, "get", s.URL+"/json", "-q", "tags.1")
		require.NoError(t, err)
		assert.Equal(t, "b\n", out)
	})
	t.Run("missing query", func(t *testing.T) {
		_, err := run(t, "get", s.URL+"/json", "-q", "absent")
		assert.EqualError(t, err, `no value at "absent"`)
	})
	t.Run("include", func(t *testing.T) {
		out, err := run(t, "get", s.URL+"/json", "-i")
		require.NoError(t, err)
		assert.Contains(t, out, "HTTP/1.1 200 OK\n")
		assert.Contains(t, out, "Content-Type: application/json\n")
	})
	t.Run("not found", func(t *testing.T) {
		out, err := run(t, "get", s.URL+"/nope", "-i")
		require.NoError(t, err)
		assert.Contains(t, out, "HTTP/1.1 404 Not Found\n")
	})
	t.Run("schema", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "schema.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"type":"object","required":["id"]}`), 0o600))
		_, err := run(t, "get", s.URL+"/json", "--schema", path)
		assert.Error(t, err)
	})
	t.Run("malformed header", func(t *testing.T) {
		_, err := run(t, "get", s.URL+"/json", "-H", "no-colon")
		assert.EqualError(t, err, `malformed header "no-colon"`)
	})
	t.Run("bad config", func(t *testing.T) {
		_, err := run(t, "get", s.URL+"/json", "-c", filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestPost(t *testing.T) {
	s := newServer(t)
	out, err := run(t, "post", s.URL+"/echo", "-d", "payload", "-H", "X-Token: abc", "-i")
	require.NoError(t, err)
	assert.Contains(t, out, "X-Method: POST\n")
	assert.Contains(t, out, "X-Token: abc\n")
	assert.Contains(t, out, "\npayload\n")
}

func TestNewLogger(t *testing.T) {
	logger, sync, err := newLogger(0)
	require.NoError(t, err)
	assert.False(t, logger.Enabled())
	sync()

	logger, sync, err = newLogger(2)
	require.NoError(t, err)
	assert.True(t, logger.V(1).Enabled())
	sync()
}
