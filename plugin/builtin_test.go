// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-logr/logr/funcr"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/gogama/reqx/httperr"
	"github.com/gogama/reqx/request"
)

func newRequest(t *testing.T) *http.Request {
	r, err := http.NewRequest("GET", "http://example.com/x", nil)
	require.NoError(t, err)
	return r
}

func result(code int, body string) *request.Result {
	return &request.Result{
		Response: &http.Response{StatusCode: code, Header: http.Header{}},
		Body:     []byte(body),
	}
}

func TestBearer(t *testing.T) {
	t.Run("sets header per attempt", func(t *testing.T) {
		store := NewTokenStore("old")
		pl := Bearer(store)
		ui := request.NewUserInfo()
		r := pl.Prepare(newRequest(t), nil, ui)
		assert.Equal(t, "Bearer old", r.Header.Get("Authorization"))
		assert.Equal(t, "old", ui.Value(TokenKey{}))
		store.Set("new")
		r = pl.Prepare(newRequest(t), nil, ui)
		assert.Equal(t, "Bearer new", r.Header.Get("Authorization"))
		assert.Equal(t, "new", ui.Value(TokenKey{}))
	})
	t.Run("source error", func(t *testing.T) {
		pl := Bearer(NewTokenStore(""))
		ui := request.NewUserInfo()
		r := pl.Prepare(newRequest(t), nil, ui)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, ErrNoToken, ui.Value(TokenErrKey{}))
	})
	t.Run("TokenFunc", func(t *testing.T) {
		pl := Bearer(TokenFunc(func() (string, error) { return "fn", nil }))
		r := pl.Prepare(newRequest(t), nil, request.NewUserInfo())
		assert.Equal(t, "Bearer fn", r.Header.Get("Authorization"))
	})
	t.Run("nil source", func(t *testing.T) {
		assert.PanicsWithValue(t, "reqx/plugin: nil token source", func() { Bearer(nil) })
	})
}

func TestStatusCodes(t *testing.T) {
	pl := StatusCodes(200, 299)
	assert.NoError(t, pl.Verify(result(200, ""), nil, nil))
	assert.NoError(t, pl.Verify(result(299, ""), nil, nil))
	err := pl.Verify(result(404, ""), nil, nil)
	code, ok := httperr.StatusCodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, 404, code)
	assert.Panics(t, func() { StatusCodes(300, 200) })
}

func TestAcceptStatus(t *testing.T) {
	pl := AcceptStatus(200, 304)
	assert.NoError(t, pl.Verify(result(304, ""), nil, nil))
	err := pl.Verify(result(201, ""), nil, nil)
	assert.Equal(t, httperr.KindStatus, httperr.Kind(err))
}

func TestRequestID(t *testing.T) {
	t.Run("stable across attempts", func(t *testing.T) {
		pl := RequestID()
		ui := request.NewUserInfo()
		r1 := pl.Prepare(newRequest(t), nil, ui)
		id := r1.Header.Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		r2 := pl.Prepare(newRequest(t), nil, ui)
		assert.Equal(t, id, r2.Header.Get(RequestIDHeader))
		assert.Equal(t, id, ui.Value(RequestIDKey{}))
	})
	t.Run("keeps caller header", func(t *testing.T) {
		r := newRequest(t)
		r.Header.Set(RequestIDHeader, "caller-id")
		ui := request.NewUserInfo()
		r = RequestID().Prepare(r, nil, ui)
		assert.Equal(t, "caller-id", r.Header.Get(RequestIDHeader))
		assert.Equal(t, "caller-id", ui.Value(RequestIDKey{}))
	})
}

func TestLimit(t *testing.T) {
	t.Run("paces attempts", func(t *testing.T) {
		pl := Limit(rate.NewLimiter(rate.Every(20*time.Millisecond), 1))
		start := time.Now()
		for i := 0; i < 3; i++ {
			pl.WillSend(newRequest(t), nil, nil)
		}
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})
	t.Run("context done", func(t *testing.T) {
		pl := Limit(rate.NewLimiter(rate.Every(time.Hour), 1))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := newRequest(t).WithContext(ctx)
		pl.WillSend(r, nil, nil)
		pl.WillSend(r, nil, nil)
	})
	t.Run("nil limiter", func(t *testing.T) {
		assert.Panics(t, func() { Limit(nil) })
	})
}

func TestLog(t *testing.T) {
	var lines []string
	logger := funcr.New(func(prefix, args string) {
		lines = append(lines, prefix+" "+args)
	}, funcr.Options{Verbosity: 1})
	pl := Log(logger)
	p, err := request.NewParameters(request.WithMethod("PUT"))
	require.NoError(t, err)
	ui := request.NewUserInfo()
	ui.RecordAttempt()
	r := newRequest(t)
	pl.WillSend(r, p, ui)
	pl.DidReceive(result(500, "x"), p, ui)
	pl.DidReceive(&request.Result{Err: errors.New("reset")}, p, ui)
	res := result(500, "x")
	res.Request = r
	res.Err = httperr.StatusCode(500)
	pl.DidFinish(res, p, ui)
	pl.WasCancelled(p, ui)
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], `"sending request"`)
	assert.Contains(t, lines[1], `"received response"`)
	assert.Contains(t, lines[2], `"attempt failed"`)
	assert.Contains(t, lines[3], `"request failed"`)
	assert.Contains(t, lines[3], `"method"="PUT"`)
	assert.Contains(t, lines[4], `"request cancelled"`)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "test")
	require.NoError(t, err)
	p, err := request.NewParameters()
	require.NoError(t, err)

	ui := request.NewUserInfo()
	r := m.Prepare(newRequest(t), p, ui)
	m.Prepare(r, p, ui)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))
	m.WillSend(r, p, ui)
	m.WillSend(r, p, ui)
	m.DidFinish(result(200, ""), p, ui)
	m.DidFinish(result(200, ""), p, ui)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.attempts.WithLabelValues("GET")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "200")))

	ui = request.NewUserInfo()
	m.Prepare(newRequest(t), p, ui)
	m.DidFinish(&request.Result{Err: context.Canceled}, p, ui)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "canceled")))

	ui = request.NewUserInfo()
	m.Prepare(newRequest(t), p, ui)
	m.WasCancelled(p, ui)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "canceled")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))

	_, err = NewMetrics(reg, "test")
	assert.Error(t, err, "duplicate registration")
}

func TestSchema(t *testing.T) {
	pl, err := CompileSchema(`{
		"type": "object",
		"required": ["id"],
		"properties": {"id": {"type": "integer"}}
	}`)
	require.NoError(t, err)
	assert.NoError(t, pl.Verify(result(200, `{"id":1}`), nil, nil))
	assert.NoError(t, pl.Verify(result(200, ""), nil, nil))
	assert.NoError(t, pl.Verify(result(500, "not json"), nil, nil))
	err = pl.Verify(result(200, `{"id":"one"}`), nil, nil)
	assert.Equal(t, httperr.KindDecoding, httperr.Kind(err))
	err = pl.Verify(result(201, `{`), nil, nil)
	assert.Equal(t, httperr.KindDecoding, httperr.Kind(err))
	_, err = CompileSchema(`{`)
	assert.Error(t, err)
}
