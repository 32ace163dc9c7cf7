// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"net/http"

	"github.com/go-logr/logr"

	"github.com/gogama/reqx/cache"
	"github.com/gogama/reqx/plugin"
	"github.com/gogama/reqx/request"
	"github.com/gogama/reqx/retry"
	"github.com/gogama/reqx/stopline"
	"github.com/gogama/reqx/timeout"
)

// settings is the configuration shared by a request manager and the
// recovery managers it creates for stop-the-line actions.
type settings struct {
	transport     Transport
	plugins       []plugin.Plugin
	retrier       retry.Retrier
	stopLine      stopline.Policy
	maxAttempts   int
	cache         cache.Cache
	timeoutPolicy timeout.Policy
	logger        logr.Logger
	dispatcher    request.Dispatcher
}

func defaultSettings() settings {
	return settings{
		transport:   http.DefaultClient,
		retrier:     retry.Never,
		maxAttempts: 1,
		logger:      logr.Discard(),
	}
}

// An Option configures a request manager.
type Option func(*settings)

// WithTransport sets the transport over which requests are sent. The
// default is http.DefaultClient.
func WithTransport(t Transport) Option {
	if t == nil {
		panic("reqx: nil transport")
	}
	return func(s *settings) {
		s.transport = t
	}
}

// WithPlugins appends global plug-ins, which run around every request
// before the plug-ins of the request's own Parameters.
func WithPlugins(plugins ...plugin.Plugin) Option {
	for _, pl := range plugins {
		if pl == nil {
			panic("reqx: nil plugin")
		}
	}
	return func(s *settings) {
		s.plugins = append(s.plugins, plugins...)
	}
}

// WithRetrier sets the retry policy. The default is retry.Never.
func WithRetrier(r retry.Retrier) Option {
	if r == nil {
		panic("reqx: nil retrier")
	}
	return func(s *settings) {
		s.retrier = r
	}
}

// WithStopTheLine sets the stop-the-line policy. By default there is
// none.
func WithStopTheLine(p stopline.Policy) Option {
	if p == nil {
		panic("reqx: nil stop-the-line policy")
	}
	return func(s *settings) {
		s.stopLine = p
	}
}

// WithoutStopTheLine removes any stop-the-line policy set by an earlier
// option.
func WithoutStopTheLine() Option {
	return func(s *settings) {
		s.stopLine = nil
	}
}

// WithMaxAttempts bounds how many times the stop-the-line protocol may
// replay one logical request, whether because Verify classified an
// attempt as stopline.Retry or because a recovery action resolved with
// stopline.RetryOutcome. The default is 1. Zero disables replays.
func WithMaxAttempts(n int) Option {
	if n < 0 {
		panic("reqx: negative max attempts")
	}
	return func(s *settings) {
		s.maxAttempts = n
	}
}

// WithCache installs a response cache, consulted by requests whose
// Parameters carry a cache policy other than request.CacheDefault.
func WithCache(c cache.Cache) Option {
	return func(s *settings) {
		s.cache = c
	}
}

// WithTimeoutPolicy sets the per-attempt timeout policy used when a
// request's Parameters carry no timeout. By default attempts have no
// timeout beyond what the transport imposes.
func WithTimeoutPolicy(p timeout.Policy) Option {
	return func(s *settings) {
		s.timeoutPolicy = p
	}
}

// WithLogger sets the logger the manager reports freezes, recoveries
// and retries to. The default discards all output.
func WithLogger(l logr.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// WithDispatcher sets the dispatcher for completion callbacks of
// requests whose Parameters carry no dispatcher. By default callbacks
// run on the goroutine which completed the request.
func WithDispatcher(d request.Dispatcher) Option {
	return func(s *settings) {
		s.dispatcher = d
	}
}
