// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/gogama/reqx/request"
)

type logStartKey struct{}

type logPlugin struct {
	Base
	logger logr.Logger
}

// Log constructs a plug-in which logs the lifecycle of every request
// to logger. Attempts and responses are logged at verbosity 1, failed
// requests as errors, successful completion and cancellation at
// verbosity 0.
func Log(logger logr.Logger) Plugin {
	return &logPlugin{logger: logger.WithName("reqx")}
}

func (l *logPlugin) WillSend(r *http.Request, _ *request.Parameters, ui *request.UserInfo) {
	if _, ok := ui.Lookup(logStartKey{}); !ok {
		ui.Set(logStartKey{}, time.Now())
	}
	l.logger.V(1).Info("sending request",
		"method", r.Method, "url", r.URL.String(), "attempt", ui.Attempts())
}

func (l *logPlugin) DidReceive(res *request.Result, _ *request.Parameters, ui *request.UserInfo) {
	if res.Err != nil {
		l.logger.V(1).Info("attempt failed", "attempt", ui.Attempts(), "error", res.Err.Error())
		return
	}
	l.logger.V(1).Info("received response",
		"attempt", ui.Attempts(), "status", res.StatusCode(), "bytes", len(res.Body), "cached", res.Cached)
}

func (l *logPlugin) DidFinish(res *request.Result, p *request.Parameters, ui *request.UserInfo) {
	kv := []interface{}{"method", p.Method(), "attempts", ui.Attempts(), "status", res.StatusCode()}
	if res.Request != nil {
		kv = append(kv, "url", res.Request.URL.String())
	}
	if start, ok := ui.Value(logStartKey{}).(time.Time); ok {
		kv = append(kv, "duration", time.Since(start))
	}
	if res.Err != nil {
		l.logger.Error(res.Err, "request failed", kv...)
		return
	}
	l.logger.Info("request finished", kv...)
}

func (l *logPlugin) WasCancelled(p *request.Parameters, ui *request.UserInfo) {
	l.logger.Info("request cancelled", "method", p.Method(), "attempts", ui.Attempts())
}
