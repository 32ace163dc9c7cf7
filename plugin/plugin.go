// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package plugin provides the plug-in pipeline of the reqx request manager
and a set of ready-made plug-ins.

A plug-in implements request.Plugin, hooking into every stage of a
logical request. Embed Base to implement only the hooks you need:

	type traceHeader struct {
		plugin.Base
	}

	func (traceHeader) Prepare(r *http.Request, _ *request.Parameters, _ *request.UserInfo) *http.Request {
		r.Header.Set("X-Trace", "on")
		return r
	}

Install plug-ins on the request manager to apply them to every request,
or on individual request Parameters. The request manager runs the union
of both lists, manager plug-ins first, as a Chain. Every hook of a Chain
runs in list order.

Built-in plug-ins cover bearer-token authentication (Bearer), status
code validation (StatusCodes, AcceptStatus), request identifiers
(RequestID), logging (Log), Prometheus metrics (NewMetrics), JSON schema
validation (Schema) and client-side rate limiting (Limit).
*/
package plugin

import (
	"net/http"

	"github.com/gogama/reqx/request"
)

// Plugin is an alias for request.Plugin.
type Plugin = request.Plugin

// Base implements every Plugin hook as a no-op. Embed it in a plug-in
// type to implement only some of the hooks.
type Base struct{}

// Prepare returns r unchanged.
func (Base) Prepare(r *http.Request, _ *request.Parameters, _ *request.UserInfo) *http.Request {
	return r
}

// WillSend does nothing.
func (Base) WillSend(_ *http.Request, _ *request.Parameters, _ *request.UserInfo) {}

// DidReceive does nothing.
func (Base) DidReceive(_ *request.Result, _ *request.Parameters, _ *request.UserInfo) {}

// Verify accepts every result.
func (Base) Verify(_ *request.Result, _ *request.Parameters, _ *request.UserInfo) error {
	return nil
}

// DidFinish does nothing.
func (Base) DidFinish(_ *request.Result, _ *request.Parameters, _ *request.UserInfo) {}

// WasCancelled does nothing.
func (Base) WasCancelled(_ *request.Parameters, _ *request.UserInfo) {}
