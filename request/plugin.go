// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import "net/http"

// A Plugin hooks into the lifecycle of a logical request. Plug-ins are
// held in an ordered list and every hook is invoked in list order.
//
// For a single request attempt the request manager invokes the hooks in
// the order Prepare, WillSend, DidReceive, Verify, DidFinish. Prepare,
// WillSend and DidReceive run once per attempt, Verify and DidFinish
// run once per logical request. WasCancelled runs instead of the
// remaining hooks if the request is cancelled.
//
// Implementations must be safe for concurrent use by multiple
// goroutines, since one plug-in instance typically serves many
// in-flight requests. The request manager never invokes the hooks of one
// plug-in concurrently for the same logical request.
//
// Package plugin provides a no-op Base type to embed when only some of
// the hooks are needed, as well as a selection of built-in plug-ins.
type Plugin interface {
	// Prepare may modify the outgoing HTTP request, or replace it, and
	// returns the request to send. It may also record state in ui.
	//
	// The request handed to the first plug-in is freshly built for each
	// attempt, so its Header may be modified in place.
	Prepare(r *http.Request, p *Parameters, ui *UserInfo) *http.Request

	// WillSend observes the final HTTP request immediately before it
	// is handed to the transport. Cached responses skip WillSend.
	WillSend(r *http.Request, p *Parameters, ui *UserInfo)

	// DidReceive observes the raw result of an attempt, before any
	// retry or stop-the-line decision is made.
	DidReceive(res *Result, p *Parameters, ui *UserInfo)

	// Verify validates the final result. A non-nil error becomes the
	// result's error and stops the verification chain.
	//
	// Verify is only called for results whose transport attempt did
	// not already fail.
	Verify(res *Result, p *Parameters, ui *UserInfo) error

	// DidFinish observes the terminal result of the logical request.
	DidFinish(res *Result, p *Parameters, ui *UserInfo)

	// WasCancelled observes the cancellation of the logical request.
	WasCancelled(p *Parameters, ui *UserInfo)
}
