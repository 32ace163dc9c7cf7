// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"net/http"
)

// A Transport implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package. It is the
// unit of work over which the request manager orchestrates attempts.
type Transport interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// Transport.
	//
	// The Do method must follow the contract documented on the GoLang
	// standard library http.Client from the net/http package. In
	// particular it must stop promptly, returning an error, once the
	// request context is done.
	Do(r *http.Request) (*http.Response, error)
}

// The TransportFunc type is an adapter to allow the use of ordinary
// functions as transports.
type TransportFunc func(r *http.Request) (*http.Response, error)

// Do calls f(r).
func (f TransportFunc) Do(r *http.Request) (*http.Response, error) {
	return f(r)
}

// An IdleCloser implements a CloseIdleConnections method in the same
// manner as the GoLang standard library http.Client from the net/http
// package.
type IdleCloser interface {
	// CloseIdleConnections closes any connections which were previously
	// connected from previous requests but are now sitting idle in a
	// "keep-alive" state. It does not interrupt any connections
	// currently in use.
	CloseIdleConnections()
}
