// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the data model shared by the reqx request
manager, its plug-ins and its retry and stop-the-line policies:
Parameters (describes one logical request), UserInfo (request-scoped
mutable state), Result (the raw outcome of a request) and Address
(produces the URL to request).

Parameters describe how to make a logical HTTP request, which may
result in several lower-level net/http request attempts if a retry or a
stop-the-line recovery is needed. Parameters are immutable once
constructed. Use With or Merge to derive new Parameters:

	p, err := request.NewParameters(
		request.WithMethod("POST"),
		request.WithJSONBody(order),
		request.WithTimeout(10*time.Second))
	...
	p2, err := p.With(request.WithHeader("X-Trace", "on"))
	...

UserInfo is the one piece of mutable per-request state. Plug-ins and
policies store correlation data in it with Set and read it back with
Value; the request manager maintains its attempt counters.

Result is the outcome handed to plug-ins, policies and callers. It holds
the HTTP request that was sent, the HTTP response received, the fully
buffered body and the error, if any.
*/
package request
