// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gogama/reqx/request"
)

// RequestIDHeader is the header set by the RequestID plug-in.
const RequestIDHeader = "X-Request-Id"

// RequestIDKey is the UserInfo key under which RequestID records the
// identifier of the logical request.
type RequestIDKey struct{}

type requestID struct {
	Base
}

// RequestID constructs a plug-in which tags each logical request with a
// random UUID in the X-Request-Id header. All attempts of one logical
// request, including retries and replays after a stop-the-line
// recovery, carry the same identifier. A header already present on the
// request parameters is kept and recorded instead.
func RequestID() Plugin {
	return requestID{}
}

func (requestID) Prepare(r *http.Request, _ *request.Parameters, ui *request.UserInfo) *http.Request {
	id, _ := ui.Value(RequestIDKey{}).(string)
	if id == "" {
		id = r.Header.Get(RequestIDHeader)
	}
	if id == "" {
		id = uuid.NewString()
	}
	ui.Set(RequestIDKey{}, id)
	r.Header.Set(RequestIDHeader, id)
	return r
}
