// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"

	"github.com/gogama/reqx/transient"
)

// A Result is the raw outcome of a request attempt or, once final, of a
// logical request.
//
// Either Response or Err, or both, are non-nil on a result produced by
// an attempt. Both are non-nil if the response arrived but its body
// could not be read, or if a plug-in rejected the response in Verify.
type Result struct {
	// Request is the HTTP request sent on the attempt which produced
	// this result. It is nil if the request could not be built.
	Request *http.Request

	// Response is the HTTP response received. Its Body has already been
	// read and closed; use the Body field instead.
	Response *http.Response

	// Body is the fully buffered response body.
	Body []byte

	// Err is the error, if any. Transport errors have the type
	// *url.Error.
	Err error

	// Cached is true if the result was served from the response cache
	// without a network round trip.
	Cached bool
}

// StatusCode returns the status code of the response, or 0 if there is
// no response.
func (res *Result) StatusCode() int {
	if res == nil || res.Response == nil {
		return 0
	}
	return res.Response.StatusCode
}

// Header returns the response headers, or a nil header if there is no
// response. A nil header is safe for read-only operations.
func (res *Result) Header() http.Header {
	if res == nil || res.Response == nil {
		var nilHeader http.Header
		return nilHeader
	}
	return res.Response.Header
}

// Timeout indicates whether Err is a timeout.
func (res *Result) Timeout() bool {
	return res != nil && transient.Categorize(res.Err) == transient.Timeout
}

// OK indicates whether the result has a response and no error.
func (res *Result) OK() bool {
	return res != nil && res.Err == nil && res.Response != nil
}
