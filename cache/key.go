// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"net/http"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// varyHeaders are the request headers which participate in the cache
// key, in addition to the method and URL.
var varyHeaders = []string{"Accept", "Accept-Encoding", "Accept-Language", "Authorization"}

// Key derives the cache key of an outgoing request from its method, its
// URL and a fixed set of content-negotiation and credential headers.
func Key(r *http.Request) string {
	d := xxhash.New()
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	_, _ = d.WriteString(method)
	_, _ = d.WriteString(" ")
	_, _ = d.WriteString(r.URL.String())
	for _, h := range varyHeaders {
		for _, v := range r.Header.Values(h) {
			_, _ = d.WriteString("\n")
			_, _ = d.WriteString(h)
			_, _ = d.WriteString(":")
			_, _ = d.WriteString(v)
		}
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

// Method reports whether requests with method m may be answered from
// or stored in a cache.
func Method(m string) bool {
	return m == "" || m == http.MethodGet || m == http.MethodHead
}
