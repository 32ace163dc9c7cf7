// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	urlpkg "net/url"
	"path"
	"strings"
)

// An Address produces the URL of a logical request.
//
// The request manager calls URL once per request attempt. A URL error
// is terminal: it is reported to the caller without any retry.
type Address interface {
	URL() (*urlpkg.URL, error)
}

// RawURL is an Address given as a URL string.
type RawURL string

// URL parses the raw URL.
func (raw RawURL) URL() (*urlpkg.URL, error) {
	u, err := urlpkg.Parse(string(raw))
	if err != nil {
		return nil, err
	}
	u.Host = removeEmptyPort(u.Host)
	return u, nil
}

// An Endpoint is an Address composed of a base URL, a path relative to
// the base URL, and query parameters.
type Endpoint struct {
	// Base is the absolute base URL, for example "https://api.example.com/v2".
	Base string
	// Path is joined onto the path of Base.
	Path string
	// Query is encoded into the URL query string, replacing any query
	// present on Base.
	Query urlpkg.Values
}

// URL joins the endpoint's parts into a URL.
func (e Endpoint) URL() (*urlpkg.URL, error) {
	if e.Base == "" {
		return nil, errors.New("reqx/request: empty endpoint base")
	}
	u, err := RawURL(e.Base).URL()
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, errors.New("reqx/request: endpoint base is not absolute")
	}
	if e.Path != "" {
		trailing := strings.HasSuffix(e.Path, "/")
		u.Path = path.Join("/", u.Path, e.Path)
		if trailing && !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		u.RawPath = ""
	}
	if e.Query != nil {
		u.RawQuery = e.Query.Encode()
	}
	return u, nil
}

// The AddressFunc type is an adapter to allow the use of ordinary
// functions as addresses.
type AddressFunc func() (*urlpkg.URL, error)

// URL calls f().
func (f AddressFunc) URL() (*urlpkg.URL, error) {
	return f()
}

// hasPort is lifted verbatim from net/http/http.go
//
// Given a string of the form "host", "host:port", or "[ipv6::address]:port",
// return true if the string includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort is lifted verbatim from net/http/http.go
//
// removeEmptyPort strips the empty port in ":port" to ""
// as mandated by RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
