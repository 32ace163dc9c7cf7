// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cache provides response caches for the reqx request manager.
//
// A Cache is a plain get/put/remove store keyed by a string derived from
// the outgoing HTTP request with Key. The request manager only consults
// the cache for requests whose cache settings make them cacheable, and
// only for GET and HEAD requests.
//
// Two implementations are provided: NewTTL, an expiring cache, and
// NewLRU, a size-bounded least-recently-used cache.
package cache

import (
	"bytes"
	"io"
	"net/http"
	"time"
)

// A Cache stores responses keyed by request.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type Cache interface {
	// Get returns the entry stored under key, if any.
	Get(key string) (*Entry, bool)
	// Put stores an entry under key, replacing any previous entry.
	Put(key string, e *Entry)
	// Remove deletes the entry stored under key, if any.
	Remove(key string)
}

// An Entry is a cached response.
//
// Entries are shared between readers and must be treated as immutable.
type Entry struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Stored     time.Time
}

// NewEntry captures a response and its already buffered body.
func NewEntry(resp *http.Response, body []byte) *Entry {
	return &Entry{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       append([]byte(nil), body...),
		Stored:     time.Now(),
	}
}

// Response synthesizes an HTTP response for r from the entry. Each call
// returns a new response with its own header map and body reader.
func (e *Entry) Response(r *http.Request) *http.Response {
	return &http.Response{
		Status:        http.StatusText(e.StatusCode),
		StatusCode:    e.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        e.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       r,
	}
}
