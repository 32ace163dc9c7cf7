// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"time"

	"golang.org/x/net/http/httpguts"
)

// A Dispatcher runs completion callbacks, for example on a dedicated
// goroutine or worker pool. It stands in for a "response queue".
//
// A nil Dispatcher runs each callback directly on the goroutine which
// completed the request.
type Dispatcher func(func())

// A TaskKind says how the transport attempt should treat the body
// streams of a request.
type TaskKind int

const (
	// Plain is an ordinary request with small, buffered bodies.
	Plain TaskKind = iota
	// Upload is a request whose progress is measured on the request
	// body as it is written to the transport.
	Upload
	// Download is a request whose progress is measured on the response
	// body as it is read from the transport.
	Download
)

// A CachePolicy says whether a request may be answered from the
// response cache installed in the request manager.
type CachePolicy int

const (
	// CacheDefault never reads from the cache.
	CacheDefault CachePolicy = iota
	// CacheReturnElseLoad returns a cached response if one exists and
	// otherwise loads from the network.
	CacheReturnElseLoad
	// CacheReloadIgnoringLocal always loads from the network but may
	// still store the response.
	CacheReloadIgnoringLocal
	// CacheOnly returns a cached response if one exists and otherwise
	// fails with httperr.ErrCacheMiss without touching the network.
	CacheOnly
)

// A StoragePolicy says whether a successful response may be written to
// the response cache.
type StoragePolicy int

const (
	// StoreAllowed permits storing successful responses.
	StoreAllowed StoragePolicy = iota
	// StoreNotAllowed forbids storing responses.
	StoreNotAllowed
)

// CacheSettings couples a CachePolicy and a StoragePolicy. The zero
// value neither reads from nor writes to the cache in practice, since
// CacheDefault requests are never considered cacheable.
type CacheSettings struct {
	Policy  CachePolicy
	Storage StoragePolicy
}

// Cacheable reports whether the settings let the request interact with
// a response cache at all.
func (s CacheSettings) Cacheable() bool {
	return s.Policy != CacheDefault
}

// Parameters describe one logical HTTP request: its method, headers,
// body and timeout, how it interacts with the response cache, which
// plug-ins run around it, how completion callbacks are dispatched, and
// what kind of transport task carries it.
//
// Parameters are immutable once constructed. Accessors return copies of
// reference-typed fields, and the composition methods With and Merge
// return new Parameters, leaving the receiver untouched. A nil
// *Parameters is valid and describes a plain GET request.
type Parameters struct {
	set        fieldSet
	method     string
	header     http.Header
	body       []byte
	timeout    time.Duration
	cache      CacheSettings
	plugins    []Plugin
	seeds      map[interface{}]interface{}
	dispatcher Dispatcher
	kind       TaskKind
	progress   func(float64)
}

type fieldSet uint

const (
	setMethod fieldSet = 1 << iota
	setBody
	setTimeout
	setCache
	setDispatcher
	setKind
)

// An Option sets one aspect of new Parameters.
type Option func(*Parameters) error

// NewParameters returns new Parameters with the given options applied
// in order. Without options the Parameters describe a plain GET request
// with no headers and no body.
func NewParameters(opts ...Option) (*Parameters, error) {
	p := &Parameters{
		method: http.MethodGet,
		header: make(http.Header),
	}
	return p.apply(opts)
}

// With returns a copy of p with the given options applied in order.
func (p *Parameters) With(opts ...Option) (*Parameters, error) {
	return p.clone().apply(opts)
}

// Merge returns the composition of p and q. Fields explicitly set on q
// replace those of p, q's headers are overlaid on p's, q's plug-ins are
// appended after p's, and q's user info seeds are overlaid on p's.
//
// Neither p nor q is modified.
func (p *Parameters) Merge(q *Parameters) *Parameters {
	r := p.clone()
	if q == nil {
		return r
	}
	if q.set&setMethod != 0 {
		r.method = q.method
	}
	if q.set&setBody != 0 {
		r.body = q.body
	}
	if q.set&setTimeout != 0 {
		r.timeout = q.timeout
	}
	if q.set&setCache != 0 {
		r.cache = q.cache
	}
	if q.set&setDispatcher != 0 {
		r.dispatcher = q.dispatcher
	}
	if q.set&setKind != 0 {
		r.kind = q.kind
		r.progress = q.progress
	}
	for k, vs := range q.header {
		r.header[k] = append([]string(nil), vs...)
	}
	r.plugins = append(r.plugins, q.plugins...)
	for k, v := range q.seeds {
		if r.seeds == nil {
			r.seeds = make(map[interface{}]interface{}, len(q.seeds))
		}
		r.seeds[k] = v
	}
	r.set |= q.set
	return r
}

func (p *Parameters) clone() *Parameters {
	r := &Parameters{
		method: http.MethodGet,
		header: make(http.Header),
	}
	if p == nil {
		return r
	}
	*r = *p
	r.header = p.header.Clone()
	if r.header == nil {
		r.header = make(http.Header)
	}
	if p.plugins != nil {
		r.plugins = append([]Plugin(nil), p.plugins...)
	}
	if p.seeds != nil {
		r.seeds = make(map[interface{}]interface{}, len(p.seeds))
		for k, v := range p.seeds {
			r.seeds[k] = v
		}
	}
	return r
}

func (p *Parameters) apply(opts []Option) (*Parameters, error) {
	for _, opt := range opts {
		if opt == nil {
			panic("reqx/request: nil option")
		}
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Method returns the HTTP method. It is never empty.
func (p *Parameters) Method() string {
	if p == nil || p.method == "" {
		return http.MethodGet
	}
	return p.method
}

// Header returns a copy of the request headers.
func (p *Parameters) Header() http.Header {
	if p == nil {
		return make(http.Header)
	}
	return p.header.Clone()
}

// Body returns a copy of the pre-buffered request body, or nil if there
// is none.
func (p *Parameters) Body() []byte {
	if p == nil || p.body == nil {
		return nil
	}
	return append([]byte(nil), p.body...)
}

// Timeout returns the per-attempt timeout. Zero means the request
// manager's timeout policy applies.
func (p *Parameters) Timeout() time.Duration {
	if p == nil {
		return 0
	}
	return p.timeout
}

// Cache returns the cache settings.
func (p *Parameters) Cache() CacheSettings {
	if p == nil {
		return CacheSettings{}
	}
	return p.cache
}

// Plugins returns a copy of the request-level plug-in list.
func (p *Parameters) Plugins() []Plugin {
	if p == nil || p.plugins == nil {
		return nil
	}
	return append([]Plugin(nil), p.plugins...)
}

// Dispatcher returns the completion dispatcher, which may be nil.
func (p *Parameters) Dispatcher() Dispatcher {
	if p == nil {
		return nil
	}
	return p.dispatcher
}

// Kind returns the task kind and the optional progress callback.
func (p *Parameters) Kind() (TaskKind, func(float64)) {
	if p == nil {
		return Plain, nil
	}
	return p.kind, p.progress
}

// Seed copies the user info seed values of p into ui, without
// overwriting keys already present in ui.
func (p *Parameters) Seed(ui *UserInfo) {
	if p == nil {
		return
	}
	for k, v := range p.seeds {
		ui.setDefault(k, v)
	}
}

// Build creates the net/http request for one attempt at u, with the
// given context. Every call returns a new request with its own copy of
// the headers, so plug-ins may modify them freely.
func (p *Parameters) Build(ctx context.Context, u *urlpkg.URL) (*http.Request, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	if u == nil {
		return nil, errors.New("reqx/request: nil URL")
	}
	r, err := http.NewRequestWithContext(ctx, p.Method(), u.String(), nil)
	if err != nil {
		return nil, err
	}
	r.URL = u
	r.Host = u.Host
	r.Header = p.Header()
	if p != nil && len(p.body) > 0 {
		body := p.body
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		r.ContentLength = int64(len(body))
	}
	return r, nil
}

const nilCtxMsg = "reqx/request: nil context"

// WithMethod sets the HTTP method. An empty method means GET.
func WithMethod(method string) Option {
	return func(p *Parameters) error {
		if method == "" {
			method = http.MethodGet
		}
		if !httpguts.ValidHeaderFieldName(method) {
			return fmt.Errorf("reqx/request: invalid method %q", method)
		}
		p.method = method
		p.set |= setMethod
		return nil
	}
}

// WithHeader sets the header key to value, replacing any existing
// values for key.
func WithHeader(key, value string) Option {
	return func(p *Parameters) error {
		if !httpguts.ValidHeaderFieldName(key) {
			return fmt.Errorf("reqx/request: invalid header name %q", key)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return fmt.Errorf("reqx/request: invalid value for header %q", key)
		}
		p.header.Set(key, value)
		return nil
	}
}

// WithHeaders overlays all of h onto the request headers.
func WithHeaders(h http.Header) Option {
	return func(p *Parameters) error {
		for k, vs := range h {
			if !httpguts.ValidHeaderFieldName(k) {
				return fmt.Errorf("reqx/request: invalid header name %q", k)
			}
			p.header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
		}
		return nil
	}
}

// WithBody sets the request body. The body may be nil, a string, a
// []byte, an io.Reader or an io.ReadCloser, as accepted by BodyBytes.
func WithBody(body interface{}) Option {
	return func(p *Parameters) error {
		b, err := BodyBytes(body)
		if err != nil {
			return err
		}
		p.body = b
		p.set |= setBody
		return nil
	}
}

// WithJSONBody sets the request body to the JSON encoding of v, and the
// Content-Type header to application/json.
func WithJSONBody(v interface{}) Option {
	return func(p *Parameters) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		p.body = b
		p.set |= setBody
		p.header.Set("Content-Type", "application/json")
		return nil
	}
}

// WithTimeout sets the per-attempt timeout. It must not be negative.
func WithTimeout(d time.Duration) Option {
	return func(p *Parameters) error {
		if d < 0 {
			return errors.New("reqx/request: negative timeout")
		}
		p.timeout = d
		p.set |= setTimeout
		return nil
	}
}

// WithCache sets the cache settings.
func WithCache(policy CachePolicy, storage StoragePolicy) Option {
	return func(p *Parameters) error {
		p.cache = CacheSettings{Policy: policy, Storage: storage}
		p.set |= setCache
		return nil
	}
}

// WithPlugins appends plug-ins to the request-level plug-in list.
func WithPlugins(plugins ...Plugin) Option {
	return func(p *Parameters) error {
		for _, pl := range plugins {
			if pl == nil {
				return errors.New("reqx/request: nil plugin")
			}
		}
		p.plugins = append(p.plugins, plugins...)
		return nil
	}
}

// WithUserInfo seeds the UserInfo of each request made with these
// Parameters with key and value.
func WithUserInfo(key, value interface{}) Option {
	return func(p *Parameters) error {
		if key == nil {
			return errors.New(nilKeyMsg)
		}
		if p.seeds == nil {
			p.seeds = make(map[interface{}]interface{})
		}
		p.seeds[key] = value
		return nil
	}
}

// WithDispatcher sets the completion dispatcher.
func WithDispatcher(d Dispatcher) Option {
	return func(p *Parameters) error {
		p.dispatcher = d
		p.set |= setDispatcher
		return nil
	}
}

// WithKind sets the task kind and an optional progress callback, which
// receives the completed fraction, between 0 and 1, of the measured
// body. Progress callbacks are purely observational.
func WithKind(kind TaskKind, progress func(float64)) Option {
	return func(p *Parameters) error {
		if kind < Plain || kind > Download {
			return fmt.Errorf("reqx/request: invalid task kind %d", kind)
		}
		p.kind = kind
		p.progress = progress
		p.set |= setKind
		return nil
	}
}
