// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/gogama/reqx/request"
)

// Doer is the interface that wraps the basic blocking Do method.
//
// Do dispatches a logical request and waits for its final result. The
// returned error is the Err field of the result. Doer implementations
// must behave substantially the same as Manager.Do.
//
// Any Doer can be converted into a Requester via the Inflate function.
// Every Doer also satisfies stopline.Doer.
type Doer interface {
	Do(ctx context.Context, addr request.Address, p *request.Parameters, ui *request.UserInfo) (*request.Result, error)
}

// Requester is the abstract contract of a request manager: the raw
// asynchronous request primitive, its blocking variant, and connection
// management. Code which sends requests should depend on Requester so a
// substitute can stand in for the Manager in tests. The typed request
// functions Decode, DecodeOptional, Data, JSON, Image and Void are
// built on any Requester.
type Requester interface {
	Doer
	IdleCloser

	// Request dispatches a logical request and returns at once. The
	// callback done receives the final result exactly once, unless the
	// request is withdrawn through the returned Handle. Request
	// implementations must behave substantially the same as
	// Manager.Request.
	Request(ctx context.Context, addr request.Address, p *request.Parameters, ui *request.UserInfo, done func(*request.Result)) *Handle
}

// Get uses the specified Doer to issue a GET to the specified URL.
//
// To make a request with custom headers, use request.NewParameters and
// d.Do.
func Get(ctx context.Context, d Doer, url string) (*request.Result, error) {
	return d.Do(ctx, request.RawURL(url), nil, nil)
}

// Head uses the specified Doer to issue a HEAD to the specified URL.
func Head(ctx context.Context, d Doer, url string) (*request.Result, error) {
	p, err := request.NewParameters(request.WithMethod(http.MethodHead))
	if err != nil {
		return nil, err
	}
	return d.Do(ctx, request.RawURL(url), p, nil)
}

// Post uses the specified Doer to issue a POST to the specified URL.
//
// The body parameter may be nil for an empty body, or may be any of the
// types supported by request.BodyBytes, namely: string; []byte;
// io.Reader; and io.ReadCloser.
func Post(ctx context.Context, d Doer, url, contentType string, body interface{}) (*request.Result, error) {
	p, err := request.NewParameters(
		request.WithMethod(http.MethodPost),
		request.WithHeader("Content-Type", contentType),
		request.WithBody(body),
	)
	if err != nil {
		return nil, err
	}
	return d.Do(ctx, request.RawURL(url), p, nil)
}

// PostForm uses the specified Doer to issue a POST to the specified URL,
// with data's keys and values URL-encoded as the request body.
//
// The Content-Type header is set to application/x-www-form-urlencoded.
func PostForm(ctx context.Context, d Doer, url string, data url.Values) (*request.Result, error) {
	return Post(ctx, d, url, "application/x-www-form-urlencoded", data.Encode())
}

// Inflate converts any non-nil Doer into a Requester. Requests made
// through the Request method of an inflated Doer run Do on a new
// goroutine; their handles cannot withdraw them, but cancelling the
// request context still stops them.
func Inflate(d Doer) Requester {
	if d == nil {
		panic("reqx: nil doer")
	}

	if r, ok := d.(Requester); ok {
		return r
	}

	return &inflated{doer: d}
}

type inflated struct {
	doer   Doer
	nextID uint64
}

func (i *inflated) Do(ctx context.Context, addr request.Address, p *request.Parameters, ui *request.UserInfo) (*request.Result, error) {
	return i.doer.Do(ctx, addr, p, ui)
}

func (i *inflated) Request(ctx context.Context, addr request.Address, p *request.Parameters, ui *request.UserInfo, done func(*request.Result)) *Handle {
	go func() {
		res, err := i.doer.Do(ctx, addr, p, ui)
		if res == nil {
			res = &request.Result{Err: err}
		}
		if done != nil {
			done(res)
		}
	}()
	return NewHandle(atomic.AddUint64(&i.nextID, 1), nil)
}

func (i *inflated) CloseIdleConnections() {
	if ic, ok := i.doer.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}
