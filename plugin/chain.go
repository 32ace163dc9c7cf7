// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"net/http"
	"reflect"

	"github.com/gogama/reqx/request"
)

// A Chain is an ordered list of plug-ins which is itself a plug-in.
// Every hook invokes the corresponding hook of each plug-in in list
// order.
type Chain []Plugin

// Merge returns the union of the global and local plug-in lists: all
// global plug-ins in order, followed by the local plug-ins which are
// not already in the result. Plug-ins are compared by identity, so a
// plug-in instance installed both globally and on a request runs once.
// Plug-ins whose values are not comparable, such as structs holding a
// slice in an interface field, are never considered duplicates.
func Merge(global, local []Plugin) Chain {
	c := make(Chain, 0, len(global)+len(local))
	for _, pl := range global {
		c = c.add(pl)
	}
	for _, pl := range local {
		c = c.add(pl)
	}
	return c
}

func (c Chain) add(pl Plugin) Chain {
	if pl == nil {
		panic("reqx/plugin: nil plugin")
	}
	v := reflect.ValueOf(pl)
	if !v.Comparable() {
		return append(c, pl)
	}
	for _, existing := range c {
		w := reflect.ValueOf(existing)
		if w.Type() == v.Type() && w.Comparable() && existing == pl {
			return c
		}
	}
	return append(c, pl)
}

// Prepare threads r through the Prepare hook of each plug-in. A plug-in
// returning nil leaves the request of the previous plug-in in place.
func (c Chain) Prepare(r *http.Request, p *request.Parameters, ui *request.UserInfo) *http.Request {
	for _, pl := range c {
		if r2 := pl.Prepare(r, p, ui); r2 != nil {
			r = r2
		}
	}
	return r
}

// WillSend runs the WillSend hook of each plug-in.
func (c Chain) WillSend(r *http.Request, p *request.Parameters, ui *request.UserInfo) {
	for _, pl := range c {
		pl.WillSend(r, p, ui)
	}
}

// DidReceive runs the DidReceive hook of each plug-in.
func (c Chain) DidReceive(res *request.Result, p *request.Parameters, ui *request.UserInfo) {
	for _, pl := range c {
		pl.DidReceive(res, p, ui)
	}
}

// Verify runs the Verify hook of each plug-in until one returns an
// error, and returns that error.
func (c Chain) Verify(res *request.Result, p *request.Parameters, ui *request.UserInfo) error {
	for _, pl := range c {
		if err := pl.Verify(res, p, ui); err != nil {
			return err
		}
	}
	return nil
}

// DidFinish runs the DidFinish hook of each plug-in.
func (c Chain) DidFinish(res *request.Result, p *request.Parameters, ui *request.UserInfo) {
	for _, pl := range c {
		pl.DidFinish(res, p, ui)
	}
}

// WasCancelled runs the WasCancelled hook of each plug-in.
func (c Chain) WasCancelled(p *request.Parameters, ui *request.UserInfo) {
	for _, pl := range c {
		pl.WasCancelled(p, ui)
	}
}
