// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/reqx/request"
	"github.com/gogama/reqx/transient"
)

// A Decider decides whether to retry a failed attempt. The result of
// the attempt is given in res, and ui carries the attempt count.
//
// Implementations of Decider must be safe for concurrent use by multiple
// goroutines.
//
// This package provides several Decider implementations, as well as the
// DeciderFunc adapter and combinators, which together can be composed
// into arbitrarily complex decisions.
type Decider interface {
	Decide(res *request.Result, ui *request.UserInfo) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. Every DeciderFunc is also a Decider.
//
// The DeciderFunc type is also the building block for creating
// composable decision rules using And and Or.
type DeciderFunc func(res *request.Result, ui *request.UserInfo) bool

// DefaultDecider is the default retry decider. It retries responses
// with status codes 429, 502, 503 and 504, and transient errors.
var DefaultDecider = StatusCode(429, 502, 503, 504).Or(TransientErr)

// TransientErr is a decider that returns true if the attempt ended in
// a transient error, as categorized by the transient package.
var TransientErr DeciderFunc = transientErr

// Decide calls f(res, ui).
func (f DeciderFunc) Decide(res *request.Result, ui *request.UserInfo) bool {
	return f(res, ui)
}

// And composes two deciders into a new decider which returns true if
// both sub-deciders return true, and false otherwise.
//
// The composite decider short-circuits: g is only called if f returns
// true.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(res *request.Result, ui *request.UserInfo) bool {
		return f(res, ui) && g(res, ui)
	}
}

// Or composes two deciders into a new decider which returns true if
// either of the two sub-deciders returns true, and false if they both
// return false.
//
// The composite decider short-circuits: g is only called if f returns
// false.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(res *request.Result, ui *request.UserInfo) bool {
		return f(res, ui) || g(res, ui)
	}
}

// Times constructs a decider which allows up to n retries, that is up
// to n+1 attempts in total.
func Times(n int) DeciderFunc {
	return func(_ *request.Result, ui *request.UserInfo) bool {
		return ui.Attempts() <= n
	}
}

// Before constructs a decider which allows retries only while less than
// duration d has elapsed since the first attempt of the logical request
// started.
func Before(d time.Duration) DeciderFunc {
	return func(_ *request.Result, ui *request.UserInfo) bool {
		return ui.Elapsed() < d
	}
}

// StatusCode constructs a decider allowing retry if the attempt
// received a response whose status code is one of the listed codes.
func StatusCode(ss ...int) DeciderFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(res *request.Result, _ *request.UserInfo) bool {
		code := res.StatusCode()
		for _, s := range ss2 {
			if code == s {
				return true
			}
		}
		return false
	}
}

func transientErr(res *request.Result, _ *request.UserInfo) bool {
	return res != nil && transient.Is(res.Err)
}
