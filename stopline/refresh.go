// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stopline

import (
	"context"
	"net/http"

	"github.com/gogama/reqx/request"
)

// A RefreshFunc refreshes credentials while traffic is stopped. It
// receives the Doer of the recovery action together with the
// parameters, result and UserInfo of the triggering request.
type RefreshFunc func(ctx context.Context, d Doer, p *request.Parameters, res *request.Result, ui *request.UserInfo) error

type refresh struct {
	fn    RefreshFunc
	codes map[int]bool
}

// Refresh constructs a Policy which stops the line whenever an attempt
// receives a response whose status code is one of codes, 401 if none
// are given. The recovery action calls fn. If fn succeeds, the
// triggering request is replayed; otherwise it completes with its
// original result.
func Refresh(fn RefreshFunc, codes ...int) Policy {
	if fn == nil {
		panic("reqx/stopline: nil refresh func")
	}
	if len(codes) == 0 {
		codes = []int{http.StatusUnauthorized}
	}
	r := &refresh{fn: fn, codes: make(map[int]bool, len(codes))}
	for _, code := range codes {
		r.codes[code] = true
	}
	return r
}

func (r *refresh) Verify(res *request.Result, _ *request.Parameters, _ *request.UserInfo) Decision {
	if r.codes[res.StatusCode()] {
		return StopTheLine
	}
	return PassOver
}

func (r *refresh) Action(ctx context.Context, d Doer, p *request.Parameters, res *request.Result, ui *request.UserInfo, done func(Outcome)) {
	if err := r.fn(ctx, d, p, res, ui); err != nil {
		done(UseOriginal())
		return
	}
	done(RetryOutcome())
}
