// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"github.com/gogama/reqx/request"
)

// A Retrier decides, after each attempt of a logical request, whether
// to retry it.
//
// The request manager consults the Retrier once per attempt, after the
// stop-the-line policy has passed the attempt over and before plug-in
// verification. The attempt count so far is available from ui.
//
// Implementations of Retrier must be safe for concurrent use by
// multiple goroutines, but are never called concurrently for the same
// logical request.
type Retrier interface {
	Retry(res *request.Result, p *request.Parameters, ui *request.UserInfo) Decision
}

// The RetrierFunc type is an adapter to allow the use of ordinary
// functions as retriers.
type RetrierFunc func(res *request.Result, p *request.Parameters, ui *request.UserInfo) Decision

// Retry calls f(res, p, ui).
func (f RetrierFunc) Retry(res *request.Result, p *request.Parameters, ui *request.UserInfo) Decision {
	return f(res, p, ui)
}

// DefaultAttempts is the total number of attempts, including the
// initial attempt, allowed by DefaultRetrier.
const DefaultAttempts = 5

// DefaultRetrier is the default retry policy. It makes up to
// DefaultAttempts attempts of responses and errors accepted by
// DefaultDecider, waiting according to DefaultWaiter, and passes the
// final result through unchanged.
var DefaultRetrier = New(DefaultAttempts, DefaultDecider, DefaultWaiter, Pass)

// Never is a retry policy that never retries.
var Never Retrier = RetrierFunc(func(_ *request.Result, _ *request.Parameters, _ *request.UserInfo) Decision {
	return Pass
})

type retrier struct {
	attempts int
	decider  Decider
	waiter   Waiter
	fallback Decision
}

// New constructs a Retrier which allows up to attempts attempts in
// total, including the initial attempt.
//
// After each attempt, if decider rejects the result the decision is
// Pass. Otherwise, if the attempt limit is not yet reached, the decision
// is to retry after the wait given by waiter. Once the attempt limit is
// reached, the decision is fallback.
//
// New panics if attempts is less than one, if decider or waiter is nil,
// or if fallback is a retry decision.
func New(attempts int, decider Decider, waiter Waiter, fallback Decision) Retrier {
	if attempts < 1 {
		panic("reqx/retry: attempts must be at least one")
	}
	if decider == nil {
		panic("reqx/retry: nil decider")
	}
	if waiter == nil {
		panic("reqx/retry: nil waiter")
	}
	if fallback.Retry() {
		panic("reqx/retry: fallback may not retry")
	}
	return &retrier{
		attempts: attempts,
		decider:  decider,
		waiter:   waiter,
		fallback: fallback,
	}
}

func (r *retrier) Retry(res *request.Result, _ *request.Parameters, ui *request.UserInfo) Decision {
	if !r.decider.Decide(res, ui) {
		return Pass
	}
	if ui.Attempts() >= r.attempts {
		return r.fallback
	}
	return After(r.waiter.Wait(res, ui))
}
