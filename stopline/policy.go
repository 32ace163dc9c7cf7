// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stopline

import (
	"context"

	"github.com/gogama/reqx/request"
)

// A Decision is the classification of one completed attempt by a
// Policy's Verify method.
type Decision int

const (
	// PassOver lets the attempt's result continue through the normal
	// completion path.
	PassOver Decision = iota
	// StopTheLine freezes all traffic and starts the recovery action.
	StopTheLine
	// Retry replays the request without freezing.
	Retry
)

func (d Decision) String() string {
	switch d {
	case PassOver:
		return "passOver"
	case StopTheLine:
		return "stopTheLine"
	case Retry:
		return "retry"
	default:
		return "unknown"
	}
}

// An OutcomeKind identifies how a recovery action resolved the request
// which triggered it.
type OutcomeKind int

const (
	// OutcomeUseOriginal completes the triggering request with its own
	// result.
	OutcomeUseOriginal OutcomeKind = iota
	// OutcomePassOver completes the triggering request with a
	// substitute result.
	OutcomePassOver
	// OutcomeRetry replays the triggering request.
	OutcomeRetry
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeUseOriginal:
		return "useOriginal"
	case OutcomePassOver:
		return "passOver"
	case OutcomeRetry:
		return "retry"
	default:
		return "unknown"
	}
}

// An Outcome is the resolution reported by a recovery action.
type Outcome struct {
	kind OutcomeKind
	res  *request.Result
}

// UseOriginal returns an Outcome completing the triggering request with
// its original result.
func UseOriginal() Outcome {
	return Outcome{kind: OutcomeUseOriginal}
}

// PassOverWith returns an Outcome completing the triggering request
// with res instead of its original result.
func PassOverWith(res *request.Result) Outcome {
	if res == nil {
		panic("reqx/stopline: nil result")
	}
	return Outcome{kind: OutcomePassOver, res: res}
}

// RetryOutcome returns an Outcome replaying the triggering request once
// traffic resumes.
func RetryOutcome() Outcome {
	return Outcome{kind: OutcomeRetry}
}

// Kind returns the kind of the outcome.
func (o Outcome) Kind() OutcomeKind {
	return o.kind
}

// Result returns the substitute result of a PassOverWith outcome, or
// nil.
func (o Outcome) Result() *request.Result {
	return o.res
}

// A Doer sends requests synchronously. The request manager passed to a
// recovery action is a Doer configured without a stop-the-line policy.
type Doer interface {
	Do(ctx context.Context, addr request.Address, p *request.Parameters, ui *request.UserInfo) (*request.Result, error)
}

// A Policy is a stop-the-line policy.
//
// Verify may be called concurrently for different requests. Action is
// called on its own goroutine, at most once at a time per request
// manager, and must call done exactly once. Calls to done after the
// first are ignored.
type Policy interface {
	Verify(res *request.Result, p *request.Parameters, ui *request.UserInfo) Decision
	Action(ctx context.Context, d Doer, p *request.Parameters, res *request.Result, ui *request.UserInfo, done func(Outcome))
}
