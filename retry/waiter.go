// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math/rand"
	"sync"
	"time"

	"github.com/gogama/reqx/request"
)

// A Waiter specifies how long to wait before retrying a failed attempt.
//
// Implementations of Waiter must be safe for concurrent use by multiple
// goroutines.
//
// This package provides two Waiter implementations, for fixed and
// exponential backoff.
type Waiter interface {
	Wait(res *request.Result, ui *request.UserInfo) time.Duration
}

// DefaultWaiter is the default retry wait policy. It uses a jittered
// exponential backoff formula with a base wait of 50 milliseconds and
// a maximum wait of 1 second.
var DefaultWaiter = NewExpWaiter(50*time.Millisecond, 1*time.Second, time.Now())

// NewFixedWaiter constructs a Waiter always returning the same
// duration.
func NewFixedWaiter(d time.Duration) Waiter {
	return fixedWaiter(d)
}

type fixedWaiter time.Duration

func (w fixedWaiter) Wait(_ *request.Result, _ *request.UserInfo) time.Duration {
	return time.Duration(w)
}

// NewExpWaiter constructs a Waiter implementing an exponential backoff
// formula with optional jitter.
//
// The formula implemented is the "full jitter" approach described in
// https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter/.
//
// The base wait must be positive and the maximum wait must be at least
// base. The exponent is the number of attempts made so far, less one,
// so the first retry waits at most base.
//
// If jitter is nil, no jitter is applied and the wait is deterministic.
// Otherwise jitter is one of time.Time, int, int64, rand.Source or
// *rand.Rand, used to seed or provide the random number generator.
func NewExpWaiter(base, max time.Duration, jitter interface{}) Waiter {
	if base < 1 {
		panic("reqx/retry: base must be positive")
	}
	if max < base {
		panic("reqx/retry: max must be at least base")
	}
	r := jitterToRand(jitter)
	return &jitterExpWaiter{
		base: base,
		max:  max,
		rand: r,
	}
}

type jitterExpWaiter struct {
	base time.Duration
	max  time.Duration
	rand *rand.Rand
	lock sync.Mutex
}

func (w *jitterExpWaiter) Wait(_ *request.Result, ui *request.UserInfo) time.Duration {
	return w.wait(ui.Attempts() - 1)
}

func (w *jitterExpWaiter) wait(n int) time.Duration {
	if n < 0 {
		n = 0
	}
	exp := int64(1) << uint(n)
	if exp < 1 || n > 62 {
		exp = 1<<63 - 1
	}

	ceil := int64(w.base) * exp
	if ceil/exp != int64(w.base) || ceil < int64(w.base) || int64(w.max) < ceil {
		ceil = int64(w.max)
	}

	duration := ceil
	if w.rand != nil && ceil > 0 {
		w.lock.Lock()
		defer w.lock.Unlock()
		duration = w.rand.Int63n(ceil)
	}

	return time.Duration(duration)
}

func jitterToRand(jitter interface{}) *rand.Rand {
	var s rand.Source
	switch j := jitter.(type) {
	case nil:
		return nil
	case time.Time:
		s = rand.NewSource(j.UnixNano())
	case int:
		s = rand.NewSource(int64(j))
	case int64:
		s = rand.NewSource(j)
	case *rand.Rand:
		if j == nil {
			panic("reqx/retry: jitter may not be a typed nil")
		}
		return j
	case rand.Source:
		s = j
	default:
		panic("reqx/retry: invalid jitter type")
	}
	return rand.New(s)
}
