// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"fmt"
	"time"
)

type kind int

const (
	pass kind = iota
	fail
	now
	after
)

// A Decision is the verdict of a Retrier on one attempt. The zero value
// is Pass.
type Decision struct {
	kind  kind
	delay time.Duration
	err   error
}

var (
	// Pass means do not retry and deliver the attempt's result
	// unchanged.
	Pass = Decision{kind: pass}

	// Now means retry immediately.
	Now = Decision{kind: now}
)

// After returns a Decision to retry once d has elapsed. A non-positive
// d is equivalent to Now.
func After(d time.Duration) Decision {
	if d <= 0 {
		return Now
	}
	return Decision{kind: after, delay: d}
}

// Fail returns a Decision not to retry, delivering err in place of the
// attempt's error.
func Fail(err error) Decision {
	if err == nil {
		panic("reqx/retry: nil error")
	}
	return Decision{kind: fail, err: err}
}

// Retry indicates whether the decision is to retry, now or later.
func (d Decision) Retry() bool {
	return d.kind == now || d.kind == after
}

// Delay returns the wait before retrying. It is zero unless the
// decision was made by After.
func (d Decision) Delay() time.Duration {
	return d.delay
}

// Err returns the substituted error of a Fail decision, or nil.
func (d Decision) Err() error {
	return d.err
}

func (d Decision) String() string {
	switch d.kind {
	case pass:
		return "pass"
	case fail:
		return fmt.Sprintf("fail(%v)", d.err)
	case now:
		return "now"
	default:
		return fmt.Sprintf("after(%s)", d.delay)
	}
}
