// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides flexible policies for retrying failed request
// attempts, and how long to wait before retrying.
//
// The interface Retrier defines a retry policy. After every attempt the
// request manager asks the Retrier for a Decision: retry Now, retry
// After a delay, Pass the result through unchanged, or Fail with a
// substituted error.
//
// A Retrier can be constructed using New by providing an attempt limit,
// a decision-maker, Decider, a wait time calculator, Waiter, and the
// fallback Decision to use once the attempt limit is exhausted. Both
// Decider and Waiter have constructors for common use cases, so that a
// useful policy can be quickly assembled:
//
//	decider := retry.Before(5 * time.Second).
//	               And(retry.StatusCode(500).Or(retry.TransientErr))
//	waiter := retry.NewExpWaiter(100*time.Millisecond, 2*time.Second, time.Now())
//	retrier := retry.New(3, decider, waiter, retry.Pass)
//
// The fallback must be Pass or a Fail decision: New panics if the
// fallback would retry, since a retrier whose fallback retries never
// terminates.
//
// If the built-in functionality is insufficient, fully custom retry
// policies can be created by via custom implementations of Decider,
// Waiter, or Retrier.
package retry
