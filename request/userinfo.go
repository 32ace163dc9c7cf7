// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"sync"
	"sync/atomic"
	"time"
)

const nilKeyMsg = "reqx/request: nil key"

// UserInfo is a request-scoped bag of values threaded through the whole
// life of a logical request: every plug-in hook, the retrier and the
// stop-the-line policy see the same UserInfo.
//
// A UserInfo is created when a request is dispatched and discarded
// when the request completes. It is safe for concurrent use.
//
// Keys follow the same rules as the key parameter of context.WithValue:
// they may not be nil, must be comparable, and should not be a string
// or other built-in type, to avoid collisions between plug-ins storing
// data in the same UserInfo.
type UserInfo struct {
	lock            sync.RWMutex
	values          map[interface{}]interface{}
	attempts        int32
	attemptTimeouts int32
	start           int64
}

// NewUserInfo returns an empty UserInfo.
func NewUserInfo() *UserInfo {
	return &UserInfo{}
}

// Set stores value under key.
func (ui *UserInfo) Set(key, value interface{}) {
	if key == nil {
		panic(nilKeyMsg)
	}
	ui.lock.Lock()
	defer ui.lock.Unlock()
	if ui.values == nil {
		ui.values = make(map[interface{}]interface{})
	}
	ui.values[key] = value
}

// Value returns the value stored under key, or nil.
func (ui *UserInfo) Value(key interface{}) interface{} {
	ui.lock.RLock()
	defer ui.lock.RUnlock()
	return ui.values[key]
}

// Lookup returns the value stored under key and whether it is present.
func (ui *UserInfo) Lookup(key interface{}) (interface{}, bool) {
	ui.lock.RLock()
	defer ui.lock.RUnlock()
	v, ok := ui.values[key]
	return v, ok
}

// Delete removes key.
func (ui *UserInfo) Delete(key interface{}) {
	ui.lock.Lock()
	defer ui.lock.Unlock()
	delete(ui.values, key)
}

func (ui *UserInfo) setDefault(key, value interface{}) {
	ui.lock.Lock()
	defer ui.lock.Unlock()
	if ui.values == nil {
		ui.values = make(map[interface{}]interface{})
	}
	if _, ok := ui.values[key]; !ok {
		ui.values[key] = value
	}
}

// Attempts returns the number of transport attempts started so far for
// the logical request. It is one during the initial attempt, two during
// the first retry, and so on. Responses served from the cache count as
// attempts.
func (ui *UserInfo) Attempts() int {
	return int(atomic.LoadInt32(&ui.attempts))
}

// AttemptTimeouts returns the number of attempts which ended in a
// timeout.
func (ui *UserInfo) AttemptTimeouts() int {
	return int(atomic.LoadInt32(&ui.attemptTimeouts))
}

// RecordAttempt increments the attempt counter and returns the new
// value. It is called by the request manager when an attempt starts.
// The first call also records the start time of the logical request.
func (ui *UserInfo) RecordAttempt() int {
	n := atomic.AddInt32(&ui.attempts, 1)
	if n == 1 {
		atomic.CompareAndSwapInt64(&ui.start, 0, time.Now().UnixNano())
	}
	return int(n)
}

// Elapsed returns the time since the first attempt started, or zero if
// no attempt has started yet.
func (ui *UserInfo) Elapsed() time.Duration {
	start := atomic.LoadInt64(&ui.start)
	if start == 0 {
		return 0
	}
	return time.Since(time.Unix(0, start))
}

// RecordTimeout increments the attempt timeout counter. It is called by
// the request manager when an attempt times out.
func (ui *UserInfo) RecordTimeout() {
	atomic.AddInt32(&ui.attemptTimeouts, 1)
}
