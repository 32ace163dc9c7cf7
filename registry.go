// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"sync"
	"time"

	"github.com/gogama/reqx/plugin"
	"github.com/gogama/reqx/request"
)

// An entry is the bookkeeping record of one logical request.
//
// The fields above the first blank line are fixed at dispatch. The
// task, timer and canceled fields are guarded by the registry lock. The
// remaining fields are only touched by the goroutine currently driving
// the request, which is unique at any time.
type entry struct {
	id       uint64
	ctx      context.Context
	addr     request.Address
	params   *request.Parameters
	ui       *request.UserInfo
	chain    plugin.Chain
	done     func(*request.Result)
	dispatch request.Dispatcher
	unwatch  func() bool

	task     *task
	timer    *time.Timer
	canceled bool

	prev    *request.Result
	replays int
}

// A registry is the in-flight request registry together with the run
// state of a request manager. Every method locks the registry for its
// whole duration and none of them call out, so callers never run
// plug-in or policy code while holding the lock.
type registry struct {
	lock    sync.Mutex
	state   State
	nextID  uint64
	entries map[uint64]*entry
	queue   []*entry
}

// register assigns e an identifier and adds it to the registry. It
// reports whether e may start at once; otherwise e is queued until the
// registry unfreezes.
func (g *registry) register(e *entry) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.nextID++
	e.id = g.nextID
	if g.entries == nil {
		g.entries = make(map[uint64]*entry)
	}
	g.entries[e.id] = e
	if g.state == Idle {
		g.state = Running
	}
	if g.state == Frozen {
		g.queue = append(g.queue, e)
		return false
	}
	return true
}

// attach records t as the current attempt of e. It reports false if e
// is no longer registered or was cancelled.
func (g *registry) attach(e *entry, t *task) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.entries[e.id] != e || e.canceled {
		return false
	}
	e.task = t
	return true
}

// detach clears the current attempt of e. It reports whether e was
// cancelled while the attempt was attached.
func (g *registry) detach(e *entry) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	e.task = nil
	return e.canceled
}

// delay records a timer which restarts e after a retry wait. It reports
// false if e is no longer registered or was cancelled.
func (g *registry) delay(e *entry, d time.Duration, f func()) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.entries[e.id] != e || e.canceled {
		return false
	}
	e.timer = time.AfterFunc(d, f)
	return true
}

// resume reports whether e, which is between attempts, may start its
// next attempt now. If e is no longer registered or was cancelled, or
// the registry is frozen, it returns false; in the latter case e is
// queued.
func (g *registry) resume(e *entry) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.entries[e.id] != e || e.canceled {
		return false
	}
	e.timer = nil
	if g.state == Frozen {
		g.queue = append(g.queue, e)
		return false
	}
	return true
}

// remove deletes the entry with identifier id. It reports false if the
// entry was already removed, which makes removal the one-shot guard on
// completion.
func (g *registry) remove(id uint64) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	if _, ok := g.entries[id]; !ok {
		return false
	}
	delete(g.entries, id)
	return true
}

// withdraw removes the entry with identifier id if it has no attempt in
// flight, stopping any pending retry timer. If the entry has an attempt
// attached, it is left registered, marked cancelled so that it is never
// restarted, and the attempt is returned instead.
func (g *registry) withdraw(id uint64) (e *entry, t *task, ok bool) {
	g.lock.Lock()
	defer g.lock.Unlock()
	e, ok = g.entries[id]
	if !ok {
		return nil, nil, false
	}
	if e.task != nil {
		e.canceled = true
		return e, e.task, true
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	delete(g.entries, id)
	return e, nil, true
}

// freeze moves the registry into the Frozen state. It reports false if
// e is no longer registered or was cancelled, or if the registry was
// already frozen, in which case e is queued to be replayed after the
// running recovery completes.
func (g *registry) freeze(e *entry) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.entries[e.id] != e || e.canceled {
		return false
	}
	if g.state == Frozen {
		g.queue = append(g.queue, e)
		return false
	}
	g.state = Frozen
	return true
}

// unfreeze moves the registry back to Running and drains the queue,
// returning the queued entries which are still registered in the order
// they were queued. If first is non-nil and still registered, it leads
// the returned list.
func (g *registry) unfreeze(first *entry) []*entry {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.state = Running
	drained := make([]*entry, 0, len(g.queue)+1)
	if first != nil && g.entries[first.id] == first {
		drained = append(drained, first)
	}
	for _, e := range g.queue {
		if g.entries[e.id] == e {
			drained = append(drained, e)
		}
	}
	g.queue = nil
	return drained
}

// expire removes e if it is registered and waiting, either for a retry
// delay or behind a running recovery. It reports false if e has an
// attempt attached or is no longer registered.
func (g *registry) expire(e *entry) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.entries[e.id] != e || e.task != nil {
		return false
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	delete(g.entries, e.id)
	return true
}

func (g *registry) len() int {
	g.lock.Lock()
	defer g.lock.Unlock()
	return len(g.entries)
}

func (g *registry) current() State {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.state
}
