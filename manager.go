// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/gogama/reqx/httperr"
	"github.com/gogama/reqx/plugin"
	"github.com/gogama/reqx/request"
	"github.com/gogama/reqx/stopline"
)

// A Manager is a request orchestration engine. It builds HTTP requests
// from request Parameters, sends them over a Transport, runs plug-ins
// around them, retries them according to a retry.Retrier and
// coordinates stop-the-line interruptions of all traffic.
//
// Every logical request dispatched through a Manager is recorded in an
// in-flight registry until its completion callback fires. While a
// stop-the-line recovery action is running the manager is frozen:
// requests dispatched in the meantime are registered but only started
// once the recovery completes.
//
// For one logical request, hooks and callbacks run in the order
// Prepare, WillSend, (transport), DidReceive, stop-the-line Verify,
// Retry, plug-in Verify, DidFinish, completion. Prepare through
// DidReceive repeat for each attempt. Every hook of a plug-in chain
// runs in list order, manager plug-ins first.
//
// A Manager is safe for concurrent use by multiple goroutines.
type Manager struct {
	settings
	reg registry
}

// New constructs a Manager configured by opts.
func New(opts ...Option) *Manager {
	s := defaultSettings()
	for _, opt := range opts {
		if opt == nil {
			panic("reqx: nil option")
		}
		opt(&s)
	}
	return &Manager{settings: s}
}

// Create constructs a request manager configured by opts and returns it
// as a Requester, so callers depend only on the abstract contract.
func Create(opts ...Option) Requester {
	return New(opts...)
}

// recovery returns a fresh manager with the same configuration as m but
// without a stop-the-line policy, for use by a recovery action.
func (m *Manager) recovery() *Manager {
	s := m.settings
	s.plugins = append([]plugin.Plugin(nil), m.plugins...)
	s.stopLine = nil
	return &Manager{settings: s}
}

// A Handle identifies a dispatched request.
type Handle struct {
	id     uint64
	cancel func(uint64) bool
}

// NewHandle returns a handle with the given identifier whose Cancel
// method calls cancel. It lets alternative Requester implementations,
// such as test fakes, return handles.
func NewHandle(id uint64, cancel func(id uint64) bool) *Handle {
	return &Handle{id: id, cancel: cancel}
}

// ID returns the identifier of the request, unique within its manager.
func (h *Handle) ID() uint64 {
	return h.id
}

// Cancel cancels the request. If no attempt is in flight, the request
// is withdrawn: its completion callback never fires and the
// WasCancelled hook of its plug-ins runs instead. If an attempt is in
// flight, it is stopped and the completion callback receives a result
// whose error wraps httperr.ErrCanceled, without retry or stop-the-line
// classification.
//
// Cancel reports whether the request was withdrawn. It is safe to call
// more than once and after the request has completed.
func (h *Handle) Cancel() bool {
	if h.cancel == nil {
		return false
	}
	return h.cancel(h.id)
}

// Request dispatches a logical request for addr described by p, and
// returns at once. The callback done receives the final result exactly
// once, unless the request is withdrawn by Handle.Cancel. It is called
// through the dispatcher of p or, failing that, of the manager.
//
// If ui is nil, a new UserInfo is created. The user info seeds of p are
// copied into ui without overwriting existing keys.
//
// Failure to resolve addr or to build the HTTP request is terminal: the
// request completes with an error wrapping an *httperr.EncodingError
// and is not retried.
//
// If ctx is done while the request is waiting for a retry delay or
// queued behind a stop-the-line recovery, the request completes at once
// with an error wrapping the context error.
func (m *Manager) Request(ctx context.Context, addr request.Address, p *request.Parameters, ui *request.UserInfo, done func(*request.Result)) *Handle {
	if ctx == nil {
		panic("reqx: nil context")
	}
	if addr == nil {
		panic("reqx: nil address")
	}
	if ui == nil {
		ui = request.NewUserInfo()
	}
	p.Seed(ui)
	dispatch := p.Dispatcher()
	if dispatch == nil {
		dispatch = m.dispatcher
	}
	e := &entry{
		ctx:      ctx,
		addr:     addr,
		params:   p,
		ui:       ui,
		chain:    plugin.Merge(m.plugins, p.Plugins()),
		done:     done,
		dispatch: dispatch,
	}
	e.unwatch = context.AfterFunc(ctx, func() { m.expire(e) })
	if m.reg.register(e) {
		m.start(e)
	}
	return &Handle{id: e.id, cancel: m.cancel}
}

// Do dispatches a logical request and waits for its result. The
// returned error is the Err field of the result.
//
// If ctx is done before the request completes, the request is
// cancelled. A request which had no attempt in flight returns at once
// with an error wrapping the context error.
func (m *Manager) Do(ctx context.Context, addr request.Address, p *request.Parameters, ui *request.UserInfo) (*request.Result, error) {
	ch := make(chan *request.Result, 1)
	h := m.Request(ctx, addr, p, ui, func(res *request.Result) {
		ch <- res
	})
	select {
	case res := <-ch:
		return res, res.Err
	case <-ctx.Done():
		if h.Cancel() {
			err := &url.Error{Op: urlErrorOp(p.Method()), URL: addressString(addr), Err: ctx.Err()}
			return &request.Result{Err: err}, err
		}
		res := <-ch
		return res, res.Err
	}
}

// InFlight returns the number of registered requests whose completion
// callback has not yet fired.
func (m *Manager) InFlight() int {
	return m.reg.len()
}

// State returns the run state of the manager.
func (m *Manager) State() State {
	return m.reg.current()
}

// Frozen indicates whether a stop-the-line recovery is in progress.
func (m *Manager) Frozen() bool {
	return m.State() == Frozen
}

// CloseIdleConnections invokes the same method on the manager's
// Transport.
//
// If the Transport has no CloseIdleConnections method, this method does
// nothing.
func (m *Manager) CloseIdleConnections() {
	if ic, ok := m.transport.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (m *Manager) cancel(id uint64) bool {
	e, t, ok := m.reg.withdraw(id)
	if !ok {
		return false
	}
	if t == nil {
		e.unwatch()
		e.chain.WasCancelled(e.params, e.ui)
		return true
	}
	if t.Cancel() {
		e.unwatch()
		m.reg.remove(id)
		return true
	}
	return false
}

// expire completes e with the error of its context if e is waiting
// between attempts.
func (m *Manager) expire(e *entry) {
	if !m.reg.expire(e) {
		return
	}
	m.logger.V(1).Info("request context done while waiting", "id", e.id)
	m.deliver(e, &request.Result{Err: &url.Error{
		Op:  urlErrorOp(e.params.Method()),
		URL: addressString(e.addr),
		Err: e.ctx.Err(),
	}})
}

// start runs the next attempt of e.
func (m *Manager) start(e *entry) {
	e.ui.RecordAttempt()
	u, err := e.addr.URL()
	if err != nil {
		m.finish(e, &request.Result{Err: &url.Error{
			Op:  urlErrorOp(e.params.Method()),
			URL: addressString(e.addr),
			Err: httperr.Encoding(err),
		}})
		return
	}

	d := e.params.Timeout()
	if d <= 0 && m.timeoutPolicy != nil {
		d = m.timeoutPolicy.Timeout(e.prev, e.ui)
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if d > 0 {
		ctx, cancel = context.WithTimeout(e.ctx, d)
	} else {
		ctx, cancel = context.WithCancel(e.ctx)
	}

	r, err := e.params.Build(ctx, u)
	if err != nil {
		cancel()
		m.finish(e, &request.Result{Err: &url.Error{
			Op:  urlErrorOp(e.params.Method()),
			URL: u.String(),
			Err: httperr.Encoding(err),
		}})
		return
	}
	r = e.chain.Prepare(r, e.params, e.ui)

	t := newTask(r, e.params, e.ui, e.chain, m.transport, m.cache, cancel, func(res *request.Result) {
		m.received(e, res)
	})
	if !m.reg.attach(e, t) {
		cancel()
		return
	}
	t.Start()
}

// received funnels the result of one attempt of e.
func (m *Manager) received(e *entry, res *request.Result) {
	canceled := m.reg.detach(e)
	e.prev = res
	if res.Timeout() {
		e.ui.RecordTimeout()
	}

	if canceled && !errors.Is(res.Err, httperr.ErrCanceled) {
		res2 := *res
		if res.Request != nil {
			res2.Err = urlErrorWrap(res.Request, httperr.ErrCanceled)
		} else {
			res2.Err = &url.Error{Op: urlErrorOp(e.params.Method()), URL: addressString(e.addr), Err: httperr.ErrCanceled}
		}
		m.finish(e, &res2)
		return
	}

	if e.ctx.Err() != nil || errors.Is(res.Err, httperr.ErrCanceled) {
		m.finish(e, res)
		return
	}

	if m.stopLine != nil {
		switch m.stopLine.Verify(res, e.params, e.ui) {
		case stopline.StopTheLine:
			m.stop(e, res)
			return
		case stopline.Retry:
			if e.replays < m.maxAttempts {
				e.replays++
				m.logger.V(1).Info("replaying request", "id", e.id, "replay", e.replays)
				m.resume(e)
				return
			}
		}
	}

	d := m.retrier.Retry(res, e.params, e.ui)
	switch {
	case d.Retry() && d.Delay() > 0:
		m.logger.V(1).Info("retrying request", "id", e.id, "attempt", e.ui.Attempts(), "delay", d.Delay())
		m.reg.delay(e, d.Delay(), func() { m.resume(e) })
		return
	case d.Retry():
		m.logger.V(1).Info("retrying request", "id", e.id, "attempt", e.ui.Attempts())
		m.resume(e)
		return
	case d.Err() != nil:
		res2 := *res
		res2.Err = d.Err()
		res = &res2
	}
	m.finish(e, res)
}

// resume starts the next attempt of e unless it was withdrawn or the
// manager is frozen.
func (m *Manager) resume(e *entry) {
	if m.reg.resume(e) {
		m.start(e)
	}
}

// stop handles a stop-the-line classification of res, the result of the
// latest attempt of e.
func (m *Manager) stop(e *entry, res *request.Result) {
	if !m.reg.freeze(e) {
		m.logger.V(1).Info("queueing request behind running recovery", "id", e.id)
		return
	}
	m.logger.V(1).Info("freezing", "id", e.id, "status", res.StatusCode())
	go m.recover(e, res)
}

// recover runs the stop-the-line action for e and resolves it.
func (m *Manager) recover(e *entry, res *request.Result) {
	var once sync.Once
	done := func(o stopline.Outcome) {
		once.Do(func() {
			m.resolve(e, res, o)
		})
	}
	m.stopLine.Action(context.WithoutCancel(e.ctx), m.recovery(), e.params, res, e.ui, done)
}

// resolve completes or replays e according to the outcome of the
// recovery action, then unfreezes the manager.
func (m *Manager) resolve(e *entry, res *request.Result, o stopline.Outcome) {
	var first *entry
	switch o.Kind() {
	case stopline.OutcomePassOver:
		m.finish(e, o.Result())
	case stopline.OutcomeRetry:
		if e.replays < m.maxAttempts {
			e.replays++
			first = e
			break
		}
		m.finish(e, res)
	default:
		m.finish(e, res)
	}
	queued := m.reg.unfreeze(first)
	m.logger.V(1).Info("unfreezing", "id", e.id, "outcome", o.Kind(), "queued", len(queued))
	for _, q := range queued {
		m.start(q)
	}
}

// finish verifies the final result of e, removes e from the registry and
// delivers the result.
func (m *Manager) finish(e *entry, res *request.Result) {
	if res.Err == nil {
		if err := e.chain.Verify(res, e.params, e.ui); err != nil {
			res2 := *res
			res2.Err = err
			res = &res2
		}
	}
	if !m.reg.remove(e.id) {
		return
	}
	m.deliver(e, res)
}

// deliver runs the DidFinish hooks of e and hands res to its completion
// callback. The caller must have removed e from the registry.
func (m *Manager) deliver(e *entry, res *request.Result) {
	e.unwatch()
	e.chain.DidFinish(res, e.params, e.ui)
	if e.done == nil {
		return
	}
	if e.dispatch != nil {
		e.dispatch(func() { e.done(res) })
		return
	}
	e.done(res)
}

func addressString(addr request.Address) string {
	if s, ok := addr.(interface{ String() string }); ok {
		return s.String()
	}
	if raw, ok := addr.(request.RawURL); ok {
		return string(raw)
	}
	return ""
}
