// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gogama/reqx/cache"
	"github.com/gogama/reqx/httperr"
	"github.com/gogama/reqx/plugin"
	"github.com/gogama/reqx/request"
)

const (
	taskPending int32 = iota
	taskRunning
	taskCanceling
	taskDone
	taskCanceled
)

// A task is one attempt of a logical request: a single prepared HTTP
// request sent over a Transport, or answered from the cache.
//
// A task completes at most once. Cancelling a task before it starts
// prevents any network I/O; the finalizer still runs so that resources
// tied to the attempt are released. Cancelling a running task stops the
// transport and completes the task with an error wrapping
// httperr.ErrCanceled.
type task struct {
	req       *http.Request
	params    *request.Parameters
	ui        *request.UserInfo
	chain     plugin.Chain
	transport Transport
	cache     cache.Cache

	state    int32
	finalize func()

	lock       sync.Mutex
	completion func(*request.Result)
}

func newTask(r *http.Request, p *request.Parameters, ui *request.UserInfo, chain plugin.Chain,
	transport Transport, c cache.Cache, finalizer func(), completion func(*request.Result)) *task {
	var once sync.Once
	return &task{
		req:        r,
		params:     p,
		ui:         ui,
		chain:      chain,
		transport:  transport,
		cache:      c,
		finalize:   func() { once.Do(finalizer) },
		completion: completion,
	}
}

// Start sends the request on a new goroutine. Calling Start more than
// once has no effect. Calling Start on a cancelled task only runs the
// finalizer.
func (t *task) Start() {
	if atomic.CompareAndSwapInt32(&t.state, taskPending, taskRunning) {
		go t.run()
		return
	}
	if atomic.LoadInt32(&t.state) == taskCanceled {
		t.finalize()
	}
}

// Cancel cancels the task. It reports true if the task had not started,
// in which case the task will never complete; the finalizer and the
// WasCancelled hook have run by the time Cancel returns. If the task is
// running, Cancel stops the transport and returns false; the task then
// completes with a cancellation error. Cancel is a no-op on a task which
// has already completed or been cancelled.
func (t *task) Cancel() bool {
	if atomic.CompareAndSwapInt32(&t.state, taskPending, taskCanceled) {
		t.lock.Lock()
		t.completion = nil
		t.lock.Unlock()
		t.finalize()
		t.chain.WasCancelled(t.params, t.ui)
		return true
	}
	if atomic.CompareAndSwapInt32(&t.state, taskRunning, taskCanceling) {
		t.finalize()
	}
	return false
}

func (t *task) run() {
	res := t.fetch()
	t.finalize()
	if !atomic.CompareAndSwapInt32(&t.state, taskRunning, taskDone) {
		atomic.StoreInt32(&t.state, taskDone)
		res.Err = urlErrorWrap(t.req, httperr.ErrCanceled)
	}
	t.chain.DidReceive(res, t.params, t.ui)
	t.complete(res)
}

func (t *task) complete(res *request.Result) {
	t.lock.Lock()
	f := t.completion
	t.completion = nil
	t.lock.Unlock()
	if f != nil {
		f(res)
	}
}

func (t *task) fetch() *request.Result {
	r := t.req
	settings := t.params.Cache()
	kind, progress := t.params.Kind()

	cacheable := t.cache != nil && settings.Cacheable() && cache.Method(r.Method)
	var key string
	if cacheable {
		key = cache.Key(r)
	}
	if cacheable && (settings.Policy == request.CacheReturnElseLoad || settings.Policy == request.CacheOnly) {
		if e, ok := t.cache.Get(key); ok {
			return &request.Result{
				Request:  r,
				Response: e.Response(r),
				Body:     append([]byte(nil), e.Body...),
				Cached:   true,
			}
		}
	}
	if settings.Policy == request.CacheOnly {
		return &request.Result{Request: r, Err: urlErrorWrap(r, httperr.ErrCacheMiss)}
	}

	if kind == request.Upload && progress != nil && r.Body != nil && r.ContentLength > 0 {
		r.Body = &progressReader{rc: r.Body, total: r.ContentLength, fn: progress}
	}
	t.chain.WillSend(r, t.params, t.ui)
	resp, err := t.transport.Do(r)
	if err != nil {
		return &request.Result{Request: r, Err: urlErrorWrap(r, err)}
	}

	res := &request.Result{Request: r, Response: resp}
	readBody(res, kind, progress)
	if res.Err == nil && cacheable && settings.Storage == request.StoreAllowed &&
		resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		t.cache.Put(key, cache.NewEntry(resp, res.Body))
	}
	return res
}

func readBody(res *request.Result, kind request.TaskKind, progress func(float64)) {
	defer func() {
		_ = res.Response.Body.Close()
	}()
	var body io.ReadCloser = res.Response.Body
	if kind == request.Download && progress != nil {
		body = &progressReader{rc: body, total: res.Response.ContentLength, fn: progress}
	}
	var err error
	res.Body, err = io.ReadAll(body)
	if err != nil {
		res.Err = urlErrorWrap(res.Request, err)
	}
}

// A progressReader reports the fraction of an expected number of bytes
// read so far. It reports 1 at the end of the stream.
type progressReader struct {
	rc    io.ReadCloser
	total int64
	n     int64
	fn    func(float64)
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.rc.Read(p)
	pr.n += int64(n)
	if err == io.EOF {
		pr.fn(1)
	} else if n > 0 && pr.total > 0 && pr.n < pr.total {
		pr.fn(float64(pr.n) / float64(pr.total))
	}
	return n, err
}

func (pr *progressReader) Close() error {
	return pr.rc.Close()
}

func urlErrorWrap(r *http.Request, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(r.Method),
		URL: r.URL.String(),
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
