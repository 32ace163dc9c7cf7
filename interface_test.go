// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gogama/reqx/request"
)

type mockDoer struct {
	mock.Mock
}

func newMockDoer(t *testing.T) *mockDoer {
	m := &mockDoer{}
	m.Test(t)
	return m
}

func (m *mockDoer) Do(ctx context.Context, addr request.Address, p *request.Parameters, ui *request.UserInfo) (*request.Result, error) {
	args := m.Called(ctx, addr, p, ui)
	res, _ := args.Get(0).(*request.Result)
	return res, args.Error(1)
}

type mockIdleCloserDoer struct {
	mockDoer
}

func (m *mockIdleCloserDoer) CloseIdleConnections() {
	m.Called()
}

func TestGet(t *testing.T) {
	expected := &request.Result{}
	m := newMockDoer(t)
	m.On("Do", mock.Anything, request.RawURL("foo"), (*request.Parameters)(nil), (*request.UserInfo)(nil)).
		Return(expected, nil).Once()
	res, err := Get(context.Background(), m, "foo")
	assert.Same(t, expected, res)
	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func TestHead(t *testing.T) {
	expected := &request.Result{}
	m := newMockDoer(t)
	m.On("Do", mock.Anything, request.RawURL("bar"), mock.MatchedBy(func(p *request.Parameters) bool {
		return p.Method() == "HEAD"
	}), (*request.UserInfo)(nil)).Return(expected, nil).Once()
	res, err := Head(context.Background(), m, "bar")
	assert.Same(t, expected, res)
	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func TestPost(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		expected := &request.Result{}
		m := newMockDoer(t)
		m.On("Do", mock.Anything, request.RawURL("baz"), mock.MatchedBy(func(p *request.Parameters) bool {
			return p.Method() == "POST" && p.Header().Get("Content-Type") == "ham" &&
				string(p.Body()) == "eggs"
		}), (*request.UserInfo)(nil)).Return(expected, nil).Once()
		res, err := Post(context.Background(), m, "baz", "ham", "eggs")
		assert.Same(t, expected, res)
		assert.NoError(t, err)
		m.AssertExpectations(t)
	})
	t.Run("error invalid body", func(t *testing.T) {
		m := newMockDoer(t)
		res, err := Post(context.Background(), m, "baz", "text/plain", 123)
		assert.Nil(t, res)
		assert.Error(t, err)
		m.AssertNotCalled(t, "Do", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPostForm(t *testing.T) {
	expected := &request.Result{}
	m := newMockDoer(t)
	m.On("Do", mock.Anything, request.RawURL("qux"), mock.MatchedBy(func(p *request.Parameters) bool {
		return p.Method() == "POST" &&
			p.Header().Get("Content-Type") == "application/x-www-form-urlencoded" &&
			string(p.Body()) == "a=b&c=d"
	}), (*request.UserInfo)(nil)).Return(expected, nil).Once()
	res, err := PostForm(context.Background(), m, "qux", url.Values{"a": {"b"}, "c": {"d"}})
	assert.Same(t, expected, res)
	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func TestInflate(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "reqx: nil doer", func() { Inflate(nil) })
	})
	t.Run("already a Requester", func(t *testing.T) {
		m := New()
		assert.Same(t, m, Inflate(m))
	})
	t.Run("Doer", func(t *testing.T) {
		expected := &request.Result{}
		m := newMockDoer(t)
		m.On("Do", mock.Anything, request.RawURL("x"), (*request.Parameters)(nil), (*request.UserInfo)(nil)).
			Return(expected, nil).Twice()
		r := Inflate(m)
		res, err := r.Do(context.Background(), request.RawURL("x"), nil, nil)
		assert.Same(t, expected, res)
		assert.NoError(t, err)
		ch := make(chan *request.Result, 1)
		h := r.Request(context.Background(), request.RawURL("x"), nil, nil, func(res *request.Result) {
			ch <- res
		})
		assert.Equal(t, uint64(1), h.ID())
		select {
		case res := <-ch:
			assert.Same(t, expected, res)
		case <-time.After(5 * time.Second):
			require.Fail(t, "no completion")
		}
		assert.False(t, h.Cancel())
		r.CloseIdleConnections()
		m.AssertExpectations(t)
	})
	t.Run("Doer error without result", func(t *testing.T) {
		m := newMockDoer(t)
		boom := &url.Error{Op: "Get", URL: "x", Err: context.Canceled}
		m.On("Do", mock.Anything, request.RawURL("x"), (*request.Parameters)(nil), (*request.UserInfo)(nil)).
			Return(nil, boom).Once()
		ch := make(chan *request.Result, 1)
		Inflate(m).Request(context.Background(), request.RawURL("x"), nil, nil, func(res *request.Result) {
			ch <- res
		})
		res := <-ch
		assert.Same(t, boom, res.Err)
	})
	t.Run("IdleCloser", func(t *testing.T) {
		m := &mockIdleCloserDoer{}
		m.Test(t)
		m.On("CloseIdleConnections").Once()
		Inflate(m).CloseIdleConnections()
		m.AssertExpectations(t)
	})
}
