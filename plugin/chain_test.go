// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gogama/reqx/request"
)

type mockPlugin struct {
	mock.Mock
}

func newMockPlugin(t *testing.T) *mockPlugin {
	m := &mockPlugin{}
	m.Test(t)
	return m
}

func (m *mockPlugin) Prepare(r *http.Request, p *request.Parameters, ui *request.UserInfo) *http.Request {
	args := m.Called(r, p, ui)
	if r2, ok := args.Get(0).(*http.Request); ok {
		return r2
	}
	return nil
}

func (m *mockPlugin) WillSend(r *http.Request, p *request.Parameters, ui *request.UserInfo) {
	m.Called(r, p, ui)
}

func (m *mockPlugin) DidReceive(res *request.Result, p *request.Parameters, ui *request.UserInfo) {
	m.Called(res, p, ui)
}

func (m *mockPlugin) Verify(res *request.Result, p *request.Parameters, ui *request.UserInfo) error {
	return m.Called(res, p, ui).Error(0)
}

func (m *mockPlugin) DidFinish(res *request.Result, p *request.Parameters, ui *request.UserInfo) {
	m.Called(res, p, ui)
}

func (m *mockPlugin) WasCancelled(p *request.Parameters, ui *request.UserInfo) {
	m.Called(p, ui)
}

type headerAppender struct {
	Base
	name string
}

func (h *headerAppender) Prepare(r *http.Request, _ *request.Parameters, _ *request.UserInfo) *http.Request {
	r.Header.Add("X-Order", h.name)
	return r
}

func (h *headerAppender) DidFinish(res *request.Result, _ *request.Parameters, ui *request.UserInfo) {
	order, _ := ui.Value(orderKey{}).([]string)
	ui.Set(orderKey{}, append(order, h.name))
}

type orderKey struct{}

type tagged struct {
	Base
	tags interface{}
}

func TestMerge(t *testing.T) {
	a, b, c := &headerAppender{name: "a"}, &headerAppender{name: "b"}, &headerAppender{name: "c"}
	t.Run("global first", func(t *testing.T) {
		assert.Equal(t, Chain{a, b, c}, Merge([]Plugin{a, b}, []Plugin{c}))
	})
	t.Run("identity dedup", func(t *testing.T) {
		assert.Equal(t, Chain{a, b, c}, Merge([]Plugin{a, b}, []Plugin{b, c, a}))
	})
	t.Run("equal values of distinct instances", func(t *testing.T) {
		d := &headerAppender{name: "a"}
		assert.Equal(t, Chain{a, d}, Merge([]Plugin{a}, []Plugin{d}))
	})
	t.Run("values holding slices", func(t *testing.T) {
		x, y := tagged{tags: []string{"a"}}, tagged{tags: []string{"b"}}
		var c Chain
		assert.NotPanics(t, func() { c = Merge([]Plugin{x}, []Plugin{y, a}) })
		assert.Len(t, c, 3)
	})
	t.Run("equal comparable values", func(t *testing.T) {
		x, y := tagged{tags: "a"}, tagged{tags: "a"}
		assert.Len(t, Merge([]Plugin{x}, []Plugin{y}), 1)
		assert.Len(t, Merge([]Plugin{x}, []Plugin{tagged{tags: "b"}}), 2)
	})
	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Merge(nil, nil))
	})
	t.Run("nil plugin", func(t *testing.T) {
		assert.PanicsWithValue(t, "reqx/plugin: nil plugin", func() {
			Merge([]Plugin{nil}, nil)
		})
	})
}

func TestChain(t *testing.T) {
	t.Run("order", func(t *testing.T) {
		c := Merge([]Plugin{&headerAppender{name: "P1"}, &headerAppender{name: "P2"}}, []Plugin{&headerAppender{name: "P3"}})
		r, err := http.NewRequest("GET", "http://example.com", nil)
		require.NoError(t, err)
		ui := request.NewUserInfo()
		r = c.Prepare(r, nil, ui)
		assert.Equal(t, []string{"P1", "P2", "P3"}, r.Header.Values("X-Order"))
		c.DidFinish(&request.Result{}, nil, ui)
		assert.Equal(t, []string{"P1", "P2", "P3"}, ui.Value(orderKey{}))
	})
	t.Run("nil from Prepare keeps request", func(t *testing.T) {
		m := newMockPlugin(t)
		r, err := http.NewRequest("GET", "http://example.com", nil)
		require.NoError(t, err)
		ui := request.NewUserInfo()
		m.On("Prepare", r, (*request.Parameters)(nil), ui).Return(nil).Once()
		assert.Same(t, r, Chain{m}.Prepare(r, nil, ui))
		m.AssertExpectations(t)
	})
	t.Run("Verify stops at first error", func(t *testing.T) {
		m1, m2, m3 := newMockPlugin(t), newMockPlugin(t), newMockPlugin(t)
		res := &request.Result{}
		ui := request.NewUserInfo()
		boom := errors.New("boom")
		m1.On("Verify", res, (*request.Parameters)(nil), ui).Return(nil).Once()
		m2.On("Verify", res, (*request.Parameters)(nil), ui).Return(boom).Once()
		assert.Same(t, boom, Chain{m1, m2, m3}.Verify(res, nil, ui))
		m1.AssertExpectations(t)
		m2.AssertExpectations(t)
		m3.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
	})
	t.Run("every hook fans out", func(t *testing.T) {
		m1, m2 := newMockPlugin(t), newMockPlugin(t)
		r, err := http.NewRequest("GET", "http://example.com", nil)
		require.NoError(t, err)
		res := &request.Result{Request: r}
		ui := request.NewUserInfo()
		for _, m := range []*mockPlugin{m1, m2} {
			m.On("WillSend", r, (*request.Parameters)(nil), ui).Once()
			m.On("DidReceive", res, (*request.Parameters)(nil), ui).Once()
			m.On("WasCancelled", (*request.Parameters)(nil), ui).Once()
		}
		c := Chain{m1, m2}
		c.WillSend(r, nil, ui)
		c.DidReceive(res, nil, ui)
		c.WasCancelled(nil, ui)
		m1.AssertExpectations(t)
		m2.AssertExpectations(t)
	})
}
