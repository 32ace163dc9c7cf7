// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogama/reqx/decode"
	"github.com/gogama/reqx/httperr"
	"github.com/gogama/reqx/plugin"
	"github.com/gogama/reqx/request"
)

type widget struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestDecode(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		m := New(WithTransport(respond(200, `{"name":"gear","count":3}`)))
		v, res, err := Decode(context.Background(), m, addr("/"), nil, decode.JSON[widget]())
		require.NoError(t, err)
		assert.Equal(t, &widget{Name: "gear", Count: 3}, v)
		assert.Equal(t, 200, res.StatusCode())
	})
	t.Run("empty body", func(t *testing.T) {
		m := New(WithTransport(respond(204, "")))
		v, res, err := Decode(context.Background(), m, addr("/"), nil, decode.JSON[widget]())
		assert.ErrorIs(t, err, httperr.ErrEmptyBody)
		assert.Equal(t, httperr.KindDecoding, httperr.Kind(err))
		assert.Nil(t, v)
		assert.Equal(t, 204, res.StatusCode())
	})
	t.Run("optional empty body", func(t *testing.T) {
		m := New(WithTransport(respond(204, "")))
		v, res, err := DecodeOptional(context.Background(), m, addr("/"), nil, decode.JSON[widget]())
		assert.NoError(t, err)
		assert.Nil(t, v)
		assert.NotNil(t, res)
	})
	t.Run("decode error", func(t *testing.T) {
		m := New(WithTransport(respond(200, `{"name":`)))
		v, _, err := Decode(context.Background(), m, addr("/"), nil, decode.JSON[widget]())
		var de *httperr.DecodingError
		assert.ErrorAs(t, err, &de)
		assert.Nil(t, v)
	})
	t.Run("request error", func(t *testing.T) {
		boom := errors.New("boom")
		d := newMockDoer(t)
		d.On("Do", context.Background(), addr("/"), (*request.Parameters)(nil), (*request.UserInfo)(nil)).
			Return(&request.Result{Err: boom}, boom).Once()
		v, res, err := Decode(context.Background(), d, addr("/"), nil, decode.JSON[widget]())
		assert.Same(t, boom, err)
		assert.Nil(t, v)
		assert.Same(t, boom, res.Err)
		d.AssertExpectations(t)
	})
	t.Run("nil decoder", func(t *testing.T) {
		assert.PanicsWithValue(t, "reqx: nil decoder", func() {
			_, _, _ = DecodeOptional[widget](context.Background(), New(), addr("/"), nil, nil)
		})
	})
}

func TestData(t *testing.T) {
	b, err := Data(context.Background(), New(WithTransport(respond(200, "raw"))), addr("/"), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), b)

	b, err = Data(context.Background(), New(WithTransport(respond(204, ""))), addr("/"), nil)
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestJSON(t *testing.T) {
	doc, err := JSON(context.Background(), New(WithTransport(respond(200, `{"items":[{"id":7}]}`))), addr("/"), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), doc.Get("items.0.id").Int())

	_, err = JSON(context.Background(), New(WithTransport(respond(200, ""))), addr("/"), nil)
	assert.ErrorIs(t, err, httperr.ErrEmptyBody)

	_, err = JSON(context.Background(), New(WithTransport(respond(200, "{nope"))), addr("/"), nil)
	assert.Equal(t, httperr.KindDecoding, httperr.Kind(err))
}

func TestImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 3))
	src.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := Image(context.Background(), New(WithTransport(respond(200, buf.String()))), addr("/"), nil)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 3), img.Bounds())

	_, err = Image(context.Background(), New(WithTransport(respond(200, ""))), addr("/"), nil)
	assert.ErrorIs(t, err, httperr.ErrEmptyBody)

	_, err = Image(context.Background(), New(WithTransport(respond(200, "not an image"))), addr("/"), nil)
	assert.Equal(t, httperr.KindDecoding, httperr.Kind(err))
}

func TestVoid(t *testing.T) {
	tr := respond(200, "ignored")
	assert.NoError(t, Void(context.Background(), New(WithTransport(tr)), addr("/"), nil))
	assert.Equal(t, 1, tr.Calls())

	err := Void(context.Background(), New(WithTransport(respond(500, "")), WithPlugins(plugin.StatusCodes(200, 299))), addr("/"), nil)
	code, ok := httperr.StatusCodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, 500, code)
}
