// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httperr

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	err := StatusCode(404)
	assert.EqualError(t, err, "reqx: unacceptable status code 404 (Not Found)")
	code, ok := StatusCodeOf(fmt.Errorf("wrapped: %w", err))
	assert.True(t, ok)
	assert.Equal(t, 404, code)
	_, ok = StatusCodeOf(errors.New("foo"))
	assert.False(t, ok)
}

func TestWrappers(t *testing.T) {
	cause := errors.New("cause")
	assert.Nil(t, Encoding(nil))
	assert.Nil(t, Decoding(nil))
	assert.ErrorIs(t, Encoding(cause), cause)
	assert.ErrorIs(t, Decoding(cause), cause)
	assert.EqualError(t, Encoding(cause), "reqx: cannot encode request: cause")
	assert.EqualError(t, Decoding(cause), "reqx: cannot decode response: cause")
}

func TestKind(t *testing.T) {
	testCases := []struct {
		err  error
		kind Category
	}{
		{nil, KindNone},
		{ErrCanceled, KindCanceled},
		{&url.Error{Op: "Get", URL: "x", Err: context.Canceled}, KindCanceled},
		{StatusCode(500), KindStatus},
		{Encoding(errors.New("bad url")), KindEncoding},
		{Decoding(errors.New("bad json")), KindDecoding},
		{ErrEmptyBody, KindDecoding},
		{&url.Error{Op: "Get", URL: "x", Err: syscall.ECONNRESET}, KindConnection},
		{errors.New("opaque"), KindOther},
	}
	for i, testCase := range testCases {
		t.Run(fmt.Sprintf("testCases[%d]", i), func(t *testing.T) {
			assert.Equal(t, testCase.kind, Kind(testCase.err))
		})
	}
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "none", KindNone.String())
	assert.Equal(t, "connection", KindConnection.String())
	assert.Equal(t, "other", KindOther.String())
	assert.Equal(t, "unknown", Category(-1).String())
}
