// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

import (
	"context"
	"image"

	"github.com/tidwall/gjson"

	"github.com/gogama/reqx/decode"
	"github.com/gogama/reqx/httperr"
	"github.com/gogama/reqx/request"
)

// Decode sends a request through d and decodes the result with dec. A
// nil decode, typically caused by an empty body, is reported as
// httperr.ErrEmptyBody. Use DecodeOptional to accept nil decodes.
//
// The raw result is returned alongside the value, even on error, unless
// the request could not be sent at all.
func Decode[T any](ctx context.Context, d Doer, addr request.Address, p *request.Parameters, dec decode.Decoder[T]) (*T, *request.Result, error) {
	v, res, err := DecodeOptional(ctx, d, addr, p, dec)
	if err == nil && v == nil {
		err = httperr.ErrEmptyBody
	}
	return v, res, err
}

// DecodeOptional is like Decode but returns a nil value and a nil error
// on a nil decode.
func DecodeOptional[T any](ctx context.Context, d Doer, addr request.Address, p *request.Parameters, dec decode.Decoder[T]) (*T, *request.Result, error) {
	if dec == nil {
		panic("reqx: nil decoder")
	}
	res, err := d.Do(ctx, addr, p, nil)
	if err != nil {
		return nil, res, err
	}
	v, err := dec.Decode(res, p)
	if err != nil {
		return nil, res, err
	}
	return v, res, nil
}

// Data sends a request through d and returns the response body, which
// may be empty.
func Data(ctx context.Context, d Doer, addr request.Address, p *request.Parameters) ([]byte, error) {
	res, err := d.Do(ctx, addr, p, nil)
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}

// JSON sends a request through d and parses the response body as a
// gjson document. An empty body is reported as httperr.ErrEmptyBody.
func JSON(ctx context.Context, d Doer, addr request.Address, p *request.Parameters) (gjson.Result, error) {
	v, _, err := Decode(ctx, d, addr, p, decode.GJSON())
	if err != nil {
		return gjson.Result{}, err
	}
	return *v, nil
}

// Image sends a request through d and decodes the response body as a
// GIF, JPEG or PNG image. An empty body is reported as
// httperr.ErrEmptyBody.
func Image(ctx context.Context, d Doer, addr request.Address, p *request.Parameters) (image.Image, error) {
	v, _, err := Decode(ctx, d, addr, p, decode.Image())
	if err != nil {
		return nil, err
	}
	return *v, nil
}

// Void sends a request through d and discards the response body.
func Void(ctx context.Context, d Doer, addr request.Address, p *request.Parameters) error {
	_, err := d.Do(ctx, addr, p, nil)
	return err
}
