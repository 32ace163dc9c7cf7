// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package decode defines how raw request results are decoded into typed
// values, and provides decoders for JSON, raw bytes, gjson documents and
// images.
//
// A Decoder returning a nil value and a nil error has made a "nil
// decode": the result held nothing to decode, typically because the body
// was empty. The typed request functions of the reqx package turn a nil
// decode into httperr.ErrEmptyBody unless the caller asked for an
// optional value.
package decode

import (
	"bytes"
	"encoding/json"
	"image"
	// Register the common image formats with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/tidwall/gjson"

	"github.com/gogama/reqx/httperr"
	"github.com/gogama/reqx/request"
)

// A Decoder decodes the raw result of a request into a value of type T.
// Decode is only called on results without an error.
type Decoder[T any] interface {
	Decode(res *request.Result, p *request.Parameters) (*T, error)
}

// The Func type is an adapter to allow the use of ordinary functions as
// decoders.
type Func[T any] func(res *request.Result, p *request.Parameters) (*T, error)

// Decode calls f(res, p).
func (f Func[T]) Decode(res *request.Result, p *request.Parameters) (*T, error) {
	return f(res, p)
}

// JSON returns a Decoder unmarshalling the response body into a T with
// encoding/json. An empty body is a nil decode.
func JSON[T any]() Decoder[T] {
	return Func[T](func(res *request.Result, _ *request.Parameters) (*T, error) {
		if len(bytes.TrimSpace(res.Body)) == 0 {
			return nil, nil
		}
		v := new(T)
		if err := json.Unmarshal(res.Body, v); err != nil {
			return nil, httperr.Decoding(err)
		}
		return v, nil
	})
}

// Bytes returns a Decoder yielding the raw response body. An empty body
// is a nil decode.
func Bytes() Decoder[[]byte] {
	return Func[[]byte](func(res *request.Result, _ *request.Parameters) (*[]byte, error) {
		if len(res.Body) == 0 {
			return nil, nil
		}
		b := res.Body
		return &b, nil
	})
}

// GJSON returns a Decoder parsing the response body as a gjson document.
// An empty body is a nil decode and a body which is not valid JSON is a
// decoding error.
func GJSON() Decoder[gjson.Result] {
	return Func[gjson.Result](func(res *request.Result, _ *request.Parameters) (*gjson.Result, error) {
		if len(bytes.TrimSpace(res.Body)) == 0 {
			return nil, nil
		}
		if !gjson.ValidBytes(res.Body) {
			return nil, httperr.Decoding(errInvalidJSON)
		}
		doc := gjson.ParseBytes(res.Body)
		return &doc, nil
	})
}

// Image returns a Decoder decoding the response body as a GIF, JPEG or
// PNG image. An empty body is a nil decode.
func Image() Decoder[image.Image] {
	return Func[image.Image](func(res *request.Result, _ *request.Parameters) (*image.Image, error) {
		if len(res.Body) == 0 {
			return nil, nil
		}
		img, _, err := image.Decode(bytes.NewReader(res.Body))
		if err != nil {
			return nil, httperr.Decoding(err)
		}
		return &img, nil
	})
}
