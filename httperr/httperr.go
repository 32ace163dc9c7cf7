// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package httperr defines the error values produced by the reqx request
// manager, plug-ins and decoders, and a coarse classifier over them.
//
// The request manager treats errors as opaque signals: they flow into a
// request Result unchanged and are only inspected by retry and
// stop-the-line policies. Use Kind to bucket an arbitrary error into the
// broad families the library knows about.
package httperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gogama/reqx/transient"
)

var (
	// ErrEmptyBody is returned when a non-optional decode is requested
	// but the response carried no decodable value.
	ErrEmptyBody = errors.New("reqx: empty response body")

	// ErrCacheMiss is returned when a request's cache policy forbids
	// loading from the network and no cached response is available.
	ErrCacheMiss = errors.New("reqx: no cached response")

	// ErrCanceled is the error carried by a request result when the
	// request was cancelled after its transport attempt started.
	ErrCanceled = errors.New("reqx: request canceled")
)

// A StatusError reports an HTTP response whose status code was
// rejected by a verifying plug-in.
type StatusError struct {
	Code int
}

func (err *StatusError) Error() string {
	return fmt.Sprintf("reqx: unacceptable status code %d (%s)", err.Code, http.StatusText(err.Code))
}

// StatusCode returns a new *StatusError for the given code.
func StatusCode(code int) error {
	return &StatusError{Code: code}
}

// StatusCodeOf extracts the status code from err if err is, or wraps,
// a *StatusError.
func StatusCodeOf(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

// An EncodingError reports a failure to build the outgoing request,
// for example an invalid address or an unserializable body.
type EncodingError struct {
	Err error
}

func (err *EncodingError) Error() string {
	return "reqx: cannot encode request: " + err.Err.Error()
}

func (err *EncodingError) Unwrap() error {
	return err.Err
}

// Encoding wraps err as an *EncodingError. A nil err yields nil.
func Encoding(err error) error {
	if err == nil {
		return nil
	}
	return &EncodingError{Err: err}
}

// A DecodingError reports a response body which could not be decoded
// into the requested type.
type DecodingError struct {
	Err error
}

func (err *DecodingError) Error() string {
	return "reqx: cannot decode response: " + err.Err.Error()
}

func (err *DecodingError) Unwrap() error {
	return err.Err
}

// Decoding wraps err as a *DecodingError. A nil err yields nil.
func Decoding(err error) error {
	if err == nil {
		return nil
	}
	return &DecodingError{Err: err}
}

// A Category is a broad error family as reported by Kind.
type Category int

const (
	// KindNone is the category of a nil error.
	KindNone Category = iota
	// KindConnection covers transport-layer failures: timeouts, refused
	// or reset connections, failed lookups.
	KindConnection
	// KindEncoding covers failures to build the outgoing request.
	KindEncoding
	// KindDecoding covers failures to decode a response, including an
	// empty body where a value was required.
	KindDecoding
	// KindStatus covers HTTP status codes rejected by a plug-in.
	KindStatus
	// KindCanceled covers caller cancellation.
	KindCanceled
	// KindOther covers everything else.
	KindOther
)

// Kind classifies err into a broad family.
func Kind(err error) Category {
	var (
		se *StatusError
		ee *EncodingError
		de *DecodingError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrCanceled), errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.As(err, &se):
		return KindStatus
	case errors.As(err, &ee):
		return KindEncoding
	case errors.As(err, &de), errors.Is(err, ErrEmptyBody):
		return KindDecoding
	case transient.Is(err):
		return KindConnection
	default:
		return KindOther
	}
}

var kindNames = []string{"none", "connection", "encoding", "decoding", "status", "canceled", "other"}

// String returns the lower-case name of the category, suitable for use
// as a metric label.
func (cat Category) String() string {
	if cat < 0 || int(cat) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[cat]
}
