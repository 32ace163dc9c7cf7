// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"github.com/gogama/reqx/httperr"
	"github.com/gogama/reqx/request"
)

type statusRange struct {
	Base
	min, max int
}

// StatusCodes constructs a plug-in which rejects, in Verify, responses
// whose status code lies outside the inclusive range [min, max]. The
// rejection error is an *httperr.StatusError.
//
// StatusCodes(200, 299) is the usual choice.
func StatusCodes(min, max int) Plugin {
	if min > max {
		panic("reqx/plugin: min status exceeds max status")
	}
	return &statusRange{min: min, max: max}
}

func (s *statusRange) Verify(res *request.Result, _ *request.Parameters, _ *request.UserInfo) error {
	code := res.StatusCode()
	if code < s.min || code > s.max {
		return httperr.StatusCode(code)
	}
	return nil
}

type statusSet struct {
	Base
	codes map[int]bool
}

// AcceptStatus constructs a plug-in which rejects, in Verify, responses
// whose status code is not one of codes.
func AcceptStatus(codes ...int) Plugin {
	s := &statusSet{codes: make(map[int]bool, len(codes))}
	for _, code := range codes {
		s.codes[code] = true
	}
	return s
}

func (s *statusSet) Verify(res *request.Result, _ *request.Parameters, _ *request.UserInfo) error {
	code := res.StatusCode()
	if !s.codes[code] {
		return httperr.StatusCode(code)
	}
	return nil
}
