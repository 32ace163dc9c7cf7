// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/gogama/reqx/request"
)

type limit struct {
	Base
	limiter *rate.Limiter
}

// Limit constructs a plug-in which paces attempts through a token
// bucket. WillSend blocks until the limiter grants a token or the
// attempt's context is done; in the latter case the transport observes
// the same context error.
func Limit(l *rate.Limiter) Plugin {
	if l == nil {
		panic("reqx/plugin: nil limiter")
	}
	return &limit{limiter: l}
}

func (l *limit) WillSend(r *http.Request, _ *request.Parameters, _ *request.UserInfo) {
	_ = l.limiter.Wait(r.Context())
}
