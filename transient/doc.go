// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies errors from an HTTP request attempt as
// transient or non-transient. The request manager uses it to count
// attempt timeouts, the retry package uses it to decide whether a
// failed attempt is worth repeating, and the metrics plug-in uses it
// to bucket connection-layer failures.
//
// Package transient depends only on the standard library, so it may be
// imported standalone without bringing in the rest of reqx.
package transient
