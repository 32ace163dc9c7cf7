// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"io"
)

// BodyBytes reads a request body given as nil, a string, a []byte or an
// io.Reader into memory so that it can be replayed on every attempt.
//
// A reader is drained and, if it is an io.Closer, closed, even when the
// read fails. The read error takes precedence over the close error. Any
// other body type is rejected.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case io.Reader:
		return drain(x)
	}
	return nil, fmt.Errorf("reqx/request: unsupported body type %T", body)
}

func drain(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(r)
	if c, ok := r.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
