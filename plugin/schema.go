// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/gogama/reqx/httperr"
	"github.com/gogama/reqx/request"
)

type schema struct {
	Base
	schema *jsonschema.Schema
}

// Schema constructs a plug-in which validates, in Verify, the JSON body
// of every 2XX response against s. Empty bodies are not validated. A
// body which is not JSON, or which violates the schema, is rejected with
// an *httperr.DecodingError.
func Schema(s *jsonschema.Schema) Plugin {
	if s == nil {
		panic("reqx/plugin: nil schema")
	}
	return &schema{schema: s}
}

// CompileSchema compiles a JSON schema document and constructs a Schema
// plug-in from it.
func CompileSchema(doc string) (Plugin, error) {
	s, err := jsonschema.CompileString("schema.json", doc)
	if err != nil {
		return nil, err
	}
	return Schema(s), nil
}

func (s *schema) Verify(res *request.Result, _ *request.Parameters, _ *request.UserInfo) error {
	code := res.StatusCode()
	if code < 200 || code > 299 || len(res.Body) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(res.Body, &v); err != nil {
		return httperr.Decoding(err)
	}
	if err := s.schema.Validate(v); err != nil {
		return httperr.Decoding(err)
	}
	return nil
}
