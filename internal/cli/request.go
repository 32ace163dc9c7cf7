// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogama/reqx/decode"
	"github.com/gogama/reqx/plugin"
	"github.com/gogama/reqx/request"
)

type requestFlags struct {
	headers []string
	data    string
	query   string
	schema  string
	include bool
	timeout time.Duration
}

func newRequestCmd(o *options, name, method string) *cobra.Command {
	rf := &requestFlags{}
	cmd := &cobra.Command{
		Use:   name + " URL",
		Short: fmt.Sprintf("Send a %s request", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, o, rf, method, args[0])
		},
	}
	f := cmd.Flags()
	f.StringArrayVarP(&rf.headers, "header", "H", nil, "request header as 'Key: Value', repeatable")
	if method == http.MethodPost || method == http.MethodPut {
		f.StringVarP(&rf.data, "data", "d", "", "request body")
	}
	f.StringVarP(&rf.query, "query", "q", "", "print only the value at this gjson path of a JSON response")
	f.StringVar(&rf.schema, "schema", "", "JSON schema file a successful response must satisfy")
	f.BoolVarP(&rf.include, "include", "i", false, "print the response status and headers")
	f.DurationVar(&rf.timeout, "timeout", 0, "attempt timeout, overriding the configured policy")
	return cmd
}

func (rf *requestFlags) parameters(method string) (*request.Parameters, error) {
	opts := []request.Option{request.WithMethod(method)}
	for _, h := range rf.headers {
		k, v, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("malformed header %q", h)
		}
		opts = append(opts, request.WithHeader(strings.TrimSpace(k), strings.TrimSpace(v)))
	}
	if rf.data != "" {
		opts = append(opts, request.WithBody(rf.data))
	}
	if rf.timeout > 0 {
		opts = append(opts, request.WithTimeout(rf.timeout))
	}
	if rf.schema != "" {
		doc, err := os.ReadFile(rf.schema)
		if err != nil {
			return nil, err
		}
		pl, err := plugin.CompileSchema(string(doc))
		if err != nil {
			return nil, err
		}
		opts = append(opts, request.WithPlugins(pl))
	}
	return request.NewParameters(opts...)
}

func runRequest(cmd *cobra.Command, o *options, rf *requestFlags, method, rawURL string) error {
	p, err := rf.parameters(method)
	if err != nil {
		return err
	}
	m, cleanup, err := o.manager()
	defer cleanup()
	if err != nil {
		return err
	}

	res, err := m.Do(cmd.Context(), request.RawURL(rawURL), p, nil)
	out := newPrinter(cmd.OutOrStdout(), o.noColor)
	if rf.include && res.Response != nil {
		out.head(res)
	}
	if err != nil {
		return err
	}

	if rf.query == "" {
		out.body(res.Body)
		return nil
	}
	doc, err := decode.GJSON().Decode(res, p)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("empty response, no value at %q", rf.query)
	}
	v := doc.Get(rf.query)
	if !v.Exists() {
		return fmt.Errorf("no value at %q", rf.query)
	}
	out.line(v.String())
	return nil
}
