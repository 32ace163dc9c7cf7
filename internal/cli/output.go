// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/gogama/reqx/request"
)

type printer struct {
	w          io.Writer
	statusOK   *color.Color
	statusWarn *color.Color
	statusErr  *color.Color
	headerKey  *color.Color
}

func newPrinter(w io.Writer, noColor bool) *printer {
	p := &printer{
		w:          w,
		statusOK:   color.New(color.FgGreen, color.Bold),
		statusWarn: color.New(color.FgYellow, color.Bold),
		statusErr:  color.New(color.FgRed, color.Bold),
		headerKey:  color.New(color.FgCyan),
	}
	if noColor {
		p.statusOK.DisableColor()
		p.statusWarn.DisableColor()
		p.statusErr.DisableColor()
		p.headerKey.DisableColor()
	}
	return p
}

// head prints the status line and the sorted response headers.
func (p *printer) head(res *request.Result) {
	c := p.statusOK
	switch code := res.StatusCode(); {
	case code >= 500:
		c = p.statusErr
	case code >= 400:
		c = p.statusWarn
	}
	proto := res.Response.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}
	_, _ = c.Fprintf(p.w, "%s %s\n", proto, res.Response.Status)
	if res.Cached {
		_, _ = fmt.Fprintln(p.w, "(cached)")
	}

	h := res.Header()
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range h[k] {
			_, _ = p.headerKey.Fprintf(p.w, "%s:", k)
			_, _ = fmt.Fprintf(p.w, " %s\n", v)
		}
	}
	_, _ = fmt.Fprintln(p.w)
}

func (p *printer) body(b []byte) {
	_, _ = p.w.Write(b)
	if len(b) > 0 && b[len(b)-1] != '\n' {
		_, _ = fmt.Fprintln(p.w)
	}
}

func (p *printer) line(s string) {
	_, _ = fmt.Fprintln(p.w, s)
}
