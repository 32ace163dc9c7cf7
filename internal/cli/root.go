// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cli implements the reqx command line.
package cli

import (
	"fmt"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gogama/reqx"
	"github.com/gogama/reqx/config"
	"github.com/gogama/reqx/plugin"
)

var version = "0.1.0"

type options struct {
	configPath string
	verbosity  int
	noColor    bool
}

// NewRootCmd constructs the reqx root command and its subcommands.
func NewRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:     "reqx",
		Short:   "Send HTTP requests with retry, caching and plug-ins",
		Version: version,
		Long: `reqx sends HTTP requests through a request manager configured from
a YAML, JSON or TOML file and REQX_ environment variables. Requests are
retried, cached, rate limited and authenticated as configured.`,
		SilenceUsage: true,
	}
	f := cmd.PersistentFlags()
	f.StringVarP(&o.configPath, "config", "c", "", "configuration file")
	f.CountVarP(&o.verbosity, "verbose", "v", "log verbosity, repeat for more detail")
	f.BoolVar(&o.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newRequestCmd(o, "get", http.MethodGet),
		newRequestCmd(o, "head", http.MethodHead),
		newRequestCmd(o, "post", http.MethodPost),
		newRequestCmd(o, "put", http.MethodPut),
		newRequestCmd(o, "delete", http.MethodDelete),
	)
	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}

// manager builds the request manager described by the configuration.
// The returned cleanup function is never nil.
func (o *options) manager() (*reqx.Manager, func(), error) {
	c, err := config.Load(o.configPath)
	if err != nil {
		return nil, func() {}, err
	}
	opts, cleanup, err := c.Options()
	if err != nil {
		return nil, cleanup, err
	}
	logger, sync, err := newLogger(o.verbosity)
	if err != nil {
		return nil, cleanup, err
	}
	opts = append(opts, reqx.WithLogger(logger), reqx.WithPlugins(plugin.Log(logger)))
	return reqx.New(opts...), func() {
		cleanup()
		sync()
	}, nil
}

func newLogger(verbosity int) (logr.Logger, func(), error) {
	if verbosity < 1 {
		return logr.Discard(), func() {}, nil
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.Level(1 - verbosity))
	zl, err := zc.Build()
	if err != nil {
		return logr.Discard(), func() {}, fmt.Errorf("building logger: %w", err)
	}
	return zapr.NewLogger(zl), func() { _ = zl.Sync() }, nil
}
