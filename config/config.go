// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package config loads request manager settings from a configuration file
and the environment, and translates them into reqx options.

Settings are read, in increasing order of precedence, from built-in
defaults, an optional YAML, JSON or TOML file, and environment variables
prefixed with REQX_. Nested keys are joined with underscores, so the
retry attempt count may be set with REQX_RETRY_ATTEMPTS. Durations are
written in time.ParseDuration syntax and lists in the environment are
comma separated.

A minimal YAML file looks like:

	max_attempts: 1
	timeout:
	  usual: 2s
	  after: [5s, 10s]
	retry:
	  attempts: 5
	  status_codes: [429, 503]
	cache:
	  kind: ttl
	  size: 1000
	  ttl: 1m
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/gogama/reqx"
	"github.com/gogama/reqx/cache"
	"github.com/gogama/reqx/plugin"
	"github.com/gogama/reqx/retry"
	"github.com/gogama/reqx/timeout"
)

// EnvPrefix is the prefix of environment variables overriding
// configuration keys.
const EnvPrefix = "REQX"

// Config holds the settings of a request manager.
type Config struct {
	// MaxAttempts bounds the number of times one logical request may be
	// replayed by stop-the-line handling.
	MaxAttempts int `mapstructure:"max_attempts" validate:"gte=0"`
	// RequestID enables the request identifier plug-in.
	RequestID bool `mapstructure:"request_id"`
	// AcceptStatus, if not empty, lists the only response status codes
	// accepted as successful.
	AcceptStatus []int `mapstructure:"accept_status" validate:"dive,gte=100,lte=599"`

	Timeout   TimeoutConfig   `mapstructure:"timeout"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// TimeoutConfig configures per-attempt timeouts. A zero Usual timeout
// leaves attempts bounded only by the caller's context.
type TimeoutConfig struct {
	Usual time.Duration   `mapstructure:"usual" validate:"gte=0"`
	After []time.Duration `mapstructure:"after" validate:"dive,gt=0"`
}

// RetryConfig configures the retrier. Zero Attempts disables retry.
type RetryConfig struct {
	Attempts    int           `mapstructure:"attempts" validate:"gte=0"`
	StatusCodes []int         `mapstructure:"status_codes" validate:"dive,gte=100,lte=599"`
	Transient   bool          `mapstructure:"transient"`
	Budget      time.Duration `mapstructure:"budget" validate:"gte=0"`
	Base        time.Duration `mapstructure:"base" validate:"gte=0"`
	Max         time.Duration `mapstructure:"max" validate:"gtefield=Base"`
}

// CacheConfig selects the response cache.
type CacheConfig struct {
	Kind string        `mapstructure:"kind" validate:"oneof=none lru ttl"`
	Size int           `mapstructure:"size" validate:"gte=0,required_if=Kind lru"`
	TTL  time.Duration `mapstructure:"ttl" validate:"gte=0,required_if=Kind ttl"`
}

// AuthConfig configures bearer token authentication.
type AuthConfig struct {
	Token string `mapstructure:"token"`
}

// RateLimitConfig configures client-side pacing of attempts. A zero RPS
// disables pacing.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" validate:"gte=0"`
	Burst int     `mapstructure:"burst" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MaxAttempts: 1,
		Retry: RetryConfig{
			Attempts:    retry.DefaultAttempts,
			StatusCodes: []int{429, 502, 503, 504},
			Transient:   true,
			Base:        50 * time.Millisecond,
			Max:         time.Second,
		},
		Cache:     CacheConfig{Kind: "none"},
		RateLimit: RateLimitConfig{Burst: 1},
	}
}

// Load reads the configuration file at path, if path is not empty,
// applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reqx/config: reading %s: %w", path, err)
		}
	}

	c := &Config{}
	err := v.Unmarshal(c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("reqx/config: decoding: %w", err)
	}
	if err = c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("max_attempts", c.MaxAttempts)
	v.SetDefault("request_id", c.RequestID)
	v.SetDefault("timeout.usual", c.Timeout.Usual)
	v.SetDefault("retry.attempts", c.Retry.Attempts)
	v.SetDefault("retry.status_codes", c.Retry.StatusCodes)
	v.SetDefault("retry.transient", c.Retry.Transient)
	v.SetDefault("retry.budget", c.Retry.Budget)
	v.SetDefault("retry.base", c.Retry.Base)
	v.SetDefault("retry.max", c.Retry.Max)
	v.SetDefault("cache.kind", c.Cache.Kind)
	v.SetDefault("cache.size", c.Cache.Size)
	v.SetDefault("cache.ttl", c.Cache.TTL)
	v.SetDefault("auth.token", c.Auth.Token)
	v.SetDefault("rate_limit.rps", c.RateLimit.RPS)
	v.SetDefault("rate_limit.burst", c.RateLimit.Burst)
	// Lists have no default so they are bound to the environment directly.
	_ = v.BindEnv("accept_status")
	_ = v.BindEnv("timeout.after")
}

// Validate checks c for consistency.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return fmt.Errorf("reqx/config: invalid %s: failed %q constraint", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("reqx/config: %w", err)
	}
	return nil
}

// Options translates c into request manager options. The cleanup
// function releases resources held by the options, such as the eviction
// goroutine of a TTL cache, and is never nil.
func (c *Config) Options() (opts []reqx.Option, cleanup func(), err error) {
	cleanup = func() {}
	if err = c.Validate(); err != nil {
		return nil, cleanup, err
	}

	opts = append(opts, reqx.WithMaxAttempts(c.MaxAttempts))
	if c.Timeout.Usual > 0 {
		opts = append(opts, reqx.WithTimeoutPolicy(timeout.Adaptive(c.Timeout.Usual, c.Timeout.After...)))
	}
	if r := c.Retry.retrier(); r != nil {
		opts = append(opts, reqx.WithRetrier(r))
	}

	switch c.Cache.Kind {
	case "lru":
		opts = append(opts, reqx.WithCache(cache.NewLRU(c.Cache.Size)))
	case "ttl":
		ttl := cache.NewTTL(c.Cache.TTL, uint64(c.Cache.Size))
		cleanup = ttl.Close
		opts = append(opts, reqx.WithCache(ttl))
	}

	var plugins []plugin.Plugin
	if c.RequestID {
		plugins = append(plugins, plugin.RequestID())
	}
	if c.Auth.Token != "" {
		plugins = append(plugins, plugin.Bearer(plugin.NewTokenStore(c.Auth.Token)))
	}
	if c.RateLimit.RPS > 0 {
		burst := c.RateLimit.Burst
		if burst < 1 {
			burst = 1
		}
		plugins = append(plugins, plugin.Limit(rate.NewLimiter(rate.Limit(c.RateLimit.RPS), burst)))
	}
	if len(c.AcceptStatus) > 0 {
		plugins = append(plugins, plugin.AcceptStatus(c.AcceptStatus...))
	}
	if len(plugins) > 0 {
		opts = append(opts, reqx.WithPlugins(plugins...))
	}
	return opts, cleanup, nil
}

func (rc RetryConfig) retrier() retry.Retrier {
	if rc.Attempts < 1 {
		return nil
	}
	var decider retry.DeciderFunc
	switch {
	case len(rc.StatusCodes) > 0 && rc.Transient:
		decider = retry.StatusCode(rc.StatusCodes...).Or(retry.TransientErr)
	case len(rc.StatusCodes) > 0:
		decider = retry.StatusCode(rc.StatusCodes...)
	case rc.Transient:
		decider = retry.TransientErr
	default:
		return nil
	}
	if rc.Budget > 0 {
		decider = retry.Before(rc.Budget).And(decider)
	}
	waiter := retry.NewFixedWaiter(0)
	if rc.Base > 0 {
		waiter = retry.NewExpWaiter(rc.Base, rc.Max, time.Now())
	}
	return retry.New(rc.Attempts, decider, waiter, retry.Pass)
}
