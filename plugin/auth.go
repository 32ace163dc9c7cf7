// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package plugin

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gogama/reqx/request"
)

// TokenKey is the UserInfo key under which Bearer records the token it
// attached to the most recent attempt.
type TokenKey struct{}

// TokenErrKey is the UserInfo key under which Bearer records the error
// returned by its token source, if any.
type TokenErrKey struct{}

// A TokenSource supplies access tokens.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type TokenSource interface {
	Token() (string, error)
}

// The TokenFunc type is an adapter to allow the use of ordinary
// functions as token sources.
type TokenFunc func() (string, error)

// Token calls f().
func (f TokenFunc) Token() (string, error) {
	return f()
}

// ErrNoToken is returned by a TokenStore which holds no token.
var ErrNoToken = errors.New("reqx/plugin: no token")

// A TokenStore is a TokenSource holding a replaceable token. It pairs
// with a stop-the-line refresh policy, which stores a fresh token while
// all other traffic is paused.
type TokenStore struct {
	lock  sync.RWMutex
	token string
}

// NewTokenStore returns a TokenStore holding token.
func NewTokenStore(token string) *TokenStore {
	return &TokenStore{token: token}
}

// Token returns the stored token, or ErrNoToken if it is empty.
func (s *TokenStore) Token() (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.token == "" {
		return "", ErrNoToken
	}
	return s.token, nil
}

// Set replaces the stored token.
func (s *TokenStore) Set(token string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.token = token
}

type bearer struct {
	Base
	source TokenSource
}

// Bearer constructs a plug-in which sets the Authorization header of
// every attempt to a bearer token obtained from source. The token is
// fetched anew for each attempt, so an attempt replayed after a token
// refresh carries the new token.
//
// If source fails, the request is sent without an Authorization header
// and the error is recorded in UserInfo under TokenErrKey.
func Bearer(source TokenSource) Plugin {
	if source == nil {
		panic("reqx/plugin: nil token source")
	}
	return &bearer{source: source}
}

func (b *bearer) Prepare(r *http.Request, _ *request.Parameters, ui *request.UserInfo) *http.Request {
	token, err := b.source.Token()
	if err != nil {
		ui.Set(TokenErrKey{}, err)
		return r
	}
	ui.Delete(TokenErrKey{})
	ui.Set(TokenKey{}, token)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}
