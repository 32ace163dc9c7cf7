// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// An LRU is an in-memory Cache holding at most a fixed number of
// entries, evicting the least recently used entry when full.
type LRU struct {
	items *lru.Cache[string, *Entry]
}

// NewLRU returns an LRU cache holding at most size entries. It panics
// if size is not positive.
func NewLRU(size int) *LRU {
	items, err := lru.New[string, *Entry](size)
	if err != nil {
		panic("reqx/cache: " + err.Error())
	}
	return &LRU{items: items}
}

// Get returns the entry stored under key and marks it recently used.
func (c *LRU) Get(key string) (*Entry, bool) {
	return c.items.Get(key)
}

// Put stores e under key.
func (c *LRU) Put(key string, e *Entry) {
	c.items.Add(key, e)
}

// Remove deletes the entry stored under key.
func (c *LRU) Remove(key string) {
	c.items.Remove(key)
}

// Len returns the number of entries.
func (c *LRU) Len() int {
	return c.items.Len()
}
