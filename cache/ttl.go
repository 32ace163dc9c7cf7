// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// A TTL is an in-memory Cache whose entries expire a fixed time after
// they are stored. Reading an entry does not extend its lifetime.
//
// Call Close to stop the background goroutine which evicts expired
// entries.
type TTL struct {
	items *ttlcache.Cache[string, *Entry]
}

// NewTTL returns a TTL cache whose entries live for ttl. If capacity is
// positive, the least recently used entries are evicted once the cache
// holds capacity entries.
func NewTTL(ttl time.Duration, capacity uint64) *TTL {
	if ttl <= 0 {
		panic("reqx/cache: ttl must be positive")
	}
	opts := []ttlcache.Option[string, *Entry]{
		ttlcache.WithTTL[string, *Entry](ttl),
		ttlcache.WithDisableTouchOnHit[string, *Entry](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, *Entry](capacity))
	}
	c := &TTL{items: ttlcache.New(opts...)}
	go c.items.Start()
	return c
}

// Get returns the unexpired entry stored under key, if any.
func (c *TTL) Get(key string) (*Entry, bool) {
	item := c.items.Get(key)
	if item == nil || item.IsExpired() {
		return nil, false
	}
	return item.Value(), true
}

// Put stores e under key with the cache's TTL.
func (c *TTL) Put(key string, e *Entry) {
	c.items.Set(key, e, ttlcache.DefaultTTL)
}

// Remove deletes the entry stored under key.
func (c *TTL) Remove(key string) {
	c.items.Delete(key)
}

// Len returns the number of entries, including expired entries not yet
// evicted.
func (c *TTL) Len() int {
	return c.items.Len()
}

// Close stops expiry processing. The cache remains usable, but expired
// entries are only dropped when read.
func (c *TTL) Close() {
	c.items.Stop()
}
