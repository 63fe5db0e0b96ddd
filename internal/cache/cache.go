// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Cache is a TTL map safe for concurrent use. A janitor goroutine sweeps
// expired entries until Stop.
type Cache[V any] struct {
	mu          sync.Mutex
	entries     map[string]entry[V]
	ttl         time.Duration
	lastCleanup time.Time
	now         func() time.Time

	hits, misses, evictions atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
}

// New returns a cache whose entries live for ttl, swept every interval
// (ttl when interval is not positive, one minute when neither is).
//
//	dashboards := cache.New[*models.Dashboard](5*time.Minute, 0)
//	defer dashboards.Stop()
func New[V any](ttl, interval time.Duration) *Cache[V] {
	if interval <= 0 {
		interval = ttl
	}
	if interval <= 0 {
		interval = time.Minute
	}
	c := &Cache[V]{
		entries:     make(map[string]entry[V]),
		ttl:         ttl,
		now:         time.Now,
		lastCleanup: time.Now(),
		stop:        make(chan struct{}),
	}
	go c.janitor(interval)
	return c
}

// Get returns the live value for key. Finding an expired entry removes it
// and counts as both a miss and an eviction.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	expired := ok && c.now().After(e.expires)
	if expired {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	if !ok || expired {
		c.misses.Add(1)
		if expired {
			c.evictions.Add(1)
		}
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	return e.value, true
}

// Set stores value for the cache TTL.
func (c *Cache[V]) Set(key string, value V) { c.SetWithTTL(key, value, c.ttl) }

func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expires: c.now().Add(ttl)}
	c.mu.Unlock()
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.evictions.Add(1)
}

// Clear drops every entry, as after an event that invalidates them all.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	n := len(c.entries)
	clear(c.entries)
	c.mu.Unlock()
	c.evictions.Add(int64(n))
}

// Len counts entries, including expired ones not swept yet.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) GetStats() Stats {
	c.mu.Lock()
	keys, last := int64(len(c.entries)), c.lastCleanup
	c.mu.Unlock()
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		TotalKeys:   keys,
		LastCleanup: last,
	}
}

// HitRate is the percentage of lookups that hit, 0 before any lookup.
func (c *Cache[V]) HitRate() float64 {
	hits, misses := c.hits.Load(), c.misses.Load()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses) * 100
}

// Stop ends the janitor. The cache keeps working; expired entries are then
// only dropped by Get.
func (c *Cache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache[V]) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, key)
			c.evictions.Add(1)
		}
	}
	c.lastCleanup = now
}

// GenerateKey derives a compact key from a name and JSON-encodable params.
// Params that cannot be encoded fall back to their %v form.
func GenerateKey(name string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", name, params)
	}
	sum := sha256.Sum256(data)
	return name + ":" + hex.EncodeToString(sum[:16])
}
