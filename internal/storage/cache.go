// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"
	"time"

	"github.com/decred/dcrd/lru"
)

// Cache priority tiers for the primary cache, per spec §4.3.
const (
	PriorityDefault = 1
	PriorityPoW     = 2
)

// Default cache bounds and TTLs, per spec §4.3's caching policy table.
const (
	primaryCacheTTL     = 3600 * time.Second
	primaryCacheMaxSize = 10000

	transactionCacheTTL     = 3600 * time.Second
	transactionCacheMaxSize = 10000

	blockCacheTTL     = 3600 * time.Second
	blockCacheMaxSize = 10000

	validatorMetricsCacheTTL     = 300 * time.Second
	validatorMetricsCacheMaxSize = 1000
)

// cacheEntry wraps a cached value with its expiry and priority so
// TTL refresh-on-hit has somewhere to store its bookkeeping.
type cacheEntry struct {
	value    []byte
	priority int
	expires  time.Time
}

// ttlCache is a bounded, TTL-refreshing cache of raw JSON byte values.
// It underlies every one of the storage layer's caches; they differ
// only in size and default TTL. Expired entries are not swept in the
// background: get drops an entry once it finds it past its expiry.
//
// The primary cache's "on-evict hook writes dirty entries back" from
// spec §4.3 is satisfied structurally rather than through an eviction
// callback: every write to the underlying store and every cache write
// happen together inside Store.putCached's critical section, so an
// entry can never be evicted from this cache while holding a value the
// store itself does not already have durably. There is nothing left
// for an eviction hook to flush.
type ttlCache struct {
	mu      sync.Mutex
	entries lru.Cache[string, *cacheEntry]
	ttl     time.Duration
}

func newTTLCache(maxSize int, ttl time.Duration) *ttlCache {
	return &ttlCache{
		entries: *lru.NewCache[string, *cacheEntry](uint(maxSize)),
		ttl:     ttl,
	}
}

// get returns the cached value for key if present and unexpired,
// refreshing its TTL on every hit per spec §4.3.
func (c *ttlCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		c.entries.Delete(key)
		return nil, false
	}
	entry.expires = time.Now().Add(c.ttl)
	return entry.value, true
}

// set stores value under key with the given priority.
func (c *ttlCache) set(key string, value []byte, priority int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Add(key, &cacheEntry{
		value:    value,
		priority: priority,
		expires:  time.Now().Add(c.ttl),
	})
}

// invalidate removes key from the cache unconditionally, used when the
// underlying record is deleted or a transaction rolls back.
func (c *ttlCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Delete(key)
}

// invalidatePrefix removes every cached key beginning with prefix;
// used by compaction and batch rollback to drop a whole family of
// entries without enumerating them individually.
func (c *ttlCache) invalidatePrefix(prefix string, allKeys func() []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range allKeys() {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			c.entries.Delete(key)
		}
	}
}

// caches bundles the storage layer's bounded caches: primary,
// transaction, block and validator metrics, the last accompanied by
// separate voting-power and slashing-history caches of the same size
// and TTL.
type caches struct {
	primary           *ttlCache
	transactionCache  *ttlCache
	blockCache        *ttlCache
	validatorMetrics  *ttlCache
	votingPowerCache  *ttlCache
	slashingCache     *ttlCache
}

func newCaches() *caches {
	return &caches{
		primary:          newTTLCache(primaryCacheMaxSize, primaryCacheTTL),
		transactionCache: newTTLCache(transactionCacheMaxSize, transactionCacheTTL),
		blockCache:       newTTLCache(blockCacheMaxSize, blockCacheTTL),
		validatorMetrics: newTTLCache(validatorMetricsCacheMaxSize, validatorMetricsCacheTTL),
		votingPowerCache: newTTLCache(validatorMetricsCacheMaxSize, validatorMetricsCacheTTL),
		slashingCache:    newTTLCache(validatorMetricsCacheMaxSize, validatorMetricsCacheTTL),
	}
}
