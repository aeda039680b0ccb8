// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"testing"
	"time"
)

func TestTTLCacheGetSetInvalidate(t *testing.T) {
	c := newTTLCache(10, time.Hour)

	if _, ok := c.get("k"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.set("k", []byte("v"), PriorityDefault)
	got, ok := c.get("k")
	if !ok || string(got) != "v" {
		t.Fatalf("get = (%q, %v), want (\"v\", true)", got, ok)
	}

	c.invalidate("k")
	if _, ok := c.get("k"); ok {
		t.Fatal("expected miss after invalidate")
	}
}

func TestTTLCacheExpiresEntries(t *testing.T) {
	c := newTTLCache(10, time.Millisecond)
	c.set("k", []byte("v"), PriorityDefault)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.get("k"); ok {
		t.Fatal("expected entry to have expired")
	}
}

func TestTTLCacheRefreshesOnHit(t *testing.T) {
	c := newTTLCache(10, 20*time.Millisecond)
	c.set("k", []byte("v"), PriorityDefault)

	// Touch it a few times inside the TTL window; each hit should push
	// expiry forward so the entry survives longer than a single TTL.
	deadline := time.Now().Add(60 * time.Millisecond)
	for time.Now().Before(deadline) {
		if _, ok := c.get("k"); !ok {
			t.Fatal("entry expired despite being refreshed on every hit")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTTLCacheInvalidatePrefix(t *testing.T) {
	c := newTTLCache(10, time.Hour)
	c.set("vote:p1:a", []byte("1"), PriorityDefault)
	c.set("vote:p1:b", []byte("2"), PriorityDefault)
	c.set("vote:p2:a", []byte("3"), PriorityDefault)

	allKeys := func() []string {
		return []string{"vote:p1:a", "vote:p1:b", "vote:p2:a"}
	}
	c.invalidatePrefix("vote:p1:", allKeys)

	if _, ok := c.get("vote:p1:a"); ok {
		t.Fatal("vote:p1:a should have been invalidated")
	}
	if _, ok := c.get("vote:p1:b"); ok {
		t.Fatal("vote:p1:b should have been invalidated")
	}
	if _, ok := c.get("vote:p2:a"); !ok {
		t.Fatal("vote:p2:a should not have been invalidated")
	}
}

func TestNewCachesBundlesAllSix(t *testing.T) {
	c := newCaches()
	caches := []*ttlCache{c.primary, c.transactionCache, c.blockCache, c.validatorMetrics, c.votingPowerCache, c.slashingCache}
	for i, cache := range caches {
		if cache == nil {
			t.Fatalf("cache at index %d is nil", i)
		}
	}
}
