// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

// Package cache provides the time-bounded query result cache that sits
// between the HTTP handlers and the mart query layer.
//
// The store is a bounded LRU with per-entry TTLs and three guarantees:
//
//   - At most one concurrent computation per descriptor: concurrent callers
//     for the same key share a single in-flight computation instead of
//     duplicating warehouse work.
//   - A failed computation never creates or updates an entry, and all waiters
//     for that key receive the same failure.
//   - Expired entries are demoted, not deleted: they remain retrievable via
//     GetStale (for the stale-but-available fallback) until LRU pressure or
//     explicit invalidation evicts them.
//
// The clock is injected so TTL and eviction behavior are testable without
// sleeping.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pitchside/pitchside/internal/metrics"
)

// ErrTimeout is returned to a caller whose context expires while waiting for
// another caller's in-flight computation. The computation itself keeps
// running for the remaining waiters.
var ErrTimeout = errors.New("cache: timed out waiting for in-flight computation")

// entry is one cached result in the doubly-linked LRU list.
// head.next is the most recently used, tail.prev the least.
type entry struct {
	key      string
	value    any
	storedAt time.Time
	ttl      time.Duration
	prev     *entry
	next     *entry
}

// Stats is a snapshot of the store's monotonically accumulating counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
}

// HitRate returns hits/(hits+misses), or 0 when no requests have occurred.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Store is a thread-safe bounded LRU cache with per-entry TTLs and in-flight
// computation deduplication.
type Store struct {
	mu       sync.Mutex
	capacity int
	now      func() time.Time

	// items maps keys to linked list nodes for O(1) lookup; head and tail
	// are sentinels.
	items map[string]*entry
	head  *entry
	tail  *entry

	group singleflight.Group

	hits      int64
	misses    int64
	evictions int64
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the store's time source. Tests use this to drive TTL
// expiry with a fake clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a store bounded to capacity entries. When the bound is
// exceeded the least-recently-used entry is evicted, expired or not.
func New(capacity int, opts ...Option) *Store {
	if capacity <= 0 {
		capacity = 1024
	}
	s := &Store{
		capacity: capacity,
		now:      time.Now,
		items:    make(map[string]*entry, capacity),
		head:     &entry{},
		tail:     &entry{},
	}
	s.head.next = s.tail
	s.tail.prev = s.head
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCompute returns the cached result for desc if a fresh entry exists;
// otherwise it invokes compute, stores the result with the given TTL, and
// returns it. The boolean reports whether the result came from cache.
//
// Concurrent callers with the same descriptor share one computation: the
// first caller runs compute, late joiners wait for its result. A caller
// whose ctx expires while waiting receives ErrTimeout without cancelling
// the computation for the others; compute itself runs detached from the
// initiating caller's cancellation for the same reason.
func (s *Store) GetOrCompute(ctx context.Context, desc Descriptor, ttl time.Duration, compute func(context.Context) (any, error)) (any, bool, error) {
	key := desc.Key()

	if value, ok := s.lookupFresh(key); ok {
		return value, true, nil
	}

	runCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		value, err := compute(runCtx)
		if err != nil {
			// Failure must not poison the cache: no entry is written and
			// every waiter on this flight receives the same error.
			return nil, err
		}
		s.put(key, value, ttl)
		return value, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val, false, nil
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	}
}

// GetStale returns the last successfully computed value for desc regardless
// of freshness, together with its age. Used as the fallback when the
// warehouse is unavailable: stale-but-available beats an error page.
// Returns false if the entry was never computed or has been evicted.
func (s *Store) GetStale(desc Descriptor) (any, time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[desc.Key()]
	if !ok {
		return nil, 0, false
	}
	return e.value, s.now().Sub(e.storedAt), true
}

// Invalidate removes the entry for desc immediately. The next GetOrCompute
// for the descriptor recomputes even inside the old TTL window.
func (s *Store) Invalidate(desc Descriptor) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeKey(desc.Key())
}

// InvalidatePrefix removes every entry whose descriptor name matches the
// given query name (all parameter variants). Returns the number removed.
func (s *Store) InvalidatePrefix(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := name + ":"
	removed := 0
	for key := range s.items {
		if strings.HasPrefix(key, prefix) {
			if s.removeKey(key) {
				removed++
			}
		}
	}
	return removed
}

// Clear removes all entries.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.items)
	s.items = make(map[string]*entry, s.capacity)
	s.head.next = s.tail
	s.tail.prev = s.head
	s.evictions += int64(removed)
	metrics.CacheEvictions.Add(float64(removed))
	metrics.CacheEntries.Set(0)
	return removed
}

// Stats returns a snapshot of the store's counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
		Entries:   len(s.items),
	}
}

// Len returns the current number of entries, fresh and stale.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// lookupFresh returns the value for key if present and unexpired, promoting
// the entry to most recently used and recording a hit. Expired entries are
// left in place for GetStale and record a miss.
func (s *Store) lookupFresh(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[key]
	if ok && s.now().Sub(e.storedAt) < e.ttl {
		s.moveToFront(e)
		s.hits++
		metrics.CacheHits.Inc()
		return e.value, true
	}

	s.misses++
	metrics.CacheMisses.Inc()
	return nil, false
}

// put stores a freshly computed value, evicting from the tail when over
// capacity.
func (s *Store) put(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.items[key]; ok {
		e.value = value
		e.storedAt = now
		e.ttl = ttl
		s.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, storedAt: now, ttl: ttl}
	s.addToFront(e)
	s.items[key] = e

	for len(s.items) > s.capacity {
		s.evictOldest()
	}
	metrics.CacheEntries.Set(float64(len(s.items)))
}

// Internal list operations (must be called with mu held)

func (s *Store) addToFront(e *entry) {
	e.prev = s.head
	e.next = s.head.next
	s.head.next.prev = e
	s.head.next = e
}

func (s *Store) moveToFront(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	s.addToFront(e)
}

func (s *Store) removeKey(key string) bool {
	e, ok := s.items[key]
	if !ok {
		return false
	}
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(s.items, key)
	s.evictions++
	metrics.CacheEvictions.Inc()
	metrics.CacheEntries.Set(float64(len(s.items)))
	return true
}

func (s *Store) evictOldest() {
	oldest := s.tail.prev
	if oldest == s.head {
		return
	}
	s.removeKey(oldest.key)
}
