// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func constant(v any) func(context.Context) (any, error) {
	return func(context.Context) (any, error) { return v, nil }
}

func TestGetOrComputeBasic(t *testing.T) {
	s := New(10)
	desc := Descriptor{Name: "seasons"}

	value, cached, err := s.GetOrCompute(context.Background(), desc, time.Minute, constant("v1"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cached {
		t.Error("Expected first read to be a miss")
	}
	if value != "v1" {
		t.Errorf("Expected v1, got %v", value)
	}

	value, cached, err = s.GetOrCompute(context.Background(), desc, time.Minute, constant("v2"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !cached {
		t.Error("Expected second read to be a hit")
	}
	if value != "v1" {
		t.Errorf("Expected cached v1, got %v", value)
	}
}

func TestExpiredEntryRecomputes(t *testing.T) {
	clock := newFakeClock()
	s := New(10, WithClock(clock.Now))
	desc := Descriptor{Name: "team_form", Params: 42}

	if _, _, err := s.GetOrCompute(context.Background(), desc, 10*time.Minute, constant("old")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	clock.Advance(10*time.Minute + time.Second)

	value, cached, err := s.GetOrCompute(context.Background(), desc, 10*time.Minute, constant("new"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cached {
		t.Error("Expected recompute after TTL expiry")
	}
	if value != "new" {
		t.Errorf("Expected new, got %v", value)
	}
}

func TestEntryFreshJustBeforeExpiry(t *testing.T) {
	clock := newFakeClock()
	s := New(10, WithClock(clock.Now))
	desc := Descriptor{Name: "standings"}

	if _, _, err := s.GetOrCompute(context.Background(), desc, 10*time.Minute, constant("v")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	clock.Advance(10*time.Minute - time.Millisecond)

	_, cached, err := s.GetOrCompute(context.Background(), desc, 10*time.Minute, constant("other"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !cached {
		t.Error("Expected hit just inside the TTL window")
	}
}

func TestInvalidateForcesRecompute(t *testing.T) {
	s := New(10)
	desc := Descriptor{Name: "freshness"}

	if _, _, err := s.GetOrCompute(context.Background(), desc, time.Hour, constant("v1")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !s.Invalidate(desc) {
		t.Error("Expected Invalidate to report an entry removed")
	}
	if s.Invalidate(desc) {
		t.Error("Expected second Invalidate to find nothing")
	}

	value, cached, err := s.GetOrCompute(context.Background(), desc, time.Hour, constant("v2"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cached {
		t.Error("Expected recompute after invalidation")
	}
	if value != "v2" {
		t.Errorf("Expected v2, got %v", value)
	}
}

func TestInvalidatePrefix(t *testing.T) {
	s := New(20)
	for i := 0; i < 3; i++ {
		desc := Descriptor{Name: "upcoming_fixtures", Params: i}
		if _, _, err := s.GetOrCompute(context.Background(), desc, time.Hour, constant(i)); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	other := Descriptor{Name: "seasons"}
	if _, _, err := s.GetOrCompute(context.Background(), other, time.Hour, constant("s")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if removed := s.InvalidatePrefix("upcoming_fixtures"); removed != 3 {
		t.Errorf("Expected 3 removed, got %d", removed)
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 remaining entry, got %d", s.Len())
	}

	_, cached, err := s.GetOrCompute(context.Background(), other, time.Hour, constant("s"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !cached {
		t.Error("Expected unrelated descriptor to survive prefix invalidation")
	}
}

func TestHitRate(t *testing.T) {
	s := New(10)

	if rate := s.Stats().HitRate(); rate != 0 {
		t.Errorf("Expected hit rate 0 before any read, got %v", rate)
	}

	desc := Descriptor{Name: "teams"}
	for i := 0; i < 4; i++ {
		if _, _, err := s.GetOrCompute(context.Background(), desc, time.Hour, constant("v")); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	stats := s.Stats()
	if stats.Hits != 3 {
		t.Errorf("Expected 3 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
	if rate := stats.HitRate(); rate != 0.75 {
		t.Errorf("Expected hit rate 0.75, got %v", rate)
	}
}

func TestLRUBound(t *testing.T) {
	s := New(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		desc := Descriptor{Name: "q", Params: i}
		if _, _, err := s.GetOrCompute(ctx, desc, time.Hour, constant(i)); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	if s.Len() != 3 {
		t.Errorf("Expected capacity bound of 3, got %d entries", s.Len())
	}
	if s.Stats().Evictions != 2 {
		t.Errorf("Expected 2 evictions, got %d", s.Stats().Evictions)
	}

	// Oldest two were evicted; 2, 3, 4 remain.
	if _, _, ok := s.GetStale(Descriptor{Name: "q", Params: 0}); ok {
		t.Error("Expected oldest entry to have been evicted")
	}
	if _, _, ok := s.GetStale(Descriptor{Name: "q", Params: 4}); !ok {
		t.Error("Expected newest entry to survive")
	}
}

func TestLRUPromotionOnHit(t *testing.T) {
	s := New(2)
	ctx := context.Background()
	a := Descriptor{Name: "q", Params: "a"}
	b := Descriptor{Name: "q", Params: "b"}
	c := Descriptor{Name: "q", Params: "c"}

	for _, d := range []Descriptor{a, b} {
		if _, _, err := s.GetOrCompute(ctx, d, time.Hour, constant(d.Params)); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	// Touch a so b becomes least recently used.
	if _, _, err := s.GetOrCompute(ctx, a, time.Hour, constant("a")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, _, err := s.GetOrCompute(ctx, c, time.Hour, constant("c")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, _, ok := s.GetStale(b); ok {
		t.Error("Expected least recently used entry b to be evicted")
	}
	if _, _, ok := s.GetStale(a); !ok {
		t.Error("Expected promoted entry a to survive")
	}
}

func TestConcurrentRequestsShareOneComputation(t *testing.T) {
	s := New(10)
	desc := Descriptor{Name: "upcoming_fixtures", Params: "window"}

	var calls atomic.Int64
	release := make(chan struct{})
	compute := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "result", nil
	}

	const waiters = 20
	var wg sync.WaitGroup
	errs := make([]error, waiters)
	values := make([]any, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			values[i], _, errs[i] = s.GetOrCompute(context.Background(), desc, time.Hour, compute)
		}(i)
	}

	// Give every goroutine time to join the in-flight computation.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("Expected exactly 1 computation, got %d", got)
	}
	for i := 0; i < waiters; i++ {
		if errs[i] != nil {
			t.Errorf("Waiter %d got error: %v", i, errs[i])
		}
		if values[i] != "result" {
			t.Errorf("Waiter %d got %v, want result", i, values[i])
		}
	}
}

func TestFailedComputeDoesNotPoison(t *testing.T) {
	s := New(10)
	desc := Descriptor{Name: "standings", Params: 1}
	boom := errors.New("connection refused")

	_, _, err := s.GetOrCompute(context.Background(), desc, time.Hour, func(context.Context) (any, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected compute error, got %v", err)
	}

	if _, _, ok := s.GetStale(desc); ok {
		t.Error("Expected no entry after failed compute")
	}

	value, cached, err := s.GetOrCompute(context.Background(), desc, time.Hour, constant("recovered"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cached {
		t.Error("Expected fresh compute after earlier failure")
	}
	if value != "recovered" {
		t.Errorf("Expected recovered, got %v", value)
	}
}

func TestWaitersShareComputeFailure(t *testing.T) {
	s := New(10)
	desc := Descriptor{Name: "h2h", Params: "pair"}
	boom := errors.New("query failed")

	release := make(chan struct{})
	var calls atomic.Int64
	compute := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return nil, boom
	}

	const waiters = 5
	var wg sync.WaitGroup
	errs := make([]error, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = s.GetOrCompute(context.Background(), desc, time.Hour, compute)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("Expected 1 computation, got %d", got)
	}
	for i, err := range errs {
		if !errors.Is(err, boom) {
			t.Errorf("Waiter %d expected shared failure, got %v", i, err)
		}
	}
}

func TestWaiterTimeoutDoesNotCancelFlight(t *testing.T) {
	s := New(10)
	desc := Descriptor{Name: "slow_query"}

	release := make(chan struct{})
	done := make(chan struct{})
	compute := func(ctx context.Context) (any, error) {
		defer close(done)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return "eventual", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := s.GetOrCompute(ctx, desc, time.Hour, compute)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Expected ErrTimeout for the abandoned waiter, got %v", err)
	}

	// The flight keeps running after the waiter gave up and its result
	// lands in the cache.
	close(release)
	<-done
	deadline := time.After(time.Second)
	for {
		if value, _, ok := s.GetStale(desc); ok {
			if value != "eventual" {
				t.Errorf("Expected eventual, got %v", value)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("Computation result never reached the cache")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestGetStaleAfterExpiry(t *testing.T) {
	clock := newFakeClock()
	s := New(10, WithClock(clock.Now))
	desc := Descriptor{Name: "predictions", Params: []int64{1, 2}}

	if _, _, err := s.GetOrCompute(context.Background(), desc, time.Minute, constant("snapshot")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	clock.Advance(10 * time.Minute)

	value, age, ok := s.GetStale(desc)
	if !ok {
		t.Fatal("Expected stale entry to remain available")
	}
	if value != "snapshot" {
		t.Errorf("Expected snapshot, got %v", value)
	}
	if age != 10*time.Minute {
		t.Errorf("Expected age 10m, got %v", age)
	}
}

func TestClear(t *testing.T) {
	s := New(10)
	for i := 0; i < 4; i++ {
		desc := Descriptor{Name: fmt.Sprintf("q%d", i)}
		if _, _, err := s.GetOrCompute(context.Background(), desc, time.Hour, constant(i)); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	if removed := s.Clear(); removed != 4 {
		t.Errorf("Expected 4 removed, got %d", removed)
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty store, got %d entries", s.Len())
	}
}
