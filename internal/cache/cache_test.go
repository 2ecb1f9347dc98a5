package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newMemoryStore() *Store {
	return New(Config{}, nil)
}

func TestMemoryFallbackHealth(t *testing.T) {
	s := newMemoryStore()
	h := s.Health(context.Background())

	if h.Backend != "memory" {
		t.Errorf("Expected backend 'memory', got %q", h.Backend)
	}
	if !h.Available {
		t.Error("Expected memory backend to be available")
	}
}

func TestGetSetDelete(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()

	if _, ok := s.Get(ctx, "prices:missing"); ok {
		t.Error("Expected miss for unknown key")
	}

	s.Set(ctx, "prices:coin-1", []byte("12.50"), time.Minute)
	val, ok := s.Get(ctx, "prices:coin-1")
	if !ok {
		t.Fatal("Expected hit after set")
	}
	if string(val) != "12.50" {
		t.Errorf("Expected value %q, got %q", "12.50", string(val))
	}

	s.Delete(ctx, "prices:coin-1")
	if _, ok := s.Get(ctx, "prices:coin-1"); ok {
		t.Error("Expected miss after delete")
	}
}

func TestExpiredEntryIsEvicted(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()

	s.Set(ctx, "prices:coin-1", []byte("x"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok := s.Get(ctx, "prices:coin-1"); ok {
		t.Error("Expected expired entry to miss")
	}
	if size := s.Health(ctx).Size; size != 0 {
		t.Errorf("Expected size 0 after eviction, got %d", size)
	}
}

func TestGetOrSetComputesOnlyOnMiss(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()
	calls := 0
	compute := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("computed"), nil
	}

	val, fromCache, err := s.GetOrSet(ctx, "k", time.Minute, compute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fromCache {
		t.Error("Expected first call to compute, not hit cache")
	}
	if string(val) != "computed" {
		t.Errorf("Expected computed value, got %q", string(val))
	}

	val, fromCache, err = s.GetOrSet(ctx, "k", time.Minute, compute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !fromCache {
		t.Error("Expected second call to hit cache")
	}
	if string(val) != "computed" {
		t.Errorf("Expected cached value, got %q", string(val))
	}
	if calls != 1 {
		t.Errorf("Expected compute to run once, ran %d times", calls)
	}
}

func TestGetOrSetComputeError(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()
	wantErr := errors.New("provider down")

	_, _, err := s.GetOrSet(ctx, "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected compute error to propagate, got %v", err)
	}
	if _, ok := s.Get(ctx, "k"); ok {
		t.Error("Expected nothing cached after compute error")
	}
}

func TestClearPrefix(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()

	s.Set(ctx, Key("chartprice", "search", "jordan"), []byte("a"), time.Minute)
	s.Set(ctx, Key("chartprice", "item", "123"), []byte("b"), time.Minute)
	s.Set(ctx, Key("coinguide", "item", "456"), []byte("c"), time.Minute)

	n := s.ClearPrefix(ctx, "chartprice:")
	if n != 2 {
		t.Errorf("Expected 2 cleared, got %d", n)
	}
	if _, ok := s.Get(ctx, "coinguide:item:456"); !ok {
		t.Error("Expected other prefix to survive")
	}
}

func TestKey(t *testing.T) {
	if got := Key("chartprice", "search", "mario 64"); got != "chartprice:search:mario 64" {
		t.Errorf("Key() = %q", got)
	}
}
