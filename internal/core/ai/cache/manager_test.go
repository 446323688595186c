package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"fridge-inventory/internal/infrastructure/config"
	"fridge-inventory/internal/pkg/common"
)

func newTestManager(maxSize int, ttl time.Duration) *CacheManager {
	return NewManager(config.CacheConfig{Enabled: true, MaxSize: maxSize, TTL: ttl})
}

func TestManagerGetSet(t *testing.T) {
	m := newTestManager(10, time.Minute)
	defer m.Close()
	ctx := context.Background()

	if _, err := m.Get(ctx, "k"); !errors.Is(err, common.ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
	if err := m.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	stats := m.GetStats()
	if stats["hits"].(int64) != 1 || stats["misses"].(int64) != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestManagerExpiry(t *testing.T) {
	m := newTestManager(10, time.Minute)
	defer m.Close()
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	if err := m.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := m.Get(ctx, "k"); !errors.Is(err, common.ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	m := newTestManager(2, time.Minute)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "a", "1")
	m.Set(ctx, "b", "2")
	m.Get(ctx, "a")

	if err := m.Set(ctx, "c", "3"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := m.Get(ctx, "b"); !errors.Is(err, common.ErrCacheMiss) {
		t.Fatalf("expected b to be evicted, got %v", err)
	}
	if v, err := m.Get(ctx, "a"); err != nil || v != "1" {
		t.Fatalf("expected a to survive, got %q %v", v, err)
	}
}

func TestKeyDependsOnModel(t *testing.T) {
	if Key("m1", "p") == Key("m2", "p") {
		t.Fatalf("keys for different models must differ")
	}
	if Key("m1", "p") != Key("m1", "p") {
		t.Fatalf("key must be deterministic")
	}
}
