package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bilgisen/aidigest/internal/config"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore("test:")

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
	if err := m.Set(ctx, "k", "v", time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss after Clear, got %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore("")
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m.Set(ctx, "short", "v", time.Minute)
	m.Set(ctx, "forever", "v", 0)

	now = now.Add(2 * time.Minute)
	if _, err := m.Get(ctx, "short"); !errors.Is(err, ErrMiss) {
		t.Errorf("expected expired entry to miss, got %v", err)
	}
	if _, err := m.Get(ctx, "forever"); err != nil {
		t.Errorf("expected entry without ttl to stay, got %v", err)
	}
}

func TestMemoryStoreSweepsExpiredOnSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore("")
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	for _, k := range []string{"a", "b", "c"} {
		m.Set(ctx, k, "v", time.Second)
	}
	m.Set(ctx, "keep", "v", 0)
	if m.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", m.Len())
	}

	now = now.Add(sweepInterval)
	m.Set(ctx, "d", "v", time.Hour)
	if m.Len() != 2 {
		t.Fatalf("expected expired entries to be swept, %d left", m.Len())
	}
	if _, err := m.Get(ctx, "keep"); err != nil {
		t.Errorf("entry without ttl was swept: %v", err)
	}
}

func TestNewFallsBackToMemory(t *testing.T) {
	store := New(&config.Config{RedisURL: "", RedisPrefix: "p:"})
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected *MemoryStore, got %T", store)
	}

	store = New(&config.Config{RedisURL: "://not-a-url"})
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected fallback *MemoryStore for a bad URL, got %T", store)
	}
}
