package cache

import (
	"context"
	"sync"
	"time"
)

// sweepInterval is the minimum time between passes dropping expired entries.
const sweepInterval = time.Minute

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryStore is an in-process Store used when Redis is not configured.
type MemoryStore struct {
	mu     sync.Mutex
	data   map[string]memoryEntry
	prefix string
	now    func() time.Time
	swept  time.Time
}

func NewMemoryStore(prefix string) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]memoryEntry),
		prefix: prefix,
		now:    time.Now,
	}
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.data[m.prefix+key]
	if !ok {
		return "", ErrMiss
	}
	if !entry.expires.IsZero() && !m.now().Before(entry.expires) {
		delete(m.data, m.prefix+key)
		return "", ErrMiss
	}
	return entry.value, nil
}

func (m *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.swept) >= sweepInterval {
		m.sweepLocked(now)
	}

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expires = now.Add(ttl)
	}
	m.data[m.prefix+key] = entry
	return nil
}

func (m *MemoryStore) sweepLocked(now time.Time) {
	for k, e := range m.data {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(m.data, k)
		}
	}
	m.swept = now
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// Clear drops every entry.
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.data = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}
