package agent

import (
	"context"
	"sync"
	"time"
)

// Cache is a key/value backend for sessions.
type Cache[S any] interface {
	Set(ctx context.Context, key string, val S) error
	Get(ctx context.Context, key string) (S, bool, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}

type memoryEntry[S any] struct {
	val     S
	expires time.Time
}

func (e memoryEntry[S]) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// MemoryCache keeps values in process. A zero ttl never expires. Expired
// entries are dropped on lookup and swept from Set at most once per ttl.
type MemoryCache[S any] struct {
	mu        sync.RWMutex
	m         map[string]memoryEntry[S]
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryCache[S any](ttl time.Duration) *MemoryCache[S] {
	return &MemoryCache[S]{m: map[string]memoryEntry[S]{}, ttl: ttl, now: time.Now}
}

func (m *MemoryCache[S]) Set(ctx context.Context, key string, val S) error {
	now := m.now()
	entry := memoryEntry[S]{val: val}
	if m.ttl > 0 {
		entry.expires = now.Add(m.ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[key] = entry
	if m.ttl > 0 && now.Sub(m.lastSweep) >= m.ttl {
		m.lastSweep = now
		for k, e := range m.m {
			if e.expired(now) {
				delete(m.m, k)
			}
		}
	}
	return nil
}

func (m *MemoryCache[S]) lookup(key string) (memoryEntry[S], bool) {
	now := m.now()
	m.mu.RLock()
	entry, ok := m.m[key]
	m.mu.RUnlock()
	if !ok || !entry.expired(now) {
		return entry, ok
	}
	m.mu.Lock()
	if current, ok := m.m[key]; ok && current.expired(now) {
		delete(m.m, key)
	}
	m.mu.Unlock()
	return memoryEntry[S]{}, false
}

func (m *MemoryCache[S]) size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.m)
}

func (m *MemoryCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	entry, ok := m.lookup(key)
	return entry.val, ok, nil
}

func (m *MemoryCache[S]) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.m, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[S]) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.lookup(key)
	return ok, nil
}

func (m *MemoryCache[S]) Ping(ctx context.Context) error {
	return nil
}
