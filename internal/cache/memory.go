package cache

import (
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// memoryBackend is the in-process fallback used when Redis is unconfigured or
// unreachable. Expired entries are evicted lazily on read.
type memoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{entries: make(map[string]memoryEntry)}
}

func (m *memoryBackend) get(key string, now time.Time) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if now.After(e.expiresAt) {
		m.mu.Lock()
		// recheck under write lock, another writer may have refreshed it
		if cur, ok := m.entries[key]; ok && now.After(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (m *memoryBackend) set(key string, value []byte, ttl time.Duration, now time.Time) {
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: now.Add(ttl)}
	m.mu.Unlock()
}

func (m *memoryBackend) delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

func (m *memoryBackend) clearPrefix(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

func (m *memoryBackend) size(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	return len(m.entries)
}
