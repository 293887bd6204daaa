package cache

import (
	"sync"
	"time"

	"github.com/depsentry/depsentry/domain"
)

type memoryEntry struct {
	result    *domain.ScanResult
	expiresAt time.Time
}

// MemoryCache is a process-local result cache used when no cache database
// is configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the cached result for key, if present and not expired.
func (c *MemoryCache) Get(key string) (*domain.ScanResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.result, true
}

// Set stores a result under key for ttl. Entries with a non-positive ttl
// are not stored.
func (c *MemoryCache) Set(key string, result *domain.ScanResult, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = memoryEntry{result: result, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}
