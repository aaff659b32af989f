package cache

import (
	"context"
	"sync"
	"time"
)

const memorySweepFreq = time.Minute

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// memoryCache is a process-local fallback backend. Expired entries are
// dropped lazily on Get and swept at most once per memorySweepFreq.
type memoryCache struct {
	mu        sync.Mutex
	items     map[string]*memoryEntry
	lastSweep time.Time
	now       func() time.Time
}

func NewMemory() Cache {
	return &memoryCache{
		items: make(map[string]*memoryEntry),
		now:   time.Now,
	}
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeSweepLocked(now)

	entry := &memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	c.items[key] = entry
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeSweepLocked(now)

	entry, ok := c.items[key]
	if !ok {
		return nil, ErrMiss
	}
	if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
		delete(c.items, key)
		return nil, ErrMiss
	}
	return append([]byte(nil), entry.value...), nil
}

func (c *memoryCache) maybeSweepLocked(now time.Time) {
	if !c.lastSweep.IsZero() && now.Sub(c.lastSweep) < memorySweepFreq {
		return
	}
	for key, entry := range c.items {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(c.items, key)
		}
	}
	c.lastSweep = now
}
