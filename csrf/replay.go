package csrf

import (
	"sync"
	"time"
)

// ReplayCache remembers tokens that already passed validation.
//
// CheckAndRecord must be atomic: of two concurrent calls with the same
// token, exactly one may report replayed == false.
type ReplayCache interface {
	CheckAndRecord(token string, now time.Time, ttl time.Duration) (replayed bool, err error)
}

// MemoryReplayCache is the process-local ReplayCache used by default.
// Expired entries are dropped on every access, so its size is bounded by
// the number of tokens validated within one TTL.
type MemoryReplayCache struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryReplayCache() *MemoryReplayCache {
	return &MemoryReplayCache{entries: make(map[string]time.Time)}
}

func (c *MemoryReplayCache) CheckAndRecord(token string, now time.Time, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeLocked(now)
	if _, seen := c.entries[token]; seen {
		return true, nil
	}
	c.entries[token] = now.Add(ttl)
	return false, nil
}

// Len returns the number of live entries as of now.
func (c *MemoryReplayCache) Len(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeLocked(now)
	return len(c.entries)
}

func (c *MemoryReplayCache) purgeLocked(now time.Time) {
	for tok, exp := range c.entries {
		if exp.Before(now) {
			delete(c.entries, tok)
		}
	}
}
