package service

import (
	"sync"
	"time"

	"github.com/torvik/intent-cascade/internal/domain"
)

type recognitionCacheEntry struct {
	intent    *domain.Intent
	timestamp time.Time
}

// RecognitionCache is the in-process cache for accepted cascade results.
// Entries expire after the TTL; when the size cap is exceeded the oldest
// batch is evicted in one pass to keep tail latency bounded.
type RecognitionCache struct {
	mu         sync.RWMutex
	entries    map[string]*recognitionCacheEntry
	order      []string
	ttl        time.Duration
	maxEntries int
	evictBatch int
}

func NewRecognitionCache(ttl time.Duration, maxEntries, evictBatch int) *RecognitionCache {
	if evictBatch < 1 {
		evictBatch = 1
	}
	return &RecognitionCache{
		entries:    make(map[string]*recognitionCacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		evictBatch: evictBatch,
	}
}

// Get returns a fresh cached intent and refreshes its timestamp. Expired
// entries are dropped on access.
func (c *RecognitionCache) Get(key string) (*domain.Intent, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if time.Since(entry.timestamp) >= c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	entry.timestamp = time.Now()
	c.mu.Unlock()

	return entry.intent, true
}

func (c *RecognitionCache) Set(key string, intent *domain.Intent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = &recognitionCacheEntry{
		intent:    intent,
		timestamp: time.Now(),
	}

	if len(c.entries) > c.maxEntries {
		c.evictOldestLocked()
	}
}

// evictOldestLocked drops insertion-order batches until the cache is under
// its cap again. Keys already removed by TTL expiry are skipped harmlessly.
func (c *RecognitionCache) evictOldestLocked() {
	for len(c.entries) > c.maxEntries && len(c.order) > 0 {
		batch := c.evictBatch
		if batch > len(c.order) {
			batch = len(c.order)
		}
		for _, key := range c.order[:batch] {
			delete(c.entries, key)
		}
		c.order = c.order[batch:]
	}
}

func (c *RecognitionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *RecognitionCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*recognitionCacheEntry)
	c.order = nil
	c.mu.Unlock()
}
