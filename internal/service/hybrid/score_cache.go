package hybrid

import "sync"

// scoreCache memoizes the per-text fuzzy intent-score map so repeated
// identical queries skip the shortlist scan. Bounded with FIFO batch
// eviction.
type scoreCache struct {
	mu         sync.RWMutex
	entries    map[string]map[string]float64
	order      []string
	maxEntries int
	evictBatch int
}

func newScoreCache(maxEntries, evictBatch int) *scoreCache {
	if evictBatch < 1 {
		evictBatch = 1
	}
	return &scoreCache{
		entries:    make(map[string]map[string]float64),
		maxEntries: maxEntries,
		evictBatch: evictBatch,
	}
}

func (c *scoreCache) get(key string) (map[string]float64, bool) {
	c.mu.RLock()
	scores, ok := c.entries[key]
	c.mu.RUnlock()
	return scores, ok
}

func (c *scoreCache) set(key string, scores map[string]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = scores

	for len(c.entries) > c.maxEntries && len(c.order) > 0 {
		batch := c.evictBatch
		if batch > len(c.order) {
			batch = len(c.order)
		}
		for _, old := range c.order[:batch] {
			delete(c.entries, old)
		}
		c.order = c.order[batch:]
	}
}

func (c *scoreCache) clear() {
	c.mu.Lock()
	c.entries = make(map[string]map[string]float64)
	c.order = nil
	c.mu.Unlock()
}
