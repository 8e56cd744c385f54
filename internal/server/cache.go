package server

import (
	"sync"

	"github.com/quantumduality/qdtlab/internal/analysis"
	"github.com/quantumduality/qdtlab/internal/config"
	"github.com/quantumduality/qdtlab/internal/engine"
)

// calcKey identifies a calculation by its full input. Evolutions are
// deterministic, so equal keys always mean equal results.
type calcKey struct {
	value float64
	typ   engine.CalcType
	cfg   config.Calculator
}

type calcEntry struct {
	result  *engine.Result
	metrics analysis.ConvergenceMetrics
}

// resultCache is a bounded FIFO cache for calculate responses.
type resultCache struct {
	mu      sync.Mutex
	entries map[calcKey]calcEntry
	order   []calcKey
	cap     int
}

func newResultCache(capacity int) *resultCache {
	if capacity < 1 {
		capacity = 1
	}
	return &resultCache{
		entries: make(map[calcKey]calcEntry, capacity),
		cap:     capacity,
	}
}

func (c *resultCache) get(k calcKey) (calcEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[k]
	return e, ok
}

func (c *resultCache) put(k calcKey, e calcEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[k]; ok {
		return
	}
	if len(c.order) >= c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[k] = e
	c.order = append(c.order, k)
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
