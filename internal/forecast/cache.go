package forecast

import (
	"context"
	"sync"

	"github.com/couchcryptid/solar-forecast-service/internal/domain"
	"github.com/couchcryptid/solar-forecast-service/internal/observability"
)

// CachedPredictor wraps a Predictor with an in-memory LRU memo keyed by
// interval. The models and their input rows are fixed for the life of the
// process, so a result stays valid once computed.
type CachedPredictor struct {
	inner   Predictor
	cache   *lruCache[domain.Interval, *Result]
	metrics *observability.Metrics
}

// NewCachedPredictor creates a memo decorator around a predictor.
func NewCachedPredictor(inner Predictor, maxEntries int, metrics *observability.Metrics) *CachedPredictor {
	return &CachedPredictor{
		inner:   inner,
		cache:   newLRUCache[domain.Interval, *Result](maxEntries),
		metrics: metrics,
	}
}

// Predict implements Predictor.
func (c *CachedPredictor) Predict(ctx context.Context, interval domain.Interval) (*Result, error) {
	if res, ok := c.cache.get(interval); ok {
		c.metrics.ForecastCache.WithLabelValues("hit").Inc()
		return res, nil
	}
	c.metrics.ForecastCache.WithLabelValues("miss").Inc()

	res, err := c.inner.Predict(ctx, interval)
	if err != nil {
		return nil, err
	}
	c.cache.put(interval, res)
	return res, nil
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[K comparable, V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[K]*entry[K, V]
	head       *entry[K, V] // most recently used
	tail       *entry[K, V] // least recently used
}

type entry[K comparable, V any] struct {
	key   K
	value V
	prev  *entry[K, V]
	next  *entry[K, V]
}

func newLRUCache[K comparable, V any](maxEntries int) *lruCache[K, V] {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &lruCache[K, V]{
		maxEntries: maxEntries,
		entries:    make(map[K]*entry[K, V]),
	}
}

func (c *lruCache[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[K, V]) put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[K, V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[K, V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[K, V]) moveToFront(e *entry[K, V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[K, V]) addToFront(e *entry[K, V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[K, V]) remove(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[K, V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
