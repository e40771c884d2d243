// Package analysis classifies document structure and caches the result
// by content hash, so repeated analysis of identical bytes is O(1).
package analysis

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"runtime"
	"sync"
)

// CacheStats is a point-in-time snapshot of cache counters.
type CacheStats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Size      int    `json:"size"`
	MaxSize   int    `json:"max_size"`
}

// Cache is a bounded least-recently-used store keyed by content hash.
// Get and Put serialize under a mutex so concurrent extraction requests
// can share one instance. When the process heap exceeds maxHeapBytes the
// whole cache is cleared rather than evicting piecemeal, which keeps
// worst-case resident memory bounded under adversarial input sizes.
type Cache struct {
	mu           sync.Mutex
	maxEntries   int
	maxHeapBytes uint64
	entries      map[string]*list.Element
	order        *list.List // front = most recently used

	hits, misses, evictions uint64
}

type cacheEntry struct {
	key   string
	value any
}

// NewCache creates a Cache holding at most maxEntries values. A zero
// maxHeapBytes disables the heap-pressure clear.
func NewCache(maxEntries int, maxHeapBytes uint64) *Cache {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &Cache{
		maxEntries:   maxEntries,
		maxHeapBytes: maxHeapBytes,
		entries:      make(map[string]*list.Element, maxEntries),
		order:        list.New(),
	}
}

// Get returns the cached value for key and marks it most recently used.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.order.MoveToFront(el)
	c.hits++
	return el.Value.(*cacheEntry).value, true
}

// Put stores value under key, evicting the least-recently-used entry at
// capacity and clearing everything under heap pressure.
func (c *Cache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).value = value
		c.order.MoveToFront(el)
		return
	}

	if len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	if c.maxHeapBytes > 0 && heapInUse() > c.maxHeapBytes {
		slog.Warn("Heap threshold exceeded, clearing analysis cache",
			"entries", len(c.entries))
		c.clearLocked()
	}

	el := c.order.PushFront(&cacheEntry{key: key, value: value})
	c.entries[key] = el
}

// Clear drops every entry. Counters are preserved.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.entries),
		MaxSize:   c.maxEntries,
	}
}

func (c *Cache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	entry := el.Value.(*cacheEntry)
	c.order.Remove(el)
	delete(c.entries, entry.key)
	c.evictions++
}

func (c *Cache) clearLocked() {
	c.entries = make(map[string]*list.Element, c.maxEntries)
	c.order.Init()
}

func heapInUse() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}

// ContentHash returns the hex SHA-256 digest of data, the cache key for
// all content-addressed stages.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
