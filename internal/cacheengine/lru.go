package cacheengine

import (
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Stats surfaces the cache's operational counters.
type Stats struct {
	Hits            uint64
	Misses          uint64
	SizeEvictions   uint64
	CountEvictions  uint64
	Compressions    uint64
	Decompressions  uint64
	CurrentSize     int64
	CurrentEntries  int
	MaxBytes        int64
	MaxEntries      int
}

// HitRate returns Hits / (Hits+Misses).
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Utilization returns CurrentSize / MaxBytes, or 0 when MaxBytes is unbounded.
func (s Stats) Utilization() float64 {
	if s.MaxBytes <= 0 {
		return 0
	}
	return float64(s.CurrentSize) / float64(s.MaxBytes)
}

// Cache is the size- and count-bounded LRU cache core. A single mutex
// serializes every operation; the cache is in-process only, with no
// cross-process tier.
type Cache struct {
	mu         sync.Mutex
	order      *simplelru.LRU[string, *Entry]
	maxBytes   int64 // 0 = unbounded
	maxEntries int   // 0 = unbounded
	curSize    int64
	comp       *compressor
	stats      Stats
}

// New creates a cache bounded by maxBytes and maxEntries (either may be 0
// for "unbounded").
func New(maxBytes int64, maxEntries int) (*Cache, error) {
	comp, err := newCompressor()
	if err != nil {
		return nil, err
	}
	// simplelru requires a positive size; we drive eviction ourselves, so
	// give it an effectively unlimited cap and never let it auto-evict.
	order, err := simplelru.NewLRU[string, *Entry](math.MaxInt32, nil)
	if err != nil {
		comp.close()
		return nil, err
	}
	return &Cache{
		order:      order,
		maxBytes:   maxBytes,
		maxEntries: maxEntries,
		comp:       comp,
	}, nil
}

// Close releases the compressor's resources.
func (c *Cache) Close() {
	c.comp.close()
}

// Get promotes key to most-recent and returns its entry.
func (c *Cache) Get(key string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.order.Get(key)
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	e.AccessCount++
	e.LastAccess = time.Now()
	return e, true
}

// Peek returns the entry without affecting recency or hit/miss counters.
func (c *Cache) Peek(key string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Peek(key)
}

// Put stores payload under key, computing its stored size, optionally
// compressing it, and evicting least-recently-used entries until both the
// byte and count bounds are satisfied. Re-insertion of an existing key is
// not counted as an eviction.
func (c *Cache) Put(key string, payload []byte, typ Type, quality Quality, compress bool) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := payload
	ratio := 1.0
	if compress {
		if encoded, r, ok := c.comp.tryCompress(payload); ok {
			stored = encoded
			ratio = r
			c.stats.Compressions++
		}
	}

	if old, ok := c.order.Peek(key); ok {
		c.curSize -= old.Size
	}

	entry := &Entry{
		Key:              key,
		Payload:          stored,
		Size:             int64(len(stored)),
		Type:             typ,
		Quality:          quality,
		LastAccess:       time.Now(),
		CreatedAt:        time.Now(),
		CompressionRatio: ratio,
	}
	c.order.Add(key, entry)
	c.curSize += entry.Size

	c.evict()
	return entry
}

// evict removes least-recently-used entries until the cache satisfies both
// the byte-size and entry-count bounds. Must be called with c.mu held.
func (c *Cache) evict() {
	for {
		overSize := c.maxBytes > 0 && c.curSize > c.maxBytes
		overCount := c.maxEntries > 0 && c.order.Len() >= c.maxEntries
		if !overSize && !overCount {
			return
		}
		_, victim, ok := c.order.RemoveOldest()
		if !ok {
			return
		}
		c.curSize -= victim.Size
		if overSize {
			c.stats.SizeEvictions++
		} else {
			c.stats.CountEvictions++
		}
	}
}

// Remove deletes key unconditionally.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.order.Peek(key); ok {
		c.curSize -= e.Size
		c.order.Remove(key)
	}
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Purge()
	c.curSize = 0
}

// ClearRatio removes the oldest ratio fraction of entries (ratio in [0,1]).
// ratio >= 1.0 behaves exactly like Clear.
func (c *Cache) ClearRatio(ratio float64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ratio >= 1.0 {
		n := c.order.Len()
		c.order.Purge()
		c.curSize = 0
		return n
	}
	if ratio <= 0 {
		return 0
	}
	n := int(float64(c.order.Len()) * ratio)
	removed := 0
	for i := 0; i < n; i++ {
		_, victim, ok := c.order.RemoveOldest()
		if !ok {
			break
		}
		c.curSize -= victim.Size
		removed++
	}
	return removed
}

// PurgeByType removes every entry whose Type matches t.
func (c *Cache) PurgeByType(t Type) int {
	return c.purgeWhere(func(e *Entry) bool { return e.Type == t })
}

// PurgeByQuality removes every entry whose Quality matches q.
func (c *Cache) PurgeByQuality(q Quality) int {
	return c.purgeWhere(func(e *Entry) bool { return e.Quality == q })
}

func (c *Cache) purgeWhere(match func(*Entry) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var victims []string
	for _, k := range c.order.Keys() {
		if e, ok := c.order.Peek(k); ok && match(e) {
			victims = append(victims, k)
		}
	}
	for _, k := range victims {
		if e, ok := c.order.Peek(k); ok {
			c.curSize -= e.Size
			c.order.Remove(k)
		}
	}
	return len(victims)
}

// Decompress decompresses payload stored with CompressionRatio < 1.0.
func (c *Cache) Decompress(payload []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Decompressions++
	return c.comp.decompress(payload)
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.CurrentSize = c.curSize
	s.CurrentEntries = c.order.Len()
	s.MaxBytes = c.maxBytes
	s.MaxEntries = c.maxEntries
	return s
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Keys returns keys ordered oldest (least-recent) to newest (most-recent).
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Keys()
}
