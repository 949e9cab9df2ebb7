// Package pool implements a fixed-class byte-block allocator with reuse
// and age-based cleanup, as used by the memory manager for buffer
// recycling.
package pool

import (
	"sync"
	"time"
)

// Block is an allocated or available byte buffer tracked by the pool.
type Block struct {
	ID         uint64
	Buf        []byte
	AllocatedAt time.Time
}

// Stats holds pool allocation counters.
type Stats struct {
	Allocations uint64
	Releases    uint64
	Hits        uint64
	Misses      uint64
}

// HitRate returns Hits / (Hits+Misses), or 0 when nothing has been allocated.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Pool is a thread-safe fixed-class block allocator. Oversized allocations
// (size > StandardSize) bypass the pool entirely and are never returned to
// the available list on Release, to avoid fragmenting it.
type Pool struct {
	mu       sync.Mutex
	standard int
	capacity int

	available []*Block
	allocated map[uint64]*Block

	nextID uint64
	stats  Stats
}

// New creates a pool with the given standard block size and available-list
// capacity.
func New(standardSize, capacity int) *Pool {
	if standardSize <= 0 {
		standardSize = 64 * 1024
	}
	if capacity < 0 {
		capacity = 0
	}
	return &Pool{
		standard:  standardSize,
		capacity:  capacity,
		allocated: make(map[uint64]*Block),
	}
}

// Allocate returns a new or reused block able to hold size bytes.
func (p *Pool) Allocate(size int) (uint64, []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.Allocations++

	if size <= p.standard && len(p.available) > 0 {
		last := len(p.available) - 1
		blk := p.available[last]
		p.available = p.available[:last]
		p.nextID++
		blk.ID = p.nextID
		blk.AllocatedAt = time.Now()
		p.allocated[blk.ID] = blk
		p.stats.Hits++
		return blk.ID, blk.Buf
	}

	bufSize := size
	if bufSize < p.standard {
		bufSize = p.standard
	}
	p.nextID++
	blk := &Block{
		ID:          p.nextID,
		Buf:         make([]byte, bufSize),
		AllocatedAt: time.Now(),
	}
	p.allocated[blk.ID] = blk
	p.stats.Misses++
	return blk.ID, blk.Buf
}

// Release detaches the block. Standard-size blocks re-enter the available
// list (zeroed, to avoid leaking data across consumers) if the pool is
// under capacity; oversized blocks are simply dropped.
func (p *Pool) Release(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	blk, ok := p.allocated[id]
	if !ok {
		return
	}
	delete(p.allocated, id)
	p.stats.Releases++

	if len(blk.Buf) == p.standard && len(p.available) < p.capacity {
		for i := range blk.Buf {
			blk.Buf[i] = 0
		}
		p.available = append(p.available, blk)
	}
}

// Cleanup releases every allocated block older than maxAge, as measured
// from now. Returns the number of blocks released.
func (p *Pool) Cleanup(maxAge time.Duration) int {
	p.mu.Lock()
	cutoff := time.Now().Add(-maxAge)
	var stale []uint64
	for id, blk := range p.allocated {
		if blk.AllocatedAt.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	p.mu.Unlock()

	for _, id := range stale {
		p.Release(id)
	}
	return len(stale)
}

// Drain discards every block currently sitting in the available (idle)
// list, returning the count removed. Unlike Cleanup, it never touches
// blocks that are still allocated.
func (p *Pool) Drain() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.available)
	p.available = nil
	return n
}

// Stats returns a snapshot of pool counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Len returns (available, allocated) counts.
func (p *Pool) Len() (available, allocated int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.available), len(p.allocated)
}
