package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAllocateReuse(t *testing.T) {
	p := New(16, 4)

	id1, buf1 := p.Allocate(16)
	buf1[0] = 0xFF
	p.Release(id1)

	id2, buf2 := p.Allocate(8)
	require.NotEqual(t, id1, id2, "block ids are monotonically increasing, never reused")
	require.Equal(t, byte(0), buf2[0], "released buffers must be zeroed before reuse")

	avail, alloc := p.Len()
	require.Equal(t, 0, avail)
	require.Equal(t, 1, alloc)

	stats := p.Stats()
	require.Equal(t, uint64(1), stats.Hits)
	require.Equal(t, uint64(1), stats.Misses)
}

func TestOversizedBypassesPool(t *testing.T) {
	p := New(16, 4)

	id, buf := p.Allocate(1024)
	require.Len(t, buf, 1024)
	p.Release(id)

	avail, _ := p.Len()
	require.Equal(t, 0, avail, "oversized blocks never re-enter the available list")
}

func TestCapacityBound(t *testing.T) {
	p := New(16, 2)

	ids := make([]uint64, 5)
	for i := range ids {
		id, _ := p.Allocate(16)
		ids[i] = id
	}
	for _, id := range ids {
		p.Release(id)
	}

	avail, alloc := p.Len()
	require.LessOrEqual(t, avail, 2, "available list must never exceed configured capacity")
	require.Equal(t, 0, alloc)
}

func TestCleanupByAge(t *testing.T) {
	p := New(16, 4)
	id, _ := p.Allocate(16)
	p.allocated[id].AllocatedAt = time.Now().Add(-time.Hour)

	n := p.Cleanup(time.Minute)
	require.Equal(t, 1, n)

	_, alloc := p.Len()
	require.Equal(t, 0, alloc)
}

func TestDrainOnlyRemovesAvailableBlocks(t *testing.T) {
	p := New(16, 4)

	id1, _ := p.Allocate(16)
	id2, _ := p.Allocate(16)
	p.Release(id1)

	n := p.Drain()
	require.Equal(t, 1, n)

	avail, alloc := p.Len()
	require.Equal(t, 0, avail)
	require.Equal(t, 1, alloc, "still-allocated block must survive a drain")

	p.Release(id2)
}

func TestHitRate(t *testing.T) {
	var s Stats
	require.Equal(t, 0.0, s.HitRate())
	s.Hits = 3
	s.Misses = 1
	require.InDelta(t, 0.75, s.HitRate(), 0.0001)
}
