package cacheengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPrefetchSequentialSuccessors(t *testing.T) {
	pl := NewPlanner(20, 3)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pl.now = func() time.Time { return base }

	pl.RecordAccess(10)
	q := pl.Queue()
	require.Len(t, q, 3)
	for i, c := range q {
		require.Equal(t, 10+i+1, c.Page)
		require.Equal(t, 1.0, c.Score)
	}
}

func TestPrefetchPredecessorBias(t *testing.T) {
	pl := NewPlanner(20, 1)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pl.now = func() time.Time { return base }

	pl.RecordAccess(10)
	q := pl.Queue()
	require.Len(t, q, 1)
	require.Equal(t, 11, q[0].Page, "successor outranks predecessor")
}

func TestPrefetchDeterminism(t *testing.T) {
	run := func() []Candidate {
		pl := NewPlanner(20, 5)
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		tick := 0
		pl.now = func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		}
		for _, p := range []int{5, 6, 5, 6, 5, 20} {
			pl.RecordAccess(p)
		}
		return pl.Queue()
	}

	q1 := run()
	q2 := run()
	require.Equal(t, q1, q2, "same access sequence + config must yield the same queue")
}

func TestPrefetchFrequencyCandidate(t *testing.T) {
	pl := NewPlanner(20, 5)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	pl.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	// Page 100 is accessed twice, recently, and is far from the current
	// page (so it doesn't collide with successor/predecessor ranges).
	pl.RecordAccess(100)
	pl.RecordAccess(100)
	pl.RecordAccess(1)

	// With maxPrefetch 5, the five successors of page 1 all score 1.0 and
	// fill the queue; page 100's frequency score is (2/300)*0.5, which
	// ranks below every one of them.
	q := pl.Queue()
	require.Len(t, q, 5)
	found := false
	for _, c := range q {
		if c.Page == 100 {
			found = true
		}
		require.Greater(t, c.Score, (2.0/300.0)*prefetchRecentWeight)
	}
	require.False(t, found, "successors at score 1.0 outrank a page with 2 recent accesses")
}

func TestPrefetchWindowBound(t *testing.T) {
	pl := NewPlanner(3, 5)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pl.now = func() time.Time { return base }
	for i := 0; i < 10; i++ {
		pl.RecordAccess(7)
	}
	pl.mu.Lock()
	n := len(pl.history[7])
	pl.mu.Unlock()
	require.LessOrEqual(t, n, 3)
}
