package cacheengine

import (
	"sort"
	"sync"
	"time"
)

const (
	prefetchDecayAlpha      = 0.9
	prefetchRecentWindow    = 300 * time.Second
	prefetchPredecessorBias = 0.3
	prefetchRecentWeight    = 0.5
)

// Candidate is a ranked prefetch suggestion.
type Candidate struct {
	Page  int
	Score float64
}

// Planner learns access patterns per page id and produces a ranked
// prefetch queue. It holds no references to actual page data; it is a pure
// predictor driven only by access timestamps.
type Planner struct {
	mu          sync.Mutex
	window      int
	maxPrefetch int
	history     map[int][]time.Time
	weight      map[int]float64
	queue       []Candidate
	now         func() time.Time
}

// NewPlanner creates a planner tracking up to window recent accesses per
// page and producing up to maxPrefetch ranked candidates.
func NewPlanner(window, maxPrefetch int) *Planner {
	return &Planner{
		window:      window,
		maxPrefetch: maxPrefetch,
		history:     make(map[int][]time.Time),
		weight:      make(map[int]float64),
		now:         time.Now,
	}
}

// RecordAccess registers an access to page p and rebuilds the prefetch
// queue relative to p as the caller's current page.
func (pl *Planner) RecordAccess(p int) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	now := pl.now()
	hist := append(pl.history[p], now)
	if len(hist) > pl.window {
		hist = hist[len(hist)-pl.window:]
	}
	pl.history[p] = hist

	pl.weight[p] = pl.weight[p]*prefetchDecayAlpha + 1

	pl.queue = pl.buildQueue(p, now)
}

// buildQueue must be called with pl.mu held.
func (pl *Planner) buildQueue(p int, now time.Time) []Candidate {
	scores := make(map[int]float64)
	order := make([]int, 0, pl.maxPrefetch+1)

	addOnce := func(page int, score float64) {
		if _, seen := scores[page]; seen {
			return
		}
		scores[page] = score
		order = append(order, page)
	}

	for i := 1; i <= pl.maxPrefetch; i++ {
		addOnce(p+i, 1.0)
	}
	addOnce(p-1, prefetchPredecessorBias)

	// "every other tracked page" excludes the successors/predecessor
	// already added and the current page itself.
	tracked := make([]int, 0, len(pl.history))
	for page := range pl.history {
		tracked = append(tracked, page)
	}
	sort.Ints(tracked)
	for _, page := range tracked {
		if page == p {
			continue
		}
		if _, already := scores[page]; already {
			continue
		}
		recent := pl.recentCount(page, now)
		if recent >= 2 {
			addOnce(page, (float64(recent)/300.0)*prefetchRecentWeight)
		}
	}

	candidates := make([]Candidate, 0, len(order))
	for _, page := range order {
		candidates = append(candidates, Candidate{Page: page, Score: scores[page]})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Page < candidates[j].Page
	})
	if len(candidates) > pl.maxPrefetch {
		candidates = candidates[:pl.maxPrefetch]
	}
	return candidates
}

// recentCount counts accesses to page within the trailing 300s window of
// now. Must be called with pl.mu held.
func (pl *Planner) recentCount(page int, now time.Time) int {
	count := 0
	cutoff := now.Add(-prefetchRecentWindow)
	for _, ts := range pl.history[page] {
		if ts.After(cutoff) {
			count++
		}
	}
	return count
}

// Queue returns the current ranked prefetch candidates.
func (pl *Planner) Queue() []Candidate {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	out := make([]Candidate, len(pl.queue))
	copy(out, pl.queue)
	return out
}

// Weight returns the current decayed access weight for page p.
func (pl *Planner) Weight(p int) float64 {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.weight[p]
}
