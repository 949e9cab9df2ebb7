// Package memmanager tracks per-page memory accounting, derives OS-level
// pressure levels, and runs pressure-driven cleanup.
package memmanager

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/docengine/core/internal/pool"
)

const (
	smallPoolStandard  = 64 * 1024
	mediumPoolStandard = 1 * 1024 * 1024
	largePoolStandard  = 4 * 1024 * 1024

	leakAccessAge      = 300 * time.Second
	leakCountThreshold = 10
)

// poolClass identifies which of the three size-class pools backs a page.
type poolClass int

const (
	classSmall poolClass = iota
	classMedium
	classLarge
)

// pageRecord is the accounting row for a single live page allocation.
// Invariant: every record here has a matching active block id in its pool.
type pageRecord struct {
	pageID     int
	sizeMB     float64
	lastAccess time.Time
	blockID    uint64
	class      poolClass
}

// Config carries the Memory Manager's tunables, all with documented
// defaults.
type Config struct {
	PressureThreshold float64
	SmallPoolCapacity int
	MediumPoolCapacity int
	LargePoolCapacity int
	ScheduledInterval time.Duration
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		PressureThreshold:  0.8,
		SmallPoolCapacity:  256,
		MediumPoolCapacity: 128,
		LargePoolCapacity:  32,
		ScheduledInterval:  30 * time.Second,
	}
}

// Alert describes an internally-emitted condition.
type Alert struct {
	Name    string
	Message string
	At      time.Time
}

// Manager is the Memory Manager.
type Manager struct {
	mu      sync.Mutex
	cfg     Config
	pages   map[int]*pageRecord
	small   *pool.Pool
	medium  *pool.Pool
	large   *pool.Pool
	sampler Sampler
	logger  *slog.Logger
	alertFn func(Alert)
	now     func() time.Time
	stopCh  chan struct{}
}

// Option configures optional Manager behavior.
type Option func(*Manager)

// WithSampler overrides the OS memory sampler (tests inject a fake).
func WithSampler(s Sampler) Option {
	return func(m *Manager) { m.sampler = s }
}

// WithAlertSink registers a callback invoked whenever the manager emits an
// internal alert (e.g. leak-suspected).
func WithAlertSink(fn func(Alert)) Option {
	return func(m *Manager) { m.alertFn = fn }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New builds a Memory Manager with three size-class pools sized per cfg.
func New(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:     cfg,
		pages:   make(map[int]*pageRecord),
		small:   pool.New(smallPoolStandard, cfg.SmallPoolCapacity),
		medium:  pool.New(mediumPoolStandard, cfg.MediumPoolCapacity),
		large:   pool.New(largePoolStandard, cfg.LargePoolCapacity),
		sampler: gopsutilSampler,
		logger:  slog.Default(),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// poolForSize selects the small/medium/large pool by page size.
func (m *Manager) poolForSize(size int) (poolClass, *pool.Pool) {
	switch {
	case size <= smallPoolStandard:
		return classSmall, m.small
	case size <= mediumPoolStandard:
		return classMedium, m.medium
	default:
		return classLarge, m.large
	}
}

func (m *Manager) poolForClass(c poolClass) *pool.Pool {
	switch c {
	case classSmall:
		return m.small
	case classMedium:
		return m.medium
	default:
		return m.large
	}
}

// AllocatePage records a new page of sizeBytes for page id p and returns
// its block id.
func (m *Manager) AllocatePage(p int, sizeBytes int) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.pages[p]; ok {
		m.poolForClass(old.class).Release(old.blockID)
	}

	class, pl := m.poolForSize(sizeBytes)
	id, _ := pl.Allocate(sizeBytes)
	m.pages[p] = &pageRecord{
		pageID:     p,
		sizeMB:     float64(sizeBytes) / (1024 * 1024),
		lastAccess: m.now(),
		blockID:    id,
		class:      class,
	}
	return id
}

// Touch updates a page's last-access time, as would happen on a cache hit.
func (m *Manager) Touch(p int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.pages[p]; ok {
		rec.lastAccess = m.now()
	}
}

// DeallocatePage releases page p's block id and drops its accounting row.
func (m *Manager) DeallocatePage(p int, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.pages[p]
	if !ok || rec.blockID != id {
		return fmt.Errorf("memmanager: no matching allocation for page %d id %d", p, id)
	}
	m.poolForClass(rec.class).Release(id)
	delete(m.pages, p)
	return nil
}

// CleanupOld drops page accounting rows (and their pool blocks) whose
// last-access time is older than maxAge.
func (m *Manager) CleanupOld(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleanupOldLocked(maxAge)
}

func (m *Manager) cleanupOldLocked(maxAge time.Duration) int {
	cutoff := m.now().Add(-maxAge)
	dropped := 0
	for id, rec := range m.pages {
		if rec.lastAccess.Before(cutoff) {
			m.poolForClass(rec.class).Release(rec.blockID)
			delete(m.pages, id)
			dropped++
		}
	}
	return dropped
}

// EmergencyCleanup drops half of the cached pages (oldest-first),
// aggressively releases pool blocks, and forces a reclamation pass.
func (m *Manager) EmergencyCleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	ordered := make([]*pageRecord, 0, len(m.pages))
	for _, rec := range m.pages {
		ordered = append(ordered, rec)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].lastAccess.Before(ordered[j].lastAccess) })

	drop := len(ordered) / 2
	for i := 0; i < drop; i++ {
		rec := ordered[i]
		m.poolForClass(rec.class).Release(rec.blockID)
		delete(m.pages, rec.pageID)
	}

	m.small.Drain()
	m.medium.Drain()
	m.large.Drain()

	runtime.GC()
	debug.FreeOSMemory()

	return drop
}

// SuspectedLeaks counts pages whose accounting row still resolves but have
// not been accessed in over 300s — a heuristic, not a proof.
func (m *Manager) SuspectedLeaks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-leakAccessAge)
	count := 0
	for _, rec := range m.pages {
		if rec.lastAccess.Before(cutoff) {
			count++
		}
	}
	return count
}

// PageCount returns the number of tracked pages.
func (m *Manager) PageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages)
}

// PressureLevel samples OS memory and classifies it against the configured
// threshold.
func (m *Manager) PressureLevel(ctx context.Context) (Level, float64, error) {
	fraction, err := m.sampler(ctx)
	if err != nil {
		return LevelLow, 0, err
	}
	return classify(fraction, m.cfg.PressureThreshold), fraction, nil
}

// runScheduledPass samples pressure and applies the matching cleanup
// strategy for the observed level.
func (m *Manager) runScheduledPass(ctx context.Context) {
	level, fraction, err := m.PressureLevel(ctx)
	if err != nil {
		m.logger.Warn("memory pressure sample failed", "error", err)
		return
	}

	switch level {
	case LevelCritical:
		n := m.EmergencyCleanup()
		m.logger.Info("emergency cleanup ran", "dropped_pages", n, "fraction", fraction)
	case LevelHigh:
		m.CleanupOld(180 * time.Second)
	case LevelMedium:
		m.CleanupOld(300 * time.Second)
	default:
		m.CleanupOld(600 * time.Second)
	}

	if leaks := m.SuspectedLeaks(); leaks > leakCountThreshold {
		alert := Alert{
			Name:    "leak-suspected",
			Message: fmt.Sprintf("%d pages have stale accounting rows (>300s since last access)", leaks),
			At:      m.now(),
		}
		m.logger.Warn(alert.Message)
		if m.alertFn != nil {
			m.alertFn(alert)
		}
	}
}

// Start runs the scheduled cleanup pass on cfg.ScheduledInterval until ctx
// is canceled or Stop is called.
func (m *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.ScheduledInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.runScheduledPass(ctx)
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the scheduled cleanup loop.
func (m *Manager) Stop() {
	close(m.stopCh)
}
