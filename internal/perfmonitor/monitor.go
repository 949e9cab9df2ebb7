// Package perfmonitor periodically samples cache and memory health and
// reacts to threshold breaches by instructing the cache facade and memory
// manager to shed load.
package perfmonitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/docengine/core/internal/cacheengine"
	"github.com/docengine/core/internal/memmanager"
	"github.com/docengine/core/internal/metricsstore"
)

// Thresholds configures the fractions/durations that trigger optimizer
// actions.
type Thresholds struct {
	MemoryHigh     float64       // fraction of system memory
	MemoryCritical float64
	RenderTimeHigh time.Duration
	CPUHigh        float64
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MemoryHigh:     0.8,
		MemoryCritical: 0.9,
		RenderTimeHigh: 2 * time.Second,
		CPUHigh:        0.85,
	}
}

// Snapshot is one sampling tick's synthesized view.
type Snapshot struct {
	At             time.Time
	MemoryFraction float64
	PressureLevel  memmanager.Level
	CacheHitRate   float64
	CacheSize      int
	CPUFraction    float64
}

// OptimizationEvent records an action the monitor took.
type OptimizationEvent struct {
	At     time.Time
	Action string
	Reason string
}

// CPUSampler reads the process's current CPU-fraction-of-one-core. Tests
// inject a deterministic stand-in.
type CPUSampler func(ctx context.Context) (float64, error)

// Monitor is the Performance Monitor.
type Monitor struct {
	mu          sync.Mutex
	interval    time.Duration
	thresholds  Thresholds
	facade      *cacheengine.Facade
	memManager  *memmanager.Manager
	metrics     *metricsstore.Store
	cpuSampler  CPUSampler
	logger      *slog.Logger
	eventSink   func(OptimizationEvent)
	snapshots   []Snapshot
	maxSnapshots int
	now         func() time.Time
	stopCh      chan struct{}
}

// Option configures optional Monitor behavior.
type Option func(*Monitor)

// WithCPUSampler overrides the CPU-fraction sampler.
func WithCPUSampler(s CPUSampler) Option { return func(m *Monitor) { m.cpuSampler = s } }

// WithEventSink registers a callback invoked on every optimization event.
func WithEventSink(fn func(OptimizationEvent)) Option { return func(m *Monitor) { m.eventSink = fn } }

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option { return func(m *Monitor) { m.logger = l } }

// WithInterval overrides the sampling interval (default 1s).
func WithInterval(d time.Duration) Option { return func(m *Monitor) { m.interval = d } }

// New builds a Monitor wired to facade, memManager and metrics.
func New(facade *cacheengine.Facade, memManager *memmanager.Manager, metrics *metricsstore.Store, th Thresholds, opts ...Option) *Monitor {
	m := &Monitor{
		interval:     time.Second,
		thresholds:   th,
		facade:       facade,
		memManager:   memManager,
		metrics:      metrics,
		cpuSampler:   func(context.Context) (float64, error) { return 0, nil },
		logger:       slog.Default(),
		maxSnapshots: 10,
		now:          time.Now,
		stopCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Tick runs one sampling/optimization pass and returns the snapshot taken.
func (m *Monitor) Tick(ctx context.Context) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	level, fraction, err := m.memManager.PressureLevel(ctx)
	if err != nil {
		m.logger.Warn("perfmonitor: memory sample failed", "error", err)
	}
	cpu, err := m.cpuSampler(ctx)
	if err != nil {
		m.logger.Warn("perfmonitor: cpu sample failed", "error", err)
	}

	cacheStats := m.facade.Stats()
	snap := Snapshot{
		At:             m.now(),
		MemoryFraction: fraction,
		PressureLevel:  level,
		CacheHitRate:   cacheStats.HitRate(),
		CacheSize:      cacheStats.CurrentEntries,
		CPUFraction:    cpu,
	}

	if m.metrics != nil {
		m.metrics.Record("process_memory_fraction", fraction, nil, metricsstore.TypeMemory, "fraction")
		m.metrics.RecordRatio("cache_hit_rate", cacheStats.HitRate(), nil)
	}

	m.applyOptimizations(snap)

	m.snapshots = append(m.snapshots, snap)
	if len(m.snapshots) > m.maxSnapshots {
		m.snapshots = m.snapshots[len(m.snapshots)-m.maxSnapshots:]
	}
	return snap
}

func (m *Monitor) emit(action, reason string) {
	evt := OptimizationEvent{At: m.now(), Action: action, Reason: reason}
	m.logger.Info("perfmonitor optimization", "action", action, "reason", reason)
	if m.eventSink != nil {
		m.eventSink(evt)
	}
}

// applyOptimizations reacts to a fresh snapshot: past the high memory
// threshold it drops 20% of cache entries and stale pages, past the
// critical one 50% of entries plus an emergency cleanup, and past the CPU
// threshold it lowers the quality mode. Must be called with m.mu held.
func (m *Monitor) applyOptimizations(snap Snapshot) {
	switch {
	case snap.MemoryFraction >= m.thresholds.MemoryCritical:
		m.facade.Clear(0.5)
		m.memManager.EmergencyCleanup()
		m.emit("cache_drop_50_emergency_cleanup", "memory fraction crossed critical threshold")
	case snap.MemoryFraction >= m.thresholds.MemoryHigh:
		m.facade.Clear(0.2)
		m.memManager.CleanupOld(180 * time.Second)
		m.emit("cache_drop_20_drop_stale_pages", "memory fraction crossed high threshold")
	}

	if m.thresholds.CPUHigh > 0 && snap.CPUFraction >= m.thresholds.CPUHigh {
		m.facade.SetQualityMode(cacheengine.QualityMedium)
		m.emit("quality_mode_reduced", "cpu fraction crossed high threshold")
	}
}

// Recommendations derives suggestions from the last ~10 snapshots.
func (m *Monitor) Recommendations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return recommendationsFor(m.snapshots)
}

func recommendationsFor(snapshots []Snapshot) []string {
	if len(snapshots) == 0 {
		return nil
	}
	var memSum, hitSum float64
	for _, s := range snapshots {
		memSum += s.MemoryFraction
		hitSum += s.CacheHitRate
	}
	n := float64(len(snapshots))
	avgMem := memSum / n
	avgHit := hitSum / n

	var out []string
	if avgMem > 0.75 {
		out = append(out, "sustained high memory pressure: consider lowering cache max_bytes")
	}
	if avgHit < 0.5 {
		out = append(out, "low average cache hit rate: consider widening the prefetch window")
	}
	return out
}

// Reconfigure updates the monitor's thresholds and interval at runtime.
func (m *Monitor) Reconfigure(th Thresholds, interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.thresholds = th
	if interval > 0 {
		m.interval = interval
	}
}

// Start runs Tick on the configured interval until ctx is canceled or Stop
// is called.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	interval := m.interval
	m.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Tick(ctx)
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the monitor's sampling loop.
func (m *Monitor) Stop() {
	close(m.stopCh)
}
