package metricsstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultMaxPoints = 1000

// PromMirror mirrors every recorded sample into Prometheus, following the
// pack's convention of pairing a custom stats struct with a promauto
// family (pkg/history/metrics/history_metrics.go).
type PromMirror struct {
	value *prometheus.GaugeVec
}

// NewPromMirror registers the mirror's gauge against reg.
func NewPromMirror(reg prometheus.Registerer) *PromMirror {
	return &PromMirror{
		value: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "docengine",
			Subsystem: "metrics",
			Name:      "last_value",
			Help:      "Most recently recorded value for a named metric series.",
		}, []string{"metric", "type", "unit"}),
	}
}

// Store holds every named metric series and drives threshold alerting.
// A single mutex serializes all operations, since series are read and
// appended to concurrently by extraction and cache workers.
type Store struct {
	mu           sync.Mutex
	maxPoints    int
	series       map[string]*series
	thresholds   map[string]Thresholds
	activeAlerts map[alertKey]*Alert
	alertHistory []*Alert
	mirror       *PromMirror
	now          func() time.Time
}

// New creates a Store. mirror may be nil to skip Prometheus export.
func New(mirror *PromMirror) *Store {
	return &Store{
		maxPoints:    defaultMaxPoints,
		series:       make(map[string]*series),
		thresholds:   make(map[string]Thresholds),
		activeAlerts: make(map[alertKey]*Alert),
		mirror:       mirror,
		now:          time.Now,
	}
}

// SetThresholds configures the warning/error trigger levels for name.
func (st *Store) SetThresholds(name string, th Thresholds) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.thresholds[name] = th
}

// Record appends a sample to the named series, creating it on first use.
func (st *Store) Record(name string, value float64, labels map[string]string, typ MetricType, unit string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.series[name]
	if !ok {
		s = newSeries(name, typ, unit, st.maxPoints)
		st.series[name] = s
	}
	now := st.now()
	s.append(Point{Timestamp: now, Value: value, Labels: labels})
	st.evaluateThresholds(name, value, now)

	if st.mirror != nil {
		st.mirror.value.WithLabelValues(name, string(typ), unit).Set(value)
	}
}

// RecordTiming records a duration-valued sample in seconds.
func (st *Store) RecordTiming(name string, seconds float64, labels map[string]string) {
	st.Record(name, seconds, labels, TypeTiming, "seconds")
}

// RecordMemory records a byte-valued sample.
func (st *Store) RecordMemory(name string, bytes float64, labels map[string]string) {
	st.Record(name, bytes, labels, TypeMemory, "bytes")
}

// RecordRatio records a unitless fraction, e.g. a cache hit rate.
func (st *Store) RecordRatio(name string, ratio float64, labels map[string]string) {
	st.Record(name, ratio, labels, TypeCache, "ratio")
}

// Stats computes count/min/max/mean/median/stddev/p95/p99 over the
// trailing window (0 = entire series).
func (st *Store) Stats(name string, window time.Duration) (Stats, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.series[name]
	if !ok {
		return Stats{}, fmt.Errorf("metricsstore: unknown metric %q", name)
	}
	return computeStats(s.inWindow(st.now(), window)), nil
}

// Trend fits a least-squares line to (t, v) within the trailing window.
func (st *Store) Trend(name string, window time.Duration) (Trend, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.series[name]
	if !ok {
		return Trend{}, fmt.Errorf("metricsstore: unknown metric %q", name)
	}
	return computeTrend(s.inWindow(st.now(), window)), nil
}

// AlertsActive returns every currently-unresolved alert.
func (st *Store) AlertsActive() []Alert {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]Alert, 0, len(st.activeAlerts))
	for _, a := range st.activeAlerts {
		out = append(out, *a)
	}
	return out
}

// Export renders every series in the given window as either "line" (line-
// delimited text) or "nested" (structured form).
func (st *Store) Export(format string, window time.Duration) (any, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	switch format {
	case "line":
		var rows []ExportRow
		for name, s := range st.series {
			for _, p := range s.inWindow(now, window) {
				rows = append(rows, ExportRow{Timestamp: p.Timestamp, Metric: name, Value: p.Value, Unit: s.unit, Type: s.typ})
			}
		}
		return ExportLineDelimited(rows), nil
	case "nested":
		out := NestedExport{Metrics: make(map[string]NestedSeries)}
		for name, s := range st.series {
			pts := s.inWindow(now, window)
			nested := make([]NestedPoint, len(pts))
			for i, p := range pts {
				nested[i] = NestedPoint{
					Timestamp: p.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
					Value:     p.Value,
					Labels:    p.Labels,
				}
			}
			out.Metrics[name] = NestedSeries{Type: s.typ, Unit: s.unit, Points: nested}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("metricsstore: unknown export format %q", format)
	}
}
