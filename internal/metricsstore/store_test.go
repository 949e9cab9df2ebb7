package metricsstore

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(NewPromMirror(prometheus.NewRegistry()))
}

func TestRingBufferBoundedAtMax(t *testing.T) {
	st := newTestStore(t)
	st.maxPoints = 5
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	st.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for i := 0; i < 10; i++ {
		st.Record("m", float64(i), nil, TypeSystem, "count")
	}

	s := st.series["m"]
	require.Len(t, s.points, 5)
	require.Equal(t, 5.0, s.points[0].Value, "oldest points must be dropped first")
	require.Equal(t, 9.0, s.points[len(s.points)-1].Value)
}

func TestStatsComputesExpectedValues(t *testing.T) {
	st := newTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	st.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	for _, v := range []float64{1, 2, 3, 4, 5} {
		st.Record("latency", v, nil, TypeTiming, "seconds")
	}

	stats, err := st.Stats("latency", 0)
	require.NoError(t, err)
	require.Equal(t, 5, stats.Count)
	require.Equal(t, 1.0, stats.Min)
	require.Equal(t, 5.0, stats.Max)
	require.Equal(t, 3.0, stats.Mean)
	require.Equal(t, 3.0, stats.Median)
}

func TestStatsUnknownMetricErrors(t *testing.T) {
	st := newTestStore(t)
	_, err := st.Stats("missing", 0)
	require.Error(t, err)
}

func TestStatsWindowExcludesOldPoints(t *testing.T) {
	st := newTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return base }
	st.Record("m", 100, nil, TypeSystem, "count")

	st.now = func() time.Time { return base.Add(time.Hour) }
	st.Record("m", 1, nil, TypeSystem, "count")

	stats, err := st.Stats("m", 5*time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Count)
	require.Equal(t, 1.0, stats.Mean)
}

func TestTrendIncreasing(t *testing.T) {
	st := newTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	st.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	for i := 0; i < 10; i++ {
		st.Record("cpu", float64(i)*10, nil, TypeSystem, "percent")
	}

	trend, err := st.Trend("cpu", 0)
	require.NoError(t, err)
	require.Equal(t, TrendIncreasing, trend.Direction)
	require.Greater(t, trend.Slope, 0.0)
	require.Greater(t, trend.Correlation, 0.9)
}

func TestTrendStableForFlatSeries(t *testing.T) {
	st := newTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	st.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	for i := 0; i < 10; i++ {
		st.Record("flat", 42, nil, TypeSystem, "count")
	}

	trend, err := st.Trend("flat", 0)
	require.NoError(t, err)
	require.Equal(t, TrendStable, trend.Direction)
}

func TestAlertFiresAndResolvesOncePerMetricSeverity(t *testing.T) {
	st := newTestStore(t)
	st.SetThresholds("mem", Thresholds{Warning: 0.6, Error: 0.9})

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return base }
	st.Record("mem", 0.5, nil, TypeMemory, "fraction")
	require.Empty(t, st.AlertsActive())

	st.now = func() time.Time { return base.Add(time.Second) }
	st.Record("mem", 0.7, nil, TypeMemory, "fraction")
	active := st.AlertsActive()
	require.Len(t, active, 1)
	require.Equal(t, SeverityWarning, active[0].Severity)

	// A repeated crossing must not fire a second warning alert.
	st.now = func() time.Time { return base.Add(2 * time.Second) }
	st.Record("mem", 0.75, nil, TypeMemory, "fraction")
	require.Len(t, st.AlertsActive(), 1)

	st.now = func() time.Time { return base.Add(3 * time.Second) }
	st.Record("mem", 0.95, nil, TypeMemory, "fraction")
	active = st.AlertsActive()
	require.Len(t, active, 2, "error severity fires independently of warning")

	st.now = func() time.Time { return base.Add(4 * time.Second) }
	st.Record("mem", 0.1, nil, TypeMemory, "fraction")
	require.Empty(t, st.AlertsActive(), "dropping below both thresholds resolves both alerts")
}

func TestExportLineDelimitedHeader(t *testing.T) {
	st := newTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return base }
	st.Record("m", 1, nil, TypeSystem, "count")

	out, err := st.Export("line", 0)
	require.NoError(t, err)
	text := out.(string)
	require.Contains(t, text, "timestamp,metric,value,unit,type\n")
	require.Contains(t, text, "m,1,count,system")
}

func TestExportNestedGroupsByMetric(t *testing.T) {
	st := newTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return base }
	st.Record("a", 1, nil, TypeSystem, "count")
	st.Record("b", 2, nil, TypeCache, "ratio")

	out, err := st.Export("nested", 0)
	require.NoError(t, err)
	nested := out.(NestedExport)
	require.Len(t, nested.Metrics, 2)
	require.Equal(t, TypeCache, nested.Metrics["b"].Type)
}

func TestRecordRatioAndTimingConvenienceWrappers(t *testing.T) {
	st := newTestStore(t)
	st.RecordTiming("latency", 0.5, nil)
	st.RecordMemory("rss", 1024, nil)
	st.RecordRatio("hitrate", 0.9, nil)

	require.Equal(t, TypeTiming, st.series["latency"].typ)
	require.Equal(t, TypeMemory, st.series["rss"].typ)
	require.Equal(t, TypeCache, st.series["hitrate"].typ)
}
