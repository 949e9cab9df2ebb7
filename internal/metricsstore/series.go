// Package metricsstore implements the bounded metric time-series store,
// its statistics/trend analysis, and threshold-driven alerting.
package metricsstore

import "time"

// MetricType classifies what a named series measures.
type MetricType string

const (
	TypeTiming  MetricType = "timing"
	TypeMemory  MetricType = "memory"
	TypeRender  MetricType = "render"
	TypeCache   MetricType = "cache"
	TypeNetwork MetricType = "network"
	TypeUser    MetricType = "user"
	TypeSystem  MetricType = "system"
)

// Point is a single (timestamp, value, labels) sample.
type Point struct {
	Timestamp time.Time
	Value     float64
	Labels    map[string]string
}

// series is a single named metric's bounded ring of points. Invariant:
// len(points) <= maxPoints.
type series struct {
	name      string
	typ       MetricType
	unit      string
	maxPoints int
	points    []Point
}

func newSeries(name string, typ MetricType, unit string, maxPoints int) *series {
	return &series{name: name, typ: typ, unit: unit, maxPoints: maxPoints}
}

func (s *series) append(p Point) {
	s.points = append(s.points, p)
	if len(s.points) > s.maxPoints {
		s.points = s.points[len(s.points)-s.maxPoints:]
	}
}

// inWindow returns the trailing points within window of now, or all points
// when window <= 0.
func (s *series) inWindow(now time.Time, window time.Duration) []Point {
	if window <= 0 {
		return s.points
	}
	cutoff := now.Add(-window)
	start := 0
	for start < len(s.points) && s.points[start].Timestamp.Before(cutoff) {
		start++
	}
	return s.points[start:]
}
