package metricsstore

import (
	"fmt"
	"strings"
	"time"
)

// ExportLineDelimited renders points as line-delimited text with header
// "timestamp,metric,value,unit,type".
func ExportLineDelimited(rows []ExportRow) string {
	var b strings.Builder
	b.WriteString("timestamp,metric,value,unit,type\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s,%s,%g,%s,%s\n",
			r.Timestamp.Format("2006-01-02T15:04:05Z07:00"), r.Metric, r.Value, r.Unit, r.Type)
	}
	return b.String()
}

// ExportRow is a single flattened sample used by both export formats.
type ExportRow struct {
	Timestamp time.Time
	Metric    string
	Value     float64
	Unit      string
	Type      MetricType
}

// NestedExport is the structured export form: one entry per metric, each
// carrying its own points.
type NestedExport struct {
	Metrics map[string]NestedSeries `json:"metrics"`
}

// NestedSeries is one metric's nested export payload.
type NestedSeries struct {
	Type   MetricType        `json:"type"`
	Unit   string            `json:"unit"`
	Points []NestedPoint     `json:"points"`
}

// NestedPoint is a single point within a NestedSeries.
type NestedPoint struct {
	Timestamp string            `json:"timestamp"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
}
