// Package cacheengine implements the render/metadata LRU cache core, its
// typed facade, and the predictive prefetch planner.
package cacheengine

import "time"

// Type classifies what an entry holds.
type Type string

const (
	TypePageRender   Type = "page_render"
	TypePageText     Type = "page_text"
	TypePageMetadata Type = "page_metadata"
	TypeThumbnail    Type = "thumbnail"
	TypeSearchIndex  Type = "search_index"
)

// Quality classifies the fidelity an entry was stored at.
type Quality string

const (
	QualityLow      Quality = "low"
	QualityMedium   Quality = "medium"
	QualityHigh     Quality = "high"
	QualityLossless Quality = "lossless"
)

// Entry is a single cache record. Payload is always the bytes actually
// stored (compressed, when CompressionRatio < 1.0); callers that asked for
// compression are responsible for decompressing on read.
type Entry struct {
	Key              string
	Payload          []byte
	Size             int64
	Type             Type
	Quality          Quality
	AccessCount      int64
	LastAccess       time.Time
	CreatedAt        time.Time
	CompressionRatio float64
}
