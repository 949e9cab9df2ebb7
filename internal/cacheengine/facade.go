package cacheengine

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// FacadeMetrics mirrors a standard Prometheus instrumentation pattern for a
// cache manager, generalized down to the single in-process tier used here.
type FacadeMetrics struct {
	Hits   *prometheus.CounterVec
	Misses *prometheus.CounterVec
	Size   prometheus.Gauge
}

// NewFacadeMetrics registers the facade's counters against reg. Pass a
// fresh prometheus.NewRegistry() in tests to avoid collisions with other
// Facade instances.
func NewFacadeMetrics(reg prometheus.Registerer) *FacadeMetrics {
	factory := promauto.With(reg)
	return &FacadeMetrics{
		Hits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docengine",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache facade hits.",
		}, []string{"type"}),
		Misses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docengine",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache facade misses.",
		}, []string{"type"}),
		Size: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "docengine",
			Subsystem: "cache",
			Name:      "size_entries",
			Help:      "Current number of entries in the cache.",
		}),
	}
}

// Facade is the typed view over the LRU Cache Core.
type Facade struct {
	cache        *Cache
	planner      *Planner
	metrics      *FacadeMetrics
	logger       *slog.Logger
	qualityMode  Quality
	lazyLoading  bool
	prefetchSink func([]Candidate)
}

// FacadeOption configures optional Facade behavior.
type FacadeOption func(*Facade)

// WithLazyLoading enables emitting prefetch events through sink whenever a
// typed getter hits.
func WithLazyLoading(sink func([]Candidate)) FacadeOption {
	return func(f *Facade) {
		f.lazyLoading = true
		f.prefetchSink = sink
	}
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) FacadeOption {
	return func(f *Facade) { f.logger = l }
}

// NewFacade builds a facade over cache, using planner for access-pattern
// prediction and metrics for Prometheus instrumentation.
func NewFacade(cache *Cache, planner *Planner, metrics *FacadeMetrics, opts ...FacadeOption) *Facade {
	f := &Facade{
		cache:       cache,
		planner:     planner,
		metrics:     metrics,
		logger:      slog.Default(),
		qualityMode: QualityHigh,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func pageRenderKey(p int, q Quality) string   { return fmt.Sprintf("page_render:%d:%s", p, q) }
func pageTextKey(p int) string                { return fmt.Sprintf("page_text:%d", p) }
func pageMetadataKey(p int) string            { return fmt.Sprintf("page_metadata:%d", p) }
func thumbnailKey(p, w, h int) string         { return fmt.Sprintf("thumbnail:%d:%dx%d", p, w, h) }

func (f *Facade) recordAccessAndPrefetch(p int) {
	if f.planner == nil {
		return
	}
	f.planner.RecordAccess(p)
	if f.lazyLoading && f.prefetchSink != nil {
		f.prefetchSink(f.planner.Queue())
	}
}

func (f *Facade) get(key string, typ Type, page int) ([]byte, bool) {
	entry, ok := f.cache.Get(key)
	if !ok {
		if f.metrics != nil {
			f.metrics.Misses.WithLabelValues(string(typ)).Inc()
		}
		return nil, false
	}
	if f.metrics != nil {
		f.metrics.Hits.WithLabelValues(string(typ)).Inc()
	}
	f.recordAccessAndPrefetch(page)

	payload := entry.Payload
	if entry.CompressionRatio < 1.0 {
		decoded, err := f.cache.Decompress(payload)
		if err != nil {
			f.logger.Error("cache facade decompress failed", "key", key, "error", err)
			return nil, false
		}
		payload = decoded
	}
	return payload, true
}

// GetPageRender returns the rendered bytes for page p at quality.
func (f *Facade) GetPageRender(p int, quality Quality) ([]byte, bool) {
	return f.get(pageRenderKey(p, quality), TypePageRender, p)
}

// PutPageRender stores a rendered page. Renders are always compressed.
func (f *Facade) PutPageRender(p int, data []byte, quality Quality) {
	f.cache.Put(pageRenderKey(p, quality), data, TypePageRender, quality, true)
	if f.metrics != nil {
		f.metrics.Size.Set(float64(f.cache.Len()))
	}
}

// GetPageText returns the extracted text for page p.
func (f *Facade) GetPageText(p int) ([]byte, bool) {
	return f.get(pageTextKey(p), TypePageText, p)
}

// PutPageText stores page text. Text is always compressed and lossless.
func (f *Facade) PutPageText(p int, text []byte) {
	f.cache.Put(pageTextKey(p), text, TypePageText, QualityLossless, true)
	if f.metrics != nil {
		f.metrics.Size.Set(float64(f.cache.Len()))
	}
}

// GetPageMetadata returns the serialized metadata for page p.
func (f *Facade) GetPageMetadata(p int) ([]byte, bool) {
	return f.get(pageMetadataKey(p), TypePageMetadata, p)
}

// PutPageMetadata stores page metadata. Always compressed and lossless.
func (f *Facade) PutPageMetadata(p int, data []byte) {
	f.cache.Put(pageMetadataKey(p), data, TypePageMetadata, QualityLossless, true)
	if f.metrics != nil {
		f.metrics.Size.Set(float64(f.cache.Len()))
	}
}

// GetThumbnail returns a (w,h) thumbnail for page p.
func (f *Facade) GetThumbnail(p, w, h int) ([]byte, bool) {
	return f.get(thumbnailKey(p, w, h), TypeThumbnail, p)
}

// PutThumbnail stores a thumbnail. Thumbnails are medium-quality and
// compressed.
func (f *Facade) PutThumbnail(p, w, h int, data []byte) {
	f.cache.Put(thumbnailKey(p, w, h), data, TypeThumbnail, QualityMedium, true)
	if f.metrics != nil {
		f.metrics.Size.Set(float64(f.cache.Len()))
	}
}

// SetQualityMode changes the facade's quality mode. Entering low or medium
// purges high/lossless entries to recover space.
func (f *Facade) SetQualityMode(q Quality) {
	f.qualityMode = q
	if q == QualityLow || q == QualityMedium {
		f.cache.PurgeByQuality(QualityHigh)
		f.cache.PurgeByQuality(QualityLossless)
	}
}

// QualityMode returns the facade's current quality mode.
func (f *Facade) QualityMode() Quality { return f.qualityMode }

// Clear removes ratio (0,1] of entries, oldest first; ratio>=1.0 clears
// everything.
func (f *Facade) Clear(ratio float64) int {
	n := f.cache.ClearRatio(ratio)
	if f.metrics != nil {
		f.metrics.Size.Set(float64(f.cache.Len()))
	}
	return n
}

// Stats returns the underlying cache's statistics.
func (f *Facade) Stats() Stats { return f.cache.Stats() }

// PrefetchQueue returns the planner's current ranked candidates.
func (f *Facade) PrefetchQueue() []Candidate {
	if f.planner == nil {
		return nil
	}
	return f.planner.Queue()
}
