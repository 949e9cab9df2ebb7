package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/docengine/core/internal/metricsstore"
	"github.com/docengine/core/internal/schema"
)

// Config tunes the engine's concurrency and caching behavior.
type Config struct {
	MaxWorkers   int
	Parallel     bool
	CacheEnabled bool
}

// DefaultConfig returns the documented defaults: 4 workers, parallel
// dispatch, caching on.
func DefaultConfig() Config {
	return Config{MaxWorkers: 4, Parallel: true, CacheEnabled: true}
}

const (
	cacheMaxEntries = 1000
	cacheDropBatch  = 100
)

// schemaCache is a FIFO-bounded store of extracted schemas, keyed by
// (document_id, requested extractor set). It is intentionally not an LRU:
// the oldest 100 entries drop once the cache exceeds 1000, independent of
// access recency.
type schemaCache struct {
	mu      sync.Mutex
	order   []string
	entries map[string]schema.Document
}

func newSchemaCache() *schemaCache {
	return &schemaCache{entries: make(map[string]schema.Document)}
}

func (c *schemaCache) get(key string) (schema.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.entries[key]
	return doc, ok
}

func (c *schemaCache) put(key string, doc schema.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = doc

	if len(c.order) > cacheMaxEntries {
		drop := c.order[:cacheDropBatch]
		c.order = c.order[cacheDropBatch:]
		for _, k := range drop {
			delete(c.entries, k)
		}
	}
}

func (c *schemaCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// buildCacheKey derives a cache key from (document_id, sorted(requested) or
// "all").
func buildCacheKey(documentID string, requested []string) string {
	if len(requested) == 0 {
		return documentID + "|all"
	}
	sorted := append([]string(nil), requested...)
	sort.Strings(sorted)
	return documentID + "|" + strings.Join(sorted, ",")
}

// Info describes how one Extract call went, independent of the resulting
// schema.
type Info struct {
	CacheHit            bool
	Warnings            []string
	RunInfos            []RunInfo
	AggregateConfidence float64
	Duration            time.Duration
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithConfig overrides the engine's tunables.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithMetrics wires a metrics store for duration/success emission (F).
func WithMetrics(m *metricsstore.Store) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger overrides the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides the engine's time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSleeper overrides the backoff sleep function used by ExtractWithRetry.
func WithSleeper(s Sleeper) Option {
	return func(e *Engine) { e.sleep = s }
}

// Engine is the pluggable, concurrent extraction engine.
type Engine struct {
	registry *Registry
	scorer   *Scorer
	cfg      Config
	cache    *schemaCache
	metrics  *metricsstore.Store
	logger   *slog.Logger
	now      func() time.Time
	sleep    Sleeper
}

// New builds an Engine around a populated Registry.
func New(registry *Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		scorer:   NewScorer(DefaultScoreWeights()),
		cfg:      DefaultConfig(),
		cache:    newSchemaCache(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type extractorRun struct {
	name     string
	result   ExtractWithValidationResult
}

// Extract runs an extraction end to end: cache lookup, extractor
// selection, dispatch, combination into a schema, and confidence
// aggregation.
func (e *Engine) Extract(ctx context.Context, doc Document, requested []string, ectx *Context) (schema.Document, Info) {
	start := e.now()

	if ectx == nil {
		ectx = &Context{DocumentID: doc.ID, Timestamp: e.now()}
	}

	key := buildCacheKey(ectx.DocumentID, requested)
	if e.cfg.CacheEnabled {
		if cached, ok := e.cache.get(key); ok {
			if e.metrics != nil {
				e.metrics.Record("extraction.cache_hit", 1, nil, metricsstore.TypeCache, "count")
			}
			return cached, Info{CacheHit: true}
		}
	}

	selected, warnings := e.selectExtractors(requested)

	runs := e.dispatch(ctx, selected, doc, *ectx)

	out, runInfos := e.combine(runs, *ectx)
	aggregate := e.aggregateConfidence(out)
	out.Record.Confidence = aggregate

	if e.cfg.CacheEnabled {
		e.cache.put(key, out)
	}

	duration := e.now().Sub(start)
	allSucceeded := true
	for _, ri := range runInfos {
		if !ri.Success {
			allSucceeded = false
			break
		}
	}
	if e.metrics != nil {
		e.metrics.RecordTiming("extraction.duration", duration.Seconds(), nil)
		successVal := 0.0
		if allSucceeded {
			successVal = 1.0
		}
		e.metrics.Record("extraction.success", successVal, nil, metricsstore.TypeUser, "bool")
	}

	return out, Info{
		Warnings:            warnings,
		RunInfos:            runInfos,
		AggregateConfidence: aggregate,
		Duration:            duration,
	}
}

// selectExtractors resolves the requested extractor names against the
// registry's enabled set, warning on any name that isn't enabled or
// doesn't exist. An empty requested list selects every enabled extractor.
func (e *Engine) selectExtractors(requested []string) ([]Extractor, []string) {
	enabled := e.registry.Enabled()
	if len(requested) == 0 {
		return enabled, nil
	}

	byName := make(map[string]Extractor, len(enabled))
	for _, ext := range enabled {
		byName[ext.Name()] = ext
	}

	var selected []Extractor
	var warnings []string
	for _, name := range requested {
		ext, ok := byName[name]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("requested extractor %q is not enabled or does not exist", name))
			continue
		}
		selected = append(selected, ext)
	}
	return selected, warnings
}

// dispatch runs extractors in parallel (semaphore-bounded) or
// sequentially, with per-extractor failures captured rather than
// propagated.
func (e *Engine) dispatch(ctx context.Context, extractors []Extractor, doc Document, ectx Context) []extractorRun {
	runs := make([]extractorRun, len(extractors))

	if !e.cfg.Parallel || len(extractors) <= 1 {
		for i, ext := range extractors {
			runs[i] = extractorRun{name: ext.Name(), result: ExtractWithRetry(ctx, ext, doc, ectx, e.sleep)}
		}
		return runs
	}

	workers := e.cfg.MaxWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))

	var wg sync.WaitGroup
	for i, ext := range extractors {
		i, ext := i, ext
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				runs[i] = extractorRun{name: ext.Name(), result: ExtractWithValidationResult{
					Info: RunInfo{Name: ext.Name(), Success: false, Error: err.Error()},
				}}
				return
			}
			defer sem.Release(1)
			runs[i] = extractorRun{name: ext.Name(), result: ExtractWithRetry(ctx, ext, doc, ectx, e.sleep)}
		}()
	}
	wg.Wait()
	return runs
}

// combine classifies each extractor result by record type, rescores it
// through the confidence scorer, and slots it into the schema.
func (e *Engine) combine(runs []extractorRun, ectx Context) (schema.Document, []RunInfo) {
	var out schema.Document
	runInfos := make([]RunInfo, 0, len(runs))

	for _, run := range runs {
		runInfos = append(runInfos, run.result.Info)
		if !run.result.Info.Success {
			continue
		}

		validation := run.result.Validation
		outcome := ValidationOutcome{
			Valid:      validation.Valid,
			Confidence: validation.Confidence,
			Errors:     validation.Errors,
			Warnings:   validation.Warnings,
		}

		for _, res := range run.result.Results {
			total, nonEmpty := countNonEmptyFields(res.Fields)
			score := e.scorer.Score(ScoreInput{
				Method:           res.Method,
				RecordType:       res.Type,
				ExtractorName:    run.name,
				TotalFields:      total,
				NonEmptyFields:   nonEmpty,
				RecordConfidence: res.Confidence,
				Validation:       &outcome,
				ChainLength:      len(ectx.ExtractorChain),
				RecordTimestamp:  ectx.Timestamp,
				ContextTimestamp: ectx.Timestamp,
			})

			switch res.Type {
			case RecordDocument:
				out.Record = toDocumentRecord(res.Fields, score)
			case RecordPage:
				out.Pages = append(out.Pages, toPageRecord(res.Fields, score))
			case RecordElement:
				out.Elements = append(out.Elements, toElementRecord(res.Fields, score))
			case RecordRelationship:
				out.Relationships = append(out.Relationships, toRelationshipRecord(res.Fields, score))
			}
		}
	}

	return out, runInfos
}

// aggregateConfidence weights each scored record by its record type and
// combines them into a single document-level confidence.
func (e *Engine) aggregateConfidence(doc schema.Document) float64 {
	var records []RecordConfidence
	if doc.Record.PageCount != 0 || doc.Record.TotalElements != 0 || doc.Record.Title != "" {
		records = append(records, RecordConfidence{Type: RecordDocument, Confidence: doc.Record.Confidence})
	}
	for _, p := range doc.Pages {
		records = append(records, RecordConfidence{Type: RecordPage, Confidence: p.Confidence})
	}
	for _, el := range doc.Elements {
		records = append(records, RecordConfidence{Type: RecordElement, Confidence: el.Confidence})
	}
	for _, rel := range doc.Relationships {
		records = append(records, RecordConfidence{Type: RecordRelationship, Confidence: rel.Confidence})
	}
	return Aggregate(records, AggregateWeightedAverage)
}

// ExtractIncremental re-extracts only what changed: it selects the
// extractors relevant to the supplied change descriptors, runs them, and
// merges their results into prev, leaving every record the
// changes don't touch untouched.
func (e *Engine) ExtractIncremental(ctx context.Context, doc Document, prev schema.Document, changedExtractors []string, ectx *Context) (schema.Document, Info) {
	if len(changedExtractors) == 0 {
		return prev, Info{}
	}

	if ectx == nil {
		ectx = &Context{DocumentID: doc.ID, Timestamp: e.now()}
	}

	selected, warnings := e.selectExtractors(changedExtractors)
	runs := e.dispatch(ctx, selected, doc, *ectx)
	fresh, runInfos := e.combine(runs, *ectx)

	merged := mergeSchemas(prev, fresh)
	merged.Record.Confidence = e.aggregateConfidence(merged)

	return merged, Info{
		Warnings:            warnings,
		RunInfos:            runInfos,
		AggregateConfidence: merged.Record.Confidence,
	}
}

// mergeSchemas overlays fresh's non-empty record set onto prev: a document
// record, when produced, replaces prev's; pages/elements/relationships from
// fresh replace prev's entries with matching identity and are otherwise
// appended, leaving everything else from prev untouched.
func mergeSchemas(prev, fresh schema.Document) schema.Document {
	out := prev

	if fresh.Record.Title != "" || fresh.Record.PageCount != 0 || fresh.Record.TotalElements != 0 {
		out.Record = fresh.Record
	}

	out.Pages = mergePages(out.Pages, fresh.Pages)
	out.Elements = mergeElements(out.Elements, fresh.Elements)
	if len(fresh.Relationships) > 0 {
		out.Relationships = mergeRelationships(out.Relationships, fresh.Relationships)
	}

	return out
}

func mergePages(prev, fresh []schema.PageRecord) []schema.PageRecord {
	if len(fresh) == 0 {
		return prev
	}
	byNumber := make(map[int]int, len(prev))
	for i, p := range prev {
		byNumber[p.PageNumber] = i
	}
	out := append([]schema.PageRecord(nil), prev...)
	for _, p := range fresh {
		if i, ok := byNumber[p.PageNumber]; ok {
			out[i] = p
		} else {
			out = append(out, p)
		}
	}
	return out
}

func mergeElements(prev, fresh []schema.ElementRecord) []schema.ElementRecord {
	if len(fresh) == 0 {
		return prev
	}
	byID := make(map[string]int, len(prev))
	for i, el := range prev {
		byID[el.ID] = i
	}
	out := append([]schema.ElementRecord(nil), prev...)
	for _, el := range fresh {
		if i, ok := byID[el.ID]; ok {
			out[i] = el
		} else {
			out = append(out, el)
		}
	}
	return out
}

func mergeRelationships(prev, fresh []schema.RelationshipRecord) []schema.RelationshipRecord {
	byPair := make(map[[2]string]int, len(prev))
	for i, r := range prev {
		byPair[[2]string{r.SourceID, r.TargetID}] = i
	}
	out := append([]schema.RelationshipRecord(nil), prev...)
	for _, r := range fresh {
		key := [2]string{r.SourceID, r.TargetID}
		if i, ok := byPair[key]; ok {
			out[i] = r
		} else {
			out = append(out, r)
		}
	}
	return out
}

// CacheSize reports the number of schemas currently cached, for tests and
// diagnostics.
func (e *Engine) CacheSize() int { return e.cache.len() }
