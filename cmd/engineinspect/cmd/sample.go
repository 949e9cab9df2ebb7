package cmd

import (
	"context"
	"time"

	"github.com/docengine/core/internal/extract"
)

// sampleExtractor is a built-in stand-in for a real document parser,
// producing one document record and two page records from a fixed
// in-memory document so the CLI has something to run against without a
// real file on disk.
type sampleExtractor struct{}

func (sampleExtractor) Name() string { return "sample" }
func (sampleExtractor) SupportedMethods() []extract.ExtractionMethod {
	return []extract.ExtractionMethod{extract.MethodDirectParse}
}
func (sampleExtractor) Enabled() bool          { return true }
func (sampleExtractor) Timeout() time.Duration { return 5 * time.Second }
func (sampleExtractor) RetryCount() int        { return 1 }

func (sampleExtractor) Extract(ctx context.Context, doc extract.Document, ectx extract.Context) ([]extract.Result, error) {
	return []extract.Result{
		{
			Type:   extract.RecordDocument,
			Method: extract.MethodDirectParse,
			Fields: map[string]any{
				"title":          "Sample Report",
				"page_count":     2,
				"total_elements": 2,
			},
			Confidence: 0.92,
		},
		{
			Type:   extract.RecordPage,
			Method: extract.MethodDirectParse,
			Fields: map[string]any{
				"document_id": doc.ID, "page_number": 1,
				"width": 612.0, "height": 792.0, "word_count": 120, "char_count": 600,
			},
			Confidence: 0.9,
		},
		{
			Type:   extract.RecordPage,
			Method: extract.MethodDirectParse,
			Fields: map[string]any{
				"document_id": doc.ID, "page_number": 2,
				"width": 612.0, "height": 792.0, "word_count": 80, "char_count": 400,
			},
			Confidence: 0.9,
		},
	}, nil
}

func (sampleExtractor) Validate(results []extract.Result) extract.ValidationOutcome {
	return extract.ValidationOutcome{Valid: true, Confidence: 0.9}
}
