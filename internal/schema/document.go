package schema

import "time"

// DocumentRecord is the single root metadata record for a document.
type DocumentRecord struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
	Keywords []string

	CreationDate     time.Time
	ModificationDate time.Time
	MetadataDate     time.Time

	Language           string
	LanguageConfidence float64
	Encoding           string
	EncodingConfidence float64

	PageCount     int
	TotalElements int
	SizeBytes     int64
	Format        string

	Encrypted bool
	Signed    bool

	Permissions map[string]bool
	Quality     map[string]float64

	Confidence float64
}

// Level bands the record's overall confidence.
func (d DocumentRecord) Level() Level { return DeriveLevel(d.Confidence) }

// Validate checks the document-level invariants. pageRecords and
// elementRecords, when non-nil, drive the page_count/total_elements
// cross-invariant checks; a nil slice means "not populated" and is exempt
// from the cross-check.
func (d DocumentRecord) Validate(pageRecords []PageRecord, elementRecords []ElementRecord) ValidationResult {
	var res ValidationResult

	if d.PageCount == 0 {
		res.AddWarning(errDocumentZeroPageCount)
	}
	if d.ModificationDate.Before(d.CreationDate) {
		res.AddWarning(errDocumentModBeforeCreation)
	}
	if pageRecords != nil && d.PageCount != len(pageRecords) {
		res.AddError(ErrDocumentInconsistentPageCount)
	}
	if elementRecords != nil && d.TotalElements != len(elementRecords) {
		res.AddError(ErrDocumentInconsistentElementCount)
	}
	return res
}

// Reconcile returns a copy of d with PageCount and TotalElements overwritten
// from the supplied record slices, as permitted by the engine auto-reconcile
// escape hatch.
func (d DocumentRecord) Reconcile(pageRecords []PageRecord, elementRecords []ElementRecord) DocumentRecord {
	out := d
	if pageRecords != nil {
		out.PageCount = len(pageRecords)
	}
	if elementRecords != nil {
		out.TotalElements = len(elementRecords)
	}
	return out
}
