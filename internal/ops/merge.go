package ops

import (
	"strings"

	"github.com/google/uuid"

	"github.com/docengine/core/internal/schema"
)

const maxMergeElements = 50

// mergeCompatibleTypes is the merge-compatible element-type set.
var mergeCompatibleTypes = map[string]bool{
	"text":           true,
	"title":          true,
	"narrative_text": true,
	"paragraph":      true,
	"header":         true,
	"footer":         true,
	"list_item":      true,
	"table_cell":     true,
	"caption":        true,
	"footnote":       true,
}

// MergeOperation merges a list of elements into one, with preview,
// execute, and rollback.
type MergeOperation struct {
	inputs    []schema.ElementRecord
	originals []schema.ElementRecord
	merged    *schema.ElementRecord
	status    Status
}

// NewMerge builds a merge operation over the given elements, in the order
// given (order determines separator/tie-break/first-defined precedence).
func NewMerge(elements []schema.ElementRecord) *MergeOperation {
	return &MergeOperation{inputs: append([]schema.ElementRecord(nil), elements...), status: StatusPending}
}

func (m *MergeOperation) Status() Status { return m.status }

// Validate runs the merge precondition checks: size bounds, unique ids, and
// type compatibility are hard errors; mixed types, cross-page inputs,
// missing coordinates, and no detected spatial relationship are warnings.
func (m *MergeOperation) Validate() schema.ValidationResult {
	var res schema.ValidationResult

	if len(m.inputs) == 0 {
		res.AddError(ErrMergeEmptyInput)
		return res
	}
	if len(m.inputs) < 2 {
		res.AddError(ErrMergeTooFewElements)
	}
	if len(m.inputs) > maxMergeElements {
		res.AddError(ErrMergeTooManyElements)
	}

	seen := make(map[string]bool, len(m.inputs))
	for _, e := range m.inputs {
		if seen[e.ID] {
			res.AddError(ErrMergeDuplicateIDs)
		}
		seen[e.ID] = true
		if !mergeCompatibleTypes[e.Type] {
			res.AddError(ErrMergeIncompatibleType)
		}
	}

	if res.Valid() {
		if !allSameType(m.inputs) {
			res.AddWarning(errMergeMixedTypes)
		}
		if !allSamePage(m.inputs) {
			res.AddWarning(errMergeCrossPage)
		}
		boxes := make([]schema.BoundingBox, 0, len(m.inputs))
		anyCoords := false
		for _, e := range m.inputs {
			if e.BoundingBox.Present() {
				anyCoords = true
				boxes = append(boxes, e.BoundingBox)
			}
		}
		if !anyCoords {
			res.AddWarning(errMergeNoCoordinates)
		} else if len(boxes) >= 2 && !hasSpatialRelationship(boxes) {
			res.AddWarning(errMergeNoSpatialRelation)
		}
	}

	return res
}

func allSameType(elements []schema.ElementRecord) bool {
	if len(elements) == 0 {
		return true
	}
	t := elements[0].Type
	for _, e := range elements[1:] {
		if e.Type != t {
			return false
		}
	}
	return true
}

func allSamePage(elements []schema.ElementRecord) bool {
	if len(elements) == 0 {
		return true
	}
	p := elements[0].PageNumber
	for _, e := range elements[1:] {
		if e.PageNumber != p {
			return false
		}
	}
	return true
}

// mergeSeparator picks the joining text between prev and next: a single
// space, unless prev already ends a sentence/clause or next opens with
// punctuation that shouldn't be preceded by a space.
func mergeSeparator(prev, next string) string {
	if prev != "" && strings.ContainsAny(prev[len(prev)-1:], ".!?:") {
		return " "
	}
	if next != "" && strings.ContainsAny(next[:1], ".!?,:;") {
		return ""
	}
	return " "
}

func mergeText(inputs []schema.ElementRecord) string {
	var parts []string
	for _, e := range inputs {
		if strings.TrimSpace(e.Text) == "" {
			continue
		}
		parts = append(parts, e.Text)
	}
	if len(parts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for i := 1; i < len(parts); i++ {
		b.WriteString(mergeSeparator(parts[i-1], parts[i]))
		b.WriteString(parts[i])
	}
	return b.String()
}

// mergeMostFrequentType returns the most common type among inputs, ties
// broken by first occurrence.
func mergeMostFrequentType(inputs []schema.ElementRecord) string {
	counts := make(map[string]int, len(inputs))
	order := make([]string, 0, len(inputs))
	for _, e := range inputs {
		if counts[e.Type] == 0 {
			order = append(order, e.Type)
		}
		counts[e.Type]++
	}
	best := order[0]
	for _, t := range order[1:] {
		if counts[t] > counts[best] {
			best = t
		}
	}
	return best
}

func mergeConfidence(inputs []schema.ElementRecord) float64 {
	var sum float64
	var n int
	for _, e := range inputs {
		if e.Confidence > 0 {
			sum += e.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func firstDefined[T comparable](inputs []schema.ElementRecord, get func(schema.ElementRecord) T) T {
	var zero T
	for _, e := range inputs {
		if v := get(e); v != zero {
			return v
		}
	}
	return zero
}

// mergeParentID returns the parent id only if every input agrees on it,
// otherwise none.
func mergeParentID(inputs []schema.ElementRecord) string {
	if len(inputs) == 0 {
		return ""
	}
	p := inputs[0].ParentID
	for _, e := range inputs[1:] {
		if e.ParentID != p {
			return ""
		}
	}
	return p
}

// build produces the merged element without mutating operation state,
// shared by Preview and Execute.
func (m *MergeOperation) build() schema.ElementRecord {
	boxes := make([]schema.BoundingBox, 0, len(m.inputs))
	for _, e := range m.inputs {
		boxes = append(boxes, e.BoundingBox)
	}

	return schema.ElementRecord{
		ID:               uuid.NewString(),
		Type:             mergeMostFrequentType(m.inputs),
		PageNumber:       firstDefined(m.inputs, func(e schema.ElementRecord) int { return e.PageNumber }),
		BoundingBox:      unionBoundingBox(boxes),
		Text:             mergeText(m.inputs),
		ParentID:         mergeParentID(m.inputs),
		DetectionMethod:  firstDefined(m.inputs, func(e schema.ElementRecord) string { return e.DetectionMethod }),
		CoordinateSystem: firstDefined(m.inputs, func(e schema.ElementRecord) string { return e.CoordinateSystem }),
		Confidence:       mergeConfidence(m.inputs),
	}
}

// Preview returns the merge result without committing any state change.
func (m *MergeOperation) Preview() (schema.ElementRecord, schema.ValidationResult) {
	res := m.Validate()
	if !res.Valid() {
		return schema.ElementRecord{}, res
	}
	return m.build(), res
}

// Execute performs the merge, preserving originals for rollback. The
// operation is single-element-atomic: either merged is produced and
// originals retained, or the operation fails with no state change.
func (m *MergeOperation) Execute() (schema.ElementRecord, error) {
	m.status = StatusValidating
	res := m.Validate()
	if !res.Valid() {
		m.status = StatusFailed
		return schema.ElementRecord{}, res.Errors[0]
	}

	m.status = StatusRunning
	m.originals = append([]schema.ElementRecord(nil), m.inputs...)
	merged := m.build()
	m.merged = &merged
	m.status = StatusCompleted

	return merged, nil
}

// CanRollback reports whether Rollback would succeed right now.
func (m *MergeOperation) CanRollback() bool {
	return m.status == StatusCompleted && m.originals != nil
}

// Rollback restores the preserved originals and clears the merged result.
func (m *MergeOperation) Rollback() ([]schema.ElementRecord, error) {
	if m.status != StatusCompleted {
		return nil, ErrNotCompleted
	}
	if m.originals == nil {
		return nil, ErrNoOriginals
	}
	originals := m.originals
	m.merged = nil
	m.originals = nil
	m.status = StatusCancelled
	return originals, nil
}
