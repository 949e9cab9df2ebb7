package ops

import (
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/docengine/core/internal/schema"
)

const (
	minSplitTextLength    = 10
	minSegmentLength      = 5
	splitConfidenceFactor = 0.95
)

// splitCompatibleTypes is the splittable element-type set.
var splitCompatibleTypes = map[string]bool{
	"text":           true,
	"narrative_text": true,
	"paragraph":      true,
	"list_item":      true,
	"table_cell":     true,
}

// SplitOperation splits one element into several at the given text
// offsets, with preview, execute, and rollback.
type SplitOperation struct {
	input    schema.ElementRecord
	points   []int
	original *schema.ElementRecord
	segments []schema.ElementRecord
	status   Status
}

// NewSplit builds a split operation over element at the given (unsorted,
// not-yet-validated) split points.
func NewSplit(element schema.ElementRecord, points []int) *SplitOperation {
	return &SplitOperation{
		input:  element,
		points: append([]int(nil), points...),
		status: StatusPending,
	}
}

func (s *SplitOperation) Status() Status { return s.status }

// Validate runs the split precondition checks: minimum text length, a
// splittable type, and strictly ascending in-range split points are hard
// errors; a resulting short segment is a warning.
func (s *SplitOperation) Validate() schema.ValidationResult {
	var res schema.ValidationResult

	if s.input.ID == "" && s.input.Text == "" {
		res.AddError(ErrSplitElementMissing)
		return res
	}
	if len(s.input.Text) < minSplitTextLength {
		res.AddError(ErrSplitTextTooShort)
	}
	if !splitCompatibleTypes[s.input.Type] {
		res.AddError(ErrSplitIncompatibleType)
	}
	if len(s.points) == 0 {
		res.AddError(ErrSplitPointsEmpty)
	} else {
		prev := -1
		for _, p := range s.points {
			if p < 0 || p >= len(s.input.Text) {
				res.AddError(ErrSplitPointOutOfRange)
				continue
			}
			if p <= prev {
				res.AddError(ErrSplitPointsNotAscending)
			}
			prev = p
		}
	}

	if res.Valid() {
		for _, seg := range partitionText(s.input.Text, s.points) {
			if len(strings.TrimSpace(seg)) > 0 && len(seg) < minSegmentLength {
				res.AddWarning(errSplitShortSegment)
				break
			}
		}
	}

	return res
}

// partitionText slices text at points, producing len(points)+1 raw
// segments (no whitespace discarding — that happens in build).
func partitionText(text string, points []int) []string {
	bounds := append([]int{0}, points...)
	bounds = append(bounds, len(text))
	segments := make([]string, 0, len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		segments = append(segments, text[bounds[i]:bounds[i+1]])
	}
	return segments
}

// build produces the resulting element segments, discarding whitespace-only
// slices from the result while the bounding-box partition still uses the
// full N = len(points)+1 slice count.
func (s *SplitOperation) build() []schema.ElementRecord {
	rawSegments := partitionText(s.input.Text, s.points)
	n := len(rawSegments)
	boxes := partitionBoxHorizontally(s.input.BoundingBox, n)

	out := make([]schema.ElementRecord, 0, n)
	for i, text := range rawSegments {
		if len(strings.TrimSpace(text)) == 0 {
			continue
		}
		out = append(out, schema.ElementRecord{
			ID:               uuid.NewString(),
			Type:             s.input.Type,
			PageNumber:       s.input.PageNumber,
			BoundingBox:      boxes[i],
			Text:             text,
			ParentID:         s.input.ParentID,
			DetectionMethod:  s.input.DetectionMethod,
			CoordinateSystem: s.input.CoordinateSystem,
			Confidence:       s.input.Confidence * splitConfidenceFactor,
		})
	}
	return out
}

// Preview returns the split result without committing any state change.
func (s *SplitOperation) Preview() ([]schema.ElementRecord, schema.ValidationResult) {
	res := s.Validate()
	if !res.Valid() {
		return nil, res
	}
	return s.build(), res
}

// Execute performs the split, preserving the original for rollback.
func (s *SplitOperation) Execute() ([]schema.ElementRecord, error) {
	s.status = StatusValidating
	res := s.Validate()
	if !res.Valid() {
		s.status = StatusFailed
		return nil, res.Errors[0]
	}

	s.status = StatusRunning
	original := s.input
	s.original = &original
	s.segments = s.build()
	s.status = StatusCompleted

	return s.segments, nil
}

// CanRollback reports whether Rollback would succeed right now.
func (s *SplitOperation) CanRollback() bool {
	return s.status == StatusCompleted && s.original != nil
}

// Rollback restores the original element and clears the segment list.
func (s *SplitOperation) Rollback() (schema.ElementRecord, error) {
	if s.status != StatusCompleted {
		return schema.ElementRecord{}, ErrNotCompleted
	}
	if s.original == nil {
		return schema.ElementRecord{}, ErrNoOriginals
	}
	original := *s.original
	s.segments = nil
	s.original = nil
	s.status = StatusCancelled
	return original, nil
}

var (
	sentenceBoundaryRe = regexp.MustCompile(`[.!?]\s+[A-Z]`)
	paragraphBreakRe   = regexp.MustCompile(`\n[ \t]*\n`)
)

// FindOptimalSplitPoints gathers sentence-boundary and paragraph-break
// candidates, then greedily picks the target-1 points nearest each ideal
// i*len(text)/target position.
func FindOptimalSplitPoints(text string, target int) []int {
	if target < 2 {
		return nil
	}
	need := target - 1

	candidateSet := make(map[int]bool)
	for _, loc := range sentenceBoundaryRe.FindAllStringIndex(text, -1) {
		candidateSet[loc[0]+1] = true
	}
	for _, loc := range paragraphBreakRe.FindAllStringIndex(text, -1) {
		candidateSet[loc[1]] = true
	}

	candidates := make([]int, 0, len(candidateSet))
	for c := range candidateSet {
		candidates = append(candidates, c)
	}
	sort.Ints(candidates)

	if len(candidates) <= need {
		return candidates
	}

	pool := append([]int(nil), candidates...)
	chosen := make([]int, 0, need)
	textLen := len(text)
	for i := 1; i <= need; i++ {
		ideal := i * textLen / target
		bestIdx := 0
		bestDist := abs(pool[0] - ideal)
		for j := 1; j < len(pool); j++ {
			d := abs(pool[j] - ideal)
			if d < bestDist {
				bestDist = d
				bestIdx = j
			}
		}
		chosen = append(chosen, pool[bestIdx])
		pool = append(pool[:bestIdx], pool[bestIdx+1:]...)
	}

	sort.Ints(chosen)
	return chosen
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
