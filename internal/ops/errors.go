package ops

import "errors"

var (
	ErrMergeEmptyInput      = errors.New("ops: merge requires at least one element")
	ErrMergeTooFewElements  = errors.New("ops: merge requires at least 2 elements")
	ErrMergeTooManyElements = errors.New("ops: merge accepts at most 50 elements")
	ErrMergeDuplicateIDs    = errors.New("ops: merge input element ids must be unique")
	ErrMergeIncompatibleType = errors.New("ops: merge input contains an element type outside the merge-compatible set")

	errMergeMixedTypes       = errors.New("ops: merge input mixes element types")
	errMergeCrossPage        = errors.New("ops: merge input spans multiple pages")
	errMergeNoCoordinates    = errors.New("ops: merge input carries no coordinate information")
	errMergeNoSpatialRelation = errors.New("ops: merge input has no pairwise spatial relationship")

	ErrSplitElementMissing    = errors.New("ops: split requires an element")
	ErrSplitTextTooShort      = errors.New("ops: split element text must be at least 10 characters")
	ErrSplitIncompatibleType  = errors.New("ops: split element type is not splittable")
	ErrSplitPointsEmpty       = errors.New("ops: split requires at least one split point")
	ErrSplitPointsNotAscending = errors.New("ops: split points must be strictly ascending and unique")
	ErrSplitPointOutOfRange   = errors.New("ops: split point out of range")

	errSplitShortSegment = errors.New("ops: split produces a segment shorter than 5 characters")

	ErrNotCompleted  = errors.New("ops: rollback requires a completed operation with preserved originals")
	ErrNoOriginals   = errors.New("ops: no preserved state to roll back to")
)
