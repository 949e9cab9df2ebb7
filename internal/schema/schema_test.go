package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDeriveLevelBands(t *testing.T) {
	cases := map[float64]Level{
		0.1:  LevelVeryLow,
		0.49: LevelVeryLow,
		0.5:  LevelLow,
		0.69: LevelLow,
		0.7:  LevelMedium,
		0.84: LevelMedium,
		0.85: LevelHigh,
		0.94: LevelHigh,
		0.95: LevelVeryHigh,
		1.0:  LevelVeryHigh,
	}
	for conf, want := range cases {
		require.Equal(t, want, DeriveLevel(conf), "confidence=%v", conf)
	}
}

func TestDocumentValidateWarnsOnZeroPageCount(t *testing.T) {
	d := DocumentRecord{PageCount: 0, CreationDate: time.Unix(0, 0), ModificationDate: time.Unix(0, 0)}
	res := d.Validate(nil, nil)
	require.True(t, res.Valid())
	require.Len(t, res.Warnings, 1)
}

func TestDocumentValidateWarnsOnModificationBeforeCreation(t *testing.T) {
	d := DocumentRecord{
		PageCount:        1,
		CreationDate:     time.Unix(1000, 0),
		ModificationDate: time.Unix(500, 0),
	}
	res := d.Validate(nil, nil)
	require.Contains(t, res.Warnings, errDocumentModBeforeCreation)
}

func TestDocumentValidateErrorsOnPageCountMismatch(t *testing.T) {
	d := DocumentRecord{PageCount: 3, CreationDate: time.Unix(0, 0), ModificationDate: time.Unix(0, 0)}
	pages := []PageRecord{{DocumentID: "doc", PageNumber: 1}}
	res := d.Validate(pages, nil)
	require.False(t, res.Valid())
	require.Contains(t, res.Errors, ErrDocumentInconsistentPageCount)
}

func TestDocumentValidateSkipsCrossCheckWhenSliceNil(t *testing.T) {
	d := DocumentRecord{PageCount: 3, CreationDate: time.Unix(0, 0), ModificationDate: time.Unix(0, 0)}
	res := d.Validate(nil, nil)
	require.True(t, res.Valid())
}

func TestDocumentReconcileOverwritesCounts(t *testing.T) {
	d := DocumentRecord{PageCount: 99, TotalElements: 99}
	pages := []PageRecord{{}, {}}
	elements := []ElementRecord{{}}
	out := d.Reconcile(pages, elements)
	require.Equal(t, 2, out.PageCount)
	require.Equal(t, 1, out.TotalElements)
}

func TestPageValidateInvalidNumberAndMissingDocumentID(t *testing.T) {
	p := PageRecord{PageNumber: 0}
	res := p.Validate()
	require.Contains(t, res.Errors, ErrPageInvalidNumber)
	require.Contains(t, res.Errors, ErrPageMissingDocumentID)
}

func TestPageValidateDimensionsAndRotation(t *testing.T) {
	p := PageRecord{DocumentID: "doc", PageNumber: 1, Width: -1, Height: 10, Rotation: 400}
	res := p.Validate()
	require.Contains(t, res.Errors, ErrPageInvalidDimensions)
	require.Contains(t, res.Errors, ErrPageInvalidRotation)
}

func TestPageValidateAspectRatioWarning(t *testing.T) {
	p := PageRecord{DocumentID: "doc", PageNumber: 1, Width: 1000, Height: 10}
	res := p.Validate()
	require.Contains(t, res.Warnings, errPageInvalidAspectRatio)
}

func TestPageValidateTypedCountsExceedTotalWarning(t *testing.T) {
	p := PageRecord{
		DocumentID:          "doc",
		PageNumber:          1,
		ElementCount:        1,
		ElementCountsByType: map[string]int{"text": 2, "image": 1},
	}
	res := p.Validate()
	require.Contains(t, res.Warnings, errPageTypedCountsExceedTotal)
}

func TestPageValidateAvgCharsPerWordWarning(t *testing.T) {
	p := PageRecord{DocumentID: "doc", PageNumber: 1, WordCount: 1, CharCount: 500}
	res := p.Validate()
	require.Contains(t, res.Warnings, errPageAvgCharsPerWordOutOfRange)
}

func TestPageValidateCleanRecordHasNoIssues(t *testing.T) {
	p := PageRecord{
		DocumentID: "doc", PageNumber: 1, Width: 100, Height: 200,
		WordCount: 10, CharCount: 50, ElementCount: 5,
		ElementCountsByType: map[string]int{"text": 5},
	}
	res := p.Validate()
	require.True(t, res.Valid())
	require.Empty(t, res.Warnings)
}

func TestElementValidateBoundingBoxOrdering(t *testing.T) {
	e := ElementRecord{BoundingBox: NewBoundingBox(10, 0, 5, 10)}
	res := e.Validate()
	require.Contains(t, res.Errors, ErrElementInvalidBoundingBox)
}

func TestElementValidateHeadingAndListLevels(t *testing.T) {
	bad := 7
	badList := -1
	e := ElementRecord{HeadingLevel: &bad, ListItemLevel: &badList}
	res := e.Validate()
	require.Contains(t, res.Errors, ErrElementInvalidHeadingLevel)
	require.Contains(t, res.Errors, ErrElementInvalidListItemLevel)
}

func TestElementValidatePassesWithNoOptionalFields(t *testing.T) {
	e := ElementRecord{ID: "e1", Type: "text"}
	res := e.Validate()
	require.True(t, res.Valid())
}

func TestRelationshipValidateStrengthAndEndpoints(t *testing.T) {
	r := RelationshipRecord{Strength: 1.5}
	res := r.Validate()
	require.Contains(t, res.Errors, ErrRelationshipInvalidStrength)
	require.Contains(t, res.Errors, ErrRelationshipMissingEndpoint)
}

func TestRelationshipValidatePasses(t *testing.T) {
	r := RelationshipRecord{SourceID: "a", TargetID: "b", Strength: 0.5, Direction: DirectionForward}
	res := r.Validate()
	require.True(t, res.Valid())
}

func TestDocumentAggregateValidateMergesAllRecordLevels(t *testing.T) {
	doc := Document{
		Record: DocumentRecord{PageCount: 1, CreationDate: time.Unix(0, 0), ModificationDate: time.Unix(0, 0)},
		Pages:  []PageRecord{{DocumentID: "doc", PageNumber: 0}},
		Elements: []ElementRecord{
			{ID: "e1", BoundingBox: NewBoundingBox(0, 0, 1, 1)},
		},
		Relationships: []RelationshipRecord{{SourceID: "e1", TargetID: "", Strength: 0.5}},
	}
	res := doc.Validate()
	require.False(t, res.Valid())
	require.Contains(t, res.Errors, ErrPageInvalidNumber)
	require.Contains(t, res.Errors, ErrRelationshipMissingEndpoint)
}

func TestDocumentAggregateReconcile(t *testing.T) {
	doc := Document{
		Record:   DocumentRecord{PageCount: 0, TotalElements: 0},
		Pages:    []PageRecord{{DocumentID: "doc", PageNumber: 1}, {DocumentID: "doc", PageNumber: 2}},
		Elements: []ElementRecord{{ID: "e1"}},
	}
	out := doc.Reconcile()
	require.Equal(t, 2, out.Record.PageCount)
	require.Equal(t, 1, out.Record.TotalElements)

	res := out.Validate()
	require.NotContains(t, res.Errors, ErrDocumentInconsistentPageCount)
	require.NotContains(t, res.Errors, ErrDocumentInconsistentElementCount)
}

func TestElementByIDLookup(t *testing.T) {
	doc := Document{Elements: []ElementRecord{{ID: "a"}, {ID: "b"}}}
	e, ok := doc.ElementByID("b")
	require.True(t, ok)
	require.Equal(t, "b", e.ID)

	_, ok = doc.ElementByID("missing")
	require.False(t, ok)
}
