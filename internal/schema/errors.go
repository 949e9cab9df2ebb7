package schema

import "errors"

// Sentinel validation errors, following the one-error-per-rule convention
// used throughout the corpus's validators.
var (
	ErrDocumentInconsistentPageCount    = errors.New("schema: document.page_count does not match len(page_records)")
	ErrDocumentInconsistentElementCount = errors.New("schema: document.total_elements does not match len(element_records)")

	errDocumentZeroPageCount     = errors.New("schema: document.page_count is 0")
	errDocumentModBeforeCreation = errors.New("schema: document.modification_date precedes creation_date")

	errPageInvalidAspectRatio    = errors.New("schema: page aspect ratio outside [0.1, 10]")
	errPageTypedCountsExceedTotal = errors.New("schema: page typed element counts exceed element_count")
	errPageAvgCharsPerWordOutOfRange = errors.New("schema: page average characters per word outside [1, 50]")

	ErrPageInvalidNumber       = errors.New("schema: page_number must be >= 1")
	ErrPageMissingDocumentID   = errors.New("schema: page record is missing its document id")
	ErrPageInvalidDimensions   = errors.New("schema: page width and height must be > 0 when present")
	ErrPageInvalidRotation     = errors.New("schema: rotation must be in [0, 360)")

	ErrElementInvalidBoundingBox   = errors.New("schema: bounding box must satisfy x1 < x2 and y1 < y2")
	ErrElementInvalidHeadingLevel  = errors.New("schema: heading_level must be in [1, 6]")
	ErrElementInvalidListItemLevel = errors.New("schema: list_item_level must be >= 0")

	ErrRelationshipInvalidStrength  = errors.New("schema: relationship strength must be in [0, 1]")
	ErrRelationshipMissingEndpoint  = errors.New("schema: relationship must carry both source and target element ids")
)
