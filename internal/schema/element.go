package schema

// BoundingBox is an axis-aligned box in page coordinates, [x1,y1,x2,y2]
// with x1<x2 and y1<y2 when present.
type BoundingBox struct {
	X1, Y1, X2, Y2 float64
	set            bool
}

// NewBoundingBox constructs a present BoundingBox.
func NewBoundingBox(x1, y1, x2, y2 float64) BoundingBox {
	return BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2, set: true}
}

// Present reports whether the box carries coordinates at all.
func (b BoundingBox) Present() bool { return b.set }

// Numbers returns the box as a fixed [x1,y1,x2,y2] array.
func (b BoundingBox) Numbers() [4]float64 { return [4]float64{b.X1, b.Y1, b.X2, b.Y2} }

// ElementRecord is a single extracted content element.
type ElementRecord struct {
	ID         string
	Type       string
	PageNumber int

	BoundingBox  BoundingBox
	ReadingOrder int

	Text       string
	Formatting map[string]string

	HeadingLevel  *int
	ListItemLevel *int

	ParentID         string
	DetectionMethod  string
	CoordinateSystem string

	Confidence float64
}

// Level bands the record's overall confidence.
func (e ElementRecord) Level() Level { return DeriveLevel(e.Confidence) }

// Validate checks the element-level invariants.
func (e ElementRecord) Validate() ValidationResult {
	var res ValidationResult

	if e.BoundingBox.Present() {
		nums := e.BoundingBox.Numbers()
		if nums[0] >= nums[2] || nums[1] >= nums[3] {
			res.AddError(ErrElementInvalidBoundingBox)
		}
	}

	if e.HeadingLevel != nil && (*e.HeadingLevel < 1 || *e.HeadingLevel > 6) {
		res.AddError(ErrElementInvalidHeadingLevel)
	}
	if e.ListItemLevel != nil && *e.ListItemLevel < 0 {
		res.AddError(ErrElementInvalidListItemLevel)
	}

	return res
}
