package ops

import "github.com/docengine/core/internal/schema"

// unionBoundingBox returns the per-axis min/max union of every present box
// in boxes. It returns the zero BoundingBox when none are present.
func unionBoundingBox(boxes []schema.BoundingBox) schema.BoundingBox {
	var out schema.BoundingBox
	first := true
	for _, b := range boxes {
		if !b.Present() {
			continue
		}
		if first {
			out = b
			first = false
			continue
		}
		out = schema.NewBoundingBox(
			min(out.X1, b.X1),
			min(out.Y1, b.Y1),
			max(out.X2, b.X2),
			max(out.Y2, b.Y2),
		)
	}
	return out
}

// boxesIntersect reports whether a and b share any positive-area overlap.
func boxesIntersect(a, b schema.BoundingBox) bool {
	if !a.Present() || !b.Present() {
		return false
	}
	return a.X1 < b.X2 && b.X1 < a.X2 && a.Y1 < b.Y2 && b.Y1 < a.Y2
}

// boxContains reports whether a fully contains b.
func boxContains(a, b schema.BoundingBox) bool {
	if !a.Present() || !b.Present() {
		return false
	}
	return a.X1 <= b.X1 && a.Y1 <= b.Y1 && a.X2 >= b.X2 && a.Y2 >= b.Y2
}

// boxesAdjacent reports whether a and b share a touching edge (their
// projections overlap on one axis and abut on the other).
func boxesAdjacent(a, b schema.BoundingBox) bool {
	if !a.Present() || !b.Present() {
		return false
	}
	horizontallyTouching := a.X2 == b.X1 || b.X2 == a.X1
	verticallyOverlapping := a.Y1 < b.Y2 && b.Y1 < a.Y2
	if horizontallyTouching && verticallyOverlapping {
		return true
	}
	verticallyTouching := a.Y2 == b.Y1 || b.Y2 == a.Y1
	horizontallyOverlapping := a.X1 < b.X2 && b.X1 < a.X2
	return verticallyTouching && horizontallyOverlapping
}

// hasSpatialRelationship reports whether any pair among boxes intersects,
// contains, or is adjacent to another.
func hasSpatialRelationship(boxes []schema.BoundingBox) bool {
	for i := 0; i < len(boxes); i++ {
		for j := i + 1; j < len(boxes); j++ {
			a, b := boxes[i], boxes[j]
			if boxesIntersect(a, b) || boxContains(a, b) || boxContains(b, a) || boxesAdjacent(a, b) {
				return true
			}
		}
	}
	return false
}

// partitionBoxHorizontally splits box into n equal-width slices along the
// x-axis. Text segments can wrap across lines, so this is an approximation:
// it does not attempt to follow actual line breaks within the box.
func partitionBoxHorizontally(box schema.BoundingBox, n int) []schema.BoundingBox {
	if !box.Present() || n <= 0 {
		out := make([]schema.BoundingBox, n)
		return out
	}
	width := (box.X2 - box.X1) / float64(n)
	out := make([]schema.BoundingBox, n)
	for i := 0; i < n; i++ {
		x1 := box.X1 + width*float64(i)
		x2 := box.X1 + width*float64(i+1)
		out[i] = schema.NewBoundingBox(x1, box.Y1, x2, box.Y2)
	}
	return out
}
