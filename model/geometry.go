package model

import (
	"fmt"
	"math"
)

// CoordOrigin identifies the corner a rectangle's Y axis grows from.
// Annotation boxes live in pixel space with a top-left origin; the PDF text
// engine works in point space with a bottom-left origin. Every BBox carries
// its origin so conversions are explicit instead of implied by context.
type CoordOrigin string

const (
	CoordTopLeft    CoordOrigin = "top-left"
	CoordBottomLeft CoordOrigin = "bottom-left"
)

// Point represents a 2D point.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size represents a width/height pair, in pixels or points depending on use.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BBox is a rectangle given by its left, top, right and bottom edges,
// tagged with the coordinate origin it is expressed in.
//
// Invariants: L < R always. With a top-left origin T < B (Y grows downward);
// with a bottom-left origin T > B (Y grows upward).
type BBox struct {
	L      float64     `json:"l"`
	T      float64     `json:"t"`
	R      float64     `json:"r"`
	B      float64     `json:"b"`
	Origin CoordOrigin `json:"coord_origin"`
}

// NewTopLeftBBox creates a top-left-origin rectangle.
func NewTopLeftBBox(l, t, r, b float64) BBox {
	return BBox{L: l, T: t, R: r, B: b, Origin: CoordTopLeft}
}

// Width returns the horizontal extent.
func (bb BBox) Width() float64 { return bb.R - bb.L }

// Height returns the vertical extent, positive for any well-formed box.
func (bb BBox) Height() float64 { return math.Abs(bb.B - bb.T) }

// Area returns the area of the rectangle.
func (bb BBox) Area() float64 { return bb.Width() * bb.Height() }

// Valid reports whether the rectangle satisfies the edge-ordering invariant
// for its origin.
func (bb BBox) Valid() bool {
	if bb.L >= bb.R {
		return false
	}
	switch bb.Origin {
	case CoordBottomLeft:
		return bb.T > bb.B
	default:
		return bb.T < bb.B
	}
}

// Contains reports whether p lies inside the rectangle, boundaries included.
// Only meaningful for top-left-origin boxes (annotation pixel space).
func (bb BBox) Contains(p Point) bool {
	return bb.L <= p.X && p.X <= bb.R && bb.T <= p.Y && p.Y <= bb.B
}

// ToTopLeft converts the rectangle to a top-left origin on a page of the
// given height. Converting a box already in top-left form is a no-op.
func (bb BBox) ToTopLeft(pageHeight float64) BBox {
	if bb.Origin != CoordBottomLeft {
		return bb
	}
	return BBox{
		L:      bb.L,
		T:      pageHeight - bb.T,
		R:      bb.R,
		B:      pageHeight - bb.B,
		Origin: CoordTopLeft,
	}
}

// ToBottomLeft converts the rectangle to a bottom-left origin on a page of
// the given height. Converting a box already in bottom-left form is a no-op.
func (bb BBox) ToBottomLeft(pageHeight float64) BBox {
	if bb.Origin == CoordBottomLeft {
		return bb
	}
	return BBox{
		L:      bb.L,
		T:      pageHeight - bb.T,
		R:      bb.R,
		B:      pageHeight - bb.B,
		Origin: CoordBottomLeft,
	}
}

// ScaleToSize maps the rectangle from one page size to another using
// independent x and y scale factors. The origin tag is preserved. Used to
// convert pixel-space annotation boxes to PDF point space.
func (bb BBox) ScaleToSize(from, to Size) (BBox, error) {
	if from.Width <= 0 || from.Height <= 0 {
		return BBox{}, fmt.Errorf("model: cannot scale from degenerate size %vx%v", from.Width, from.Height)
	}
	sx := to.Width / from.Width
	sy := to.Height / from.Height
	return BBox{
		L:      bb.L * sx,
		T:      bb.T * sy,
		R:      bb.R * sx,
		B:      bb.B * sy,
		Origin: bb.Origin,
	}, nil
}

// IntersectionArea returns the area shared by two rectangles. Both must be
// expressed in the same origin; disjoint rectangles yield 0.
func (bb BBox) IntersectionArea(other BBox) float64 {
	l := math.Max(bb.L, other.L)
	r := math.Min(bb.R, other.R)
	if l >= r {
		return 0
	}
	// Normalize the vertical interval so the same arithmetic serves both
	// origins.
	t1, b1 := math.Min(bb.T, bb.B), math.Max(bb.T, bb.B)
	t2, b2 := math.Min(other.T, other.B), math.Max(other.T, other.B)
	t := math.Max(t1, t2)
	b := math.Min(b1, b2)
	if t >= b {
		return 0
	}
	return (r - l) * (b - t)
}

// IoU returns the intersection-over-union of two rectangles in the same
// origin. A zero-area intersection or a degenerate union yields 0; there is
// no division by zero.
func (bb BBox) IoU(other BBox) float64 {
	inter := bb.IntersectionArea(other)
	if inter == 0 {
		return 0
	}
	union := bb.Area() + other.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
