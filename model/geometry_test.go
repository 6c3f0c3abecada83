package model

import (
	"math"
	"testing"
)

const eps = 1e-9

// ============================================================================
// BBox invariants and conversions
// ============================================================================

func TestBBoxValid(t *testing.T) {
	tests := []struct {
		name string
		bb   BBox
		want bool
	}{
		{"top-left ok", NewTopLeftBBox(0, 0, 100, 20), true},
		{"top-left inverted x", BBox{L: 100, T: 0, R: 0, B: 20, Origin: CoordTopLeft}, false},
		{"top-left inverted y", BBox{L: 0, T: 20, R: 100, B: 0, Origin: CoordTopLeft}, false},
		{"top-left zero width", BBox{L: 5, T: 0, R: 5, B: 20, Origin: CoordTopLeft}, false},
		{"bottom-left ok", BBox{L: 0, T: 20, R: 100, B: 0, Origin: CoordBottomLeft}, true},
		{"bottom-left inverted y", BBox{L: 0, T: 0, R: 100, B: 20, Origin: CoordBottomLeft}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bb.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBBoxOriginConversionRoundTrip(t *testing.T) {
	const pageHeight = 842.0
	orig := NewTopLeftBBox(10, 20, 110, 70)

	bl := orig.ToBottomLeft(pageHeight)
	if bl.Origin != CoordBottomLeft {
		t.Fatalf("Origin = %v, want %v", bl.Origin, CoordBottomLeft)
	}
	if !bl.Valid() {
		t.Fatalf("converted box invalid: %+v", bl)
	}
	if math.Abs(bl.T-(pageHeight-20)) > eps || math.Abs(bl.B-(pageHeight-70)) > eps {
		t.Errorf("ToBottomLeft() = %+v", bl)
	}

	back := bl.ToTopLeft(pageHeight)
	if back != orig {
		t.Errorf("round trip = %+v, want %+v", back, orig)
	}

	// Converting to the origin a box is already in must be a no-op.
	if again := bl.ToBottomLeft(pageHeight); again != bl {
		t.Errorf("double conversion = %+v, want %+v", again, bl)
	}
}

func TestBBoxContains(t *testing.T) {
	bb := NewTopLeftBBox(10, 10, 20, 20)

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"center", Point{15, 15}, true},
		{"left edge inclusive", Point{10, 15}, true},
		{"corner inclusive", Point{20, 20}, true},
		{"outside left", Point{9.99, 15}, false},
		{"outside below", Point{15, 20.01}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bb.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestBBoxScaleToSize(t *testing.T) {
	bb := NewTopLeftBBox(100, 200, 300, 400)
	from := Size{Width: 1000, Height: 2000}
	to := Size{Width: 500, Height: 1000}

	got, err := bb.ScaleToSize(from, to)
	if err != nil {
		t.Fatalf("ScaleToSize() error: %v", err)
	}
	want := NewTopLeftBBox(50, 100, 150, 200)
	if got != want {
		t.Errorf("ScaleToSize() = %+v, want %+v", got, want)
	}

	if _, err := bb.ScaleToSize(Size{}, to); err == nil {
		t.Error("ScaleToSize() from zero size: expected error")
	}
}

// ============================================================================
// IoU properties
// ============================================================================

func TestIoUIdentity(t *testing.T) {
	bb := NewTopLeftBBox(5, 5, 55, 105)
	if got := bb.IoU(bb); math.Abs(got-1.0) > eps {
		t.Errorf("IoU(A,A) = %v, want 1.0", got)
	}
}

func TestIoUDisjoint(t *testing.T) {
	a := NewTopLeftBBox(0, 0, 10, 10)
	b := NewTopLeftBBox(20, 20, 30, 30)
	if got := a.IoU(b); got != 0 {
		t.Errorf("IoU(disjoint) = %v, want 0", got)
	}
	// Touching edges share no area.
	c := NewTopLeftBBox(10, 0, 20, 10)
	if got := a.IoU(c); got != 0 {
		t.Errorf("IoU(touching) = %v, want 0", got)
	}
}

func TestIoUSymmetric(t *testing.T) {
	a := NewTopLeftBBox(0, 0, 10, 10)
	b := NewTopLeftBBox(5, 5, 15, 15)
	if ab, ba := a.IoU(b), b.IoU(a); math.Abs(ab-ba) > eps {
		t.Errorf("IoU not symmetric: %v vs %v", ab, ba)
	}
}

func TestIoUPartialOverlap(t *testing.T) {
	a := NewTopLeftBBox(0, 0, 10, 10)
	b := NewTopLeftBBox(5, 0, 15, 10)
	// intersection 50, union 150
	if got := a.IoU(b); math.Abs(got-1.0/3.0) > eps {
		t.Errorf("IoU = %v, want 1/3", got)
	}
}

func TestIoUDegenerate(t *testing.T) {
	zero := BBox{Origin: CoordTopLeft}
	if got := zero.IoU(zero); got != 0 {
		t.Errorf("IoU(degenerate) = %v, want 0", got)
	}
}
