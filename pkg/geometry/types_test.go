package geometry

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b Point2D
		want float64
	}{
		{Point2D{0, 0}, Point2D{3, 4}, 5},
		{Point2D{1, 1}, Point2D{1, 1}, 0},
		{Point2D{-2, 0}, Point2D{2, 0}, 4},
	}
	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); math.Abs(got-tt.want) > eps {
			t.Errorf("Distance(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := Distance(tt.b, tt.a); math.Abs(got-tt.want) > eps {
			t.Errorf("Distance is not symmetric for %v, %v", tt.a, tt.b)
		}
	}
}

func TestMidpoint(t *testing.T) {
	m := Midpoint(Point2D{0, 0}, Point2D{10, 4})
	if m != (Point2D{5, 2}) {
		t.Errorf("Midpoint failed: got %v", m)
	}
}

func TestBoundingBox(t *testing.T) {
	r := BoundingBox([]Point2D{{3, 1}, {-1, 4}, {2, -2}})
	want := Rect{X: -1, Y: -2, Width: 4, Height: 6}
	if r != want {
		t.Errorf("BoundingBox failed: expected %v, got %v", want, r)
	}
	if !r.Contains(Point2D{0, 0}) {
		t.Error("expected origin inside bounding box")
	}
}

func TestSegmentDistance(t *testing.T) {
	a, b := Point2D{0, 0}, Point2D{10, 0}
	if d := SegmentDistance(Point2D{5, 3}, a, b); math.Abs(d-3) > eps {
		t.Errorf("expected 3, got %v", d)
	}
	if d := SegmentDistance(Point2D{13, 4}, a, b); math.Abs(d-5) > eps {
		t.Errorf("expected 5 past the end, got %v", d)
	}
	if d := SegmentDistance(Point2D{3, 4}, a, a); math.Abs(d-5) > eps {
		t.Errorf("expected 5 for zero-length segment, got %v", d)
	}
}
