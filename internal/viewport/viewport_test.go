package viewport

import (
	"math"
	"testing"

	"plan-takeoff/pkg/geometry"
)

func TestZoomClamped(t *testing.T) {
	v := New()
	for i := 0; i < 50; i++ {
		v.ZoomIn()
	}
	if v.Zoom() != MaxZoom {
		t.Errorf("expected zoom exactly %v, got %v", MaxZoom, v.Zoom())
	}
	for i := 0; i < 50; i++ {
		v.ZoomOut()
	}
	if v.Zoom() != MinZoom {
		t.Errorf("expected zoom exactly %v, got %v", MinZoom, v.Zoom())
	}

	v.SetZoom(100)
	if v.Zoom() != MaxZoom {
		t.Errorf("SetZoom(100) = %v", v.Zoom())
	}
	v.SetZoom(-3)
	if v.Zoom() != MinZoom {
		t.Errorf("SetZoom(-3) = %v", v.Zoom())
	}
}

func TestZoomStepsDoNotDrift(t *testing.T) {
	v := New()
	for i := 0; i < 7; i++ {
		v.ZoomIn()
	}
	if v.Zoom() != 1.7 {
		t.Errorf("expected 1.7 after 7 steps, got %v", v.Zoom())
	}
	for i := 0; i < 7; i++ {
		v.ZoomOut()
	}
	if v.Zoom() != DefaultZoom {
		t.Errorf("expected back to 1.0, got %v", v.Zoom())
	}
}

func TestReset(t *testing.T) {
	v := New()
	var calls int
	v.OnChange(func(float64) { calls++ })
	v.SetZoom(2.5)
	v.Reset()
	if v.Zoom() != DefaultZoom {
		t.Errorf("Reset left zoom at %v", v.Zoom())
	}
	if calls != 2 {
		t.Errorf("expected 2 change callbacks, got %d", calls)
	}
	v.Reset()
	if calls != 2 {
		t.Error("Reset at default zoom should not fire a change")
	}
}

func TestScreenToDrawing(t *testing.T) {
	v := New()
	v.SetOrigin(geometry.Point2D{X: 100, Y: 50})
	v.SetZoom(2)

	got := v.ScreenToDrawing(geometry.Point2D{X: 160, Y: 90})
	want := geometry.Point2D{X: 30, Y: 20}
	if !got.Equal(want, 1e-9) {
		t.Errorf("ScreenToDrawing = %v, want %v", got, want)
	}

	back := v.Transform().DrawingToScreen(got)
	if !back.Equal(geometry.Point2D{X: 160, Y: 90}, 1e-9) {
		t.Errorf("round trip = %v", back)
	}
}

func TestSamePointAcrossZoomLevels(t *testing.T) {
	v := New()
	target := geometry.Point2D{X: 40, Y: 25}
	for _, z := range []float64{0.5, 1, 1.5, 3} {
		v.SetZoom(z)
		screen := v.Transform().DrawingToScreen(target)
		if got := v.ScreenToDrawing(screen); !got.Equal(target, 1e-9) {
			t.Errorf("zoom %v: got %v, want %v", z, got, target)
		}
	}
}

func TestSurfaceSize(t *testing.T) {
	v := New()
	v.SetZoom(1.5)
	w, h := v.Transform().SurfaceSize(200, 101)
	if w != 300 || h != int(math.Round(151.5)) {
		t.Errorf("SurfaceSize = %d x %d", w, h)
	}
}

func TestTransformSnapshot(t *testing.T) {
	v := New()
	v.SetOrigin(geometry.Point2D{X: 10, Y: 10})
	v.SetZoom(2)
	tr := v.Transform()
	v.SetZoom(1)
	if tr.Zoom != 2 || tr.Origin != (geometry.Point2D{X: 10, Y: 10}) {
		t.Errorf("snapshot changed with the viewport: %+v", tr)
	}

	p := geometry.Point2D{X: 3, Y: 4}
	if got := tr.DrawingToSurface(p); got != (geometry.Point2D{X: 6, Y: 8}) {
		t.Errorf("DrawingToSurface = %v", got)
	}
	if got := tr.DrawingToScreen(p); got != (geometry.Point2D{X: 16, Y: 18}) {
		t.Errorf("DrawingToScreen = %v", got)
	}

	hi := tr.Scaled(2)
	if hi.Zoom != 4 || hi.Origin != tr.Origin {
		t.Errorf("Scaled = %+v", hi)
	}
	if w, h := (Transform{}).SurfaceSize(20, 10); w != 20 || h != 10 {
		t.Errorf("zero transform should be 1:1, got %d x %d", w, h)
	}
}
