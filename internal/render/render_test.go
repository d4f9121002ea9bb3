package render

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"plan-takeoff/internal/capture"
	"plan-takeoff/internal/measure"
	"plan-takeoff/internal/viewport"
	"plan-takeoff/pkg/geometry"
)

func mustMeasure(t *testing.T, mode measure.Mode, pts ...geometry.Point2D) *measure.Measurement {
	t.Helper()
	g, err := measure.NewGeometry(mode, pts)
	if err != nil {
		t.Fatal(err)
	}
	m, err := measure.New(g, mode.Title()+" 1", 1, measure.DefaultStyle())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func isWhite(c color.RGBA) bool {
	return c.R == 255 && c.G == 255 && c.B == 255
}

func square(side float64) []geometry.Point2D {
	return []geometry.Point2D{{X: 0, Y: 0}, {X: side, Y: 0}, {X: side, Y: side}, {X: 0, Y: side}}
}

func TestRenderEmptySceneIsPaper(t *testing.T) {
	out := New().RenderImage(Scene{}, 20, 20)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if c := out.RGBAAt(x, y); !isWhite(c) {
				t.Fatalf("pixel (%d,%d) = %v, want white", x, y, c)
			}
		}
	}
}

func TestRenderAreaFillAndStroke(t *testing.T) {
	area := mustMeasure(t, measure.ModeArea, square(90)...)
	out := New().RenderImage(Scene{Measurements: []*measure.Measurement{area}}, 200, 200)

	if c := out.RGBAAt(10, 10); isWhite(c) || c.G <= c.R {
		t.Errorf("inside pixel should be green tinted, got %v", c)
	}
	if c := out.RGBAAt(45, 0); c.G < 100 || c.R > 100 {
		t.Errorf("edge pixel should be stroked, got %v", c)
	}
	if c := out.RGBAAt(150, 20); !isWhite(c) {
		t.Errorf("outside pixel should be white, got %v", c)
	}
}

func TestRenderZoomScalesOverlay(t *testing.T) {
	area := mustMeasure(t, measure.ModeArea, square(90)...)
	out := New().RenderImage(Scene{Measurements: []*measure.Measurement{area}, View: viewport.Transform{Zoom: 2}}, 200, 200)
	if c := out.RGBAAt(150, 20); isWhite(c) {
		t.Errorf("pixel inside zoomed polygon should be tinted, got %v", c)
	}
}

func TestRenderIgnoresSurfaceOrigin(t *testing.T) {
	area := mustMeasure(t, measure.ModeArea, square(90)...)
	view := viewport.Transform{Zoom: 1, Origin: geometry.Point2D{X: 300, Y: 120}}
	out := New().RenderImage(Scene{Measurements: []*measure.Measurement{area}, View: view}, 200, 200)
	if c := out.RGBAAt(15, 80); isWhite(c) {
		t.Errorf("overlay should be drawn in surface pixels, got %v at (15,80)", c)
	}
}

func TestRenderCountMarker(t *testing.T) {
	m := mustMeasure(t, measure.ModeCount, geometry.Point2D{X: 20, Y: 20})
	m.Label = ""
	m.SetStyle(measure.Style{Color: "#2563eb", Shape: measure.ShapeSquare})
	out := New().RenderImage(Scene{Measurements: []*measure.Measurement{m}}, 60, 60)

	c := out.RGBAAt(20, 20)
	if c.B < 200 || c.R > 80 {
		t.Errorf("marker center should be blue, got %v", c)
	}
}

func TestRenderDraftDrawnOverMeasurements(t *testing.T) {
	area := mustMeasure(t, measure.ModeArea, square(90)...)
	draft := &capture.Draft{
		Mode:       measure.ModeLength,
		Points:     []geometry.Point2D{{X: 40, Y: 40}},
		Preview:    geometry.Point2D{X: 80, Y: 40},
		HasPreview: true,
	}
	out := New().RenderImage(Scene{Measurements: []*measure.Measurement{area}, Draft: draft}, 120, 120)

	// Vertex dot sits on top of the area fill.
	c := out.RGBAAt(40, 40)
	if c.R < 200 || c.B > 80 {
		t.Errorf("draft vertex should be orange, got %v", c)
	}
}

func TestRenderBackgroundScaled(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 10, 10))
	draw.Draw(bg, bg.Bounds(), image.NewUniform(color.RGBA{R: 200, A: 255}), image.Point{}, draw.Src)

	out := New().RenderImage(Scene{Background: bg, View: viewport.Transform{Zoom: 2}}, 40, 40)
	if c := out.RGBAAt(15, 15); c.R < 190 || c.G > 10 {
		t.Errorf("zoomed background pixel = %v", c)
	}
	if c := out.RGBAAt(30, 30); !isWhite(c) {
		t.Errorf("outside background should be paper, got %v", c)
	}
}

func TestMarkerPathShapes(t *testing.T) {
	c := geometry.Point2D{X: 10, Y: 10}
	tests := []struct {
		shape measure.Shape
		n     int
	}{
		{measure.ShapeCircle, 24},
		{measure.ShapeSquare, 4},
		{measure.ShapeDiamond, 4},
		{measure.ShapeTriangle, 3},
	}
	for _, tt := range tests {
		path := MarkerPath(tt.shape, c, 5)
		if len(path) != tt.n {
			t.Errorf("%s: %d points, want %d", tt.shape, len(path), tt.n)
		}
		if !geometry.PointInPolygon(c, path) {
			t.Errorf("%s: center not inside marker", tt.shape)
		}
	}
}

func TestStrokeLineClipsToSurface(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	// Must not panic when the segment leaves the surface.
	StrokeLine(dst, geometry.Point2D{X: -50, Y: 5}, geometry.Point2D{X: 50, Y: 5}, 2, color.Black)
	if c := dst.RGBAAt(5, 5); c.A == 0 {
		t.Error("expected stroked pixel inside surface")
	}
	StrokeLine(dst, geometry.Point2D{X: 100, Y: 100}, geometry.Point2D{X: 200, Y: 200}, 2, color.Black)
}
