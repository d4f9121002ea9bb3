// Package render draws a drawing's measurement overlay: persisted
// measurements first, then the in-progress draft.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"plan-takeoff/internal/capture"
	"plan-takeoff/internal/measure"
	"plan-takeoff/internal/viewport"
	"plan-takeoff/pkg/colorutil"
	"plan-takeoff/pkg/geometry"
)

// Scene is everything needed for one full redraw.
type Scene struct {
	// Background is the drawing bitmap at natural size. Nil draws paper only.
	Background   image.Image
	Measurements []*measure.Measurement
	Draft        *capture.Draft
	// View maps drawing space to surface pixels. The zero value draws 1:1.
	View viewport.Transform
	// Selected highlights the measurement with this id.
	Selected string
}

// Renderer holds overlay styling. The zero value is not usable; use New.
type Renderer struct {
	LineWidth    float64
	MarkerRadius float64
	DashLength   float64
	Paper        color.Color
}

// New creates a renderer with the default overlay style.
func New() *Renderer {
	return &Renderer{
		LineWidth:    2.5,
		MarkerRadius: 7,
		DashLength:   6,
		Paper:        colorutil.White,
	}
}

// Render clears dst and redraws the whole scene. There is no diffing;
// measurement counts per drawing are small.
func (r *Renderer) Render(dst *image.RGBA, s Scene) {
	view := s.View

	draw.Draw(dst, dst.Bounds(), image.NewUniform(r.Paper), image.Point{}, draw.Src)
	if s.Background != nil {
		r.drawBackground(dst, s.Background, view)
	}

	for _, m := range s.Measurements {
		r.drawMeasurement(dst, m, view, m.ID == s.Selected)
	}
	if s.Draft != nil {
		r.drawDraft(dst, s.Draft, view)
	}
}

// RenderImage allocates a w x h surface and renders s onto it.
func (r *Renderer) RenderImage(s Scene, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	r.Render(dst, s)
	return dst
}

func (r *Renderer) drawBackground(dst *image.RGBA, bg image.Image, view viewport.Transform) {
	b := bg.Bounds()
	w, h := view.SurfaceSize(b.Dx(), b.Dy())
	target := image.Rect(0, 0, w, h)
	if w == b.Dx() && h == b.Dy() {
		xdraw.Draw(dst, target, bg, b.Min, xdraw.Over)
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, target, bg, b, xdraw.Over, nil)
}

func (r *Renderer) drawMeasurement(dst *image.RGBA, m *measure.Measurement, view viewport.Transform, selected bool) {
	width := r.LineWidth
	if selected {
		width *= 1.8
	}

	switch g := m.Geometry.(type) {
	case measure.Length:
		a, b := view.DrawingToSurface(g.From), view.DrawingToSurface(g.To)
		stroke := colorutil.LengthStroke
		if selected {
			stroke = colorutil.Orange
		}
		StrokeLine(dst, a, b, width, stroke)
		r.endTicks(dst, a, b, stroke)
		Label(dst, quantityLabel(m), geometry.Midpoint(a, b), colorutil.LabelText, colorutil.LabelBack)

	case measure.Diameter:
		a, b := view.DrawingToSurface(g.From), view.DrawingToSurface(g.To)
		stroke := colorutil.DiameterLine
		if selected {
			stroke = colorutil.Orange
		}
		center := geometry.Midpoint(a, b)
		ring := geometry.CirclePoints(center, a.Distance(b)/2, 48)
		StrokePolygon(dst, ring, 1, colorutil.WithAlpha(stroke, 160))
		StrokeLine(dst, a, b, width, stroke)
		Label(dst, quantityLabel(m), center, colorutil.LabelText, colorutil.LabelBack)

	case measure.Area:
		pts := view.DrawingToSurfaceAll(g.Vertices)
		stroke := colorutil.AreaStroke
		if selected {
			stroke = colorutil.Orange
		}
		FillPolygon(dst, pts, colorutil.AreaFill)
		StrokePolygon(dst, pts, width, stroke)
		Label(dst, quantityLabel(m), geometry.PolygonCentroid(pts), colorutil.LabelText, colorutil.LabelBack)

	case measure.Count:
		c := view.DrawingToSurface(g.At)
		rad := r.MarkerRadius
		if selected {
			rad *= 1.4
		}
		drawMarker(dst, m.Style, c, rad)
		if m.Label != "" {
			at := geometry.Point2D{X: c.X + rad + 4 + float64(LabelWidth(m.Label))/2, Y: c.Y}
			Label(dst, m.Label, at, colorutil.LabelText, colorutil.LabelBack)
		}
	}
}

// endTicks draws short perpendicular ticks at both ends of a run.
func (r *Renderer) endTicks(dst *image.RGBA, a, b geometry.Point2D, c color.Color) {
	l := a.Distance(b)
	if l == 0 {
		return
	}
	n := geometry.Point2D{X: -(b.Y - a.Y) / l * 5, Y: (b.X - a.X) / l * 5}
	StrokeLine(dst, a.Sub(n), a.Add(n), 1.5, c)
	StrokeLine(dst, b.Sub(n), b.Add(n), 1.5, c)
}

func (r *Renderer) drawDraft(dst *image.RGBA, d *capture.Draft, view viewport.Transform) {
	pts := view.DrawingToSurfaceAll(d.Points)
	gap := r.DashLength * 0.75

	for i := 0; i+1 < len(pts); i++ {
		DashedLine(dst, pts[i], pts[i+1], 2, r.DashLength, gap, colorutil.DraftStroke)
	}
	if d.HasPreview && len(pts) > 0 {
		preview := view.DrawingToSurface(d.Preview)
		DashedLine(dst, pts[len(pts)-1], preview, 2, r.DashLength, gap, colorutil.DraftStroke)
		if d.Mode == measure.ModeArea && len(pts) >= 2 {
			// Closing edge back to the first vertex.
			DashedLine(dst, preview, pts[0], 1, r.DashLength/2, gap, colorutil.WithAlpha(colorutil.DraftStroke, 140))
		}
	}
	for _, p := range pts {
		FillPolygon(dst, geometry.CirclePoints(p, 3.5, 12), colorutil.DraftStroke)
	}
	if d.Mode == measure.ModeCount && d.HasPreview {
		ghost := measure.DefaultStyle()
		c := view.DrawingToSurface(d.Preview)
		StrokePolygon(dst, MarkerPath(ghost.Shape, c, r.MarkerRadius), 1.5, colorutil.DraftStroke)
	}
}

func quantityLabel(m *measure.Measurement) string {
	return fmt.Sprintf("%s: %.2f %s", m.Label, m.Quantity, m.Units)
}
