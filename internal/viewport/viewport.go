// Package viewport maps between screen (surface) coordinates and unscaled
// drawing-space coordinates under the current zoom.
package viewport

import (
	"math"

	"plan-takeoff/pkg/geometry"
)

const (
	MinZoom     = 0.5
	MaxZoom     = 3.0
	ZoomStep    = 0.1
	DefaultZoom = 1.0
)

// Viewport holds the zoom level and the screen position of the drawing
// surface's top-left corner. Stored measurement points never depend on it.
type Viewport struct {
	zoom   float64
	origin geometry.Point2D

	onChange func(zoom float64)
}

// New creates a viewport at the default zoom with the surface at the origin.
func New() *Viewport {
	return &Viewport{zoom: DefaultZoom}
}

// Zoom returns the current zoom level.
func (v *Viewport) Zoom() float64 {
	return v.zoom
}

// SetZoom sets the zoom level, clamped to [MinZoom, MaxZoom]. The value is
// rounded to the step grid so repeated stepping does not drift.
func (v *Viewport) SetZoom(zoom float64) {
	if math.IsNaN(zoom) {
		return
	}
	zoom = math.Round(zoom/ZoomStep) * ZoomStep
	zoom = math.Round(zoom*1e6) / 1e6
	if zoom < MinZoom {
		zoom = MinZoom
	}
	if zoom > MaxZoom {
		zoom = MaxZoom
	}
	if zoom == v.zoom {
		return
	}
	v.zoom = zoom
	if v.onChange != nil {
		v.onChange(zoom)
	}
}

// ZoomIn increases the zoom level by one step.
func (v *Viewport) ZoomIn() {
	v.SetZoom(v.zoom + ZoomStep)
}

// ZoomOut decreases the zoom level by one step.
func (v *Viewport) ZoomOut() {
	v.SetZoom(v.zoom - ZoomStep)
}

// Reset returns to the default zoom. Called when the active drawing changes.
func (v *Viewport) Reset() {
	v.SetZoom(DefaultZoom)
}

// SetOrigin sets the screen position of the surface's top-left corner.
func (v *Viewport) SetOrigin(p geometry.Point2D) {
	v.origin = p
}

// OnChange sets a callback invoked after the zoom level changes.
func (v *Viewport) OnChange(callback func(zoom float64)) {
	v.onChange = callback
}

// Transform returns the current mapping as a value that can be handed to
// the renderer.
func (v *Viewport) Transform() Transform {
	return Transform{Zoom: v.zoom, Origin: v.origin}
}

// ScreenToDrawing converts a screen position to drawing space.
func (v *Viewport) ScreenToDrawing(p geometry.Point2D) geometry.Point2D {
	return v.Transform().ScreenToDrawing(p)
}

// Transform is a snapshot of a viewport's mapping. Surface coordinates are
// pixels from the top-left corner of the zoomed sheet; screen coordinates
// add the surface origin.
type Transform struct {
	Zoom   float64
	Origin geometry.Point2D
}

// scale is Zoom, with the zero value meaning 1.
func (t Transform) scale() float64 {
	if t.Zoom <= 0 {
		return DefaultZoom
	}
	return t.Zoom
}

// ScreenToDrawing subtracts the surface origin and divides by the zoom.
func (t Transform) ScreenToDrawing(p geometry.Point2D) geometry.Point2D {
	return p.Sub(t.Origin).Scale(1 / t.scale())
}

// DrawingToScreen is the inverse of ScreenToDrawing.
func (t Transform) DrawingToScreen(p geometry.Point2D) geometry.Point2D {
	return t.DrawingToSurface(p).Add(t.Origin)
}

// DrawingToSurface converts a drawing-space point to surface pixels, which
// is what the renderer draws in.
func (t Transform) DrawingToSurface(p geometry.Point2D) geometry.Point2D {
	return p.Scale(t.scale())
}

// DrawingToSurfaceAll converts a point list.
func (t Transform) DrawingToSurfaceAll(pts []geometry.Point2D) []geometry.Point2D {
	out := make([]geometry.Point2D, len(pts))
	for i, p := range pts {
		out[i] = t.DrawingToSurface(p)
	}
	return out
}

// SurfaceSize returns the zoomed size of a drawing of the given natural size.
func (t Transform) SurfaceSize(width, height int) (int, int) {
	z := t.scale()
	return int(math.Round(float64(width) * z)), int(math.Round(float64(height) * z))
}

// Scaled returns t with the zoom multiplied by f. The canvas uses it to
// draw at the device pixel ratio. It is not clamped.
func (t Transform) Scaled(f float64) Transform {
	t.Zoom = t.scale() * f
	return t
}
