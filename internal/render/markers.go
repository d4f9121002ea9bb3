package render

import (
	"image/color"
	"image/draw"
	"math"

	"plan-takeoff/internal/measure"
	"plan-takeoff/pkg/colorutil"
	"plan-takeoff/pkg/geometry"
)

// MarkerPath returns the outline of a count marker centered at c with the
// given radius, in surface coordinates.
func MarkerPath(shape measure.Shape, c geometry.Point2D, r float64) []geometry.Point2D {
	switch shape {
	case measure.ShapeSquare:
		return []geometry.Point2D{
			{X: c.X - r, Y: c.Y - r}, {X: c.X + r, Y: c.Y - r},
			{X: c.X + r, Y: c.Y + r}, {X: c.X - r, Y: c.Y + r},
		}
	case measure.ShapeDiamond:
		return []geometry.Point2D{
			{X: c.X, Y: c.Y - r}, {X: c.X + r, Y: c.Y},
			{X: c.X, Y: c.Y + r}, {X: c.X - r, Y: c.Y},
		}
	case measure.ShapeTriangle:
		// Equilateral, pointing up, centroid at c.
		h := r * 1.5
		half := h / math.Sqrt(3)
		return []geometry.Point2D{
			{X: c.X, Y: c.Y - r},
			{X: c.X + half, Y: c.Y - r + h},
			{X: c.X - half, Y: c.Y - r + h},
		}
	default:
		return geometry.CirclePoints(c, r, 24)
	}
}

// drawMarker fills a count marker with its style color and outlines it.
func drawMarker(dst draw.Image, style measure.Style, c geometry.Point2D, r float64) {
	var fill color.Color = colorutil.Red
	if c, err := colorutil.ParseHex(style.Color); err == nil {
		fill = c
	}
	path := MarkerPath(style.Shape, c, r)
	FillPolygon(dst, path, fill)
	StrokePolygon(dst, path, 1.5, color.White)
}
