package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"plan-takeoff/pkg/geometry"
)

// fillPath rasterizes the closed path pts onto dst with nonzero winding.
// The rasterizer is sized to the path's clipped bounding box so large
// drawing surfaces do not pay for small shapes.
func fillPath(dst draw.Image, pts []geometry.Point2D, c color.Color) {
	if len(pts) < 3 {
		return
	}
	bb := geometry.BoundingBox(pts)
	r := image.Rect(
		int(math.Floor(bb.X))-1, int(math.Floor(bb.Y))-1,
		int(math.Ceil(bb.X+bb.Width))+1, int(math.Ceil(bb.Y+bb.Height))+1,
	).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}

	z := vector.NewRasterizer(r.Dx(), r.Dy())
	z.DrawOp = draw.Over
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	z.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	z.ClosePath()
	z.Draw(dst, r, image.NewUniform(c), image.Point{})
}

// FillPolygon fills a polygon given in surface coordinates.
func FillPolygon(dst draw.Image, pts []geometry.Point2D, c color.Color) {
	fillPath(dst, pts, c)
}

// StrokeLine draws an anti-aliased segment of the given width.
func StrokeLine(dst draw.Image, a, b geometry.Point2D, width float64, c color.Color) {
	d := b.Sub(a)
	l := math.Hypot(d.X, d.Y)
	if l == 0 {
		return
	}
	h := width / 2
	// Unit normal scaled to half width, plus a half-width cap along the line.
	n := geometry.Point2D{X: -d.Y / l * h, Y: d.X / l * h}
	t := geometry.Point2D{X: d.X / l * h, Y: d.Y / l * h}
	a0, b0 := a.Sub(t), b.Add(t)
	fillPath(dst, []geometry.Point2D{a0.Add(n), b0.Add(n), b0.Sub(n), a0.Sub(n)}, c)
}

// StrokePolygon outlines a closed polygon.
func StrokePolygon(dst draw.Image, pts []geometry.Point2D, width float64, c color.Color) {
	n := len(pts)
	for i := 0; i < n; i++ {
		StrokeLine(dst, pts[i], pts[(i+1)%n], width, c)
	}
}

// StrokePath outlines an open polyline.
func StrokePath(dst draw.Image, pts []geometry.Point2D, width float64, c color.Color) {
	for i := 0; i+1 < len(pts); i++ {
		StrokeLine(dst, pts[i], pts[i+1], width, c)
	}
}

// DashedLine draws a segment as alternating dashes of length dash and gaps
// of length gap. The pattern restarts at a.
func DashedLine(dst draw.Image, a, b geometry.Point2D, width, dash, gap float64, c color.Color) {
	l := a.Distance(b)
	if l == 0 || dash <= 0 {
		return
	}
	dir := b.Sub(a).Scale(1 / l)
	for s := 0.0; s < l; s += dash + gap {
		e := math.Min(s+dash, l)
		StrokeLine(dst, a.Add(dir.Scale(s)), a.Add(dir.Scale(e)), width, c)
	}
}

// labelFace is the bitmap face used for overlay labels.
var labelFace font.Face = basicfont.Face7x13

// Label draws text centered on at, over a translucent box so it stays
// readable on busy plan linework.
func Label(dst draw.Image, text string, at geometry.Point2D, fg, bg color.Color) {
	if text == "" {
		return
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(fg), Face: labelFace}
	w := d.MeasureString(text).Ceil()
	m := labelFace.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	h := ascent + descent

	x := int(math.Round(at.X)) - w/2
	y := int(math.Round(at.Y)) - h/2

	box := image.Rect(x-3, y-2, x+w+3, y+h+2).Intersect(dst.Bounds())
	if !box.Empty() {
		draw.Draw(dst, box, image.NewUniform(bg), image.Point{}, draw.Over)
	}
	d.Dot = fixed.P(x, y+ascent)
	d.DrawString(text)
}

// LabelWidth returns the pixel width of text in the label face.
func LabelWidth(text string) int {
	return font.MeasureString(labelFace, text).Ceil()
}
