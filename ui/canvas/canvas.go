// Package canvas provides the takeoff drawing surface: the active sheet with
// its measurement overlay, driven by pointer input.
package canvas

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"plan-takeoff/internal/measure"
	"plan-takeoff/internal/render"
	"plan-takeoff/pkg/geometry"
)

// emptySize is shown when no drawing is loaded.
var emptySize = fyne.NewSize(400, 300)

// Workspace is what the canvas drives. Pointer positions are window
// coordinates; the surface origin is reported before each of them.
type Workspace interface {
	Scene() render.Scene
	Mode() measure.Mode
	SetSurfaceOrigin(origin geometry.Point2D)
	PointerDown(screen geometry.Point2D)
	PointerMove(screen geometry.Point2D)
	Finish()
	SecondaryPress(screen geometry.Point2D)
	ZoomIn()
	ZoomOut()
}

// TakeoffCanvas displays the active drawing and turns pointer gestures into
// workspace calls: tap places a point, double tap finishes an area,
// secondary tap cancels or picks, hover moves the preview and the wheel
// zooms.
type TakeoffCanvas struct {
	widget.BaseWidget

	ws       Workspace
	renderer *render.Renderer

	raster  *fynecanvas.Raster
	content *surface
	scroll  *zoomScroll
	size    fyne.Size

	// Last rendered output, kept for tests and snapshots.
	lastOutput *image.RGBA
}

// zoomScroll is a widget that wraps a scroll container but intercepts wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *TakeoffCanvas
}

func newZoomScroll(content fyne.CanvasObject, tc *TakeoffCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: tc}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	zs.canvas.wheel(ev)
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Refresh refreshes the scroll container.
func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

// Resize sets the size of the scroll container.
func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// surface wraps the raster to receive pointer events.
type surface struct {
	widget.BaseWidget
	canvas *TakeoffCanvas
	raster *fynecanvas.Raster
}

var (
	_ fyne.Tappable          = (*surface)(nil)
	_ fyne.SecondaryTappable = (*surface)(nil)
	_ fyne.DoubleTappable    = (*surface)(nil)
	_ fyne.Scrollable        = (*surface)(nil)
	_ desktop.Hoverable      = (*surface)(nil)
)

func newSurface(tc *TakeoffCanvas, raster *fynecanvas.Raster) *surface {
	s := &surface{canvas: tc, raster: raster}
	s.ExtendBaseWidget(s)
	return s
}

func (s *surface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.raster)
}

func (s *surface) MinSize() fyne.Size {
	return s.raster.MinSize()
}

// inside rejects events fyne occasionally delivers outside the widget.
func (s *surface) inside(p fyne.Position) bool {
	size := s.Size()
	return p.X >= 0 && p.Y >= 0 && p.X <= size.Width && p.Y <= size.Height
}

func toPoint(p fyne.Position) geometry.Point2D {
	return geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// screen reports the surface origin for ev and returns its window position.
// Scrolling moves the origin, so it is refreshed on every event.
func (s *surface) screen(ev *fyne.PointEvent) geometry.Point2D {
	s.canvas.ws.SetSurfaceOrigin(toPoint(ev.AbsolutePosition.Subtract(ev.Position)))
	return toPoint(ev.AbsolutePosition)
}

// Tapped places a point.
func (s *surface) Tapped(ev *fyne.PointEvent) {
	if !s.inside(ev.Position) {
		return
	}
	s.canvas.ws.PointerDown(s.screen(ev))
	s.canvas.Refresh()
}

// DoubleTapped finishes an area. In other modes a double tap is two quick
// presses and counts as a single point.
func (s *surface) DoubleTapped(ev *fyne.PointEvent) {
	if s.canvas.ws.Mode() == measure.ModeArea {
		s.canvas.ws.Finish()
	} else if s.inside(ev.Position) {
		s.canvas.ws.PointerDown(s.screen(ev))
	}
	s.canvas.Refresh()
}

// TappedSecondary cancels the draft, or picks the measurement under the
// pointer when nothing is being drawn.
func (s *surface) TappedSecondary(ev *fyne.PointEvent) {
	s.canvas.ws.SecondaryPress(s.screen(ev))
	s.canvas.Refresh()
}

func (s *surface) Scrolled(ev *fyne.ScrollEvent) {
	s.canvas.wheel(ev)
}

func (s *surface) MouseIn(ev *desktop.MouseEvent) {
	s.MouseMoved(ev)
}

// MouseMoved updates the live preview.
func (s *surface) MouseMoved(ev *desktop.MouseEvent) {
	if !s.inside(ev.Position) {
		return
	}
	s.canvas.ws.PointerMove(s.screen(&ev.PointEvent))
	s.canvas.raster.Refresh()
}

func (s *surface) MouseOut() {}

// New creates a canvas bound to ws.
func New(ws Workspace) *TakeoffCanvas {
	tc := &TakeoffCanvas{
		ws:       ws,
		renderer: render.New(),
		size:     emptySize,
	}

	tc.raster = fynecanvas.NewRaster(tc.draw)
	tc.raster.ScaleMode = fynecanvas.ImageScalePixels
	tc.raster.SetMinSize(tc.size)

	tc.content = newSurface(tc, tc.raster)
	tc.scroll = newZoomScroll(tc.content, tc)

	tc.ExtendBaseWidget(tc)
	return tc
}

// Surface returns the object receiving pointer events.
func (tc *TakeoffCanvas) Surface() fyne.CanvasObject {
	return tc.content
}

// ContentSize returns the current zoomed sheet size.
func (tc *TakeoffCanvas) ContentSize() fyne.Size {
	return tc.size
}

// LastOutput returns the most recent rendered frame.
func (tc *TakeoffCanvas) LastOutput() *image.RGBA {
	return tc.lastOutput
}

func (tc *TakeoffCanvas) wheel(ev *fyne.ScrollEvent) {
	switch {
	case ev.Scrolled.DY > 0:
		tc.ws.ZoomIn()
	case ev.Scrolled.DY < 0:
		tc.ws.ZoomOut()
	default:
		return
	}
	tc.UpdateSize()
}

// UpdateSize resizes the surface to the active sheet at the current zoom
// and redraws. Call it when the drawing, its bitmap or the zoom changes.
func (tc *TakeoffCanvas) UpdateSize() {
	s := tc.ws.Scene()
	size := emptySize
	if s.Background != nil {
		b := s.Background.Bounds()
		w, h := s.View.SurfaceSize(b.Dx(), b.Dy())
		size = fyne.NewSize(float32(w), float32(h))
	}
	tc.size = size
	tc.raster.SetMinSize(size)
	tc.raster.Resize(size)
	tc.content.Resize(size)
	tc.content.Refresh()
	tc.raster.Refresh()
	tc.scroll.Refresh()
}

// Refresh redraws the overlay.
func (tc *TakeoffCanvas) Refresh() {
	tc.raster.Refresh()
}

// draw renders the scene at the raster's device pixel size. The zoom is
// scaled by the device pixel ratio so overlays line up with the sheet.
func (tc *TakeoffCanvas) draw(w, h int) image.Image {
	s := tc.ws.Scene()
	if tc.size.Width > 0 && w > 0 {
		s.View = s.View.Scaled(float64(w) / float64(tc.size.Width))
	}
	out := tc.renderer.RenderImage(s, w, h)
	tc.lastOutput = out
	return out
}

// CreateRenderer implements fyne.Widget.
func (tc *TakeoffCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(tc.scroll)
}
