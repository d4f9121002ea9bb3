package canvas

import (
	"image"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"plan-takeoff/internal/measure"
	"plan-takeoff/internal/render"
	"plan-takeoff/internal/viewport"
	"plan-takeoff/pkg/geometry"
)

type fakeWorkspace struct {
	mode   measure.Mode
	zoom   float64
	bg     image.Image
	origin geometry.Point2D
	downs  []geometry.Point2D
	moves  []geometry.Point2D
	finish int
	picks  []geometry.Point2D
}

func (f *fakeWorkspace) Scene() render.Scene {
	return render.Scene{Background: f.bg, View: viewport.Transform{Zoom: f.zoom}}
}
func (f *fakeWorkspace) Mode() measure.Mode                  { return f.mode }
func (f *fakeWorkspace) SetSurfaceOrigin(p geometry.Point2D) { f.origin = p }

// Pointer positions are recorded relative to the surface, as the
// workspace's viewport would see them at zoom 1.
func (f *fakeWorkspace) PointerDown(p geometry.Point2D) { f.downs = append(f.downs, p.Sub(f.origin)) }
func (f *fakeWorkspace) PointerMove(p geometry.Point2D) { f.moves = append(f.moves, p.Sub(f.origin)) }
func (f *fakeWorkspace) Finish()                        { f.finish++ }
func (f *fakeWorkspace) SecondaryPress(p geometry.Point2D) {
	f.picks = append(f.picks, p.Sub(f.origin))
}
func (f *fakeWorkspace) ZoomIn()  { f.zoom += 0.1 }
func (f *fakeWorkspace) ZoomOut() { f.zoom -= 0.1 }

func newTestCanvas(t *testing.T, mode measure.Mode) (*TakeoffCanvas, *fakeWorkspace) {
	t.Helper()
	test.NewTempApp(t)
	ws := &fakeWorkspace{mode: mode, zoom: 1, bg: image.NewRGBA(image.Rect(0, 0, 200, 100))}
	tc := New(ws)
	tc.UpdateSize()
	return tc, ws
}

func TestUpdateSizeFollowsZoom(t *testing.T) {
	tc, ws := newTestCanvas(t, measure.ModeLength)
	if got := tc.ContentSize(); got != fyne.NewSize(200, 100) {
		t.Fatalf("size = %v", got)
	}
	ws.zoom = 2
	tc.UpdateSize()
	if got := tc.ContentSize(); got != fyne.NewSize(400, 200) {
		t.Errorf("size at 2x = %v", got)
	}
}

func TestEmptyWorkspaceSize(t *testing.T) {
	test.NewTempApp(t)
	tc := New(&fakeWorkspace{mode: measure.ModeCount, zoom: 1})
	tc.UpdateSize()
	if tc.ContentSize() != emptySize {
		t.Errorf("size = %v", tc.ContentSize())
	}
}

func TestTapPlacesPoint(t *testing.T) {
	tc, ws := newTestCanvas(t, measure.ModeLength)
	s := tc.content
	s.Tapped(&fyne.PointEvent{Position: fyne.NewPos(10, 20)})
	s.Tapped(&fyne.PointEvent{Position: fyne.NewPos(-5, 20)})
	if len(ws.downs) != 1 || ws.downs[0] != (geometry.Point2D{X: 10, Y: 20}) {
		t.Errorf("downs = %v", ws.downs)
	}
}

func TestTapReportsSurfaceOrigin(t *testing.T) {
	tc, ws := newTestCanvas(t, measure.ModeLength)
	tc.content.Tapped(&fyne.PointEvent{Position: fyne.NewPos(10, 20), AbsolutePosition: fyne.NewPos(110, 70)})
	if ws.origin != (geometry.Point2D{X: 100, Y: 50}) {
		t.Errorf("origin = %v", ws.origin)
	}
	if len(ws.downs) != 1 || ws.downs[0] != (geometry.Point2D{X: 10, Y: 20}) {
		t.Errorf("downs = %v", ws.downs)
	}
}

func TestDoubleTapFinishesArea(t *testing.T) {
	tc, ws := newTestCanvas(t, measure.ModeArea)
	tc.content.DoubleTapped(&fyne.PointEvent{Position: fyne.NewPos(5, 5)})
	if ws.finish != 1 || len(ws.downs) != 0 {
		t.Errorf("finish = %d downs = %v", ws.finish, ws.downs)
	}
}

func TestDoubleTapCountsAsPointOutsideArea(t *testing.T) {
	tc, ws := newTestCanvas(t, measure.ModeCount)
	tc.content.DoubleTapped(&fyne.PointEvent{Position: fyne.NewPos(5, 5)})
	if ws.finish != 0 || len(ws.downs) != 1 {
		t.Errorf("finish = %d downs = %v", ws.finish, ws.downs)
	}
}

func TestSecondaryTapGoesToWorkspace(t *testing.T) {
	tc, ws := newTestCanvas(t, measure.ModeArea)
	tc.content.TappedSecondary(&fyne.PointEvent{Position: fyne.NewPos(7, 8)})
	if len(ws.picks) != 1 || ws.picks[0] != (geometry.Point2D{X: 7, Y: 8}) {
		t.Errorf("picks = %v", ws.picks)
	}
}

func TestHoverMovesPreview(t *testing.T) {
	tc, ws := newTestCanvas(t, measure.ModeLength)
	tc.content.MouseMoved(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(30, 40)}})
	if len(ws.moves) != 1 || ws.moves[0] != (geometry.Point2D{X: 30, Y: 40}) {
		t.Errorf("moves = %v", ws.moves)
	}
}

func TestWheelZooms(t *testing.T) {
	tc, ws := newTestCanvas(t, measure.ModeLength)
	tc.scroll.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, 1)})
	if ws.zoom <= 1 {
		t.Fatalf("zoom = %v", ws.zoom)
	}
	if tc.ContentSize().Width <= 200 {
		t.Errorf("content not resized: %v", tc.ContentSize())
	}
	tc.scroll.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, -1)})
	tc.scroll.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, -1)})
	if ws.zoom >= 1 {
		t.Errorf("zoom after out = %v", ws.zoom)
	}
}

func TestDrawRendersAtPixelSize(t *testing.T) {
	tc, _ := newTestCanvas(t, measure.ModeLength)
	img := tc.draw(400, 200)
	if img.Bounds().Dx() != 400 || tc.LastOutput() == nil {
		t.Errorf("bounds = %v", img.Bounds())
	}
}
