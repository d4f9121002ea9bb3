package capture

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"plan-takeoff/internal/measure"
	"plan-takeoff/pkg/geometry"
)

func pt(x, y float64) geometry.Point2D {
	return geometry.Point2D{X: x, Y: y}
}

func TestCountFinalizesImmediately(t *testing.T) {
	m := New()
	m.SetMode(measure.ModeCount)

	g, err := m.PointerDown(pt(4, 5))
	if err != nil {
		t.Fatal(err)
	}
	c, ok := g.(measure.Count)
	if !ok {
		t.Fatalf("expected Count geometry, got %T", g)
	}
	if c.At != pt(4, 5) {
		t.Errorf("count at %v", c.At)
	}
	if m.State() != Idle {
		t.Errorf("expected idle after count, got %v", m.State())
	}
}

func TestLengthFinalizesAtTwoPoints(t *testing.T) {
	m := New()
	m.SetMode(measure.ModeLength)

	g, _ := m.PointerDown(pt(0, 0))
	if g != nil {
		t.Fatal("finalized after one point")
	}
	if m.State() != Collecting {
		t.Fatalf("expected collecting, got %v", m.State())
	}
	g, err := m.PointerDown(pt(30, 0))
	if err != nil {
		t.Fatal(err)
	}
	l, ok := g.(measure.Length)
	if !ok {
		t.Fatalf("expected Length, got %T", g)
	}
	if q := l.Quantity(10); q != 3 {
		t.Errorf("quantity = %v, want 3", q)
	}
	if m.State() != Idle || m.Draft() != nil {
		t.Error("draft not cleared after finalize")
	}
}

func TestDiameterFinalizesAtTwoPoints(t *testing.T) {
	m := New()
	m.SetMode(measure.ModeDiameter)
	m.PointerDown(pt(0, 0))
	g, _ := m.PointerDown(pt(0, 12))
	if _, ok := g.(measure.Diameter); !ok {
		t.Fatalf("expected Diameter, got %T", g)
	}
}

func TestAreaFinish(t *testing.T) {
	m := New()
	m.SetMode(measure.ModeArea)
	for _, p := range []geometry.Point2D{pt(0, 0), pt(90, 0), pt(90, 90)} {
		if g, _ := m.PointerDown(p); g != nil {
			t.Fatal("area finalized without finish")
		}
	}
	m.PointerDown(pt(0, 90))

	g, err := m.Finish()
	if err != nil {
		t.Fatal(err)
	}
	a, ok := g.(measure.Area)
	if !ok {
		t.Fatalf("expected Area, got %T", g)
	}
	if q := a.Quantity(30); q != 9 {
		t.Errorf("quantity = %v, want 9", q)
	}
}

func TestAreaFinishTooFewPointsLeavesDraft(t *testing.T) {
	m := New()
	m.SetMode(measure.ModeArea)
	m.PointerDown(pt(0, 0))
	m.PointerDown(pt(10, 0))

	before := m.Draft()
	g, err := m.Finish()
	if !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("expected ErrTooFewPoints, got %v", err)
	}
	if g != nil {
		t.Error("expected no geometry")
	}
	if diff := cmp.Diff(before, m.Draft()); diff != "" {
		t.Errorf("draft changed (-before +after):\n%s", diff)
	}
}

func TestAreaIgnoresRepeatedVertex(t *testing.T) {
	m := New()
	m.SetMode(measure.ModeArea)
	m.PointerDown(pt(0, 0))
	m.PointerDown(pt(10, 0))
	m.PointerDown(pt(10, 0))
	if n := len(m.Draft().Points); n != 2 {
		t.Errorf("expected 2 points, got %d", n)
	}
}

func TestCancelDiscardsDraft(t *testing.T) {
	m := New()
	m.SetMode(measure.ModeArea)
	m.PointerDown(pt(0, 0))
	m.PointerDown(pt(10, 0))

	if !m.Cancel() {
		t.Fatal("expected cancel to discard a draft")
	}
	if m.State() != Idle || m.Draft() != nil {
		t.Fatal("draft survived cancel")
	}

	// A fresh draft starts from scratch.
	m.PointerDown(pt(100, 100))
	d := m.Draft()
	if diff := cmp.Diff([]geometry.Point2D{pt(100, 100)}, d.Points); diff != "" {
		t.Errorf("new draft reused old points (-want +got):\n%s", diff)
	}
	m.Cancel()
	if m.Cancel() {
		t.Error("cancel while idle should report false")
	}
}

func TestPointerMoveOnlyUpdatesPreview(t *testing.T) {
	m := New()
	if m.PointerMove(pt(1, 1)) {
		t.Error("move while idle in length mode should not request redraw")
	}

	m.PointerDown(pt(0, 0))
	if !m.PointerMove(pt(5, 5)) {
		t.Error("move while collecting should request redraw")
	}
	d := m.Draft()
	if len(d.Points) != 1 || d.Preview != pt(5, 5) || !d.HasPreview {
		t.Errorf("unexpected draft %+v", d)
	}

	m.SetMode(measure.ModeCount)
	if !m.PointerMove(pt(7, 7)) {
		t.Error("count mode tracks the pointer")
	}
	if d := m.Draft(); d == nil || len(d.Points) != 0 {
		t.Errorf("count preview draft = %+v", d)
	}
}

func TestSetModeResetsDraft(t *testing.T) {
	m := New()
	m.PointerDown(pt(0, 0))
	m.SetMode(measure.ModeArea)
	if m.State() != Idle {
		t.Error("mode switch should reset to idle")
	}
}

func TestFinishOutsideAreaIsNoop(t *testing.T) {
	m := New()
	m.PointerDown(pt(0, 0))
	g, err := m.Finish()
	if g != nil || err != nil {
		t.Errorf("Finish in length mode = %v, %v", g, err)
	}
	if m.State() != Collecting {
		t.Error("Finish in length mode changed state")
	}
}
