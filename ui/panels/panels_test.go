package panels

import (
	"bytes"
	goimage "image"
	"image/png"
	"testing"

	"fyne.io/fyne/v2/test"

	"plan-takeoff/internal/app"
	"plan-takeoff/internal/image"
	"plan-takeoff/internal/measure"
	"plan-takeoff/pkg/geometry"
)

func newWorkspace(t *testing.T, names ...string) (*app.Workspace, *app.Queue) {
	t.Helper()
	test.NewTempApp(t)
	q := app.NewQueue(64)
	ws := app.New(app.Options{Post: q.Post, Notify: func(string, app.Severity) {}})
	t.Cleanup(ws.Close)

	for _, name := range names {
		var buf bytes.Buffer
		if err := png.Encode(&buf, goimage.NewRGBA(goimage.Rect(0, 0, 200, 100))); err != nil {
			t.Fatal(err)
		}
		src, err := image.NewSource(name, buf.Bytes())
		if err != nil {
			t.Fatal(err)
		}
		if err := ws.AddSource(src); err != nil {
			t.Fatal(err)
		}
	}
	for ws.Pending() > 0 {
		q.Next()
	}
	return ws, q
}

func TestDrawingsPanelFilterAndSelect(t *testing.T) {
	ws, _ := newWorkspace(t, "alpha.png", "beta.png")
	dp := NewDrawingsPanel(ws)
	if len(dp.items) != 2 {
		t.Fatalf("items = %d, want 2", len(dp.items))
	}

	dp.filterEntry.SetText("BETA")
	if len(dp.items) != 1 {
		t.Fatalf("filtered items = %d, want 1", len(dp.items))
	}
	dp.list.Select(0)
	if ws.Active() != dp.items[0] {
		t.Error("selecting a row should activate the drawing")
	}
	if got := dp.countLabel.Text; got != "1 of 2 drawings" {
		t.Errorf("count label = %q", got)
	}
}

func TestDrawingsPanelSortDescending(t *testing.T) {
	ws, _ := newWorkspace(t, "alpha.png", "beta.png")
	dp := NewDrawingsPanel(ws)
	dp.sortSelect.SetSelected("Name")
	dp.descCheck.SetChecked(true)
	if dp.items[0].Name < dp.items[1].Name {
		t.Errorf("order = %s, %s", dp.items[0].Name, dp.items[1].Name)
	}
}

func TestMeasurementsPanelListsCaptures(t *testing.T) {
	ws, _ := newWorkspace(t, "plan.png")
	mp := NewMeasurementsPanel(ws)

	mp.modeRadio.SetSelected("Count")
	if ws.Mode() != measure.ModeCount {
		t.Fatalf("mode = %v", ws.Mode())
	}
	ws.PointerDown(geometry.Point2D{X: 10, Y: 10})
	ws.PointerDown(geometry.Point2D{X: 20, Y: 10})
	if len(mp.items) != 2 {
		t.Fatalf("items = %d, want 2", len(mp.items))
	}
	if got := mp.totalsLabel.Text; got != "Count 2 ct" {
		t.Errorf("totals = %q", got)
	}

	mp.list.Select(1)
	if ws.Selected() != mp.items[1].ID {
		t.Fatal("row selection should select the measurement")
	}
	mp.labelEntry.SetText("Outlet")
	mp.onRename()
	if mp.items[1].Label != "Outlet" {
		t.Errorf("label = %q", mp.items[1].Label)
	}
	mp.onDelete()
	if len(mp.items) != 1 || ws.Selected() != "" {
		t.Errorf("after delete: items=%d selected=%q", len(mp.items), ws.Selected())
	}
}

func TestMeasurementsPanelMarkerStyle(t *testing.T) {
	ws, _ := newWorkspace(t, "plan.png")
	mp := NewMeasurementsPanel(ws)
	mp.colorSelect.SetSelected("#2563eb")
	mp.shapeSelect.SetSelected("diamond")
	got := ws.CountStyle()
	if got.Color != "#2563eb" || got.Shape != measure.ShapeDiamond {
		t.Errorf("count style = %v", got)
	}
}

func TestPropertySheetEditsActiveDrawing(t *testing.T) {
	ws, _ := newWorkspace(t, "plan.png")
	ps := NewPropertySheet(ws)

	ps.tradeEntry.SetText("Electrical")
	ps.onApplyMetadata()
	if ws.Active().Trade != "Electrical" {
		t.Errorf("trade = %q", ws.Active().Trade)
	}

	ps.scaleEntry.SetText("48")
	ps.onSetScale()
	if ws.Active().Scale != 48 {
		t.Errorf("scale = %v", ws.Active().Scale)
	}
	if ps.scaleLabel.Text != "48 px/ft" {
		t.Errorf("scale label = %q", ps.scaleLabel.Text)
	}
}

func TestPropertySheetDisabledWithoutDrawing(t *testing.T) {
	ws, _ := newWorkspace(t)
	ps := NewPropertySheet(ws)
	if !ps.nameEntry.Disabled() || !ps.suggestBtn.Disabled() {
		t.Error("controls should be disabled with no drawing")
	}
}
