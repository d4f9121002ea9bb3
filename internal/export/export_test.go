package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"plan-takeoff/internal/measure"
	"plan-takeoff/pkg/geometry"
)

func mustMeasure(t *testing.T, g measure.Geometry, label string, scale float64) *measure.Measurement {
	t.Helper()
	m, err := measure.New(g, label, scale, measure.DefaultStyle())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestWriteCSVSingleCount(t *testing.T) {
	m := mustMeasure(t, measure.Count{At: geometry.Point2D{X: 4, Y: 4}}, "Fixture A", 1)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []*measure.Measurement{m}, Precision); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Name,Mode,Quantity,Units,Details" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Fixture A,count,1.00,ct,") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestWriteCSVQuoting(t *testing.T) {
	m := mustMeasure(t, measure.Length{From: geometry.Point2D{}, To: geometry.Point2D{X: 10}}, `Wall "north", east`, 4)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []*measure.Measurement{m}, Precision); err != nil {
		t.Fatal(err)
	}
	want := `"Wall ""north"", east",length,2.50,ft,`
	if !strings.Contains(buf.String(), want) {
		t.Errorf("output %q does not contain %q", buf.String(), want)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil, Precision); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("err = %v, want ErrNothingToExport", err)
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written for an empty collection")
	}
}

func TestRow(t *testing.T) {
	sq := []geometry.Point2D{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 20}, {X: 0, Y: 20}}
	m := mustMeasure(t, measure.Area{Vertices: sq}, "Area 1", 10)
	got := Row(m, 3)
	want := []string{"Area 1", "area", "4.000", "sq ft", m.Details}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Row (-want +got):\n%s", diff)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"A-101 Floor Plan.pdf", "A-101-Floor-Plan-takeoff.csv"},
		{"plans.pdf - Page 2", "plans.pdf-Page-2-takeoff.csv"},
		{"../../etc/passwd", "etc-passwd-takeoff.csv"},
		{"???", "drawing-takeoff.csv"},
		{"", "drawing-takeoff.csv"},
	}
	for _, tt := range tests {
		if got := Filename(tt.in); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSaveCSV(t *testing.T) {
	dir := t.TempDir()
	m := mustMeasure(t, measure.Count{At: geometry.Point2D{}}, "Count 1", 1)
	path, err := SaveCSV(dir, "Roof.png", []*measure.Measurement{m}, Precision)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "Roof-takeoff.csv" {
		t.Errorf("path = %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "Name,Mode,Quantity,Units,Details\n") {
		t.Errorf("file = %q", data)
	}

	if _, err := SaveCSV(dir, "Empty", nil, Precision); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Empty-takeoff.csv")); !os.IsNotExist(err) {
		t.Error("no file should be created for an empty collection")
	}
}

func TestNewPayloadCopies(t *testing.T) {
	m := mustMeasure(t, measure.Length{From: geometry.Point2D{}, To: geometry.Point2D{X: 3, Y: 4}}, "Length 1", 1)
	p, err := NewPayload(DrawingInfo{ID: "d1", Name: "A", Scale: 1}, []*measure.Measurement{m})
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Measurements) != 1 || p.Measurements[0].Quantity != 5 || p.Measurements[0].Mode != measure.ModeLength {
		t.Errorf("payload = %+v", p.Measurements)
	}
	p.Measurements[0].Points[0].X = 99
	if m.Points()[0].X != 0 {
		t.Error("payload points alias the measurement")
	}
	if _, err := NewPayload(DrawingInfo{}, nil); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("err = %v", err)
	}
}

func TestDeliver(t *testing.T) {
	var got Payload
	ok := func(p Payload) error { got = p; return nil }
	p := Payload{Drawing: DrawingInfo{Name: "A"}}
	if err := Deliver(ok, p); err != nil || got.Drawing.Name != "A" {
		t.Errorf("Deliver = %v, got %+v", err, got)
	}

	boom := errors.New("boom")
	if err := Deliver(func(Payload) error { return boom }, p); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
	if err := Deliver(func(Payload) error { panic("bad") }, p); err == nil || !strings.Contains(err.Error(), "panicked") {
		t.Errorf("panic not converted: %v", err)
	}
	if err := Deliver(nil, p); err == nil {
		t.Error("nil handoff should fail")
	}
}
