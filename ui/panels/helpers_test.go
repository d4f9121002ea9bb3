package panels

import (
	"testing"

	"plan-takeoff/internal/measure"
)

func TestTotalsText(t *testing.T) {
	got := totalsText(map[measure.Mode]float64{
		measure.ModeCount:  3,
		measure.ModeLength: 12.5,
	})
	want := "Length 12.50 ft · Count 3 ct"
	if got != want {
		t.Errorf("totalsText = %q, want %q", got, want)
	}
	if totalsText(nil) != "No measurements" {
		t.Error("empty totals")
	}
}

func TestQuantityText(t *testing.T) {
	m := &measure.Measurement{Geometry: measure.Area{}, Quantity: 4, Units: measure.UnitSquareFeet}
	if got := quantityText(m); got != "Area: 4.00 sq ft" {
		t.Errorf("unlabeled = %q", got)
	}
	m.Label = "Slab"
	if got := quantityText(m); got != "Slab: 4.00 sq ft" {
		t.Errorf("labeled = %q", got)
	}
}

func TestScaleText(t *testing.T) {
	if scaleText(1) != "Uncalibrated (1 px/ft)" {
		t.Error("default scale")
	}
	if got := scaleText(27); got != "27 px/ft" {
		t.Errorf("scaleText(27) = %q", got)
	}
}

func TestReferenceLengths(t *testing.T) {
	got, err := referenceLengths(map[string]string{"a": " 12.5 ", "b": "", "c": "3"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got["a"] != 12.5 || got["c"] != 3 {
		t.Errorf("referenceLengths = %v", got)
	}
	if _, err := referenceLengths(map[string]string{"a": "ten"}); err == nil {
		t.Error("expected error for non-numeric length")
	}
}
