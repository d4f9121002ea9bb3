package measure

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"plan-takeoff/pkg/colorutil"
	"plan-takeoff/pkg/geometry"
)

// ErrInvalidScale is returned when a quantity is requested at a scale that is
// not strictly positive.
var ErrInvalidScale = errors.New("scale must be a positive number")

// Measurement is one finalized capture belonging to a drawing.
//
// Quantity and Details are computed once at finalize time from the geometry
// and the drawing scale in effect; later scale edits do not touch them.
type Measurement struct {
	ID       string
	Label    string
	Geometry Geometry
	Quantity float64
	Units    string
	Details  string
	Style    Style
}

// DefaultStyle returns the marker style used for new count measurements.
func DefaultStyle() Style {
	return Style{Color: colorutil.DefaultMarker, Shape: ShapeCircle}
}

// New finalizes g at scale into a Measurement with a fresh id.
func New(g Geometry, label string, scale float64, style Style) (*Measurement, error) {
	if g == nil {
		return nil, fmt.Errorf("nil geometry: %w", ErrArity)
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%v: %w", scale, ErrInvalidScale)
	}
	if style.Color == "" {
		style.Color = colorutil.DefaultMarker
	}
	m := &Measurement{
		ID:       uuid.New().String(),
		Label:    label,
		Geometry: g,
		Quantity: g.Quantity(scale),
		Units:    g.Mode().Units(),
		Style:    style,
	}
	m.Details = describe(g, scale, style)
	return m, nil
}

// Mode returns the capture mode of the measurement.
func (m *Measurement) Mode() Mode {
	return m.Geometry.Mode()
}

// Points returns a copy of the drawing-space points.
func (m *Measurement) Points() []geometry.Point2D {
	return m.Geometry.Points()
}

// SetStyle replaces the marker style; only count details depend on it.
func (m *Measurement) SetStyle(s Style) {
	m.Style = s
	if m.Mode() == ModeCount {
		m.Details = s.String()
	}
}

func describe(g Geometry, scale float64, style Style) string {
	switch v := g.(type) {
	case Length:
		return fmt.Sprintf("%.1f px", v.Pixels())
	case Diameter:
		d := v.Pixels() / scale
		return fmt.Sprintf("Radius %.2f ft, circumference %.2f ft", d/2, math.Pi*d)
	case Area:
		return fmt.Sprintf("Perimeter %.2f ft, %d vertices", v.Perimeter(scale), len(v.Vertices))
	case Count:
		return style.String()
	}
	return ""
}

// Totals sums quantities per mode.
func Totals(ms []*Measurement) map[Mode]float64 {
	out := make(map[Mode]float64, len(Modes))
	for _, m := range ms {
		out[m.Mode()] += m.Quantity
	}
	return out
}

// Labeler hands out sequential per-mode labels ("Length 1", "Area 2").
type Labeler struct {
	next map[Mode]int
}

// NewLabeler creates a labeler starting every mode at 1.
func NewLabeler() *Labeler {
	return &Labeler{next: make(map[Mode]int)}
}

// Next returns the next label for mode and advances its counter.
func (l *Labeler) Next(mode Mode) string {
	if l.next == nil {
		l.next = make(map[Mode]int)
	}
	l.next[mode]++
	return fmt.Sprintf("%s %d", mode.Title(), l.next[mode])
}

// Observe advances the counter past an existing label of the form
// "<Mode> <n>", so restored collections do not reuse numbers.
func (l *Labeler) Observe(mode Mode, label string) {
	prefix := mode.Title() + " "
	if !strings.HasPrefix(label, prefix) {
		return
	}
	n, err := strconv.Atoi(strings.TrimPrefix(label, prefix))
	if err != nil {
		return
	}
	if l.next == nil {
		l.next = make(map[Mode]int)
	}
	if n > l.next[mode] {
		l.next[mode] = n
	}
}
