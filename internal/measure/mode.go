// Package measure defines takeoff measurements: the capture modes, the
// per-mode geometry payloads and the finalized Measurement record.
package measure

import (
	"fmt"
	"strings"
)

// Mode identifies the kind of quantity a measurement captures.
type Mode int

const (
	ModeLength Mode = iota
	ModeArea
	ModeCount
	ModeDiameter
)

// Modes lists every capture mode in display order.
var Modes = []Mode{ModeLength, ModeArea, ModeCount, ModeDiameter}

// Unit strings attached to finalized quantities.
const (
	UnitFeet       = "ft"
	UnitSquareFeet = "sq ft"
	UnitCount      = "ct"
)

// String returns the lowercase mode name used in files and exports.
func (m Mode) String() string {
	switch m {
	case ModeLength:
		return "length"
	case ModeArea:
		return "area"
	case ModeCount:
		return "count"
	case ModeDiameter:
		return "diameter"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Title returns the capitalized mode name used in labels.
func (m Mode) Title() string {
	s := m.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Units returns the unit string for quantities in this mode.
func (m Mode) Units() string {
	switch m {
	case ModeArea:
		return UnitSquareFeet
	case ModeCount:
		return UnitCount
	default:
		return UnitFeet
	}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m >= ModeLength && m <= ModeDiameter
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(strings.TrimSpace(s), m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown measurement mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid measurement mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Shape is the marker drawn for a count measurement.
type Shape int

const (
	ShapeCircle Shape = iota
	ShapeSquare
	ShapeDiamond
	ShapeTriangle
)

// Shapes lists every marker shape.
var Shapes = []Shape{ShapeCircle, ShapeSquare, ShapeDiamond, ShapeTriangle}

func (s Shape) String() string {
	switch s {
	case ShapeCircle:
		return "circle"
	case ShapeSquare:
		return "square"
	case ShapeDiamond:
		return "diamond"
	case ShapeTriangle:
		return "triangle"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// ParseShape parses a marker shape name.
func ParseShape(s string) (Shape, error) {
	for _, sh := range Shapes {
		if strings.EqualFold(strings.TrimSpace(s), sh.String()) {
			return sh, nil
		}
	}
	return 0, fmt.Errorf("unknown marker shape %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(b []byte) error {
	v, err := ParseShape(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Style holds the marker attributes of a count measurement.
type Style struct {
	Color string `json:"color"`
	Shape Shape  `json:"shape"`
}

// String formats the style as "<shape> <color>".
func (s Style) String() string {
	return s.Shape.String() + " " + s.Color
}
