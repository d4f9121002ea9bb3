package measure

import (
	"errors"
	"fmt"

	"plan-takeoff/pkg/geometry"
)

// ErrArity is returned when the number of points does not match the mode.
var ErrArity = errors.New("point count does not match measurement mode")

// Geometry is the mode-specific point payload of a measurement. It is one of
// Length, Diameter, Area or Count.
type Geometry interface {
	Mode() Mode
	// Points returns a copy of the drawing-space points.
	Points() []geometry.Point2D
	// Quantity converts the pixel geometry to real-world units at scale
	// pixels per foot.
	Quantity(scale float64) float64
}

// Length is a straight run between two points.
type Length struct {
	From, To geometry.Point2D
}

func (Length) Mode() Mode                       { return ModeLength }
func (g Length) Points() []geometry.Point2D     { return []geometry.Point2D{g.From, g.To} }
func (g Length) Pixels() float64                { return geometry.Distance(g.From, g.To) }
func (g Length) Quantity(scale float64) float64 { return g.Pixels() / scale }

// Diameter is measured across a circular element between two points.
type Diameter struct {
	From, To geometry.Point2D
}

func (Diameter) Mode() Mode                       { return ModeDiameter }
func (g Diameter) Points() []geometry.Point2D     { return []geometry.Point2D{g.From, g.To} }
func (g Diameter) Pixels() float64                { return geometry.Distance(g.From, g.To) }
func (g Diameter) Quantity(scale float64) float64 { return g.Pixels() / scale }

// Area is a closed polygon of at least three vertices.
type Area struct {
	Vertices []geometry.Point2D
}

func (Area) Mode() Mode { return ModeArea }

func (g Area) Points() []geometry.Point2D {
	out := make([]geometry.Point2D, len(g.Vertices))
	copy(out, g.Vertices)
	return out
}

func (g Area) Quantity(scale float64) float64 {
	return geometry.PolygonArea(g.Vertices) / (scale * scale)
}

// Perimeter returns the polygon perimeter in feet at the given scale.
func (g Area) Perimeter(scale float64) float64 {
	return geometry.PolygonPerimeter(g.Vertices) / scale
}

// Count is a single tallied item.
type Count struct {
	At geometry.Point2D
}

func (Count) Mode() Mode                   { return ModeCount }
func (g Count) Points() []geometry.Point2D { return []geometry.Point2D{g.At} }
func (Count) Quantity(float64) float64     { return 1 }

// NewGeometry builds the payload for mode from pts, enforcing the point
// arity: exactly one for count, exactly two for length and diameter, and at
// least three for area.
func NewGeometry(mode Mode, pts []geometry.Point2D) (Geometry, error) {
	switch mode {
	case ModeCount:
		if len(pts) != 1 {
			return nil, fmt.Errorf("%s needs 1 point, got %d: %w", mode, len(pts), ErrArity)
		}
		return Count{At: pts[0]}, nil
	case ModeLength, ModeDiameter:
		if len(pts) != 2 {
			return nil, fmt.Errorf("%s needs 2 points, got %d: %w", mode, len(pts), ErrArity)
		}
		if mode == ModeLength {
			return Length{From: pts[0], To: pts[1]}, nil
		}
		return Diameter{From: pts[0], To: pts[1]}, nil
	case ModeArea:
		if len(pts) < 3 {
			return nil, fmt.Errorf("%s needs at least 3 points, got %d: %w", mode, len(pts), ErrArity)
		}
		v := make([]geometry.Point2D, len(pts))
		copy(v, pts)
		return Area{Vertices: v}, nil
	default:
		return nil, fmt.Errorf("unknown measurement mode %d", int(mode))
	}
}

// RequiredPoints returns the number of points after which a pointer-driven
// capture finalizes on its own, or 0 when the mode needs an explicit finish.
func RequiredPoints(mode Mode) int {
	switch mode {
	case ModeCount:
		return 1
	case ModeLength, ModeDiameter:
		return 2
	default:
		return 0
	}
}
