// Package calibrate derives drawing scale (pixels per foot) from user input,
// known reference lengths and printed scale notations.
package calibrate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"plan-takeoff/internal/measure"
	"plan-takeoff/pkg/geometry"
)

// ErrInvalidScale is returned for scale input that is empty, non-numeric,
// non-finite or not strictly positive.
var ErrInvalidScale = measure.ErrInvalidScale

// Validate checks that scale can be assigned to a drawing.
func Validate(scale float64) error {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return fmt.Errorf("%v: %w", scale, ErrInvalidScale)
	}
	return nil
}

// ParseScale parses a user-entered pixels-per-foot value.
func ParseScale(input string) (float64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, fmt.Errorf("empty input: %w", ErrInvalidScale)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number: %w", s, ErrInvalidScale)
	}
	if err := Validate(v); err != nil {
		return 0, err
	}
	return v, nil
}

// Reference is a segment on the drawing whose real length is known.
type Reference struct {
	From, To geometry.Point2D
	Feet     float64
}

// Pixels returns the drawing-space length of the reference.
func (r Reference) Pixels() float64 {
	return geometry.Distance(r.From, r.To)
}

// FromReference returns the scale implied by one reference segment.
func FromReference(r Reference) (float64, error) {
	if err := Validate(r.Feet); err != nil {
		return 0, fmt.Errorf("reference length: %w", err)
	}
	px := r.Pixels()
	if px == 0 {
		return 0, fmt.Errorf("reference segment has zero length: %w", ErrInvalidScale)
	}
	return px / r.Feet, nil
}

// Fit is a least-squares scale over several references.
type Fit struct {
	Scale float64
	// RMS is the root-mean-square pixel error of the references at Scale.
	RMS float64
}

// FitReferences solves min sum (pixels_i - scale*feet_i)^2 over refs.
func FitReferences(refs []Reference) (Fit, error) {
	n := len(refs)
	if n == 0 {
		return Fit{}, fmt.Errorf("need at least 1 reference")
	}

	A := mat.NewDense(n, 1, nil)
	B := mat.NewVecDense(n, nil)
	for i, r := range refs {
		if err := Validate(r.Feet); err != nil {
			return Fit{}, fmt.Errorf("reference %d: %w", i+1, err)
		}
		A.Set(i, 0, r.Feet)
		B.SetVec(i, r.Pixels())
	}

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return Fit{}, err
	}
	scale := params.AtVec(0)
	if err := Validate(scale); err != nil {
		return Fit{}, err
	}

	var sum float64
	for _, r := range refs {
		e := r.Pixels() - scale*r.Feet
		sum += e * e
	}
	return Fit{Scale: scale, RMS: math.Sqrt(sum / float64(n))}, nil
}
