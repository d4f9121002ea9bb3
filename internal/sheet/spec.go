// Package sheet provides plan sheet size definitions and lookup.
package sheet

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// Family groups sheet sizes by standard.
type Family int

const (
	FamilyArch Family = iota // US architectural
	FamilyANSI               // US engineering
	FamilyISO                // ISO 216 A series
	FamilyCustom
)

func (f Family) String() string {
	switch f {
	case FamilyArch:
		return "ARCH"
	case FamilyANSI:
		return "ANSI"
	case FamilyISO:
		return "ISO"
	default:
		return "Custom"
	}
}

// Tolerance is how far, in inches, a measured side may differ from a
// spec and still match it. PDF page boxes are often trimmed slightly.
const Tolerance = 0.25

// Spec defines a sheet size in landscape orientation.
type Spec struct {
	Name         string  `json:"name"`
	Family       Family  `json:"family"`
	WidthInches  float64 `json:"width_inches"`
	HeightInches float64 `json:"height_inches"`
}

// Validate checks the spec for usable values.
func (s *Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("sheet name is required")
	}
	if !(s.WidthInches > 0) || !(s.HeightInches > 0) {
		return fmt.Errorf("sheet dimensions must be positive")
	}
	return nil
}

// Matches reports whether a w x h inch page is this size in either
// orientation.
func (s *Spec) Matches(w, h float64) bool {
	if w < h {
		w, h = h, w
	}
	sw, sh := s.WidthInches, s.HeightInches
	if sw < sh {
		sw, sh = sh, sw
	}
	return math.Abs(w-sw) <= Tolerance && math.Abs(h-sh) <= Tolerance
}

// LoadFromFile loads a custom sheet definition from a JSON file.
func LoadFromFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	spec.Family = FamilyCustom

	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sheet spec: %w", err)
	}
	return &spec, nil
}

// Registry of known sheet sizes
var registry []*Spec

// Register adds a sheet size. Later registrations win when sizes overlap.
func Register(spec *Spec) {
	registry = append(registry, spec)
}

// Identify returns the registered size matching a w x h inch page, or nil.
func Identify(w, h float64) *Spec {
	for i := len(registry) - 1; i >= 0; i-- {
		if registry[i].Matches(w, h) {
			return registry[i]
		}
	}
	return nil
}

// Describe names a w x h inch page, e.g. "ARCH D" or "30.0 x 42.0 in".
func Describe(w, h float64) string {
	if s := Identify(w, h); s != nil {
		return s.Name
	}
	if w < h {
		w, h = h, w
	}
	return fmt.Sprintf("%.1f x %.1f in", w, h)
}

// ListSpecs returns every registered sheet, smallest first.
func ListSpecs() []*Spec {
	out := make([]*Spec, len(registry))
	copy(out, registry)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WidthInches*out[i].HeightInches < out[j].WidthInches*out[j].HeightInches
	})
	return out
}

func init() {
	for _, s := range ISOSpecs() {
		Register(s)
	}
	for _, s := range ANSISpecs() {
		Register(s)
	}
	for _, s := range ArchSpecs() {
		Register(s)
	}
}
