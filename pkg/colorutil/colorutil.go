// Package colorutil provides shared color utilities for the takeoff application.
package colorutil

import (
	"fmt"
	"image/color"
	"strings"
)

// Common overlay colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Blue    = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Red     = color.RGBA{R: 220, G: 38, B: 38, A: 255}
	Orange  = color.RGBA{R: 234, G: 88, B: 12, A: 255}
)

// Measurement overlay colors.
var (
	LengthStroke = color.RGBA{R: 37, G: 99, B: 235, A: 255}
	AreaStroke   = color.RGBA{R: 22, G: 163, B: 74, A: 255}
	AreaFill     = color.NRGBA{R: 22, G: 163, B: 74, A: 64}
	DiameterLine = color.RGBA{R: 147, G: 51, B: 234, A: 255}
	DraftStroke  = color.RGBA{R: 234, G: 88, B: 12, A: 255}
	LabelText    = color.RGBA{R: 17, G: 24, B: 39, A: 255}
	LabelBack    = color.NRGBA{R: 255, G: 255, B: 255, A: 220}
)

// DefaultMarker is the count marker color used when none is chosen.
const DefaultMarker = "#dc2626"

// MarkerPalette lists the count marker colors offered in the UI.
var MarkerPalette = []string{
	"#dc2626", "#ea580c", "#ca8a04", "#16a34a", "#2563eb", "#9333ea", "#db2777", "#111827",
}

// ParseHex parses "#rrggbb", "#rgb" or "#rrggbbaa". The alpha, when
// present, is straight (not premultiplied).
func ParseHex(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	c := color.NRGBA{A: 255}
	var err error
	switch len(s) {
	case 3:
		_, err = fmt.Sscanf(s, "%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	case 6:
		_, err = fmt.Sscanf(s, "%2x%2x%2x", &c.R, &c.G, &c.B)
	case 8:
		_, err = fmt.Sscanf(s, "%2x%2x%2x%2x", &c.R, &c.G, &c.B, &c.A)
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return c, nil
}

// Hex formats c as "#rrggbb", ignoring alpha.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// WithAlpha returns the opaque color c as a non-premultiplied color with
// alpha a.
func WithAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}
