// Package theme provides the takeoff application theme.
package theme

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"plan-takeoff/internal/measure"
	"plan-takeoff/pkg/colorutil"
)

// TakeoffTheme keeps fyne's defaults with a blueprint primary color and
// wider scrollbars for large sheets.
type TakeoffTheme struct{}

var _ fyne.Theme = (*TakeoffTheme)(nil)

func (t *TakeoffTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return colorutil.LengthStroke
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0xEA, G: 0x58, B: 0x0C, A: 0x60}
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *TakeoffTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *TakeoffTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *TakeoffTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 16
	case theme.SizeNameScrollBarSmall:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}

// ModeColor is the swatch shown next to a mode in lists and the toolbar.
// Counts use their own marker color, so callers pass the style.
func ModeColor(m measure.Mode, style measure.Style) color.Color {
	switch m {
	case measure.ModeLength:
		return colorutil.LengthStroke
	case measure.ModeArea:
		return colorutil.AreaStroke
	case measure.ModeDiameter:
		return colorutil.DiameterLine
	default:
		c, err := colorutil.ParseHex(style.Color)
		if err != nil {
			return colorutil.Red
		}
		return c
	}
}
