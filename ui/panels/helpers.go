package panels

import (
	"fmt"
	"strconv"
	"strings"

	"plan-takeoff/internal/measure"
)

// quantityText formats a measurement for list rows, e.g. "Wall A: 12.50 ft".
func quantityText(m *measure.Measurement) string {
	label := m.Label
	if label == "" {
		label = m.Mode().Title()
	}
	return fmt.Sprintf("%s: %s", label, formatQuantity(m.Quantity, m.Units))
}

func formatQuantity(q float64, units string) string {
	if units == measure.UnitCount {
		return fmt.Sprintf("%.0f %s", q, units)
	}
	return fmt.Sprintf("%.2f %s", q, units)
}

// totalsText renders per-mode sums in display order, skipping empty modes.
func totalsText(totals map[measure.Mode]float64) string {
	var parts []string
	for _, m := range measure.Modes {
		q, ok := totals[m]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s", m.Title(), formatQuantity(q, m.Units())))
	}
	if len(parts) == 0 {
		return "No measurements"
	}
	return strings.Join(parts, " · ")
}

// scaleText describes a scale in pixels per foot.
func scaleText(scale float64) string {
	if scale == 1 {
		return "Uncalibrated (1 px/ft)"
	}
	return fmt.Sprintf("%.3g px/ft", scale)
}

// referenceLengths parses known lengths keyed by measurement id. Blank
// inputs are skipped.
func referenceLengths(inputs map[string]string) (map[string]float64, error) {
	out := make(map[string]float64)
	for id, text := range inputs {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid length %q", text)
		}
		out[id] = v
	}
	return out, nil
}

func indexOf(items []string, s string) int {
	for i, it := range items {
		if it == s {
			return i
		}
	}
	return -1
}
