package calibrate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Notation is a printed drawing scale such as 1/4" = 1'-0".
type Notation struct {
	Text        string  // As matched
	PaperInches float64 // Left side, inches on paper
	RealFeet    float64 // Right side, feet in the building
}

// PaperInchesPerFoot returns the paper length of one real foot.
func (n Notation) PaperInchesPerFoot() float64 {
	return n.PaperInches / n.RealFeet
}

// PixelsPerFoot converts the notation to a drawing scale for a bitmap with
// the given resolution.
func (n Notation) PixelsPerFoot(pixelsPerInch float64) float64 {
	return pixelsPerInch * n.PaperInchesPerFoot()
}

func (n Notation) String() string {
	return n.Text
}

const (
	inchNum = `(\d+\s+\d+/\d+|\d+/\d+|\d+(?:\.\d+)?|\.\d+)`
)

var (
	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`, "″", `"`, "''", `"`,
		"‘", "'", "’", "'", "′", "'",
	)
	// 1/4" = 1'-0", 1" = 20', 3/32"=1'
	imperialRe = regexp.MustCompile(inchNum + `\s*(?:"|in\b)\s*=\s*(\d+(?:\.\d+)?)\s*'(?:\s*-?\s*` + inchNum + `\s*")?`)
	// SCALE: 1:48
	ratioRe      = regexp.MustCompile(`(?i)scale\s*:?\s*1\s*:\s*(\d+(?:\.\d+)?)`)
	exactRatioRe = regexp.MustCompile(`^\s*1\s*:\s*(\d+(?:\.\d+)?)\s*$`)
)

// parseInches parses "3", "0.5", "3/32" or "1 1/2".
func parseInches(s string) (float64, error) {
	s = strings.TrimSpace(s)
	whole := 0.0
	if i := strings.IndexByte(s, ' '); i >= 0 {
		w, err := strconv.ParseFloat(s[:i], 64)
		if err != nil {
			return 0, err
		}
		whole = w
		s = strings.TrimSpace(s[i+1:])
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, err
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return 0, fmt.Errorf("bad fraction %q", s)
		}
		return whole + n/d, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	return whole + v, err
}

func fromImperial(m []string) (Notation, error) {
	paper, err := parseInches(m[1])
	if err != nil {
		return Notation{}, err
	}
	feet, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Notation{}, err
	}
	if m[3] != "" {
		in, err := parseInches(m[3])
		if err != nil {
			return Notation{}, err
		}
		feet += in / 12
	}
	if paper <= 0 || feet <= 0 {
		return Notation{}, fmt.Errorf("scale %q has a zero side", m[0])
	}
	return Notation{Text: strings.TrimSpace(m[0]), PaperInches: paper, RealFeet: feet}, nil
}

func fromRatio(text, denom string) (Notation, error) {
	d, err := strconv.ParseFloat(denom, 64)
	if err != nil || d <= 0 {
		return Notation{}, fmt.Errorf("bad ratio %q", text)
	}
	// 1:d means one paper inch is d real inches.
	return Notation{Text: strings.TrimSpace(text), PaperInches: 12, RealFeet: d}, nil
}

// ParseNotation parses a single scale notation.
func ParseNotation(s string) (Notation, error) {
	norm := quoteReplacer.Replace(s)
	if m := imperialRe.FindStringSubmatch(norm); m != nil {
		return fromImperial(m)
	}
	if m := exactRatioRe.FindStringSubmatch(norm); m != nil {
		return fromRatio(m[0], m[1])
	}
	if m := ratioRe.FindStringSubmatch(norm); m != nil {
		return fromRatio(m[0], m[1])
	}
	return Notation{}, fmt.Errorf("no scale notation in %q", s)
}

// FindNotation scans free text (a title block, OCR output) for the first
// scale notation.
func FindNotation(text string) (Notation, bool) {
	norm := quoteReplacer.Replace(text)
	if m := imperialRe.FindStringSubmatch(norm); m != nil {
		if n, err := fromImperial(m); err == nil {
			return n, true
		}
	}
	if m := ratioRe.FindStringSubmatch(norm); m != nil {
		if n, err := fromRatio(m[0], m[1]); err == nil {
			return n, true
		}
	}
	return Notation{}, false
}
