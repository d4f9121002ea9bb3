// Package export turns a drawing's measurements into a CSV file or a
// handoff payload for the estimate.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"plan-takeoff/internal/measure"
)

// ErrNothingToExport is returned when there is no drawing or it has no
// measurements.
var ErrNothingToExport = errors.New("nothing to export")

// Header is the first CSV row.
var Header = []string{"Name", "Mode", "Quantity", "Units", "Details"}

// Precision is the number of decimals written for quantities.
const Precision = 2

// Row formats one measurement as CSV fields.
func Row(m *measure.Measurement, precision int) []string {
	return []string{
		m.Label,
		m.Mode().String(),
		strconv.FormatFloat(m.Quantity, 'f', precision, 64),
		m.Units,
		m.Details,
	}
}

// WriteCSV writes the header and one row per measurement. Fields holding
// the delimiter, a quote or a newline are quoted with inner quotes doubled.
func WriteCSV(w io.Writer, ms []*measure.Measurement, precision int) error {
	if len(ms) == 0 {
		return ErrNothingToExport
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, m := range ms {
		if err := cw.Write(Row(m, precision)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename returns "<sanitized name>-takeoff.csv".
func Filename(drawingName string) string {
	return Sanitize(drawingName) + "-takeoff.csv"
}

// Sanitize reduces a drawing name to a safe file name stem. A short file
// extension is dropped, letters, digits, dots and underscores are kept, and
// runs of anything else become one dash.
func Sanitize(name string) string {
	if ext := filepath.Ext(name); len(ext) > 1 && len(ext) <= 5 && isAlnum(ext[1:]) {
		name = strings.TrimSuffix(name, ext)
	}
	var b strings.Builder
	dash := false
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteRune('-')
			dash = true
		}
	}
	s := strings.Trim(b.String(), "-.")
	if s == "" {
		return "drawing"
	}
	return s
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// SaveCSV writes the measurements to dir and returns the file path.
func SaveCSV(dir, drawingName string, ms []*measure.Measurement, precision int) (string, error) {
	if len(ms) == 0 {
		return "", ErrNothingToExport
	}
	path := filepath.Join(dir, Filename(drawingName))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, ms, precision); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
