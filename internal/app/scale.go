package app

import (
	"context"
	"errors"
	"fmt"
	goimage "image"
	"log"

	"plan-takeoff/internal/calibrate"
	"plan-takeoff/internal/document"
	"plan-takeoff/internal/drawing"
	"plan-takeoff/internal/measure"
)

// ErrNoSuggestion is returned when no scale note could be found.
var ErrNoSuggestion = errors.New("no scale notation found on this sheet")

// ScaleReader recognizes a scale note in a sheet bitmap.
type ScaleReader interface {
	ReadScale(ctx context.Context, sheet goimage.Image) (calibrate.Notation, string, error)
}

// Suggestion is a scale proposed from a sheet's scale note.
type Suggestion struct {
	Notation calibrate.Notation
	// Scale is pixels per foot at the sheet's resolution.
	Scale float64
	// FromOCR is set when the note was read from pixels rather than text.
	FromOCR bool
}

// SetScaleInput validates user input and assigns it to the active drawing.
// Invalid input is rejected before anything changes. Existing quantities
// keep the scale they were captured at.
func (w *Workspace) SetScaleInput(input string) error {
	d := w.reg.Active()
	if d == nil {
		w.notify("No drawing selected", SeverityWarning)
		return fmt.Errorf("set scale: %w", drawing.ErrNotFound)
	}
	scale, err := calibrate.ParseScale(input)
	if err != nil {
		w.notify(fmt.Sprintf("Invalid scale: %v", err), SeverityWarning)
		return err
	}
	return w.setScale(d, scale)
}

// SetScale assigns a numeric scale to the active drawing.
func (w *Workspace) SetScale(scale float64) error {
	d := w.reg.Active()
	if d == nil {
		return fmt.Errorf("set scale: %w", drawing.ErrNotFound)
	}
	if err := calibrate.Validate(scale); err != nil {
		w.notify(fmt.Sprintf("Invalid scale: %v", err), SeverityWarning)
		return err
	}
	return w.setScale(d, scale)
}

func (w *Workspace) setScale(d *drawing.Drawing, scale float64) error {
	if err := d.SetScale(scale); err != nil {
		return err
	}
	w.Emit(EventScaleChanged, scale)
	w.SetModified(true)
	return nil
}

// CalibrateFromMeasurement sets the active drawing's scale so that an
// existing length or diameter measurement equals knownFeet.
func (w *Workspace) CalibrateFromMeasurement(id string, knownFeet float64) error {
	d := w.reg.Active()
	if d == nil {
		return fmt.Errorf("measurement %s: %w", id, drawing.ErrNotFound)
	}
	ref, err := w.reference(d, id, knownFeet)
	if err != nil {
		return err
	}
	scale, err := calibrate.FromReference(ref)
	if err != nil {
		w.notify(fmt.Sprintf("Cannot calibrate: %v", err), SeverityWarning)
		return err
	}
	return w.setScale(d, scale)
}

// CalibrateFromMeasurements fits the active drawing's scale to several
// length or diameter measurements of known real length (measurement id to
// feet) by least squares. The fit is rejected before anything changes if
// any reference is unusable.
func (w *Workspace) CalibrateFromMeasurements(knownFeet map[string]float64) (calibrate.Fit, error) {
	d := w.reg.Active()
	if d == nil {
		return calibrate.Fit{}, fmt.Errorf("calibrate: %w", drawing.ErrNotFound)
	}
	if len(knownFeet) == 0 {
		w.notify("No reference lengths given", SeverityWarning)
		return calibrate.Fit{}, fmt.Errorf("calibrate: no references")
	}
	refs := make([]calibrate.Reference, 0, len(knownFeet))
	for _, m := range d.Measurements {
		feet, ok := knownFeet[m.ID]
		if !ok {
			continue
		}
		ref, err := w.reference(d, m.ID, feet)
		if err != nil {
			return calibrate.Fit{}, err
		}
		refs = append(refs, ref)
	}
	if len(refs) != len(knownFeet) {
		return calibrate.Fit{}, fmt.Errorf("calibrate: %d of %d references not on %s: %w",
			len(knownFeet)-len(refs), len(knownFeet), d.Name, drawing.ErrNotFound)
	}

	fit, err := calibrate.FitReferences(refs)
	if err != nil {
		w.notify(fmt.Sprintf("Cannot calibrate: %v", err), SeverityWarning)
		return calibrate.Fit{}, err
	}
	if err := w.setScale(d, fit.Scale); err != nil {
		return calibrate.Fit{}, err
	}
	w.notify(fmt.Sprintf("Scale %.4g px/ft from %d references (RMS error %.2f px)", fit.Scale, len(refs), fit.RMS), SeverityInfo)
	return fit, nil
}

// reference turns a length or diameter measurement into a calibration
// reference of the given real length.
func (w *Workspace) reference(d *drawing.Drawing, id string, feet float64) (calibrate.Reference, error) {
	m, ok := d.Measurement(id)
	if !ok {
		return calibrate.Reference{}, fmt.Errorf("measurement %s: %w", id, drawing.ErrNotFound)
	}
	if m.Mode() != measure.ModeLength && m.Mode() != measure.ModeDiameter {
		err := fmt.Errorf("calibrate with %s: only lengths and diameters can be references", m.Mode())
		w.notify(err.Error(), SeverityWarning)
		return calibrate.Reference{}, err
	}
	pts := m.Points()
	return calibrate.Reference{From: pts[0], To: pts[1], Feet: feet}, nil
}

// SuggestScale looks for a scale note on the active page drawing, first in
// its text layer and then with OCR, and calls done on the event goroutine.
// Nothing is applied; the caller decides whether to use the suggestion.
func (w *Workspace) SuggestScale(done func(Suggestion, error)) {
	d := w.reg.Active()
	if d == nil {
		done(Suggestion{}, fmt.Errorf("suggest scale: %w", drawing.ErrNotFound))
		return
	}
	ppi := d.PixelsPerInch
	if ppi <= 0 && d.Kind == drawing.KindPage {
		ppi = document.PointsPerInch * document.DefaultOversample
	}
	if ppi <= 0 {
		done(Suggestion{}, fmt.Errorf("%s has no known resolution", d.Name))
		return
	}

	var doc *document.Shared
	if d.Kind == drawing.KindPage {
		doc = d.Document()
	}
	index, sheet, reader := d.PageIndex, d.Bitmap, w.scales
	w.start(func() func() {
		s, err := suggest(w.ctx, doc, index, sheet, reader, ppi)
		return func() { done(s, err) }
	})
}

func suggest(ctx context.Context, doc *document.Shared, index int, sheet goimage.Image, reader ScaleReader, ppi float64) (Suggestion, error) {
	if doc != nil {
		text, err := doc.PageText(ctx, index)
		if err != nil {
			log.Printf("Workspace: page text unavailable: %v", err)
		} else if n, ok := calibrate.FindNotation(text); ok {
			return Suggestion{Notation: n, Scale: n.PixelsPerFoot(ppi)}, nil
		}
	}
	if reader == nil || sheet == nil {
		return Suggestion{}, ErrNoSuggestion
	}
	n, _, err := reader.ReadScale(ctx, sheet)
	if err != nil {
		return Suggestion{}, fmt.Errorf("%w: %v", ErrNoSuggestion, err)
	}
	return Suggestion{Notation: n, Scale: n.PixelsPerFoot(ppi), FromOCR: true}, nil
}
