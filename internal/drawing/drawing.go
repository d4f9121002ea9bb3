// Package drawing holds the plan sheets of a takeoff and the measurements
// captured on each of them.
package drawing

import (
	"errors"
	"fmt"
	goimage "image"

	"github.com/google/uuid"

	"plan-takeoff/internal/calibrate"
	"plan-takeoff/internal/document"
	"plan-takeoff/internal/image"
	"plan-takeoff/internal/measure"
)

var (
	// ErrNotFound is returned when an id does not name a drawing or measurement.
	ErrNotFound = errors.New("not found")
	// ErrNoSource is returned when a drawing has nothing to load a bitmap from.
	ErrNoSource = errors.New("drawing has no source")
)

// Kind distinguishes standalone images from rendered document pages.
type Kind int

const (
	KindImage Kind = iota
	KindPage
)

func (k Kind) String() string {
	if k == KindPage {
		return "page"
	}
	return "image"
}

// MarshalText encodes the kind as "image" or "page".
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes "image" or "page".
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "image", "":
		*k = KindImage
	case "page":
		*k = KindPage
	default:
		return fmt.Errorf("unknown drawing kind %q", b)
	}
	return nil
}

// Metadata is the free-text description of a drawing.
type Metadata struct {
	Name  string `json:"name"`
	Trade string `json:"trade,omitempty"`
	Floor string `json:"floor,omitempty"`
	Page  string `json:"page,omitempty"`
}

// Drawing is one plan sheet: a bitmap source, its calibration, and the
// measurements taken on it.
type Drawing struct {
	ID string
	Metadata
	Kind Kind

	// SourcePath is the file the drawing was opened from, if any.
	SourcePath string
	// PageIndex is the zero-based page for KindPage drawings.
	PageIndex int

	// Scale is pixels per foot.
	Scale float64

	// Natural size in pixels, zero until the bitmap has loaded.
	Width  int
	Height int
	// PixelsPerInch of the rendered bitmap, zero when unknown.
	PixelsPerInch float64

	// Bitmap is the cached decoded or rasterized sheet.
	Bitmap *goimage.RGBA
	// LoadErr records why the bitmap could not be produced.
	LoadErr error

	Measurements []*measure.Measurement

	source   *image.Source
	doc      *document.Shared
	labels   *measure.Labeler
	released bool
}

func newDrawing(meta Metadata, kind Kind) *Drawing {
	return &Drawing{
		ID:       uuid.NewString(),
		Metadata: meta,
		Kind:     kind,
		Scale:    1,
		labels:   measure.NewLabeler(),
	}
}

// NewImage wraps a raster or SVG source. The drawing takes ownership of src.
func NewImage(src *image.Source) *Drawing {
	d := newDrawing(Metadata{Name: src.Name}, KindImage)
	d.SourcePath = src.Path
	d.source = src
	return d
}

// NewPage creates a drawing for one page of a shared document. The drawing
// retains doc and releases it when removed.
func NewPage(doc *document.Shared, name string, index int) *Drawing {
	d := newDrawing(Metadata{
		Name: fmt.Sprintf("%s - Page %d", name, index+1),
		Page: fmt.Sprintf("%d", index+1),
	}, KindPage)
	d.PageIndex = index
	doc.Retain()
	d.doc = doc
	return d
}

// Source returns the image source of a KindImage drawing.
func (d *Drawing) Source() *image.Source {
	return d.source
}

// Document returns the shared document of a KindPage drawing.
func (d *Drawing) Document() *document.Shared {
	return d.doc
}

// Loaded reports whether the bitmap is available.
func (d *Drawing) Loaded() bool {
	return d.Bitmap != nil
}

// SetBitmap stores a loaded bitmap and its natural size.
func (d *Drawing) SetBitmap(bmp *goimage.RGBA, ppi float64) {
	d.Bitmap = bmp
	d.LoadErr = nil
	if bmp != nil {
		d.Width = bmp.Bounds().Dx()
		d.Height = bmp.Bounds().Dy()
	}
	if ppi > 0 {
		d.PixelsPerInch = ppi
	}
}

// SetScale validates and assigns a new scale. Existing quantities are kept.
func (d *Drawing) SetScale(scale float64) error {
	if err := calibrate.Validate(scale); err != nil {
		return err
	}
	d.Scale = scale
	return nil
}

// AddMeasurement finalizes g against the current scale with the next
// sequential label for its mode.
func (d *Drawing) AddMeasurement(g measure.Geometry, style measure.Style) (*measure.Measurement, error) {
	m, err := measure.New(g, d.labels.Next(g.Mode()), d.Scale, style)
	if err != nil {
		return nil, err
	}
	d.Measurements = append(d.Measurements, m)
	return m, nil
}

// RestoreMeasurement appends a measurement loaded from storage without
// recomputing it.
func (d *Drawing) RestoreMeasurement(m *measure.Measurement) {
	d.labels.Observe(m.Mode(), m.Label)
	d.Measurements = append(d.Measurements, m)
}

// Measurement looks up a measurement by id.
func (d *Drawing) Measurement(id string) (*measure.Measurement, bool) {
	for _, m := range d.Measurements {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// RemoveMeasurement deletes a measurement, keeping the order of the rest.
func (d *Drawing) RemoveMeasurement(id string) bool {
	for i, m := range d.Measurements {
		if m.ID == id {
			d.Measurements = append(d.Measurements[:i], d.Measurements[i+1:]...)
			return true
		}
	}
	return false
}

// RenameMeasurement changes a measurement label.
func (d *Drawing) RenameMeasurement(id, label string) error {
	m, ok := d.Measurement(id)
	if !ok {
		return fmt.Errorf("measurement %s: %w", id, ErrNotFound)
	}
	m.Label = label
	return nil
}

// StyleMeasurement changes the marker style of a measurement.
func (d *Drawing) StyleMeasurement(id string, style measure.Style) error {
	m, ok := d.Measurement(id)
	if !ok {
		return fmt.Errorf("measurement %s: %w", id, ErrNotFound)
	}
	m.SetStyle(style)
	return nil
}

// Totals sums quantities per mode.
func (d *Drawing) Totals() map[measure.Mode]float64 {
	return measure.Totals(d.Measurements)
}

// ReplaceSource swaps in new bytes for an image drawing after its file
// changed on disk. The old source and cached bitmap are released.
func (d *Drawing) ReplaceSource(src *image.Source) {
	if d.source != nil {
		d.source.Release()
	}
	d.source = src
	d.Bitmap = nil
}

// ReplaceDocument moves a page drawing onto a reopened document.
func (d *Drawing) ReplaceDocument(doc *document.Shared) {
	doc.Retain()
	if d.doc != nil {
		_ = d.doc.Release()
	}
	d.doc = doc
	d.Bitmap = nil
}

// Release frees the source and cached bitmap. It is safe to call twice.
func (d *Drawing) Release() {
	if d.released {
		return
	}
	d.released = true
	d.Bitmap = nil
	if d.source != nil {
		d.source.Release()
	}
	if d.doc != nil {
		_ = d.doc.Release()
	}
}

// Released reports whether Release has been called.
func (d *Drawing) Released() bool {
	return d.released
}
