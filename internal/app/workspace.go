package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"plan-takeoff/internal/capture"
	"plan-takeoff/internal/document"
	"plan-takeoff/internal/drawing"
	"plan-takeoff/internal/export"
	"plan-takeoff/internal/measure"
	"plan-takeoff/internal/render"
	"plan-takeoff/internal/viewport"
	"plan-takeoff/pkg/geometry"
	"plan-takeoff/pkg/watcher"
)

// Options configures a Workspace. Zero fields take defaults.
type Options struct {
	// Post runs fn on the event goroutine. Worker goroutines use it to hand
	// results back. Required.
	Post func(fn func())
	// Notify reports messages to the user. Defaults to LogNotifier.
	Notify Notifier
	// Rasterizer opens documents. Defaults to a PDF rasterizer.
	Rasterizer document.Rasterizer
	// Handoff receives exported payloads for the estimate.
	Handoff export.HandoffFunc
	// ScaleReader reads scale notes from sheet bitmaps when the page has no
	// text layer. Optional.
	ScaleReader ScaleReader
	// Watch enables reloading drawings whose source file changes.
	Watch bool
	// Precision is the number of decimals in CSV exports.
	Precision int
}

// Workspace is the takeoff core: every drawing, the active one, its draft
// and the viewport. Its methods must be called from the event goroutine.
type Workspace struct {
	events

	reg     *drawing.Registry
	capture *capture.Machine
	view    *viewport.Viewport

	countStyle measure.Style
	selected   string
	// restored ranks drawings of the last restored project by saved
	// position.
	restored map[string]int

	post       func(func())
	notify     Notifier
	rasterizer document.Rasterizer
	handoff    export.HandoffFunc
	scales     ScaleReader
	precision  int

	watcher *watcher.FileWatcher

	ctx     context.Context
	cancel  context.CancelFunc
	pending int
	closed  bool

	ProjectPath string
	Modified    bool
}

// New creates an empty workspace.
func New(opts Options) *Workspace {
	if opts.Post == nil {
		panic("app: Options.Post is required")
	}
	if opts.Notify == nil {
		opts.Notify = LogNotifier
	}
	if opts.Rasterizer == nil {
		opts.Rasterizer = document.NewPDFRasterizer(document.DefaultOversample)
	}
	if opts.Precision <= 0 {
		opts.Precision = export.Precision
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Workspace{
		reg:        drawing.NewRegistry(),
		capture:    capture.New(),
		view:       viewport.New(),
		countStyle: measure.DefaultStyle(),
		post:       opts.Post,
		notify:     opts.Notify,
		rasterizer: opts.Rasterizer,
		handoff:    opts.Handoff,
		scales:     opts.ScaleReader,
		precision:  opts.Precision,
		ctx:        ctx,
		cancel:     cancel,
	}
	w.view.OnChange(func(zoom float64) {
		w.Emit(EventZoomChanged, zoom)
	})

	if opts.Watch {
		fw, err := watcher.New(500 * time.Millisecond)
		if err != nil {
			log.Printf("Workspace: file watching disabled: %v", err)
		} else {
			w.watcher = fw
		}
	}
	return w
}

// Close releases every drawing and stops background work. Results that
// arrive afterwards are dropped.
func (w *Workspace) Close() {
	if w.closed {
		return
	}
	w.closed = true
	w.cancel()
	w.capture.Reset()
	w.reg.Close()
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
}

// Pending returns the number of background jobs whose results have not yet
// been applied.
func (w *Workspace) Pending() int {
	return w.pending
}

// SetModified marks the workspace as modified and emits an event.
func (w *Workspace) SetModified(modified bool) {
	w.Modified = modified
	w.Emit(EventModified, modified)
}

// Drawings lists drawings filtered and sorted by q.
func (w *Workspace) Drawings(q drawing.Query) []*drawing.Drawing {
	return w.reg.List(q)
}

// Drawing looks up a drawing by id.
func (w *Workspace) Drawing(id string) (*drawing.Drawing, bool) {
	return w.reg.Get(id)
}

// Active returns the active drawing or nil.
func (w *Workspace) Active() *drawing.Drawing {
	return w.reg.Active()
}

// Viewport exposes the zoom and surface origin.
func (w *Workspace) Viewport() *viewport.Viewport {
	return w.view
}

// Mode returns the capture mode.
func (w *Workspace) Mode() measure.Mode {
	return w.capture.Mode()
}

// Draft returns the in-progress capture, or nil.
func (w *Workspace) Draft() *capture.Draft {
	if w.reg.Active() == nil {
		return nil
	}
	return w.capture.Draft()
}

// Scene returns everything the renderer needs for the active drawing.
func (w *Workspace) Scene() render.Scene {
	s := render.Scene{View: w.view.Transform(), Selected: w.selected}
	d := w.reg.Active()
	if d == nil {
		return s
	}
	if d.Bitmap != nil {
		s.Background = d.Bitmap
	}
	s.Measurements = d.Measurements
	s.Draft = w.capture.Draft()
	return s
}

// Select activates a drawing. Selecting the active drawing does nothing;
// otherwise zoom and the draft are reset and the drawing is displayed.
func (w *Workspace) Select(id string) error {
	changed, err := w.reg.Select(id)
	if err != nil {
		return err
	}
	if changed {
		w.activeChanged()
	}
	return nil
}

// Remove deletes a drawing with its measurements and releases its source.
func (w *Workspace) Remove(id string) error {
	d, ok := w.reg.Get(id)
	if !ok {
		return fmt.Errorf("drawing %s: %w", id, drawing.ErrNotFound)
	}
	path := d.SourcePath
	changed, err := w.reg.Remove(id)
	if err != nil {
		return err
	}
	w.unwatch(path)
	w.Emit(EventDrawingsChanged, nil)
	if changed {
		w.activeChanged()
	}
	w.SetModified(true)
	return nil
}

// UpdateMetadata edits the free-text fields of a drawing.
func (w *Workspace) UpdateMetadata(id string, meta drawing.Metadata) error {
	if err := w.reg.UpdateMetadata(id, meta); err != nil {
		return err
	}
	w.Emit(EventDrawingsChanged, nil)
	w.SetModified(true)
	return nil
}

func (w *Workspace) activeChanged() {
	w.view.Reset()
	w.capture.Reset()
	w.selected = ""
	d := w.reg.Active()
	w.display(d)
	w.Emit(EventActiveChanged, d)
	w.Emit(EventDraftChanged, nil)
}

// SetMode switches the capture mode and discards any draft.
func (w *Workspace) SetMode(mode measure.Mode) {
	w.capture.SetMode(mode)
	w.Emit(EventDraftChanged, nil)
}

// SetCountStyle sets the marker style used for new count measurements.
func (w *Workspace) SetCountStyle(style measure.Style) {
	w.countStyle = style
}

// CountStyle returns the marker style for new count measurements.
func (w *Workspace) CountStyle() measure.Style {
	return w.countStyle
}

// SetSurfaceOrigin records where the drawing surface's top-left corner is on
// screen. Pointer positions are converted relative to it.
func (w *Workspace) SetSurfaceOrigin(p geometry.Point2D) {
	w.view.SetOrigin(p)
}

// PointerDown handles a primary press at a screen position.
func (w *Workspace) PointerDown(screen geometry.Point2D) {
	d := w.reg.Active()
	if d == nil {
		return
	}
	g, err := w.capture.PointerDown(w.view.ScreenToDrawing(screen))
	if err != nil {
		w.notify(err.Error(), SeverityWarning)
	}
	if g != nil {
		w.finalize(d, g)
	}
	w.Emit(EventDraftChanged, nil)
}

// PointerMove updates the preview point.
func (w *Workspace) PointerMove(screen geometry.Point2D) {
	if w.reg.Active() == nil {
		return
	}
	if w.capture.PointerMove(w.view.ScreenToDrawing(screen)) {
		w.Emit(EventDraftChanged, nil)
	}
}

// Finish completes an area capture. With too few points the user is warned
// and the draft is kept.
func (w *Workspace) Finish() {
	d := w.reg.Active()
	if d == nil {
		return
	}
	g, err := w.capture.Finish()
	if err != nil {
		w.notify(fmt.Sprintf("Area not finished: %v", err), SeverityWarning)
		return
	}
	if g != nil {
		w.finalize(d, g)
		w.Emit(EventDraftChanged, nil)
	}
}

// Cancel discards the draft.
func (w *Workspace) Cancel() {
	if w.capture.Cancel() {
		w.Emit(EventDraftChanged, nil)
	}
}

func (w *Workspace) finalize(d *drawing.Drawing, g measure.Geometry) {
	style := measure.DefaultStyle()
	if g.Mode() == measure.ModeCount {
		style = w.countStyle
	}
	m, err := d.AddMeasurement(g, style)
	if err != nil {
		w.notify(err.Error(), SeverityError)
		return
	}
	w.Emit(EventMeasurementsChanged, m)
	w.SetModified(true)
}

// ZoomIn, ZoomOut and ResetZoom step the viewport. Stored coordinates are
// not affected.
func (w *Workspace) ZoomIn()    { w.view.ZoomIn() }
func (w *Workspace) ZoomOut()   { w.view.ZoomOut() }
func (w *Workspace) ResetZoom() { w.view.Reset() }

// SelectMeasurement highlights a measurement; "" clears the selection.
func (w *Workspace) SelectMeasurement(id string) {
	if w.selected == id {
		return
	}
	w.selected = id
	w.Emit(EventSelectionChanged, id)
}

// Selected returns the highlighted measurement id.
func (w *Workspace) Selected() string {
	return w.selected
}

// RenameMeasurement changes the label of a measurement on the active drawing.
func (w *Workspace) RenameMeasurement(id, label string) error {
	d := w.reg.Active()
	if d == nil {
		return fmt.Errorf("measurement %s: %w", id, drawing.ErrNotFound)
	}
	if err := d.RenameMeasurement(id, label); err != nil {
		return err
	}
	w.Emit(EventMeasurementsChanged, nil)
	w.SetModified(true)
	return nil
}

// StyleMeasurement changes the marker of a measurement on the active drawing.
func (w *Workspace) StyleMeasurement(id string, style measure.Style) error {
	d := w.reg.Active()
	if d == nil {
		return fmt.Errorf("measurement %s: %w", id, drawing.ErrNotFound)
	}
	if err := d.StyleMeasurement(id, style); err != nil {
		return err
	}
	w.Emit(EventMeasurementsChanged, nil)
	w.SetModified(true)
	return nil
}

// DeleteMeasurement removes a measurement from the active drawing.
func (w *Workspace) DeleteMeasurement(id string) error {
	d := w.reg.Active()
	if d == nil || !d.RemoveMeasurement(id) {
		return fmt.Errorf("measurement %s: %w", id, drawing.ErrNotFound)
	}
	if w.selected == id {
		w.selected = ""
	}
	w.Emit(EventMeasurementsChanged, nil)
	w.SetModified(true)
	return nil
}

// Totals sums the active drawing's quantities per mode.
func (w *Workspace) Totals() map[measure.Mode]float64 {
	d := w.reg.Active()
	if d == nil {
		return map[measure.Mode]float64{}
	}
	return d.Totals()
}

// ExportCSV writes the active drawing's measurements to dir. Operator
// errors are reported as warnings and nothing is written.
func (w *Workspace) ExportCSV(dir string) (string, error) {
	d := w.reg.Active()
	if d == nil || len(d.Measurements) == 0 {
		w.notify("No measurements to export", SeverityWarning)
		return "", export.ErrNothingToExport
	}
	path, err := export.SaveCSV(dir, d.Name, d.Measurements, w.precision)
	if err != nil {
		w.notify(fmt.Sprintf("Export failed: %v", err), SeverityError)
		return "", err
	}
	w.notify(fmt.Sprintf("Exported %d measurements to %s", len(d.Measurements), filepath.Base(path)), SeverityInfo)
	return path, nil
}

// Payload builds the handoff payload for the active drawing.
func (w *Workspace) Payload() (export.Payload, error) {
	d := w.reg.Active()
	if d == nil {
		return export.Payload{}, export.ErrNothingToExport
	}
	return export.NewPayload(DrawingInfo(d), d.Measurements)
}

// DrawingInfo describes d for a handoff payload.
func DrawingInfo(d *drawing.Drawing) export.DrawingInfo {
	return export.DrawingInfo{
		ID:    d.ID,
		Name:  d.Name,
		Trade: d.Trade,
		Floor: d.Floor,
		Page:  d.Page,
		Scale: d.Scale,
	}
}

// ErrNoHandoffTarget is returned by Handoff when no receiver is configured.
var ErrNoHandoffTarget = errors.New("no handoff target configured")

// Handoff sends the active drawing's measurements to the estimate. The
// payload is built on the event goroutine and delivered on a worker; the
// outcome is reported once it is posted back. A failing or panicking
// callback is reported, never propagated as a panic.
func (w *Workspace) Handoff() error {
	p, err := w.Payload()
	if errors.Is(err, export.ErrNothingToExport) {
		w.notify("No measurements to send", SeverityWarning)
		return err
	}
	if err != nil {
		return err
	}
	if w.handoff == nil {
		w.notify(ErrNoHandoffTarget.Error(), SeverityError)
		return ErrNoHandoffTarget
	}
	deliver := w.handoff
	w.start(func() func() {
		err := export.Deliver(deliver, p)
		return func() {
			if err != nil {
				w.notify(err.Error(), SeverityError)
				return
			}
			w.notify(fmt.Sprintf("Sent %d measurements to the estimate", len(p.Measurements)), SeverityInfo)
		}
	})
	return nil
}
