package app

import (
	"plan-takeoff/internal/capture"
	"plan-takeoff/internal/measure"
	"plan-takeoff/internal/viewport"
	"plan-takeoff/pkg/geometry"
)

// Pick distances in screen pixels, so picking feels the same at every zoom.
const (
	hitTolerance = 6.0
	markerHit    = 10.0
)

// SecondaryPress cancels a draft in progress. With no draft it selects the
// measurement under the pointer, or clears the selection.
func (w *Workspace) SecondaryPress(screen geometry.Point2D) {
	if w.capture.State() == capture.Collecting {
		w.Cancel()
		return
	}
	id := ""
	if m, ok := w.MeasurementAt(screen); ok {
		id = m.ID
	}
	w.SelectMeasurement(id)
}

// MeasurementAt returns the topmost measurement of the active drawing under
// a screen position. Later measurements are drawn on top and win.
func (w *Workspace) MeasurementAt(screen geometry.Point2D) (*measure.Measurement, bool) {
	d := w.reg.Active()
	if d == nil {
		return nil, false
	}
	t := w.view.Transform()
	for i := len(d.Measurements) - 1; i >= 0; i-- {
		if m := d.Measurements[i]; hit(m, t, screen) {
			return m, true
		}
	}
	return nil, false
}

func hit(m *measure.Measurement, t viewport.Transform, p geometry.Point2D) bool {
	pts := m.Points()
	for i := range pts {
		pts[i] = t.DrawingToScreen(pts[i])
	}

	switch m.Geometry.(type) {
	case measure.Count:
		return pts[0].Distance(p) <= markerHit
	case measure.Length, measure.Diameter:
		return geometry.SegmentDistance(p, pts[0], pts[1]) <= hitTolerance
	case measure.Area:
		for i := range pts {
			if geometry.SegmentDistance(p, pts[i], pts[(i+1)%len(pts)]) <= hitTolerance {
				return true
			}
		}
		return geometry.BoundingBox(pts).Contains(p) && geometry.PointInPolygon(p, pts)
	}
	return false
}
