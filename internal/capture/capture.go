// Package capture implements the pointer-driven state machine that collects
// points for a measurement and finalizes it into a geometry payload.
package capture

import (
	"errors"
	"fmt"

	"plan-takeoff/internal/measure"
	"plan-takeoff/pkg/geometry"
)

// ErrTooFewPoints is returned when an area capture is finished before it has
// three vertices.
var ErrTooFewPoints = errors.New("area needs at least 3 points")

// State is the capture machine state.
type State int

const (
	Idle State = iota
	Collecting
)

func (s State) String() string {
	if s == Collecting {
		return "collecting"
	}
	return "idle"
}

// Draft is a snapshot of the in-progress capture for rendering.
type Draft struct {
	Mode       measure.Mode
	Points     []geometry.Point2D
	Preview    geometry.Point2D
	HasPreview bool
}

// Machine collects drawing-space points for the current mode. It is not safe
// for concurrent use; callers drive it from the event goroutine.
type Machine struct {
	mode    measure.Mode
	state   State
	points  []geometry.Point2D
	preview geometry.Point2D
	hasPrev bool
}

// New creates an idle machine in length mode.
func New() *Machine {
	return &Machine{mode: measure.ModeLength}
}

// Mode returns the current capture mode.
func (m *Machine) Mode() measure.Mode {
	return m.mode
}

// State returns the current machine state.
func (m *Machine) State() State {
	return m.state
}

// SetMode switches the capture mode, discarding any draft in progress.
func (m *Machine) SetMode(mode measure.Mode) {
	if mode == m.mode {
		return
	}
	m.mode = mode
	m.Reset()
}

// PointerDown records a primary pointer press at drawing-space point p.
// It returns the finalized geometry when the press completes a count,
// length or diameter capture, and nil otherwise.
func (m *Machine) PointerDown(p geometry.Point2D) (measure.Geometry, error) {
	if m.mode == measure.ModeCount {
		m.Reset()
		return measure.NewGeometry(measure.ModeCount, []geometry.Point2D{p})
	}

	if m.mode == measure.ModeArea && len(m.points) > 0 && m.points[len(m.points)-1] == p {
		// The second press of a double interaction lands on the same spot.
		return nil, nil
	}

	m.state = Collecting
	m.points = append(m.points, p)
	m.preview = p
	m.hasPrev = true

	if need := measure.RequiredPoints(m.mode); need > 0 && len(m.points) == need {
		return m.finalize()
	}
	return nil, nil
}

// PointerMove updates the preview point. It never changes collected points.
// It reports whether the caller should redraw.
func (m *Machine) PointerMove(p geometry.Point2D) bool {
	if m.state != Collecting && m.mode != measure.ModeCount {
		return false
	}
	m.preview = p
	m.hasPrev = true
	return true
}

// Finish completes an area capture. With fewer than three points it returns
// ErrTooFewPoints and leaves the draft untouched. In other modes, or when
// idle, it does nothing.
func (m *Machine) Finish() (measure.Geometry, error) {
	if m.mode != measure.ModeArea || m.state != Collecting {
		return nil, nil
	}
	if len(m.points) < 3 {
		return nil, fmt.Errorf("%d of 3 points placed: %w", len(m.points), ErrTooFewPoints)
	}
	return m.finalize()
}

// Cancel discards the draft. It reports whether a draft was discarded.
func (m *Machine) Cancel() bool {
	if m.state != Collecting {
		return false
	}
	m.Reset()
	return true
}

// Reset returns to Idle and clears all draft state, keeping the mode.
func (m *Machine) Reset() {
	m.state = Idle
	m.points = nil
	m.preview = geometry.Point2D{}
	m.hasPrev = false
}

// Draft returns a copy of the current draft, or nil when nothing is drawn.
func (m *Machine) Draft() *Draft {
	if m.state != Collecting && !(m.mode == measure.ModeCount && m.hasPrev) {
		return nil
	}
	pts := make([]geometry.Point2D, len(m.points))
	copy(pts, m.points)
	return &Draft{
		Mode:       m.mode,
		Points:     pts,
		Preview:    m.preview,
		HasPreview: m.hasPrev,
	}
}

func (m *Machine) finalize() (measure.Geometry, error) {
	g, err := measure.NewGeometry(m.mode, m.points)
	m.Reset()
	return g, err
}
