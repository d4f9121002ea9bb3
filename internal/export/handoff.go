package export

import (
	"fmt"
	"time"

	"plan-takeoff/internal/measure"
	"plan-takeoff/pkg/geometry"
)

// DrawingInfo identifies the drawing a payload came from.
type DrawingInfo struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Trade string  `json:"trade,omitempty"`
	Floor string  `json:"floor,omitempty"`
	Page  string  `json:"page,omitempty"`
	Scale float64 `json:"scale"`
}

// Item is one measurement in a handoff payload.
type Item struct {
	ID       string             `json:"id"`
	Label    string             `json:"label"`
	Mode     measure.Mode       `json:"mode"`
	Quantity float64            `json:"quantity"`
	Units    string             `json:"units"`
	Details  string             `json:"details,omitempty"`
	Points   []geometry.Point2D `json:"points"`
}

// Payload is what the estimate receives.
type Payload struct {
	Drawing      DrawingInfo `json:"drawing"`
	Measurements []Item      `json:"measurements"`
	SentAt       time.Time   `json:"sent_at"`
}

// HandoffFunc consumes a payload.
type HandoffFunc func(Payload) error

// NewPayload copies the measurements so the receiver cannot alias the
// drawing's collection.
func NewPayload(info DrawingInfo, ms []*measure.Measurement) (Payload, error) {
	if len(ms) == 0 {
		return Payload{}, ErrNothingToExport
	}
	items := make([]Item, len(ms))
	for i, m := range ms {
		items[i] = Item{
			ID:       m.ID,
			Label:    m.Label,
			Mode:     m.Mode(),
			Quantity: m.Quantity,
			Units:    m.Units,
			Details:  m.Details,
			Points:   append([]geometry.Point2D(nil), m.Points()...),
		}
	}
	return Payload{Drawing: info, Measurements: items, SentAt: time.Now().UTC()}, nil
}

// Deliver calls fn with p and turns a panic into an error.
func Deliver(fn HandoffFunc, p Payload) (err error) {
	if fn == nil {
		return fmt.Errorf("no handoff target configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handoff panicked: %v", r)
		}
	}()
	if err := fn(p); err != nil {
		return fmt.Errorf("handoff failed: %w", err)
	}
	return nil
}
