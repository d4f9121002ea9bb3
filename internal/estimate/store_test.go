package estimate

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"plan-takeoff/internal/export"
	"plan-takeoff/internal/measure"
	"plan-takeoff/pkg/geometry"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "inbox.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	return s
}

func samplePayload() export.Payload {
	return export.Payload{
		Drawing: export.DrawingInfo{ID: "d1", Name: "A-101", Trade: "Framing", Page: "3", Scale: 12},
		Measurements: []export.Item{
			{ID: "m1", Label: "Wall 1", Mode: measure.ModeLength, Quantity: 12.5, Units: "ft",
				Points: []geometry.Point2D{{X: 0, Y: 0}, {X: 150, Y: 0}}},
			{ID: "m2", Label: "Slab", Mode: measure.ModeArea, Quantity: 40, Units: "sq ft", Details: "Perimeter 26.00 ft, 3 vertices",
				Points: []geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 8}}},
			{ID: "m3", Label: "Wall 2", Mode: measure.ModeLength, Quantity: 2.5, Units: "ft",
				Points: []geometry.Point2D{{X: 0, Y: 0}, {X: 30, Y: 0}}},
		},
	}
}

func TestReceiveAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	p := samplePayload()

	id, err := s.Receive(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	h, err := s.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(p, h.Payload, cmpopts.IgnoreFields(export.Payload{}, "SentAt")); diff != "" {
		t.Errorf("stored payload differs (-want +got):\n%s", diff)
	}
	if h.ReceivedAt.IsZero() || h.Payload.SentAt.IsZero() {
		t.Error("timestamps should be recorded")
	}
	want := map[string]float64{"ft": 15, "sq ft": 40}
	if diff := cmp.Diff(want, h.Totals()); diff != "" {
		t.Errorf("totals (-want +got):\n%s", diff)
	}
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	first, _ := s.Receive(ctx, samplePayload())
	p := samplePayload()
	p.Drawing.Name = "A-102"
	p.Measurements = p.Measurements[:1]
	second, _ := s.Receive(ctx, p)

	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %d entries", len(list))
	}
	if list[0].ID != second || list[1].ID != first {
		t.Error("list should be newest first")
	}
	if list[0].Items != 1 || list[1].Items != 3 || list[0].Drawing.Name != "A-102" {
		t.Errorf("summaries = %+v", list)
	}
}

func TestReceiveRejectsInvalid(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	tests := map[string]func(*export.Payload){
		"no name":      func(p *export.Payload) { p.Drawing.Name = "" },
		"empty":        func(p *export.Payload) { p.Measurements = nil },
		"bad arity":    func(p *export.Payload) { p.Measurements[1].Points = p.Measurements[1].Points[:2] },
		"unknown mode": func(p *export.Payload) { p.Measurements[0].Mode = measure.Mode(42) },
	}
	for name, mutate := range tests {
		p := samplePayload()
		mutate(&p)
		if _, err := s.Receive(ctx, p); !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("%s: err = %v, want ErrInvalidPayload", name, err)
		}
	}
	list, _ := s.List(ctx)
	if len(list) != 0 {
		t.Errorf("rejected payloads were stored: %d", len(list))
	}
}

func TestStoreHandoffMatchesWorkspaceCallback(t *testing.T) {
	s := openStore(t)
	var fn export.HandoffFunc = s.Handoff
	if err := export.Deliver(fn, samplePayload()); err != nil {
		t.Fatal(err)
	}
	list, _ := s.List(context.Background())
	if len(list) != 1 {
		t.Errorf("list = %d", len(list))
	}
}
