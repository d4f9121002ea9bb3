package main

import (
	"fmt"
	"log"

	"plan-takeoff/internal/app"
	"plan-takeoff/internal/document"
	"plan-takeoff/internal/drawing"
)

// headless is a workspace driven by a queue on the calling goroutine.
type headless struct {
	*app.Workspace
	q *app.Queue
}

func newHeadless(oversample float64, reader app.ScaleReader) *headless {
	q := app.NewQueue(16)
	ws := app.New(app.Options{
		Post:        q.Post,
		Rasterizer:  document.NewPDFRasterizer(oversample),
		ScaleReader: reader,
		Notify: func(msg string, sev app.Severity) {
			if sev != app.SeverityInfo {
				log.Printf("%s: %s", sev, msg)
			}
		},
	})
	return &headless{Workspace: ws, q: q}
}

// settle applies background results until none are pending.
func (h *headless) settle() {
	for h.Pending() > 0 {
		h.q.Next()
	}
}

// open adds path and activates the given 1-based page, waiting for its
// bitmap.
func (h *headless) open(path string, page int) (*drawing.Drawing, error) {
	if err := h.AddFile(path); err != nil {
		return nil, err
	}
	h.settle()

	ds := h.Drawings(drawing.Query{})
	if len(ds) == 0 {
		return nil, fmt.Errorf("%s: no drawings", path)
	}
	if page < 1 || page > len(ds) {
		return nil, fmt.Errorf("page %d out of range 1-%d", page, len(ds))
	}
	d := ds[page-1]
	if err := h.Select(d.ID); err != nil {
		return nil, err
	}
	h.settle()
	if d.LoadErr != nil {
		return nil, d.LoadErr
	}
	if !d.Loaded() {
		return nil, fmt.Errorf("%s: bitmap not loaded", d.Name)
	}
	return d, nil
}
