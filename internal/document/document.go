// Package document turns multi-page plan documents into per-page bitmaps.
// It is the only place that knows about document internals; the rest of the
// application sees page counts and rendered pages.
package document

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
)

const (
	// DefaultOversample renders pages at 1.5x their point size so linework
	// stays crisp when zoomed in.
	DefaultOversample = 1.5
	// PointsPerInch is the document user-space unit density.
	PointsPerInch = 72.0
)

// ErrPageRange is returned for a page index outside the document.
var ErrPageRange = errors.New("page index out of range")

// ErrClosed is returned when a closed document is used.
var ErrClosed = errors.New("document closed")

// Page is one rasterized page.
type Page struct {
	Index  int // 0-based
	Image  *image.RGBA
	Width  int // Pixel size of Image
	Height int
	// WidthPt and HeightPt are the page size in points.
	WidthPt, HeightPt float64
	// Oversample is the pixels-per-point factor the page was rendered at.
	Oversample float64
}

// PixelsPerInch returns the bitmap resolution of the page.
func (p *Page) PixelsPerInch() float64 {
	return PointsPerInch * p.Oversample
}

// Document is an open multi-page document.
type Document interface {
	PageCount() int
	// PageSize returns the page size in points without rendering.
	PageSize(index int) (widthPt, heightPt float64, err error)
	// RenderPage rasterizes one page. It may run on any goroutine.
	RenderPage(ctx context.Context, index int) (*Page, error)
	// PageText returns the page's text layer, used to find scale notes.
	PageText(ctx context.Context, index int) (string, error)
	Close() error
}

// Rasterizer opens documents from raw bytes.
type Rasterizer interface {
	Open(ctx context.Context, name string, data []byte) (Document, error)
}

// Shared is a reference-counted Document. Every page drawing created from a
// document holds one reference; the document closes when the last one is
// released.
type Shared struct {
	Document
	refs atomic.Int32
}

// NewShared wraps doc with a reference count of zero.
func NewShared(doc Document) *Shared {
	return &Shared{Document: doc}
}

// Retain adds a reference.
func (s *Shared) Retain() {
	s.refs.Add(1)
}

// Release drops a reference and closes the document when none remain.
func (s *Shared) Release() error {
	if s.refs.Add(-1) == 0 {
		return s.Document.Close()
	}
	return nil
}

// Refs returns the current reference count.
func (s *Shared) Refs() int {
	return int(s.refs.Load())
}
