package document

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"math"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/format"
	"github.com/tsawler/tabula/graphicsstate"
	"github.com/tsawler/tabula/pages"
	"github.com/tsawler/tabula/reader"
	xdraw "golang.org/x/image/draw"

	"plan-takeoff/internal/render"
	"plan-takeoff/pkg/colorutil"
	"plan-takeoff/pkg/geometry"
)

// PDFRasterizer opens PDF documents with tabula.
type PDFRasterizer struct {
	Oversample float64
	// TempDir holds the spooled document bytes. Empty uses os.TempDir.
	TempDir string
}

// NewPDFRasterizer creates a rasterizer at the given oversampling factor.
// Non-positive values use DefaultOversample.
func NewPDFRasterizer(oversample float64) *PDFRasterizer {
	if !(oversample > 0) {
		oversample = DefaultOversample
	}
	return &PDFRasterizer{Oversample: oversample}
}

// Open spools data to a temporary file and opens it. The file is removed
// when the document is closed.
func (r *PDFRasterizer) Open(ctx context.Context, name string, data []byte) (Document, error) {
	if format.DetectFromMagic(data) != format.PDF {
		return nil, fmt.Errorf("%s: not a PDF document", name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.CreateTemp(r.TempDir, "takeoff-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to spool %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to spool %s: %w", name, err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}

	rd, err := reader.NewReader(f)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	n, err := rd.PageCount()
	if err != nil {
		rd.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to read page tree of %s: %w", name, err)
	}

	return &PDF{
		name:       name,
		path:       f.Name(),
		rd:         rd,
		pages:      n,
		oversample: r.Oversample,
	}, nil
}

// PDF is an open PDF document. The tabula reader is not safe for concurrent
// use, so page access is serialized.
type PDF struct {
	mu         sync.Mutex
	name       string
	path       string
	rd         *reader.Reader
	pages      int
	oversample float64
	closed     bool
}

// PageCount returns the number of pages.
func (d *PDF) PageCount() int {
	return d.pages
}

func (d *PDF) page(index int) (*pages.Page, []float64, error) {
	if d.closed {
		return nil, nil, ErrClosed
	}
	if index < 0 || index >= d.pages {
		return nil, nil, fmt.Errorf("page %d of %d: %w", index+1, d.pages, ErrPageRange)
	}
	p, err := d.rd.GetPage(index)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load page %d: %w", index+1, err)
	}
	box, err := p.MediaBox()
	if err != nil || len(box) < 4 {
		// US Letter when the box is missing or malformed.
		box = []float64{0, 0, 612, 792}
	}
	return p, box, nil
}

// PageSize returns the media box size of a page in points.
func (d *PDF) PageSize(index int) (float64, float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, box, err := d.page(index)
	if err != nil {
		return 0, 0, err
	}
	return math.Abs(box[2] - box[0]), math.Abs(box[3] - box[1]), nil
}

// RenderPage rasterizes a page: white paper, then the largest embedded
// image scaled to the page (scanned sheets), then stroked and filled
// linework from the content streams.
func (d *PDF) RenderPage(ctx context.Context, index int) (*Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	p, box, err := d.page(index)
	if err != nil {
		return nil, err
	}
	wPt, hPt := math.Abs(box[2]-box[0]), math.Abs(box[3]-box[1])
	w := int(math.Ceil(wPt * d.oversample))
	h := int(math.Ceil(hPt * d.oversample))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("page %d has an empty media box", index+1)
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(out, out.Bounds(), image.NewUniform(colorutil.White), image.Point{}, xdraw.Src)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.drawScan(out, p); err != nil {
		log.Printf("Document: %s page %d: embedded image skipped: %v", d.name, index+1, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := d.content(p)
	if err != nil {
		return nil, err
	}
	if len(content) > 0 {
		ge := graphicsstate.NewGraphicsExtractor()
		if err := ge.ExtractFromBytes(content); err != nil {
			return nil, fmt.Errorf("failed to parse page %d graphics: %w", index+1, err)
		}
		t := pageTransform{x0: box[0], y1: box[3], scale: d.oversample}
		drawLinework(out, t, ge.GetRectangles(), ge.GetLines())
	}

	log.Printf("Document: rasterized %s page %d (%dx%d) in %s", d.name, index+1, w, h, time.Since(start).Round(time.Millisecond))
	return &Page{
		Index:      index,
		Image:      out,
		Width:      w,
		Height:     h,
		WidthPt:    wPt,
		HeightPt:   hPt,
		Oversample: d.oversample,
	}, nil
}

// PageText returns the text fragments of a page joined in reading order.
func (d *PDF) PageText(ctx context.Context, index int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, _, err := d.page(index)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	frags, err := d.rd.ExtractTextFragments(p)
	if err != nil {
		return "", fmt.Errorf("failed to extract text of page %d: %w", index+1, err)
	}

	// Top-to-bottom, then left-to-right; PDF y grows upward.
	sort.SliceStable(frags, func(i, j int) bool {
		if math.Abs(frags[i].Y-frags[j].Y) > 2 {
			return frags[i].Y > frags[j].Y
		}
		return frags[i].X < frags[j].X
	})
	var sb strings.Builder
	lastY := math.NaN()
	for _, f := range frags {
		if !math.IsNaN(lastY) {
			if math.Abs(f.Y-lastY) > 2 {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(f.Text)
		lastY = f.Y
	}
	return sb.String(), nil
}

// Close closes the reader and removes the spooled file.
func (d *PDF) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	err := d.rd.Close()
	if rmErr := os.Remove(d.path); rmErr != nil && err == nil && !os.IsNotExist(rmErr) {
		err = rmErr
	}
	return err
}

func (d *PDF) content(p *pages.Page) ([]byte, error) {
	objs, err := p.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to get contents: %w", err)
	}
	var all []byte
	for _, obj := range objs {
		stream, ok := obj.(*core.Stream)
		if !ok {
			continue
		}
		data, err := stream.Decode()
		if err != nil {
			return nil, fmt.Errorf("failed to decode content stream: %w", err)
		}
		all = append(all, data...)
		all = append(all, '\n')
	}
	return all, nil
}

// drawScan scales the largest image on the page over the whole page. Plan
// sets exported from scanners are one full-sheet image per page.
func (d *PDF) drawScan(dst *image.RGBA, p *pages.Page) error {
	imgs, err := d.rd.ExtractPageImages(p)
	if err != nil {
		return err
	}
	best := -1
	for i, img := range imgs {
		if best < 0 || img.Width*img.Height > imgs[best].Width*imgs[best].Height {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	data, err := imgs[best].ToPNG()
	if err != nil {
		return err
	}
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return nil
}

// pageTransform maps PDF user space (origin bottom-left) to bitmap pixels.
type pageTransform struct {
	x0, y1 float64
	scale  float64
}

func (t pageTransform) apply(x, y float64) geometry.Point2D {
	return geometry.Point2D{X: (x - t.x0) * t.scale, Y: (t.y1 - y) * t.scale}
}

func rgb(c [3]float64) color.RGBA {
	return color.RGBA{R: unit(c[0]), G: unit(c[1]), B: unit(c[2]), A: 255}
}

func unit(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func drawLinework(dst *image.RGBA, t pageTransform, rects []graphicsstate.ExtractedRectangle, lines []graphicsstate.ExtractedLine) {
	for _, r := range rects {
		corners := []geometry.Point2D{
			t.apply(r.BBox.X, r.BBox.Y),
			t.apply(r.BBox.X+r.BBox.Width, r.BBox.Y),
			t.apply(r.BBox.X+r.BBox.Width, r.BBox.Y+r.BBox.Height),
			t.apply(r.BBox.X, r.BBox.Y+r.BBox.Height),
		}
		if r.IsFilled {
			render.FillPolygon(dst, corners, rgb(r.FillColor))
		}
		if r.IsStroked {
			render.StrokePolygon(dst, corners, strokeWidth(r.StrokeWidth, t.scale), rgb(r.StrokeColor))
		}
	}
	for _, l := range lines {
		render.StrokeLine(dst, t.apply(l.Start.X, l.Start.Y), t.apply(l.End.X, l.End.Y), strokeWidth(l.Width, t.scale), rgb(l.Color))
	}
}

// strokeWidth converts a PDF line width to pixels. Zero-width lines are
// hairlines and still get one device pixel.
func strokeWidth(w, scale float64) float64 {
	return math.Max(1, w*scale)
}
