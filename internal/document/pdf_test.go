package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"testing"
)

// buildPDF assembles a minimal uncompressed PDF with one page per content
// stream, each with the given media box size in points.
func buildPDF(width, height int, contents ...string) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	n := len(contents)
	kids := ""
	for i := 0; i < n; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, n))
	for i, c := range contents {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Contents %d 0 R >>", width, height, 4+2*i))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(c), c))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f\n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n\n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(offsets)+1, xref)
	return buf.Bytes()
}

func openTestPDF(t *testing.T, contents ...string) *PDF {
	t.Helper()
	r := NewPDFRasterizer(1.5)
	r.TempDir = t.TempDir()
	doc, err := r.Open(context.Background(), "plans.pdf", buildPDF(200, 100, contents...))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { doc.Close() })
	return doc.(*PDF)
}

func dark(c color.RGBA) bool {
	return c.R < 100 && c.G < 100 && c.B < 100
}

func TestPDFPageCountAndSize(t *testing.T) {
	doc := openTestPDF(t, "", "")
	if doc.PageCount() != 2 {
		t.Fatalf("PageCount = %d, want 2", doc.PageCount())
	}
	w, h, err := doc.PageSize(1)
	if err != nil {
		t.Fatal(err)
	}
	if w != 200 || h != 100 {
		t.Errorf("PageSize = %vx%v", w, h)
	}
}

func TestPDFRenderPageLinework(t *testing.T) {
	doc := openTestPDF(t, "0 0 0 RG 2 w 10 10 m 190 10 l S\n0 0 0 rg 20 20 100 50 re f")

	page, err := doc.RenderPage(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if page.Width != 300 || page.Height != 150 {
		t.Fatalf("page size = %dx%d, want 300x150", page.Width, page.Height)
	}
	if page.PixelsPerInch() != 108 {
		t.Errorf("PixelsPerInch = %v", page.PixelsPerInch())
	}

	// Filled rectangle spans x 30..180, y 45..120 after the y flip.
	if c := page.Image.RGBAAt(100, 80); !dark(c) {
		t.Errorf("rectangle interior = %v, want dark", c)
	}
	// Horizontal rule at PDF y=10 lands at pixel row 135.
	if c := page.Image.RGBAAt(150, 135); !dark(c) {
		t.Errorf("rule pixel = %v, want dark", c)
	}
	// Paper elsewhere.
	if c := page.Image.RGBAAt(250, 20); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("paper pixel = %v, want white", c)
	}
}

func TestPDFPageRange(t *testing.T) {
	doc := openTestPDF(t, "")
	if _, err := doc.RenderPage(context.Background(), 3); !errors.Is(err, ErrPageRange) {
		t.Errorf("expected ErrPageRange, got %v", err)
	}
	if _, err := doc.RenderPage(context.Background(), -1); !errors.Is(err, ErrPageRange) {
		t.Errorf("expected ErrPageRange, got %v", err)
	}
}

func TestPDFRenderCanceled(t *testing.T) {
	doc := openTestPDF(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := doc.RenderPage(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPDFCloseRemovesSpool(t *testing.T) {
	doc := openTestPDF(t, "")
	path := doc.path
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("spool file missing: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("spool file still present after close")
	}
	if _, err := doc.RenderPage(context.Background(), 0); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestOpenRejectsNonPDF(t *testing.T) {
	r := NewPDFRasterizer(0)
	if r.Oversample != DefaultOversample {
		t.Errorf("default oversample = %v", r.Oversample)
	}
	if _, err := r.Open(context.Background(), "a.png", []byte("\x89PNG\r\n\x1a\n")); err == nil {
		t.Error("expected error for PNG bytes")
	}
}

type fakeDoc struct {
	closed int
}

func (f *fakeDoc) PageCount() int                         { return 1 }
func (f *fakeDoc) PageSize(int) (float64, float64, error) { return 612, 792, nil }
func (f *fakeDoc) RenderPage(context.Context, int) (*Page, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeDoc) PageText(context.Context, int) (string, error) { return "", nil }
func (f *fakeDoc) Close() error                                  { f.closed++; return nil }

func TestSharedClosesOnLastRelease(t *testing.T) {
	doc := &fakeDoc{}
	s := NewShared(doc)
	s.Retain()
	s.Retain()
	s.Release()
	if doc.closed != 0 {
		t.Fatal("closed with a reference outstanding")
	}
	s.Release()
	if doc.closed != 1 || s.Refs() != 0 {
		t.Errorf("closed=%d refs=%d", doc.closed, s.Refs())
	}
}
