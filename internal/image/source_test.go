package image

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/tiff"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"plan.png", []byte("\x89PNG\r\n\x1a\nrest"), FormatPNG},
		{"plan.bin", []byte{0xFF, 0xD8, 0xFF, 0xE0}, FormatJPEG},
		{"a.gif", []byte("GIF89a..."), FormatGIF},
		{"a", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), FormatWebP},
		{"scan.tif", []byte("II*\x00\x08\x00\x00\x00"), FormatTIFF},
		{"set.pdf", []byte("%PDF-1.7\n"), FormatPDF},
		{"x.svg", []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"/>`), FormatSVG},
		{"mislabeled.png", []byte("%PDF-1.4"), FormatPDF},
		{"notes.txt", []byte("hello"), ""},
		{"fake.png", []byte("not really a png"), ""},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.name, tt.data); got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNewSourceRejectsUnsupported(t *testing.T) {
	_, err := NewSource("budget.xlsx", []byte("PK\x03\x04"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSourceRelease(t *testing.T) {
	src, err := NewSource("/tmp/plans/a.png", encodePNG(t, 4, 4))
	if err != nil {
		t.Fatal(err)
	}
	if src.Name != "a.png" || src.Kind() != KindImage {
		t.Errorf("unexpected source %+v", src)
	}
	src.Release()
	src.Release()
	if !src.Released() || src.Bytes() != nil {
		t.Error("release did not drop bytes")
	}
	if _, err := Decode(context.Background(), src); !errors.Is(err, ErrReleased) {
		t.Errorf("decode after release: %v", err)
	}
}

func TestDecodePNG(t *testing.T) {
	src, _ := NewSource("a.png", encodePNG(t, 40, 30))
	bm, err := Decode(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if bm.Width() != 40 || bm.Height() != 30 {
		t.Errorf("size = %dx%d", bm.Width(), bm.Height())
	}
}

func TestDecodeTIFF(t *testing.T) {
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, image.NewGray(image.Rect(0, 0, 12, 8)), nil); err != nil {
		t.Fatal(err)
	}
	src, err := NewSource("scan.tiff", buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	bm, err := Decode(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if bm.Width() != 12 || bm.Height() != 8 {
		t.Errorf("size = %dx%d", bm.Width(), bm.Height())
	}
}

func TestDecodeSVG(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 120 80" width="120" height="80">
<rect x="10" y="10" width="50" height="30" fill="#000000"/></svg>`
	src, err := NewSource("detail.svg", []byte(svg))
	if err != nil {
		t.Fatal(err)
	}
	bm, err := Decode(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if bm.Width() != 120 || bm.Height() != 80 {
		t.Fatalf("size = %dx%d", bm.Width(), bm.Height())
	}
	r, _, _, _ := bm.Image.At(30, 20).RGBA()
	if r > 0x1000 {
		t.Errorf("expected filled rect pixel to be dark, got r=%#x", r)
	}
	r, _, _, _ = bm.Image.At(100, 70).RGBA()
	if r < 0xf000 {
		t.Errorf("expected background to be white, got r=%#x", r)
	}
}

func TestDecodeRejectsDocument(t *testing.T) {
	src, _ := NewSource("set.pdf", []byte("%PDF-1.7\n"))
	if _, err := Decode(context.Background(), src); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestScaledAndFlatten(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 6))
	out := Scaled(img, 1.5)
	if out.Bounds().Dx() != 15 || out.Bounds().Dy() != 9 {
		t.Errorf("scaled size = %v", out.Bounds())
	}
	flat := Flatten(img, color.White)
	if c := flat.RGBAAt(3, 3); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("flatten pixel = %v", c)
	}
}
