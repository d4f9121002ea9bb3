package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// maxSVGSide bounds the rasterized size of SVG plans without a usable view box.
const maxSVGSide = 4096

// Bitmap is a decoded drawing surface with its natural pixel size.
type Bitmap struct {
	Image image.Image
	DPI   float64 // From TIFF metadata, zero when unknown
}

// Width returns the image width in pixels.
func (b *Bitmap) Width() int {
	if b == nil || b.Image == nil {
		return 0
	}
	return b.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (b *Bitmap) Height() int {
	if b == nil || b.Image == nil {
		return 0
	}
	return b.Image.Bounds().Dy()
}

// Decode decodes an image source into a bitmap. Document sources are
// rejected; they are rasterized page by page by the document package.
func Decode(ctx context.Context, src *Source) (*Bitmap, error) {
	if src.Released() {
		return nil, ErrReleased
	}
	if src.Kind() != KindImage {
		return nil, fmt.Errorf("%s is a %s: %w", src.Name, src.Kind(), ErrUnsupportedFormat)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := src.Bytes()
	if src.Format == FormatSVG {
		img, err := rasterizeSVG(data)
		if err != nil {
			return nil, fmt.Errorf("failed to rasterize %s: %w", src.Name, err)
		}
		return &Bitmap{Image: img}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", src.Name, err)
	}
	bm := &Bitmap{Image: img}
	if src.Format == FormatTIFF {
		if dpi, err := extractTIFFDPI(bytes.NewReader(data)); err == nil {
			bm.DPI = dpi
		}
	}
	return bm, nil
}

func rasterizeSVG(data []byte) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, err
	}
	w, h := int(icon.ViewBox.W), int(icon.ViewBox.H)
	if w <= 0 || h <= 0 {
		w, h = 1024, 1024
	}
	if w > maxSVGSide || h > maxSVGSide {
		f := float64(maxSVGSide) / float64(max(w, h))
		w, h = int(float64(w)*f), int(float64(h)*f)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(rgba, rgba.Bounds(), image.White, image.Point{}, xdraw.Src)
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)
	return rgba, nil
}

// Flatten composites img over an opaque background color so transparent
// plans display as paper.
func Flatten(img image.Image, bg color.Color) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(out, out.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)
	xdraw.Draw(out, out.Bounds(), img, b.Min, xdraw.Over)
	return out
}

// Scaled resamples img by factor. A factor of 1 returns an RGBA copy.
func Scaled(img image.Image, factor float64) *image.RGBA {
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*factor+0.5))
	h := max(1, int(float64(b.Dy())*factor+0.5))
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		xdraw.Draw(out, out.Bounds(), img, b.Min, xdraw.Src)
		return out
	}
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), img, b, xdraw.Src, nil)
	return out
}
