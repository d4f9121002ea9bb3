// Package ocr reads printed scale notes from rasterized plan sheets.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"

	"plan-takeoff/internal/calibrate"
)

// PlanChars is the character set found in title-block scale notes.
const PlanChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ/\"'=-:. "

// ErrNoScale is returned when no scale notation could be read.
var ErrNoScale = errors.New("no scale notation found")

// Engine provides OCR functionality using Tesseract.
// ReadScale may be called from several goroutines; RecognizeRegion may not.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewEngine creates a new OCR engine.
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Scale notes are not dictionary words.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// RecognizeRegion performs OCR on a region of an image.
func (e *Engine) RecognizeRegion(img gocv.Mat, bounds image.Rectangle) (string, error) {
	if img.Empty() {
		return "", fmt.Errorf("empty image")
	}

	bounds = bounds.Intersect(image.Rect(0, 0, img.Cols(), img.Rows()))
	if bounds.Empty() {
		return "", fmt.Errorf("invalid region bounds")
	}

	region := img.Region(bounds)
	defer region.Close()

	processed := preprocessForOCR(region)
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	// Title blocks are sparse text scattered in boxes.
	if err := e.client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return "", fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := e.client.SetWhitelist(PlanChars); err != nil {
		return "", fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.ToUpper(strings.TrimSpace(text)), nil
}

// ReadScale looks for a scale notation in the title-block areas of a sheet,
// then in the whole sheet. It returns the notation and the text it came from.
func (e *Engine) ReadScale(ctx context.Context, sheet image.Image) (calibrate.Notation, string, error) {
	mat, err := gocv.ImageToMatRGB(sheet)
	if err != nil {
		return calibrate.Notation{}, "", fmt.Errorf("failed to convert sheet: %w", err)
	}
	defer mat.Close()

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range TitleBlockRegions(image.Rect(0, 0, mat.Cols(), mat.Rows())) {
		if err := ctx.Err(); err != nil {
			return calibrate.Notation{}, "", err
		}
		text, err := e.RecognizeRegion(mat, r)
		if err != nil {
			continue
		}
		if n, ok := calibrate.FindNotation(text); ok {
			return n, text, nil
		}
	}
	return calibrate.Notation{}, "", ErrNoScale
}

// TitleBlockRegions returns the sheet areas to search in order: the bottom
// strip, the right strip, then the whole sheet.
func TitleBlockRegions(sheet image.Rectangle) []image.Rectangle {
	w, h := sheet.Dx(), sheet.Dy()
	return []image.Rectangle{
		image.Rect(sheet.Min.X, sheet.Max.Y-h/4, sheet.Max.X, sheet.Max.Y),
		image.Rect(sheet.Max.X-w/5, sheet.Min.Y, sheet.Max.X, sheet.Max.Y),
		sheet,
	}
}

// preprocessForOCR prepares an image region for OCR.
func preprocessForOCR(region gocv.Mat) gocv.Mat {
	h, w := region.Rows(), region.Cols()

	// Small regions are upscaled so glyphs are tall enough for Tesseract.
	var scaled gocv.Mat
	if minDim := min(h, w); minDim < 150 {
		scale := 150.0 / float64(minDim)
		scaled = gocv.NewMat()
		gocv.Resize(region, &scaled, image.Point{}, scale, scale, gocv.InterpolationCubic)
	} else {
		scaled = region.Clone()
	}

	gray := gocv.NewMat()
	gocv.CvtColor(scaled, &gray, gocv.ColorRGBToGray)
	scaled.Close()

	binary := gocv.NewMat()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	gray.Close()

	// Tesseract expects dark text on light paper; invert reversed title blocks.
	whiteRatio := float64(gocv.CountNonZero(binary)) / float64(binary.Rows()*binary.Cols())
	if whiteRatio < 0.5 {
		gocv.BitwiseNot(binary, &binary)
	}

	result := gocv.NewMat()
	gocv.CvtColor(binary, &result, gocv.ColorGrayToBGR)
	binary.Close()
	return result
}
