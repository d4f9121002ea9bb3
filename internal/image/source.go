// Package image provides upload classification, owned byte sources and
// bitmap decoding for plan drawings.
package image

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for uploads that are neither a supported
// raster image nor a document.
var ErrUnsupportedFormat = errors.New("unsupported file type")

// ErrReleased is returned when a released source is used.
var ErrReleased = errors.New("source already released")

// Kind classifies an upload.
type Kind int

const (
	KindUnknown  Kind = iota
	KindImage         // Raster or vector image, one drawing
	KindDocument      // Multi-page document, one drawing per page
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindDocument:
		return "document"
	default:
		return "unknown"
	}
}

// Format names a concrete upload encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatWebP Format = "webp"
	FormatTIFF Format = "tiff"
	FormatBMP  Format = "bmp"
	FormatSVG  Format = "svg"
	FormatPDF  Format = "pdf"
)

// Kind returns whether the format produces one image or a paged document.
func (f Format) Kind() Kind {
	switch f {
	case FormatPDF:
		return KindDocument
	case FormatPNG, FormatJPEG, FormatGIF, FormatWebP, FormatTIFF, FormatBMP, FormatSVG:
		return KindImage
	default:
		return KindUnknown
	}
}

var extensions = map[string]Format{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".gif":  FormatGIF,
	".webp": FormatWebP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".bmp":  FormatBMP,
	".svg":  FormatSVG,
	".pdf":  FormatPDF,
}

// Source is an owned upload: the raw bytes plus where they came from. The
// drawing that holds a Source releases it when the drawing is removed.
type Source struct {
	Name   string // Display name (file base name)
	Path   string // On-disk path, empty for in-memory uploads
	Format Format

	data     []byte
	released bool
}

// NewSource classifies data and wraps it as a Source. The magic bytes take
// precedence over the name's extension.
func NewSource(name string, data []byte) (*Source, error) {
	f := DetectFormat(name, data)
	if f.Kind() == KindUnknown {
		return nil, fmt.Errorf("%s: %w", filepath.Base(name), ErrUnsupportedFormat)
	}
	return &Source{Name: filepath.Base(name), Format: f, data: data}, nil
}

// Open reads a file from disk into a Source.
func Open(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	src, err := NewSource(path, data)
	if err != nil {
		return nil, err
	}
	src.Path = path
	return src, nil
}

// Kind returns the upload classification.
func (s *Source) Kind() Kind {
	return s.Format.Kind()
}

// Bytes returns the source data, or nil once released.
func (s *Source) Bytes() []byte {
	return s.data
}

// Size returns the byte length of the source.
func (s *Source) Size() int {
	return len(s.data)
}

// Release drops the owned bytes. It is safe to call more than once.
func (s *Source) Release() {
	s.data = nil
	s.released = true
}

// Released reports whether Release has been called.
func (s *Source) Released() bool {
	return s.released
}

// DetectFormat identifies an upload by magic bytes, falling back to the
// file extension for text formats such as SVG.
func DetectFormat(name string, data []byte) Format {
	if f := sniff(data); f != "" {
		return f
	}
	ext := strings.ToLower(filepath.Ext(name))
	if f, ok := extensions[ext]; ok {
		// Binary formats must match their magic; only SVG is trusted by name.
		if f == FormatSVG || len(data) == 0 {
			return f
		}
	}
	return ""
}

func sniff(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return FormatJPEG
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return FormatGIF
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return FormatWebP
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return FormatTIFF
	case bytes.HasPrefix(data, []byte("BM")):
		return FormatBMP
	case bytes.HasPrefix(data, []byte("%PDF")):
		return FormatPDF
	case looksLikeSVG(data):
		return FormatSVG
	}
	return ""
}

func looksLikeSVG(data []byte) bool {
	n := len(data)
	if n > 1024 {
		n = 1024
	}
	head := bytes.ToLower(bytes.TrimSpace(data[:n]))
	return bytes.Contains(head, []byte("<svg"))
}

// SupportedFormats returns the list of accepted upload extensions.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".tif", ".tiff", ".bmp", ".svg", ".pdf"}
}

// IsSupportedFormat checks if the given path has a supported extension.
func IsSupportedFormat(path string) bool {
	_, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// FileFilter returns a file filter string for use in file dialogs.
func FileFilter() string {
	return "Plans (*.pdf, *.png, *.jpg, *.jpeg, *.gif, *.webp, *.tif, *.tiff, *.bmp, *.svg)"
}
