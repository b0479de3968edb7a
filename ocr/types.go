package ocr

import (
	"context"
	"errors"
	"strings"
)

// ErrDisconnected reports that the OCR backend is gone for good. Engines wrap
// it when the process or connection behind them can no longer serve requests.
var ErrDisconnected = errors.New("ocr: backend disconnected")

// ErrServiceClosed reports a request that reached a closed AsyncService.
var ErrServiceClosed = errors.New("ocr: service closed")

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
	ImageFormatTIFF ImageFormat = "image/tiff"
)

// Region describes a rectangular area in pixel coordinates with the origin in
// the upper-left corner of the image.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the region has non-positive dimensions.
func (r Region) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Input encapsulates a single image submitted for OCR.
type Input struct {
	// ID correlates the input with its Result.
	ID string
	// Image is the encoded image payload in the format specified by Format.
	Image  []byte
	Format ImageFormat
	// Width and Height are the pixel dimensions of the encoded image.
	Width  int
	Height int
	DPI    int
	// Languages holds trained-data hints (e.g., "eng", "deu").
	Languages []string
	// Region restricts recognition to a subsection of the image. Nil means the
	// full image should be processed.
	Region *Region
	// Metadata passes engine-specific knobs (e.g., Tesseract variables).
	Metadata map[string]string
}

// TextWord represents a single recognized token.
type TextWord struct {
	Text       string
	Bounds     Region
	Confidence float64
}

// TextLine groups words that share a baseline.
type TextLine struct {
	Text       string
	Bounds     Region
	Words      []TextWord
	Confidence float64
}

// TextBlock aggregates lines that form a logical block (paragraph, heading, etc).
type TextBlock struct {
	Text       string
	Bounds     Region
	Lines      []TextLine
	Confidence float64
}

// Result is the annotation produced for one image: recognized text regions in
// the image's pixel space. A Result without lines means nothing was found.
type Result struct {
	InputID   string
	PlainText string
	Blocks    []TextBlock
	Language  string
	// ImageWidth and ImageHeight echo the pixel size the regions refer to.
	ImageWidth  int
	ImageHeight int
}

// Lines flattens the block structure.
func (r *Result) Lines() []TextLine {
	if r == nil {
		return nil
	}
	var out []TextLine
	for _, b := range r.Blocks {
		out = append(out, b.Lines...)
	}
	return out
}

// IsEmpty reports whether the result carries no recognized text.
func (r *Result) IsEmpty() bool {
	if r == nil {
		return true
	}
	for _, l := range r.Lines() {
		if strings.TrimSpace(l.Text) != "" {
			return false
		}
	}
	return strings.TrimSpace(r.PlainText) == ""
}

// Engine is the simplest OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// Pinger is implemented by engines that can check backend availability
// without recognizing anything.
type Pinger interface {
	Ping(ctx context.Context) error
}
