package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
)

// InputOption mutates an OCR input generated from a page bitmap.
type InputOption func(*Input)

// WithLanguages sets language hints on the OCR input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithRegion sets the recognition region on the OCR input.
func WithRegion(region Region) InputOption {
	return func(in *Input) {
		if region.IsEmpty() {
			in.Region = nil
			return
		}
		in.Region = &region
	}
}

// WithDPI overrides the DPI value on the OCR input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithMetadata sets provider-specific metadata for the input.
func WithMetadata(metadata map[string]string) InputOption {
	return func(in *Input) {
		if len(metadata) == 0 {
			in.Metadata = nil
			return
		}
		in.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			in.Metadata[k] = v
		}
	}
}

// IsDegenerate reports whether img has nothing to recognize.
func IsDegenerate(img image.Image) bool {
	return img == nil || img.Bounds().Empty()
}

// InputFromBitmap encodes img as PNG and applies opts.
func InputFromBitmap(img image.Image, opts ...InputOption) (Input, error) {
	if IsDegenerate(img) {
		return Input{}, errors.New("bitmap is empty")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Input{}, fmt.Errorf("encode bitmap: %w", err)
	}
	b := img.Bounds()
	in := Input{
		Image:  buf.Bytes(),
		Format: ImageFormatPNG,
		Width:  b.Dx(),
		Height: b.Dy(),
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in, nil
}
