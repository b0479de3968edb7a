package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"reflect"
	"testing"
)

func solid(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetGray(0, 0, color.Gray{Y: 0})
	return img
}

func TestInputFromBitmap(t *testing.T) {
	region := Region{X: 0, Y: 0, Width: 1, Height: 1}
	meta := map[string]string{"psm": "6"}

	in, err := InputFromBitmap(
		solid(4, 3),
		WithLanguages("eng", "spa"),
		WithRegion(region),
		WithDPI(300),
		WithMetadata(meta),
	)
	if err != nil {
		t.Fatalf("InputFromBitmap() error = %v", err)
	}
	if in.Format != ImageFormatPNG {
		t.Fatalf("unexpected format: %v", in.Format)
	}
	if in.Width != 4 || in.Height != 3 {
		t.Fatalf("unexpected size: %dx%d", in.Width, in.Height)
	}
	decoded, err := png.Decode(bytes.NewReader(in.Image))
	if err != nil {
		t.Fatalf("payload is not png: %v", err)
	}
	if decoded.Bounds().Dx() != 4 {
		t.Fatalf("decoded width = %d", decoded.Bounds().Dx())
	}
	if !reflect.DeepEqual(in.Languages, []string{"eng", "spa"}) {
		t.Fatalf("unexpected languages: %+v", in.Languages)
	}
	if in.Region == nil || *in.Region != region {
		t.Fatalf("unexpected region: %#v", in.Region)
	}
	if in.DPI != 300 {
		t.Fatalf("unexpected dpi: %d", in.DPI)
	}
	meta["psm"] = "7"
	if in.Metadata["psm"] != "6" {
		t.Fatalf("metadata was not copied: %+v", in.Metadata)
	}
}

func TestInputFromBitmapRejectsDegenerate(t *testing.T) {
	if _, err := InputFromBitmap(image.NewGray(image.Rect(0, 0, 0, 10))); err == nil {
		t.Fatalf("expected error for zero-width bitmap")
	}
	if !IsDegenerate(nil) {
		t.Fatalf("nil bitmap should be degenerate")
	}
}

func TestWithRegionClearsEmpty(t *testing.T) {
	in := Input{Region: &Region{X: 1, Y: 1, Width: 2, Height: 2}}
	WithRegion(Region{})(&in)
	if in.Region != nil {
		t.Fatalf("expected nil region for empty input, got %#v", in.Region)
	}
}

func TestResultIsEmpty(t *testing.T) {
	var nilResult *Result
	if !nilResult.IsEmpty() {
		t.Fatalf("nil result should be empty")
	}
	r := &Result{Blocks: []TextBlock{{Lines: []TextLine{{Text: "  "}}}}}
	if !r.IsEmpty() {
		t.Fatalf("whitespace-only result should be empty")
	}
	r.Blocks[0].Lines = append(r.Blocks[0].Lines, TextLine{Text: "hello"})
	if r.IsEmpty() || len(r.Lines()) != 2 {
		t.Fatalf("unexpected result state: %+v", r)
	}
}
