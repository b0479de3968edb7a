package page

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/wudi/pdfsearchify/coords"
	"github.com/wudi/pdfsearchify/fonts"
	"github.com/wudi/pdfsearchify/ocr"
)

func letterPage() *Page {
	return New(0, coords.Rect{URX: 612, URY: 792})
}

func TestImageDecode(t *testing.T) {
	var pngData bytes.Buffer
	if err := png.Encode(&pngData, image.NewGray(image.Rect(0, 0, 3, 2))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	tests := []struct {
		name string
		img  ImageObject
		want image.Point
	}{
		{"gray", ImageObject{Width: 2, Height: 2, BitsPerComponent: 8, Data: make([]byte, 4)}, image.Pt(2, 2)},
		{"rgb", ImageObject{Width: 2, Height: 1, BitsPerComponent: 8, Data: make([]byte, 6)}, image.Pt(2, 1)},
		{"cmyk", ImageObject{Width: 1, Height: 1, ColorSpace: "DeviceCMYK", Data: make([]byte, 4)}, image.Pt(1, 1)},
		{"bilevel", ImageObject{Width: 9, Height: 2, BitsPerComponent: 1, Data: make([]byte, 4)}, image.Pt(9, 2)},
		{"png", ImageObject{Format: "png", Data: pngData.Bytes()}, image.Pt(3, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.img.Decode()
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got.Bounds().Size() != tt.want {
				t.Fatalf("size = %v, want %v", got.Bounds().Size(), tt.want)
			}
		})
	}
}

func TestBilevelDecodeSetsBits(t *testing.T) {
	img := ImageObject{Width: 8, Height: 1, BitsPerComponent: 1, Data: []byte{0x81}}
	got, err := img.Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	g := got.(*image.Gray)
	if g.GrayAt(0, 0).Y != 0xff || g.GrayAt(1, 0).Y != 0 || g.GrayAt(7, 0).Y != 0xff {
		t.Fatalf("unexpected pixels %v", g.Pix)
	}
}

func TestBitmapDegenerate(t *testing.T) {
	p := letterPage()
	p.InsertObject(&ImageObject{Name: "Im0"})
	p.InsertObject(&ImageObject{Name: "Im1", Width: 5, Height: 5, Data: []byte{1, 2, 3}})
	p.InsertObject(NewPathObject(0, 0))
	for i := 0; i < 3; i++ {
		if bmp := p.Bitmap(i); bmp != nil {
			t.Fatalf("Bitmap(%d) = %v, want nil", i, bmp.Bounds())
		}
	}
	if got := p.ImageObjectIndices(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("ImageObjectIndices() = %v", got)
	}
}

func TestObjectListEditing(t *testing.T) {
	p := letterPage()
	if p.InsertObject(nil) {
		t.Fatalf("InsertObject(nil) should fail")
	}
	p.InsertObject(NewPathObject(0, 0))
	p.InsertObject(&TextObject{Text: "x"})
	if err := p.RemoveObject(5); !errors.Is(err, ErrNoSuchObject) {
		t.Fatalf("RemoveObject(5) error = %v", err)
	}
	if err := p.RemoveObject(0); err != nil {
		t.Fatalf("RemoveObject(0) error = %v", err)
	}
	obj, err := p.Object(0)
	if err != nil || obj.Kind() != KindText {
		t.Fatalf("Object(0) = %v, %v", obj, err)
	}
	if _, err := p.ImageObject(0); !errors.Is(err, ErrNoSuchObject) {
		t.Fatalf("ImageObject on text error = %v", err)
	}
}

func TestMarks(t *testing.T) {
	var m Marks
	if m.HasMark("a") {
		t.Fatalf("zero Marks has a mark")
	}
	if !m.AddMark("b", "") || !m.AddMark("a", "1") {
		t.Fatalf("AddMark failed")
	}
	if m.AddMark("a", "2") || m.AddMark("", "x") {
		t.Fatalf("duplicate or empty key accepted")
	}
	if v, ok := m.Mark("a"); !ok || v != "1" {
		t.Fatalf("Mark(a) = %q, %v", v, ok)
	}
	if keys := m.MarkKeys(); strings.Join(keys, ",") != "a,b" {
		t.Fatalf("MarkKeys() = %v", keys)
	}
}

func TestPathPrimitives(t *testing.T) {
	var empty PathObject
	if empty.LineTo(1, 1) || empty.Close() {
		t.Fatalf("primitives on an empty path should fail")
	}
	p := NewPathObject(0, 0)
	p.LineTo(10, 0)
	p.LineTo(10, 10)
	p.Close()
	if p.SetDrawMode(FillMode(9), false) {
		t.Fatalf("invalid fill mode accepted")
	}
	if !p.SetDrawMode(FillNonZero, false) || !p.SetFillColor(color.NRGBA{R: 255, A: 255}) {
		t.Fatalf("draw setup failed")
	}
	p.Transform(coords.Scale(2, 2))
	if b := p.Bounds(); b != (coords.Rect{URX: 20, URY: 20}) {
		t.Fatalf("Bounds() = %+v", b)
	}
	if p.PointCount() != 3 {
		t.Fatalf("PointCount() = %d", p.PointCount())
	}

	pg := letterPage()
	pg.InsertObject(p)
	if err := pg.GenerateContent(); err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}
	want := "q\n2 0 0 2 0 0 cm\n1 0 0 rg\n0 0 m\n10 0 l\n10 10 l\nh\nf\nQ\n"
	if got := string(pg.ContentBytes()); got != want {
		t.Fatalf("content =\n%s\nwant\n%s", got, want)
	}
}

func TestTranslucentPathUsesExtGState(t *testing.T) {
	p := NewPathObject(0, 0)
	p.LineTo(1, 0)
	p.LineTo(0, 1)
	p.Close()
	p.SetDrawMode(FillNonZero, true)
	p.SetFillColor(color.NRGBA{B: 255, A: 51})
	p.StrokeColor = color.NRGBA{A: 255}

	pg := letterPage()
	pg.InsertObject(p)
	if err := pg.GenerateContent(); err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}
	want := "q\n/GSa51_255 gs\n0 0 1 rg\n0 0 0 RG\n0 0 m\n1 0 l\n0 1 l\nh\nB\nQ\n"
	if got := string(pg.ContentBytes()); got != want {
		t.Fatalf("content =\n%s\nwant\n%s", got, want)
	}
	if names := pg.ExtGStateNames(); len(names) != 1 || names[0] != "GSa51_255" {
		t.Fatalf("ExtGStateNames() = %v", names)
	}
	if gs, _ := pg.ExtGState("GSa51_255"); gs.FillAlpha != 0.2 || gs.StrokeAlpha != 1 {
		t.Fatalf("ExtGState = %+v", gs)
	}

	pg.InsertObject(&TextObject{Text: "x", Font: "Missing"})
	if err := pg.GenerateContent(); err == nil {
		t.Fatalf("expected error")
	}
	if len(pg.ExtGStateNames()) != 1 {
		t.Fatalf("resources replaced on failure")
	}
}

func TestGenerateContentRejectsInvalidObjects(t *testing.T) {
	p := letterPage()
	p.InsertObject(&ImageObject{Name: "Im0", Matrix: coords.Scale(612, 792)})
	if err := p.GenerateContent(); err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}
	before := string(p.ContentBytes())
	if !strings.Contains(before, "612 0 0 792 0 0 cm\n/Im0 Do\n") {
		t.Fatalf("image not drawn:\n%s", before)
	}

	p.InsertObject(&TextObject{Text: "x", Font: "Missing"})
	if err := p.GenerateContent(); !errors.Is(err, ErrInvalidObject) {
		t.Fatalf("GenerateContent() error = %v, want ErrInvalidObject", err)
	}
	if string(p.ContentBytes()) != before {
		t.Fatalf("content changed on failure")
	}
}

func TestApplyAnnotation(t *testing.T) {
	face, err := fonts.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	p := letterPage()
	p.InsertObject(&ImageObject{Name: "Im0", Matrix: coords.Matrix{200, 0, 0, 128, 50, 50}})
	res := &ocr.Result{Blocks: []ocr.TextBlock{{Lines: []ocr.TextLine{
		{Text: "Hello (scan)", Bounds: ocr.Region{X: 64, Y: 32, Width: 128, Height: 64}},
		{Text: "", Bounds: ocr.Region{X: 1, Y: 1, Width: 1, Height: 1}},
	}}}}

	n, err := p.ApplyAnnotation(0, image.Pt(256, 256), res, face)
	if err != nil {
		t.Fatalf("ApplyAnnotation() error = %v", err)
	}
	if n != 1 || p.ObjectCount() != 2 {
		t.Fatalf("added %d objects, page has %d", n, p.ObjectCount())
	}
	obj, _ := p.Object(1)
	text := obj.(*TextObject)
	if text.RenderMode != TextInvisible || text.Font != fonts.DefaultFaceName {
		t.Fatalf("unexpected text object %+v", text)
	}
	if math.Abs(text.Size-32) > 1e-9 || math.Abs(text.Matrix[4]-100) > 1e-9 || math.Abs(text.Matrix[5]-130) > 1e-9 {
		t.Fatalf("text placed at size %v matrix %v", text.Size, text.Matrix)
	}
	if text.HorizScale <= 0 {
		t.Fatalf("HorizScale = %v", text.HorizScale)
	}
	if v, _ := text.Mark(MarkOCRText); v != "0" {
		t.Fatalf("OCR mark = %q", v)
	}

	p.ReloadText()
	if p.Text() != "Hello (scan)" {
		t.Fatalf("Text() = %q", p.Text())
	}
	if err := p.GenerateContent(); err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}
	out := string(p.ContentBytes())
	for _, want := range []string{"/OCRText <</Value (0)>> BDC", "/GoRegular 32 Tf", "3 Tr", "(Hello \\(scan\\)) Tj", "EMC"} {
		if !strings.Contains(out, want) {
			t.Fatalf("content missing %q:\n%s", want, out)
		}
	}
}

func TestApplyAnnotationEdgeCases(t *testing.T) {
	face, err := fonts.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	p := letterPage()
	p.InsertObject(&ImageObject{Name: "Im0", Matrix: coords.Scale(100, 100)})
	line := &ocr.Result{Blocks: []ocr.TextBlock{{Lines: []ocr.TextLine{{Text: "a", Bounds: ocr.Region{Width: 1, Height: 1}}}}}}

	if n, err := p.ApplyAnnotation(0, image.Pt(10, 10), nil, face); n != 0 || err != nil {
		t.Fatalf("nil result: %d, %v", n, err)
	}
	if _, err := p.ApplyAnnotation(3, image.Pt(10, 10), line, face); !errors.Is(err, ErrNoSuchObject) {
		t.Fatalf("missing image error = %v", err)
	}
	if _, err := p.ApplyAnnotation(0, image.Point{}, line, face); !errors.Is(err, ErrInvalidObject) {
		t.Fatalf("empty size error = %v", err)
	}
	if p.ObjectCount() != 1 {
		t.Fatalf("failed annotations modified the page")
	}
}

func TestDocumentPageAccess(t *testing.T) {
	d := NewDocument("doc")
	d.AddPage(letterPage())
	d.AddPage(letterPage())
	if d.PageCount() != 2 || !d.HasPage(1) || d.HasPage(2) || d.HasPage(-1) {
		t.Fatalf("unexpected page set")
	}
	if p, _ := d.Page(1); p.Index != 1 {
		t.Fatalf("AddPage did not index page: %d", p.Index)
	}
	if d.ImageObjectIndices(7) != nil || d.Bitmap(7, 0) != nil {
		t.Fatalf("missing page returned data")
	}
	if err := d.GenerateContent(7); !errors.Is(err, ErrNoSuchObject) {
		t.Fatalf("GenerateContent(7) error = %v", err)
	}
	d.MarkSearchified(1)
	d.ApplyAnnotation(7, 0, image.Pt(1, 1), nil, nil)
	if p, _ := d.Page(1); !p.Searchified() {
		t.Fatalf("page 1 not marked")
	}
}
