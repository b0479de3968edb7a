package page

import (
	"fmt"
	"image"
	"math"
	"strconv"

	"github.com/wudi/pdfsearchify/coords"
	"github.com/wudi/pdfsearchify/fonts"
	"github.com/wudi/pdfsearchify/ocr"
)

// MarkOCRText tags text objects produced from OCR. Its value is the index of
// the image object the text was recognized in.
const MarkOCRText = "OCRText"

// ApplyAnnotation lays the recognized lines of res over the image at object
// index imageIndex as invisible text. size is the pixel size of the bitmap the
// boxes in res refer to. It returns the number of text objects added.
func (p *Page) ApplyAnnotation(imageIndex int, size image.Point, res *ocr.Result, face *fonts.Face) (int, error) {
	img, err := p.ImageObject(imageIndex)
	if err != nil {
		return 0, err
	}
	if res.IsEmpty() {
		return 0, nil
	}
	if size.X <= 0 || size.Y <= 0 {
		return 0, fmt.Errorf("%w: empty bitmap size %v", ErrInvalidObject, size)
	}
	if face == nil {
		return 0, fmt.Errorf("%w: no font", ErrInvalidObject)
	}
	fontName := p.AddFont(face)

	added := 0
	for _, line := range res.Lines() {
		if line.Text == "" || line.Bounds.IsEmpty() {
			continue
		}
		t, err := placeText(img.Matrix, size, line.Bounds, line.Text, face)
		if err != nil {
			return added, err
		}
		t.Font = fontName
		t.AddMark(MarkOCRText, strconv.Itoa(imageIndex))
		p.InsertObject(t)
		added++
	}
	return added, nil
}

// placeText maps a pixel box (top-left origin) through the image placement
// matrix and fits text to its width.
func placeText(placement coords.Matrix, size image.Point, box ocr.Region, text string, face *fonts.Face) (*TextObject, error) {
	w, h := float64(size.X), float64(size.Y)
	unit := func(x, y float64) coords.Point {
		return placement.Transform(coords.Point{X: x / w, Y: 1 - y/h})
	}
	origin := unit(box.X, box.Y+box.Height)
	right := unit(box.X+box.Width, box.Y+box.Height)
	top := unit(box.X, box.Y)

	width := math.Hypot(right.X-origin.X, right.Y-origin.Y)
	height := math.Hypot(top.X-origin.X, top.Y-origin.Y)
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: box %v collapses on the page", ErrInvalidObject, box)
	}
	angle := math.Atan2(right.Y-origin.Y, right.X-origin.X)

	natural, err := face.TextWidth(text, height)
	if err != nil {
		return nil, err
	}
	scale := 100.0
	if natural > 0 {
		scale = 100 * width / natural
	}
	return &TextObject{
		Text:       text,
		Size:       height,
		Matrix:     coords.Rotate(angle).Multiply(coords.Translate(origin.X, origin.Y)),
		HorizScale: scale,
		RenderMode: TextInvisible,
	}, nil
}
