package searchify

import (
	"image"

	"github.com/wudi/pdfsearchify/fonts"
	"github.com/wudi/pdfsearchify/ocr"
)

// BitmapSource enumerates a page's image objects and decodes them. Bitmap
// returns nil or an empty image for anything that should not be sent to OCR.
type BitmapSource interface {
	ImageObjectIndices(page int) []int
	Bitmap(page, object int) image.Image
}

// ResultSink burns an OCR annotation into an image object. size is the pixel
// size of the bitmap that was recognized.
type ResultSink interface {
	ApplyAnnotation(page, object int, size image.Point, res *ocr.Result, face *fonts.Face)
}

// ContentRegenerator refreshes a page after its objects changed.
type ContentRegenerator interface {
	ReloadText(page int)
	GenerateContent(page int) error
}

// Engine is the document the scheduler works on. *page.Document implements it.
type Engine interface {
	BitmapSource
	ResultSink
	ContentRegenerator
	HasPage(page int) bool
	MarkSearchified(page int)
}
