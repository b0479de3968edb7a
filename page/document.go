package page

import (
	"fmt"
	"image"

	"github.com/wudi/pdfsearchify/fonts"
	"github.com/wudi/pdfsearchify/observability"
	"github.com/wudi/pdfsearchify/ocr"
)

// Document is an ordered set of pages addressed by zero-based index. Its
// page-index methods are what the searchify scheduler drives.
type Document struct {
	Name   string
	Logger observability.Logger

	pages []*Page
}

// NewDocument returns a document holding pages in order.
func NewDocument(name string, pages ...*Page) *Document {
	return &Document{Name: name, Logger: observability.NopLogger{}, pages: pages}
}

// AddPage appends p and sets its index.
func (d *Document) AddPage(p *Page) {
	p.Index = len(d.pages)
	d.pages = append(d.pages, p)
}

func (d *Document) PageCount() int { return len(d.pages) }

// Page returns the page at index i.
func (d *Document) Page(i int) (*Page, bool) {
	if i < 0 || i >= len(d.pages) {
		return nil, false
	}
	return d.pages[i], true
}

func (d *Document) HasPage(i int) bool {
	_, ok := d.Page(i)
	return ok
}

func (d *Document) ImageObjectIndices(page int) []int {
	p, ok := d.Page(page)
	if !ok {
		return nil
	}
	return p.ImageObjectIndices()
}

func (d *Document) Bitmap(page, object int) image.Image {
	p, ok := d.Page(page)
	if !ok {
		return nil
	}
	return p.Bitmap(object)
}

// ApplyAnnotation burns res into the page. Failures are logged and otherwise
// ignored.
func (d *Document) ApplyAnnotation(page, object int, size image.Point, res *ocr.Result, face *fonts.Face) {
	p, ok := d.Page(page)
	if !ok {
		return
	}
	n, err := p.ApplyAnnotation(object, size, res, face)
	if err != nil {
		d.log().Warn("apply ocr annotation failed",
			observability.Int("page", page),
			observability.Int("object", object),
			observability.Error("error", err))
		return
	}
	d.log().Debug("ocr annotation applied",
		observability.Int("page", page),
		observability.Int("object", object),
		observability.Int("text_objects", n))
}

func (d *Document) MarkSearchified(page int) {
	if p, ok := d.Page(page); ok {
		p.MarkSearchified()
	}
}

func (d *Document) ReloadText(page int) {
	if p, ok := d.Page(page); ok {
		p.ReloadText()
	}
}

func (d *Document) GenerateContent(page int) error {
	p, ok := d.Page(page)
	if !ok {
		return fmt.Errorf("page %d: %w", page, ErrNoSuchObject)
	}
	return p.GenerateContent()
}

func (d *Document) log() observability.Logger {
	if d.Logger == nil {
		return observability.NopLogger{}
	}
	return d.Logger
}
