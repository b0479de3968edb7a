// Package page is the in-memory page object model that the searchify
// scheduler and the ink writer operate on: image, path and text objects, the
// font resources they use, and the content stream regenerated from them.
package page

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/wudi/pdfsearchify/coords"
	"github.com/wudi/pdfsearchify/fonts"
)

var (
	ErrNoSuchObject  = errors.New("page: no such object")
	ErrInvalidObject = errors.New("page: invalid object")
)

// Page is one page of a Document. It is not safe for concurrent use; callers
// confine each page to a single sequence.
type Page struct {
	Index    int
	MediaBox coords.Rect

	objects     []Object
	fonts       map[string]*fonts.Face
	extGStates  map[string]ExtGState
	content     []Operation
	text        string
	searchified bool
}

// New returns an empty page.
func New(index int, mediaBox coords.Rect) *Page {
	return &Page{Index: index, MediaBox: mediaBox}
}

func (p *Page) Width() float64  { return p.MediaBox.Width() }
func (p *Page) Height() float64 { return p.MediaBox.Height() }

func (p *Page) ObjectCount() int { return len(p.objects) }

// Object returns the object at index i.
func (p *Page) Object(i int) (Object, error) {
	if i < 0 || i >= len(p.objects) {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchObject, i)
	}
	return p.objects[i], nil
}

// InsertObject appends obj to the object list.
func (p *Page) InsertObject(obj Object) bool {
	if obj == nil {
		return false
	}
	p.objects = append(p.objects, obj)
	return true
}

// RemoveObject deletes the object at index i. Later objects shift down.
func (p *Page) RemoveObject(i int) error {
	if i < 0 || i >= len(p.objects) {
		return fmt.Errorf("%w: %d", ErrNoSuchObject, i)
	}
	p.objects = append(p.objects[:i], p.objects[i+1:]...)
	return nil
}

// ImageObjectIndices lists the indices of image objects in object order.
func (p *Page) ImageObjectIndices() []int {
	var out []int
	for i, obj := range p.objects {
		if obj.Kind() == KindImage {
			out = append(out, i)
		}
	}
	return out
}

// ImageObject returns the image at object index i.
func (p *Page) ImageObject(i int) (*ImageObject, error) {
	obj, err := p.Object(i)
	if err != nil {
		return nil, err
	}
	img, ok := obj.(*ImageObject)
	if !ok {
		return nil, fmt.Errorf("%w: object %d is a %s", ErrNoSuchObject, i, obj.Kind())
	}
	return img, nil
}

// Bitmap decodes the image at object index i. Anything that cannot be decoded
// yields nil, which callers treat as an empty bitmap.
func (p *Page) Bitmap(i int) image.Image {
	obj, err := p.ImageObject(i)
	if err != nil {
		return nil
	}
	img, err := obj.Decode()
	if err != nil {
		return nil
	}
	return img
}

// AddFont registers face as a font resource and returns its resource name.
func (p *Page) AddFont(face *fonts.Face) string {
	if p.fonts == nil {
		p.fonts = make(map[string]*fonts.Face)
	}
	p.fonts[face.Name()] = face
	return face.Name()
}

// Font returns the face registered under name.
func (p *Page) Font(name string) (*fonts.Face, bool) {
	f, ok := p.fonts[name]
	return f, ok
}

// FontNames returns the registered font resource names, sorted.
func (p *Page) FontNames() []string {
	names := make([]string, 0, len(p.fonts))
	for n := range p.fonts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Content returns the operations produced by the last GenerateContent.
func (p *Page) Content() []Operation { return p.content }

// ContentBytes serializes Content.
func (p *Page) ContentBytes() []byte { return SerializeOperations(p.content) }

// Text returns the searchable text index built by ReloadText.
func (p *Page) Text() string { return p.text }

// ReloadText rebuilds the text index from the page's text objects, one line
// per object.
func (p *Page) ReloadText() {
	var lines []string
	for _, obj := range p.objects {
		if t, ok := obj.(*TextObject); ok && strings.TrimSpace(t.Text) != "" {
			lines = append(lines, t.Text)
		}
	}
	p.text = strings.Join(lines, "\n")
}

// MarkSearchified records that OCR produced text for this page.
func (p *Page) MarkSearchified() { p.searchified = true }

func (p *Page) Searchified() bool { return p.searchified }
