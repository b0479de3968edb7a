package ink

import (
	"github.com/wudi/pdfsearchify/coords"
	"github.com/wudi/pdfsearchify/page"
)

const (
	// CanonicalDPI is the resolution of stroke geometry, top-left origin.
	CanonicalDPI = 96.0
	// PageDPI is the resolution of page space, bottom-left origin.
	PageDPI = 72.0

	// MarkerKey tags path objects written from ink strokes.
	MarkerKey = "InkStroke"
)

// WriteStrokeToPage appends stroke to pg as one nonzero-filled path made of
// the outlines of all its triangles. It returns false, leaving pg untouched,
// when doc or pg is nil, pg is not a page of doc, or the stroke has no
// triangles.
func WriteStrokeToPage(doc *page.Document, pg *page.Page, stroke Stroke) bool {
	if doc == nil || pg == nil {
		return false
	}
	if p, ok := doc.Page(pg.Index); !ok || p != pg {
		return false
	}
	if stroke.Shape.MeshCount() == 0 {
		return false
	}
	it := NewTriangleIterator(stroke.Shape)
	first, ok := it.Next()
	if !ok {
		return false
	}

	path := page.NewPathObject(first[0].X, first[0].Y)
	check(path.LineTo(first[1].X, first[1].Y), "line to")
	check(path.LineTo(first[2].X, first[2].Y), "line to")
	for tri := range it.All() {
		check(path.MoveTo(tri[0].X, tri[0].Y), "move to")
		check(path.LineTo(tri[1].X, tri[1].Y), "line to")
		check(path.LineTo(tri[2].X, tri[2].Y), "line to")
	}

	path.Transform(coords.ScaleFlip(CanonicalDPI, PageDPI, pg.Height()))
	check(path.SetDrawMode(page.FillNonZero, false), "set draw mode")
	check(path.SetFillColor(stroke.Brush.Color), "set fill color")
	check(path.Close(), "close")
	check(path.AddMark(MarkerKey, ""), "add mark")
	check(pg.InsertObject(path), "insert object")
	return true
}

// check panics when a primitive fails on a freshly built path.
func check(ok bool, op string) {
	if !ok {
		panic("ink: " + op + " failed")
	}
}

// FindStrokes returns the indices of ink stroke objects on pg.
func FindStrokes(pg *page.Page) []int {
	var out []int
	for i := 0; i < pg.ObjectCount(); i++ {
		obj, err := pg.Object(i)
		if err == nil && obj.HasMark(MarkerKey) {
			out = append(out, i)
		}
	}
	return out
}

// RemoveStrokes deletes every ink stroke object from pg and returns how many
// were removed.
func RemoveStrokes(pg *page.Page) int {
	idx := FindStrokes(pg)
	for i := len(idx) - 1; i >= 0; i-- {
		if err := pg.RemoveObject(idx[i]); err != nil {
			return len(idx) - 1 - i
		}
	}
	return len(idx)
}
