package page

import (
	"image/color"

	"github.com/wudi/pdfsearchify/coords"
)

// FillMode selects how a path is filled.
type FillMode int

const (
	FillNone FillMode = iota
	FillNonZero
	FillEvenOdd
)

// PathPointType enumerates path segment types.
type PathPointType int

const (
	PathMoveTo PathPointType = iota
	PathLineTo
)

// PathPoint identifies a path segment and its end point.
type PathPoint struct {
	X, Y float64
	Type PathPointType
}

// Subpath describes a portion of a path.
type Subpath struct {
	Points []PathPoint
	Closed bool
}

// PathObject is a painted path. Point coordinates are in the object's own
// space; Matrix places them on the page.
type PathObject struct {
	Marks
	Subpaths    []Subpath
	Matrix      coords.Matrix
	Fill        FillMode
	Stroke      bool
	// Colors below full alpha are painted through an ExtGState with the
	// matching constant alpha.
	FillColor   color.NRGBA
	StrokeColor color.NRGBA
}

// NewPathObject returns a path whose first subpath starts at (x, y).
func NewPathObject(x, y float64) *PathObject {
	p := &PathObject{Matrix: coords.Identity()}
	p.MoveTo(x, y)
	return p
}

func (*PathObject) Kind() ObjectKind { return KindPath }

// MoveTo begins a new subpath.
func (p *PathObject) MoveTo(x, y float64) bool {
	p.Subpaths = append(p.Subpaths, Subpath{Points: []PathPoint{{X: x, Y: y, Type: PathMoveTo}}})
	return true
}

// LineTo extends the current subpath. It fails when there is none.
func (p *PathObject) LineTo(x, y float64) bool {
	if len(p.Subpaths) == 0 {
		return false
	}
	sp := &p.Subpaths[len(p.Subpaths)-1]
	sp.Points = append(sp.Points, PathPoint{X: x, Y: y, Type: PathLineTo})
	return true
}

// Close closes the current subpath.
func (p *PathObject) Close() bool {
	if len(p.Subpaths) == 0 {
		return false
	}
	p.Subpaths[len(p.Subpaths)-1].Closed = true
	return true
}

// SetDrawMode sets how the path is painted.
func (p *PathObject) SetDrawMode(fill FillMode, stroke bool) bool {
	if fill < FillNone || fill > FillEvenOdd {
		return false
	}
	p.Fill = fill
	p.Stroke = stroke
	return true
}

// SetFillColor sets the non-stroking color.
func (p *PathObject) SetFillColor(c color.Color) bool {
	if c == nil {
		return false
	}
	p.FillColor = color.NRGBAModel.Convert(c).(color.NRGBA)
	return true
}

// Transform appends m to the object's matrix.
func (p *PathObject) Transform(m coords.Matrix) {
	p.Matrix = p.Matrix.Multiply(m)
}

// PointCount returns the number of segments across all subpaths.
func (p *PathObject) PointCount() int {
	n := 0
	for _, sp := range p.Subpaths {
		n += len(sp.Points)
	}
	return n
}

// Bounds returns the page-space bounding box of the path.
func (p *PathObject) Bounds() coords.Rect {
	first := true
	var r coords.Rect
	for _, sp := range p.Subpaths {
		for _, pt := range sp.Points {
			q := p.Matrix.Transform(coords.Point{X: pt.X, Y: pt.Y})
			if first {
				r = coords.Rect{LLX: q.X, LLY: q.Y, URX: q.X, URY: q.Y}
				first = false
				continue
			}
			r.LLX = min(r.LLX, q.X)
			r.LLY = min(r.LLY, q.Y)
			r.URX = max(r.URX, q.X)
			r.URY = max(r.URY, q.Y)
		}
	}
	return r
}
