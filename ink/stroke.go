// Package ink writes finished ink strokes into pages as filled path objects.
package ink

import (
	"errors"
	"fmt"
	"image/color"
	"iter"

	"github.com/wudi/pdfsearchify/coords"
)

// Triangle is three vertices in canonical stroke space.
type Triangle [3]coords.Point

// Mesh is an indexed triangle mesh. It is immutable once built.
type Mesh struct {
	vertices  []coords.Point
	triangles [][3]int
}

// NewMesh validates that mesh has at least one triangle and that every index
// refers to a vertex.
func NewMesh(vertices []coords.Point, triangles [][3]int) (*Mesh, error) {
	if len(triangles) == 0 {
		return nil, errors.New("ink: mesh has no triangles")
	}
	for i, tri := range triangles {
		for _, v := range tri {
			if v < 0 || v >= len(vertices) {
				return nil, fmt.Errorf("ink: triangle %d references vertex %d of %d", i, v, len(vertices))
			}
		}
	}
	return &Mesh{
		vertices:  append([]coords.Point(nil), vertices...),
		triangles: append([][3]int(nil), triangles...),
	}, nil
}

func (m *Mesh) TriangleCount() int { return len(m.triangles) }

// Triangle returns the vertices of triangle i.
func (m *Mesh) Triangle(i int) Triangle {
	t := m.triangles[i]
	return Triangle{m.vertices[t[0]], m.vertices[t[1]], m.vertices[t[2]]}
}

// Shape is the tessellated outline of a stroke.
type Shape struct {
	meshes []*Mesh
}

func NewShape(meshes ...*Mesh) Shape { return Shape{meshes: meshes} }

func (s Shape) MeshCount() int { return len(s.meshes) }

// Brush describes how a stroke is painted.
type Brush struct {
	Color color.NRGBA
	Size  float64
}

// Stroke is a finished ink stroke.
type Stroke struct {
	Shape Shape
	Brush Brush
}

// TriangleIterator walks every triangle of a shape, mesh by mesh. Once
// exhausted it stays exhausted.
type TriangleIterator struct {
	meshes []*Mesh
	mesh   int
	tri    int
}

func NewTriangleIterator(s Shape) *TriangleIterator {
	return &TriangleIterator{meshes: s.meshes}
}

// Next returns the next triangle, or false when none remain.
func (it *TriangleIterator) Next() (Triangle, bool) {
	for it.mesh < len(it.meshes) {
		m := it.meshes[it.mesh]
		if m != nil && it.tri < m.TriangleCount() {
			t := m.Triangle(it.tri)
			it.tri++
			return t, true
		}
		it.mesh++
		it.tri = 0
	}
	return Triangle{}, false
}

// All yields the triangles Next has not returned yet.
func (it *TriangleIterator) All() iter.Seq[Triangle] {
	return func(yield func(Triangle) bool) {
		for {
			t, ok := it.Next()
			if !ok || !yield(t) {
				return
			}
		}
	}
}
