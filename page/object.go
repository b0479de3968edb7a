package page

import (
	"sort"

	"github.com/wudi/pdfsearchify/coords"
)

// ObjectKind identifies the concrete type of a page object.
type ObjectKind int

const (
	KindImage ObjectKind = iota + 1
	KindPath
	KindText
)

func (k ObjectKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindPath:
		return "path"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Object is an element of a page's object list.
type Object interface {
	Kind() ObjectKind
	AddMark(key, value string) bool
	HasMark(key string) bool
	Mark(key string) (string, bool)
	MarkKeys() []string
}

// Marks holds the marked-content tags of an object. The zero value is ready
// to use.
type Marks struct {
	values map[string]string
}

// AddMark tags the object with key. It fails for an empty key or one that is
// already present.
func (m *Marks) AddMark(key, value string) bool {
	if key == "" {
		return false
	}
	if _, ok := m.values[key]; ok {
		return false
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return true
}

func (m *Marks) HasMark(key string) bool {
	_, ok := m.values[key]
	return ok
}

func (m *Marks) Mark(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// MarkKeys returns the mark keys in sorted order.
func (m *Marks) MarkKeys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TextRenderMode matches PDF text rendering modes set via Tr operator.
type TextRenderMode int

const (
	TextFill TextRenderMode = iota
	TextStroke
	TextFillStroke
	TextInvisible
	TextFillClip
	TextStrokeClip
	TextFillStrokeClip
	TextClip
)

// TextObject is a single run of text drawn with one font.
type TextObject struct {
	Marks
	Text       string
	Font       string // page font resource name
	Size       float64
	Matrix     coords.Matrix // text matrix (Tm)
	HorizScale float64       // Tz percentage; 0 means 100
	RenderMode TextRenderMode
}

func (*TextObject) Kind() ObjectKind { return KindText }
