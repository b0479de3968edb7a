package page

import (
	"fmt"
	"sort"
)

// ExtGState is a graphics state parameter dictionary carrying constant
// alpha (/ca and /CA).
type ExtGState struct {
	FillAlpha   float64
	StrokeAlpha float64
}

func alphaState(fill, stroke uint8) (string, ExtGState) {
	return fmt.Sprintf("GSa%d_%d", fill, stroke), ExtGState{
		FillAlpha:   float64(fill) / 255,
		StrokeAlpha: float64(stroke) / 255,
	}
}

// ExtGState returns the graphics state registered under name by the last
// successful GenerateContent.
func (p *Page) ExtGState(name string) (ExtGState, bool) {
	gs, ok := p.extGStates[name]
	return gs, ok
}

// ExtGStateNames lists the graphics state resources the content refers to.
func (p *Page) ExtGStateNames() []string {
	names := make([]string, 0, len(p.extGStates))
	for n := range p.extGStates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
