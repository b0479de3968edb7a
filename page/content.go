package page

import (
	"fmt"
	"image/color"

	"github.com/wudi/pdfsearchify/coords"
)

// GenerateContent rebuilds the page's content stream from its object list. On
// failure the previous content is kept and the error wraps ErrInvalidObject.
// Translucent path colors get ExtGState resources, replaced along with the
// content.
func (p *Page) GenerateContent() error {
	var ops []Operation
	states := make(map[string]ExtGState)
	for i, obj := range p.objects {
		var err error
		ops = appendMarksOpen(ops, obj)
		switch o := obj.(type) {
		case *ImageObject:
			ops, err = appendImageOps(ops, o)
		case *PathObject:
			ops, err = appendPathOps(ops, o, states)
		case *TextObject:
			ops, err = p.appendTextOps(ops, o)
		default:
			err = fmt.Errorf("unsupported object %T", obj)
		}
		if err != nil {
			return fmt.Errorf("%w: object %d: %v", ErrInvalidObject, i, err)
		}
		ops = appendMarksClose(ops, obj)
	}
	p.content = ops
	p.extGStates = states
	return nil
}

func appendMarksOpen(ops []Operation, obj Object) []Operation {
	for _, key := range obj.MarkKeys() {
		v, _ := obj.Mark(key)
		if v == "" {
			ops = append(ops, Operation{Operator: "BMC", Operands: []Operand{NameOperand{Value: key}}})
			continue
		}
		ops = append(ops, Operation{
			Operator: "BDC",
			Operands: []Operand{
				NameOperand{Value: key},
				DictOperand{Values: map[string]Operand{"Value": StringOperand{Value: []byte(v)}}},
			},
		})
	}
	return ops
}

func appendMarksClose(ops []Operation, obj Object) []Operation {
	for range obj.MarkKeys() {
		ops = append(ops, Operation{Operator: "EMC"})
	}
	return ops
}

func matrixOp(op string, m coords.Matrix) Operation {
	return Operation{Operator: op, Operands: numbers(m[0], m[1], m[2], m[3], m[4], m[5])}
}

func appendImageOps(ops []Operation, img *ImageObject) ([]Operation, error) {
	if img.Name == "" {
		return ops, fmt.Errorf("image has no resource name")
	}
	return append(ops,
		Operation{Operator: "q"},
		matrixOp("cm", img.Matrix),
		Operation{Operator: "Do", Operands: []Operand{NameOperand{Value: img.Name}}},
		Operation{Operator: "Q"},
	), nil
}

func appendPathOps(ops []Operation, path *PathObject, states map[string]ExtGState) ([]Operation, error) {
	if len(path.Subpaths) == 0 {
		return ops, fmt.Errorf("path has no segments")
	}
	ops = append(ops, Operation{Operator: "q"})
	if !path.Matrix.IsIdentity() {
		ops = append(ops, matrixOp("cm", path.Matrix))
	}
	fillA, strokeA := uint8(255), uint8(255)
	if path.Fill != FillNone {
		fillA = path.FillColor.A
	}
	if path.Stroke {
		strokeA = path.StrokeColor.A
	}
	if fillA < 255 || strokeA < 255 {
		name, gs := alphaState(fillA, strokeA)
		states[name] = gs
		ops = append(ops, Operation{Operator: "gs", Operands: []Operand{NameOperand{Value: name}}})
	}
	if path.Fill != FillNone {
		ops = append(ops, colorOp("rg", path.FillColor))
	}
	if path.Stroke {
		ops = append(ops, colorOp("RG", path.StrokeColor))
	}
	for _, sp := range path.Subpaths {
		if len(sp.Points) == 0 || sp.Points[0].Type != PathMoveTo {
			return ops, fmt.Errorf("subpath does not start with a move")
		}
		for _, pt := range sp.Points {
			op := "l"
			if pt.Type == PathMoveTo {
				op = "m"
			}
			ops = append(ops, Operation{Operator: op, Operands: numbers(pt.X, pt.Y)})
		}
		if sp.Closed {
			ops = append(ops, Operation{Operator: "h"})
		}
	}
	ops = append(ops, Operation{Operator: paintOperator(path.Fill, path.Stroke)}, Operation{Operator: "Q"})
	return ops, nil
}

func (p *Page) appendTextOps(ops []Operation, t *TextObject) ([]Operation, error) {
	if _, ok := p.fonts[t.Font]; !ok {
		return ops, fmt.Errorf("font %q is not a page resource", t.Font)
	}
	size := t.Size
	if size <= 0 {
		size = 12
	}
	ops = append(ops,
		Operation{Operator: "BT"},
		Operation{Operator: "Tf", Operands: []Operand{NameOperand{Value: t.Font}, NumberOperand{Value: size}}},
	)
	if t.RenderMode != TextFill {
		ops = append(ops, Operation{Operator: "Tr", Operands: numbers(float64(t.RenderMode))})
	}
	if t.HorizScale != 0 && t.HorizScale != 100 {
		ops = append(ops, Operation{Operator: "Tz", Operands: numbers(t.HorizScale)})
	}
	ops = append(ops,
		matrixOp("Tm", t.Matrix),
		Operation{Operator: "Tj", Operands: []Operand{StringOperand{Value: encodeText(t.Text)}}},
		Operation{Operator: "ET"},
	)
	return ops, nil
}

// encodeText maps text to single-byte codes; runes outside Latin-1 become '?'.
func encodeText(text string) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		if r > 0xff {
			r = '?'
		}
		out = append(out, byte(r))
	}
	return out
}

func colorOp(op string, c color.NRGBA) Operation {
	return Operation{Operator: op, Operands: numbers(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)}
}

func paintOperator(fill FillMode, stroke bool) string {
	switch {
	case fill == FillNonZero && stroke:
		return "B"
	case fill == FillEvenOdd && stroke:
		return "B*"
	case fill == FillNonZero:
		return "f"
	case fill == FillEvenOdd:
		return "f*"
	case stroke:
		return "S"
	default:
		return "n"
	}
}
