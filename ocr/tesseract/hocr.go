package tesseract

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/wudi/pdfsearchify/ocr"
)

var lineClasses = map[string]bool{
	"ocr_line":      true,
	"ocr_caption":   true,
	"ocr_header":    true,
	"ocr_textfloat": true,
}

// parseHOCR converts Tesseract hOCR output into blocks of lines and words.
// Paragraphs (ocr_par) become blocks; lines outside any paragraph share a
// synthetic block.
func parseHOCR(r io.Reader) ([]ocr.TextBlock, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse hocr: %w", err)
	}
	var blocks []ocr.TextBlock
	var loose ocr.TextBlock

	var walk func(n *html.Node, block *ocr.TextBlock)
	walk = func(n *html.Node, block *ocr.TextBlock) {
		if n.Type == html.ElementNode {
			switch class := classOf(n); {
			case class == "ocr_par":
				var b ocr.TextBlock
				b.Bounds, _ = titleBBox(n)
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c, &b)
				}
				if len(b.Lines) > 0 {
					finishBlock(&b)
					blocks = append(blocks, b)
				}
				return
			case lineClasses[class]:
				if line, ok := parseLine(n); ok {
					if block == nil {
						block = &loose
					}
					block.Lines = append(block.Lines, line)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, block)
		}
	}
	walk(root, nil)

	if len(loose.Lines) > 0 {
		finishBlock(&loose)
		blocks = append(blocks, loose)
	}
	return blocks, nil
}

func parseLine(n *html.Node) (ocr.TextLine, bool) {
	var line ocr.TextLine
	line.Bounds, _ = titleBBox(n)
	var collect func(*html.Node)
	collect = func(c *html.Node) {
		if c.Type == html.ElementNode && classOf(c) == "ocrx_word" {
			text := strings.TrimSpace(textContent(c))
			if text == "" {
				return
			}
			bounds, _ := titleBBox(c)
			line.Words = append(line.Words, ocr.TextWord{
				Text:       text,
				Bounds:     bounds,
				Confidence: titleConfidence(c),
			})
			return
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			collect(cc)
		}
	}
	collect(n)
	if len(line.Words) == 0 {
		return line, false
	}
	texts := make([]string, len(line.Words))
	var sum float64
	for i, w := range line.Words {
		texts[i] = w.Text
		sum += w.Confidence
	}
	line.Text = strings.Join(texts, " ")
	line.Confidence = sum / float64(len(line.Words))
	if line.Bounds.IsEmpty() {
		line.Bounds = mergeBounds(line.Words)
	}
	return line, true
}

func finishBlock(b *ocr.TextBlock) {
	texts := make([]string, len(b.Lines))
	var sum float64
	minX, minY := math.MaxFloat64, math.MaxFloat64
	var maxX, maxY float64
	for i, l := range b.Lines {
		texts[i] = l.Text
		sum += l.Confidence
		minX = math.Min(minX, l.Bounds.X)
		minY = math.Min(minY, l.Bounds.Y)
		maxX = math.Max(maxX, l.Bounds.X+l.Bounds.Width)
		maxY = math.Max(maxY, l.Bounds.Y+l.Bounds.Height)
	}
	b.Text = strings.Join(texts, "\n")
	b.Confidence = sum / float64(len(b.Lines))
	if b.Bounds.IsEmpty() {
		b.Bounds = ocr.Region{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	}
}

func classOf(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "class" {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func title(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "title" {
			return a.Val
		}
	}
	return ""
}

// titleBBox reads "bbox x0 y0 x1 y1" from an hOCR title attribute.
func titleBBox(n *html.Node) (ocr.Region, bool) {
	for _, prop := range strings.Split(title(n), ";") {
		fields := strings.Fields(prop)
		if len(fields) != 5 || fields[0] != "bbox" {
			continue
		}
		var v [4]float64
		for i := range v {
			f, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return ocr.Region{}, false
			}
			v[i] = f
		}
		return ocr.Region{X: v[0], Y: v[1], Width: v[2] - v[0], Height: v[3] - v[1]}, true
	}
	return ocr.Region{}, false
}

// titleConfidence reads "x_wconf N" (0-100) and normalizes it to 0-1.
func titleConfidence(n *html.Node) float64 {
	for _, prop := range strings.Split(title(n), ";") {
		fields := strings.Fields(prop)
		if len(fields) == 2 && fields[0] == "x_wconf" {
			if f, err := strconv.ParseFloat(fields[1], 64); err == nil {
				return f / 100
			}
		}
	}
	return 0
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

func mergeBounds(words []ocr.TextWord) ocr.Region {
	if len(words) == 0 {
		return ocr.Region{}
	}
	minX, minY := math.MaxFloat64, math.MaxFloat64
	var maxX, maxY float64
	for _, w := range words {
		minX = math.Min(minX, w.Bounds.X)
		minY = math.Min(minY, w.Bounds.Y)
		maxX = math.Max(maxX, w.Bounds.X+w.Bounds.Width)
		maxY = math.Max(maxY, w.Bounds.Y+w.Bounds.Height)
	}
	return ocr.Region{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
