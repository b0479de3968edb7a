package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/wudi/pdfsearchify/ocr"
)

// Engine implements ocr.Engine on top of the gosseract client. Each request
// uses a fresh client; Close makes every later request fail with
// ocr.ErrDisconnected.
type Engine struct {
	clientFactory func() *gosseract.Client

	mu     sync.RWMutex
	closed bool
}

// NewEngine constructs a Tesseract-backed OCR engine.
func NewEngine() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Ping verifies that the native library answers.
func (e *Engine) Ping(ctx context.Context) error {
	if e.isClosed() {
		return ocr.ErrDisconnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if v := gosseract.Version(); v == "" {
		return errors.New("tesseract: no version reported")
	}
	return nil
}

// Close disconnects the engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *Engine) isClosed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.closed
}

// Recognize performs OCR on a single image input.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if e.isClosed() {
		return ocr.Result{}, ocr.ErrDisconnected
	}
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	c := e.clientFactory()
	defer c.Close()
	return e.recognizeWithClient(c, in)
}

func (e *Engine) recognizeWithClient(c *gosseract.Client, in ocr.Input) (ocr.Result, error) {
	imgData, err := cropImage(in.Image, in.Region)
	if err != nil {
		return ocr.Result{}, err
	}
	if err := c.SetImageFromBytes(imgData); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return ocr.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	for k, v := range in.Metadata {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	hocr, err := c.HOCRText()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}
	blocks, err := parseHOCR(strings.NewReader(hocr))
	if err != nil {
		return ocr.Result{}, err
	}
	if in.Region != nil {
		offsetBlocks(blocks, in.Region.X, in.Region.Y)
	}

	texts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		texts = append(texts, b.Text)
	}
	return ocr.Result{
		InputID:     in.ID,
		PlainText:   strings.TrimSpace(strings.Join(texts, "\n\n")),
		Blocks:      blocks,
		Language:    firstLanguage(in.Languages),
		ImageWidth:  in.Width,
		ImageHeight: in.Height,
	}, nil
}

// offsetBlocks moves region-relative boxes back into full-image coordinates.
func offsetBlocks(blocks []ocr.TextBlock, dx, dy float64) {
	shift := func(r *ocr.Region) { r.X += dx; r.Y += dy }
	for i := range blocks {
		shift(&blocks[i].Bounds)
		for j := range blocks[i].Lines {
			l := &blocks[i].Lines[j]
			shift(&l.Bounds)
			for k := range l.Words {
				shift(&l.Words[k].Bounds)
			}
		}
	}
}

func firstLanguage(langs []string) string {
	if len(langs) == 0 {
		return ""
	}
	return langs[0]
}

func cropImage(data []byte, region *ocr.Region) ([]byte, error) {
	if region == nil || region.IsEmpty() {
		return data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode for region: %w", err)
	}
	rect := image.Rect(
		int(math.Round(region.X)),
		int(math.Round(region.Y)),
		int(math.Round(region.X+region.Width)),
		int(math.Round(region.Y+region.Height)),
	).Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("region outside image bounds")
	}
	subImg, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return nil, fmt.Errorf("image does not support sub-image")
	}
	cropped := subImg.SubImage(rect)
	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("encode cropped image: %w", err)
	}
	return buf.Bytes(), nil
}
