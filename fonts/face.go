package fonts

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	tsfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// DefaultFaceName is the resource name used for the bundled Go Regular face.
const DefaultFaceName = "GoRegular"

// ErrFaceClosed is returned when a released face is used.
var ErrFaceClosed = errors.New("fonts: face closed")

// Face is a parsed TrueType font used to lay out invisible OCR text. It is
// safe for concurrent use.
type Face struct {
	name string
	ttf  []byte

	mu     sync.Mutex
	face   *tsfont.Face
	shaper shaping.HarfbuzzShaper
}

// LoadDefault parses the bundled Go Regular font.
func LoadDefault() (*Face, error) {
	return Load(DefaultFaceName, goregular.TTF)
}

// Load parses a TrueType/OpenType font program.
func Load(name string, ttf []byte) (*Face, error) {
	if len(ttf) == 0 {
		return nil, errors.New("fonts: empty font program")
	}
	face, err := tsfont.ParseTTF(bytes.NewReader(ttf))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return &Face{name: name, ttf: ttf, face: face}, nil
}

// Name returns the resource name of the face.
func (f *Face) Name() string { return f.name }

// TTF returns the font program for embedding.
func (f *Face) TTF() []byte { return f.ttf }

// Advance returns the shaped width of text in 1/1000 em units.
func (f *Face) Advance(text string) (float64, error) {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.face == nil {
		return 0, ErrFaceClosed
	}
	script := DetectScript(runes)
	out := f.shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: scriptDirection(script),
		Face:      f.face,
		Size:      fixed.Int26_6(1000 * 64),
		Script:    script,
		Language:  language.DefaultLanguage(),
	})
	var total float64
	for _, g := range out.Glyphs {
		total += float64(g.XAdvance) / 64.0
	}
	return total, nil
}

// TextWidth returns the width of text drawn at size, in the same units as size.
func (f *Face) TextWidth(text string, size float64) (float64, error) {
	adv, err := f.Advance(text)
	if err != nil {
		return 0, err
	}
	return adv * size / 1000, nil
}

// Close releases the parsed font. Later calls fail with ErrFaceClosed.
func (f *Face) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.face = nil
	return nil
}
