package searchify

import (
	"time"

	"github.com/wudi/pdfsearchify/fonts"
	"github.com/wudi/pdfsearchify/observability"
)

// DefaultPageDelay is the pause between finishing one page and starting the
// next.
const DefaultPageDelay = 100 * time.Millisecond

// Hooks observe scheduler progress. Every hook runs on the scheduler's
// sequence; nil hooks are skipped.
type Hooks struct {
	PageStarted  func(page int)
	PageFinished func(page int, searchified bool)
	Idle         func()
	Failed       func()
}

// Options configures a Scheduler. The zero value is usable.
type Options struct {
	PageDelay time.Duration
	// OCRTimeout abandons an OCR request that has not answered in time. The
	// image is then treated as having no text. Zero waits forever. The
	// abandoned call still occupies the backend: ocr.AsyncService starts the
	// next request only after it returns.
	OCRTimeout time.Duration
	Logger     observability.Logger
	Tracer     observability.Tracer
	Hooks      Hooks
	// LoadFont provides the face used for recognized text. Defaults to
	// fonts.LoadDefault.
	LoadFont func() (*fonts.Face, error)
}

func (o Options) withDefaults() Options {
	if o.PageDelay <= 0 {
		o.PageDelay = DefaultPageDelay
	}
	if o.Logger == nil {
		o.Logger = observability.NopLogger{}
	}
	if o.Tracer == nil {
		o.Tracer = observability.NopTracer()
	}
	if o.LoadFont == nil {
		o.LoadFont = fonts.LoadDefault
	}
	return o
}
