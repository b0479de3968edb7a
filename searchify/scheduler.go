// Package searchify makes image-only PDF pages searchable on demand. A
// Scheduler queues pages, sends their images to an asynchronous OCR service
// one at a time, and writes the recognized text back into the page.
package searchify

import (
	"context"
	"image"
	"slices"

	"github.com/wudi/pdfsearchify/fonts"
	"github.com/wudi/pdfsearchify/observability"
	"github.com/wudi/pdfsearchify/ocr"
	"github.com/wudi/pdfsearchify/taskrunner"
)

// State is the scheduler's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateWaitingForResults
	// StateFailed is terminal: the OCR service went away while work was
	// in flight.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaitingForResults:
		return "waiting_for_results"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Scheduler searchifies pages in the order they are scheduled. All methods,
// and every callback it hands out, must run on the sequence behind runner.
type Scheduler struct {
	engine Engine
	runner taskrunner.Runner
	opts   Options
	log    observability.Logger

	perform ocr.PerformFunc
	face    *fonts.Face
	state   State
	closed  bool

	queue   []int
	current *pageCursor

	// pending identifies the outstanding OCR request; 0 means none.
	pending uint64
	lastID  uint64
}

type pageCursor struct {
	page        int
	images      []int
	span        observability.Span
	ocrCalls    int
	skipped     int
	searchified bool
}

// New returns an idle scheduler. Pages may be scheduled before Start.
func New(engine Engine, runner taskrunner.Runner, opts Options) *Scheduler {
	opts = opts.withDefaults()
	return &Scheduler{
		engine: engine,
		runner: runner,
		opts:   opts,
		log:    opts.Logger.With(observability.String("component", "searchify")),
	}
}

// Start activates the scheduler with the OCR entry point. It loads the font
// used for recognized text and begins work if pages are already queued.
// Calling Start twice panics.
func (s *Scheduler) Start(perform ocr.PerformFunc) {
	if perform == nil {
		panic("searchify: Start with nil perform")
	}
	if s.perform != nil || s.state != StateIdle {
		panic("searchify: Start called twice")
	}
	face, err := s.opts.LoadFont()
	if err != nil {
		s.log.Error("load ocr text font", observability.Error("error", err))
	}
	s.perform = perform
	s.face = face
	if len(s.queue) > 0 {
		s.state = StateWaitingForResults
		s.runner.PostTask(s.searchifyNextPage)
	}
}

// SchedulePage queues page unless it is already queued or being processed.
// It is a no-op once the scheduler has failed.
func (s *Scheduler) SchedulePage(page int) {
	if s.closed || s.state == StateFailed || s.IsPageScheduled(page) {
		return
	}
	s.queue = append(s.queue, page)
	if s.perform != nil && s.state == StateIdle {
		s.state = StateWaitingForResults
		s.runner.PostTask(s.searchifyNextPage)
	}
}

// IsPageScheduled reports whether page is queued or currently processed.
func (s *Scheduler) IsPageScheduled(page int) bool {
	if s.current != nil && s.current.page == page {
		return true
	}
	return slices.Contains(s.queue, page)
}

// RemovePageFromQueue drops a page that has not started yet. The current
// page cannot be cancelled.
func (s *Scheduler) RemovePageFromQueue(page int) {
	if i := slices.Index(s.queue, page); i >= 0 {
		s.queue = slices.Delete(s.queue, i, i+1)
	}
}

// OnOcrServiceDisconnected reports that the OCR service is gone. In-flight
// and queued work is discarded and the scheduler fails permanently. While
// idle nothing is lost, so the call is ignored.
func (s *Scheduler) OnOcrServiceDisconnected() {
	if s.state != StateWaitingForResults {
		return
	}
	s.log.Warn("ocr service disconnected",
		observability.Int("queued", len(s.queue)),
		observability.Bool("in_flight", s.pending != 0))
	if s.current != nil {
		s.current.span.SetError(ocr.ErrDisconnected)
		s.current.span.Finish()
	}
	s.current = nil
	s.queue = nil
	s.pending = 0
	s.state = StateFailed
	if s.opts.Hooks.Failed != nil {
		s.opts.Hooks.Failed()
	}
}

func (s *Scheduler) HasFailed() bool { return s.state == StateFailed }

func (s *Scheduler) IsIdleForTesting() bool { return s.state == StateIdle }

func (s *Scheduler) State() State { return s.state }

// QueueLen returns the number of pages waiting to start.
func (s *Scheduler) QueueLen() int { return len(s.queue) }

// Close abandons all work and releases the font.
func (s *Scheduler) Close() error {
	s.closed = true
	s.queue = nil
	s.current = nil
	s.pending = 0
	if s.face == nil {
		return nil
	}
	return s.face.Close()
}

func (s *Scheduler) searchifyNextPage() {
	if s.closed || s.state == StateFailed {
		return
	}
	if len(s.queue) == 0 {
		s.state = StateIdle
		if s.opts.Hooks.Idle != nil {
			s.opts.Hooks.Idle()
		}
		return
	}
	s.state = StateWaitingForResults
	page := s.queue[0]
	s.queue = slices.Delete(s.queue, 0, 1)

	if !s.engine.HasPage(page) {
		s.log.Warn("scheduled page does not exist", observability.Int("page", page))
		s.runner.PostDelayedTask(s.searchifyNextPage, s.opts.PageDelay)
		return
	}

	_, span := s.opts.Tracer.StartSpan(context.Background(), observability.SpanSearchifyPage)
	span.SetTag("page", page)
	s.current = &pageCursor{
		page:   page,
		images: s.engine.ImageObjectIndices(page),
		span:   span,
	}
	s.log.Debug("page started", observability.Int("page", page), observability.Int("images", len(s.current.images)))
	if s.opts.Hooks.PageStarted != nil {
		s.opts.Hooks.PageStarted(page)
	}
	s.searchifyNextImage()
}

// searchifyNextImage sends the next usable image of the current page to OCR,
// or finishes the page when none is left. Images are taken from the back.
func (s *Scheduler) searchifyNextImage() {
	cur := s.current
	for len(cur.images) > 0 {
		n := len(cur.images) - 1
		object := cur.images[n]
		cur.images = cur.images[:n]

		bmp := s.engine.Bitmap(cur.page, object)
		if ocr.IsDegenerate(bmp) {
			cur.skipped++
			s.log.Debug("skipping empty bitmap", observability.Int("page", cur.page), observability.Int("object", object))
			continue
		}
		size := bmp.Bounds().Size()
		s.lastID++
		id := s.lastID
		s.pending = id
		cur.ocrCalls++
		if s.opts.OCRTimeout > 0 {
			s.runner.PostDelayedTask(func() { s.onOcrTimeout(id, object) }, s.opts.OCRTimeout)
		}
		s.perform(bmp, func(res *ocr.Result) { s.onOcrResult(id, object, size, res) })
		return
	}
	s.finishPage()
}

func (s *Scheduler) onOcrResult(id uint64, object int, size image.Point, res *ocr.Result) {
	if s.state != StateWaitingForResults || s.current == nil || id != s.pending {
		s.log.Debug("dropping stale ocr result", observability.Int("object", object))
		return
	}
	s.pending = 0
	cur := s.current
	if !res.IsEmpty() {
		cur.searchified = true
		s.engine.MarkSearchified(cur.page)
		s.engine.ApplyAnnotation(cur.page, object, size, res, s.face)
	}
	s.searchifyNextImage()
}

func (s *Scheduler) onOcrTimeout(id uint64, object int) {
	if s.state != StateWaitingForResults || s.current == nil || id != s.pending {
		return
	}
	s.log.Warn("ocr request timed out",
		observability.Int("page", s.current.page),
		observability.Int("object", object),
		observability.Duration("timeout", s.opts.OCRTimeout))
	s.pending = 0
	s.searchifyNextImage()
}

func (s *Scheduler) finishPage() {
	cur := s.current
	s.engine.ReloadText(cur.page)
	if err := s.engine.GenerateContent(cur.page); err != nil {
		s.log.Error("regenerate page content", observability.Int("page", cur.page), observability.Error("error", err))
		cur.span.SetError(err)
	}
	cur.span.SetTag("ocr_calls", cur.ocrCalls)
	cur.span.Finish()
	s.current = nil
	s.log.Debug("page finished",
		observability.Int("page", cur.page),
		observability.Int("ocr_calls", cur.ocrCalls),
		observability.Int("skipped", cur.skipped),
		observability.Bool("searchified", cur.searchified))
	if s.opts.Hooks.PageFinished != nil {
		s.opts.Hooks.PageFinished(cur.page, cur.searchified)
	}
	s.runner.PostDelayedTask(s.searchifyNextPage, s.opts.PageDelay)
}
