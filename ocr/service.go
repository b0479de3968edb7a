package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/wudi/pdfsearchify/observability"
	"github.com/wudi/pdfsearchify/taskrunner"
)

// PerformFunc requests OCR of one bitmap. done is invoked later on the
// caller's sequence with the annotation, or nil when nothing was recognized.
// done may never be invoked if the backend disconnects.
type PerformFunc func(img image.Image, done func(*Result))

// ServiceOptions configures an AsyncService.
type ServiceOptions struct {
	InputOptions []InputOption
	Logger       observability.Logger
	Tracer       observability.Tracer
}

// AsyncService runs a blocking Engine off-sequence and delivers results back
// onto a taskrunner.Runner. Engine calls run one at a time.
// Once the engine reports ErrDisconnected, or the service is closed, the
// disconnect handler is posted and no further results are delivered. Every
// later Perform posts the handler again instead of a result.
type AsyncService struct {
	engine Engine
	runner taskrunner.Runner
	opts   []InputOption
	log    observability.Logger
	tracer observability.Tracer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	calls  sync.Mutex

	mu           sync.Mutex
	disconnected bool
	onDisconnect func()
}

// NewAsyncService wraps engine. Results and the disconnect handler run on runner.
func NewAsyncService(engine Engine, runner taskrunner.Runner, opts ServiceOptions) *AsyncService {
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger{}
	}
	if opts.Tracer == nil {
		opts.Tracer = observability.NopTracer()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &AsyncService{
		engine: engine,
		runner: runner,
		opts:   opts.InputOptions,
		log:    opts.Logger.With(observability.String("engine", engine.Name())),
		tracer: opts.Tracer,
		ctx:    ctx,
		cancel: cancel,
	}
}

// OnDisconnect registers fn to run on the sequence when the backend goes away.
// If that already happened, fn is posted immediately.
func (s *AsyncService) OnDisconnect(fn func()) {
	s.mu.Lock()
	s.onDisconnect = fn
	gone := s.disconnected
	s.mu.Unlock()
	if gone && fn != nil {
		s.runner.PostTask(fn)
	}
}

// Connected reports whether the service still accepts requests.
func (s *AsyncService) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.disconnected
}

// Perform implements PerformFunc.
func (s *AsyncService) Perform(img image.Image, done func(*Result)) {
	s.mu.Lock()
	gone, fn := s.disconnected, s.onDisconnect
	s.mu.Unlock()
	if gone {
		// The caller may have been idle when the first notice arrived.
		if fn != nil {
			s.runner.PostTask(fn)
		}
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		res, err := s.recognize(img)
		switch {
		case errors.Is(err, ErrDisconnected), errors.Is(err, ErrServiceClosed), s.ctx.Err() != nil:
			s.log.Warn("ocr backend disconnected", observability.Error("error", err))
			s.disconnect()
			return
		case err != nil:
			s.log.Warn("ocr request failed", observability.Error("error", err))
			res = nil
		}
		if !s.Connected() {
			return
		}
		s.runner.PostTask(func() { done(res) })
	}()
}

// recognize waits for earlier engine calls to return, so an abandoned request
// still occupies the backend until it answers.
func (s *AsyncService) recognize(img image.Image) (*Result, error) {
	s.calls.Lock()
	defer s.calls.Unlock()
	if s.ctx.Err() != nil {
		return nil, ErrServiceClosed
	}
	in, err := InputFromBitmap(img, s.opts...)
	if err != nil {
		return nil, err
	}
	in.ID = uuid.NewString()
	ctx, span := s.tracer.StartSpan(s.ctx, observability.SpanOCRRecognize)
	defer span.Finish()
	span.SetTag("input", in.ID)

	start := time.Now()
	res, err := s.engine.Recognize(ctx, in)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("recognize %s: %w", in.ID, err)
	}
	if res.ImageWidth == 0 && res.ImageHeight == 0 {
		res.ImageWidth, res.ImageHeight = in.Width, in.Height
	}
	s.log.Debug("ocr request done",
		observability.String("input", in.ID),
		observability.Duration("elapsed", time.Since(start)),
		observability.Int("lines", len(res.Lines())))
	return &res, nil
}

func (s *AsyncService) disconnect() {
	s.mu.Lock()
	if s.disconnected {
		s.mu.Unlock()
		return
	}
	s.disconnected = true
	fn := s.onDisconnect
	s.mu.Unlock()
	if fn != nil {
		s.runner.PostTask(fn)
	}
}

// Close cancels in-flight requests and disconnects the service.
func (s *AsyncService) Close() error {
	s.cancel()
	s.disconnect()
	return nil
}

// Wait blocks until every in-flight engine call has returned.
func (s *AsyncService) Wait() { s.wg.Wait() }

// Connect checks that engine is reachable, retrying up to attempts times when
// it implements Pinger. Engines without Pinger are assumed reachable.
func Connect(ctx context.Context, engine Engine, attempts uint, delay time.Duration) error {
	p, ok := engine.(Pinger)
	if !ok {
		return nil
	}
	if attempts == 0 {
		attempts = 1
	}
	err := retry.Do(
		func() error { return p.Ping(ctx) },
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("connect %s: %w", engine.Name(), err)
	}
	return nil
}
