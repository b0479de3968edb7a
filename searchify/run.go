package searchify

import (
	"context"
	"errors"

	"github.com/wudi/pdfsearchify/ocr"
	"github.com/wudi/pdfsearchify/taskrunner"
)

// ErrFailed is returned by Run when the OCR service disconnected mid-run.
var ErrFailed = errors.New("searchify: ocr service disconnected")

// RunOptions configures Run.
type RunOptions struct {
	Options
	Service ocr.ServiceOptions
}

// Run searchifies pages of doc with backend and blocks until every page is
// done, the backend disconnects (ErrFailed), or ctx is cancelled.
func Run(ctx context.Context, doc Engine, backend ocr.Engine, pages []int, opts RunOptions) error {
	seq := taskrunner.NewSequence()
	svc := ocr.NewAsyncService(backend, seq, opts.Service)

	failed := false
	hooks := opts.Hooks
	opts.Hooks.Idle = func() {
		if hooks.Idle != nil {
			hooks.Idle()
		}
		seq.Stop()
	}
	opts.Hooks.Failed = func() {
		if hooks.Failed != nil {
			hooks.Failed()
		}
		failed = true
		seq.Stop()
	}

	s := New(doc, seq, opts.Options)
	svc.OnDisconnect(s.OnOcrServiceDisconnected)
	seq.PostTask(func() {
		for _, p := range pages {
			s.SchedulePage(p)
		}
		s.Start(svc.Perform)
		if s.IsIdleForTesting() {
			seq.Stop()
		}
	})
	seq.Run(ctx)

	svc.Close()
	svc.Wait()
	_ = s.Close()

	switch {
	case failed:
		return ErrFailed
	case ctx.Err() != nil:
		return ctx.Err()
	}
	return nil
}
