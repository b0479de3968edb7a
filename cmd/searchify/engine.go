package main

import (
	"context"
	"fmt"
	"time"

	"github.com/wudi/pdfsearchify/config"
	"github.com/wudi/pdfsearchify/ocr"
	"github.com/wudi/pdfsearchify/ocr/tesseract"
)

// backend is the OCR engine shared by every document of one invocation.
type backend struct {
	engine ocr.Engine
	close  func() error
}

func newBackend(ctx context.Context, cfg config.OCRConfig) (*backend, error) {
	var (
		engine ocr.Engine
		closer = func() error { return nil }
	)
	switch cfg.Engine {
	case "tesseract":
		t := tesseract.NewEngine()
		engine, closer = t, t.Close
	case "noop":
		engine = ocr.NoopEngine{}
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", cfg.Engine)
	}
	if cfg.CacheSize > 0 {
		engine = ocr.NewCachingEngine(engine, cfg.CacheSize)
	}
	if err := ocr.Connect(ctx, engine, cfg.ConnectAttempts, 500*time.Millisecond); err != nil {
		_ = closer()
		return nil, err
	}
	return &backend{engine: engine, close: closer}, nil
}

func inputOptions(cfg config.OCRConfig) []ocr.InputOption {
	opts := []ocr.InputOption{ocr.WithDPI(cfg.DPI)}
	if len(cfg.Languages) > 0 {
		opts = append(opts, ocr.WithLanguages(cfg.Languages...))
	}
	if cfg.PSM > 0 {
		opts = append(opts, ocr.WithTesseractPSM(cfg.PSM))
	}
	if cfg.Whitelist != "" {
		opts = append(opts, ocr.WithTesseractWhitelist(cfg.Whitelist))
	}
	return opts
}
