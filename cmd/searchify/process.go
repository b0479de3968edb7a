package main

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/wudi/pdfsearchify/config"
	"github.com/wudi/pdfsearchify/loader"
	"github.com/wudi/pdfsearchify/observability"
	"github.com/wudi/pdfsearchify/ocr"
	"github.com/wudi/pdfsearchify/page"
	"github.com/wudi/pdfsearchify/searchify"
)

// DocumentReport summarizes one processed file.
type DocumentReport struct {
	File        string       `json:"file" yaml:"file"`
	Pages       int          `json:"pages" yaml:"pages"`
	Searchified int          `json:"searchified" yaml:"searchified"`
	Failed      bool         `json:"failed,omitempty" yaml:"failed,omitempty"`
	Error       string       `json:"error,omitempty" yaml:"error,omitempty"`
	PageReports []PageReport `json:"page_reports,omitempty" yaml:"page_reports,omitempty"`
}

// PageReport describes one scheduled page. Page is 1-based.
type PageReport struct {
	Page        int    `json:"page" yaml:"page"`
	Images      int    `json:"images" yaml:"images"`
	Searchified bool   `json:"searchified" yaml:"searchified"`
	Text        string `json:"text,omitempty" yaml:"text,omitempty"`
}

// processFile loads path and searchifies the selected pages.
func processFile(ctx context.Context, path, pageSel string, cfg *config.Config, b *backend) DocumentReport {
	report := DocumentReport{File: filepath.Base(path)}
	log := logger.With(observability.String("file", report.File))

	doc, err := loader.Load(path, loader.Options{Logger: log})
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Pages = doc.PageCount()
	pages, err := loader.ParsePages(pageSel, doc.PageCount())
	if err != nil {
		report.Error = err.Error()
		return report
	}

	err = searchify.Run(ctx, doc, b.engine, pages, searchify.RunOptions{
		Options: searchify.Options{
			PageDelay:  cfg.Scheduler.PageDelay,
			OCRTimeout: cfg.OCR.Timeout,
			Logger:     log,
		},
		Service: ocr.ServiceOptions{
			InputOptions: inputOptions(cfg.OCR),
			Logger:       log,
		},
	})
	switch {
	case errors.Is(err, searchify.ErrFailed):
		report.Failed = true
		report.Error = err.Error()
	case err != nil:
		report.Error = err.Error()
	}
	report.PageReports = pageReports(doc, pages)
	for _, pr := range report.PageReports {
		if pr.Searchified {
			report.Searchified++
		}
	}
	return report
}

func pageReports(doc *page.Document, pages []int) []PageReport {
	out := make([]PageReport, 0, len(pages))
	for _, i := range pages {
		p, ok := doc.Page(i)
		if !ok {
			continue
		}
		out = append(out, PageReport{
			Page:        i + 1,
			Images:      len(p.ImageObjectIndices()),
			Searchified: p.Searchified(),
			Text:        p.Text(),
		})
	}
	return out
}
