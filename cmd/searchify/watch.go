package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/wudi/pdfsearchify/config"
	"github.com/wudi/pdfsearchify/observability"
)

var settleDelay time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Searchify PDF files as they appear in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseOutputFormat(outputFormat)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		b, err := newBackend(ctx, cfgManager.Get().OCR)
		if err != nil {
			return err
		}
		defer b.close()

		cfgManager.OnChange(func(c *config.Config) {
			logger.Info("config reloaded", observability.Duration("page_delay", c.Scheduler.PageDelay))
		})
		if cfgManager.ConfigFileUsed() != "" {
			cfgManager.WatchConfig()
		}

		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer w.Close()
		if err := w.Add(args[0]); err != nil {
			return fmt.Errorf("watch %s: %w", args[0], err)
		}
		logger.Info("watching for pdf files", observability.String("dir", args[0]))

		process := func(path string) {
			report := processFile(ctx, path, "", cfgManager.Get(), b)
			if err := writeReports(cmd.OutOrStdout(), format, []DocumentReport{report}); err != nil {
				logger.Error("write report", observability.Error("error", err))
			}
		}
		return watchDir(ctx, w, settleDelay, process)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&settleDelay, "settle", time.Second, "quiet period after the last write before a file is processed")
}

// watchDir calls process for each PDF that was created or written, once it
// has been quiet for settle. It returns when ctx is done or the watcher closes.
func watchDir(ctx context.Context, w *fsnotify.Watcher, settle time.Duration, process func(path string)) error {
	if settle < 4*time.Millisecond {
		settle = 4 * time.Millisecond
	}
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(settle / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isPDF(ev.Name) {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
				pending[ev.Name] = time.Now()
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				delete(pending, ev.Name)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", observability.Error("error", err))
		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < settle {
					continue
				}
				delete(pending, path)
				process(path)
			}
		}
	}
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
