package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wudi/pdfsearchify/config"
	"github.com/wudi/pdfsearchify/observability"
)

var (
	cfgFile      string
	outputFormat string
	logLevel     string

	cfgManager *config.Manager
	logger     observability.Logger = observability.NopLogger{}
)

var rootCmd = &cobra.Command{
	Use:   "searchify",
	Short: "Make scanned PDF pages searchable with OCR",
	Long: `searchify finds the images on each page of a PDF, recognizes their text
with OCR one image at a time, and lays the text over the page as an
invisible, selectable layer. It prints a per-page report.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./searchify.yaml or ~/.searchify/searchify.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml, json, markdown or html",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "override log.level (debug, info, warn, error)",
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if _, err := parseOutputFormat(outputFormat); err != nil {
			return err
		}
		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfgManager = cm
		cfg := cm.Get()
		if logLevel != "" {
			cfg.Log.Level = logLevel
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
		}
		logger = newLogger(cfg)
		return nil
	}

	rootCmd.AddCommand(runCmd, watchCmd, configCmd, versionCmd)
}

func newLogger(cfg *config.Config) observability.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Log.Format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	return observability.NewSlogLogger(slog.New(h))
}
