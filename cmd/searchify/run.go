package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	pageSelection string
	parallel      int
)

var runCmd = &cobra.Command{
	Use:   "run [flags] file.pdf...",
	Short: "Searchify one or more PDF files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseOutputFormat(outputFormat)
		if err != nil {
			return err
		}
		cfg := cfgManager.Get()
		b, err := newBackend(cmd.Context(), cfg.OCR)
		if err != nil {
			return err
		}
		defer b.close()

		reports := make([]DocumentReport, len(args))
		g, ctx := errgroup.WithContext(cmd.Context())
		if parallel > 0 {
			g.SetLimit(parallel)
		}
		for i, path := range args {
			g.Go(func() error {
				reports[i] = processFile(ctx, path, pageSelection, cfg, b)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if err := writeReports(cmd.OutOrStdout(), format, reports); err != nil {
			return err
		}
		for _, r := range reports {
			if r.Error != "" {
				return fmt.Errorf("%s: %s", r.File, r.Error)
			}
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&pageSelection, "pages", "p", "", "1-based pages to process, e.g. 1,3-5 (default: all)")
	runCmd.Flags().IntVar(&parallel, "parallel", 2, "documents processed at once (0 = unlimited)")
}
