package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/askiada/mechanical-testing/internal/batch"
	"github.com/askiada/mechanical-testing/internal/log"
	"github.com/askiada/mechanical-testing/internal/metrics"
	"github.com/askiada/mechanical-testing/internal/report"
	"github.com/askiada/mechanical-testing/internal/store"
)

func newBatchCommand(root *rootOptions) *cobra.Command {
	var (
		flags     analysisFlags
		workers   int
		failFast  bool
		graph     string
		storePath string
		textfile  string
	)

	cmd := &cobra.Command{
		Use:   "batch PATH...",
		Short: "analyse every test file of directories and write plots, summaries and reports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			changed := cmd.Flags().Changed
			if changed("workers") {
				cfg.Batch.Workers = workers
			}
			if changed("fail-fast") {
				cfg.Batch.FailFast = failFast
			}
			if changed("graph") {
				cfg.Batch.Graph = graph
			}
			if changed("store") {
				cfg.Store.Path = storePath
			}
			if changed("metrics-textfile") {
				cfg.Metrics.Textfile = textfile
			}
			err := flags.apply(cmd, cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := log.MustGetLogger(ctx)

			reg := prom.NewRegistry()
			recorder := metrics.NewPrometheusRecorder(reg)

			analyzer, err := newAnalyzer(cfg, recorder)
			if err != nil {
				return err
			}

			opts := []batch.RunnerOption{
				batch.WithWorkers(cfg.Batch.Workers),
				batch.WithFailFast(cfg.Batch.FailFast),
				batch.WithGraph(cfg.Batch.Graph),
				batch.WithRecorder(recorder),
			}
			if cfg.Store.Path != "" {
				s, err := store.Open(cfg.Store.Path)
				if err != nil {
					return err
				}
				defer s.Close()
				opts = append(opts, batch.WithStore(s))
			}

			rep, err := batch.NewRunner(analyzer, opts...).Run(ctx, args)
			if err != nil {
				return err
			}

			err = writeReports(rep, cfg.Output.Directory, cfg.Output.Reports)
			if err != nil {
				return err
			}

			if cfg.Metrics.Textfile != "" {
				err = metrics.WriteTextfile(cfg.Metrics.Textfile, reg)
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d tests analysed, %d failed, results in %s\n",
				rep.RunID, rep.Succeeded(), len(rep.Failed()), cfg.Output.Directory)
			failed := rep.Failed()
			for _, e := range failed {
				logger.Warnw("test failed", "test", e.Name, "error", e.Err)
			}
			if len(failed) > 0 {
				return errors.Errorf("%d of %d tests failed", len(failed), len(rep.Entries()))
			}

			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of concurrent analyses.")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first failed analysis.")
	cmd.Flags().StringVar(&graph, "graph", "", "Write the Graphviz DOT graph of the run to this file.")
	cmd.Flags().StringVar(&storePath, "store", "", "Path of the SQLite history of the analyses.")
	cmd.Flags().StringVar(&textfile, "metrics-textfile", "", "Write the Prometheus metrics of the run to this file.")

	return cmd
}

func writeReports(rep *report.Report, dir string, formats []string) error {
	if len(formats) == 0 {
		return nil
	}

	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", dir)
	}
	for _, format := range formats {
		err = rep.Save(filepath.Join(dir, report.FileName(format)), format)
		if err != nil {
			return err
		}
	}

	return nil
}
