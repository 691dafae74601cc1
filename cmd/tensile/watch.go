package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/askiada/mechanical-testing/internal/batch"
	"github.com/askiada/mechanical-testing/internal/store"
	"github.com/askiada/mechanical-testing/internal/watch"
)

func newWatchCommand(root *rootOptions) *cobra.Command {
	var (
		flags    analysisFlags
		debounce string
	)

	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "analyse the test files written to a directory until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if cmd.Flags().Changed("debounce") {
				cfg.Watch.Debounce = debounce
			}
			err := flags.apply(cmd, cfg)
			if err != nil {
				return err
			}
			period, err := cfg.Watch.DebounceDuration()
			if err != nil {
				return err
			}

			analyzer, err := newAnalyzer(cfg, nil)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			runID := uuid.NewString()
			var s batch.Store
			if cfg.Store.Path != "" {
				db, err := store.Open(cfg.Store.Path)
				if err != nil {
					return err
				}
				defer db.Close()
				err = db.BeginRun(ctx, runID, args)
				if err != nil {
					return err
				}
				s = db
			}

			w, err := watch.New(args[0], period, watch.Analyze(analyzer, s, runID, nil))
			if err != nil {
				return err
			}

			return w.Run(ctx)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&debounce, "debounce", "", "Time a file must stay unchanged before it is analysed.")

	return cmd
}
