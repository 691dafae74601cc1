package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/mechanical-testing/internal/store"
)

func newHistoryCommand(root *rootOptions) *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "history NAME",
		Short: "print the past analyses of a test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := root.cfg.Store.Path
			if cmd.Flags().Changed("store") {
				path = storePath
			}
			if path == "" {
				return errors.New("no store configured, set store.path or --store")
			}

			s, err := store.Open(path)
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no analysis of %s\n", args[0])

				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "analysed at\trun\tE (MPa)\tSy (MPa)\tSu (MPa)\tA (-)\terror")
			for _, rec := range records {
				at := rec.AnalysedAt.Format(time.RFC3339)
				if rec.Properties == nil {
					fmt.Fprintf(tw, "%s\t%s\t\t\t\t\t%s\n", at, rec.RunID, rec.Err)

					continue
				}
				p := rec.Properties
				fmt.Fprintf(tw, "%s\t%s\t%.6g\t%.6g\t%.6g\t%.4g\t\n",
					at, rec.RunID, p.ElasticModulus/1e6, p.YieldStrength/1e6, p.UltimateStrength/1e6, p.ElongationAfterFracture)
			}

			return errors.Wrap(tw.Flush(), "unable to print history")
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "Path of the SQLite history of the analyses.")

	return cmd
}
