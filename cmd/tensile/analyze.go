package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/mechanical-testing/internal/batch"
	"github.com/askiada/mechanical-testing/pkg/tensile"
)

func newAnalyzeCommand(root *rootOptions) *cobra.Command {
	var (
		flags     analysisFlags
		artifacts bool
	)

	cmd := &cobra.Command{
		Use:   "analyze PATH...",
		Short: "print the properties of tensile tests",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := flags.apply(cmd, root.cfg)
			if err != nil {
				return err
			}

			analyzer, err := newAnalyzer(root.cfg, nil)
			if err != nil {
				return err
			}

			var (
				failed int
				total  int
				paths  []string
			)
			for _, arg := range args {
				files, err := batch.ListFiles([]string{arg}, "")
				if err != nil {
					failed++
					total++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", arg, err)

					continue
				}
				paths = append(paths, files...)
			}

			total += len(paths)
			for i, path := range paths {
				res := analyzer.Analyze(cmd.Context(), batch.Job{Index: i, Path: path})
				if res.Err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, res.Err)

					continue
				}

				err = printProperties(cmd.OutOrStdout(), res.Name, res.Properties)
				if err != nil {
					return err
				}

				if artifacts {
					err = analyzer.WriteArtifacts(res)
					if err != nil {
						return err
					}
				}
			}

			if failed > 0 {
				return errors.Errorf("%d of %d tests failed", failed, total)
			}

			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&artifacts, "artifacts", false, "Write the plots and the summary of every test in the output directory.")

	return cmd
}

func printProperties(w io.Writer, name string, props *tensile.Properties) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n", name)
	for _, row := range props.Rows() {
		fmt.Fprintf(tw, "  %s\t%s\t%.6g\t%s\n", row.Name, row.Symbol, row.Value, row.Unit)
	}
	fmt.Fprintln(tw)

	return errors.Wrap(tw.Flush(), "unable to print properties")
}
