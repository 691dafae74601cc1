package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/askiada/mechanical-testing/internal/config"
	"github.com/askiada/mechanical-testing/internal/log"
)

const (
	flagConfig  = "config"
	flagVerbose = "verbose"
	flagLogFile = "log-file"

	defaultConfigFile = "tensile.yaml"
)

type rootOptions struct {
	configPath string
	verbose    bool
	logFile    string

	cfg   *config.Config
	flush func()
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tensile",
		Short:         "tensile - analyse the recordings of tensile tests",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, flagConfig, "", "Path to the YAML configuration, "+defaultConfigFile+" when it exists.")
	cmd.PersistentFlags().BoolVar(&opts.verbose, flagVerbose, false, "Enable verbose logging.")
	cmd.PersistentFlags().StringVar(&opts.logFile, flagLogFile, "", "Path to the file where JSON logs will be written.")

	cmd.AddCommand(
		newAnalyzeCommand(opts),
		newBatchCommand(opts),
		newWatchCommand(opts),
		newHistoryCommand(opts),
		newInitCommand(),
	)

	return cmd
}

// close flushes the logs and closes the log file. It must be called once the command
// returned, whether it failed or not.
func (o *rootOptions) close() {
	if o.flush != nil {
		o.flush()
		o.flush = nil
	}
}

// setup loads the configuration and puts the logger on the command context.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	o.cfg = cfg

	logFile := cfg.Logging.File
	if cmd.Flags().Changed(flagLogFile) {
		logFile = o.logFile
	}
	verbose := cfg.Logging.Verbose || o.verbose

	logger, flush, err := log.NewProductionLogger(logFile, verbose)
	if err != nil {
		return err
	}
	o.flush = flush

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(log.WithLogger(ctx, logger))

	return nil
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		_, err := os.Stat(defaultConfigFile)
		if err != nil {
			return config.Default(), nil
		}
		path = defaultConfigFile
	}

	return config.Load(path)
}
