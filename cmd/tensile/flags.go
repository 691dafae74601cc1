package main

import (
	"github.com/spf13/cobra"

	"github.com/askiada/mechanical-testing/internal/batch"
	"github.com/askiada/mechanical-testing/internal/config"
	"github.com/askiada/mechanical-testing/internal/metrics"
)

// analysisFlags override the specimen, analysis and output sections of the configuration.
type analysisFlags struct {
	shape       string
	unit        string
	length      float64
	diameter    float64
	width       float64
	thickness   float64
	yieldOffset float64
	output      string
	plotFormat  string
	noPlots     bool
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.shape, "shape", config.ShapeRound, "Specimen shape: round or rectangular.")
	cmd.Flags().StringVar(&f.unit, "unit", config.UnitMillimetre, "Unit of the specimen dimensions: m or mm.")
	cmd.Flags().Float64Var(&f.length, "length", 0, "Gauge length of the specimen.")
	cmd.Flags().Float64Var(&f.diameter, "diameter", 0, "Diameter of a round specimen.")
	cmd.Flags().Float64Var(&f.width, "width", 0, "Width of a rectangular specimen.")
	cmd.Flags().Float64Var(&f.thickness, "thickness", 0, "Thickness of a rectangular specimen.")
	cmd.Flags().Float64Var(&f.yieldOffset, "yield-offset", 0, "Strain offset of the yield line, 0.002 for the 0.2% offset method.")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Directory of the plots, summaries and reports.")
	cmd.Flags().StringVar(&f.plotFormat, "plot-format", "", "Format of the plots: png, svg or pdf.")
	cmd.Flags().BoolVar(&f.noPlots, "no-plots", false, "Do not draw the curves.")
}

// apply overrides cfg with the flags set on the command line and validates the result.
func (f *analysisFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("shape") {
		cfg.Specimen.Shape = f.shape
	}
	if changed("unit") {
		cfg.Specimen.Unit = f.unit
	}
	if changed("length") {
		cfg.Specimen.Length = f.length
	}
	if changed("diameter") {
		cfg.Specimen.Diameter = f.diameter
	}
	if changed("width") {
		cfg.Specimen.Width = f.width
	}
	if changed("thickness") {
		cfg.Specimen.Thickness = f.thickness
	}
	if changed("yield-offset") {
		cfg.Analysis.YieldOffset = f.yieldOffset
	}
	if changed("output") {
		cfg.Output.Directory = f.output
	}
	if changed("plot-format") {
		cfg.Output.PlotFormat = f.plotFormat
	}
	if f.noPlots {
		cfg.Output.Plots = false
	}

	return cfg.Validate()
}

func newAnalyzer(cfg *config.Config, recorder metrics.Recorder) (*batch.Analyzer, error) {
	settings, err := batch.SettingsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	return batch.NewAnalyzer(settings, recorder)
}
