// Package batch analyses many tensile tests concurrently.
package batch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/mechanical-testing/internal/config"
	"github.com/askiada/mechanical-testing/internal/log"
	"github.com/askiada/mechanical-testing/internal/metrics"
	"github.com/askiada/mechanical-testing/pkg/tensile"
	"github.com/askiada/mechanical-testing/pkg/tensile/plot"
)

// Job is a file to analyse.
type Job struct {
	Index int
	Path  string
}

// Result is the outcome of the analysis of a job.
type Result struct {
	Job
	Name       string
	Test       *tensile.Test
	Properties *tensile.Properties
	Err        error
	AnalysedAt time.Time
	Duration   time.Duration
}

// Settings are the parameters shared by every analysis.
type Settings struct {
	Specimen    tensile.Specimen
	ReadOptions []tensile.ReadOption
	Analysis    tensile.AnalysisOptions
	OutputDir   string
	Plots       bool
	PlotFormat  string
	Summary     bool
}

// SettingsFromConfig builds the settings described by cfg.
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	specimen, err := cfg.Specimen.Build()
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		Specimen:    specimen,
		ReadOptions: cfg.Columns.ReadOptions(),
		Analysis:    cfg.Analysis.Options(),
		OutputDir:   cfg.Output.Directory,
		Plots:       cfg.Output.Plots,
		PlotFormat:  cfg.Output.PlotFormat,
		Summary:     cfg.Output.Summary,
	}, nil
}

// Analyzer analyses one file at a time and writes its artifacts. It is safe for concurrent use.
type Analyzer struct {
	settings Settings
	recorder metrics.Recorder
}

// NewAnalyzer creates an analyzer. A nil recorder records nothing.
func NewAnalyzer(settings Settings, recorder metrics.Recorder) (*Analyzer, error) {
	if settings.Specimen == nil {
		return nil, errors.Wrap(tensile.ErrInvalidSpecimen, "specimen must be set")
	}
	err := settings.Specimen.Validate()
	if err != nil {
		return nil, err
	}
	err = settings.Analysis.Validate()
	if err != nil {
		return nil, err
	}
	if settings.PlotFormat == "" {
		settings.PlotFormat = "png"
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	return &Analyzer{settings: settings, recorder: recorder}, nil
}

// Analyze loads and analyses the file of job. A failed analysis is reported on the result.
func (a *Analyzer) Analyze(ctx context.Context, job Job) *Result {
	logger := log.MustGetLogger(ctx)
	start := time.Now()
	res := &Result{Job: job, Name: tensile.TestName(job.Path), AnalysedAt: start}

	label := metrics.ResultSuccess
	defer func() {
		res.Duration = time.Since(start)
		a.recorder.ObserveAnalysis(res.Duration, label)
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
		label = metrics.ResultCanceled

		return res
	}

	test, err := tensile.Load(job.Path, a.settings.Specimen, a.settings.ReadOptions...)
	if err == nil {
		res.Test = test
		res.Properties, err = test.Analyze(tensile.WithOptions(a.settings.Analysis))
	}
	if err != nil {
		res.Err = errors.Wrapf(err, "unable to analyse %s", job.Path)
		label = metrics.ResultFailed
		logger.Warnw("analysis failed", "test", res.Name, "path", job.Path, "error", err)

		return res
	}

	logger.Debugw("test analysed",
		"test", res.Name,
		"samples", test.Len(),
		"elastic_modulus", res.Properties.ElasticModulus,
		"ultimate_strength", res.Properties.UltimateStrength,
	)

	return res
}

// Artifacts returns the files written for the test named name.
func (a *Analyzer) Artifacts(name string) []string {
	var paths []string
	if a.settings.Plots {
		paths = append(paths,
			filepath.Join(a.settings.OutputDir, name+"."+a.settings.PlotFormat),
			filepath.Join(a.settings.OutputDir, name+"_real_curve."+a.settings.PlotFormat),
		)
	}
	if a.settings.Summary {
		paths = append(paths, filepath.Join(a.settings.OutputDir, name+".csv"))
	}

	return paths
}

// WriteArtifacts writes the plots and the property summary of a successful result.
func (a *Analyzer) WriteArtifacts(res *Result) error {
	if res.Err != nil || res.Properties == nil {
		return nil
	}

	err := os.MkdirAll(a.settings.OutputDir, 0o755)
	if err != nil {
		return errors.Wrapf(err, "unable to create output directory %s", a.settings.OutputDir)
	}

	if a.settings.Plots {
		err = plot.Engineering(res.Test, res.Properties, res.Name,
			filepath.Join(a.settings.OutputDir, res.Name+"."+a.settings.PlotFormat))
		if err != nil {
			return err
		}
		err = plot.True(res.Test, res.Properties, res.Name+" (true curve)",
			filepath.Join(a.settings.OutputDir, res.Name+"_real_curve."+a.settings.PlotFormat))
		if err != nil {
			return err
		}
	}

	if a.settings.Summary {
		err = tensile.SaveSummary(filepath.Join(a.settings.OutputDir, res.Name+".csv"), res.Properties)
		if err != nil {
			return err
		}
	}

	return nil
}

// OutputDir returns the directory of the artifacts.
func (a *Analyzer) OutputDir() string {
	return a.settings.OutputDir
}
