package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/askiada/mechanical-testing/internal/log"
	"github.com/askiada/mechanical-testing/internal/metrics"
	"github.com/askiada/mechanical-testing/internal/report"
	"github.com/askiada/mechanical-testing/internal/store"
	"github.com/askiada/mechanical-testing/pkg/pipeline"
	"github.com/askiada/mechanical-testing/pkg/pipeline/drawer"
	"github.com/askiada/mechanical-testing/pkg/pipeline/measure"
	"github.com/askiada/mechanical-testing/pkg/pipeline/model"
)

// Store keeps the history of the runs.
type Store interface {
	BeginRun(ctx context.Context, runID string, inputs []string) error
	Save(ctx context.Context, runID string, rec store.Record) error
}

// Runner analyses every test file of a run through a pipeline:
// expand the inputs into files, analyse them concurrently, then write the artifacts, save
// them in the store and collect them in the report.
type Runner struct {
	analyzer *Analyzer
	workers  int
	failFast bool
	graph    string
	store    Store
	recorder metrics.Recorder
}

// RunnerOption configures a Runner.
type RunnerOption func(r *Runner)

// WithWorkers sets the number of concurrent analyses.
func WithWorkers(workers int) RunnerOption {
	return func(r *Runner) {
		r.workers = workers
	}
}

// WithFailFast stops the run at the first failed analysis.
func WithFailFast(failFast bool) RunnerOption {
	return func(r *Runner) {
		r.failFast = failFast
	}
}

// WithGraph writes the DOT graph of the pipeline, annotated with the stage durations, to path.
func WithGraph(path string) RunnerOption {
	return func(r *Runner) {
		r.graph = path
	}
}

// WithStore saves every result in s.
func WithStore(s Store) RunnerOption {
	return func(r *Runner) {
		r.store = s
	}
}

// WithRecorder records the duration of the run and of every stage.
func WithRecorder(recorder metrics.Recorder) RunnerOption {
	return func(r *Runner) {
		r.recorder = recorder
	}
}

// NewRunner creates a runner with one worker by default.
func NewRunner(analyzer *Analyzer, opts ...RunnerOption) *Runner {
	r := &Runner{
		analyzer: analyzer,
		workers:  1,
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = 1
	}

	return r
}

// Run analyses the files of inputs and returns the report of the run. Failed analyses are
// part of the report unless fail fast is set, in which case the first one is returned.
func (r *Runner) Run(ctx context.Context, inputs []string) (*report.Report, error) {
	logger := log.MustGetLogger(ctx)
	start := time.Now()

	lister, err := newFileLister(r.analyzer.OutputDir())
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	rep := report.New(runID)

	logger.Infow("starting run", "run_id", runID, "inputs", inputs, "workers", r.workers)
	r.recorder.SetWorkers(r.workers)

	opts := []model.PipelineOption{metrics.PipelineRecorder(r.recorder)}
	if r.graph != "" {
		err = os.MkdirAll(filepath.Dir(r.graph), 0o755)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to create directory of %s", r.graph)
		}
		msr := measure.NewDefaultMeasure()
		opts = append(opts, measure.PipelineMeasure(msr), drawer.PipelineDrawer(drawer.NewDOTDrawer(r.graph), msr))
	}

	pipe, err := pipeline.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	err = r.build(pipe, inputs, lister, runID, rep)
	if err != nil {
		pipe.Cancel()

		return nil, err
	}

	err = pipe.Run()
	if err == nil {
		// stages may all finish before noticing the cancellation
		err = ctx.Err()
	}
	r.recorder.ObserveRunDuration(time.Since(start))
	if err != nil {
		return nil, errors.Wrap(err, "run failed")
	}
	if len(rep.Entries()) == 0 {
		return nil, errors.Wrapf(ErrNoInput, "in %s", strings.Join(inputs, ", "))
	}

	logger.Infow("run finished",
		"run_id", runID,
		"analysed", rep.Succeeded(),
		"failed", len(rep.Failed()),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return rep, nil
}

func (r *Runner) build(pipe *pipeline.Pipeline, inputs []string, lister *fileLister, runID string, rep *report.Report) error {
	paths, err := pipeline.AddRootStep(pipe, "inputs", func(ctx context.Context, out chan<- string) error {
		for _, input := range inputs {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- input:
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	// a single worker keeps the job indexes in the order of the inputs
	index := 0
	jobs, err := pipeline.AddStepOneToMany(pipe, "list files", paths, func(_ context.Context, input string) ([]Job, error) {
		files, err := lister.Expand(input)
		if err != nil {
			return nil, err
		}
		jobs := make([]Job, 0, len(files))
		for _, path := range files {
			jobs = append(jobs, Job{Index: index, Path: path})
			index++
		}

		return jobs, nil
	})
	if err != nil {
		return err
	}

	results, err := pipeline.AddStepOneToOne(pipe, "analyze", jobs, func(ctx context.Context, job Job) (*Result, error) {
		res := r.analyzer.Analyze(ctx, job)
		if res.Err != nil && r.failFast {
			return nil, res.Err
		}

		return res, nil
	}, pipeline.StepConcurrency[*Result](r.workers), pipeline.StepBufferSize[*Result](r.workers))
	if err != nil {
		return err
	}

	total := 2
	if r.store != nil {
		total++
	}
	splitter, err := pipeline.AddSplitter(pipe, "split", results, total, pipeline.SplitterBufferSize[*Result](r.workers))
	if err != nil {
		return err
	}

	artifacts, _ := splitter.Get()
	err = pipeline.AddSink(pipe, "write artifacts", artifacts, func(_ context.Context, res *Result) error {
		return r.analyzer.WriteArtifacts(res)
	})
	if err != nil {
		return err
	}

	collect, _ := splitter.Get()
	err = pipeline.AddSink(pipe, "collect", collect, func(_ context.Context, res *Result) error {
		rep.Add(res.Entry())

		return nil
	})
	if err != nil {
		return err
	}

	if r.store != nil {
		// the run is recorded with its first result, a run without files is not recorded
		begun := false
		save, _ := splitter.Get()
		err = pipeline.AddSink(pipe, "save", save, func(ctx context.Context, res *Result) error {
			if !begun {
				err := r.store.BeginRun(ctx, runID, inputs)
				if err != nil {
					return err
				}
				begun = true
			}

			return r.store.Save(ctx, runID, res.Record())
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// Entry converts the result for the report.
func (res *Result) Entry() report.Entry {
	return report.Entry{
		Name:       res.Name,
		Path:       res.Path,
		Properties: res.Properties,
		Err:        res.Err,
		Duration:   res.Duration,
	}
}

// Record converts the result for the store.
func (res *Result) Record() store.Record {
	rec := store.Record{
		Name:       res.Name,
		Path:       res.Path,
		AnalysedAt: res.AnalysedAt,
		Duration:   res.Duration,
		Properties: res.Properties,
	}
	if res.Err != nil {
		rec.Err = res.Err.Error()
		rec.Properties = nil
	}

	return rec
}
