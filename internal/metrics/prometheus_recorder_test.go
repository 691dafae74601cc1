package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/mechanical-testing/pkg/pipeline"
)

func TestPrometheusRecorder(t *testing.T) {
	t.Parallel()

	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveAnalysis(150*time.Millisecond, ResultSuccess)
	pr.ObserveAnalysis(10*time.Millisecond, ResultSuccess)
	pr.ObserveAnalysis(20*time.Millisecond, ResultFailed)
	pr.ObserveStageDuration("analyze", time.Millisecond)
	pr.ObserveRunDuration(time.Second)
	pr.SetWorkers(4)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.tests.WithLabelValues(string(ResultSuccess))), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.tests.WithLabelValues(string(ResultFailed))), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(pr.workers), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 5)
}

func TestNilPrometheusRecorder(t *testing.T) {
	t.Parallel()

	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObserveAnalysis(time.Second, ResultSuccess)
		pr.ObserveStageDuration("analyze", time.Second)
		pr.ObserveRunDuration(time.Second)
		pr.SetWorkers(1)
	})
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveAnalysis(time.Second, ResultSuccess)

	path := filepath.Join(t.TempDir(), "tensile.prom")
	require.NoError(t, WriteTextfile(path, reg))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `tensile_tests_total{result="success"} 1`)

	assert.Error(t, WriteTextfile(filepath.Join(t.TempDir(), "missing", "tensile.prom"), reg))
}

func TestPipelineRecorder(t *testing.T) {
	t.Parallel()

	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pipe, err := pipeline.New(context.Background(), PipelineRecorder(pr))
	require.NoError(t, err)

	root, err := pipeline.AddRootStep(pipe, "files", func(ctx context.Context, out chan<- int) error {
		for i := 0; i < 3; i++ {
			out <- i
		}

		return nil
	})
	require.NoError(t, err)

	doubled, err := pipeline.AddStepOneToOne(pipe, "double", root, func(_ context.Context, in int) (int, error) {
		return in * 2, nil
	})
	require.NoError(t, err)

	var total int
	err = pipeline.AddSink(pipe, "sum", doubled, func(_ context.Context, in int) error {
		total += in

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, pipe.Run())
	assert.Equal(t, 6, total)

	assert.Equal(t, 2, testutil.CollectAndCount(pr.stageDuration))
	assert.Equal(t, 0, testutil.CollectAndCount(pr.analysisDuration))
}
