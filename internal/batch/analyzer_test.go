package batch_test

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

	"github.com/askiada/mechanical-testing/internal/batch"
	"github.com/askiada/mechanical-testing/internal/log"
	"github.com/askiada/mechanical-testing/internal/metrics"
	"github.com/askiada/mechanical-testing/pkg/tensile"
)

func TestAnalyze(t *testing.T) {
	t.Parallel()

	ctx := log.NewTestContext()
	dir := t.TempDir()
	analyzer := newAnalyzer(t, filepath.Join(dir, "out"), nil)

	res := analyzer.Analyze(ctx, batch.Job{Index: 3, Path: writeTestFile(t, dir, "steel.csv", 1)})
	require.NoError(t, res.Err)
	assert.Equal(t, "steel", res.Name)
	assert.Equal(t, 3, res.Index)
	assert.Positive(t, res.Duration)
	require.NotNil(t, res.Properties)
	assert.InEpsilon(t, 200e9, res.Properties.ElasticModulus, 1e-6)
	assert.InEpsilon(t, 560e6, res.Properties.UltimateStrength, 1e-6)
	assert.True(t, res.Properties.HasYield())

	rec := res.Record()
	assert.Empty(t, rec.Err)
	assert.Same(t, res.Properties, rec.Properties)
	assert.Equal(t, "steel", res.Entry().Name)
}

func TestAnalyzeFailure(t *testing.T) {
	t.Parallel()

	ctx := log.NewTestContext()
	dir := t.TempDir()
	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)
	analyzer := newAnalyzer(t, filepath.Join(dir, "out"), recorder)

	res := analyzer.Analyze(ctx, batch.Job{Path: writeBrokenFile(t, dir, "broken.csv")})
	require.ErrorIs(t, res.Err, tensile.ErrMissingColumn)
	assert.Nil(t, res.Properties)
	assert.True(t, res.Entry().Failed())
	assert.Nil(t, res.Record().Properties)
	assert.Contains(t, res.Record().Err, "broken.csv")

	require.NoError(t, analyzer.WriteArtifacts(res))
	_, err := os.Stat(filepath.Join(dir, "out"))
	assert.True(t, os.IsNotExist(err))

	res = analyzer.Analyze(ctx, batch.Job{Path: writeTestFile(t, dir, "steel.csv", 1)})
	require.NoError(t, res.Err)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	res = analyzer.Analyze(canceled, batch.Job{Path: filepath.Join(dir, "steel.csv")})
	assert.ErrorIs(t, res.Err, context.Canceled)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var tests float64
	for _, mf := range mfs {
		if mf.GetName() == "tensile_tests_total" {
			for _, m := range mf.GetMetric() {
				tests += m.GetCounter().GetValue()
			}
		}
	}
	assert.InDelta(t, 3, tests, 0)

	series, err := testutil.GatherAndCount(reg, "tensile_tests_total")
	require.NoError(t, err)
	assert.Equal(t, 3, series)
}

func TestWriteArtifacts(t *testing.T) {
	t.Parallel()

	ctx := log.NewTestContext()
	dir := t.TempDir()
	outputDir := filepath.Join(dir, "run_all_tensile_tests")
	analyzer := newAnalyzer(t, outputDir, metrics.NoopRecorder{})

	res := analyzer.Analyze(ctx, batch.Job{Path: writeTestFile(t, dir, "steel.csv", 1)})
	require.NoError(t, res.Err)
	require.NoError(t, analyzer.WriteArtifacts(res))

	expected := []string{
		filepath.Join(outputDir, "steel.png"),
		filepath.Join(outputDir, "steel_real_curve.png"),
		filepath.Join(outputDir, "steel.csv"),
	}
	assert.Equal(t, expected, analyzer.Artifacts("steel"))
	for _, path := range expected {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestNewAnalyzerErrors(t *testing.T) {
	t.Parallel()

	_, err := batch.NewAnalyzer(batch.Settings{Analysis: tensile.DefaultAnalysisOptions()}, nil)
	assert.ErrorIs(t, err, tensile.ErrInvalidSpecimen)

	_, err = batch.NewAnalyzer(batch.Settings{
		Specimen: tensile.RoundSpecimen{Length: 1, Diameter: 1},
	}, nil)
	assert.ErrorIs(t, err, tensile.ErrInvalidOption)
}

func TestListFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outputDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.MkdirAll(outputDir, 0o755))

	b := writeTestFile(t, dir, "b.csv", 1)
	a := writeTestFile(t, dir, "a.CSV", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o600))
	writeTestFile(t, filepath.Join(dir, "nested"), "c.csv", 1)
	writeTestFile(t, outputDir, "a.csv", 1)
	explicit := filepath.Join(dir, "notes.txt")

	files, err := batch.ListFiles([]string{dir, b, explicit, outputDir}, outputDir)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, explicit}, files)

	_, err = batch.ListFiles([]string{outputDir}, outputDir)
	assert.ErrorIs(t, err, batch.ErrNoInput)

	_, err = batch.ListFiles([]string{filepath.Join(dir, "missing")}, "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAnalyzeDuration(t *testing.T) {
	t.Parallel()

	ctx := log.NewTestContext()
	dir := t.TempDir()
	analyzer := newAnalyzer(t, dir, nil)

	before := time.Now()
	res := analyzer.Analyze(ctx, batch.Job{Path: writeTestFile(t, dir, "steel.csv", 1)})
	assert.False(t, res.AnalysedAt.Before(before))
}
