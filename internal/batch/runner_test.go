package batch_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/mechanical-testing/internal/batch"
	"github.com/askiada/mechanical-testing/internal/log"
	"github.com/askiada/mechanical-testing/internal/store"
	"github.com/askiada/mechanical-testing/pkg/tensile"
)

type memoryStore struct {
	mu      sync.Mutex
	runs    map[string][]string
	records map[string][]store.Record
}

func newMemoryStore() *memoryStore {
	return &memoryStore{runs: map[string][]string{}, records: map[string][]store.Record{}}
}

func (m *memoryStore) BeginRun(_ context.Context, runID string, inputs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[runID] = inputs

	return nil
}

func (m *memoryStore) Save(_ context.Context, runID string, rec store.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[runID] = append(m.records[runID], rec)

	return nil
}

func TestRun(t *testing.T) {
	t.Parallel()

	ctx := log.NewTestContext()
	dir := t.TempDir()
	outputDir := filepath.Join(dir, "run_all_tensile_tests")
	for _, name := range []string{"steel_1.csv", "steel_2.csv", "steel_3.csv", "steel_4.csv"} {
		writeTestFile(t, dir, name, 1)
	}
	writeBrokenFile(t, dir, "broken.csv")

	s := newMemoryStore()
	graph := filepath.Join(outputDir, "pipeline.dot")
	runner := batch.NewRunner(newAnalyzer(t, outputDir, nil),
		batch.WithWorkers(3),
		batch.WithStore(s),
		batch.WithGraph(graph),
	)

	rep, err := runner.Run(ctx, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Succeeded())
	require.Len(t, rep.Failed(), 1)
	assert.Equal(t, "broken", rep.Failed()[0].Name)
	assert.ErrorIs(t, rep.Failed()[0].Err, tensile.ErrMissingColumn)

	require.Len(t, s.runs, 1)
	require.Contains(t, s.runs, rep.RunID)
	assert.Equal(t, []string{dir}, s.runs[rep.RunID])
	assert.Len(t, s.records[rep.RunID], 5)

	for _, name := range []string{"steel_1", "steel_2", "steel_3", "steel_4"} {
		for _, suffix := range []string{".png", "_real_curve.png", ".csv"} {
			_, err := os.Stat(filepath.Join(outputDir, name+suffix))
			assert.NoError(t, err, name+suffix)
		}
	}
	_, err = os.Stat(filepath.Join(outputDir, "broken.png"))
	assert.True(t, os.IsNotExist(err))

	content, err := os.ReadFile(graph)
	require.NoError(t, err)
	for _, stage := range []string{`"inputs"`, `"list files"`, `"analyze"`, `"split"`, `"write artifacts"`, `"collect"`, `"save"`} {
		assert.Contains(t, string(content), stage)
	}

	// summaries written in the output directory are not analysed again
	rep, err = runner.Run(ctx, []string{dir, outputDir})
	require.NoError(t, err)
	assert.Len(t, rep.Entries(), 5)
}

func TestRunFailFast(t *testing.T) {
	t.Parallel()

	ctx := log.NewTestContext()
	dir := t.TempDir()
	writeBrokenFile(t, dir, "a_broken.csv")
	for _, name := range []string{"b.csv", "c.csv", "d.csv"} {
		writeTestFile(t, dir, name, 1)
	}

	runner := batch.NewRunner(newAnalyzer(t, filepath.Join(dir, "out"), nil), batch.WithFailFast(true))
	rep, err := runner.Run(ctx, []string{dir})
	require.Error(t, err)
	assert.Nil(t, rep)
	assert.ErrorIs(t, err, tensile.ErrMissingColumn)
	assert.True(t, strings.Contains(err.Error(), "a_broken.csv"))
}

func TestRunCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(log.NewTestContext())
	cancel()

	dir := t.TempDir()
	writeTestFile(t, dir, "steel.csv", 1)

	runner := batch.NewRunner(newAnalyzer(t, filepath.Join(dir, "out"), nil), batch.WithWorkers(0))
	_, err := runner.Run(ctx, []string{dir})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunNoInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := newMemoryStore()
	runner := batch.NewRunner(newAnalyzer(t, filepath.Join(dir, "out"), nil), batch.WithStore(s))
	_, err := runner.Run(log.NewTestContext(), []string{dir})
	assert.ErrorIs(t, err, batch.ErrNoInput)
	assert.Empty(t, s.runs)
	assert.Empty(t, s.records)
}
