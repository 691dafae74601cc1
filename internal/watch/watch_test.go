package watch_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/mechanical-testing/internal/batch"
	"github.com/askiada/mechanical-testing/internal/config"
	"github.com/askiada/mechanical-testing/internal/log"
	"github.com/askiada/mechanical-testing/internal/store"
	"github.com/askiada/mechanical-testing/internal/watch"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) handle(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, filepath.Base(path))
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.paths...)
}

func startWatcher(t *testing.T, dir string, debounce time.Duration, handle watch.Handler) {
	t.Helper()

	w, err := watch.New(dir, debounce, handle)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(log.NewTestContext())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
}

func TestWatcherDebounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, dir, 200*time.Millisecond, rec.handle)

	path := filepath.Join(dir, "steel.csv")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("time,force,displacement\n%d,1,1\n", i)), 0o600))
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	require.Eventually(t, func() bool {
		return len(rec.get()) == 1
	}, 5*time.Second, 20*time.Millisecond)

	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, []string{"steel.csv"}, rec.get())
}

func TestWatcherSeveralFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, dir, 50*time.Millisecond, rec.handle)

	for _, name := range []string{"a.csv", "b.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("time,force,displacement\n"), 0o600))
	}

	require.Eventually(t, func() bool {
		return len(rec.get()) == 2
	}, 5*time.Second, 20*time.Millisecond)
	assert.ElementsMatch(t, []string{"a.csv", "b.csv"}, rec.get())
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	_, err := watch.New(t.TempDir(), time.Second, nil)
	assert.Error(t, err)

	_, err = watch.New(filepath.Join(t.TempDir(), "missing"), time.Second, func(context.Context, string) {})
	assert.Error(t, err)
}

type memoryStore struct {
	mu      sync.Mutex
	records []store.Record
}

func (m *memoryStore) BeginRun(context.Context, string, []string) error {
	return nil
}

func (m *memoryStore) Save(_ context.Context, _ string, rec store.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)

	return nil
}

func TestAnalyzeHandler(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outputDir := filepath.Join(dir, "out")
	cfg := config.Default()
	cfg.Output.Directory = outputDir
	cfg.Output.Plots = false
	settings, err := batch.SettingsFromConfig(cfg)
	require.NoError(t, err)
	analyzer, err := batch.NewAnalyzer(settings, nil)
	require.NoError(t, err)

	specimen, err := cfg.Specimen.Build()
	require.NoError(t, err)
	var b strings.Builder
	b.WriteString("time,displacement,force\n")
	for i := 0; i <= 200; i++ {
		strain := float64(i) * 2e-5
		stress := 200e9 * strain
		if i > 100 {
			strain = 0.002 + float64(i-100)*5e-4
			stress = 400e6 + 1e9*(strain-0.002)
		}
		fmt.Fprintf(&b, "%d,%g,%g\n", i, strain*specimen.GaugeLength(), stress*specimen.Area())
	}
	good := filepath.Join(dir, "steel.csv")
	require.NoError(t, os.WriteFile(good, []byte(b.String()), 0o600))
	bad := filepath.Join(dir, "broken.csv")
	require.NoError(t, os.WriteFile(bad, []byte("time\n1\n2\n"), 0o600))

	s := &memoryStore{}
	var results []*batch.Result
	handle := watch.Analyze(analyzer, s, "watch", func(res *batch.Result) {
		results = append(results, res)
	})

	ctx := log.NewTestContext()
	handle(ctx, good)
	handle(ctx, bad)

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	require.Len(t, s.records, 2)
	assert.Equal(t, "broken", s.records[1].Name)

	_, err = os.Stat(filepath.Join(outputDir, "steel.csv"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outputDir, "steel.png"))
	assert.True(t, os.IsNotExist(err))

	// the summaries written by the handler are not analysed
	handle(ctx, filepath.Join(outputDir, "steel.csv"))
	assert.Len(t, results, 2)
}
