// Package watch analyses the test files written to a directory.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/askiada/mechanical-testing/internal/batch"
	"github.com/askiada/mechanical-testing/internal/log"
)

// Handler processes a file once it has not changed for the debounce period.
type Handler func(ctx context.Context, path string)

// Watcher calls its handler for every test file created or rewritten in a directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	handle   Handler
	watcher  *fsnotify.Watcher

	mu     sync.Mutex
	timers map[string]*time.Timer
	ready  chan string
}

// New creates a watcher of dir.
func New(dir string, debounce time.Duration, handle Handler) (*Watcher, error) {
	if handle == nil {
		return nil, errors.New("handler must be set")
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to resolve %s", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "unable to create file watcher")
	}

	err = watcher.Add(absDir)
	if err != nil {
		_ = watcher.Close()

		return nil, errors.Wrapf(err, "unable to watch %s", absDir)
	}

	return &Watcher{
		dir:      absDir,
		debounce: debounce,
		handle:   handle,
		watcher:  watcher,
		timers:   map[string]*time.Timer{},
		ready:    make(chan string, 16),
	}, nil
}

// Run handles the files until ctx is done, one at a time. The watcher is closed when it returns.
func (w *Watcher) Run(ctx context.Context) error {
	logger := log.MustGetLogger(ctx)
	defer w.close()

	logger.Infow("watching directory", "dir", w.dir, "debounce", w.debounce)
	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-w.ready:
			w.handle(ctx, path)
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !batch.IsTestFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				logger.Debugw("test file changed", "file", event.Name, "op", event.Op.String())
				w.schedule(ctx, event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Errorw("watcher error", "error", err)
		}
	}
}

// schedule restarts the debounce timer of path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case <-ctx.Done():
		case w.ready <- path:
		}
	})
}

func (w *Watcher) close() {
	w.mu.Lock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	_ = w.watcher.Close()
}

// Analyze returns a handler analysing every file with analyzer, writing its artifacts and
// saving it in s under runID when s is set. Files of the output directory are ignored.
func Analyze(analyzer *batch.Analyzer, s batch.Store, runID string, onResult func(*batch.Result)) Handler {
	outputDir, _ := filepath.Abs(analyzer.OutputDir())

	return func(ctx context.Context, path string) {
		logger := log.MustGetLogger(ctx)
		if filepath.Dir(path) == outputDir {
			logger.Debugw("skipping artifact", "file", path)

			return
		}

		res := analyzer.Analyze(ctx, batch.Job{Path: path})
		if res.Err == nil {
			err := analyzer.WriteArtifacts(res)
			if err != nil {
				logger.Errorw("unable to write artifacts", "test", res.Name, "error", err)
			} else {
				logger.Infow("test analysed", "test", res.Name, "artifacts", analyzer.Artifacts(res.Name))
			}
		}

		if s != nil {
			err := s.Save(ctx, runID, res.Record())
			if err != nil {
				logger.Errorw("unable to save test", "test", res.Name, "error", err)
			}
		}

		if onResult != nil {
			onResult(res)
		}
	}
}
