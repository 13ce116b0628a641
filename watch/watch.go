// Package watch reloads a dataset file into a store whenever it changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/etnz/findash"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period waited after the last event before reloading.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a CSV file into a store when the file changes.
type Watcher struct {
	file     findash.CSVFile
	store    *findash.Store
	logger   *zap.Logger
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// New returns a watcher of file feeding store. A nil logger disables logging.
func New(file findash.CSVFile, store *findash.Store, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{file: file, store: store, logger: logger, debounce: DefaultDebounce}
}

// SetDebounce changes the quiet period waited before reloading.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// Run watches the file until ctx is done.
//
// The parent directory is watched rather than the file itself, so that
// atomic replacements (write to a temporary file then rename) are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create file watcher: %w", err)
	}
	defer fw.Close()

	target, err := filepath.Abs(w.file.Path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("cannot watch %q: %w", dir, err)
	}
	w.logger.Info("watching dataset", zap.String("file", target))

	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("dataset file event", zap.String("op", event.Op.String()))
			w.schedule(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// schedule (re)arms the debounce timer.
func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.reload(ctx) })
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// reload loads the file into the store, keeping the previous dataset on error.
func (w *Watcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	rev, err := w.store.Reload(ctx, w.file)
	if err != nil {
		w.logger.Warn("dataset reload failed, keeping the previous revision",
			zap.String("file", w.file.Path),
			zap.Uint64("revision", rev.N),
			zap.Error(err))
		return
	}
	w.logger.Info("dataset reloaded",
		zap.String("file", w.file.Path),
		zap.String("revision", rev.ID.String()),
		zap.Uint64("n", rev.N))
}
