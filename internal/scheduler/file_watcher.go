package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/domon/internal/logger"
)

// DefaultWatchDebounce groups the bursts of events an editor save produces
const DefaultWatchDebounce = 250 * time.Millisecond

// FileWatcher calls onChange after path was written or replaced.
// The parent directory is watched so rename-on-save editors are seen.
type FileWatcher struct {
	path     string
	onChange func(ctx context.Context) error
	logger   logger.Logger
	debounce time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
	done     chan struct{}
}

// NewFileWatcher creates a watcher for path
func NewFileWatcher(path string, onChange func(ctx context.Context) error, log logger.Logger, debounce time.Duration) *FileWatcher {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	return &FileWatcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		logger:   log.With(logger.String("file", path)),
		debounce: debounce,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins watching. It fails only when the watch cannot be set up.
func (fw *FileWatcher) Start(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(fw.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch %s: %w", fw.path, err)
	}

	fw.started.Store(true)
	go fw.loop(ctx, w)
	fw.logger.Info("watching file for changes")
	return nil
}

func (fw *FileWatcher) loop(ctx context.Context, w *fsnotify.Watcher) {
	defer close(fw.done)
	defer func() { _ = w.Close() }()

	timer := time.NewTimer(fw.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != fw.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(fw.debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", logger.Error(err))
		case <-timer.C:
			if err := fw.onChange(ctx); err != nil {
				fw.logger.Warn("failed to apply file change", logger.Error(err))
				continue
			}
			fw.logger.Info("file change applied")
		case <-fw.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the watch and waits for the loop to exit
func (fw *FileWatcher) Stop() {
	fw.stopOnce.Do(func() { close(fw.stopCh) })
	if fw.started.Load() {
		<-fw.done
	}
}
