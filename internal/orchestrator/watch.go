package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/river-mounts/roam-code-sf/internal/config"
)

// Watcher triggers a debounced re-run of Run whenever the watched tree
// changes, grounded on the teacher's internal/indexing/watcher.go
// (FileWatcher + its debounce timer), narrowed to this project's single
// job: coalesce a burst of filesystem events into one incremental
// re-index rather than dispatching per-event callbacks.
type Watcher struct {
	cfg      *config.Config
	fsw      *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending bool

	onReindex func()
	cancel    context.CancelFunc
}

// NewWatcher builds a Watcher rooted at cfg.Root, adding a recursive watch
// over every directory that survives cfg.Exclude (mirroring the teacher's
// addWatches walk).
func NewWatcher(cfg *config.Config, onReindex func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		cfg:       cfg,
		fsw:       fsw,
		debounce:  time.Duration(cfg.WatchDebounceMs) * time.Millisecond,
		onReindex: onReindex,
	}
	if err := w.addWatches(cfg.Root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addWatches(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep walking
		}
		if !info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.cfg.Root, path)
		if relErr == nil && rel != "." && excluded(filepath.ToSlash(rel)+"/", w.cfg.Exclude) {
			return filepath.SkipDir
		}
		_ = w.fsw.Add(path)
		return nil
	})
}

// Start begins the event loop; Stop or ctx cancellation ends it.
func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	go w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.schedule(event)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) schedule(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if !w.pending {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()
	if w.onReindex != nil {
		w.onReindex()
	}
}

// Stop tears down the watch loop and releases the underlying fsnotify
// watcher.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}
