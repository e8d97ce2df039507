package kb

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// WatchWorker watches the KB directory and reloads the provider when rule
// files change. Reload failures keep the previous snapshot; the watcher
// itself stays up.
type WatchWorker struct {
	*worker.BaseWorker
	provider *Provider
	watcher  *fsnotify.Watcher
	debounce *debouncer
	cancel   context.CancelFunc
}

// NewWatchWorker creates a watcher for the provider's KB directory.
func NewWatchWorker(p *Provider) *WatchWorker {
	return &WatchWorker{
		BaseWorker: worker.NewBaseWorker("kb-watcher"),
		provider:   p,
	}
}

// Start begins watching. The worker stops when ctx is cancelled or Stop is
// called.
func (w *WatchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := addRecursive(watcher, w.provider.dir); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.debounce = newDebouncer(250 * time.Millisecond)
	w.provider.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

// Stop requests shutdown and waits for the worker to finish.
func (w *WatchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

// State reports the worker state with goroutine metadata.
func (w *WatchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

func (w *WatchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)

			// Full stack only under debug logging; production logs stay quiet.
			var stack string
			if w.provider.logger != nil && w.provider.logger.Enabled(ctx, slog.LevelDebug) {
				stack = string(debug.Stack())
			}
			if w.provider.logger != nil {
				if stack != "" {
					w.provider.logger.Error("watcher panic", "error", panicErr, "stack", stack)
				} else {
					w.provider.logger.Error("watcher panic", "error", panicErr)
				}
			}
		}
	}()
	defer w.provider.setWatcherActive(false)
	defer w.watcher.Close()

	err = w.eventLoop(ctx)
	w.debounce.stopAndWait(5 * time.Second)
	return err
}

func (w *WatchWorker) eventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			if w.provider.logger != nil {
				w.provider.logger.Error("fsnotify error", "error", wErr)
			}
		}
	}
}

func (w *WatchWorker) handleEvent(ctx context.Context, event fsnotify.Event) {
	if w.provider.logger != nil {
		w.provider.logger.Debug("kb event received", "name", event.Name, "op", event.Op.String())
	}

	// New subdirectories must be added to the watch set.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = addRecursive(w.watcher, event.Name)
			return
		}
	}

	if !w.matchesPatterns(event.Name) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	// Editors fire bursts of events per save; coalesce into one reload.
	w.debounce.trigger(func() {
		lifecycle.Go(ctx, func(ctx context.Context) error {
			return w.provider.Reload()
		}, lifecycle.WithErrorHandler(func(err error) {
			if w.provider.logger != nil {
				w.provider.logger.Error("kb reload worker failed", "error", err)
			}
		}))
	})
}

func (w *WatchWorker) matchesPatterns(name string) bool {
	rel, err := filepath.Rel(w.provider.dir, name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	patterns := w.provider.patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}
		return nil
	})
}
