// Package watch reloads the knowledge base when its snapshot file changes
// on disk, so out-of-band edits show up without a restart.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events a single snapshot rewrite
// produces into one reload.
const DefaultDebounce = 500 * time.Millisecond

// Watcher observes one file and invokes a callback after changes settle.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(context.Context)
	logger   *slog.Logger
}

// New creates a watcher for path. onChange runs on the watcher goroutine
// after the debounce window closes.
func New(path string, debounce time.Duration, onChange func(context.Context), logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}
}

// Run watches until ctx is canceled. The parent directory is watched
// rather than the file itself because snapshot writes go through a
// rename, which replaces the watched inode.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	w.logger.Info("watching dataset for changes", "path", w.path)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			pending = true

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-timer.C:
			pending = false
			w.logger.Debug("dataset changed on disk")
			w.onChange(ctx)
		}
	}
}
