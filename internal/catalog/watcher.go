package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/riskboard/internal/core"
	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a file-based catalogue when the file changes.
//
// Editors often write a file as several events (truncate, write, rename),
// so events are coalesced by a debouncer and only the last one in a burst
// triggers a reload. The parent directory is watched so that
// rename-and-replace saves are seen too.
type Watcher struct {
	src      Source
	path     string
	debounce *core.Debouncer
	onReload func(*Catalog)
	onError  func(error)
}

// NewWatcher creates a watcher for src, which must be file based.
// onReload receives every successfully loaded catalogue; onError receives
// load failures, after which the previous catalogue stays in use.
func NewWatcher(src Source, delay time.Duration, onReload func(*Catalog), onError func(error)) (*Watcher, error) {
	path, ok := WatchPath(src)
	if !ok {
		return nil, fmt.Errorf("catalog source %s cannot be watched", src.Name())
	}
	if onError == nil {
		onError = func(error) {}
	}
	return &Watcher{
		src:      src,
		path:     filepath.Clean(path),
		debounce: core.NewDebouncer(delay),
		onReload: onReload,
		onError:  onError,
	}, nil
}

// Run blocks until ctx is done, reloading on relevant file events.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()
	defer w.debounce.Stop()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", w.path, err)
	}

	slog.Info("watching catalog", "path", w.path, "debounce", w.debounce.Delay())

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("catalog file event", "path", event.Name, "op", event.Op.String())
			w.debounce.Trigger(func() { w.reload(ctx) })

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("catalog watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	c, err := w.src.Load(ctx)
	if err != nil {
		slog.Error("catalog reload failed", "source", w.src.Name(), "error", err)
		w.onError(err)
		return
	}
	slog.Info("catalog reloaded", "source", w.src.Name(), "rows", len(c.Table.Rows))
	w.onReload(c)
}
