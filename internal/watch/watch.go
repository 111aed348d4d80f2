// Package watch reloads a network file when it changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/danielpatrickdp/valuesnet/internal/network"
)

// DefaultDebounce coalesces the burst of events a single editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Handler receives every network that loaded and validated cleanly.
type Handler func(ctx context.Context, n network.Network) error

// Options tunes a Watcher. Zero values take the defaults.
type Options struct {
	Debounce time.Duration
	Logger   *slog.Logger
	// OnError is called when a reload fails to decode or the handler fails.
	OnError func(path string, err error)
}

// Watcher follows one network file. The parent directory is watched so that
// rename-over-save editors are seen.
type Watcher struct {
	path     string
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger
	onError  func(string, error)
}

// New returns a Watcher for path. Nothing is watched until Run.
func New(path string, handler Handler, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	w := &Watcher{
		path:     abs,
		handler:  handler,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		onError:  opts.OnError,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = slog.New(slog.DiscardHandler)
	}
	if w.onError == nil {
		w.onError = func(string, error) {}
	}
	return w, nil
}

// Run loads the file once, then reloads after every debounced change until ctx ends.
// A file that fails to load is reported and the previous network stays in effect.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info("watching network", "path", w.path)
	w.reload(ctx)

	var timerC <-chan time.Time
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || !relevant(event.Op) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "path", w.path, "error", err)
		case <-timerC:
			timerC = nil
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	n, err := network.Load(w.path)
	if err != nil {
		w.logger.Warn("network reload failed", "path", w.path, "error", err)
		w.onError(w.path, err)
		return
	}
	if err := w.handler(ctx, n); err != nil {
		w.logger.Warn("network handler failed", "path", w.path, "error", err)
		w.onError(w.path, err)
		return
	}
	w.logger.Debug("network reloaded", "path", w.path)
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename)
}
