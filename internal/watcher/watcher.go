package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/basketprune/internal/logging"
)

// DefaultDebounce is how long the file must be quiet before the handler runs.
const DefaultDebounce = 250 * time.Millisecond

// ErrAlreadyStarted is returned by Start on a running watcher.
var ErrAlreadyStarted = errors.New("watcher already started")

// Handler is called with the watcher's context after each change.
type Handler func(ctx context.Context) error

// Watcher runs a Handler whenever one file changes.
type Watcher struct {
	path     string
	handler  Handler
	debounce time.Duration

	mu      sync.Mutex
	fs      *fsnotify.Watcher
	stopCh  chan struct{}
	wg      sync.WaitGroup
	runs    int
	started bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New creates a watcher for path. The file must exist.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	w := &Watcher{
		path:     abs,
		handler:  handler,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Runs returns how many times the handler has been called.
func (w *Watcher) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// Start runs the handler once, then watches for changes in the background
// until ctx is done or Stop is called. An error from the first run is
// returned and the watcher is not started; later handler errors are logged.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	w.started = true
	w.mu.Unlock()

	if err := w.run(ctx); err != nil {
		w.reset()
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.reset()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		w.reset()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	stopCh := make(chan struct{})
	w.mu.Lock()
	w.fs = fsw
	w.stopCh = stopCh
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop(ctx, fsw, stopCh)

	logging.Debug().Str("path", w.path).Dur("debounce", w.debounce).Msg("watching file")
	return nil
}

func (w *Watcher) reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.started = false
}

func (w *Watcher) run(ctx context.Context) error {
	w.mu.Lock()
	w.runs++
	w.mu.Unlock()
	return w.handler(ctx)
}

// loop coalesces events for the watched file and calls the handler.
func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, stopCh <-chan struct{}) {
	defer w.wg.Done()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			logging.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("file changed")
			timer.Reset(w.debounce)

		case <-timer.C:
			if _, err := os.Stat(w.path); err != nil {
				// Removed and not yet replaced; wait for the next create.
				continue
			}
			if err := w.run(ctx); err != nil {
				logging.Err(err).Str("path", w.path).Msg("re-run after change failed")
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logging.Warn().Err(err).Str("path", w.path).Msg("file watcher error")
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// Stop halts the watcher and waits for the background goroutine. Safe to
// call more than once, or on a watcher that was never started.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopCh == nil {
		w.mu.Unlock()
		return nil
	}
	close(w.stopCh)
	w.stopCh = nil
	fsw := w.fs
	w.fs = nil
	w.started = false
	w.mu.Unlock()

	w.wg.Wait()
	return fsw.Close()
}
