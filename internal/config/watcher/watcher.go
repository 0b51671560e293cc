// Package watcher monitors a signal table file for changes.
//
// The registry itself is immutable after construction; when the table
// file changes, the watcher notifies a handler so the application can
// build a replacement dispatcher.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the rapid write bursts editors produce when
// saving a file.
const DefaultDebounce = 100 * time.Millisecond

// Handler is called with the changed file path after debouncing.
type Handler func(path string)

// Watcher watches a single configuration file via fsnotify.
type Watcher struct {
	mu sync.Mutex

	fsw     *fsnotify.Watcher
	path    string
	handler Handler

	debounce time.Duration
	timer    *time.Timer

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce window for rapid successive changes.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// New starts watching the file at path, calling handler on each change.
// The file's directory is watched rather than the file itself, so
// rename-and-replace saves are observed.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		path:     abs,
		handler:  handler,
		debounce: DefaultDebounce,
		closeCh:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.closeCh)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// loop consumes fsnotify events until the watcher is closed.
func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.schedule()

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are not actionable here; the next
			// successful event still fires the handler.
		}
	}
}

// relevant reports whether the event concerns the watched file.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Name != w.path {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename)
}

// schedule arms the debounce timer, resetting it on each new event.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		closed := w.closed
		w.mu.Unlock()
		if !closed && w.handler != nil {
			w.handler(w.path)
		}
	})
}
