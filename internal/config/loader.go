package config

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Loader reads a config snapshot from a YAML file and watches it for
// changes so the session can pick up edits made outside the app.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  *Snapshot
	onChange []func(*Snapshot)
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string) (*Loader, error) {
	snap, err := Read(path)
	if err != nil {
		return nil, err
	}
	return &Loader{path: path, current: snap}, nil
}

// Path returns the config file location.
func (l *Loader) Path() string { return l.path }

// Snapshot returns the current (latest) snapshot.
func (l *Loader) Snapshot() *Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the config reloads.
func (l *Loader) OnChange(fn func(*Snapshot)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Reload forces an immediate re-read of the config file.
func (l *Loader) Reload() (*Snapshot, error) {
	snap, err := Read(l.path)
	if err != nil {
		return nil, err
	}
	l.swap(snap)
	return snap, nil
}

// Watch starts a background goroutine that reloads the config when the
// file changes on disk. A reload that fails to parse keeps the previous
// snapshot. Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", l.path, err)
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					snap, err := Read(l.path)
					if err != nil {
						slog.Warn("config reload skipped", "path", l.path, "err", err)
						continue
					}
					l.swap(snap)
				}
			case <-w.Errors:
				// Ignore watcher errors; explicit Reload surfaces real ones.
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}

func (l *Loader) swap(snap *Snapshot) {
	l.mu.Lock()
	l.current = snap
	callbacks := make([]func(*Snapshot), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(snap)
	}
}
