package scenario

import (
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch starts a background watcher on the backing CSV and invokes
// onChange after the file is rewritten by something other than the
// synchronizer (an operator editing scenarios in a spreadsheet, say).
// The callback runs on the watcher goroutine; the caller is responsible
// for marshalling back onto its own loop before touching the Sync.
// Call the returned stop function to clean up.
func Watch(path string, onChange func()) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("scenario watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("scenario watcher add %s: %w", path, err)
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
					slog.Debug("scenario file changed on disk", "path", path)
					onChange()
				}
			case <-w.Errors:
				// Watcher errors are not actionable here; the next
				// explicit reload will surface real I/O problems.
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}
