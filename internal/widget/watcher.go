package widget

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"nts-go/internal/nts"
)

// Watcher reports reload broadcasts written by a FileNotifier in the same
// directory. Bursts of signals collapse into a single pending reload.
type Watcher struct {
	watcher *fsnotify.Watcher
	dir     string
	reloads chan struct{}
	logger  nts.Logger
}

// NewWatcher starts watching dir for the reload signal.
func NewWatcher(dir string, logger nts.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	// Watch the directory rather than the file so a replaced or recreated
	// signal file is still seen.
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return &Watcher{
		watcher: fw,
		dir:     dir,
		reloads: make(chan struct{}, 1),
		logger:  logger,
	}, nil
}

// Reloads emits once per burst of reload signals.
func (w *Watcher) Reloads() <-chan struct{} {
	return w.reloads
}

// Run forwards signals until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.reloads)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !isSignal(event) {
				continue
			}
			select {
			case w.reloads <- struct{}{}:
			default:
				// A reload is already pending
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "dir", w.dir, "error", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func isSignal(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != SignalName {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
