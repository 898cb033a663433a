// Package watch translates filesystem activity in the mission workspace
// into operational events the controller weighs during analysis.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/vinayprograms/agentkit/logging"

	"github.com/vinayprograms/mission/internal/events"
)

// Watcher observes a directory tree and appends file events to an event
// log. Subdirectories created while watching are picked up automatically.
type Watcher struct {
	fsw    *fsnotify.Watcher
	root   string
	log    *events.Log
	logger *logging.Logger
}

// New watches dir and every directory below it.
func New(dir string, log *events.Log) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		fsw:    fsw,
		root:   dir,
		log:    log,
		logger: logging.New().WithComponent("watch"),
	}
	if err := w.addRecursive(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// Start launches the watch loop. It returns immediately; the loop stops
// when ctx is cancelled or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case event, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				w.handle(event)
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				w.logger.Warn("Watcher error", map[string]interface{}{
					"error": err.Error(),
				})
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (w *Watcher) handle(event fsnotify.Event) {
	kind := ""
	switch {
	case event.Op&fsnotify.Create != 0:
		kind = events.KindFileCreate
		// New directories need their own watch for recursion to hold.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.fsw.Add(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", map[string]interface{}{
					"path":  event.Name,
					"error": err.Error(),
				})
			}
		}
	case event.Op&fsnotify.Write != 0:
		kind = events.KindFileWrite
	case event.Op&fsnotify.Remove != 0:
		kind = events.KindFileRemove
	case event.Op&fsnotify.Rename != 0:
		kind = events.KindFileRename
	default:
		// Chmod and other noise carries no signal for the controller.
		return
	}

	w.log.Add(kind, w.relative(event.Name))
	w.logger.Debug("Workspace event", map[string]interface{}{
		"kind": kind,
		"path": event.Name,
	})
}

// relative shortens paths to the watch root for prompt readability.
func (w *Watcher) relative(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return path
	}
	return rel
}

// Close stops the watch loop and releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
