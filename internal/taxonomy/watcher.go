package taxonomy

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher triggers a reload whenever the taxonomy file changes on disk.
// It watches the parent directory so editors that replace the file by
// rename are still observed.
type Watcher struct {
	Path     string
	Debounce time.Duration
	Reload   func(ctx context.Context) error
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Reload == nil {
		return fmt.Errorf("watcher for %s has no reload func", w.Path)
	}
	abs, err := filepath.Abs(w.Path)
	if err != nil {
		return fmt.Errorf("resolve taxonomy path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	log.WithField("path", abs).Info("watching taxonomy file")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("taxonomy watcher error")
		case <-timer.C:
			if err := w.Reload(ctx); err != nil {
				log.WithError(err).Error("taxonomy file changed but reload failed; previous graph kept")
			}
		}
	}
}
