package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/pluginhost/pkg/observability"
)

// DefaultReloadDelay is how long the watcher waits after the last change
// before reloading
const DefaultReloadDelay = 250 * time.Millisecond

// Watcher reloads a config file into a Store when the file changes
type Watcher struct {
	path     string
	store    *Store
	log      *logrus.Logger
	delay    time.Duration
	onReload func(*Config)
}

// NewWatcher creates a watcher for the YAML file at path
func NewWatcher(path string, store *Store, log *logrus.Logger) *Watcher {
	return &Watcher{
		path:  path,
		store: store,
		log:   observability.OrDefault(log),
		delay: DefaultReloadDelay,
	}
}

// OnReload sets a function called with every configuration applied to the store
func (w *Watcher) OnReload(fn func(*Config)) {
	w.onReload = fn
}

// Run watches until ctx is done. Invalid files are logged and ignored.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	target := filepath.Clean(w.path)
	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(w.delay)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("Config watcher error")

		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadFile(w.path)
	if err != nil {
		w.log.WithError(err).WithField("path", w.path).Warn("Config reload rejected")
		return
	}

	w.store.Apply(cfg)
	if w.onReload != nil {
		w.onReload(cfg)
	}
	w.log.WithField("path", w.path).Info("Config reloaded")
}
