package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"parley/pkg/logging"
)

// watchDebounce is how long the watcher waits for further events before
// reloading, so editors that write in several steps trigger one reload.
const watchDebounce = 500 * time.Millisecond

// Watcher reloads the configuration manager when files under the config
// directory change on disk. Explicit reloads remain the primary contract;
// the watcher is a convenience for long-running sessions.
type Watcher struct {
	mu      sync.Mutex
	manager *Manager
	watcher *fsnotify.Watcher
	timer   *time.Timer
	running bool
}

// NewWatcher creates a watcher bound to the given manager.
func NewWatcher(manager *Manager) *Watcher {
	return &Watcher{manager: manager}
}

// Start begins watching the config directory and blocks until ctx is
// cancelled or the underlying watcher fails.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = fsw
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		fsw.Close()
	}()

	configDir := filepath.Join(w.manager.files.Root(), ConfigDir)
	if err := fsw.Add(configDir); err != nil {
		logging.Warn(subsystem, "Cannot watch %s: %v", configDir, err)
		// The directory may not exist yet; watching is best-effort.
		<-ctx.Done()
		return nil
	}

	logging.Debug(subsystem, "Watching %s for configuration changes", configDir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.scheduleReload(event.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.Warn(subsystem, "Configuration watcher error: %v", err)
		}
	}
}

// scheduleReload debounces bursts of filesystem events into one reload.
func (w *Watcher) scheduleReload(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(watchDebounce, func() {
		if _, err := w.manager.Reload(); err != nil {
			logging.Warn(subsystem, "Auto-reload after change to %s failed: %v", path, err)
			return
		}
		logging.Info(subsystem, "Configuration reloaded after change to %s", filepath.Base(path))
	})
}
