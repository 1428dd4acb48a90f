package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"iasctl/pkg/logging"
)

// WatchDebounceInterval coalesces the burst of events an atomic file
// replacement produces into one notification.
const WatchDebounceInterval = 100 * time.Millisecond

// Watch follows changes other processes make to this host's token file.
// When the file is written or removed, the in-memory copy is dropped so the
// next operation rereads the file, and onChange is called.
//
// Watch returns once the watcher is installed; it stops when ctx is done.
func (m *Manager) Watch(ctx context.Context, onChange func()) error {
	dir := filepath.Dir(m.file.Path())
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logging.Info(subsystem, "Watching %s for session changes", dir)

	// Channels are captured here so the goroutine never touches watcher
	// fields after Close.
	go m.processWatchEvents(ctx, watcher, watcher.Events, watcher.Errors, onChange)
	return nil
}

func (m *Manager) processWatchEvents(ctx context.Context, watcher *fsnotify.Watcher, eventsCh <-chan fsnotify.Event, errorsCh <-chan error, onChange func()) {
	defer watcher.Close()

	fileName := filepath.Base(m.file.Path())
	var (
		debounceMu    sync.Mutex
		debounceTimer *time.Timer
	)
	defer func() {
		debounceMu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			logging.Debug(subsystem, "Token file changed: %s", event.Op)

			debounceMu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounceInterval, func() {
				m.reload(ctx, onChange)
			})
			debounceMu.Unlock()

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error(subsystem, err, "File watcher error")
		}
	}
}

// reload drops the cached slot under the lock and notifies the caller.
func (m *Manager) reload(ctx context.Context, onChange func()) {
	if err := m.lock(ctx); err != nil {
		return
	}
	m.slot.invalidate()
	m.unlock()

	if onChange != nil {
		onChange()
	}
}
