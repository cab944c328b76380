// ABOUTME: Polling watcher that reloads settings when a config file changes
// ABOUTME: Compares file mtimes on an interval; used to hot-reload the log level of a running session

package config

import (
	"os"
	"sync"
	"time"
)

// DefaultWatchInterval is how often watched files are polled.
const DefaultWatchInterval = 2 * time.Second

// Watcher monitors files for changes by polling mtime at regular intervals.
type Watcher struct {
	paths    []string
	onChange func()
	interval time.Duration
	mtimes   map[string]time.Time
	stopCh   chan struct{}
	mu       sync.Mutex
	running  bool
	stopOnce sync.Once
}

// NewWatcher creates a watcher that calls onChange when any monitored file
// appears, changes, or disappears.
func NewWatcher(paths []string, onChange func()) *Watcher {
	return &Watcher{
		paths:    paths,
		onChange: onChange,
		interval: DefaultWatchInterval,
		mtimes:   make(map[string]time.Time),
		stopCh:   make(chan struct{}),
	}
}

// NewSettingsWatcher watches every config file Load reads for projectRoot
// and hands apply the freshly loaded settings, or the load error, on change.
func NewSettingsWatcher(projectRoot string, apply func(*Settings, error)) *Watcher {
	return NewWatcher(WatchPaths(projectRoot), func() {
		apply(Load(projectRoot))
	})
}

// SetInterval overrides the polling interval. Takes effect on the next Start.
func (w *Watcher) SetInterval(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if d > 0 {
		w.interval = d
	}
}

// Start begins polling in a goroutine. Safe to call multiple times; subsequent calls are no-ops.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.snapshotLocked()
	interval := w.interval
	w.mu.Unlock()

	go w.loop(interval)
}

// Stop halts the polling goroutine. Safe to call multiple times and concurrently.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.stopCh)
	})
}

// ForceCheck checks immediately and, on change, calls onChange before returning.
func (w *Watcher) ForceCheck() bool {
	if !w.poll() {
		return false
	}
	w.onChange()
	return true
}

func (w *Watcher) loop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if w.poll() {
				w.onChange()
			}
		}
	}
}

// poll reports a change since the last snapshot and takes a new one.
func (w *Watcher) poll() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.checkLocked() {
		return false
	}
	w.snapshotLocked()
	return true
}

// checkLocked compares current mtimes with stored snapshots. Must hold mu.
func (w *Watcher) checkLocked() bool {
	for _, path := range w.paths {
		info, err := os.Stat(path)
		if err != nil {
			// File removed or inaccessible: check if it existed before
			if _, existed := w.mtimes[path]; existed {
				return true
			}
			continue
		}
		prev, ok := w.mtimes[path]
		if !ok || !info.ModTime().Equal(prev) {
			return true
		}
	}
	return false
}

// snapshotLocked records current mtimes. Must hold mu.
func (w *Watcher) snapshotLocked() {
	for _, path := range w.paths {
		info, err := os.Stat(path)
		if err != nil {
			delete(w.mtimes, path)
			continue
		}
		w.mtimes[path] = info.ModTime()
	}
}
