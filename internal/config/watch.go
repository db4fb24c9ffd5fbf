package config

import (
	"log/slog"
	"os"
	"sync"
	"time"
)

// Watcher polls a configuration file and reports a freshly loaded Config
// whenever its modification time moves forward.
type Watcher struct {
	path          string
	checkInterval time.Duration
	logger        *slog.Logger

	mu       sync.Mutex
	baseline time.Time
	stopCh   chan struct{}
	onChange func(*Config)
}

// NewWatcher creates a watcher for path. A file that does not exist yet is
// picked up once it appears.
func NewWatcher(path string, checkInterval time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		path:          path,
		checkInterval: checkInterval,
		logger:        logger,
	}
	if info, err := os.Stat(path); err == nil {
		w.baseline = info.ModTime()
	}
	return w
}

// OnChange sets the callback invoked with the reloaded configuration.
// The callback runs on the watcher goroutine.
func (w *Watcher) OnChange(callback func(*Config)) {
	w.mu.Lock()
	w.onChange = callback
	w.mu.Unlock()
}

// Start begins polling in a background goroutine.
func (w *Watcher) Start() {
	w.mu.Lock()
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.mu.Unlock()
	go w.watchLoop(stop)
}

// Stop stops the polling goroutine. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *Watcher) watchLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check compares the file's modification time with the baseline and
// reloads when it is newer. It reports whether a reload was delivered.
func (w *Watcher) Check() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}

	w.mu.Lock()
	if !info.ModTime().After(w.baseline) {
		w.mu.Unlock()
		return false
	}
	w.baseline = info.ModTime()
	callback := w.onChange
	w.mu.Unlock()

	cfg, err := LoadOptional(w.path)
	if err != nil {
		w.logger.Warn("config reload failed", "path", w.path, "err", err)
		return false
	}
	w.logger.Info("config reloaded", "path", w.path)
	if callback != nil {
		callback(cfg)
	}
	return true
}

// Path returns the watched file path.
func (w *Watcher) Path() string {
	return w.path
}
