package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"image-studio/internal/debounce"
)

// Open builds the adapter named by driver ("sqlite", "json" or "memory").
func Open(driver, path string) (Adapter, error) {
	switch driver {
	case "memory":
		return NewMemory(), nil
	case "json":
		return OpenFile(path), nil
	case "sqlite", "":
		return OpenSQLite(path, WithMkdirAll())
	}
	return nil, fmt.Errorf("store: unknown driver %q", driver)
}

// Saver debounces saves of one project. Bursts of Schedule calls produce a
// single Save with the latest snapshot.
type Saver struct {
	adapter   Adapter
	projectID string
	debouncer *debounce.Debouncer
	timeout   time.Duration

	mu       sync.Mutex
	snapshot func() ByImage
	dirty    bool
	closed   bool
	inflight sync.WaitGroup
	onSaved  func(ByImage)
	onError  func(error)
	logger   *slog.Logger
}

// NewSaver creates a saver that waits delay after the last Schedule.
func NewSaver(adapter Adapter, projectID string, delay time.Duration, logger *slog.Logger) *Saver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Saver{
		adapter:   adapter,
		projectID: projectID,
		debouncer: debounce.New(delay),
		timeout:   10 * time.Second,
		onSaved:   func(ByImage) {},
		onError:   func(error) {},
		logger:    logger,
	}
}

// OnSaved sets the callback run after each successful save.
func (s *Saver) OnSaved(fn func(ByImage)) {
	s.mu.Lock()
	s.onSaved = fn
	s.mu.Unlock()
}

// OnError sets the callback run when a background save fails.
func (s *Saver) OnError(fn func(error)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

// ProjectID returns the project being saved.
func (s *Saver) ProjectID() string {
	return s.projectID
}

// Schedule queues a save; snapshot is called when the save actually runs.
func (s *Saver) Schedule(snapshot func() ByImage) {
	s.mu.Lock()
	s.snapshot, s.dirty = snapshot, true
	s.mu.Unlock()
	s.debouncer.Trigger(s.projectID, s.saveInBackground)
}

// Pending reports whether a save is waiting.
func (s *Saver) Pending() bool {
	return s.debouncer.Pending(s.projectID)
}

// Flush saves now if a save is pending and returns its error.
func (s *Saver) Flush(ctx context.Context) error {
	if !s.debouncer.Pending(s.projectID) {
		return nil
	}
	s.debouncer.Cancel(s.projectID)
	return s.save(ctx)
}

// Load reads the project's adjustments.
func (s *Saver) Load(ctx context.Context) (ByImage, error) {
	return s.adapter.Load(ctx, s.projectID)
}

func (s *Saver) saveInBackground() {
	s.mu.Lock()
	if s.closed {
		// Close writes whatever is still dirty.
		s.mu.Unlock()
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.save(ctx); err != nil {
		s.mu.Lock()
		onError := s.onError
		s.mu.Unlock()
		onError(err)
	}
}

func (s *Saver) save(ctx context.Context) error {
	s.mu.Lock()
	snapshot, onSaved := s.snapshot, s.onSaved
	s.dirty = false
	s.mu.Unlock()
	if snapshot == nil {
		return nil
	}
	data := snapshot()
	if err := s.adapter.Save(ctx, s.projectID, data); err != nil {
		s.logger.Error("failed to save adjustments", "project", s.projectID, "error", err)
		return err
	}
	s.logger.Debug("adjustments saved", "project", s.projectID, "images", len(data))
	onSaved(data)
	return nil
}

// Close waits for a background save already running, writes anything
// still unsaved and closes the adapter. Schedule after Close is ignored.
func (s *Saver) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.debouncer.Cancel(s.projectID)
	s.inflight.Wait()

	var saveErr error
	s.mu.Lock()
	dirty := s.dirty
	s.mu.Unlock()
	if dirty {
		saveErr = s.save(ctx)
	}
	if err := s.adapter.Close(); err != nil {
		return err
	}
	return saveErr
}
