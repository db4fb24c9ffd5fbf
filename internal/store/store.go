// Package store persists committed adjustment sets per project, keyed by a
// stable image identity.
package store

import (
	"context"
	"sync"
	"time"

	"image-studio/internal/adjust"
)

// StoredAdjustment is the durable form of one image's adjustments.
type StoredAdjustment struct {
	ImageID     string     `json:"imageId"`
	Adjustments adjust.Set `json:"adjustments"`
	AppliedAt   time.Time  `json:"appliedAt"`
	PresetUsed  string     `json:"presetUsed,omitempty"`
}

// ByImage maps image ids to their stored adjustments.
type ByImage map[string]StoredAdjustment

// Clone returns an independent copy.
func (b ByImage) Clone() ByImage {
	if b == nil {
		return nil
	}
	out := make(ByImage, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Adapter is the persistence boundary. Load returns nil, nil for a project
// that has never been saved.
type Adapter interface {
	Save(ctx context.Context, projectID string, adjustments ByImage) error
	Load(ctx context.Context, projectID string) (ByImage, error)
	Close() error
}

// Memory keeps everything in process. Useful for tests and the "memory"
// driver.
type Memory struct {
	mu       sync.Mutex
	projects map[string]ByImage
	saves    int
}

// NewMemory creates an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{projects: make(map[string]ByImage)}
}

func (m *Memory) Save(ctx context.Context, projectID string, adjustments ByImage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[projectID] = adjustments.Clone()
	m.saves++
	return nil
}

func (m *Memory) Load(ctx context.Context, projectID string) (ByImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.projects[projectID].Clone(), nil
}

// Saves returns how many times Save succeeded.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *Memory) Close() error { return nil }

var _ Adapter = (*Memory)(nil)
