// Package history is a bounded linear undo stack of visual snapshots.
package history

import (
	"sync"
	"time"
)

// ImageRef identifies an image registered with the session; empty means none.
type ImageRef string

// Entry is an immutable snapshot of visual state. It records image
// references and zoom only, not layer structure or adjustments.
type Entry struct {
	Background ImageRef  `json:"backgroundImageRef"`
	Generated  ImageRef  `json:"generatedImageRef"`
	Attached   ImageRef  `json:"attachedImageRef"`
	Zoom       float64   `json:"zoomPercent"`
	Timestamp  time.Time `json:"timestamp"`
	// Label names the action that produced the entry, for display.
	Label string `json:"label,omitempty"`
}

// Manager holds at most Capacity entries. Index points at the current one.
type Manager struct {
	mu       sync.Mutex
	entries  []Entry
	index    int
	capacity int
	now      func() time.Time
}

// New creates an empty manager. Capacities below 1 are raised to 1.
func New(capacity int) *Manager {
	return &Manager{
		capacity: max(1, capacity),
		index:    -1,
		now:      time.Now,
	}
}

// WithClock replaces the timestamp source.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Push drops any redo entries, appends e and evicts from the front beyond
// capacity. A zero Timestamp is filled in.
func (m *Manager) Push(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = m.now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries[:m.index+1], e)
	if over := len(m.entries) - m.capacity; over > 0 {
		m.entries = append(m.entries[:0], m.entries[over:]...)
	}
	m.index = len(m.entries) - 1
}

// Undo steps back and returns the new current entry, or nil at the oldest.
func (m *Manager) Undo() *Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index <= 0 {
		return nil
	}
	m.index--
	e := m.entries[m.index]
	return &e
}

// Redo steps forward and returns the new current entry, or nil at the newest.
func (m *Manager) Redo() *Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index < 0 || m.index >= len(m.entries)-1 {
		return nil
	}
	m.index++
	e := m.entries[m.index]
	return &e
}

// Current returns the current entry, or nil when empty.
func (m *Manager) Current() *Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index < 0 {
		return nil
	}
	e := m.entries[m.index]
	return &e
}

// CanUndo reports whether Undo would move.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index > 0
}

// CanRedo reports whether Redo would move.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index >= 0 && m.index < len(m.entries)-1
}

// Index returns the current position, -1 when empty.
func (m *Manager) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Len returns the number of retained entries.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Capacity returns the maximum number of entries.
func (m *Manager) Capacity() int {
	return m.capacity
}

// Entries returns a copy of the retained entries, oldest first.
func (m *Manager) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}

// References returns every image ref still reachable from the stack.
func (m *Manager) References() map[ImageRef]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	refs := make(map[ImageRef]bool)
	for _, e := range m.entries {
		for _, r := range []ImageRef{e.Background, e.Generated, e.Attached} {
			if r != "" {
				refs[r] = true
			}
		}
	}
	return refs
}

// Reset empties the stack.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.entries = nil
	m.index = -1
	m.mu.Unlock()
}
