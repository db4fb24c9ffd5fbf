// Package layer maintains the ordered layer stack of a document. Index 0 is
// the bottom of the paint order.
package layer

import (
	"fmt"
	"log/slog"
	"sync"

	"image-studio/internal/drawable"
	"image-studio/internal/errs"
	"image-studio/internal/idgen"
)

// Layer is a snapshot of one layer record. Drawable is shared with the
// model; every other field is a copy.
type Layer struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Kind     Kind              `json:"kind"`
	Visible  bool              `json:"visible"`
	Locked   bool              `json:"locked"`
	Opacity  float64           `json:"opacity"` // percent, 0..100
	Drawable drawable.Drawable `json:"-"`
}

// Model is the ordered collection of layers.
type Model struct {
	mu         sync.RWMutex
	layers     []*Layer
	byID       map[string]*Layer
	byDrawable map[string]string // drawable id -> layer id
	selected   string
	counts     map[Kind]int

	newID     idgen.Generator
	dupOffset float64
	logger    *slog.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithIDGenerator overrides the layer id generator.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(m *Model) { m.newID = gen }
}

// WithDuplicateOffset sets how far a duplicate is shifted from its original.
func WithDuplicateOffset(px float64) Option {
	return func(m *Model) { m.dupOffset = px }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates an empty model.
func New(opts ...Option) *Model {
	m := &Model{
		byID:       make(map[string]*Layer),
		byDrawable: make(map[string]string),
		counts:     make(map[Kind]int),
		newID:      idgen.Prefixed("lyr_", idgen.UUIDv7()),
		dupOffset:  20,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add appends a layer on top of the stack. Background layers are created
// through SetBackground only.
func (m *Model) Add(kind Kind, d drawable.Drawable, name string) (Layer, error) {
	const op = "layer.Add"
	if kind == KindBackground {
		return Layer{}, errs.Errorf(op, errs.KindInvalid, "background layers are set with SetBackground")
	}
	if d == nil {
		return Layer{}, errs.Errorf(op, errs.KindInvalid, "nil drawable")
	}
	m.mu.Lock()
	l := m.insertLocked(len(m.layers), kind, d, name)
	m.mu.Unlock()
	m.logger.Debug("layer added", "layer", l.ID, "kind", kind)
	return l, nil
}

func (m *Model) insertLocked(at int, kind Kind, d drawable.Drawable, name string) Layer {
	m.counts[kind]++
	if name == "" {
		name = defaultName(kind, m.counts[kind])
	}
	l := &Layer{
		ID:       m.newID(),
		Name:     name,
		Kind:     kind,
		Visible:  true,
		Opacity:  100,
		Drawable: d,
	}
	d.SetVisible(true)
	d.SetOpacity(1)
	m.layers = append(m.layers, nil)
	copy(m.layers[at+1:], m.layers[at:])
	m.layers[at] = l
	m.byID[l.ID] = l
	m.byDrawable[d.ID()] = l.ID
	return *l
}

func defaultName(kind Kind, n int) string {
	switch kind {
	case KindBackground:
		return "Background"
	case KindImage:
		return fmt.Sprintf("Image %d", n)
	case KindText:
		return fmt.Sprintf("Text %d", n)
	case KindShape:
		return fmt.Sprintf("Shape %d", n)
	default:
		return fmt.Sprintf("Layer %d", n)
	}
}

// SetBackground replaces the background layer's drawable, or creates the
// background at the bottom of the stack. The layer ends visible and
// unlocked; an existing background keeps its id.
func (m *Model) SetBackground(d drawable.Drawable) (Layer, error) {
	if d == nil {
		return Layer{}, errs.Errorf("layer.SetBackground", errs.KindInvalid, "nil drawable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.layers {
		if l.Kind != KindBackground {
			continue
		}
		delete(m.byDrawable, l.Drawable.ID())
		l.Drawable = d
		l.Visible, l.Locked, l.Opacity = true, false, 100
		d.SetVisible(true)
		d.SetOpacity(1)
		m.byDrawable[d.ID()] = l.ID
		return *l, nil
	}
	return m.insertLocked(0, KindBackground, d, ""), nil
}

// Background returns the background layer if one exists.
func (m *Model) Background() (Layer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.layers {
		if l.Kind == KindBackground {
			return *l, true
		}
	}
	return Layer{}, false
}

// HasBackground reports whether a background layer exists.
func (m *Model) HasBackground() bool {
	_, ok := m.Background()
	return ok
}

// RemoveBackground drops the background layer. Only history restore and
// document reset use it; Remove always refuses the background.
func (m *Model) RemoveBackground() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, l := range m.layers {
		if l.Kind != KindBackground {
			continue
		}
		m.layers = append(m.layers[:i], m.layers[i+1:]...)
		delete(m.byID, l.ID)
		delete(m.byDrawable, l.Drawable.ID())
		if m.selected == l.ID {
			m.selected = ""
		}
		return true
	}
	return false
}

// Remove deletes a layer. The background and locked layers cannot be removed.
func (m *Model) Remove(id string) error {
	const op = "layer.Remove"
	m.mu.Lock()
	defer m.mu.Unlock()
	i, l := m.findLocked(id)
	if l == nil {
		return errs.Errorf(op, errs.KindNotFound, "layer %s", id)
	}
	switch {
	case l.Kind == KindBackground:
		return errs.Errorf(op, errs.KindState, "background layer can only be replaced")
	case l.Locked:
		return errs.Errorf(op, errs.KindState, "layer %s is locked", id)
	}
	if !l.Drawable.TryAcquire() {
		return errs.Errorf(op, errs.KindBusy, "layer %s is being modified", id)
	}
	defer l.Drawable.Release()

	m.layers = append(m.layers[:i], m.layers[i+1:]...)
	delete(m.byID, id)
	delete(m.byDrawable, l.Drawable.ID())
	if m.selected == id {
		m.selected = ""
	}
	m.logger.Debug("layer removed", "layer", id)
	return nil
}

// Duplicate inserts a copy directly above the original with a new id and an
// independent drawable, shifted so it is visibly distinct. A duplicated
// background becomes an image layer. The copy is selected.
func (m *Model) Duplicate(id string) (Layer, error) {
	const op = "layer.Duplicate"
	m.mu.Lock()
	defer m.mu.Unlock()
	i, src := m.findLocked(id)
	if src == nil {
		return Layer{}, errs.Errorf(op, errs.KindNotFound, "layer %s", id)
	}
	if !src.Drawable.TryAcquire() {
		return Layer{}, errs.Errorf(op, errs.KindBusy, "layer %s is being modified", id)
	}
	clone := src.Drawable.Clone()
	src.Drawable.Release()
	clone.SetTransform(clone.Transform().Translate(m.dupOffset, m.dupOffset))

	kind := src.Kind
	if kind == KindBackground {
		kind = KindImage
	}
	dup := m.insertLocked(i+1, kind, clone, src.Name+" copy")
	l := m.byID[dup.ID]
	l.Visible, l.Opacity = src.Visible, src.Opacity
	clone.SetVisible(src.Visible)
	clone.SetOpacity(src.Opacity / 100)
	m.selected = l.ID
	return *l, nil
}

// Move removes the layer at from and reinserts it at to.
func (m *Model) Move(from, to int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.layers)
	if from < 0 || from >= n || to < 0 || to >= n {
		return errs.Errorf("layer.Move", errs.KindInvalid, "index out of range: %d -> %d (len %d)", from, to, n)
	}
	if from == to {
		return nil
	}
	l := m.layers[from]
	m.layers = append(m.layers[:from], m.layers[from+1:]...)
	m.layers = append(m.layers, nil)
	copy(m.layers[to+1:], m.layers[to:])
	m.layers[to] = l
	return nil
}

// MoveLayer moves a layer by id to a new index.
func (m *Model) MoveLayer(id string, to int) error {
	i := m.IndexOf(id)
	if i < 0 {
		return errs.Errorf("layer.MoveLayer", errs.KindNotFound, "layer %s", id)
	}
	return m.Move(i, to)
}

// SetVisible shows or hides a layer.
func (m *Model) SetVisible(id string, visible bool) error {
	return m.mutate("layer.SetVisible", id, false, func(l *Layer) {
		l.Visible = visible
		l.Drawable.SetVisible(visible)
	})
}

// SetLocked locks or unlocks a layer.
func (m *Model) SetLocked(id string, locked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, l := m.findLocked(id)
	if l == nil {
		return errs.Errorf("layer.SetLocked", errs.KindNotFound, "layer %s", id)
	}
	l.Locked = locked
	return nil
}

// SetOpacity sets layer opacity in percent, clamped to [0,100]. It is
// mirrored onto the drawable's intrinsic opacity.
func (m *Model) SetOpacity(id string, percent float64) error {
	if percent != percent {
		percent = 100
	}
	percent = min(100, max(0, percent))
	return m.mutate("layer.SetOpacity", id, false, func(l *Layer) {
		l.Opacity = percent
		l.Drawable.SetOpacity(percent / 100)
	})
}

// Rename changes a layer's display name.
func (m *Model) Rename(id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, l := m.findLocked(id)
	if l == nil {
		return errs.Errorf("layer.Rename", errs.KindNotFound, "layer %s", id)
	}
	l.Name = name
	return nil
}

// Translate moves a layer's drawable. Locked layers reject it.
func (m *Model) Translate(id string, dx, dy float64) error {
	return m.mutate("layer.Translate", id, true, func(l *Layer) {
		l.Drawable.SetTransform(l.Drawable.Transform().Translate(dx, dy))
	})
}

// mutate runs fn with the layer's drawable held busy.
func (m *Model) mutate(op, id string, respectLock bool, fn func(*Layer)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, l := m.findLocked(id)
	if l == nil {
		return errs.Errorf(op, errs.KindNotFound, "layer %s", id)
	}
	if respectLock && l.Locked {
		return errs.Errorf(op, errs.KindState, "layer %s is locked", id)
	}
	if !l.Drawable.TryAcquire() {
		return errs.Errorf(op, errs.KindBusy, "layer %s is being modified", id)
	}
	defer l.Drawable.Release()
	fn(l)
	return nil
}

// Select makes id the active layer. An empty id clears the selection.
func (m *Model) Select(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id != "" {
		if _, ok := m.byID[id]; !ok {
			return errs.Errorf("layer.Select", errs.KindNotFound, "layer %s", id)
		}
	}
	m.selected = id
	return nil
}

// Selected returns the active layer.
func (m *Model) Selected() (Layer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.byID[m.selected]
	if !ok {
		return Layer{}, false
	}
	return *l, true
}

// Get returns a layer by id.
func (m *Model) Get(id string) (Layer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.byID[id]
	if !ok {
		return Layer{}, false
	}
	return *l, true
}

// ForDrawable resolves the layer that owns a drawable.
func (m *Model) ForDrawable(drawableID string) (Layer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byDrawable[drawableID]
	if !ok {
		return Layer{}, false
	}
	return *m.byID[id], true
}

// IndexOf returns the stack index of id, or -1.
func (m *Model) IndexOf(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, _ := m.findLocked(id)
	return i
}

// Layers returns snapshots bottom to top.
func (m *Model) Layers() []Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Layer, len(m.layers))
	for i, l := range m.layers {
		out[i] = *l
	}
	return out
}

// Len returns the number of layers.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.layers)
}

// PaintOrder returns the visible layers bottom to top, ready to composite.
func (m *Model) PaintOrder() []Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Layer, 0, len(m.layers))
	for _, l := range m.layers {
		if l.Visible {
			out = append(out, *l)
		}
	}
	return out
}

// Clear drops every layer, the background included.
func (m *Model) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layers = nil
	m.byID = make(map[string]*Layer)
	m.byDrawable = make(map[string]string)
	m.selected = ""
	m.counts = make(map[Kind]int)
}

func (m *Model) findLocked(id string) (int, *Layer) {
	for i, l := range m.layers {
		if l.ID == id {
			return i, l
		}
	}
	return -1, nil
}
