// Package drawable wraps renderable entities (images, text, shapes) behind a
// small capability interface so the layer model, the adjustment pipeline and
// the rendering surface never depend on a concrete backend.
package drawable

import (
	"image"
	"sync"
	"sync/atomic"

	"image-studio/internal/effect"
	"image-studio/internal/idgen"
	"image-studio/pkg/geometry"
)

// Drawable is one renderable entity.
type Drawable interface {
	ID() string
	// Size is the natural pixel size before the transform is applied.
	Size() geometry.Size
	Transform() geometry.AffineTransform
	SetTransform(geometry.AffineTransform)
	Visible() bool
	SetVisible(bool)
	// Opacity is the intrinsic opacity in [0,1]. It composes
	// multiplicatively with any alpha an effect produces.
	Opacity() float64
	SetOpacity(float64)
	// PixelSource returns the pristine pixels. Effects never modify them.
	PixelSource() image.Image
	// Display returns what should be painted: the preview if one is set,
	// otherwise the pixel source.
	Display() image.Image
	// BoundingBox is the transformed bounds in canvas coordinates.
	BoundingBox() geometry.Rect
	// Clone returns an independent copy with a new id. Effects and previews
	// are not copied; the copy shows its pixel source until adjusted.
	Clone() Drawable

	// TryAcquire marks the drawable busy. It returns false if another
	// mutation already holds it.
	TryAcquire() bool
	Release()
	Busy() bool
}

// EffectTarget is implemented by drawables that can apply an effect chain
// themselves.
type EffectTarget interface {
	ApplyEffect(chain effect.Chain) error
	ClearEffect()
	Effect() effect.Chain
}

// Previewer is implemented by drawables that accept externally rendered
// preview pixels.
type Previewer interface {
	SetPreview(img image.Image)
	ClearPreview()
	HasPreview() bool
}

// base carries the state every drawable shares.
type base struct {
	mu        sync.RWMutex
	id        string
	transform geometry.AffineTransform
	visible   bool
	opacity   float64
	preview   image.Image
	busy      atomic.Bool
}

func newBase() base {
	return base{
		id:        idgen.New(),
		transform: geometry.Identity(),
		visible:   true,
		opacity:   1,
	}
}

// copyFrom copies placement state. The id, busy flag and preview stay.
func (b *base) copyFrom(o *base) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	b.transform = o.transform
	b.visible = o.visible
	b.opacity = o.opacity
}

func (b *base) ID() string { return b.id }

func (b *base) Transform() geometry.AffineTransform {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.transform
}

func (b *base) SetTransform(t geometry.AffineTransform) {
	b.mu.Lock()
	b.transform = t
	b.mu.Unlock()
}

func (b *base) Visible() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.visible
}

func (b *base) SetVisible(v bool) {
	b.mu.Lock()
	b.visible = v
	b.mu.Unlock()
}

func (b *base) Opacity() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.opacity
}

func (b *base) SetOpacity(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	b.mu.Lock()
	b.opacity = v
	b.mu.Unlock()
}

func (b *base) SetPreview(img image.Image) {
	b.mu.Lock()
	b.preview = img
	b.mu.Unlock()
}

func (b *base) ClearPreview() {
	b.mu.Lock()
	b.preview = nil
	b.mu.Unlock()
}

func (b *base) HasPreview() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.preview != nil
}

func (b *base) display(src image.Image) image.Image {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.preview != nil {
		return b.preview
	}
	return src
}

func (b *base) boundingBox(size geometry.Size) geometry.Rect {
	return b.Transform().Bounds(size)
}

func (b *base) TryAcquire() bool { return b.busy.CompareAndSwap(false, true) }
func (b *base) Release()         { b.busy.Store(false) }
func (b *base) Busy() bool       { return b.busy.Load() }

func sizeOf(img image.Image) geometry.Size {
	r := img.Bounds()
	return geometry.NewSize(float64(r.Dx()), float64(r.Dy()))
}
