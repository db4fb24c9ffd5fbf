package drawable

import (
	"image"

	"image-studio/internal/effect"
	"image-studio/internal/filter"
	studioimage "image-studio/internal/image"
	"image-studio/pkg/geometry"
)

// Image is a raster drawable. It can render effects onto itself, keeping
// the decoded pixels untouched.
type Image struct {
	base
	src      *image.NRGBA
	chain    effect.Chain
	renderer filter.Renderer
}

// NewImage wraps img. The pixels are copied so later changes to img do not
// leak in.
func NewImage(img image.Image) *Image {
	return &Image{
		base:     newBase(),
		src:      studioimage.Clone(img),
		renderer: filter.Default,
	}
}

// WithRenderer replaces the renderer used by ApplyEffect.
func (d *Image) WithRenderer(r filter.Renderer) *Image {
	d.renderer = r
	return d
}

func (d *Image) Size() geometry.Size        { return sizeOf(d.src) }
func (d *Image) PixelSource() image.Image   { return d.src }
func (d *Image) Display() image.Image       { return d.display(d.src) }
func (d *Image) BoundingBox() geometry.Rect { return d.boundingBox(d.Size()) }

// Clone shares the immutable source pixels and copies the effect state.
func (d *Image) Clone() Drawable {
	c := &Image{base: newBase(), src: d.src, renderer: d.renderer}
	c.copyFrom(&d.base)
	return c
}

// ApplyEffect renders chain over the pristine source and shows the result.
// An identity chain clears the effect.
func (d *Image) ApplyEffect(chain effect.Chain) error {
	if chain.IsIdentity() {
		d.ClearEffect()
		return nil
	}
	out, err := d.renderer.Render(d.src, chain)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.chain = chain.Clone()
	d.preview = out
	d.mu.Unlock()
	return nil
}

func (d *Image) ClearEffect() {
	d.mu.Lock()
	d.chain = nil
	d.preview = nil
	d.mu.Unlock()
}

func (d *Image) Effect() effect.Chain {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.chain.Clone()
}

var (
	_ Drawable     = (*Image)(nil)
	_ EffectTarget = (*Image)(nil)
	_ Previewer    = (*Image)(nil)
)
