package pipeline

import (
	"errors"

	"image-studio/internal/drawable"
	"image-studio/internal/effect"
	"image-studio/internal/filter"
)

// ErrNotSupported tells the pipeline to fall through to the next strategy.
var ErrNotSupported = errors.New("strategy not supported for this drawable")

// Surface is the rendering surface the pipeline asks to repaint.
type Surface interface {
	Refresh()
}

// FilterSurface is a surface that can filter a drawable while painting it,
// leaving the drawable's pixels alone.
type FilterSurface interface {
	Surface
	SetFilter(d drawable.Drawable, chain effect.Chain) error
	ClearFilter(d drawable.Drawable)
}

// Strategy is one way of making an effect chain visible on a drawable.
type Strategy interface {
	Name() string
	Apply(d drawable.Drawable, chain effect.Chain) error
	Clear(d drawable.Drawable)
}

type surfaceStrategy struct{ surface Surface }

// SurfaceStrategy filters at the surface level when the surface supports it.
func SurfaceStrategy(s Surface) Strategy { return surfaceStrategy{s} }

func (surfaceStrategy) Name() string { return "surface" }

func (s surfaceStrategy) Apply(d drawable.Drawable, chain effect.Chain) error {
	fs, ok := s.surface.(FilterSurface)
	if !ok {
		return ErrNotSupported
	}
	return fs.SetFilter(d, chain)
}

func (s surfaceStrategy) Clear(d drawable.Drawable) {
	if fs, ok := s.surface.(FilterSurface); ok {
		fs.ClearFilter(d)
	}
}

type elementStrategy struct{}

// ElementStrategy lets the drawable apply the chain itself.
func ElementStrategy() Strategy { return elementStrategy{} }

func (elementStrategy) Name() string { return "element" }

func (elementStrategy) Apply(d drawable.Drawable, chain effect.Chain) error {
	t, ok := d.(drawable.EffectTarget)
	if !ok {
		return ErrNotSupported
	}
	return t.ApplyEffect(chain)
}

func (elementStrategy) Clear(d drawable.Drawable) {
	if t, ok := d.(drawable.EffectTarget); ok {
		t.ClearEffect()
	}
}

type offscreenStrategy struct{ renderer filter.Renderer }

// OffscreenStrategy renders the pristine pixels through r and hands the
// result to the drawable as a preview.
func OffscreenStrategy(r filter.Renderer) Strategy { return offscreenStrategy{r} }

func (offscreenStrategy) Name() string { return "offscreen" }

func (s offscreenStrategy) Apply(d drawable.Drawable, chain effect.Chain) error {
	p, ok := d.(drawable.Previewer)
	if !ok {
		return ErrNotSupported
	}
	out, err := s.renderer.Render(d.PixelSource(), chain)
	if err != nil {
		return err
	}
	p.SetPreview(out)
	return nil
}

func (offscreenStrategy) Clear(d drawable.Drawable) {
	if p, ok := d.(drawable.Previewer); ok {
		p.ClearPreview()
	}
}
