package filter

import (
	"fmt"
	"image"

	"image-studio/internal/effect"
	studioimage "image-studio/internal/image"
)

// Renderer turns a source image and an effect chain into a new image. The
// source is never modified.
type Renderer interface {
	Render(src image.Image, chain effect.Chain) (*image.NRGBA, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(src image.Image, chain effect.Chain) (*image.NRGBA, error)

// Render calls f.
func (f RendererFunc) Render(src image.Image, chain effect.Chain) (*image.NRGBA, error) {
	return f(src, chain)
}

// Default is the CPU renderer backed by gonum and OpenCV.
var Default Renderer = RendererFunc(Render)

// Render applies chain to a copy of src. Consecutive colour ops are folded
// into one matrix before touching pixels.
func Render(src image.Image, chain effect.Chain) (*image.NRGBA, error) {
	out := studioimage.Clone(src)
	pending := IdentityMatrix()

	flush := func() {
		pending.Apply(out)
		pending = IdentityMatrix()
	}

	for _, op := range chain {
		if op.IsIdentity() {
			continue
		}
		if !op.Kind.Spatial() {
			pending = pending.Then(MatrixFor(op))
			continue
		}

		flush()
		var err error
		switch op.Kind {
		case effect.OpBlur:
			out, err = gaussianBlur(out, op.Amount)
		case effect.OpSharpen:
			out, err = sharpen(out, op.Amount)
		case effect.OpVignette:
			vignette(out, op.Amount)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", op, err)
		}
	}
	flush()
	return out, nil
}

// Compile folds the colour ops of chain into a single matrix, ignoring
// spatial ops.
func Compile(chain effect.Chain) ColorMatrix {
	m := IdentityMatrix()
	for _, op := range chain {
		if op.Kind.Spatial() || op.IsIdentity() {
			continue
		}
		m = m.Then(MatrixFor(op))
	}
	return m
}
