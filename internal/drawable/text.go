package drawable

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"image-studio/pkg/geometry"
)

// TextStyle controls how a Text drawable is rasterised.
type TextStyle struct {
	Color      color.Color
	Background color.Color // nil for transparent
	Scale      int         // integer upscale of the 7x13 face, 1..16
	Padding    int
}

// DefaultTextStyle is black text at 3x with a little padding.
func DefaultTextStyle() TextStyle {
	return TextStyle{Color: color.Black, Scale: 3, Padding: 2}
}

func (s TextStyle) normalized() TextStyle {
	if s.Color == nil {
		s.Color = color.Black
	}
	if s.Scale < 1 {
		s.Scale = 1
	} else if s.Scale > 16 {
		s.Scale = 16
	}
	if s.Padding < 0 {
		s.Padding = 0
	}
	return s
}

// Text is a single line of text rasterised with a fixed bitmap face.
type Text struct {
	base
	text  string
	style TextStyle
	src   *image.NRGBA
}

// NewText rasterises text with style.
func NewText(text string, style TextStyle) *Text {
	t := &Text{base: newBase()}
	t.set(text, style)
	return t
}

func (t *Text) set(text string, style TextStyle) {
	style = style.normalized()
	src := rasterizeText(text, style)
	t.mu.Lock()
	t.text, t.style, t.src = text, style, src
	t.preview = nil
	t.mu.Unlock()
}

// SetText re-rasterises with a new string, keeping the style.
func (t *Text) SetText(text string) {
	t.set(text, t.Style())
}

// SetStyle re-rasterises with a new style.
func (t *Text) SetStyle(style TextStyle) {
	t.set(t.String(), style)
}

func (t *Text) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.text
}

func (t *Text) Style() TextStyle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.style
}

func (t *Text) pixels() *image.NRGBA {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.src
}

func (t *Text) Size() geometry.Size        { return sizeOf(t.pixels()) }
func (t *Text) PixelSource() image.Image   { return t.pixels() }
func (t *Text) Display() image.Image       { return t.display(t.pixels()) }
func (t *Text) BoundingBox() geometry.Rect { return t.boundingBox(t.Size()) }

func (t *Text) Clone() Drawable {
	t.mu.RLock()
	c := &Text{base: newBase(), text: t.text, style: t.style, src: t.src}
	t.mu.RUnlock()
	c.copyFrom(&t.base)
	return c
}

// rasterizeText draws at 1x with basicfont and then upscales with
// nearest-neighbour so the glyphs stay crisp.
func rasterizeText(text string, style TextStyle) *image.NRGBA {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	if width == 0 {
		width = face.Advance
	}
	height := face.Height
	pad := style.Padding

	small := image.NewNRGBA(image.Rect(0, 0, width+2*pad, height+2*pad))
	if style.Background != nil {
		draw.Draw(small, small.Bounds(), image.NewUniform(style.Background), image.Point{}, draw.Src)
	}
	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(style.Color),
		Face: face,
		Dot:  fixed.P(pad, pad+face.Ascent),
	}
	d.DrawString(text)

	if style.Scale == 1 {
		return small
	}
	b := small.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx()*style.Scale, b.Dy()*style.Scale))
	xdraw.NearestNeighbor.Scale(out, out.Bounds(), small, b, xdraw.Src, nil)
	return out
}

var (
	_ Drawable  = (*Text)(nil)
	_ Previewer = (*Text)(nil)
)
