package image

import (
	"image"
	"image/color"
	"image/draw"

	"image-studio/pkg/geometry"
)

// Composite combines placed layers into a single image.
type Composite struct {
	Width  int
	Height int
	Layers []Placed
	// BackColor fills the canvas before layers are drawn; nil leaves it transparent.
	BackColor color.Color
}

// Placed is one renderable layer: a pixel source mapped into canvas space.
type Placed struct {
	Image     image.Image
	Transform geometry.AffineTransform
	// Opacity multiplies the source alpha, in [0,1].
	Opacity float64
}

// NewComposite creates a new Composite with the specified dimensions.
func NewComposite(width, height int) *Composite {
	return &Composite{
		Width:  width,
		Height: height,
	}
}

// Add appends a layer on top of the existing ones.
func (c *Composite) Add(img image.Image, transform geometry.AffineTransform, opacity float64) {
	c.Layers = append(c.Layers, Placed{Image: img, Transform: transform, Opacity: opacity})
}

// Render produces the final composited image. Layers are painted in slice
// order, so index 0 ends up at the bottom.
func (c *Composite) Render() *image.RGBA {
	result := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))

	if c.BackColor != nil {
		draw.Draw(result, result.Bounds(), &image.Uniform{C: c.BackColor}, image.Point{}, draw.Src)
	}

	for _, p := range c.Layers {
		if p.Image == nil || p.Opacity <= 0 {
			continue
		}
		c.compositeLayer(result, p)
	}

	return result
}

// compositeLayer blends a single layer onto dst using inverse mapping, so
// every destination pixel samples exactly one source pixel.
func (c *Composite) compositeLayer(dst *image.RGBA, p Placed) {
	src := p.Image
	srcBounds := src.Bounds()
	inv, ok := p.Transform.Inverse()
	if !ok {
		return
	}
	opacity := clamp(p.Opacity, 0, 1)

	area := p.Transform.Bounds(geometry.NewSize(float64(srcBounds.Dx()), float64(srcBounds.Dy())))
	x0 := max(0, int(area.X))
	y0 := max(0, int(area.Y))
	x1 := min(c.Width, int(area.X+area.Width+1))
	y1 := min(c.Height, int(area.Y+area.Height+1))

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			sp := inv.Apply(geometry.Pt(float64(x)+0.5, float64(y)+0.5))
			sx := int(floor(sp.X)) + srcBounds.Min.X
			sy := int(floor(sp.Y)) + srcBounds.Min.Y
			if sx < srcBounds.Min.X || sx >= srcBounds.Max.X ||
				sy < srcBounds.Min.Y || sy >= srcBounds.Max.Y {
				continue
			}
			blendOver(dst, x, y, src.At(sx, sy), opacity)
		}
	}
}

// blendOver applies the Porter-Duff "over" operator in premultiplied space.
func blendOver(dst *image.RGBA, x, y int, src color.Color, opacity float64) {
	sr, sg, sb, sa := src.RGBA()
	if sa == 0 {
		return
	}
	fr := float64(sr) / 0xffff * opacity
	fg := float64(sg) / 0xffff * opacity
	fb := float64(sb) / 0xffff * opacity
	fa := float64(sa) / 0xffff * opacity

	i := dst.PixOffset(x, y)
	d := dst.Pix[i : i+4 : i+4]
	inv := 1 - fa
	d[0] = unit8(fr + float64(d[0])/255*inv)
	d[1] = unit8(fg + float64(d[1])/255*inv)
	d[2] = unit8(fb + float64(d[2])/255*inv)
	d[3] = unit8(fa + float64(d[3])/255*inv)
}

func unit8(v float64) uint8 {
	return uint8(clamp(v, 0, 1)*255 + 0.5)
}

func floor(v float64) float64 {
	i := float64(int(v))
	if v < 0 && i != v {
		return i - 1
	}
	return i
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
