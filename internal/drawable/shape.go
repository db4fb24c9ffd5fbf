package drawable

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"image-studio/pkg/geometry"
)

// ShapeKind is a primitive shape.
type ShapeKind int

const (
	ShapeRect ShapeKind = iota
	ShapeEllipse
	ShapeLine
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeRect:
		return "rect"
	case ShapeEllipse:
		return "ellipse"
	case ShapeLine:
		return "line"
	default:
		return "unknown"
	}
}

// ParseShapeKind maps a name to a ShapeKind.
func ParseShapeKind(name string) (ShapeKind, error) {
	switch name {
	case "rect", "rectangle":
		return ShapeRect, nil
	case "ellipse", "circle":
		return ShapeEllipse, nil
	case "line":
		return ShapeLine, nil
	}
	return 0, fmt.Errorf("unknown shape %q", name)
}

// ShapeStyle describes fill and stroke. A nil Fill draws an outline only.
type ShapeStyle struct {
	Fill        color.Color
	Stroke      color.Color
	StrokeWidth float64
}

// Shape is a primitive rasterised at its natural size.
type Shape struct {
	base
	kind  ShapeKind
	size  geometry.Size
	style ShapeStyle
	src   *image.NRGBA
}

// NewShape rasterises a primitive of the given size (minimum 1x1).
func NewShape(kind ShapeKind, size geometry.Size, style ShapeStyle) *Shape {
	size.Width = math.Max(1, math.Round(size.Width))
	size.Height = math.Max(1, math.Round(size.Height))
	if style.StrokeWidth <= 0 {
		style.StrokeWidth = 2
	}
	return &Shape{
		base:  newBase(),
		kind:  kind,
		size:  size,
		style: style,
		src:   rasterizeShape(kind, size, style),
	}
}

func (s *Shape) Kind() ShapeKind            { return s.kind }
func (s *Shape) Style() ShapeStyle          { return s.style }
func (s *Shape) Size() geometry.Size        { return s.size }
func (s *Shape) PixelSource() image.Image   { return s.src }
func (s *Shape) Display() image.Image       { return s.display(s.src) }
func (s *Shape) BoundingBox() geometry.Rect { return s.boundingBox(s.size) }

func (s *Shape) Clone() Drawable {
	c := &Shape{base: newBase(), kind: s.kind, size: s.size, style: s.style, src: s.src}
	c.copyFrom(&s.base)
	return c
}

// rasterizeShape samples each pixel centre against the primitive.
func rasterizeShape(kind ShapeKind, size geometry.Size, style ShapeStyle) *image.NRGBA {
	w, h := int(size.Width), int(size.Height)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	sw := style.StrokeWidth
	cx, cy := size.Width/2, size.Height/2
	rx, ry := cx, cy

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			var inside, onStroke bool
			switch kind {
			case ShapeRect:
				inside = true
				onStroke = px < sw || py < sw || px > size.Width-sw || py > size.Height-sw
			case ShapeEllipse:
				d := (px-cx)*(px-cx)/(rx*rx) + (py-cy)*(py-cy)/(ry*ry)
				inside = d <= 1
				if inside && rx > sw && ry > sw {
					ix, iy := rx-sw, ry-sw
					onStroke = (px-cx)*(px-cx)/(ix*ix)+(py-cy)*(py-cy)/(iy*iy) > 1
				} else {
					onStroke = inside
				}
			case ShapeLine:
				// Diagonal from top-left to bottom-right.
				dist := math.Abs(size.Height*px-size.Width*py) / math.Hypot(size.Width, size.Height)
				inside = dist <= sw/2
				onStroke = inside
			}
			switch {
			case onStroke && style.Stroke != nil:
				img.Set(x, y, style.Stroke)
			case inside && style.Fill != nil && kind != ShapeLine:
				img.Set(x, y, style.Fill)
			case onStroke && kind == ShapeLine && style.Fill != nil:
				img.Set(x, y, style.Fill)
			}
		}
	}
	return img
}

var (
	_ Drawable  = (*Shape)(nil)
	_ Previewer = (*Shape)(nil)
)
