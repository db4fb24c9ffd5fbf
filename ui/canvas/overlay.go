package canvas

import (
	"image"
	"image/color"
	"math"

	"image-studio/internal/viewport"
	"image-studio/pkg/geometry"
)

// HandleSize is the side of a drawn resize grip in screen pixels.
const HandleSize = 8

var (
	selectionColor = color.RGBA{R: 255, G: 213, B: 0, A: 255}
	handleFill     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	handleBorder   = color.RGBA{R: 0x2E, G: 0x6F, B: 0xD8, A: 255}
	pendingColor   = color.RGBA{R: 0x2E, G: 0x6F, B: 0xD8, A: 255}
	labelInk       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	labelBacking   = color.RGBA{R: 0, G: 0, B: 0, A: 200}
)

// handleOrder lists corners before edges so a corner wins where their hit
// areas overlap.
var handleOrder = []viewport.Handle{
	viewport.HandleNW, viewport.HandleNE, viewport.HandleSE, viewport.HandleSW,
	viewport.HandleN, viewport.HandleE, viewport.HandleS, viewport.HandleW,
}

// HandlePoint returns the centre of h on the border of r.
func HandlePoint(r geometry.Rect, h viewport.Handle) geometry.Point2D {
	left, top := r.X, r.Y
	right, bottom := r.X+r.Width, r.Y+r.Height
	cx, cy := r.Center().X, r.Center().Y
	switch h {
	case viewport.HandleN:
		return geometry.Pt(cx, top)
	case viewport.HandleS:
		return geometry.Pt(cx, bottom)
	case viewport.HandleE:
		return geometry.Pt(right, cy)
	case viewport.HandleW:
		return geometry.Pt(left, cy)
	case viewport.HandleNE:
		return geometry.Pt(right, top)
	case viewport.HandleNW:
		return geometry.Pt(left, top)
	case viewport.HandleSE:
		return geometry.Pt(right, bottom)
	default:
		return geometry.Pt(left, bottom)
	}
}

// HandleAt returns the grip of r within tolerance of p.
func HandleAt(r geometry.Rect, p geometry.Point2D, tolerance float64) (viewport.Handle, bool) {
	for _, h := range handleOrder {
		c := HandlePoint(r, h)
		if math.Abs(p.X-c.X) <= tolerance && math.Abs(p.Y-c.Y) <= tolerance {
			return h, true
		}
	}
	return 0, false
}

// toPixels rounds a screen rect to an image rectangle.
func toPixels(r geometry.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.X+r.Width)), int(math.Round(r.Y+r.Height)),
	)
}

// drawHandles paints the eight grips around r.
func drawHandles(output *image.RGBA, r geometry.Rect) {
	half := HandleSize / 2
	for _, h := range handleOrder {
		c := HandlePoint(r, h)
		x, y := int(math.Round(c.X)), int(math.Round(c.Y))
		box := image.Rect(x-half, y-half, x+half, y+half)
		fillRect(output, box, handleBorder)
		fillRect(output, box.Inset(1), handleFill)
	}
}
