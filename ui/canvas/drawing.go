// Package canvas provides drawing primitives for the studio canvas.
package canvas

import (
	"image"
	"image/color"
	"strings"
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// symbolPatterns covers what size and zoom readouts need.
var symbolPatterns = map[rune][5]uint8{
	'X': {0b101, 0b101, 0b010, 0b101, 0b101},
	'%': {0b101, 0b001, 0b010, 0b100, 0b101},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
	' ': {0b000, 0b000, 0b000, 0b000, 0b000},
}

// charPattern returns the 3x5 pattern for ch, or an empty one.
func charPattern(ch rune) [5]uint8 {
	if ch >= '0' && ch <= '9' {
		return digitPatterns[ch-'0']
	}
	if p, ok := symbolPatterns[ch]; ok {
		return p
	}
	return [5]uint8{}
}

func inBounds(b image.Rectangle, x, y int) bool {
	return x >= b.Min.X && x < b.Max.X && y >= b.Min.Y && y < b.Max.Y
}

// fillRect fills [x1,x2]x[y1,y2], clipped to the output.
func fillRect(output *image.RGBA, r image.Rectangle, col color.RGBA) {
	r = r.Intersect(output.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			output.SetRGBA(x, y, col)
		}
	}
}

// fillChecker paints a transparency checkerboard.
func fillChecker(output *image.RGBA, r image.Rectangle, cell int) {
	light := color.RGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF}
	dark := color.RGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 0xFF}
	r = r.Intersect(output.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if ((x/cell)+(y/cell))%2 == 0 {
				output.SetRGBA(x, y, light)
			} else {
				output.SetRGBA(x, y, dark)
			}
		}
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	bounds := output.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				if px, py := x1+s, y1+t; inBounds(bounds, px, py) {
					output.SetRGBA(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawDashedRect outlines r with a 2-on 2-off dash.
func drawDashedRect(output *image.RGBA, r image.Rectangle, col color.RGBA) {
	bounds := output.Bounds()
	x1, y1, x2, y2 := r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1

	for x := x1; x <= x2; x++ {
		if (x+y1)%4 < 2 && inBounds(bounds, x, y1) {
			output.SetRGBA(x, y1, col)
		}
		if (x+y2)%4 < 2 && inBounds(bounds, x, y2) {
			output.SetRGBA(x, y2, col)
		}
	}
	for y := y1; y <= y2; y++ {
		if (x1+y)%4 < 2 && inBounds(bounds, x1, y) {
			output.SetRGBA(x1, y, col)
		}
		if (x2+y)%4 < 2 && inBounds(bounds, x2, y) {
			output.SetRGBA(x2, y, col)
		}
	}
}

// labelSize returns the pixel size of label drawn at scale.
func labelSize(label string, scale int) (w, h int) {
	n := len([]rune(label))
	if n == 0 {
		return 0, 0
	}
	return n*3*scale + (n-1)*scale, 5 * scale
}

// drawLabel draws label with its top-left corner at (x, y) on a solid
// backing so it stays readable over any image.
func drawLabel(output *image.RGBA, label string, x, y int, col, bg color.RGBA, scale int) {
	if scale < 1 {
		scale = 1
	}
	label = strings.ToUpper(label)
	w, h := labelSize(label, scale)
	fillRect(output, image.Rect(x-scale, y-scale, x+w+scale, y+h+scale), bg)

	bounds := output.Bounds()
	for i, ch := range []rune(label) {
		pattern := charPattern(ch)
		charX := x + i*(4*scale)
		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if pattern[row]&(1<<(2-c)) == 0 {
					continue
				}
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						if px, py := charX+c*scale+dx, y+row*scale+dy; inBounds(bounds, px, py) {
							output.SetRGBA(px, py, col)
						}
					}
				}
			}
		}
	}
}
