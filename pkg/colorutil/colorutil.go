// Package colorutil provides shared colour helpers for the image studio.
package colorutil

import (
	"fmt"
	"image/color"
	"strings"
)

// Common colours used for default text and shape layers.
var (
	Black = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Red   = color.NRGBA{R: 230, G: 57, B: 70, A: 255}
)

// Rec. 709 luma weights, the same ones CSS grayscale() and saturate() use.
const (
	LumaR = 0.2126
	LumaG = 0.7152
	LumaB = 0.0722
)

// Luma returns the relative luminance of an 8-bit RGB triple in [0,1].
func Luma(r, g, b uint8) float64 {
	return (LumaR*float64(r) + LumaG*float64(g) + LumaB*float64(b)) / 255.0
}

// Clamp8 rounds v to the nearest integer and clamps it to [0,255].
func Clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa" into an NRGBA colour.
func ParseHex(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	c := color.NRGBA{A: 255}
	var err error
	switch len(s) {
	case 3:
		_, err = fmt.Sscanf(s, "%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	case 6:
		_, err = fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B)
	case 8:
		_, err = fmt.Sscanf(s, "%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return c, nil
}

// Hex formats c as "#rrggbbaa".
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
