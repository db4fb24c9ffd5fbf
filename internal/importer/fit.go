package importer

import (
	"math"

	"image-studio/pkg/geometry"
)

// Policy bounds the canvas a fresh import may create.
type Policy struct {
	// MaxWorkingSize bounds the longer side of an auto-fitted canvas.
	MaxWorkingSize int
	// Images whose longer side is below SmallImageThreshold are shown at
	// ComfortableSize instead of 1:1.
	SmallImageThreshold int
	ComfortableSize     int
	MinDimension        int
	MaxDimension        int
}

// DefaultPolicy mirrors the built-in configuration.
func DefaultPolicy() Policy {
	return Policy{
		MaxWorkingSize:      1200,
		SmallImageThreshold: 300,
		ComfortableSize:     600,
		MinDimension:        100,
		MaxDimension:        10000,
	}
}

// AutoFit returns the canvas size for an image of w x h: aspect preserved,
// longer side bounded by MaxWorkingSize, very small images brought up to the
// comfortable size, and each side at least MinDimension.
func (p Policy) AutoFit(w, h int) (int, int) {
	size := geometry.NewSize(float64(w), float64(h))
	long := max(w, h)
	switch {
	case long > p.MaxWorkingSize:
		size = geometry.BoundLongSide(size, float64(p.MaxWorkingSize))
	case long < p.SmallImageThreshold:
		size = geometry.BoundLongSide(size, float64(p.ComfortableSize))
	}
	return p.clamp(int(math.Round(size.Width)), int(math.Round(size.Height)))
}

// clamp limits each side to [MinDimension, MaxDimension].
func (p Policy) clamp(w, h int) (int, int) {
	w = min(max(w, p.MinDimension), p.MaxDimension)
	h = min(max(h, p.MinDimension), p.MaxDimension)
	return w, h
}

// Placement positions an image inside a canvas.
type Placement struct {
	Scale float64 `json:"scale"`
	Left  float64 `json:"left"`
	Top   float64 `json:"top"`
}

// Fit scales an imgW x imgH image to fit canvasW x canvasH without
// cropping, centred.
func Fit(imgW, imgH, canvasW, canvasH int) Placement {
	img := geometry.NewSize(float64(imgW), float64(imgH))
	canvas := geometry.NewSize(float64(canvasW), float64(canvasH))
	s := geometry.FitScale(img, canvas)
	off := geometry.CenterIn(geometry.NewSize(img.Width*s, img.Height*s), canvas)
	return Placement{Scale: s, Left: off.X, Top: off.Y}
}

// Transform returns the drawable transform for the placement.
func (p Placement) Transform() geometry.AffineTransform {
	return geometry.Placement(p.Left, p.Top, p.Scale)
}
