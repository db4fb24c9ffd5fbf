package geometry

import "math"

// FitScale returns the uniform scale that makes src fit entirely inside dst
// without cropping. It returns 0 if either size is empty.
func FitScale(src, dst Size) float64 {
	if src.Empty() || dst.Empty() {
		return 0
	}
	return math.Min(dst.Width/src.Width, dst.Height/src.Height)
}

// CenterIn returns the top-left offset that centers a box of size inner
// within outer.
func CenterIn(inner, outer Size) Point2D {
	return Point2D{
		X: (outer.Width - inner.Width) / 2,
		Y: (outer.Height - inner.Height) / 2,
	}
}

// BoundLongSide scales s uniformly so its longer side equals limit.
func BoundLongSide(s Size, limit float64) Size {
	long := math.Max(s.Width, s.Height)
	if long <= 0 {
		return s
	}
	k := limit / long
	return Size{Width: s.Width * k, Height: s.Height * k}
}
