package viewport

import (
	"math"
	"strconv"
	"strings"

	"image-studio/internal/errs"
)

// Bounds accepted by the explicit resize form.
const (
	FormMinDimension = 1
	FormMaxDimension = 10000
)

// ResizeForm holds the state of the canvas resize dialog. With
// MaintainAspect on, editing one dimension recomputes the other from the
// ratio remembered when the toggle was switched on.
type ResizeForm struct {
	Width          int
	Height         int
	MaintainAspect bool
	ratio          float64
}

// NewResizeForm starts a form from the current canvas size.
func NewResizeForm(width, height int) *ResizeForm {
	f := &ResizeForm{Width: clampForm(width), Height: clampForm(height)}
	f.ratio = float64(f.Width) / float64(f.Height)
	return f
}

func clampForm(v int) int {
	return min(max(v, FormMinDimension), FormMaxDimension)
}

// Ratio returns the remembered width/height ratio.
func (f *ResizeForm) Ratio() float64 {
	return f.ratio
}

// SetMaintainAspect toggles aspect locking, remembering the current ratio
// when switched on.
func (f *ResizeForm) SetMaintainAspect(on bool) {
	if on && !f.MaintainAspect {
		f.ratio = float64(f.Width) / float64(f.Height)
	}
	f.MaintainAspect = on
}

// SetWidth edits the width.
func (f *ResizeForm) SetWidth(w int) {
	f.Width = clampForm(w)
	if f.MaintainAspect && f.ratio > 0 {
		f.Height = clampForm(int(math.Round(float64(f.Width) / f.ratio)))
	}
}

// SetHeight edits the height.
func (f *ResizeForm) SetHeight(h int) {
	f.Height = clampForm(h)
	if f.MaintainAspect && f.ratio > 0 {
		f.Width = clampForm(int(math.Round(float64(f.Height) * f.ratio)))
	}
}

// Request is a validated resize request.
type Request struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Validate checks a request against the form bounds.
func (r Request) Validate() error {
	if r.Width < FormMinDimension || r.Width > FormMaxDimension ||
		r.Height < FormMinDimension || r.Height > FormMaxDimension {
		return errs.Errorf("viewport.Request", errs.KindInvalid,
			"%dx%d outside [%d,%d]", r.Width, r.Height, FormMinDimension, FormMaxDimension)
	}
	return nil
}

// Request returns the form's current values.
func (f *ResizeForm) Request() Request {
	return Request{Width: f.Width, Height: f.Height}
}

// ParseDimension parses a dialog entry as a positive integer within the
// form bounds.
func ParseDimension(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errs.E("viewport.ParseDimension", errs.KindInvalid, err)
	}
	if v < FormMinDimension || v > FormMaxDimension {
		return 0, errs.Errorf("viewport.ParseDimension", errs.KindInvalid,
			"%d outside [%d,%d]", v, FormMinDimension, FormMaxDimension)
	}
	return v, nil
}
