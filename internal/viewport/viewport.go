// Package viewport owns the document's pixel size, zoom and pan, and the
// interactive border-resize gesture.
package viewport

import (
	"log/slog"
	"math"
	"sync"

	"image-studio/internal/errs"
	"image-studio/pkg/geometry"
)

// Document is the editing surface geometry.
type Document struct {
	Width  int              `json:"widthPx"`
	Height int              `json:"heightPx"`
	Zoom   float64          `json:"zoomPercent"`
	Pan    geometry.Point2D `json:"panOffset"`
}

// Size returns the document size.
func (d Document) Size() geometry.Size {
	return geometry.NewSize(float64(d.Width), float64(d.Height))
}

// Limits bounds document geometry.
type Limits struct {
	MinDimension int
	MaxDimension int
	MinZoom      float64
	MaxZoom      float64
	ZoomStep     float64
}

// DefaultLimits mirrors the built-in configuration.
func DefaultLimits() Limits {
	return Limits{MinDimension: 100, MaxDimension: 10000, MinZoom: 10, MaxZoom: 1000, ZoomStep: 1.25}
}

// fitMargin leaves a little room around a fitted document.
const fitMargin = 0.95

type gesture struct {
	handle  Handle
	start   geometry.Point2D
	origW   int
	origH   int
	w, h    int
	clamped bool
}

// Controller mutates a Document. Safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	doc       Document
	limits    Limits
	gesture   *gesture
	locked    bool
	container geometry.Size

	onCommit []func(Document)
	onZoom   []func(float64)

	warn   errs.Handler
	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithWarnings routes clamp warnings to h.
func WithWarnings(h errs.Handler) Option {
	return func(c *Controller) {
		if h != nil {
			c.warn = h
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a controller for a width x height document at 100% zoom.
func New(limits Limits, width, height int, opts ...Option) *Controller {
	c := &Controller{
		limits: limits,
		warn:   errs.Discard,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	w, h, _ := c.clampSize(width, height)
	c.doc = Document{Width: w, Height: h, Zoom: 100}
	return c
}

// OnCommit registers fn to run after the committed canvas size changes.
func (c *Controller) OnCommit(fn func(Document)) {
	c.mu.Lock()
	c.onCommit = append(c.onCommit, fn)
	c.mu.Unlock()
}

// OnZoom registers fn to run after the zoom changes.
func (c *Controller) OnZoom(fn func(float64)) {
	c.mu.Lock()
	c.onZoom = append(c.onZoom, fn)
	c.mu.Unlock()
}

// Document returns the committed document.
func (c *Controller) Document() Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc
}

// Limits returns the configured bounds.
func (c *Controller) Limits() Limits {
	return c.limits
}

func (c *Controller) clampSize(w, h int) (int, int, bool) {
	cw := min(max(w, c.limits.MinDimension), c.limits.MaxDimension)
	ch := min(max(h, c.limits.MinDimension), c.limits.MaxDimension)
	return cw, ch, cw != w || ch != h
}

// SetSize commits a new canvas size, clamping silently to the limits.
func (c *Controller) SetSize(width, height int) Document {
	c.mu.Lock()
	w, h, clamped := c.clampSize(width, height)
	changed := w != c.doc.Width || h != c.doc.Height
	c.doc.Width, c.doc.Height = w, h
	doc := c.doc
	hooks := c.onCommit
	c.mu.Unlock()

	if clamped {
		c.warn.Warn(errs.Errorf("viewport.SetSize", errs.KindResizeBounds,
			"requested %dx%d, clamped to %dx%d", width, height, w, h))
	}
	if changed {
		for _, fn := range hooks {
			fn(doc)
		}
	}
	return doc
}

// SetZoom sets an absolute zoom percentage, clamped to the limits.
func (c *Controller) SetZoom(percent float64) float64 {
	if math.IsNaN(percent) {
		percent = 100
	}
	percent = math.Max(c.limits.MinZoom, math.Min(c.limits.MaxZoom, percent))
	c.mu.Lock()
	changed := percent != c.doc.Zoom
	c.doc.Zoom = percent
	hooks := c.onZoom
	c.mu.Unlock()
	if changed {
		for _, fn := range hooks {
			fn(percent)
		}
	}
	return percent
}

// ZoomBy adds delta percentage points to the zoom.
func (c *Controller) ZoomBy(delta float64) float64 {
	return c.SetZoom(c.Document().Zoom + delta)
}

// ZoomIn multiplies the zoom by the zoom step.
func (c *Controller) ZoomIn() float64 {
	return c.SetZoom(c.Document().Zoom * c.limits.ZoomStep)
}

// ZoomOut divides the zoom by the zoom step.
func (c *Controller) ZoomOut() float64 {
	return c.SetZoom(c.Document().Zoom / c.limits.ZoomStep)
}

// Pan moves the document by (dx, dy) screen pixels. The document may end
// up partly or fully off screen.
func (c *Controller) Pan(dx, dy float64) {
	c.mu.Lock()
	c.doc.Pan = c.doc.Pan.Add(geometry.Pt(dx, dy))
	c.mu.Unlock()
}

// SetPan sets the absolute pan offset.
func (c *Controller) SetPan(p geometry.Point2D) {
	c.mu.Lock()
	c.doc.Pan = p
	c.mu.Unlock()
}

// SetContainer records the measured size of the view hosting the document.
func (c *Controller) SetContainer(s geometry.Size) {
	c.mu.Lock()
	c.container = s
	c.mu.Unlock()
}

// FitToViewport picks the zoom at which the whole document fits the
// container with a small margin, and centres it. Without a measured
// container the zoom is left alone.
func (c *Controller) FitToViewport() float64 {
	c.mu.Lock()
	container, doc := c.container, c.doc
	c.mu.Unlock()
	if container.Empty() {
		return doc.Zoom
	}
	zoom := c.SetZoom(geometry.FitScale(doc.Size(), container) * fitMargin * 100)
	scaled := geometry.NewSize(float64(doc.Width)*zoom/100, float64(doc.Height)*zoom/100)
	c.SetPan(geometry.CenterIn(scaled, container))
	return zoom
}

// ScreenToCanvas maps a screen point to document pixels.
func (c *Controller) ScreenToCanvas(p geometry.Point2D) geometry.Point2D {
	doc := c.Document()
	return p.Sub(doc.Pan).Scale(100 / doc.Zoom)
}

// CanvasToScreen maps document pixels to a screen point.
func (c *Controller) CanvasToScreen(p geometry.Point2D) geometry.Point2D {
	doc := c.Document()
	return p.Scale(doc.Zoom / 100).Add(doc.Pan)
}

// SetResizeLocked blocks or allows border resizing. Once an image is loaded
// the canvas may only change through an explicit resize request.
func (c *Controller) SetResizeLocked(locked bool) {
	c.mu.Lock()
	c.locked = locked
	c.mu.Unlock()
}

// ResizeLocked reports whether border resizing is blocked.
func (c *Controller) ResizeLocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

// BeginResize starts a border gesture at a screen point.
func (c *Controller) BeginResize(h Handle, pointer geometry.Point2D) error {
	const op = "viewport.BeginResize"
	if _, err := ParseHandle(h.String()); err != nil {
		return errs.E(op, errs.KindInvalid, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return errs.Errorf(op, errs.KindState, "border resize is disabled once an image is loaded")
	}
	if c.gesture != nil {
		return errs.Errorf(op, errs.KindState, "resize already in progress")
	}
	c.gesture = &gesture{
		handle: h,
		start:  pointer,
		origW:  c.doc.Width,
		origH:  c.doc.Height,
		w:      c.doc.Width,
		h:      c.doc.Height,
	}
	return nil
}

// UpdateResize recomputes the pending size for a pointer position. The
// committed document is not changed.
func (c *Controller) UpdateResize(pointer geometry.Point2D) (geometry.Size, error) {
	c.mu.Lock()
	g := c.gesture
	if g == nil {
		c.mu.Unlock()
		return geometry.Size{}, errs.Errorf("viewport.UpdateResize", errs.KindState, "no resize in progress")
	}
	scale := c.doc.Zoom / 100
	d := pointer.Sub(g.start)
	sx, sy := g.handle.axes()
	w := g.origW + int(math.Round(sx*d.X/scale))
	h := g.origH + int(math.Round(sy*d.Y/scale))
	cw, ch, clamped := c.clampSize(w, h)
	g.w, g.h = cw, ch
	warnNow := clamped && !g.clamped
	g.clamped = g.clamped || clamped
	c.mu.Unlock()

	if warnNow {
		c.warn.Warn(errs.Errorf("viewport.UpdateResize", errs.KindResizeBounds,
			"canvas %dx%d outside [%d,%d]", w, h, c.limits.MinDimension, c.limits.MaxDimension))
	}
	return geometry.NewSize(float64(cw), float64(ch)), nil
}

// Pending returns the size being dragged, or the committed size when idle.
func (c *Controller) Pending() (w, h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gesture != nil {
		return c.gesture.w, c.gesture.h
	}
	return c.doc.Width, c.doc.Height
}

// Resizing reports whether a gesture is in progress.
func (c *Controller) Resizing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gesture != nil
}

// EndResize commits the pending size. West and north handles shift the pan
// so the opposite edge stays put on screen.
func (c *Controller) EndResize() (Document, error) {
	c.mu.Lock()
	g := c.gesture
	if g == nil {
		c.mu.Unlock()
		return Document{}, errs.Errorf("viewport.EndResize", errs.KindState, "no resize in progress")
	}
	c.gesture = nil
	scale := c.doc.Zoom / 100
	sx, sy := g.handle.axes()
	if sx < 0 {
		c.doc.Pan.X -= float64(g.w-c.doc.Width) * scale
	}
	if sy < 0 {
		c.doc.Pan.Y -= float64(g.h-c.doc.Height) * scale
	}
	changed := g.w != c.doc.Width || g.h != c.doc.Height
	c.doc.Width, c.doc.Height = g.w, g.h
	doc := c.doc
	hooks := c.onCommit
	c.mu.Unlock()

	if changed {
		c.logger.Debug("canvas resized", "handle", g.handle, "width", doc.Width, "height", doc.Height)
		for _, fn := range hooks {
			fn(doc)
		}
	}
	return doc, nil
}

// CancelResize abandons a gesture without committing.
func (c *Controller) CancelResize() {
	c.mu.Lock()
	c.gesture = nil
	c.mu.Unlock()
}
