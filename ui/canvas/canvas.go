package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"

	"image-studio/internal/debounce"
	"image-studio/internal/layer"
	"image-studio/internal/pipeline"
	"image-studio/internal/studio"
	"image-studio/pkg/geometry"
)

var backdrop = color.RGBA{R: 0x2B, G: 0x2B, B: 0x2E, A: 255}

// MeasureDelay is the quiet period before a container resize is measured
// and the document refitted.
var MeasureDelay = 100 * time.Millisecond

const measureKey = "container"

type dragMode int

const (
	dragNone dragMode = iota
	dragPan
	dragMove
	dragResize
)

// Relay is a pipeline surface that forwards repaint requests to a canvas
// bound after the session is built.
type Relay struct {
	mu     sync.Mutex
	target fyne.Widget
}

// Bind sets the widget to repaint.
func (r *Relay) Bind(w fyne.Widget) {
	r.mu.Lock()
	r.target = w
	r.mu.Unlock()
}

// Refresh repaints the bound widget, if any.
func (r *Relay) Refresh() {
	r.mu.Lock()
	w := r.target
	r.mu.Unlock()
	if w != nil {
		w.Refresh()
	}
}

// StudioCanvas paints a session's document and turns pointer input into
// zoom, pan, layer moves and border resizing.
type StudioCanvas struct {
	widget.BaseWidget

	session *studio.Session
	raster  *fynecanvas.Raster

	mu        sync.Mutex
	mode      dragMode
	dragLayer string
	autoFit   bool
	pxScale   float32
	measure   *debounce.Debouncer

	onTapped func(layerID string)
	onResize func(w, h int)
}

// NewStudioCanvas creates a canvas over s. The document is fitted to the
// widget on its first layout.
func NewStudioCanvas(s *studio.Session) *StudioCanvas {
	c := &StudioCanvas{session: s, autoFit: true, pxScale: 1, measure: debounce.New(MeasureDelay)}
	c.raster = fynecanvas.NewRaster(c.draw)
	c.ExtendBaseWidget(c)
	return c
}

// CreateRenderer implements fyne.Widget.
func (c *StudioCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.raster)
}

// Resize lays the widget out and schedules a measurement of the new
// container size. A burst of resizes is measured once.
func (c *StudioCanvas) Resize(size fyne.Size) {
	c.BaseWidget.Resize(size)
	c.measure.Trigger(measureKey, func() { c.applyContainer(size) })
}

// applyContainer records the container size and refits while auto-fit holds.
func (c *StudioCanvas) applyContainer(size fyne.Size) {
	view := c.session.Viewport()
	view.SetContainer(geometry.NewSize(float64(size.Width), float64(size.Height)))
	c.mu.Lock()
	fit := c.autoFit
	c.mu.Unlock()
	if fit {
		view.FitToViewport()
	}
	c.Refresh()
}

// MinSize keeps the canvas usable in small windows.
func (c *StudioCanvas) MinSize() fyne.Size {
	return fyne.NewSize(200, 150)
}

// FitToWindow fits the whole document and resumes fitting on resize.
func (c *StudioCanvas) FitToWindow() {
	c.mu.Lock()
	c.autoFit = true
	c.mu.Unlock()
	c.measure.Flush(measureKey)
	c.session.FitToViewport()
	c.Refresh()
}

// SetZoom sets an explicit zoom and stops auto-fit.
func (c *StudioCanvas) SetZoom(percent float64) {
	c.stopFit()
	c.session.SetZoom(percent)
	c.Refresh()
}

// ZoomIn zooms in around the widget centre.
func (c *StudioCanvas) ZoomIn() {
	c.zoomAround(c.center(), true)
}

// ZoomOut zooms out around the widget centre.
func (c *StudioCanvas) ZoomOut() {
	c.zoomAround(c.center(), false)
}

// OnLayerTapped sets the callback run after a tap selects a layer.
func (c *StudioCanvas) OnLayerTapped(fn func(layerID string)) {
	c.onTapped = fn
}

// OnResizeCommitted sets the callback run after a border drag commits.
func (c *StudioCanvas) OnResizeCommitted(fn func(w, h int)) {
	c.onResize = fn
}

func (c *StudioCanvas) stopFit() {
	c.mu.Lock()
	c.autoFit = false
	c.mu.Unlock()
}

func (c *StudioCanvas) center() geometry.Point2D {
	s := c.Size()
	return geometry.Pt(float64(s.Width)/2, float64(s.Height)/2)
}

// zoomAround changes the zoom one step while keeping the document point
// under p fixed on screen.
func (c *StudioCanvas) zoomAround(p geometry.Point2D, in bool) {
	c.stopFit()
	view := c.session.Viewport()
	anchor := view.ScreenToCanvas(p)
	var zoom float64
	if in {
		zoom = c.session.ZoomIn()
	} else {
		zoom = c.session.ZoomOut()
	}
	view.SetPan(p.Sub(anchor.Scale(zoom / 100)))
	c.Refresh()
}

func pointOf(pos fyne.Position) geometry.Point2D {
	return geometry.Pt(float64(pos.X), float64(pos.Y))
}

// documentRect is the document's on-screen rectangle.
func (c *StudioCanvas) documentRect() geometry.Rect {
	doc := c.session.Document()
	z := doc.Zoom / 100
	return geometry.NewRect(doc.Pan.X, doc.Pan.Y, float64(doc.Width)*z, float64(doc.Height)*z)
}

// screenBounds maps a layer's canvas bounds to the screen.
func (c *StudioCanvas) screenBounds(l layer.Layer) geometry.Rect {
	view := c.session.Viewport()
	b := l.Drawable.BoundingBox()
	tl := view.CanvasToScreen(geometry.Pt(b.X, b.Y))
	br := view.CanvasToScreen(geometry.Pt(b.X+b.Width, b.Y+b.Height))
	return geometry.NewRect(tl.X, tl.Y, br.X-tl.X, br.Y-tl.Y)
}

// layerAt returns the topmost visible layer under a screen point.
func (c *StudioCanvas) layerAt(p geometry.Point2D) (layer.Layer, bool) {
	order := c.session.Layers().PaintOrder()
	for i := len(order) - 1; i >= 0; i-- {
		if c.screenBounds(order[i]).Contains(p) {
			return order[i], true
		}
	}
	return layer.Layer{}, false
}

// Scrolled zooms around the pointer.
func (c *StudioCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY == 0 {
		return
	}
	c.zoomAround(pointOf(ev.Position), ev.Scrolled.DY > 0)
}

// Tapped selects the topmost layer under the pointer, or clears the
// selection over empty canvas.
func (c *StudioCanvas) Tapped(ev *fyne.PointEvent) {
	id := ""
	if l, ok := c.layerAt(pointOf(ev.Position)); ok {
		id = l.ID
	}
	if err := c.session.SelectLayer(id); err != nil {
		c.session.Warnings().Warn(err)
		return
	}
	if c.onTapped != nil {
		c.onTapped(id)
	}
	c.Refresh()
}

// Dragged resizes from a border grip, moves the selected layer, or pans,
// depending on where the drag started.
func (c *StudioCanvas) Dragged(ev *fyne.DragEvent) {
	p := pointOf(ev.Position)
	dx, dy := float64(ev.Dragged.DX), float64(ev.Dragged.DY)

	c.mu.Lock()
	mode := c.mode
	c.mu.Unlock()
	if mode == dragNone {
		mode = c.startDrag(p.Sub(geometry.Pt(dx, dy)))
	}

	switch mode {
	case dragResize:
		if _, err := c.session.UpdateResize(p); err != nil {
			c.session.Warnings().Warn(err)
		}
	case dragMove:
		zoom := c.session.Document().Zoom / 100
		c.mu.Lock()
		id := c.dragLayer
		c.mu.Unlock()
		if err := c.session.TranslateLayer(id, dx/zoom, dy/zoom); err != nil {
			c.session.Warnings().Warn(err)
		}
	case dragPan:
		c.stopFit()
		c.session.Pan(dx, dy)
	}
	c.Refresh()
}

func (c *StudioCanvas) startDrag(start geometry.Point2D) dragMode {
	mode := dragPan
	var id string
	if !c.session.Viewport().ResizeLocked() {
		if h, ok := HandleAt(c.documentRect(), start, HandleSize); ok {
			if err := c.session.BeginResize(h, start); err == nil {
				mode = dragResize
			} else {
				c.session.Warnings().Warn(err)
			}
		}
	}
	if mode == dragPan {
		if l, ok := c.session.Selected(); ok && !l.Locked && c.screenBounds(l).Contains(start) {
			mode, id = dragMove, l.ID
		}
	}
	c.mu.Lock()
	c.mode, c.dragLayer = mode, id
	c.mu.Unlock()
	return mode
}

// DragEnd commits a resize gesture.
func (c *StudioCanvas) DragEnd() {
	c.mu.Lock()
	mode := c.mode
	c.mode, c.dragLayer = dragNone, ""
	c.mu.Unlock()

	if mode == dragResize {
		doc, err := c.session.EndResize()
		if err != nil {
			c.session.Warnings().Warn(err)
		} else if c.onResize != nil {
			c.onResize(doc.Width, doc.Height)
		}
	}
	c.Refresh()
}

// Cursor shows a resize cursor while border resizing is available.
func (c *StudioCanvas) Cursor() desktop.Cursor {
	c.mu.Lock()
	mode := c.mode
	c.mu.Unlock()
	switch mode {
	case dragResize:
		return desktop.CrosshairCursor
	case dragMove:
		return desktop.PointerCursor
	}
	return desktop.DefaultCursor
}

// draw renders the raster. w and h are in device pixels, which may differ
// from the widget's logical size on scaled displays.
func (c *StudioCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRect(output, output.Bounds(), backdrop)

	if size := c.Size(); size.Width > 0 {
		c.mu.Lock()
		c.pxScale = float32(w) / size.Width
		c.mu.Unlock()
	}
	scale := float64(c.pxScale)
	toPx := func(r geometry.Rect) image.Rectangle {
		return toPixels(geometry.NewRect(r.X*scale, r.Y*scale, r.Width*scale, r.Height*scale))
	}

	docRect := c.documentRect()
	dst := toPx(docRect)
	fillChecker(output, dst, 8)
	composite := c.session.Render()
	if !dst.Empty() {
		xdraw.NearestNeighbor.Scale(output, dst, composite, composite.Bounds(), draw.Over, nil)
	}

	if l, ok := c.session.Selected(); ok {
		drawDashedRect(output, toPx(c.screenBounds(l)), selectionColor)
	}

	view := c.session.Viewport()
	if view.Resizing() {
		pw, ph := view.Pending()
		zoom := c.session.Document().Zoom / 100
		pending := geometry.NewRect(docRect.X, docRect.Y, float64(pw)*zoom, float64(ph)*zoom)
		r := toPx(pending)
		drawLine(output, r.Min.X, r.Min.Y, r.Max.X, r.Min.Y, pendingColor, 1)
		drawLine(output, r.Max.X, r.Min.Y, r.Max.X, r.Max.Y, pendingColor, 1)
		drawLine(output, r.Max.X, r.Max.Y, r.Min.X, r.Max.Y, pendingColor, 1)
		drawLine(output, r.Min.X, r.Max.Y, r.Min.X, r.Min.Y, pendingColor, 1)
		label := fmt.Sprintf("%dx%d", pw, ph)
		lw, _ := labelSize(label, 2)
		drawLabel(output, label, r.Max.X-lw-6, r.Max.Y+6, labelInk, labelBacking, 2)
	} else if !view.ResizeLocked() {
		drawHandles(output, toPx(docRect))
	}

	zoomLabel := fmt.Sprintf("%d%%", int(math.Round(c.session.Document().Zoom)))
	drawLabel(output, zoomLabel, 8, h-18, labelInk, labelBacking, 2)
	return output
}

// Ensure interface compliance.
var (
	_ fyne.Widget        = (*StudioCanvas)(nil)
	_ fyne.Draggable     = (*StudioCanvas)(nil)
	_ fyne.Tappable      = (*StudioCanvas)(nil)
	_ fyne.Scrollable    = (*StudioCanvas)(nil)
	_ desktop.Cursorable = (*StudioCanvas)(nil)
	_ pipeline.Surface   = (*Relay)(nil)
)
