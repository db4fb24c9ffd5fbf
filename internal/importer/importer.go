// Package importer decodes incoming images and reconciles their size with
// the canvas: auto-fit on first import, a three-way decision on conflicts,
// and re-fit after an explicit canvas resize.
package importer

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"

	"image-studio/internal/drawable"
	"image-studio/internal/errs"
	studioimage "image-studio/internal/image"
	"image-studio/internal/layer"
	"image-studio/internal/viewport"
)

var (
	// ErrImportInFlight is returned when the same source is submitted while
	// it is still being imported. Nothing changes.
	ErrImportInFlight = errs.Errorf("importer.Import", errs.KindBusy, "same image is already being imported")
	// ErrSuperseded is returned to an import that a newer one cancelled.
	ErrSuperseded = errs.Errorf("importer.Import", errs.KindState, "import superseded by a newer one")
)

// Decoder turns submitted bytes into an image.
type Decoder func(data []byte) (*studioimage.Decoded, error)

// Result describes a completed import.
type Result struct {
	Layer     layer.Layer
	Decoded   *studioimage.Decoded
	Document  viewport.Document
	Placement Placement
	// Replaced is true when an existing background was swapped out.
	Replaced bool
	// Decision is set when the result came from Resolve.
	Decision *Decision
}

// Engine is the single place the fit algorithm lives.
type Engine struct {
	mu         sync.Mutex
	policy     Policy
	view       *viewport.Controller
	layers     *layer.Model
	decode     Decoder
	state      State
	pending    *studioimage.Decoded
	conflict   *Conflict
	inFlight   string
	generation uint64
	lastLoaded string

	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithDecoder overrides image decoding.
func WithDecoder(d Decoder) Option {
	return func(e *Engine) { e.decode = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine over a viewport and layer model.
func New(policy Policy, view *viewport.Controller, layers *layer.Model, opts ...Option) *Engine {
	e := &Engine{
		policy: policy,
		view:   view,
		layers: layers,
		decode: studioimage.Decode,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the fit policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// State returns the decision state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Pending returns the unresolved conflict, if any.
func (e *Engine) Pending() (*Conflict, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conflict == nil {
		return nil, false
	}
	c := *e.conflict
	return &c, true
}

// LastLoaded returns the fingerprint of the most recently placed image.
func (e *Engine) LastLoaded() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastLoaded
}

// Import decodes raw bytes or a data URL and places the image. When a
// background exists and the image's size differs from the canvas, Import
// returns an error of kind KindDimensionConflict wrapping a *Conflict and
// waits for Resolve.
func (e *Engine) Import(ctx context.Context, data []byte) (*Result, error) {
	sid := studioimage.SourceID(data)
	gen, err := e.begin(sid)
	if err != nil {
		return nil, err
	}
	decoded, err := e.decode(data)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		e.end(gen)
		if !errs.Is(err, errs.KindDecode) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			err = errs.E("importer.Import", errs.KindDecode, err)
		}
		e.logger.Warn("image import failed", "source", sid, "error", err)
		return nil, err
	}
	return e.place(gen, decoded)
}

// ImportBitmap places an already decoded image, e.g. the output of an
// external generator.
func (e *Engine) ImportBitmap(ctx context.Context, img image.Image) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, errs.Errorf("importer.ImportBitmap", errs.KindDecode, "empty bitmap")
	}
	fp := studioimage.Fingerprint(img)
	gen, err := e.begin(fp)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		e.end(gen)
		return nil, err
	}
	return e.place(gen, &studioimage.Decoded{Image: img, Format: "bitmap", SourceID: fp, Fingerprint: fp})
}

// begin claims the in-flight slot. A different source cancels whatever was
// in flight; the same source is rejected.
func (e *Engine) begin(sid string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.view.Resizing():
		return 0, errs.Errorf("importer.Import", errs.KindState, "canvas resize in progress")
	case e.state != StateIdle:
		return 0, errs.Errorf("importer.Import", errs.KindState, "import is %s", e.state)
	case e.inFlight == sid:
		return 0, ErrImportInFlight
	}
	if e.inFlight != "" {
		e.logger.Debug("import cancelled by newer source", "previous", e.inFlight, "source", sid)
	}
	e.inFlight = sid
	e.generation++
	return e.generation, nil
}

func (e *Engine) end(gen uint64) {
	e.mu.Lock()
	if e.generation == gen {
		e.inFlight = ""
	}
	e.mu.Unlock()
}

func (e *Engine) place(gen uint64, d *studioimage.Decoded) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation != gen {
		return nil, ErrSuperseded
	}
	e.inFlight = ""
	if e.state != StateIdle {
		return nil, errs.Errorf("importer.Import", errs.KindState, "import is %s", e.state)
	}

	doc := e.view.Document()
	iw, ih := d.Width(), d.Height()

	if !e.layers.HasBackground() {
		cw, ch := e.policy.AutoFit(iw, ih)
		doc = e.view.SetSize(cw, ch)
		return e.commitLocked(d, d.Image, doc)
	}
	if iw == doc.Width && ih == doc.Height {
		return e.commitLocked(d, d.Image, doc)
	}

	e.state = StateAwaitingDecision
	e.pending = d
	e.conflict = &Conflict{
		CanvasWidth:  doc.Width,
		CanvasHeight: doc.Height,
		ImageWidth:   iw,
		ImageHeight:  ih,
		Fingerprint:  d.Fingerprint,
	}
	e.logger.Info("import awaiting decision", "image", d.Fingerprint, "conflict", e.conflict.Error())
	return nil, errs.E("importer.Import", errs.KindDimensionConflict, e.conflict)
}

// Resolve completes an import that is awaiting a decision.
func (e *Engine) Resolve(decision Decision) (*Result, error) {
	const op = "importer.Resolve"
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateAwaitingDecision {
		return nil, errs.Errorf(op, errs.KindState, "no import awaiting a decision (state %s)", e.state)
	}
	d := e.pending
	defer func() {
		e.state = StateIdle
		e.pending, e.conflict = nil, nil
	}()

	var (
		res *Result
		err error
	)
	switch decision {
	case DecisionDiscard:
		e.state = StateDiscarding
		e.logger.Info("import discarded", "image", d.Fingerprint)
		res = &Result{Decoded: d, Document: e.view.Document()}
	case DecisionResizeCanvas:
		e.state = StateResizing
		w, h := e.policy.clamp(d.Width(), d.Height())
		doc := e.view.SetSize(w, h)
		res, err = e.commitLocked(d, d.Image, doc)
	case DecisionResizeAndRescale:
		e.state = StateResizing
		w, h := e.policy.AutoFit(d.Width(), d.Height())
		doc := e.view.SetSize(w, h)
		p := Fit(d.Width(), d.Height(), doc.Width, doc.Height)
		sw := max(1, int(float64(d.Width())*p.Scale+0.5))
		sh := max(1, int(float64(d.Height())*p.Scale+0.5))
		res, err = e.commitLocked(d, studioimage.Rescale(d.Image, sw, sh), doc)
	default:
		return nil, errs.Errorf(op, errs.KindInvalid, "unknown decision %d", int(decision))
	}
	if err != nil {
		return nil, err
	}
	res.Decision = &decision
	return res, nil
}

// commitLocked fits pixels into doc and installs them as the background.
func (e *Engine) commitLocked(d *studioimage.Decoded, pixels image.Image, doc viewport.Document) (*Result, error) {
	b := pixels.Bounds()
	p := Fit(b.Dx(), b.Dy(), doc.Width, doc.Height)
	dr := drawable.NewImage(pixels)
	dr.SetTransform(p.Transform())

	replaced := e.layers.HasBackground()
	l, err := e.layers.SetBackground(dr)
	if err != nil {
		return nil, err
	}
	e.view.SetResizeLocked(true)
	e.lastLoaded = d.Fingerprint
	e.logger.Info("image placed", "image", d.Fingerprint, "width", doc.Width, "height", doc.Height, "scale", p.Scale)
	return &Result{Layer: l, Decoded: d, Document: doc, Placement: p, Replaced: replaced}, nil
}

// Refit resizes the canvas to an explicit request and re-fits the current
// background into it. Dimensions below the minimum are clamped.
func (e *Engine) Refit(req viewport.Request) (*Result, error) {
	const op = "importer.Refit"
	if err := req.Validate(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateIdle {
		return nil, errs.Errorf(op, errs.KindState, "import is %s", e.state)
	}
	if e.view.Resizing() {
		return nil, errs.Errorf(op, errs.KindState, "canvas resize in progress")
	}
	doc := e.view.SetSize(req.Width, req.Height)
	bg, ok := e.layers.Background()
	if !ok {
		return &Result{Document: doc}, nil
	}
	if !bg.Drawable.TryAcquire() {
		return nil, errs.Errorf(op, errs.KindBusy, "background is being modified")
	}
	defer bg.Drawable.Release()
	size := bg.Drawable.Size()
	p := Fit(int(size.Width), int(size.Height), doc.Width, doc.Height)
	bg.Drawable.SetTransform(p.Transform())
	return &Result{Layer: bg, Document: doc, Placement: p}, nil
}

// Reset drops any pending decision and forgets the last loaded image.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.state = StateIdle
	e.pending, e.conflict = nil, nil
	e.inFlight = ""
	e.generation++
	e.lastLoaded = ""
	e.mu.Unlock()
}
