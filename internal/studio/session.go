// Package studio wires the canvas engine together: one Session owns the
// viewport, layer model, importer, adjustment pipeline, history and
// persistence for a single editing session.
package studio

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"image-studio/internal/adjust"
	"image-studio/internal/config"
	"image-studio/internal/drawable"
	"image-studio/internal/errs"
	"image-studio/internal/history"
	studioimage "image-studio/internal/image"
	"image-studio/internal/importer"
	"image-studio/internal/layer"
	"image-studio/internal/pipeline"
	"image-studio/internal/store"
	"image-studio/internal/viewport"
	"image-studio/pkg/geometry"
)

// Options configures a Session. Zero values pick sensible defaults.
type Options struct {
	Config  *config.Config
	Store   store.Adapter
	Surface pipeline.Surface
	Frames  pipeline.FrameScheduler
	Logger  *slog.Logger
	// Now overrides the clock used for history and stored timestamps.
	Now func() time.Time
}

// HistoryInfo summarises the undo stack for display.
type HistoryInfo struct {
	Index   int  `json:"index"`
	Len     int  `json:"len"`
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
}

// Session is one editing session over one project.
type Session struct {
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
	warn   errs.Handler

	view     *viewport.Controller
	layers   *layer.Model
	importer *importer.Engine
	pipeline *pipeline.Pipeline
	history  *history.Manager
	saver    *store.Saver

	mu         sync.Mutex
	images     map[history.ImageRef]image.Image
	background history.ImageRef
	generated  history.ImageRef
	attached   history.ImageRef
	imageIDs   map[string]string // drawable id -> stored image id
	presets    map[string]string // drawable id -> preset applied since last manual edit
	stored     store.ByImage
	opened     bool

	// pendingGenerated marks an unresolved conflict raised by ImportGenerated.
	pendingGenerated bool

	lmu       sync.RWMutex
	listeners map[EventType][]EventListener
}

// New builds a session from opts.
func New(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	adapter := opts.Store
	if adapter == nil {
		var err error
		if adapter, err = store.Open(cfg.Store.Driver, cfg.Store.Path); err != nil {
			return nil, err
		}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	frames := opts.Frames
	if frames == nil {
		frames = pipeline.TimerFrames{Interval: cfg.Adjust.FrameInterval}
	}

	s := &Session{
		cfg:       cfg,
		logger:    logger,
		now:       now,
		images:    make(map[history.ImageRef]image.Image),
		imageIDs:  make(map[string]string),
		presets:   make(map[string]string),
		listeners: make(map[EventType][]EventListener),
	}
	s.warn = errs.HandlerFunc(func(err error) {
		(&errs.LogHandler{Logger: logger}).Warn(err)
		s.Emit(EventWarning, err)
	})

	s.view = viewport.New(viewport.Limits{
		MinDimension: cfg.Canvas.MinDimension,
		MaxDimension: cfg.Canvas.MaxDimension,
		MinZoom:      float64(cfg.Zoom.Min),
		MaxZoom:      float64(cfg.Zoom.Max),
		ZoomStep:     cfg.Zoom.Step,
	}, cfg.Canvas.DefaultWidth, cfg.Canvas.DefaultHeight,
		viewport.WithWarnings(s.warn), viewport.WithLogger(logger))
	s.view.OnZoom(func(z float64) { s.Emit(EventZoomChanged, z) })

	s.layers = layer.New(layer.WithDuplicateOffset(cfg.Canvas.DuplicateOffset), layer.WithLogger(logger))
	s.importer = importer.New(importer.Policy{
		MaxWorkingSize:      cfg.Canvas.MaxWorkingSize,
		SmallImageThreshold: cfg.Canvas.SmallImageThreshold,
		ComfortableSize:     cfg.Canvas.ComfortableSize,
		MinDimension:        cfg.Canvas.MinDimension,
		MaxDimension:        cfg.Canvas.MaxDimension,
	}, s.view, s.layers, importer.WithLogger(logger))
	s.pipeline = pipeline.New(opts.Surface,
		pipeline.WithDebounce(cfg.Adjust.Debounce),
		pipeline.WithFrames(frames, cfg.Adjust.ConfirmPasses),
		pipeline.WithWarnings(s.warn),
		pipeline.WithLogger(logger))
	s.pipeline.OnApplied(func(a pipeline.Applied) { s.Emit(EventAdjustmentsApplied, a) })
	s.pipeline.OnProcessing(func(on bool) { s.Emit(EventProcessingChanged, on) })
	s.history = history.New(cfg.History.Capacity).WithClock(now)

	s.saver = store.NewSaver(adapter, cfg.Store.ProjectID, cfg.Store.SaveDebounce, logger)
	s.saver.OnSaved(func(b store.ByImage) { s.Emit(EventSaved, b) })
	s.saver.OnError(func(err error) { s.Emit(EventWarning, err) })
	return s, nil
}

// Open loads the project's stored adjustments. It runs once per session;
// later calls are no-ops.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.opened {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	loaded, err := s.saver.Load(ctx)
	if err != nil {
		return errs.E("studio.Open", errs.KindPersistence, err)
	}
	if loaded == nil {
		loaded = store.ByImage{}
	}
	s.mu.Lock()
	s.stored, s.opened = loaded, true
	s.mu.Unlock()
	s.logger.Info("project opened", "project", s.saver.ProjectID(), "stored", len(loaded))
	return nil
}

// Close flushes a pending save and releases resources.
func (s *Session) Close(ctx context.Context) error {
	s.pipeline.Close()
	return s.saver.Close(ctx)
}

// Config returns the active configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// Viewport exposes the viewport controller to surfaces.
func (s *Session) Viewport() *viewport.Controller { return s.view }

// Layers exposes the layer model for read access.
func (s *Session) Layers() *layer.Model { return s.layers }

// Pipeline exposes the adjustment pipeline.
func (s *Session) Pipeline() *pipeline.Pipeline { return s.pipeline }

// Warnings returns the handler that logs and emits EventWarning.
func (s *Session) Warnings() errs.Handler { return s.warn }

// ---- import -------------------------------------------------------------

// ImportImage decodes data (raw bytes or a data URL) and makes it the
// background. A size conflict emits EventDecisionRequired and returns an
// error of kind KindDimensionConflict; call ResolveImport to finish.
func (s *Session) ImportImage(ctx context.Context, data []byte) (*importer.Result, error) {
	res, err := s.importer.Import(ctx, data)
	return s.afterImport(res, err, "import", false)
}

// ImportGenerated places the output of the external generator and records
// it as the generated image, also when it lands through ResolveImport.
func (s *Session) ImportGenerated(ctx context.Context, img image.Image) (*importer.Result, error) {
	res, err := s.importer.ImportBitmap(ctx, img)
	return s.afterImport(res, err, "generate", true)
}

// ResolveImport completes an import waiting for a decision.
func (s *Session) ResolveImport(d importer.Decision) (*importer.Result, error) {
	res, err := s.importer.Resolve(d)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	generated := s.pendingGenerated
	s.pendingGenerated = false
	s.mu.Unlock()
	if d == importer.DecisionDiscard {
		return res, nil
	}
	return s.afterImport(res, nil, "import "+d.String(), generated)
}

// PendingDecision returns the unresolved import conflict, if any.
func (s *Session) PendingDecision() (*importer.Conflict, bool) {
	return s.importer.Pending()
}

func (s *Session) afterImport(res *importer.Result, err error, label string, generated bool) (*importer.Result, error) {
	if err != nil {
		var conflict *importer.Conflict
		if errors.As(err, &conflict) {
			s.mu.Lock()
			s.pendingGenerated = generated
			s.mu.Unlock()
			s.Emit(EventDecisionRequired, conflict)
		}
		return nil, err
	}
	ref := history.ImageRef(res.Decoded.Fingerprint)
	s.mu.Lock()
	s.images[ref] = res.Decoded.Image
	s.background = ref
	if generated {
		s.generated = ref
	}
	s.imageIDs[res.Layer.Drawable.ID()] = res.Decoded.Fingerprint
	s.mu.Unlock()

	s.pushHistory(label)
	s.selectLayer(res.Layer)
	s.restoreStored(res.Layer.Drawable, res.Decoded.Fingerprint)

	s.Emit(EventCanvasResized, res.Document)
	s.Emit(EventImageLoaded, res)
	s.emitLayers()
	return res, nil
}

// AttachImage registers a reference image for the next generation.
func (s *Session) AttachImage(data []byte) (history.ImageRef, error) {
	d, err := studioimage.Decode(data)
	if err != nil {
		return "", err
	}
	ref := history.ImageRef(d.Fingerprint)
	s.mu.Lock()
	s.images[ref] = d.Image
	s.attached = ref
	s.mu.Unlock()
	return ref, nil
}

// DetachImage clears the attached reference image.
func (s *Session) DetachImage() {
	s.mu.Lock()
	s.attached = ""
	s.mu.Unlock()
}

// Image returns a registered image by reference.
func (s *Session) Image(ref history.ImageRef) (image.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.images[ref]
	return img, ok
}

// BeginGeneration records the pre-generation snapshot.
func (s *Session) BeginGeneration() {
	s.pushHistory("before generation")
}

// Clear resets the document: every layer goes, the canvas returns to its
// default size and border resize is allowed again.
func (s *Session) Clear() {
	for _, l := range s.layers.Layers() {
		s.pipeline.Forget(l.Drawable)
	}
	s.layers.Clear()
	s.importer.Reset()
	s.view.SetResizeLocked(false)
	doc := s.view.SetSize(s.cfg.Canvas.DefaultWidth, s.cfg.Canvas.DefaultHeight)

	s.mu.Lock()
	s.background, s.generated, s.attached = "", "", ""
	s.pendingGenerated = false
	s.imageIDs = make(map[string]string)
	s.presets = make(map[string]string)
	s.mu.Unlock()

	s.pushHistory("clear")
	s.Emit(EventCanvasResized, doc)
	s.Emit(EventSelectionChanged, "")
	s.emitLayers()
}

// ---- history ------------------------------------------------------------

func (s *Session) pushHistory(label string) {
	s.mu.Lock()
	e := history.Entry{
		Background: s.background,
		Generated:  s.generated,
		Attached:   s.attached,
		Zoom:       s.view.Document().Zoom,
		Timestamp:  s.now(),
		Label:      label,
	}
	s.mu.Unlock()
	s.history.Push(e)
	s.pruneImages()
	s.Emit(EventHistoryChanged, s.HistoryInfo())
}

// pruneImages forgets registered images no snapshot or live ref points at.
func (s *Session) pruneImages() {
	refs := s.history.References()
	s.mu.Lock()
	defer s.mu.Unlock()
	for ref := range s.images {
		if !refs[ref] && ref != s.background && ref != s.generated && ref != s.attached {
			delete(s.images, ref)
		}
	}
}

// HistoryInfo returns the undo stack position.
func (s *Session) HistoryInfo() HistoryInfo {
	return HistoryInfo{
		Index:   s.history.Index(),
		Len:     s.history.Len(),
		CanUndo: s.history.CanUndo(),
		CanRedo: s.history.CanRedo(),
	}
}

// History returns the retained entries, oldest first.
func (s *Session) History() []history.Entry {
	return s.history.Entries()
}

// Undo restores the previous snapshot. It returns nil at the oldest entry.
func (s *Session) Undo() (*history.Entry, error) {
	e := s.history.Undo()
	if e == nil {
		return nil, nil
	}
	return e, s.restore(*e)
}

// Redo restores the next snapshot. It returns nil at the newest entry.
func (s *Session) Redo() (*history.Entry, error) {
	e := s.history.Redo()
	if e == nil {
		return nil, nil
	}
	return e, s.restore(*e)
}

// restore brings the visual state back to e. Layers other than the
// background are left alone.
func (s *Session) restore(e history.Entry) error {
	s.mu.Lock()
	img, ok := s.images[e.Background]
	s.mu.Unlock()
	if e.Background != "" && !ok {
		return errs.Errorf("studio.restore", errs.KindNotFound, "image %s is no longer registered", e.Background)
	}

	if old, had := s.layers.Background(); had {
		s.pipeline.Forget(old.Drawable)
	}
	if e.Background == "" {
		s.layers.RemoveBackground()
		s.view.SetResizeLocked(s.hasImageLayers())
	} else {
		doc := s.view.Document()
		b := img.Bounds()
		p := importer.Fit(b.Dx(), b.Dy(), doc.Width, doc.Height)
		d := drawable.NewImage(img)
		d.SetTransform(p.Transform())
		l, err := s.layers.SetBackground(d)
		if err != nil {
			return err
		}
		s.view.SetResizeLocked(true)
		s.mu.Lock()
		s.imageIDs[d.ID()] = string(e.Background)
		s.mu.Unlock()
		s.selectLayer(l)
		s.restoreStored(d, string(e.Background))
	}

	s.mu.Lock()
	s.background, s.generated, s.attached = e.Background, e.Generated, e.Attached
	s.mu.Unlock()
	s.view.SetZoom(e.Zoom)

	s.Emit(EventHistoryChanged, s.HistoryInfo())
	s.emitLayers()
	return nil
}

// ---- layers -------------------------------------------------------------

func (s *Session) emitLayers() {
	s.Emit(EventLayersChanged, s.layers.Layers())
}

func (s *Session) selectLayer(l layer.Layer) {
	if err := s.layers.Select(l.ID); err != nil {
		return
	}
	s.pipeline.SetTarget(l.Drawable)
	s.Emit(EventSelectionChanged, l.ID)
}

// centered places a drawable in the middle of the canvas.
func (s *Session) centered(d drawable.Drawable) {
	off := geometry.CenterIn(d.Size(), s.view.Document().Size())
	d.SetTransform(geometry.Translation(off.X, off.Y))
}

// AddText adds a text layer centred on the canvas and selects it.
func (s *Session) AddText(text string, style drawable.TextStyle) (layer.Layer, error) {
	d := drawable.NewText(text, style)
	s.centered(d)
	return s.addLayer(layer.KindText, d, "")
}

// AddShape adds a shape layer centred on the canvas and selects it.
func (s *Session) AddShape(kind drawable.ShapeKind, size geometry.Size, style drawable.ShapeStyle) (layer.Layer, error) {
	if size.Empty() {
		return layer.Layer{}, errs.Errorf("studio.AddShape", errs.KindInvalid, "empty shape size")
	}
	d := drawable.NewShape(kind, size, style)
	s.centered(d)
	return s.addLayer(layer.KindShape, d, "")
}

// AddImageLayer adds a non-background image layer, fitted inside the canvas.
func (s *Session) AddImageLayer(data []byte) (layer.Layer, error) {
	dec, err := studioimage.Decode(data)
	if err != nil {
		return layer.Layer{}, err
	}
	doc := s.view.Document()
	p := importer.Fit(dec.Width(), dec.Height(), doc.Width, doc.Height)
	if p.Scale > 1 {
		// Smaller images keep their native size.
		off := geometry.CenterIn(geometry.NewSize(float64(dec.Width()), float64(dec.Height())), doc.Size())
		p = importer.Placement{Scale: 1, Left: off.X, Top: off.Y}
	}
	d := drawable.NewImage(dec.Image)
	d.SetTransform(p.Transform())
	s.mu.Lock()
	s.imageIDs[d.ID()] = dec.Fingerprint
	s.mu.Unlock()
	l, err := s.addLayer(layer.KindImage, d, "")
	if err != nil {
		return l, err
	}
	// Placement depends on the canvas size from here on.
	s.view.SetResizeLocked(true)
	s.restoreStored(d, dec.Fingerprint)
	return l, nil
}

func (s *Session) hasImageLayers() bool {
	for _, l := range s.layers.Layers() {
		if l.Kind == layer.KindImage || l.Kind == layer.KindBackground {
			return true
		}
	}
	return false
}

func (s *Session) addLayer(kind layer.Kind, d drawable.Drawable, name string) (layer.Layer, error) {
	l, err := s.layers.Add(kind, d, name)
	if err != nil {
		return layer.Layer{}, err
	}
	s.selectLayer(l)
	s.emitLayers()
	return l, nil
}

// RemoveLayer deletes a layer.
func (s *Session) RemoveLayer(id string) error {
	l, ok := s.layers.Get(id)
	if !ok {
		return errs.Errorf("studio.RemoveLayer", errs.KindNotFound, "layer %s", id)
	}
	if err := s.layers.Remove(id); err != nil {
		return err
	}
	s.pipeline.Forget(l.Drawable)
	s.mu.Lock()
	delete(s.presets, l.Drawable.ID())
	s.mu.Unlock()
	if _, selected := s.layers.Selected(); !selected {
		s.Emit(EventSelectionChanged, "")
	}
	s.emitLayers()
	return nil
}

// DuplicateLayer copies a layer, adjustments included, and selects the copy.
func (s *Session) DuplicateLayer(id string) (layer.Layer, error) {
	src, ok := s.layers.Get(id)
	if !ok {
		return layer.Layer{}, errs.Errorf("studio.DuplicateLayer", errs.KindNotFound, "layer %s", id)
	}
	dup, err := s.layers.Duplicate(id)
	if err != nil {
		return layer.Layer{}, err
	}
	s.mu.Lock()
	if imgID, ok := s.imageIDs[src.Drawable.ID()]; ok {
		s.imageIDs[dup.Drawable.ID()] = imgID
	}
	s.mu.Unlock()
	if set := s.pipeline.AppliedSet(src.Drawable); !set.IsDefault() {
		s.pipeline.ApplyTo(dup.Drawable, set, true)
	}
	s.pipeline.SetTarget(dup.Drawable)
	s.Emit(EventSelectionChanged, dup.ID)
	s.emitLayers()
	return dup, nil
}

// MoveLayer moves the layer at from to index to.
func (s *Session) MoveLayer(from, to int) error {
	if err := s.layers.Move(from, to); err != nil {
		return err
	}
	s.emitLayers()
	return nil
}

// SetLayerVisible shows or hides a layer.
func (s *Session) SetLayerVisible(id string, visible bool) error {
	return s.layerEdit(s.layers.SetVisible(id, visible))
}

// SetLayerLocked locks or unlocks a layer.
func (s *Session) SetLayerLocked(id string, locked bool) error {
	return s.layerEdit(s.layers.SetLocked(id, locked))
}

// SetLayerOpacity sets a layer's opacity percentage.
func (s *Session) SetLayerOpacity(id string, percent float64) error {
	return s.layerEdit(s.layers.SetOpacity(id, percent))
}

// RenameLayer renames a layer.
func (s *Session) RenameLayer(id, name string) error {
	return s.layerEdit(s.layers.Rename(id, name))
}

// TranslateLayer moves a layer's content.
func (s *Session) TranslateLayer(id string, dx, dy float64) error {
	return s.layerEdit(s.layers.Translate(id, dx, dy))
}

func (s *Session) layerEdit(err error) error {
	if err != nil {
		return err
	}
	s.emitLayers()
	return nil
}

// SelectLayer makes id the target of adjustments and transform tools.
func (s *Session) SelectLayer(id string) error {
	if id == "" {
		if err := s.layers.Select(""); err != nil {
			return err
		}
		s.pipeline.SetTarget(nil)
		s.Emit(EventSelectionChanged, "")
		return nil
	}
	l, ok := s.layers.Get(id)
	if !ok {
		return errs.Errorf("studio.SelectLayer", errs.KindNotFound, "layer %s", id)
	}
	s.selectLayer(l)
	return nil
}

// Selected returns the selected layer.
func (s *Session) Selected() (layer.Layer, bool) {
	return s.layers.Selected()
}

// ---- adjustments --------------------------------------------------------

// Adjust previews set on the selected layer. Slider drags pass
// immediate=false and are debounced.
func (s *Session) Adjust(set adjust.Set, immediate bool) error {
	if err := s.pipeline.Apply(set, immediate); err != nil {
		return err
	}
	if d := s.pipeline.Target(); d != nil {
		s.mu.Lock()
		delete(s.presets, d.ID())
		s.mu.Unlock()
	}
	return nil
}

// ApplyPreset applies a named preset immediately.
func (s *Session) ApplyPreset(name string) (adjust.Preset, error) {
	p, ok := adjust.PresetByName(name)
	if !ok {
		return adjust.Preset{}, errs.Errorf("studio.ApplyPreset", errs.KindNotFound, "preset %q", name)
	}
	if err := s.pipeline.Apply(p.Set, true); err != nil {
		return adjust.Preset{}, err
	}
	s.mu.Lock()
	s.presets[s.pipeline.Target().ID()] = name
	s.mu.Unlock()
	return p, nil
}

// ResetAdjustments removes every adjustment from the selected layer.
func (s *Session) ResetAdjustments() error {
	return s.pipeline.Reset()
}

// Adjustments returns the selected layer's current set.
func (s *Session) Adjustments() adjust.Set {
	return s.pipeline.Current()
}

// Processing reports whether an adjustment is being rendered.
func (s *Session) Processing() bool {
	return s.pipeline.Processing()
}

// CommitAdjustments records the selected layer's set and schedules a
// debounced save. The all-default set removes the stored record.
func (s *Session) CommitAdjustments() error {
	d := s.pipeline.Target()
	if d == nil {
		return errs.Errorf("studio.CommitAdjustments", errs.KindState, "no layer selected")
	}
	s.pipeline.Flush()
	set := s.pipeline.Current()
	id := s.imageID(d)

	s.mu.Lock()
	if s.stored == nil {
		s.stored = store.ByImage{}
	}
	if set.IsDefault() {
		delete(s.stored, id)
	} else {
		s.stored[id] = store.StoredAdjustment{
			ImageID:     id,
			Adjustments: set,
			AppliedAt:   s.now(),
			PresetUsed:  s.presets[d.ID()],
		}
	}
	s.mu.Unlock()

	s.saver.Schedule(s.StoredAdjustments)
	return nil
}

// Save writes a pending commit now.
func (s *Session) Save(ctx context.Context) error {
	return s.saver.Flush(ctx)
}

// StoredAdjustments returns a copy of the committed adjustments.
func (s *Session) StoredAdjustments() store.ByImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stored == nil {
		return store.ByImage{}
	}
	return s.stored.Clone()
}

// imageID derives the stored identity of d: the fingerprint of the image it
// was created from, or of its pixels.
func (s *Session) imageID(d drawable.Drawable) string {
	s.mu.Lock()
	id, ok := s.imageIDs[d.ID()]
	s.mu.Unlock()
	if ok {
		return id
	}
	id = studioimage.Fingerprint(d.PixelSource())
	s.mu.Lock()
	s.imageIDs[d.ID()] = id
	s.mu.Unlock()
	return id
}

// restoreStored re-applies a committed set when an image with a stored
// record is placed.
func (s *Session) restoreStored(d drawable.Drawable, imageID string) {
	s.mu.Lock()
	rec, ok := s.stored[imageID]
	if ok && rec.PresetUsed != "" {
		s.presets[d.ID()] = rec.PresetUsed
	}
	s.mu.Unlock()
	if ok {
		s.pipeline.ApplyTo(d, rec.Adjustments, true)
	}
}

// ---- viewport -----------------------------------------------------------

// SetZoom sets the zoom percentage.
func (s *Session) SetZoom(percent float64) float64 { return s.view.SetZoom(percent) }

// ZoomIn steps the zoom up.
func (s *Session) ZoomIn() float64 { return s.view.ZoomIn() }

// ZoomOut steps the zoom down.
func (s *Session) ZoomOut() float64 { return s.view.ZoomOut() }

// Pan moves the document on screen.
func (s *Session) Pan(dx, dy float64) { s.view.Pan(dx, dy) }

// FitToViewport zooms so the document fits its container.
func (s *Session) FitToViewport() float64 { return s.view.FitToViewport() }

// Document returns the document geometry.
func (s *Session) Document() viewport.Document { return s.view.Document() }

// BeginResize starts a border-resize gesture. Adjustment previews are held
// until it ends.
func (s *Session) BeginResize(h viewport.Handle, p geometry.Point2D) error {
	if err := s.view.BeginResize(h, p); err != nil {
		return err
	}
	s.pipeline.Suspend()
	return nil
}

// UpdateResize tracks the pointer during a gesture.
func (s *Session) UpdateResize(p geometry.Point2D) (geometry.Size, error) {
	return s.view.UpdateResize(p)
}

// EndResize commits the gesture and releases held previews.
func (s *Session) EndResize() (viewport.Document, error) {
	doc, err := s.view.EndResize()
	s.pipeline.Resume()
	if err != nil {
		return doc, err
	}
	s.Emit(EventCanvasResized, doc)
	return doc, nil
}

// CancelResize abandons a gesture.
func (s *Session) CancelResize() {
	s.view.CancelResize()
	s.pipeline.Resume()
}

// ResizeCanvas applies an explicit resize request and re-fits the
// background.
func (s *Session) ResizeCanvas(req viewport.Request) (viewport.Document, error) {
	res, err := s.importer.Refit(req)
	if err != nil {
		return viewport.Document{}, err
	}
	s.Emit(EventCanvasResized, res.Document)
	return res.Document, nil
}

// ImportState returns the importer's decision state.
func (s *Session) ImportState() importer.State {
	return s.importer.State()
}
