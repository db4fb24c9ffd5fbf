// Package pipeline previews adjustment sets on drawables. Applications are
// debounced per drawable, non-destructive, and fall back through an ordered
// list of strategies until one can show the effect.
package pipeline

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"image-studio/internal/adjust"
	"image-studio/internal/debounce"
	"image-studio/internal/drawable"
	"image-studio/internal/effect"
	"image-studio/internal/errs"
	"image-studio/internal/filter"
)

// Applied reports one completed application.
type Applied struct {
	DrawableID string
	Set        adjust.Set
	Chain      effect.Chain
	// Strategy names the strategy that showed the chain; empty when the
	// chain was a no-op or nothing could show it.
	Strategy string
	NoOp     bool
}

type slot struct {
	d        drawable.Drawable
	latest   adjust.Set
	applied  adjust.Set
	strategy int // index into strategies, -1 when nothing is shown
}

// Pipeline owns the per-drawable adjustment state.
type Pipeline struct {
	mu         sync.Mutex
	slots      map[string]*slot
	target     drawable.Drawable
	suspended  bool
	held       map[string]bool
	listeners  []func(Applied)
	activity   []func(bool)
	strategies []Strategy

	debouncer     *debounce.Debouncer
	surface       Surface
	frames        FrameScheduler
	confirmPasses int
	running       atomic.Int32

	warn   errs.Handler
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDebounce sets the coalescing window for non-immediate applications.
func WithDebounce(d time.Duration) Option {
	return func(p *Pipeline) { p.debouncer = debounce.New(d) }
}

// WithFrames sets the frame scheduler and how many extra frames re-render
// after an application.
func WithFrames(f FrameScheduler, passes int) Option {
	return func(p *Pipeline) {
		p.frames = f
		p.confirmPasses = max(0, passes)
	}
}

// WithStrategies replaces the fallback order.
func WithStrategies(s ...Strategy) Option {
	return func(p *Pipeline) { p.strategies = s }
}

// WithRenderer replaces the renderer used by the offscreen strategy.
func WithRenderer(r filter.Renderer) Option {
	return func(p *Pipeline) {
		p.strategies = []Strategy{SurfaceStrategy(p.surface), ElementStrategy(), OffscreenStrategy(r)}
	}
}

// WithWarnings routes FilterUnsupported and other recovered conditions.
func WithWarnings(h errs.Handler) Option {
	return func(p *Pipeline) {
		if h != nil {
			p.warn = h
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a pipeline painting onto surface.
func New(surface Surface, opts ...Option) *Pipeline {
	if surface == nil {
		surface = nopSurface{}
	}
	p := &Pipeline{
		slots:         make(map[string]*slot),
		held:          make(map[string]bool),
		debouncer:     debounce.New(16 * time.Millisecond),
		surface:       surface,
		frames:        TimerFrames{Interval: 16 * time.Millisecond},
		confirmPasses: 2,
		warn:          errs.Discard,
		logger:        slog.Default(),
	}
	p.strategies = []Strategy{SurfaceStrategy(surface), ElementStrategy(), OffscreenStrategy(filter.Default)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type nopSurface struct{}

func (nopSurface) Refresh() {}

// OnApplied registers fn to run after every application.
func (p *Pipeline) OnApplied(fn func(Applied)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

// OnProcessing registers fn to run when the pipeline starts executing an
// application (true) and when the last one in progress finishes (false).
func (p *Pipeline) OnProcessing(fn func(bool)) {
	p.mu.Lock()
	p.activity = append(p.activity, fn)
	p.mu.Unlock()
}

func (p *Pipeline) notifyProcessing(on bool) {
	p.mu.Lock()
	fns := p.activity
	p.mu.Unlock()
	for _, fn := range fns {
		fn(on)
	}
}

// SetTarget makes d the drawable Apply, Reset and Current act on.
func (p *Pipeline) SetTarget(d drawable.Drawable) {
	p.mu.Lock()
	p.target = d
	p.mu.Unlock()
}

// Target returns the current target.
func (p *Pipeline) Target() drawable.Drawable {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

func (p *Pipeline) slotLocked(d drawable.Drawable) *slot {
	s, ok := p.slots[d.ID()]
	if !ok {
		s = &slot{d: d, latest: adjust.Defaults(), applied: adjust.Defaults(), strategy: -1}
		p.slots[d.ID()] = s
	}
	return s
}

// Apply previews set on the target drawable.
func (p *Pipeline) Apply(set adjust.Set, immediate bool) error {
	d := p.Target()
	if d == nil {
		return errs.Errorf("pipeline.Apply", errs.KindState, "no layer selected")
	}
	p.ApplyTo(d, set, immediate)
	return nil
}

// ApplyTo previews set on d. Without immediate, bursts for the same
// drawable collapse into one application after the debounce window; other
// drawables are unaffected. Immediate cancels any pending application for d
// and runs now.
func (p *Pipeline) ApplyTo(d drawable.Drawable, set adjust.Set, immediate bool) {
	p.mu.Lock()
	p.slotLocked(d).latest = set.Clamp()
	p.mu.Unlock()

	key := d.ID()
	if immediate {
		p.debouncer.Cancel(key)
		p.run(key)
		return
	}
	p.debouncer.Trigger(key, func() { p.run(key) })
}

// Reset removes every effect from the target and restores the defaults.
func (p *Pipeline) Reset() error {
	d := p.Target()
	if d == nil {
		return errs.Errorf("pipeline.Reset", errs.KindState, "no layer selected")
	}
	p.ResetDrawable(d)
	return nil
}

// ResetDrawable removes every effect from d immediately.
func (p *Pipeline) ResetDrawable(d drawable.Drawable) {
	p.ApplyTo(d, adjust.Defaults(), true)
}

// Current returns the most recently submitted set for the target.
func (p *Pipeline) Current() adjust.Set {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.target == nil {
		return adjust.Defaults()
	}
	if s, ok := p.slots[p.target.ID()]; ok {
		return s.latest
	}
	return adjust.Defaults()
}

// AppliedSet returns the set currently shown on d.
func (p *Pipeline) AppliedSet(d drawable.Drawable) adjust.Set {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.slots[d.ID()]; ok {
		return s.applied
	}
	return adjust.Defaults()
}

// Processing reports whether an application is executing right now.
func (p *Pipeline) Processing() bool {
	return p.running.Load() > 0
}

// Pending reports whether a debounced application is waiting for d.
func (p *Pipeline) Pending(d drawable.Drawable) bool {
	return p.debouncer.Pending(d.ID())
}

// Flush runs every pending application now.
func (p *Pipeline) Flush() {
	p.debouncer.FlushAll()
}

// Suspend holds applications until Resume, e.g. during a canvas resize
// gesture.
func (p *Pipeline) Suspend() {
	p.mu.Lock()
	p.suspended = true
	p.mu.Unlock()
}

// Resume runs everything held while suspended.
func (p *Pipeline) Resume() {
	p.mu.Lock()
	p.suspended = false
	keys := make([]string, 0, len(p.held))
	for k := range p.held {
		keys = append(keys, k)
	}
	p.held = make(map[string]bool)
	p.mu.Unlock()
	for _, k := range keys {
		p.run(k)
	}
}

// Forget drops the state kept for d, e.g. after its layer was removed.
func (p *Pipeline) Forget(d drawable.Drawable) {
	p.debouncer.Cancel(d.ID())
	p.mu.Lock()
	delete(p.slots, d.ID())
	delete(p.held, d.ID())
	if p.target != nil && p.target.ID() == d.ID() {
		p.target = nil
	}
	p.mu.Unlock()
}

// Close cancels everything pending.
func (p *Pipeline) Close() {
	p.debouncer.CancelAll()
}

func (p *Pipeline) run(key string) {
	p.mu.Lock()
	s, ok := p.slots[key]
	if !ok {
		p.mu.Unlock()
		return
	}
	if p.suspended {
		p.held[key] = true
		p.mu.Unlock()
		return
	}
	d := s.d
	p.mu.Unlock()

	if !d.TryAcquire() {
		// Another mutation holds the drawable; retry after the window.
		p.debouncer.Trigger(key, func() { p.run(key) })
		return
	}
	if p.running.Add(1) == 1 {
		p.notifyProcessing(true)
	}
	applied := p.applyLocked(s)
	d.Release()
	if p.running.Add(-1) == 0 {
		p.notifyProcessing(false)
	}

	p.confirm()

	p.mu.Lock()
	listeners := p.listeners
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(applied)
	}
}

// applyLocked runs with the drawable held busy.
func (p *Pipeline) applyLocked(s *slot) Applied {
	p.mu.Lock()
	set, prev := s.latest, s.strategy
	p.mu.Unlock()

	chain := adjust.Compile(set)
	out := Applied{DrawableID: s.d.ID(), Set: set, Chain: chain, NoOp: chain.IsIdentity()}
	winner := -1

	if out.NoOp {
		for _, st := range p.strategies {
			st.Clear(s.d)
		}
	} else {
		var failures []error
		for i, st := range p.strategies {
			err := st.Apply(s.d, chain)
			if err == nil {
				winner = i
				break
			}
			if !errors.Is(err, ErrNotSupported) {
				failures = append(failures, err)
				p.logger.Debug("filter strategy failed", "strategy", st.Name(), "drawable", s.d.ID(), "error", err)
			}
		}
		if prev >= 0 && prev != winner && prev < len(p.strategies) {
			p.strategies[prev].Clear(s.d)
		}
		if winner < 0 {
			p.warn.Warn(errs.E("pipeline.Apply", errs.KindFilterUnsupported,
				errors.Join(append(failures, errors.New("no strategy could show "+chain.String()))...)))
		} else {
			out.Strategy = p.strategies[winner].Name()
		}
	}

	p.mu.Lock()
	s.strategy = winner
	s.applied = set
	p.mu.Unlock()
	p.logger.Debug("adjustments applied", "drawable", out.DrawableID, "strategy", out.Strategy, "chain", chain.String())
	return out
}

// confirm repaints now and again on the following frames.
func (p *Pipeline) confirm() {
	p.surface.Refresh()
	var next func(left int)
	next = func(left int) {
		if left == 0 {
			return
		}
		p.frames.NextFrame(func() {
			p.surface.Refresh()
			next(left - 1)
		})
	}
	next(p.confirmPasses)
}
