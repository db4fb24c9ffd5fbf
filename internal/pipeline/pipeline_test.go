package pipeline

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"image-studio/internal/adjust"
	"image-studio/internal/drawable"
	"image-studio/internal/effect"
	"image-studio/internal/errs"
	"image-studio/internal/filter"
	"image-studio/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSurface struct{ refreshes atomic.Int32 }

func (s *countingSurface) Refresh() { s.refreshes.Add(1) }

type filterSurface struct {
	countingSurface
	mu      sync.Mutex
	fail    error
	filters map[string]effect.Chain
	cleared int
}

func newFilterSurface() *filterSurface {
	return &filterSurface{filters: make(map[string]effect.Chain)}
}

func (s *filterSurface) SetFilter(d drawable.Drawable, chain effect.Chain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.filters[d.ID()] = chain
	return nil
}

func (s *filterSurface) ClearFilter(d drawable.Drawable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.filters[d.ID()]; ok {
		s.cleared++
	}
	delete(s.filters, d.ID())
}

// bare hides every optional capability of the wrapped drawable.
type bare struct{ drawable.Drawable }

type warnings struct {
	mu   sync.Mutex
	errs []error
}

func (w *warnings) Warn(err error) {
	w.mu.Lock()
	w.errs = append(w.errs, err)
	w.mu.Unlock()
}

func (w *warnings) all() []error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]error(nil), w.errs...)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 255 / w), uint8(y * 255 / h), 90, 255})
		}
	}
	return img
}

func brightContrast() adjust.Set {
	s := adjust.Defaults()
	s.Brightness, s.Contrast = 20, 15
	return s
}

func newPipeline(surface Surface, opts ...Option) *Pipeline {
	base := []Option{WithDebounce(20 * time.Millisecond), WithFrames(ImmediateFrames{}, 2)}
	return New(surface, append(base, opts...)...)
}

func TestApplyWithoutTarget(t *testing.T) {
	p := newPipeline(nil)
	assert.True(t, errs.Is(p.Apply(brightContrast(), true), errs.KindState))
	assert.True(t, errs.Is(p.Reset(), errs.KindState))
	assert.Equal(t, adjust.Defaults(), p.Current())
}

func TestImmediateAppliesSynchronously(t *testing.T) {
	p := newPipeline(nil)
	d := drawable.NewImage(gradient(8, 8))
	p.SetTarget(d)

	var got []Applied
	p.OnApplied(func(a Applied) { got = append(got, a) })
	require.NoError(t, p.Apply(brightContrast(), true))

	require.Len(t, got, 1)
	assert.Equal(t, "element", got[0].Strategy)
	assert.False(t, got[0].NoOp)
	assert.Equal(t, brightContrast(), p.Current())
	assert.Equal(t, brightContrast(), p.AppliedSet(d))
	assert.Equal(t, adjust.Compile(brightContrast()), d.Effect())
}

func TestDebounceCoalescesBurst(t *testing.T) {
	p := newPipeline(nil)
	d := drawable.NewImage(gradient(8, 8))
	p.SetTarget(d)

	var count atomic.Int32
	p.OnApplied(func(Applied) { count.Add(1) })

	var last adjust.Set
	for i := 1; i <= 10; i++ {
		last = adjust.Defaults()
		last.Brightness = float64(i)
		require.NoError(t, p.Apply(last, false))
	}
	assert.Equal(t, last, p.Current(), "current reflects the latest submission immediately")
	assert.True(t, p.Pending(d))

	assert.Eventually(t, func() bool { return p.AppliedSet(d) == last }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), count.Load())
	assert.False(t, p.Processing())
}

func TestImmediateCancelsPendingForSameDrawable(t *testing.T) {
	p := newPipeline(nil)
	d := drawable.NewImage(gradient(4, 4))
	p.SetTarget(d)

	slow := adjust.Defaults()
	slow.Sepia = 50
	require.NoError(t, p.Apply(slow, false))
	require.NoError(t, p.Apply(brightContrast(), true))
	assert.False(t, p.Pending(d))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, brightContrast(), p.AppliedSet(d))
}

func TestDrawablesAreIndependent(t *testing.T) {
	p := newPipeline(nil)
	a := drawable.NewImage(gradient(4, 4))
	b := drawable.NewImage(gradient(4, 4))
	sa, sb := adjust.Defaults(), adjust.Defaults()
	sa.Hue, sb.Grayscale = 90, 100

	p.ApplyTo(a, sa, false)
	p.ApplyTo(b, sb, false)
	assert.Eventually(t, func() bool {
		return p.AppliedSet(a) == sa && p.AppliedSet(b) == sb
	}, time.Second, 5*time.Millisecond)
}

func TestResetRestoresBitIdenticalPixels(t *testing.T) {
	for _, d := range []drawable.Drawable{
		drawable.NewImage(gradient(16, 16)),
		drawable.NewShape(drawable.ShapeEllipse, geometry.NewSize(16, 16), drawable.ShapeStyle{Fill: color.NRGBA{200, 40, 40, 255}}),
	} {
		p := newPipeline(nil)
		p.SetTarget(d)
		before := append([]uint8(nil), d.Display().(*image.NRGBA).Pix...)

		s := brightContrast()
		s.Opacity, s.Sepia, s.Invert = 40, 30, true
		require.NoError(t, p.Apply(s, true))
		assert.NotEqual(t, before, d.Display().(*image.NRGBA).Pix)

		require.NoError(t, p.Reset())
		assert.Equal(t, before, d.Display().(*image.NRGBA).Pix)
		assert.Same(t, d.PixelSource(), d.Display())
		assert.Equal(t, adjust.Defaults(), p.Current())
	}
}

func TestBackToDefaultsIsNoOp(t *testing.T) {
	p := newPipeline(nil)
	d := drawable.NewImage(gradient(8, 8))
	p.SetTarget(d)

	var last Applied
	p.OnApplied(func(a Applied) { last = a })
	require.NoError(t, p.Apply(brightContrast(), true))
	s := brightContrast()
	s.Brightness, s.Contrast = 0, 0
	require.NoError(t, p.Apply(s, true))

	assert.True(t, last.NoOp)
	assert.Empty(t, last.Chain)
	assert.False(t, d.HasPreview())
	assert.Same(t, d.PixelSource(), d.Display())
}

func TestFallbackOrder(t *testing.T) {
	t.Run("surface first", func(t *testing.T) {
		fs := newFilterSurface()
		p := newPipeline(fs)
		d := drawable.NewImage(gradient(4, 4))
		var got Applied
		p.OnApplied(func(a Applied) { got = a })
		p.ApplyTo(d, brightContrast(), true)
		assert.Equal(t, "surface", got.Strategy)
		assert.False(t, d.HasPreview(), "surface filters leave drawables alone")
		assert.Contains(t, fs.filters, d.ID())
	})
	t.Run("surface failure falls to element", func(t *testing.T) {
		fs := newFilterSurface()
		fs.fail = errors.New("no filter support")
		p := newPipeline(fs)
		d := drawable.NewImage(gradient(4, 4))
		var got Applied
		p.OnApplied(func(a Applied) { got = a })
		p.ApplyTo(d, brightContrast(), true)
		assert.Equal(t, "element", got.Strategy)
	})
	t.Run("offscreen for preview-only drawables", func(t *testing.T) {
		p := newPipeline(nil)
		d := drawable.NewText("hi", drawable.DefaultTextStyle())
		var got Applied
		p.OnApplied(func(a Applied) { got = a })
		p.ApplyTo(d, brightContrast(), true)
		assert.Equal(t, "offscreen", got.Strategy)
		assert.True(t, d.HasPreview())
	})
	t.Run("nothing works warns but never fails", func(t *testing.T) {
		w := &warnings{}
		p := newPipeline(nil, WithWarnings(w))
		d := bare{drawable.NewText("hi", drawable.DefaultTextStyle())}
		p.SetTarget(d)
		var got Applied
		p.OnApplied(func(a Applied) { got = a })
		require.NoError(t, p.Apply(brightContrast(), true))
		assert.Empty(t, got.Strategy)
		require.Len(t, w.all(), 1)
		assert.True(t, errs.Is(w.all()[0], errs.KindFilterUnsupported))
	})
}

func TestStrategySwitchClearsPrevious(t *testing.T) {
	fs := newFilterSurface()
	p := newPipeline(fs)
	d := drawable.NewImage(gradient(4, 4))
	p.ApplyTo(d, brightContrast(), true)
	require.Contains(t, fs.filters, d.ID())

	fs.mu.Lock()
	fs.fail = errors.New("lost context")
	fs.mu.Unlock()
	s := brightContrast()
	s.Sepia = 40
	p.ApplyTo(d, s, true)
	assert.NotContains(t, fs.filters, d.ID())
	assert.Equal(t, 1, fs.cleared)
	assert.True(t, d.HasPreview())
}

func TestRenderConfirmationPasses(t *testing.T) {
	surface := &countingSurface{}
	p := newPipeline(surface)
	p.ApplyTo(drawable.NewImage(gradient(4, 4)), brightContrast(), true)
	assert.Equal(t, int32(3), surface.refreshes.Load(), "one render plus two confirmation frames")

	surface2 := &countingSurface{}
	p2 := New(surface2, WithFrames(TimerFrames{Interval: time.Millisecond}, 2))
	p2.ApplyTo(drawable.NewImage(gradient(4, 4)), brightContrast(), true)
	assert.Eventually(t, func() bool { return surface2.refreshes.Load() == 3 }, time.Second, time.Millisecond)
}

func TestProcessingFlagOnlyWhileExecuting(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	slow := filter.RendererFunc(func(src image.Image, chain effect.Chain) (*image.NRGBA, error) {
		entered <- struct{}{}
		<-release
		return filter.Render(src, chain)
	})
	p := newPipeline(nil, WithStrategies(OffscreenStrategy(slow)))
	d := drawable.NewText("x", drawable.DefaultTextStyle())
	assert.False(t, p.Processing())

	done := make(chan struct{})
	go func() {
		p.ApplyTo(d, brightContrast(), true)
		close(done)
	}()
	<-entered
	assert.True(t, p.Processing())
	close(release)
	<-done
	assert.False(t, p.Processing())
}

func TestProcessingNotifiesStartAndFinish(t *testing.T) {
	release := make(chan struct{})
	slow := filter.RendererFunc(func(src image.Image, chain effect.Chain) (*image.NRGBA, error) {
		<-release
		return filter.Render(src, chain)
	})
	p := newPipeline(nil, WithStrategies(OffscreenStrategy(slow)))
	var mu sync.Mutex
	var seen []bool
	started := make(chan struct{}, 1)
	p.OnProcessing(func(on bool) {
		mu.Lock()
		seen = append(seen, on)
		mu.Unlock()
		if on {
			started <- struct{}{}
		}
	})

	done := make(chan struct{})
	go func() {
		p.ApplyTo(drawable.NewText("x", drawable.DefaultTextStyle()), brightContrast(), false)
		close(done)
	}()
	<-started
	assert.True(t, p.Processing())
	close(release)
	<-done
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, time.Second, time.Millisecond)
	mu.Lock()
	assert.Equal(t, []bool{true, false}, seen)
	mu.Unlock()
	assert.False(t, p.Processing())
}

func TestBusyDrawableIsRetried(t *testing.T) {
	p := newPipeline(nil)
	d := drawable.NewImage(gradient(4, 4))
	require.True(t, d.TryAcquire())

	p.ApplyTo(d, brightContrast(), true)
	assert.Equal(t, adjust.Defaults(), p.AppliedSet(d), "busy drawable is not touched")
	assert.True(t, p.Pending(d))

	d.Release()
	assert.Eventually(t, func() bool { return p.AppliedSet(d) == brightContrast() }, time.Second, 5*time.Millisecond)
}

func TestSuspendHoldsUntilResume(t *testing.T) {
	p := newPipeline(nil)
	d := drawable.NewImage(gradient(4, 4))
	p.Suspend()
	p.ApplyTo(d, brightContrast(), true)
	assert.Equal(t, adjust.Defaults(), p.AppliedSet(d))

	p.Resume()
	assert.Equal(t, brightContrast(), p.AppliedSet(d))
}

func TestForget(t *testing.T) {
	p := newPipeline(nil)
	d := drawable.NewImage(gradient(4, 4))
	p.SetTarget(d)
	require.NoError(t, p.Apply(brightContrast(), false))
	p.Forget(d)
	assert.False(t, p.Pending(d))
	assert.Nil(t, p.Target())
}
