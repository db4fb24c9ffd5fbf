package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"
	"time"

	"image-studio/internal/errs"
	studioimage "image-studio/internal/image"
	"image-studio/internal/layer"
	"image-studio/internal/viewport"
	"image-studio/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(opts ...Option) (*Engine, *viewport.Controller, *layer.Model) {
	view := viewport.New(viewport.DefaultLimits(), 800, 600)
	layers := layer.New()
	return New(DefaultPolicy(), view, layers, opts...), view, layers
}

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAutoFit(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		w, h, cw, ch int
	}{
		{4000, 2000, 1200, 600},
		{2000, 4000, 600, 1200},
		{800, 600, 800, 600},
		{1200, 1200, 1200, 1200},
		{200, 100, 600, 300},
		{50, 50, 600, 600},
		{4000, 50, 1200, 100},
		{299, 10, 600, 100},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dx%d", tt.w, tt.h), func(t *testing.T) {
			cw, ch := p.AutoFit(tt.w, tt.h)
			assert.Equal(t, tt.cw, cw)
			assert.Equal(t, tt.ch, ch)
		})
	}
}

func TestFitNeverCropsAndFillsOneSide(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := DefaultPolicy()
	for i := 0; i < 500; i++ {
		iw, ih := 1+rng.Intn(6000), 1+rng.Intn(6000)
		if iw == ih {
			continue
		}
		cw, ch := p.AutoFit(iw, ih)
		pl := Fit(iw, ih, cw, ch)
		sw, sh := float64(iw)*pl.Scale, float64(ih)*pl.Scale
		require.LessOrEqual(t, sw, float64(cw)+1e-9)
		require.LessOrEqual(t, sh, float64(ch)+1e-9)
		tight := float64(cw)-sw <= 1 || float64(ch)-sh <= 1
		require.True(t, tight, "%dx%d in %dx%d scaled to %.2fx%.2f", iw, ih, cw, ch, sw, sh)
		assert.InDelta(t, (float64(cw)-sw)/2, pl.Left, 1e-9)
		assert.InDelta(t, (float64(ch)-sh)/2, pl.Top, 1e-9)
	}
}

func TestFirstImportAutoFits(t *testing.T) {
	e, view, layers := newEngine()
	res, err := e.Import(context.Background(), pngBytes(t, 200, 100, color.NRGBA{255, 0, 0, 255}))
	require.NoError(t, err)

	assert.Equal(t, 600, res.Document.Width, "small images open at the comfortable size")
	assert.Equal(t, 300, res.Document.Height)
	assert.Equal(t, layer.KindBackground, res.Layer.Kind)
	assert.True(t, res.Layer.Visible)
	assert.False(t, res.Layer.Locked)
	assert.False(t, res.Replaced)
	assert.Equal(t, 3.0, res.Placement.Scale)
	assert.True(t, view.ResizeLocked())
	assert.Equal(t, 1, layers.Len())
	assert.Equal(t, res.Decoded.Fingerprint, e.LastLoaded())
	assert.Equal(t, StateIdle, e.State())
}

func TestLargeImageClampsToWorkingSize(t *testing.T) {
	e, _, layers := newEngine()
	res, err := e.ImportBitmap(context.Background(), image.NewNRGBA(image.Rect(0, 0, 4000, 2000)))
	require.NoError(t, err)
	assert.Equal(t, 1200, res.Document.Width)
	assert.Equal(t, 600, res.Document.Height)
	assert.Equal(t, 0.3, res.Placement.Scale)

	bg, ok := layers.Background()
	require.True(t, ok)
	assert.Equal(t, geometry.NewRect(0, 0, 1200, 600), bg.Drawable.BoundingBox())
}

func TestConflictDiscardLeavesEverythingAlone(t *testing.T) {
	e, view, layers := newEngine()
	first, err := e.Import(context.Background(), pngBytes(t, 400, 200, color.NRGBA{A: 255}))
	require.NoError(t, err)
	docBefore := view.Document()
	bgBefore, _ := layers.Background()

	_, err = e.Import(context.Background(), pngBytes(t, 300, 300, color.NRGBA{G: 255, A: 255}))
	require.True(t, errs.Is(err, errs.KindDimensionConflict))
	var conflict *Conflict
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, 300, conflict.ImageWidth)
	assert.Equal(t, 400, conflict.CanvasWidth)
	assert.Equal(t, StateAwaitingDecision, e.State())

	_, err = e.Import(context.Background(), pngBytes(t, 10, 10, color.NRGBA{A: 255}))
	assert.True(t, errs.Is(err, errs.KindState), "no new import while a decision is pending")

	res, err := e.Resolve(DecisionDiscard)
	require.NoError(t, err)
	require.NotNil(t, res.Decision)
	assert.Equal(t, DecisionDiscard, *res.Decision)

	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, docBefore, view.Document())
	bgAfter, _ := layers.Background()
	assert.Same(t, bgBefore.Drawable, bgAfter.Drawable)
	assert.Equal(t, first.Decoded.Fingerprint, e.LastLoaded())
	_, pending := e.Pending()
	assert.False(t, pending)
}

func TestResolveResizeCanvas(t *testing.T) {
	e, view, layers := newEngine()
	_, err := e.Import(context.Background(), pngBytes(t, 400, 200, color.NRGBA{A: 255}))
	require.NoError(t, err)
	_, err = e.Import(context.Background(), pngBytes(t, 300, 300, color.NRGBA{A: 255}))
	require.Error(t, err)

	res, err := e.Resolve(DecisionResizeCanvas)
	require.NoError(t, err)
	assert.True(t, res.Replaced)
	assert.Equal(t, 300, view.Document().Width)
	assert.Equal(t, 300, view.Document().Height)
	assert.Equal(t, 1.0, res.Placement.Scale)
	assert.Equal(t, 1, layers.Len(), "background replaced, not added")
}

func TestResolveResizeAndRescale(t *testing.T) {
	e, view, layers := newEngine()
	_, err := e.Import(context.Background(), pngBytes(t, 400, 200, color.NRGBA{A: 255}))
	require.NoError(t, err)
	_, err = e.ImportBitmap(context.Background(), image.NewNRGBA(image.Rect(0, 0, 3000, 1500)))
	require.Error(t, err)

	res, err := e.Resolve(DecisionResizeAndRescale)
	require.NoError(t, err)
	assert.Equal(t, 1200, view.Document().Width)
	assert.Equal(t, 600, view.Document().Height)
	bg, _ := layers.Background()
	assert.Equal(t, geometry.NewSize(1200, 600), bg.Drawable.Size(), "pixels resampled to the canvas")
	assert.Equal(t, 1.0, res.Placement.Scale)
}

func TestResolveWithoutPending(t *testing.T) {
	e, _, _ := newEngine()
	_, err := e.Resolve(DecisionResizeCanvas)
	assert.True(t, errs.Is(err, errs.KindState))
}

func TestSameSizeReplacesWithoutDecision(t *testing.T) {
	e, _, _ := newEngine()
	first, err := e.Import(context.Background(), pngBytes(t, 600, 300, color.NRGBA{A: 255}))
	require.NoError(t, err)
	second, err := e.Import(context.Background(), pngBytes(t, 600, 300, color.NRGBA{B: 255, A: 255}))
	require.NoError(t, err)
	assert.True(t, second.Replaced)
	assert.Equal(t, first.Layer.ID, second.Layer.ID)
}

func TestDecodeFailureLeavesStateUntouched(t *testing.T) {
	e, view, layers := newEngine()
	docBefore := view.Document()
	_, err := e.Import(context.Background(), []byte("definitely not an image"))
	require.True(t, errs.Is(err, errs.KindDecode))
	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, 0, layers.Len())
	assert.Equal(t, docBefore, view.Document())
	assert.False(t, view.ResizeLocked())

	_, err = e.Import(context.Background(), []byte("definitely not an image"))
	assert.True(t, errs.Is(err, errs.KindDecode), "failed source is not stuck in flight")
}

func TestImportRejectedDuringResizeGesture(t *testing.T) {
	e, view, _ := newEngine()
	require.NoError(t, view.BeginResize(viewport.HandleE, geometry.Pt(0, 0)))
	_, err := e.Import(context.Background(), pngBytes(t, 10, 10, color.NRGBA{A: 255}))
	assert.True(t, errs.Is(err, errs.KindState))
	view.CancelResize()
}

func TestInFlightGuard(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	decoder := func(data []byte) (*studioimage.Decoded, error) {
		img := image.NewNRGBA(image.Rect(0, 0, 200, 100))
		if string(data) == "slow" {
			started <- struct{}{}
			<-release
		}
		return &studioimage.Decoded{Image: img, SourceID: string(data), Fingerprint: "fp-" + string(data)}, nil
	}
	e, _, layers := newEngine(WithDecoder(decoder))

	done := make(chan error, 1)
	go func() {
		_, err := e.Import(context.Background(), []byte("slow"))
		done <- err
	}()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("decoder never started")
	}

	_, err := e.Import(context.Background(), []byte("slow"))
	assert.ErrorIs(t, err, ErrImportInFlight)
	assert.Equal(t, 0, layers.Len(), "resubmission changes nothing")

	res, err := e.Import(context.Background(), []byte("fast"))
	require.NoError(t, err)
	assert.Equal(t, "fp-fast", res.Decoded.Fingerprint)

	close(release)
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("slow import never returned")
	}
	assert.Equal(t, "fp-fast", e.LastLoaded())
}

func TestCancelledContext(t *testing.T) {
	e, _, layers := newEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Import(ctx, pngBytes(t, 10, 10, color.NRGBA{A: 255}))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, layers.Len())
}

func TestRefit(t *testing.T) {
	e, view, layers := newEngine()
	_, err := e.Import(context.Background(), pngBytes(t, 400, 200, color.NRGBA{A: 255}))
	require.NoError(t, err)

	res, err := e.Refit(viewport.Request{Width: 800, Height: 800})
	require.NoError(t, err)
	assert.Equal(t, 800, view.Document().Width)
	assert.Equal(t, 2.0, res.Placement.Scale)
	assert.Equal(t, 200.0, res.Placement.Top)
	bg, _ := layers.Background()
	assert.Equal(t, geometry.NewRect(0, 200, 800, 400), bg.Drawable.BoundingBox())

	_, err = e.Refit(viewport.Request{Width: 0, Height: 10})
	assert.True(t, errs.Is(err, errs.KindInvalid))

	res, err = e.Refit(viewport.Request{Width: 50, Height: 50})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Document.Width, "clamped to the minimum")
}

func TestDecisionParse(t *testing.T) {
	for _, d := range []Decision{DecisionResizeCanvas, DecisionResizeAndRescale, DecisionDiscard} {
		got, err := ParseDecision(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	_, err := ParseDecision("maybe")
	assert.Error(t, err)
}
