package canvas

import (
	"math"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-studio/internal/config"
	"image-studio/internal/pipeline"
	"image-studio/internal/store"
	"image-studio/internal/studio"
)

func newCanvas(t *testing.T) (*StudioCanvas, *studio.Session) {
	t.Helper()
	test.NewApp()
	s, err := studio.New(studio.Options{
		Config: config.Default(),
		Store:  store.NewMemory(),
		Frames: pipeline.ImmediateFrames{},
	})
	require.NoError(t, err)
	return NewStudioCanvas(s), s
}

func TestResizeBurstIsMeasuredOnce(t *testing.T) {
	c, s := newCanvas(t)
	start := s.Document().Zoom

	c.Resize(fyne.NewSize(1600, 1200))
	c.Resize(fyne.NewSize(1000, 900))
	c.Resize(fyne.NewSize(400, 300))
	assert.Equal(t, start, s.Document().Zoom, "fit waits for the burst to settle")

	assert.Eventually(t, func() bool {
		return math.Abs(s.Document().Zoom-47.5) < 0.01
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFitToWindowMeasuresPendingResize(t *testing.T) {
	c, s := newCanvas(t)
	c.Resize(fyne.NewSize(400, 300))
	c.FitToWindow()
	assert.InDelta(t, 47.5, s.Document().Zoom, 0.01)
	assert.False(t, c.measure.Pending(measureKey))
}

func TestExplicitZoomStopsRefit(t *testing.T) {
	c, s := newCanvas(t)
	c.SetZoom(200)
	c.Resize(fyne.NewSize(400, 300))
	c.measure.Flush(measureKey)
	assert.Equal(t, 200.0, s.Document().Zoom)
}
