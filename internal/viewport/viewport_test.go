package viewport

import (
	"testing"

	"image-studio/internal/errs"
	"image-studio/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct{ warnings []error }

func (r *recorder) Warn(err error) { r.warnings = append(r.warnings, err) }

func TestZoomClamped(t *testing.T) {
	c := New(DefaultLimits(), 800, 600)
	assert.Equal(t, 10.0, c.SetZoom(1))
	assert.Equal(t, 1000.0, c.SetZoom(5000))
	assert.Equal(t, 250.0, c.SetZoom(250))
	assert.Equal(t, 240.0, c.ZoomBy(-10))
	assert.Equal(t, 300.0, c.ZoomIn())
	assert.Equal(t, 240.0, c.ZoomOut())
}

func TestZoomHookFiresOnChangeOnly(t *testing.T) {
	c := New(DefaultLimits(), 800, 600)
	var got []float64
	c.OnZoom(func(z float64) { got = append(got, z) })
	c.SetZoom(100)
	c.SetZoom(150)
	assert.Equal(t, []float64{150}, got)
}

func TestPanIsUnconstrained(t *testing.T) {
	c := New(DefaultLimits(), 800, 600)
	c.Pan(-5000, 7000)
	assert.Equal(t, geometry.Pt(-5000, 7000), c.Document().Pan)
}

func TestResizeGestureCommitsOnlyAtEnd(t *testing.T) {
	c := New(DefaultLimits(), 800, 600)
	commits := 0
	c.OnCommit(func(Document) { commits++ })

	require.NoError(t, c.BeginResize(HandleSE, geometry.Pt(800, 600)))
	size, err := c.UpdateResize(geometry.Pt(900, 650))
	require.NoError(t, err)
	assert.Equal(t, geometry.NewSize(900, 650), size)
	_, err = c.UpdateResize(geometry.Pt(1000, 700))
	require.NoError(t, err)

	assert.Equal(t, 800, c.Document().Width, "document is untouched during the gesture")
	assert.Equal(t, 0, commits)
	w, h := c.Pending()
	assert.Equal(t, 1000, w)
	assert.Equal(t, 700, h)

	doc, err := c.EndResize()
	require.NoError(t, err)
	assert.Equal(t, 1000, doc.Width)
	assert.Equal(t, 700, doc.Height)
	assert.Equal(t, 1, commits)
	assert.False(t, c.Resizing())
}

func TestResizeHandles(t *testing.T) {
	tests := []struct {
		handle Handle
		dx, dy float64
		w, h   int
	}{
		{HandleN, 50, -40, 400, 340},
		{HandleS, 50, 40, 400, 340},
		{HandleE, 50, 40, 450, 300},
		{HandleW, -50, 40, 450, 300},
		{HandleNE, 50, -40, 450, 340},
		{HandleNW, -50, -40, 450, 340},
		{HandleSE, 50, 40, 450, 340},
		{HandleSW, -50, 40, 450, 340},
	}
	for _, tt := range tests {
		t.Run(tt.handle.String(), func(t *testing.T) {
			c := New(DefaultLimits(), 400, 300)
			require.NoError(t, c.BeginResize(tt.handle, geometry.Pt(0, 0)))
			_, err := c.UpdateResize(geometry.Pt(tt.dx, tt.dy))
			require.NoError(t, err)
			doc, err := c.EndResize()
			require.NoError(t, err)
			assert.Equal(t, tt.w, doc.Width)
			assert.Equal(t, tt.h, doc.Height)
		})
	}
}

func TestResizeDeltaScalesWithZoom(t *testing.T) {
	c := New(DefaultLimits(), 400, 300)
	c.SetZoom(200)
	require.NoError(t, c.BeginResize(HandleE, geometry.Pt(0, 0)))
	_, _ = c.UpdateResize(geometry.Pt(100, 0))
	doc, _ := c.EndResize()
	assert.Equal(t, 450, doc.Width)
}

func TestResizeClampsToMinimumAndWarnsOnce(t *testing.T) {
	rec := &recorder{}
	c := New(DefaultLimits(), 400, 300, WithWarnings(rec))
	require.NoError(t, c.BeginResize(HandleNW, geometry.Pt(0, 0)))
	_, _ = c.UpdateResize(geometry.Pt(390, 290))
	size, err := c.UpdateResize(geometry.Pt(395, 295))
	require.NoError(t, err)
	assert.Equal(t, geometry.NewSize(100, 100), size)
	doc, err := c.EndResize()
	require.NoError(t, err)
	assert.Equal(t, 100, doc.Width)
	assert.Equal(t, 100, doc.Height)

	require.Len(t, rec.warnings, 1)
	assert.True(t, errs.Is(rec.warnings[0], errs.KindResizeBounds))
}

func TestWestHandleKeepsEastEdge(t *testing.T) {
	c := New(DefaultLimits(), 400, 300)
	c.SetPan(geometry.Pt(100, 0))
	require.NoError(t, c.BeginResize(HandleW, geometry.Pt(0, 0)))
	_, _ = c.UpdateResize(geometry.Pt(-50, 0))
	doc, _ := c.EndResize()
	assert.Equal(t, 50.0, doc.Pan.X)
	assert.Equal(t, 500.0, doc.Pan.X+float64(doc.Width))
}

func TestResizeLocked(t *testing.T) {
	c := New(DefaultLimits(), 400, 300)
	c.SetResizeLocked(true)
	err := c.BeginResize(HandleE, geometry.Pt(0, 0))
	assert.True(t, errs.Is(err, errs.KindState))
	_, err = c.UpdateResize(geometry.Pt(1, 1))
	assert.True(t, errs.Is(err, errs.KindState))
}

func TestSetSizeClamps(t *testing.T) {
	rec := &recorder{}
	c := New(DefaultLimits(), 400, 300, WithWarnings(rec))
	doc := c.SetSize(50, 20000)
	assert.Equal(t, 100, doc.Width)
	assert.Equal(t, 10000, doc.Height)
	require.Len(t, rec.warnings, 1)
}

func TestFitToViewport(t *testing.T) {
	c := New(DefaultLimits(), 1000, 500)
	assert.Equal(t, 100.0, c.FitToViewport(), "no container measured yet")

	c.SetContainer(geometry.NewSize(500, 500))
	zoom := c.FitToViewport()
	assert.InDelta(t, 47.5, zoom, 1e-9)
	doc := c.Document()
	assert.InDelta(t, 12.5, doc.Pan.X, 1e-9)
}

func TestScreenCanvasRoundTrip(t *testing.T) {
	c := New(DefaultLimits(), 400, 300)
	c.SetZoom(200)
	c.SetPan(geometry.Pt(10, 20))
	p := geometry.Pt(33, 44)
	back := c.ScreenToCanvas(c.CanvasToScreen(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}

func TestResizeForm(t *testing.T) {
	f := NewResizeForm(800, 600)
	f.SetMaintainAspect(true)
	f.SetWidth(400)
	assert.Equal(t, 300, f.Height)
	f.SetHeight(30)
	assert.Equal(t, 40, f.Width)
	f.SetWidth(20000)
	assert.Equal(t, FormMaxDimension, f.Width)
	assert.Equal(t, 7500, f.Height)

	f.SetMaintainAspect(false)
	f.SetWidth(10)
	assert.Equal(t, 7500, f.Height)
	f.SetWidth(0)
	assert.Equal(t, 1, f.Width)
	require.NoError(t, f.Request().Validate())
	assert.Error(t, Request{Width: 0, Height: 5}.Validate())
}

func TestParseDimension(t *testing.T) {
	v, err := ParseDimension(" 640 ")
	require.NoError(t, err)
	assert.Equal(t, 640, v)
	for _, bad := range []string{"", "abc", "0", "10001", "-3"} {
		_, err := ParseDimension(bad)
		assert.True(t, errs.Is(err, errs.KindInvalid), bad)
	}
}

func TestParseHandle(t *testing.T) {
	for h := HandleN; h <= HandleSW; h++ {
		got, err := ParseHandle(h.String())
		require.NoError(t, err)
		assert.Equal(t, h, got)
	}
}
