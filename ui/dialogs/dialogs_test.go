package dialogs

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-studio/internal/drawable"
	"image-studio/internal/importer"
	"image-studio/internal/viewport"
)

func TestEditDimensionKeepsAspect(t *testing.T) {
	f := viewport.NewResizeForm(800, 600)
	f.SetMaintainAspect(true)

	require.True(t, editDimension(f, dimWidth, "400"))
	assert.Equal(t, 400, f.Width)
	assert.Equal(t, 300, f.Height)

	require.True(t, editDimension(f, dimHeight, " 900 "))
	assert.Equal(t, 1200, f.Width)
	assert.Equal(t, 900, f.Height)
}

func TestEditDimensionRejectsBadInput(t *testing.T) {
	f := viewport.NewResizeForm(800, 600)
	for _, s := range []string{"", "abc", "0", "-5", "10001", "12.5"} {
		assert.False(t, editDimension(f, dimWidth, s), s)
	}
	assert.Equal(t, 800, f.Width)
	assert.Equal(t, 600, f.Height)
}

func TestEditDimensionFreeAspect(t *testing.T) {
	f := viewport.NewResizeForm(800, 600)
	require.True(t, editDimension(f, dimWidth, "100"))
	assert.Equal(t, 100, f.Width)
	assert.Equal(t, 600, f.Height)
}

func TestDecisionChoicesCoverEveryDecision(t *testing.T) {
	seen := map[importer.Decision]bool{}
	for _, c := range decisionChoices {
		seen[c.decision] = true
	}
	assert.Len(t, seen, 3)
}

func TestConflictMessage(t *testing.T) {
	msg := conflictMessage(&importer.Conflict{CanvasWidth: 800, CanvasHeight: 600, ImageWidth: 1000, ImageHeight: 2000})
	assert.Contains(t, msg, "1000 x 2000")
	assert.Contains(t, msg, "800 x 600")
}

func TestParseTextStyle(t *testing.T) {
	style, err := parseTextStyle("#ff0000", "", "4")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, style.Color)
	assert.Nil(t, style.Background)
	assert.Equal(t, 4, style.Scale)

	_, err = parseTextStyle("red?", "", "")
	assert.Error(t, err)
	_, err = parseTextStyle("", "", "40")
	assert.Error(t, err)
}

func TestParseShape(t *testing.T) {
	kind, size, style, err := parseShape("ellipse", "200", "100", "", "#000000", "3")
	require.NoError(t, err)
	assert.Equal(t, drawable.ShapeEllipse, kind)
	assert.Equal(t, 200.0, size.Width)
	assert.Equal(t, 100.0, size.Height)
	assert.Nil(t, style.Fill)
	assert.Equal(t, 3.0, style.StrokeWidth)

	_, _, _, err = parseShape("hexagon", "1", "1", "", "", "")
	assert.Error(t, err)
	_, _, _, err = parseShape("rect", "0", "10", "", "", "")
	assert.Error(t, err)
}
