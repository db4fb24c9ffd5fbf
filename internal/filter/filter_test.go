package filter

import (
	"image"
	"image/color"
	"testing"

	"image-studio/internal/effect"

	"github.com/stretchr/testify/require"
)

func fill(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 255 / w), uint8(y * 255 / h), 128, 255})
		}
	}
	return img
}

func TestMatrixOps(t *testing.T) {
	base := color.NRGBA{100, 150, 200, 255}
	tests := []struct {
		name string
		op   effect.Op
		want color.NRGBA
	}{
		{"brightness", effect.Op{Kind: effect.OpBrightness, Amount: 1.5}, color.NRGBA{150, 225, 255, 255}},
		{"contrast zero", effect.Op{Kind: effect.OpContrast, Amount: 0}, color.NRGBA{128, 128, 128, 255}},
		{"invert", effect.Op{Kind: effect.OpInvert, Amount: 1}, color.NRGBA{155, 105, 55, 255}},
		{"opacity", effect.Op{Kind: effect.OpOpacity, Amount: 0.5}, color.NRGBA{100, 150, 200, 128}},
		{"saturate zero equals luma", effect.Op{Kind: effect.OpSaturate, Amount: 0}, color.NRGBA{142, 142, 142, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := fill(1, 1, base)
			MatrixFor(tt.op).Apply(img)
			got := img.NRGBAAt(0, 0)
			require.InDelta(t, int(tt.want.R), int(got.R), 1)
			require.InDelta(t, int(tt.want.G), int(got.G), 1)
			require.InDelta(t, int(tt.want.B), int(got.B), 1)
			require.InDelta(t, int(tt.want.A), int(got.A), 1)
		})
	}
}

func TestGrayscaleEqualChannels(t *testing.T) {
	img := fill(1, 1, color.NRGBA{30, 200, 90, 255})
	MatrixFor(effect.Op{Kind: effect.OpGrayscale, Amount: 1}).Apply(img)
	px := img.NRGBAAt(0, 0)
	require.InDelta(t, int(px.R), int(px.G), 1)
	require.InDelta(t, int(px.G), int(px.B), 1)
}

func TestHueRotateFullTurnIsIdentity(t *testing.T) {
	m := MatrixFor(effect.Op{Kind: effect.OpHueRotate, Amount: 360})
	for r := 0; r < 5; r++ {
		for c := 0; c < 5; c++ {
			want := 0.0
			if r == c {
				want = 1
			}
			require.InDelta(t, want, m.At(r, c), 1e-9)
		}
	}
}

func TestThenMatchesSequentialApplication(t *testing.T) {
	ops := []effect.Op{
		{Kind: effect.OpBrightness, Amount: 1.1},
		{Kind: effect.OpSepia, Amount: 0.4},
		{Kind: effect.OpContrast, Amount: 0.9},
	}
	seq := fill(1, 1, color.NRGBA{90, 60, 30, 255})
	for _, op := range ops {
		MatrixFor(op).Apply(seq)
	}
	folded := fill(1, 1, color.NRGBA{90, 60, 30, 255})
	Compile(effect.Chain(ops)).Apply(folded)

	a, b := seq.NRGBAAt(0, 0), folded.NRGBAAt(0, 0)
	require.InDelta(t, int(a.R), int(b.R), 2)
	require.InDelta(t, int(a.G), int(b.G), 2)
	require.InDelta(t, int(a.B), int(b.B), 2)
}

func TestRenderLeavesSourceUntouched(t *testing.T) {
	src := gradient(16, 16)
	before := append([]byte(nil), src.Pix...)

	out, err := Render(src, effect.Chain{{Kind: effect.OpInvert, Amount: 1}, {Kind: effect.OpVignette, Amount: 0.5}})
	require.NoError(t, err)
	require.Equal(t, before, src.Pix)
	require.NotEqual(t, src.Pix, out.Pix)
}

func TestRenderIdentityChainIsBitExact(t *testing.T) {
	src := gradient(16, 16)
	out, err := Render(src, effect.Chain{{Kind: effect.OpBrightness, Amount: 1}, {Kind: effect.OpBlur, Amount: 0}})
	require.NoError(t, err)
	require.Equal(t, src.Pix, out.Pix)
}

func TestBlurKeepsUniformImageUniform(t *testing.T) {
	src := fill(20, 20, color.NRGBA{120, 60, 30, 255})
	out, err := Render(src, effect.Chain{{Kind: effect.OpBlur, Amount: 3}})
	require.NoError(t, err)
	require.Equal(t, src.Bounds(), out.Bounds())
	px := out.NRGBAAt(10, 10)
	require.InDelta(t, 120, int(px.R), 1)
	require.InDelta(t, 60, int(px.G), 1)
	require.InDelta(t, 30, int(px.B), 1)
}

func TestSharpenIncreasesEdgeContrast(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			v := uint8(80)
			if x >= 10 {
				v = 170
			}
			src.SetNRGBA(x, y, color.NRGBA{v, v, v, 255})
		}
	}
	out, err := Render(src, effect.Chain{{Kind: effect.OpSharpen, Amount: 1}})
	require.NoError(t, err)
	require.Less(t, out.NRGBAAt(9, 10).R, uint8(80))
	require.Greater(t, out.NRGBAAt(10, 10).R, uint8(170))
}

func TestVignetteDarkensCorners(t *testing.T) {
	src := fill(21, 21, color.NRGBA{200, 200, 200, 255})
	out, err := Render(src, effect.Chain{{Kind: effect.OpVignette, Amount: 1}})
	require.NoError(t, err)
	require.Greater(t, out.NRGBAAt(10, 10).R, out.NRGBAAt(0, 0).R)
}
