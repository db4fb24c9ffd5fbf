package image

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"image-studio/internal/errs"
	"image-studio/pkg/geometry"

	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func encode(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodePNG(t *testing.T) {
	data := encode(t, solid(40, 20, color.NRGBA{10, 20, 30, 255}))
	d, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, "png", d.Format)
	require.Equal(t, 40, d.Width())
	require.Equal(t, 20, d.Height())
	require.Equal(t, SourceID(data), d.SourceID)
}

func TestDecodeDataURL(t *testing.T) {
	raw := encode(t, solid(8, 8, color.NRGBA{255, 0, 0, 255}))
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	d, err := Decode([]byte(url))
	require.NoError(t, err)
	require.Equal(t, 8, d.Width())

	fromRaw, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, fromRaw.Fingerprint, d.Fingerprint, "same pixels share a fingerprint")
	require.NotEqual(t, fromRaw.SourceID, d.SourceID, "different submissions differ in source id")
}

func TestDecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("not an image")},
		{"data url without comma", []byte("data:image/png;base64")},
		{"data url non image", []byte("data:text/plain;base64,aGVsbG8=")},
		{"bad base64", []byte("data:image/png;base64,@@@")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			require.Error(t, err)
			require.True(t, errs.Is(err, errs.KindDecode), "got %v", err)
		})
	}
}

// hugeHeader rewrites the IHDR of a tiny PNG to declare w x h pixels.
func hugeHeader(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := encode(t, solid(1, 1, color.NRGBA{A: 255}))
	require.Equal(t, "IHDR", string(data[12:16]))
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestDecodeRejectsOversizedHeader(t *testing.T) {
	data := hugeHeader(t, 60000, 60000)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 60000, cfg.Width)

	_, err = Decode(data)
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.KindDecode))

	_, err = Decode([]byte("data:image/png;base64," + base64.StdEncoding.EncodeToString(data)))
	require.True(t, errs.Is(err, errs.KindDecode))
}

func TestFingerprintIgnoresOrigin(t *testing.T) {
	a := solid(10, 10, color.NRGBA{1, 2, 3, 255})
	b := a.SubImage(image.Rect(0, 0, 10, 10))
	require.Equal(t, Fingerprint(a), Fingerprint(b))

	c := solid(10, 10, color.NRGBA{1, 2, 4, 255})
	require.NotEqual(t, Fingerprint(a), Fingerprint(c))
}

func TestRescale(t *testing.T) {
	out := Rescale(solid(100, 50, color.NRGBA{200, 100, 50, 255}), 20, 10)
	require.Equal(t, image.Rect(0, 0, 20, 10), out.Bounds())
	require.Equal(t, color.NRGBA{200, 100, 50, 255}, out.NRGBAAt(10, 5))
}

func TestCompositeOrderAndOpacity(t *testing.T) {
	c := NewComposite(10, 10)
	c.Add(solid(10, 10, color.NRGBA{255, 0, 0, 255}), geometry.Identity(), 1)
	c.Add(solid(5, 5, color.NRGBA{0, 0, 255, 255}), geometry.Translation(5, 5), 1)
	out := c.Render()

	require.Equal(t, color.RGBA{255, 0, 0, 255}, out.RGBAAt(1, 1))
	require.Equal(t, color.RGBA{0, 0, 255, 255}, out.RGBAAt(7, 7))

	half := NewComposite(4, 4)
	half.Add(solid(4, 4, color.NRGBA{255, 255, 255, 255}), geometry.Identity(), 0.5)
	px := half.Render().RGBAAt(0, 0)
	require.InDelta(t, 128, int(px.A), 1)
}

func TestCompositeScaledPlacement(t *testing.T) {
	c := NewComposite(20, 20)
	c.BackColor = color.Black
	c.Add(solid(10, 5, color.NRGBA{0, 255, 0, 255}), geometry.Placement(0, 5, 2), 1)
	out := c.Render()

	require.Equal(t, color.RGBA{0, 0, 0, 255}, out.RGBAAt(10, 2), "above placement stays background")
	require.Equal(t, color.RGBA{0, 255, 0, 255}, out.RGBAAt(19, 14))
	require.Equal(t, color.RGBA{0, 0, 0, 255}, out.RGBAAt(10, 16), "below placement stays background")
}

func TestIsSupportedFormat(t *testing.T) {
	require.True(t, IsSupportedFormat("photo.JPG"))
	require.True(t, IsSupportedFormat("scan.tiff"))
	require.False(t, IsSupportedFormat("notes.txt"))
}
