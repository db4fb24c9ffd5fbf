// Package image provides image decoding, fingerprinting, resampling and
// layer compositing for the canvas engine.
package image

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/url"
	"strings"

	"image-studio/internal/errs"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decoded is an image together with the identities the engine keys it by.
type Decoded struct {
	Image  image.Image
	Format string
	// SourceID identifies the submitted bytes; equal submissions share it.
	SourceID string
	// Fingerprint identifies the decoded pixels; it survives re-encoding.
	Fingerprint string
}

// Width returns the image width in pixels.
func (d *Decoded) Width() int {
	return d.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (d *Decoded) Height() int {
	return d.Image.Bounds().Dy()
}

// MaxPixels bounds the pixel count of a decoded source. Headers declaring
// more are rejected before any pixel buffer is allocated.
var MaxPixels int64 = 100_000_000

// Decode decodes raw image bytes or a data URL ("data:image/png;base64,...").
// Failures carry errs.KindDecode.
func Decode(data []byte) (*Decoded, error) {
	raw, err := payload(data)
	if err != nil {
		return nil, errs.E("image.Decode", errs.KindDecode, err)
	}
	if len(raw) == 0 {
		return nil, errs.E("image.Decode", errs.KindDecode, errors.New("empty image source"))
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, errs.E("image.Decode", errs.KindDecode, fmt.Errorf("failed to read image header: %w", err))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, errs.Errorf("image.Decode", errs.KindDecode, "image dimensions %dx%d exceed the %d pixel limit", cfg.Width, cfg.Height, MaxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errs.E("image.Decode", errs.KindDecode, fmt.Errorf("failed to decode image: %w", err))
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errs.Errorf("image.Decode", errs.KindDecode, "image has no pixels (%dx%d)", b.Dx(), b.Dy())
	}

	return &Decoded{
		Image:       img,
		Format:      format,
		SourceID:    SourceID(data),
		Fingerprint: Fingerprint(img),
	}, nil
}

// IsDataURL reports whether data looks like a data URL.
func IsDataURL(data []byte) bool {
	return bytes.HasPrefix(data, []byte("data:"))
}

// payload strips a data URL envelope, returning the binary image bytes.
func payload(data []byte) ([]byte, error) {
	if !IsDataURL(data) {
		return data, nil
	}
	s := strings.TrimSpace(string(data))
	comma := strings.IndexByte(s, ',')
	if comma < 0 {
		return nil, errors.New("malformed data URL: missing ','")
	}
	meta, body := s[len("data:"):comma], s[comma+1:]
	if !strings.HasPrefix(meta, "image/") {
		return nil, fmt.Errorf("data URL media type %q is not an image", meta)
	}
	if strings.HasSuffix(meta, ";base64") {
		raw, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			// some producers emit unpadded or URL-safe payloads
			if raw, err2 := base64.RawURLEncoding.DecodeString(strings.TrimRight(body, "=")); err2 == nil {
				return raw, nil
			}
			return nil, fmt.Errorf("malformed base64 payload: %w", err)
		}
		return raw, nil
	}
	unescaped, err := url.PathUnescape(body)
	if err != nil {
		return nil, fmt.Errorf("malformed data URL payload: %w", err)
	}
	return []byte(unescaped), nil
}

// SourceID returns a short stable digest of the submitted bytes.
func SourceID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// Fingerprint returns a short stable digest of the image's pixels, so the
// same picture keeps its identity across encodings.
func Fingerprint(img image.Image) string {
	n := ToNRGBA(img)
	h := sha256.New()
	var dims [8]byte
	binary.BigEndian.PutUint32(dims[0:4], uint32(n.Rect.Dx()))
	binary.BigEndian.PutUint32(dims[4:8], uint32(n.Rect.Dy()))
	h.Write(dims[:])
	rowLen := n.Rect.Dx() * 4
	for y := 0; y < n.Rect.Dy(); y++ {
		off := y * n.Stride
		h.Write(n.Pix[off : off+rowLen])
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// ToNRGBA returns img as a zero-origin *image.NRGBA, copying only when needed.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Clone returns an independent NRGBA copy of img.
func Clone(img image.Image) *image.NRGBA {
	src := ToNRGBA(img)
	out := image.NewNRGBA(src.Rect)
	copy(out.Pix, src.Pix)
	return out
}

// Rescale resamples img to w×h with Catmull-Rom filtering.
func Rescale(img image.Image, w, h int) *image.NRGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// DataURL encodes img as a base64 PNG data URL.
func DataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// SupportedFormats returns the list of decodable formats.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif", ".webp"}
}

// IsSupportedFormat checks if the given file name has a supported extension.
func IsSupportedFormat(name string) bool {
	name = strings.ToLower(name)
	for _, ext := range SupportedFormats() {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
