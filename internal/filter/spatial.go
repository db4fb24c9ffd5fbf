package filter

import (
	"fmt"
	"image"
	"math"

	studioimage "image-studio/internal/image"

	"gocv.io/x/gocv"
)

// unsharpSigma is the radius of the blur the sharpen mask subtracts.
const unsharpSigma = 1.5

// gaussianBlur blurs img with the given sigma through OpenCV.
func gaussianBlur(img *image.NRGBA, sigma float64) (*image.NRGBA, error) {
	src, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return nil, fmt.Errorf("blur: to mat: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.GaussianBlur(src, &dst, image.Pt(0, 0), sigma, sigma, gocv.BorderDefault)

	return fromMat(dst)
}

// sharpen applies an unsharp mask: src*(1+amount) - blurred*amount.
func sharpen(img *image.NRGBA, amount float64) (*image.NRGBA, error) {
	src, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return nil, fmt.Errorf("sharpen: to mat: %w", err)
	}
	defer src.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(src, &blurred, image.Pt(0, 0), unsharpSigma, unsharpSigma, gocv.BorderDefault)

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.AddWeighted(src, 1+amount, blurred, -amount, 0, &dst)

	return fromMat(dst)
}

// fromMat converts an RGBA mat back, keeping colour channels within alpha so
// the premultiplied result stays valid.
func fromMat(m gocv.Mat) (*image.NRGBA, error) {
	out, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("from mat: %w", err)
	}
	if rgba, ok := out.(*image.RGBA); ok {
		for i := 0; i < len(rgba.Pix); i += 4 {
			a := rgba.Pix[i+3]
			rgba.Pix[i] = min(rgba.Pix[i], a)
			rgba.Pix[i+1] = min(rgba.Pix[i+1], a)
			rgba.Pix[i+2] = min(rgba.Pix[i+2], a)
		}
	}
	return studioimage.ToNRGBA(out), nil
}

// vignette darkens pixels towards the corners; amount 1 turns the corners black.
func vignette(img *image.NRGBA, amount float64) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	cx, cy := float64(w)/2, float64(h)/2
	maxDist := math.Hypot(cx, cy)
	if maxDist == 0 {
		return
	}
	amount = unit(amount)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dy := float64(y) + 0.5 - cy
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)+0.5-cx, dy) / maxDist
			f := 1 - amount*d*d
			i := x * 4
			row[i] = uint8(float64(row[i]) * f)
			row[i+1] = uint8(float64(row[i+1]) * f)
			row[i+2] = uint8(float64(row[i+2]) * f)
		}
	}
}
