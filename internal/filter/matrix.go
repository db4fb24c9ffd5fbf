// Package filter renders effect chains onto pixels: colour ops are folded into
// a single colour matrix, spatial ops run through OpenCV kernels.
package filter

import (
	"image"
	"math"

	"image-studio/internal/effect"
	"image-studio/pkg/colorutil"

	"gonum.org/v1/gonum/mat"
)

// ColorMatrix is a 5x5 affine colour transform acting on the column vector
// [R G B A 1] with channels normalised to [0,1].
type ColorMatrix struct {
	m *mat.Dense
}

// IdentityMatrix returns the matrix that leaves colours unchanged.
func IdentityMatrix() ColorMatrix {
	m := mat.NewDense(5, 5, nil)
	for i := 0; i < 5; i++ {
		m.Set(i, i, 1)
	}
	return ColorMatrix{m: m}
}

// rgb builds a matrix from a 3x3 RGB block plus an RGB translation.
func rgb(block [9]float64, offset float64) ColorMatrix {
	cm := IdentityMatrix()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			cm.m.Set(r, c, block[r*3+c])
		}
		cm.m.Set(r, 4, offset)
	}
	return cm
}

// MatrixFor returns the colour matrix of a non-spatial op. The formulas are
// the ones the Filter Effects specification gives for the CSS shorthands.
func MatrixFor(op effect.Op) ColorMatrix {
	a := op.Amount
	switch op.Kind {
	case effect.OpBrightness:
		return rgb([9]float64{a, 0, 0, 0, a, 0, 0, 0, a}, 0)
	case effect.OpContrast:
		return rgb([9]float64{a, 0, 0, 0, a, 0, 0, 0, a}, 0.5-0.5*a)
	case effect.OpSaturate:
		return rgb([9]float64{
			0.213 + 0.787*a, 0.715 - 0.715*a, 0.072 - 0.072*a,
			0.213 - 0.213*a, 0.715 + 0.285*a, 0.072 - 0.072*a,
			0.213 - 0.213*a, 0.715 - 0.715*a, 0.072 + 0.928*a,
		}, 0)
	case effect.OpHueRotate:
		rad := a * math.Pi / 180
		cos, sin := math.Cos(rad), math.Sin(rad)
		return rgb([9]float64{
			0.213 + cos*0.787 - sin*0.213, 0.715 - cos*0.715 - sin*0.715, 0.072 - cos*0.072 + sin*0.928,
			0.213 - cos*0.213 + sin*0.143, 0.715 + cos*0.285 + sin*0.140, 0.072 - cos*0.072 - sin*0.283,
			0.213 - cos*0.213 - sin*0.787, 0.715 - cos*0.715 + sin*0.715, 0.072 + cos*0.928 + sin*0.072,
		}, 0)
	case effect.OpSepia:
		k := 1 - unit(a)
		return rgb([9]float64{
			0.393 + 0.607*k, 0.769 - 0.769*k, 0.189 - 0.189*k,
			0.349 - 0.349*k, 0.686 + 0.314*k, 0.168 - 0.168*k,
			0.272 - 0.272*k, 0.534 - 0.534*k, 0.131 + 0.869*k,
		}, 0)
	case effect.OpGrayscale:
		k := 1 - unit(a)
		lr, lg, lb := colorutil.LumaR, colorutil.LumaG, colorutil.LumaB
		return rgb([9]float64{
			lr + (1-lr)*k, lg - lg*k, lb - lb*k,
			lr - lr*k, lg + (1-lg)*k, lb - lb*k,
			lr - lr*k, lg - lg*k, lb + (1-lb)*k,
		}, 0)
	case effect.OpInvert:
		k := unit(a)
		s := 1 - 2*k
		return rgb([9]float64{s, 0, 0, 0, s, 0, 0, 0, s}, k)
	case effect.OpOpacity:
		cm := IdentityMatrix()
		cm.m.Set(3, 3, unit(a))
		return cm
	default:
		return IdentityMatrix()
	}
}

// Then returns the matrix applying m first and next second.
func (cm ColorMatrix) Then(next ColorMatrix) ColorMatrix {
	var out mat.Dense
	out.Mul(next.m, cm.m)
	return ColorMatrix{m: &out}
}

// At returns element (r, c).
func (cm ColorMatrix) At(r, c int) float64 {
	return cm.m.At(r, c)
}

// IsIdentity reports whether the matrix is (numerically) the identity.
func (cm ColorMatrix) IsIdentity() bool {
	return mat.EqualApprox(cm.m, IdentityMatrix().m, 1e-12)
}

// Apply transforms every pixel of img in place.
func (cm ColorMatrix) Apply(img *image.NRGBA) {
	if cm.IsIdentity() {
		return
	}
	var k [20]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 5; c++ {
			k[r*5+c] = cm.m.At(r, c)
		}
	}

	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			r := float64(row[i]) / 255
			g := float64(row[i+1]) / 255
			b := float64(row[i+2]) / 255
			a := float64(row[i+3]) / 255
			row[i] = colorutil.Clamp8(255 * (k[0]*r + k[1]*g + k[2]*b + k[3]*a + k[4]))
			row[i+1] = colorutil.Clamp8(255 * (k[5]*r + k[6]*g + k[7]*b + k[8]*a + k[9]))
			row[i+2] = colorutil.Clamp8(255 * (k[10]*r + k[11]*g + k[12]*b + k[13]*a + k[14]))
			row[i+3] = colorutil.Clamp8(255 * (k[15]*r + k[16]*g + k[17]*b + k[18]*a + k[19]))
		}
	}
}

func unit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
