package adjust

import (
	"math"

	"image-studio/internal/effect"
)

// Compile maps a set onto primitive effects. Brightness, contrast,
// saturation, hue, blur, sepia, grayscale, invert, opacity and vignette map
// one to one. The photographic controls are approximations built from the
// same primitives:
//
//	exposure, highlights, shadows, whites, blacks -> brightness and contrast
//	temperature -> sepia (warm) or hue-rotate (cool)
//	tint        -> hue-rotate
//	vibrance    -> saturate at half strength
//	clarity     -> contrast, plus sharpen when positive
//	sharpness   -> sharpen
//	denoise     -> light blur
//
// Identity primitives are dropped, so the default set compiles to an empty chain.
func Compile(s Set) effect.Chain {
	s = s.Clamp()
	pct := func(v float64) float64 { return v / 100 }

	brightness := (1 + pct(s.Brightness)) *
		(1 + 0.6*pct(s.Exposure)) *
		(1 + 0.15*pct(s.Highlights)) *
		(1 + 0.2*pct(s.Shadows)) *
		(1 + 0.1*pct(s.Whites)) *
		(1 + 0.1*pct(s.Blacks))

	contrast := (1 + pct(s.Contrast)) *
		(1 + 0.1*pct(s.Highlights)) *
		(1 - 0.15*pct(s.Shadows)) *
		(1 + 0.15*pct(s.Whites)) *
		(1 - 0.15*pct(s.Blacks)) *
		(1 + 0.2*pct(s.Clarity))

	saturate := (1 + pct(s.Saturation)) * (1 + 0.5*pct(s.Vibrance))

	hue := s.Hue + 0.3*s.Tint
	sepia := pct(s.Sepia)
	if s.Temperature > 0 {
		sepia += 0.3 * pct(s.Temperature)
	} else if s.Temperature < 0 {
		hue += 0.2 * s.Temperature
	}

	invert := 0.0
	if s.Invert {
		invert = 1
	}

	blur := s.Blur + 1.5*pct(s.Denoise)
	sharpen := pct(s.Sharpness) + 0.5*pct(math.Max(s.Clarity, 0))

	chain := effect.Chain{
		{Kind: effect.OpBrightness, Amount: round(math.Max(0, brightness))},
		{Kind: effect.OpContrast, Amount: round(math.Max(0, contrast))},
		{Kind: effect.OpSaturate, Amount: round(math.Max(0, saturate))},
		{Kind: effect.OpHueRotate, Amount: round(hue)},
		{Kind: effect.OpSepia, Amount: round(math.Min(1, sepia))},
		{Kind: effect.OpGrayscale, Amount: round(pct(s.Grayscale))},
		{Kind: effect.OpInvert, Amount: invert},
		{Kind: effect.OpOpacity, Amount: round(pct(s.Opacity))},
		{Kind: effect.OpBlur, Amount: round(blur)},
		{Kind: effect.OpSharpen, Amount: round(sharpen)},
		{Kind: effect.OpVignette, Amount: round(pct(s.Vignette))},
	}
	return chain.Compact()
}

// round trims floating noise so equal inputs always produce equal chains.
func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
