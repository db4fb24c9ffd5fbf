// Package effect describes rendering effects independently of how a backend
// realises them.
package effect

import (
	"fmt"
	"strings"
)

// OpKind identifies a primitive effect.
type OpKind int

const (
	OpBrightness OpKind = iota // multiplies RGB
	OpContrast                 // scales RGB around mid-grey
	OpSaturate                 // scales chroma
	OpHueRotate                // rotates hue, degrees
	OpSepia                    // 0..1 blend towards sepia
	OpGrayscale                // 0..1 blend towards luma
	OpInvert                   // 0..1 blend towards inverted
	OpOpacity                  // multiplies alpha
	OpBlur                     // gaussian sigma in pixels
	OpSharpen                  // unsharp-mask strength 0..1
	OpVignette                 // 0..1 edge darkening
)

func (k OpKind) String() string {
	switch k {
	case OpBrightness:
		return "brightness"
	case OpContrast:
		return "contrast"
	case OpSaturate:
		return "saturate"
	case OpHueRotate:
		return "hue-rotate"
	case OpSepia:
		return "sepia"
	case OpGrayscale:
		return "grayscale"
	case OpInvert:
		return "invert"
	case OpOpacity:
		return "opacity"
	case OpBlur:
		return "blur"
	case OpSharpen:
		return "sharpen"
	case OpVignette:
		return "vignette"
	default:
		return "unknown"
	}
}

// Spatial reports whether the op reads neighbouring pixels (or pixel
// position) and therefore cannot be folded into a colour matrix.
func (k OpKind) Spatial() bool {
	return k == OpBlur || k == OpSharpen || k == OpVignette
}

// Op is one primitive effect with its amount.
type Op struct {
	Kind   OpKind  `json:"kind"`
	Amount float64 `json:"amount"`
}

// IsIdentity reports whether the op leaves pixels unchanged.
func (o Op) IsIdentity() bool {
	switch o.Kind {
	case OpBrightness, OpContrast, OpSaturate, OpOpacity:
		return o.Amount == 1
	default:
		return o.Amount == 0
	}
}

func (o Op) String() string {
	switch o.Kind {
	case OpHueRotate:
		return fmt.Sprintf("%s(%.1fdeg)", o.Kind, o.Amount)
	case OpBlur:
		return fmt.Sprintf("%s(%.2fpx)", o.Kind, o.Amount)
	default:
		return fmt.Sprintf("%s(%.2f)", o.Kind, o.Amount)
	}
}

// Chain is an ordered list of ops, applied first to last.
type Chain []Op

// IsIdentity reports whether the whole chain is a no-op.
func (c Chain) IsIdentity() bool {
	for _, op := range c {
		if !op.IsIdentity() {
			return false
		}
	}
	return true
}

// HasSpatial reports whether any op needs neighbourhood access.
func (c Chain) HasSpatial() bool {
	for _, op := range c {
		if op.Kind.Spatial() && !op.IsIdentity() {
			return true
		}
	}
	return false
}

// Compact drops identity ops.
func (c Chain) Compact() Chain {
	out := make(Chain, 0, len(c))
	for _, op := range c {
		if !op.IsIdentity() {
			out = append(out, op)
		}
	}
	return out
}

// Clone returns an independent copy.
func (c Chain) Clone() Chain {
	if c == nil {
		return nil
	}
	out := make(Chain, len(c))
	copy(out, c)
	return out
}

// Equal reports element-wise equality.
func (c Chain) Equal(other Chain) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the chain like a CSS filter list, or "none".
func (c Chain) String() string {
	if len(c) == 0 {
		return "none"
	}
	parts := make([]string, len(c))
	for i, op := range c {
		parts[i] = op.String()
	}
	return strings.Join(parts, " ")
}
