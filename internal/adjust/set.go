// Package adjust defines the non-destructive adjustment set, its field
// metadata and presets, and compiles a set into an effect chain.
package adjust

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Set is the full record of user adjustments. The zero-effect values are
// given by Defaults; Opacity defaults to 100, everything else to 0/false.
type Set struct {
	Brightness  float64 `json:"brightness"`
	Contrast    float64 `json:"contrast"`
	Saturation  float64 `json:"saturation"`
	Hue         float64 `json:"hue"`
	Blur        float64 `json:"blur"`
	Sepia       float64 `json:"sepia"`
	Grayscale   float64 `json:"grayscale"`
	Invert      bool    `json:"invert"`
	Opacity     float64 `json:"opacity"`
	Temperature float64 `json:"temperature"`
	Tint        float64 `json:"tint"`
	Exposure    float64 `json:"exposure"`
	Highlights  float64 `json:"highlights"`
	Shadows     float64 `json:"shadows"`
	Whites      float64 `json:"whites"`
	Blacks      float64 `json:"blacks"`
	Vibrance    float64 `json:"vibrance"`
	Clarity     float64 `json:"clarity"`
	Sharpness   float64 `json:"sharpness"`
	Denoise     float64 `json:"denoise"`
	Vignette    float64 `json:"vignette"`
}

// Defaults returns the no-op set.
func Defaults() Set {
	return Set{Opacity: 100}
}

// IsDefault reports whether s is semantically the no-op set.
func (s Set) IsDefault() bool {
	return s.Clamp() == Defaults()
}

// Clamp returns s with every field limited to its declared range.
func (s Set) Clamp() Set {
	out := s
	for _, f := range fields {
		if f.Kind == KindBool {
			continue
		}
		v := f.get(&out)
		if math.IsNaN(v) {
			v = f.Default
		}
		f.set(&out, math.Max(f.Min, math.Min(f.Max, v)))
	}
	return out
}

// Get returns the named field as a number (booleans map to 0/1).
func (s Set) Get(name string) (float64, error) {
	f, ok := byName[name]
	if !ok {
		return 0, fmt.Errorf("unknown adjustment %q", name)
	}
	return f.get(&s), nil
}

// With returns a copy of s with the named field set and clamped.
func (s Set) With(name string, v float64) (Set, error) {
	f, ok := byName[name]
	if !ok {
		return s, fmt.Errorf("unknown adjustment %q", name)
	}
	f.set(&s, v)
	return s.Clamp(), nil
}

// Changed lists the names of fields that differ from their defaults.
func (s Set) Changed() []string {
	var names []string
	for _, f := range fields {
		if f.get(&s) != f.Default {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	return names
}

// UnmarshalJSON starts from Defaults so fields absent from the payload keep
// their documented default rather than zero.
func (s *Set) UnmarshalJSON(data []byte) error {
	type plain Set
	out := plain(Defaults())
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*s = Set(out).Clamp()
	return nil
}
