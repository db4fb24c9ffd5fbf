package adjust

// FieldKind distinguishes slider fields from toggles.
type FieldKind int

const (
	KindNumber FieldKind = iota
	KindBool
)

func (k FieldKind) String() string {
	if k == KindBool {
		return "bool"
	}
	return "number"
}

// MarshalText encodes the kind by name.
func (k FieldKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Field documents one adjustment: its range, step and default.
type Field struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"kind"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Step    float64   `json:"step"`
	Default float64   `json:"default"`
	// Approximate marks fields rendered by compositing primitive effects
	// rather than a dedicated operator.
	Approximate bool `json:"approximate,omitempty"`

	get func(*Set) float64
	set func(*Set, float64)
}

func num(name, label string, min, max, step, def float64, approx bool, p func(*Set) *float64) Field {
	return Field{
		Name: name, Label: label, Kind: KindNumber,
		Min: min, Max: max, Step: step, Default: def, Approximate: approx,
		get: func(s *Set) float64 { return *p(s) },
		set: func(s *Set, v float64) { *p(s) = v },
	}
}

var fields = []Field{
	num("brightness", "Brightness", -100, 100, 1, 0, false, func(s *Set) *float64 { return &s.Brightness }),
	num("contrast", "Contrast", -100, 100, 1, 0, false, func(s *Set) *float64 { return &s.Contrast }),
	num("saturation", "Saturation", -100, 100, 1, 0, false, func(s *Set) *float64 { return &s.Saturation }),
	num("hue", "Hue", -180, 180, 1, 0, false, func(s *Set) *float64 { return &s.Hue }),
	num("blur", "Blur", 0, 20, 0.5, 0, false, func(s *Set) *float64 { return &s.Blur }),
	num("sepia", "Sepia", 0, 100, 1, 0, false, func(s *Set) *float64 { return &s.Sepia }),
	num("grayscale", "Grayscale", 0, 100, 1, 0, false, func(s *Set) *float64 { return &s.Grayscale }),
	{
		Name: "invert", Label: "Invert", Kind: KindBool, Min: 0, Max: 1, Step: 1,
		get: func(s *Set) float64 {
			if s.Invert {
				return 1
			}
			return 0
		},
		set: func(s *Set, v float64) { s.Invert = v >= 0.5 },
	},
	num("opacity", "Opacity", 0, 100, 1, 100, false, func(s *Set) *float64 { return &s.Opacity }),
	num("temperature", "Temperature", -100, 100, 1, 0, true, func(s *Set) *float64 { return &s.Temperature }),
	num("tint", "Tint", -100, 100, 1, 0, true, func(s *Set) *float64 { return &s.Tint }),
	num("exposure", "Exposure", -100, 100, 1, 0, true, func(s *Set) *float64 { return &s.Exposure }),
	num("highlights", "Highlights", -100, 100, 1, 0, true, func(s *Set) *float64 { return &s.Highlights }),
	num("shadows", "Shadows", -100, 100, 1, 0, true, func(s *Set) *float64 { return &s.Shadows }),
	num("whites", "Whites", -100, 100, 1, 0, true, func(s *Set) *float64 { return &s.Whites }),
	num("blacks", "Blacks", -100, 100, 1, 0, true, func(s *Set) *float64 { return &s.Blacks }),
	num("vibrance", "Vibrance", -100, 100, 1, 0, true, func(s *Set) *float64 { return &s.Vibrance }),
	num("clarity", "Clarity", -100, 100, 1, 0, true, func(s *Set) *float64 { return &s.Clarity }),
	num("sharpness", "Sharpness", 0, 100, 1, 0, true, func(s *Set) *float64 { return &s.Sharpness }),
	num("denoise", "Denoise", 0, 100, 1, 0, true, func(s *Set) *float64 { return &s.Denoise }),
	num("vignette", "Vignette", 0, 100, 1, 0, false, func(s *Set) *float64 { return &s.Vignette }),
}

var byName = func() map[string]Field {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}
	return m
}()

// Fields returns the metadata of every adjustment, in display order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Lookup returns the metadata of the named field.
func Lookup(name string) (Field, bool) {
	f, ok := byName[name]
	return f, ok
}
