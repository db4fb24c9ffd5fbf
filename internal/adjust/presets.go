package adjust

import "sort"

// Preset is a named adjustment set applied in one step.
type Preset struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Set   Set    `json:"adjustments"`
}

func preset(name, label string, edit func(*Set)) Preset {
	s := Defaults()
	edit(&s)
	return Preset{Name: name, Label: label, Set: s}
}

var presets = map[string]Preset{
	"vivid": preset("vivid", "Vivid", func(s *Set) {
		s.Contrast, s.Saturation, s.Vibrance, s.Clarity = 15, 25, 30, 10
	}),
	"noir": preset("noir", "Noir", func(s *Set) {
		s.Grayscale, s.Contrast, s.Blacks, s.Vignette = 100, 35, -20, 30
	}),
	"warm": preset("warm", "Warm", func(s *Set) {
		s.Temperature, s.Tint, s.Exposure = 40, 5, 5
	}),
	"cool": preset("cool", "Cool", func(s *Set) {
		s.Temperature, s.Tint, s.Saturation = -40, -5, -5
	}),
	"vintage": preset("vintage", "Vintage", func(s *Set) {
		s.Sepia, s.Contrast, s.Saturation, s.Vignette = 45, -10, -20, 25
	}),
	"dramatic": preset("dramatic", "Dramatic", func(s *Set) {
		s.Contrast, s.Highlights, s.Shadows, s.Clarity, s.Sharpness = 40, -30, 20, 35, 20
	}),
	"fade": preset("fade", "Fade", func(s *Set) {
		s.Contrast, s.Blacks, s.Saturation, s.Exposure = -25, 30, -15, 5
	}),
}

// PresetByName returns the named preset.
func PresetByName(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// Presets returns every preset, sorted by name.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
