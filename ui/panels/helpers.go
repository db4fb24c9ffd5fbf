package panels

import (
	"fmt"
	"strconv"

	"image-studio/internal/adjust"
	"image-studio/internal/history"
	"image-studio/internal/layer"
)

// displayOrder lists layers top first, the way a layer list reads.
func displayOrder(layers []layer.Layer) []layer.Layer {
	out := make([]layer.Layer, len(layers))
	for i, l := range layers {
		out[len(layers)-1-i] = l
	}
	return out
}

// modelIndex converts a row of the top-first list to a paint-order index.
func modelIndex(row, n int) int {
	return n - 1 - row
}

// formatValue renders a field value for the label next to its slider.
func formatValue(f adjust.Field, v float64) string {
	if f.Kind == adjust.KindBool {
		if v >= 0.5 {
			return "on"
		}
		return "off"
	}
	if f.Step < 1 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// historyLabel describes one history row. The current entry is marked.
func historyLabel(e history.Entry, i, current int) string {
	name := e.Label
	if name == "" {
		name = "state"
	}
	marker := "  "
	if i == current {
		marker = "> "
	}
	return fmt.Sprintf("%s%d. %s  %s", marker, i+1, name, e.Timestamp.Format("15:04:05"))
}

// layerLabel summarises a layer row.
func layerLabel(l layer.Layer) string {
	label := l.Name
	if l.Locked {
		label += " [locked]"
	}
	if l.Opacity < 100 {
		label += fmt.Sprintf(" %.0f%%", l.Opacity)
	}
	return label
}

// presetNames returns the preset select options, "None" first.
func presetNames() (labels []string, byLabel map[string]string) {
	byLabel = map[string]string{}
	labels = append(labels, noPreset)
	for _, p := range adjust.Presets() {
		labels = append(labels, p.Label)
		byLabel[p.Label] = p.Name
	}
	return labels, byLabel
}

const noPreset = "None"
