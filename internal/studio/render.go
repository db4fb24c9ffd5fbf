package studio

import (
	"image"
	"io"

	"image-studio/internal/adjust"
	"image-studio/internal/drawable"
	"image-studio/internal/filter"
	"image-studio/internal/history"
	studioimage "image-studio/internal/image"
	"image-studio/internal/layer"
	"image-studio/internal/viewport"
)

// Render flattens the visible layers at document resolution, adjustments
// included.
func (s *Session) Render() *image.RGBA {
	doc := s.view.Document()
	c := studioimage.NewComposite(doc.Width, doc.Height)
	for _, l := range s.layers.PaintOrder() {
		c.Add(s.pixelsFor(l.Drawable), l.Drawable.Transform(), l.Drawable.Opacity())
	}
	return c.Render()
}

// pixelsFor returns what d shows on screen. A surface strategy leaves no
// preview on the drawable, so the applied set is rendered here instead.
func (s *Session) pixelsFor(d drawable.Drawable) image.Image {
	if p, ok := d.(drawable.Previewer); ok && p.HasPreview() {
		return d.Display()
	}
	set := s.pipeline.AppliedSet(d)
	if set.IsDefault() {
		return d.Display()
	}
	out, err := filter.Render(d.PixelSource(), adjust.Compile(set))
	if err != nil {
		s.warn.Warn(err)
		return d.Display()
	}
	return out
}

// ExportPNG writes the flattened document to w.
func (s *Session) ExportPNG(w io.Writer) error {
	return studioimage.EncodePNG(w, s.Render())
}

// State is a serialisable snapshot of the session for status displays.
type State struct {
	Document    viewport.Document `json:"document"`
	Layers      []layer.Layer     `json:"layers"`
	Selected    string            `json:"selectedLayerId,omitempty"`
	Adjustments adjust.Set        `json:"adjustments"`
	Processing  bool              `json:"isProcessing"`
	Import      string            `json:"importState"`
	ResizeLock  bool              `json:"resizeLocked"`
	History     HistoryInfo       `json:"history"`
	Background  history.ImageRef  `json:"backgroundImage,omitempty"`
	Generated   history.ImageRef  `json:"generatedImage,omitempty"`
	Attached    history.ImageRef  `json:"attachedImage,omitempty"`
}

// Snapshot captures the current state.
func (s *Session) Snapshot() State {
	st := State{
		Document:    s.view.Document(),
		Layers:      s.layers.Layers(),
		Adjustments: s.pipeline.Current(),
		Processing:  s.pipeline.Processing(),
		Import:      s.importer.State().String(),
		ResizeLock:  s.view.ResizeLocked(),
		History:     s.HistoryInfo(),
	}
	if l, ok := s.layers.Selected(); ok {
		st.Selected = l.ID
	}
	s.mu.Lock()
	st.Background, st.Generated, st.Attached = s.background, s.generated, s.attached
	s.mu.Unlock()
	return st
}
