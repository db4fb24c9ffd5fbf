package api

import (
	"image/color"
	"net/http"

	"image-studio/internal/drawable"
	"image-studio/internal/errs"
	"image-studio/pkg/colorutil"
	"image-studio/pkg/geometry"

	"github.com/go-chi/chi/v5"
)

// parseColor reads a "#rrggbb[aa]" value; empty yields def.
func parseColor(s string, def color.Color) (color.Color, error) {
	if s == "" {
		return def, nil
	}
	c, err := colorutil.ParseHex(s)
	if err != nil {
		return nil, errs.E("api.parseColor", errs.KindInvalid, err)
	}
	return c, nil
}

func (s *Server) handleListLayers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Layers().Layers())
}

func (s *Server) handleAddText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text       string `json:"text"`
		Color      string `json:"color"`
		Background string `json:"background"`
		Scale      int    `json:"scale"`
		Padding    int    `json:"padding"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Text == "" {
		s.writeError(w, errs.Errorf("api.addText", errs.KindInvalid, "text is required"))
		return
	}
	style := drawable.DefaultTextStyle()
	var err error
	if style.Color, err = parseColor(req.Color, style.Color); err != nil {
		s.writeError(w, err)
		return
	}
	if style.Background, err = parseColor(req.Background, style.Background); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Scale > 0 {
		style.Scale = req.Scale
	}
	if req.Padding > 0 {
		style.Padding = req.Padding
	}
	l, err := s.session.AddText(req.Text, style)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleAddShape(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind        string  `json:"kind"`
		Width       float64 `json:"width"`
		Height      float64 `json:"height"`
		Fill        string  `json:"fill"`
		Stroke      string  `json:"stroke"`
		StrokeWidth float64 `json:"strokeWidth"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	kind, err := drawable.ParseShapeKind(req.Kind)
	if err != nil {
		s.writeError(w, errs.E("api.addShape", errs.KindInvalid, err))
		return
	}
	style := drawable.ShapeStyle{StrokeWidth: req.StrokeWidth}
	if style.Fill, err = parseColor(req.Fill, nil); err != nil {
		s.writeError(w, err)
		return
	}
	if style.Stroke, err = parseColor(req.Stroke, color.Black); err != nil {
		s.writeError(w, err)
		return
	}
	l, err := s.session.AddShape(kind, geometry.NewSize(req.Width, req.Height), style)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleAddImage(w http.ResponseWriter, r *http.Request) {
	data, err := readImage(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	l, err := s.session.AddImageLayer(data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleMoveLayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.session.MoveLayer(req.From, req.To); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Layers().Layers())
}

// handleUpdateLayer applies the fields present in the body.
func (s *Server) handleUpdateLayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Name    *string  `json:"name"`
		Visible *bool    `json:"visible"`
		Locked  *bool    `json:"locked"`
		Opacity *float64 `json:"opacity"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	var err error
	if req.Name != nil {
		err = s.session.RenameLayer(id, *req.Name)
	}
	if err == nil && req.Visible != nil {
		err = s.session.SetLayerVisible(id, *req.Visible)
	}
	if err == nil && req.Locked != nil {
		err = s.session.SetLayerLocked(id, *req.Locked)
	}
	if err == nil && req.Opacity != nil {
		err = s.session.SetLayerOpacity(id, *req.Opacity)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	l, ok := s.session.Layers().Get(id)
	if !ok {
		s.writeError(w, errs.Errorf("api.updateLayer", errs.KindNotFound, "layer %s", id))
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleRemoveLayer(w http.ResponseWriter, r *http.Request) {
	if err := s.session.RemoveLayer(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDuplicateLayer(w http.ResponseWriter, r *http.Request) {
	l, err := s.session.DuplicateLayer(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleTranslateLayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DX float64 `json:"dx"`
		DY float64 `json:"dy"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.session.TranslateLayer(id, req.DX, req.DY); err != nil {
		s.writeError(w, err)
		return
	}
	l, _ := s.session.Layers().Get(id)
	writeJSON(w, http.StatusOK, map[string]any{"layer": l, "bounds": l.Drawable.BoundingBox()})
}

func (s *Server) handleSelectLayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.session.SelectLayer(id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selectedLayerId": id, "adjustments": s.session.Adjustments()})
}
