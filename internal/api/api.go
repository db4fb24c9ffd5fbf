// Package api exposes a studio Session over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"image-studio/internal/adjust"
	"image-studio/internal/errs"
	"image-studio/internal/importer"
	"image-studio/internal/layer"
	"image-studio/internal/studio"
	"image-studio/internal/viewport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxUpload bounds image request bodies.
const maxUpload = 64 << 20

// Server serves one session.
type Server struct {
	session *studio.Session
	logger  *slog.Logger
}

// New creates a server over session.
func New(session *studio.Session, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{session: session, logger: logger}
}

// Router returns the chi router with every endpoint mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.RegisterHTTP(r)
	return r
}

// RegisterHTTP mounts the studio endpoints on r.
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Get("/state", s.handleState)
	r.Get("/render.png", s.handleRender)

	r.Post("/import", s.handleImport)
	r.Post("/import/decision", s.handleDecision)
	r.Post("/attach", s.handleAttach)
	r.Post("/clear", s.handleClear)

	r.Route("/layers", func(r chi.Router) {
		r.Get("/", s.handleListLayers)
		r.Post("/text", s.handleAddText)
		r.Post("/shape", s.handleAddShape)
		r.Post("/image", s.handleAddImage)
		r.Post("/move", s.handleMoveLayer)
		r.Route("/{id}", func(r chi.Router) {
			r.Patch("/", s.handleUpdateLayer)
			r.Delete("/", s.handleRemoveLayer)
			r.Post("/duplicate", s.handleDuplicateLayer)
			r.Post("/translate", s.handleTranslateLayer)
			r.Post("/select", s.handleSelectLayer)
		})
	})

	r.Route("/adjustments", func(r chi.Router) {
		r.Get("/", s.handleGetAdjustments)
		r.Put("/", s.handleApplyAdjustments)
		r.Get("/fields", s.handleFields)
		r.Post("/reset", s.handleResetAdjustments)
		r.Post("/commit", s.handleCommitAdjustments)
		r.Get("/presets", s.handlePresets)
		r.Post("/presets/{name}", s.handleApplyPreset)
	})

	r.Get("/history", s.handleHistory)
	r.Post("/history/undo", s.handleUndo)
	r.Post("/history/redo", s.handleRedo)

	r.Put("/zoom", s.handleZoom)
	r.Post("/zoom/fit", s.handleZoomFit)
	r.Post("/canvas/resize", s.handleResizeCanvas)
	r.Post("/save", s.handleSave)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps an engine error kind to an HTTP status.
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.KindDecode, errs.KindInvalid, errs.KindResizeBounds:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindDimensionConflict, errs.KindBusy, errs.KindState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	body := map[string]any{"error": err.Error(), "kind": errs.KindOf(err).String()}
	var conflict *importer.Conflict
	if errors.As(err, &conflict) {
		body["conflict"] = conflict
	}
	writeJSON(w, status, body)
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.E("api.decode", errs.KindInvalid, err)
	}
	return nil
}

func readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpload))
	if err != nil {
		return nil, errs.E("api.readImage", errs.KindInvalid, err)
	}
	if len(data) == 0 {
		return nil, errs.Errorf("api.readImage", errs.KindInvalid, "empty body")
	}
	return data, nil
}

// importResponse is the JSON view of an importer.Result.
type importResponse struct {
	Layer     *layer.Layer       `json:"layer,omitempty"`
	Image     string             `json:"imageId"`
	Format    string             `json:"format"`
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	Document  viewport.Document  `json:"document"`
	Placement importer.Placement `json:"placement"`
	Replaced  bool               `json:"replaced"`
	Decision  string             `json:"decision,omitempty"`
}

func toImportResponse(res *importer.Result) importResponse {
	out := importResponse{
		Document:  res.Document,
		Placement: res.Placement,
		Replaced:  res.Replaced,
	}
	if res.Layer.ID != "" {
		l := res.Layer
		out.Layer = &l
	}
	if res.Decoded != nil {
		out.Image = res.Decoded.Fingerprint
		out.Format = res.Decoded.Format
		out.Width, out.Height = res.Decoded.Width(), res.Decoded.Height()
	}
	if res.Decision != nil {
		out.Decision = res.Decision.String()
	}
	return out
}

func boolParam(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

// ---- handlers -----------------------------------------------------------

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleRender(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.session.ExportPNG(w); err != nil {
		s.logger.Error("render failed", "error", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := readImage(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.session.ImportImage(r.Context(), data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toImportResponse(res))
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Decision string `json:"decision"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	d, err := importer.ParseDecision(req.Decision)
	if err != nil {
		s.writeError(w, errs.E("api.decision", errs.KindInvalid, err))
		return
	}
	res, err := s.session.ResolveImport(d)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toImportResponse(res))
}

func (s *Server) handleAttach(w http.ResponseWriter, r *http.Request) {
	data, err := readImage(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ref, err := s.session.AttachImage(data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"imageId": string(ref)})
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	s.session.Clear()
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"info":    s.session.HistoryInfo(),
		"entries": s.session.History(),
	})
}

func (s *Server) handleUndo(w http.ResponseWriter, _ *http.Request) {
	if _, err := s.session.Undo(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.HistoryInfo())
}

func (s *Server) handleRedo(w http.ResponseWriter, _ *http.Request) {
	if _, err := s.session.Redo(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.HistoryInfo())
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Zoom float64 `json:"zoom"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"zoom": s.session.SetZoom(req.Zoom)})
}

func (s *Server) handleZoomFit(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{"zoom": s.session.FitToViewport()})
}

func (s *Server) handleResizeCanvas(w http.ResponseWriter, r *http.Request) {
	var req viewport.Request
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := s.session.ResizeCanvas(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Save(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.StoredAdjustments())
}

// ---- adjustments --------------------------------------------------------

func (s *Server) handleGetAdjustments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Adjustments())
}

// handleApplyAdjustments previews a set. Fields absent from the body keep
// their defaults; ?immediate=true skips the debounce.
func (s *Server) handleApplyAdjustments(w http.ResponseWriter, r *http.Request) {
	var set adjust.Set
	if err := decodeBody(r, &set); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.session.Adjust(set, boolParam(r, "immediate")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, set.Clamp())
}

func (s *Server) handleFields(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, adjust.Fields())
}

func (s *Server) handleResetAdjustments(w http.ResponseWriter, _ *http.Request) {
	if err := s.session.ResetAdjustments(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Adjustments())
}

func (s *Server) handleCommitAdjustments(w http.ResponseWriter, _ *http.Request) {
	if err := s.session.CommitAdjustments(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.StoredAdjustments())
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, adjust.Presets())
}

func (s *Server) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.session.ApplyPreset(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
