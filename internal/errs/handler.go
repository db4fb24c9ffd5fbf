package errs

import (
	"log/slog"
)

// Handler receives conditions the engine recovers from locally and never
// returns to its caller: filter fallbacks, clamped dimensions, failed
// background saves.
type Handler interface {
	Warn(err error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(err error)

// Warn calls f(err).
func (f HandlerFunc) Warn(err error) { f(err) }

// LogHandler logs warnings through slog.
type LogHandler struct {
	Logger *slog.Logger
}

// Warn logs err at warning level with its kind.
func (h *LogHandler) Warn(err error) {
	if err == nil {
		return
	}
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("engine warning", "kind", KindOf(err).String(), "err", err)
}

// Discard drops every warning.
var Discard Handler = HandlerFunc(func(error) {})
