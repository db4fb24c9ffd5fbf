package config

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds a slog logger for the configured level and format.
func NewLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	logger, _ := NewLeveledLogger(cfg, w)
	return logger
}

// NewLeveledLogger is NewLogger plus the level variable, so a config reload
// can change verbosity without rebuilding the handler.
func NewLeveledLogger(cfg LogConfig, w io.Writer) (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	level.Set(ParseLevel(cfg.Level))
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), level
	}
	return slog.New(slog.NewTextHandler(w, opts)), level
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
