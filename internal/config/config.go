// Package config loads the optional studio.yaml configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file name looked up by the entry points.
const DefaultFile = "studio.yaml"

// Config represents the optional studio.yaml configuration.
type Config struct {
	Canvas  CanvasConfig  `yaml:"canvas"`
	Zoom    ZoomConfig    `yaml:"zoom"`
	History HistoryConfig `yaml:"history"`
	Adjust  AdjustConfig  `yaml:"adjust"`
	Store   StoreConfig   `yaml:"store"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// CanvasConfig holds document geometry policy.
type CanvasConfig struct {
	DefaultWidth  int `yaml:"default_width"`
	DefaultHeight int `yaml:"default_height"`
	// MinDimension is the smallest width or height a document may have.
	MinDimension int `yaml:"min_dimension"`
	// MaxDimension bounds explicit resize requests.
	MaxDimension int `yaml:"max_dimension"`
	// MaxWorkingSize bounds the longer side of a freshly imported canvas.
	MaxWorkingSize int `yaml:"max_working_size"`
	// SmallImageThreshold marks images whose longer side is "very small".
	SmallImageThreshold int `yaml:"small_image_threshold"`
	// ComfortableSize is the longer side used for very small images.
	ComfortableSize int `yaml:"comfortable_size"`
	// DuplicateOffset is how far a duplicated layer is shifted, in pixels.
	DuplicateOffset float64 `yaml:"duplicate_offset"`
}

// ZoomConfig holds zoom limits in percent.
type ZoomConfig struct {
	Min  int     `yaml:"min"`
	Max  int     `yaml:"max"`
	Step float64 `yaml:"step"`
}

// HistoryConfig holds undo stack policy.
type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

// AdjustConfig holds adjustment pipeline timing.
type AdjustConfig struct {
	Debounce      time.Duration `yaml:"debounce"`
	FrameInterval time.Duration `yaml:"frame_interval"`
	ConfirmPasses int           `yaml:"confirm_passes"`
}

// StoreConfig selects the persistence adapter.
type StoreConfig struct {
	Driver       string        `yaml:"driver"`
	Path         string        `yaml:"path"`
	ProjectID    string        `yaml:"project_id"`
	SaveDebounce time.Duration `yaml:"save_debounce"`
}

// ServerConfig configures the HTTP control surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures slog output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{
			DefaultWidth:        800,
			DefaultHeight:       600,
			MinDimension:        100,
			MaxDimension:        10000,
			MaxWorkingSize:      1200,
			SmallImageThreshold: 300,
			ComfortableSize:     600,
			DuplicateOffset:     20,
		},
		Zoom: ZoomConfig{
			Min:  10,
			Max:  1000,
			Step: 1.25,
		},
		History: HistoryConfig{
			Capacity: 50,
		},
		Adjust: AdjustConfig{
			Debounce:      16 * time.Millisecond,
			FrameInterval: 16 * time.Millisecond,
			ConfirmPasses: 2,
		},
		Store: StoreConfig{
			Driver:       "sqlite",
			Path:         "studio.db",
			ProjectID:    "default",
			SaveDebounce: time.Second,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8470",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadOptional reads the file at path over the defaults. A missing file
// yields the defaults.
func LoadOptional(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot honour.
func (c *Config) Validate() error {
	var problems []error
	if c.Canvas.MinDimension < 1 {
		problems = append(problems, errors.New("canvas.min_dimension must be positive"))
	}
	if c.Canvas.MaxDimension < c.Canvas.MinDimension {
		problems = append(problems, errors.New("canvas.max_dimension below min_dimension"))
	}
	if c.Canvas.MaxWorkingSize < c.Canvas.MinDimension {
		problems = append(problems, errors.New("canvas.max_working_size below min_dimension"))
	}
	if c.Canvas.ComfortableSize > c.Canvas.MaxWorkingSize {
		problems = append(problems, errors.New("canvas.comfortable_size above max_working_size"))
	}
	if c.Canvas.DefaultWidth < c.Canvas.MinDimension || c.Canvas.DefaultHeight < c.Canvas.MinDimension {
		problems = append(problems, errors.New("canvas default size below min_dimension"))
	}
	if c.Zoom.Min < 1 || c.Zoom.Max < c.Zoom.Min {
		problems = append(problems, fmt.Errorf("zoom range [%d,%d] is invalid", c.Zoom.Min, c.Zoom.Max))
	}
	if c.Zoom.Step <= 1 {
		problems = append(problems, errors.New("zoom.step must be greater than 1"))
	}
	if c.History.Capacity < 1 {
		problems = append(problems, errors.New("history.capacity must be positive"))
	}
	if c.Adjust.Debounce < 0 || c.Adjust.FrameInterval < 0 || c.Adjust.ConfirmPasses < 0 {
		problems = append(problems, errors.New("adjust timings must not be negative"))
	}
	switch c.Store.Driver {
	case "sqlite", "json", "memory":
	default:
		problems = append(problems, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}
	return errors.Join(problems...)
}
