package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/inamate/skycanvas/internal/interact"
	"github.com/inamate/skycanvas/internal/shape"
	"github.com/inamate/skycanvas/internal/viewer"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	DatabaseURL    string `envconfig:"DATABASE_URL" default:""`
	JWTSecret      string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	// OperatorPasswordHash is the bcrypt hash checked by /auth/login. Empty
	// disables password login.
	OperatorPasswordHash string `envconfig:"OPERATOR_PASSWORD_HASH" default:""`

	RedrawInterval time.Duration `envconfig:"REDRAW_INTERVAL" default:"20ms"`
	SelectRadius   float64       `envconfig:"SELECT_RADIUS" default:"5"`
	EditRadius     float64       `envconfig:"EDIT_RADIUS" default:"7"`
	DrawKind       string        `envconfig:"DRAW_KIND" default:"rectangle"`
	AutoSelect     bool          `envconfig:"AUTO_SELECT" default:"true"`
	MultiSelect    bool          `envconfig:"MULTI_SELECT" default:"true"`
	WindowWidth    int           `envconfig:"WINDOW_WIDTH" default:"800"`
	WindowHeight   int           `envconfig:"WINDOW_HEIGHT" default:"600"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Origins splits AllowedOrigins on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Controller builds the interaction options from the draw and pick
// settings.
func (c *Config) Controller() (interact.Options, error) {
	kind, err := shape.ParseKind(c.DrawKind)
	if err != nil {
		return interact.Options{}, err
	}
	opts := interact.DefaultOptions()
	opts.DrawKind = kind
	opts.DrawParams.SelectRadius = c.SelectRadius
	opts.AutoSelect = c.AutoSelect
	opts.MultiSelect = c.MultiSelect
	opts.EditRadius = c.EditRadius
	opts.RedrawInterval = c.RedrawInterval
	return opts, nil
}

// Viewer builds the options for a new viewer window.
func (c *Config) Viewer() (viewer.Options, error) {
	ctrl, err := c.Controller()
	if err != nil {
		return viewer.Options{}, err
	}
	return viewer.Options{
		Width:      float64(c.WindowWidth),
		Height:     float64(c.WindowHeight),
		Controller: ctrl,
	}, nil
}
