// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/navstack/internal/transition"
)

// Default configuration values.
const (
	DefaultStyle         = "default"
	DefaultFrameInterval = 16 * time.Millisecond
	DefaultLogLevel      = "warn"
)

// Config represents the navstack configuration.
type Config struct {
	Navigation NavigationConfig `toml:"navigation"`
	Animation  AnimationConfig  `toml:"animation"`
	Bar        BarConfig        `toml:"bar"`
	Log        LogConfig        `toml:"log"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Demo       DemoConfig       `toml:"demo"`
}

// NavigationConfig holds controller options.
type NavigationConfig struct {
	Style  string `toml:"style"`  // default, stack
	Strict bool   `toml:"strict"` // Panic on overlapping transitions
}

// AnimationConfig holds engine options.
type AnimationConfig struct {
	Enabled       bool     `toml:"enabled"`        // false = every transition is instant
	FrameInterval Duration `toml:"frame_interval"` // Tick period for the terminal host
}

// BarConfig holds the initial bar state.
type BarConfig struct {
	Hidden bool `toml:"hidden"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Addr string `toml:"addr"` // Empty = disabled
}

// DemoConfig lists the screens offered by the terminal host.
type DemoConfig struct {
	Screens []ScreenConfig `toml:"screens"`
}

// ScreenConfig describes one screen.
type ScreenConfig struct {
	ID        string   `toml:"id" yaml:"id"`
	Title     string   `toml:"title" yaml:"title"`
	BackLabel string   `toml:"back_label,omitempty" yaml:"back_label,omitempty"`
	Items     []string `toml:"items,omitempty" yaml:"items,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Navigation: NavigationConfig{
			Style:  DefaultStyle,
			Strict: false,
		},
		Animation: AnimationConfig{
			Enabled:       true,
			FrameInterval: Duration(DefaultFrameInterval),
		},
		Bar: BarConfig{
			Hidden: false,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Demo: DemoConfig{
			Screens: []ScreenConfig{
				{ID: "home", Title: "Home"},
				{ID: "library", Title: "Library", BackLabel: "Library"},
				{ID: "album", Title: "Album", Items: []string{"Play"}},
				{ID: "track", Title: "Track", Items: []string{"Share"}},
				{ID: "settings", Title: "Settings", BackLabel: "Done"},
			},
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "navstack", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	// Screens from the file replace the defaults rather than extend them.
	defaults := cfg.Demo.Screens
	cfg.Demo.Screens = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if len(cfg.Demo.Screens) == 0 {
		cfg.Demo.Screens = defaults
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that cannot be expressed in TOML types alone.
func (c *Config) Validate() error {
	if _, err := transition.ParseStyle(c.Navigation.Style); err != nil {
		return fmt.Errorf("navigation.style: %w", err)
	}
	if c.Animation.FrameInterval.Duration() <= 0 {
		return fmt.Errorf("animation.frame_interval must be positive")
	}
	seen := make(map[string]bool, len(c.Demo.Screens))
	for _, s := range c.Demo.Screens {
		if s.ID == "" {
			return fmt.Errorf("demo.screens: id cannot be empty")
		}
		if seen[s.ID] {
			return fmt.Errorf("demo.screens: duplicate id %q", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Style returns the parsed transition style, falling back to the default.
func (c *Config) Style() transition.Style {
	s, err := transition.ParseStyle(c.Navigation.Style)
	if err != nil {
		return transition.StyleDefault
	}
	return s
}

// LogLevel parses Log.Level. Unknown values map to warn.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
