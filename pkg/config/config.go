// Package config handles loading and saving candlecourse configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/candlecourse/config.yaml
//   - Data:    ~/.local/share/candlecourse/ (exported snapshots, databases)
//   - State:   ~/.local/state/candlecourse/ (diagnostics log)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const appName = "candlecourse"

// UIConfig holds UI preference settings.
type UIConfig struct {
	SplitRatio  float64 `yaml:"split_ratio,omitempty" validate:"omitempty,gte=0.2,lte=0.8"` // Navigation pane share of the width
	ShowChart   *bool   `yaml:"show_chart,omitempty"`
	ShowDetails *bool   `yaml:"show_details,omitempty"`
	Mouse       *bool   `yaml:"mouse,omitempty"`
}

// ChartConfig overrides chart colors. Empty fields keep the built-in palette.
type ChartConfig struct {
	Background string `yaml:"background,omitempty" validate:"omitempty,hexcolor"`
	Text       string `yaml:"text,omitempty" validate:"omitempty,hexcolor"`
	Grid       string `yaml:"grid,omitempty" validate:"omitempty,hexcolor"`
	Up         string `yaml:"up,omitempty" validate:"omitempty,hexcolor"`
	Down       string `yaml:"down,omitempty" validate:"omitempty,hexcolor"`
}

// CurriculumConfig selects the curriculum source.
type CurriculumConfig struct {
	Path  string `yaml:"path,omitempty"`  // Empty uses the built-in course
	Seed  uint64 `yaml:"seed,omitempty"`  // 0 means a fresh seed per run
	Watch bool   `yaml:"watch,omitempty"` // Reload on file change
}

// LogConfig controls diagnostics output.
type LogConfig struct {
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	File  string `yaml:"file,omitempty"` // Defaults to StateDir()/candlecourse.log
}

// Config is the top-level configuration for candlecourse.
type Config struct {
	UI         UIConfig         `yaml:"ui,omitempty"`
	Chart      ChartConfig      `yaml:"chart,omitempty"`
	Curriculum CurriculumConfig `yaml:"curriculum,omitempty"`
	Log        LogConfig        `yaml:"log,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			SplitRatio: 0.3,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ChartEnabled reports whether the chart pane should be built.
func (c Config) ChartEnabled() bool {
	return c.UI.ShowChart == nil || *c.UI.ShowChart
}

// DetailsEnabled reports whether the details pane should be built.
func (c Config) DetailsEnabled() bool {
	return c.UI.ShowDetails == nil || *c.UI.ShowDetails
}

// MouseEnabled reports whether mouse events should be captured.
func (c Config) MouseEnabled() bool {
	return c.UI.Mouse == nil || *c.UI.Mouse
}

// Validate checks value ranges and color formats.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ConfigDir returns the XDG config directory for candlecourse.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// DataDir returns the XDG data directory for candlecourse.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", appName)
}

// StateDir returns the XDG state directory for candlecourse.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// LogPath returns the diagnostics log file, creating its directory.
func (c Config) LogPath() (string, error) {
	path := c.Log.File
	if path == "" {
		dir := StateDir()
		if dir == "" {
			return "", fmt.Errorf("cannot determine state directory")
		}
		path = filepath.Join(dir, appName+".log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating log directory: %w", err)
	}
	return path, nil
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist. On a parse or validation
// error the defaults are returned alongside the error.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	parsed := DefaultConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := parsed.Validate(); err != nil {
		return cfg, err
	}

	parsed.Curriculum.Path = expandHome(parsed.Curriculum.Path)
	parsed.Log.File = expandHome(parsed.Log.File)

	return parsed, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
