package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultMarginWidth fits four digits of line number plus a space.
const DefaultMarginWidth = 5

// Config holds viewer settings read from the config file and flags.
type Config struct {
	LineNumbers    bool `yaml:"line_numbers"`
	MarginWidth    int  `yaml:"margin_width"`
	ShowWhitespace bool `yaml:"show_whitespace"`
	Header         bool `yaml:"header"`
	Footer         bool `yaml:"footer"`
	Log            Log  `yaml:"log"`
}

// Log configures the debug log. The terminal belongs to the viewer, so
// logging only goes to a file.
type Log struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LineNumbers:    true,
		MarginWidth:    DefaultMarginWidth,
		ShowWhitespace: true,
		Header:         true,
		Footer:         true,
		Log:            Log{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/peek/config.yaml or the platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "peek", "config.yaml"), nil
}

// Load reads path over the defaults. If path is empty the default location is
// used and a missing file there is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.MarginWidth < 0 {
		return fmt.Errorf("margin_width must not be negative, got %d", c.MarginWidth)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Margin returns the number of cells reserved for line numbers.
func (c Config) Margin() int {
	if !c.LineNumbers {
		return 0
	}
	return c.MarginWidth
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}
