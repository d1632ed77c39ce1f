// Package config loads counttype settings from an optional YAML file with
// COUNTTYPE_* environment overrides. Command-line flags are applied on top
// by the cli package.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yoanbernabeu/counttype/stats"
)

// DefaultFileName is looked up in the working directory when no config
// path is given. Its absence is not an error.
const DefaultFileName = "counttype.yaml"

// Config is the top-level configuration.
type Config struct {
	Output       string        `yaml:"output"`
	Vocab        string        `yaml:"vocab"`
	Time         bool          `yaml:"time"`
	Ignore       []string      `yaml:"ignore"`
	Gitignore    bool          `yaml:"gitignore"`
	MaxLineBytes int           `yaml:"maxLineBytes"`
	Logging      LoggingConfig `yaml:"logging"`
	Plot         PlotConfig    `yaml:"plot"`
	Watch        WatchConfig   `yaml:"watch"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// PlotConfig holds the default image size of the graph command, in inches.
type PlotConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// WatchConfig controls count --watch.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Output:       stats.DefaultOutput,
		Vocab:        "vocabulary",
		Gitignore:    true,
		MaxLineBytes: 16 * 1024 * 1024,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Plot: PlotConfig{
			Width:  6.4,
			Height: 4.8,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Load reads the YAML file at path and applies environment overrides.
// With an empty path, DefaultFileName is used when it exists.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	case !explicit && errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no command can work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("config: output base name must not be empty")
	}
	if strings.TrimSpace(c.Vocab) == "" {
		return fmt.Errorf("config: vocab base name must not be empty")
	}
	if c.MaxLineBytes <= 0 {
		return fmt.Errorf("config: maxLineBytes must be positive, got %d", c.MaxLineBytes)
	}
	if c.Plot.Width <= 0 || c.Plot.Height <= 0 {
		return fmt.Errorf("config: plot size must be positive, got %gx%g", c.Plot.Width, c.Plot.Height)
	}
	return nil
}

// applyEnvOverrides reads COUNTTYPE_* environment variables and overrides
// the corresponding fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COUNTTYPE_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("COUNTTYPE_VOCAB"); v != "" {
		cfg.Vocab = v
	}
	if v := os.Getenv("COUNTTYPE_TIME"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Time = b
		}
	}
	if v := os.Getenv("COUNTTYPE_IGNORE"); v != "" {
		cfg.Ignore = strings.Split(v, ",")
	}
	if v := os.Getenv("COUNTTYPE_MAX_LINE_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxLineBytes = n
		}
	}
	if v := os.Getenv("COUNTTYPE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("COUNTTYPE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("COUNTTYPE_GITIGNORE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Gitignore = b
		}
	}
	if v := os.Getenv("COUNTTYPE_PLOT_WIDTH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Plot.Width = f
		}
	}
	if v := os.Getenv("COUNTTYPE_PLOT_HEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Plot.Height = f
		}
	}
	if v := os.Getenv("COUNTTYPE_WATCH_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Watch.Debounce = d
		}
	}
}
