// Package config loads notenodes settings from a YAML file with environment
// overrides, and locates the note database.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DBFileName is the database file looked up when walking up from the cwd.
const DBFileName = ".notenodes.db"

// Config is the on-disk configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Language string         `yaml:"language"` // used until the store holds a "language" setting
	Logging  LoggingConfig  `yaml:"logging"`
	Render   RenderConfig   `yaml:"render"`
}

// DatabaseConfig configures the node store.
type DatabaseConfig struct {
	Path          string `yaml:"path"`
	StrictParents bool   `yaml:"strict_parents"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// RenderConfig configures Markdown output.
type RenderConfig struct {
	TermStyle string `yaml:"term_style"` // glamour style: auto, dark, light, notty
	CodeStyle string `yaml:"code_style"` // chroma style for HTML output
	WordWrap  int    `yaml:"word_wrap"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Language: "en",
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Render: RenderConfig{
			TermStyle: "auto",
			CodeStyle: "github",
			WordWrap:  100,
		},
	}
}

// DefaultPath returns ~/.config/notenodes/config.yaml (or the XDG equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "notenodes", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("NOTENODES_DB"); path != "" {
		c.Database.Path = path
	}
	if lang := os.Getenv("NOTENODES_LANG"); lang != "" {
		c.Language = lang
	}
	if level := os.Getenv("NOTENODES_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging.format %q", c.Logging.Format)
	}
	if c.Render.WordWrap < 0 {
		return fmt.Errorf("render.word_wrap must not be negative")
	}
	return nil
}
