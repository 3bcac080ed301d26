// Package config loads run configuration from a YAML file
// validated against an embedded JSON schema, a .env file and
// VERIFY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"digital.vasic.verify/pkg/verr"
)

// DefaultFile is the config file looked up in the working
// directory when none is given.
const DefaultFile = "verify.yaml"

// Reporter formats.
const (
	FormatConsole  = "console"
	FormatXML      = "xml"
	FormatJSON     = "json"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Duration is a time.Duration written as "1m30s" in YAML.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// ReporterConfig selects one report sink.
type ReporterConfig struct {
	// Format is one of the Format constants.
	Format string `yaml:"format"`

	// Output is the destination file; empty means stdout.
	Output string `yaml:"output,omitempty"`

	// Canonical writes RFC 8785 canonical JSON.
	Canonical bool `yaml:"canonical,omitempty"`
}

// LogConfig configures the run log. Verbose logs to stderr;
// File receives JSON lines at Level and above.
type LogConfig struct {
	Level   string `yaml:"level"`
	File    string `yaml:"file,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty"`
}

// HistoryConfig configures the SQLite run history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MonitorConfig configures the live monitor server.
type MonitorConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Config is the complete run configuration.
type Config struct {
	Name            string           `yaml:"name"`
	Reporters       []ReporterConfig `yaml:"reporters"`
	Success         bool             `yaml:"success"`
	Durations       bool             `yaml:"durations"`
	AbortAfter      int              `yaml:"abort_after"`
	AllowEmpty      bool             `yaml:"allow_empty"`
	StopOnInterrupt bool             `yaml:"stop_on_interrupt"`
	Timeout         Duration         `yaml:"timeout"`
	StaleThreshold  Duration         `yaml:"stale_threshold"`
	Color           string           `yaml:"color"`
	OutputDir       string           `yaml:"output_dir,omitempty"`
	Log             LogConfig        `yaml:"log"`
	History         HistoryConfig    `yaml:"history"`
	Monitor         MonitorConfig    `yaml:"monitor"`
}

// Default returns the configuration used when no file or
// environment overrides apply.
func Default() *Config {
	return &Config{
		Name:            "verify",
		Reporters:       []ReporterConfig{{Format: FormatConsole}},
		StopOnInterrupt: true,
		Color:           ColorAuto,
		Log:             LogConfig{Level: "info"},
		History:         HistoryConfig{Path: ".verify/history.db"},
		Monitor:         MonitorConfig{Addr: "127.0.0.1:8089"},
	}
}

// Load reads the YAML file at path over the defaults. A
// missing file is an error unless optional is set.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, verr.Wrap(verr.Config,
			fmt.Sprintf("failed to read config %s", path), err)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, verr.Wrap(verr.Config,
			fmt.Sprintf("invalid config %s", path), err)
	}
	return cfg, nil
}

// Parse validates data and decodes it into cfg.
func Parse(data []byte, cfg *Config) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if doc == nil {
		return nil
	}
	if err := Validate(doc); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// ColorSetting returns nil for automatic detection, or the
// forced choice.
func (c *Config) ColorSetting() *bool {
	var on bool
	switch c.Color {
	case ColorAlways:
		on = true
	case ColorNever:
		on = false
	default:
		return nil
	}
	return &on
}
