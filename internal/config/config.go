package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/treetab"
	"github.com/tsawler/treetab/flatten"
	"github.com/tsawler/treetab/format"
	"github.com/tsawler/treetab/project"
)

// Output formats understood by the command.
const (
	OutputCSV      = "csv"
	OutputMarkdown = "markdown"
	OutputJSON     = "json"
	OutputText     = "text"
)

// Config holds everything needed to run one extraction.
type Config struct {
	Input  string `yaml:"input"`
	Format string `yaml:"format"` // empty means detect

	// Package part selection
	Part  string `yaml:"part"`
	Sheet string `yaml:"sheet"`

	Encoding  string `yaml:"encoding"`
	TrimSpace bool   `yaml:"trim_space"`

	Path      string `yaml:"path"`
	Depth     int    `yaml:"depth"`
	Shorten   int    `yaml:"shorten"`
	Separator string `yaml:"separator"`

	// JSON projection
	SkipNull bool              `yaml:"skip_null"`
	Rename   map[string]string `yaml:"rename,omitempty"`

	Output    string `yaml:"output"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Path:      treetab.DefaultPath,
		Depth:     flatten.DefaultMaxDepth,
		Separator: flatten.DefaultSeparator,
		Output:    OutputCSV,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// LoadFile loads and parses a YAML configuration file from the given path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML data on top of Default. Keys that are absent keep
// their default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

// Marshal serializes a Config to YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func (c *Config) normalize() {
	c.Output = strings.ToLower(strings.TrimSpace(c.Output))
	if c.Output == "md" {
		c.Output = OutputMarkdown
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
}

// Validate checks that the configuration can be run.
func (c *Config) Validate() error {
	c.normalize()

	var errs []error
	if c.Input == "" {
		errs = append(errs, errors.New("input is required"))
	}
	if c.Format != "" && c.InputFormat() == format.Unknown {
		errs = append(errs, fmt.Errorf("unknown format %q", c.Format))
	}
	if c.Path == "" {
		errs = append(errs, errors.New("path cannot be empty"))
	}
	if c.Depth < 0 {
		errs = append(errs, fmt.Errorf("depth must not be negative, got %d", c.Depth))
	}
	if c.Shorten < 0 {
		errs = append(errs, fmt.Errorf("shorten must not be negative, got %d", c.Shorten))
	}
	switch c.Output {
	case OutputCSV, OutputMarkdown, OutputJSON, OutputText:
	default:
		errs = append(errs, fmt.Errorf("invalid output %q: must be 'csv', 'markdown', 'json', or 'text'", c.Output))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", c.LogFormat))
	}
	return errors.Join(errs...)
}

// InputFormat returns the configured format, or format.Unknown when the
// format should be taken from the input itself.
func (c *Config) InputFormat() format.Format {
	return format.Parse(c.Format)
}

// Validator builds the projection used for JSON output.
func (c *Config) Validator() project.Validator {
	v := project.Validator(project.KeepAll)
	if c.SkipNull {
		v = project.SkipNull(v)
	}
	if len(c.Rename) > 0 {
		v = project.Rename(c.Rename, v)
	}
	return v
}

// Extractor returns an Extractor configured from c.
func (c *Config) Extractor(logger *slog.Logger) *treetab.Extractor {
	var ext *treetab.Extractor
	if f := c.InputFormat(); f != format.Unknown {
		ext = treetab.OpenAs(c.Input, f)
	} else {
		ext = treetab.Open(c.Input)
	}

	ext = ext.Select(c.Path).
		Depth(c.Depth).
		Shorten(c.Shorten, c.Separator).
		Validator(c.Validator()).
		Logger(logger)
	if c.Part != "" {
		ext = ext.Part(c.Part)
	}
	if c.Sheet != "" {
		ext = ext.Sheet(c.Sheet)
	}
	if c.Encoding != "" {
		ext = ext.Encoding(c.Encoding)
	}
	if c.TrimSpace {
		ext = ext.TrimSpace()
	}
	return ext
}
