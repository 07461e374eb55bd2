// Package config manages the migrationguard configuration file at
// ~/.migrationguard/config.yaml. It only covers logging and scan defaults;
// the rule set and exit codes are fixed.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("config file not found")

const (
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
	DefaultConcurrency = 4
)

var DefaultScanPatterns = []string{
	"migrations/**/*.sql",
	"prisma/migrations/**/migration.sql",
}

type Config struct {
	Log  Log  `yaml:"log"`
	Scan Scan `yaml:"scan"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"` // empty means stderr
}

type Scan struct {
	Patterns    []string `yaml:"patterns"`
	Concurrency int      `yaml:"concurrency"`
}

// Dir returns the config directory path (~/.migrationguard).
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".migrationguard")
}

// Path returns the config file path (~/.migrationguard/config.yaml).
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads and parses the config file. Returns ErrNotFound if it doesn't exist.
// Fields missing from the file keep their defaults.
func Load() (*Config, error) {
	return loadFrom(Path())
}

func loadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault returns the saved config, or the defaults when none exists.
// A config file that exists but cannot be read or parsed is still an error.
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes the config to disk, creating the directory if needed.
func Save(cfg *Config) error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(Path(), data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Marshal encodes cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		Log: Log{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Scan: Scan{
			Patterns:    append([]string(nil), DefaultScanPatterns...),
			Concurrency: DefaultConcurrency,
		},
	}
}

// Validate checks that every field holds a supported value.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (want debug, info, warn or error)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", c.Log.Format)
	}
	if c.Scan.Concurrency < 1 {
		return fmt.Errorf("invalid scan concurrency %d (must be at least 1)", c.Scan.Concurrency)
	}
	for _, p := range c.Scan.Patterns {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("scan patterns cannot contain empty entries")
		}
	}
	return nil
}
