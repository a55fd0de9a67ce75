package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the runner configuration file.
type Config struct {
	// ScriptName overrides the name relative imports resolve against.
	ScriptName string `yaml:"scriptName"`
	MaxDepth   int    `yaml:"maxDepth"`
	LogLevel   string `yaml:"logLevel"`
	// Allow lists the files readInput and the file loader may read.
	Allow []string `yaml:"allow"`
	// Store is the path of the SQLite module store, if any.
	Store string `yaml:"store"`
	// Endowments are extra data values installed in the root scope.
	Endowments map[string]interface{} `yaml:"endowments"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		MaxDepth: DefaultMaxDepth,
		LogLevel: DefaultLogLevel,
	}
}

// Load reads the configuration file at path. Relative paths inside the file
// are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes a YAML configuration, filling in defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.MaxDepth < 0 {
		return nil, fmt.Errorf("maxDepth must not be negative, got %d", cfg.MaxDepth)
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolve(base string) {
	for i, p := range c.Allow {
		c.Allow[i] = resolvePath(base, p)
	}
	if c.Store != "" && c.Store != ":memory:" {
		c.Store = resolvePath(base, c.Store)
	}
	if c.ScriptName != "" {
		c.ScriptName = resolvePath(base, c.ScriptName)
	}
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Level maps LogLevel onto a slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return slog.LevelWarn, fmt.Errorf("logLevel: %w", err)
	}
	return level, nil
}
