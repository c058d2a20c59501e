// Package config loads the run configuration of the checker.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bankmbt/internal/trace"
)

// Config controls which fixtures a run checks and how.
type Config struct {
	// TracesDir is the directory holding the fixtures.
	TracesDir string `yaml:"traces_dir"`

	// Pattern names fixture files; it must contain exactly one %d.
	Pattern string `yaml:"pattern"`

	// MaxTraces is the exclusive upper bound on fixture indices.
	MaxTraces int `yaml:"max_traces"`

	// KeepGoing continues after the first failing fixture.
	KeepGoing bool `yaml:"keep_going"`

	// DB is the SQLite path for the step log. Empty keeps it in memory.
	DB string `yaml:"db"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		TracesDir: "traces",
		Pattern:   trace.DefaultPattern,
		MaxTraces: trace.DefaultMaxTraces,
		LogLevel:  "info",
	}
}

// Load reads a YAML configuration file on top of the defaults.
// Relative traces_dir and db paths are resolved against the directory
// of the file.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unknown keys are rejected so a misspelt option fails loudly.
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	cfg.TracesDir = resolve(base, cfg.TracesDir)
	cfg.DB = resolve(base, cfg.DB)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func resolve(base, path string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.TracesDir == "" {
		return errors.New("traces_dir is required")
	}
	if _, err := trace.ParsePattern(c.Pattern); err != nil {
		return fmt.Errorf("pattern: %w", err)
	}
	if c.MaxTraces <= 0 {
		return fmt.Errorf("max_traces must be positive, got %d", c.MaxTraces)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel converts a log_level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q (want debug, info, warn or error)", s)
	}
}
