// Package config loads the settings of the mtbbbench command from an
// optional YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the benchmark settings. Threads is passed to the process
// wide mtbb.Scheduler; 0 means all available CPUs.
type Config struct {
	Threads   int      `yaml:"threads"`
	Workloads []string `yaml:"workloads"`
	Size      int      `yaml:"size"`
	Grain     int      `yaml:"grain"`
	Seed      uint64   `yaml:"seed"`
	LogLevel  string   `yaml:"log_level"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Threads:   0,
		Workloads: []string{"for", "step", "foreach", "sort"},
		Size:      1 << 20,
		Grain:     1 << 10,
		Seed:      1,
		LogLevel:  "info",
	}
}

// Load reads the YAML file at path over the defaults. An empty path yields
// the defaults.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document over the defaults. Unknown keys are
// rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings for values no workload can run with.
func (c Config) Validate() error {
	var errs []error
	if c.Threads < 0 {
		errs = append(errs, fmt.Errorf("threads must not be negative, got %d", c.Threads))
	}
	if c.Size < 0 {
		errs = append(errs, fmt.Errorf("size must not be negative, got %d", c.Size))
	}
	if c.Grain < 1 {
		errs = append(errs, fmt.Errorf("grain must be positive, got %d", c.Grain))
	}
	if len(c.Workloads) == 0 {
		errs = append(errs, errors.New("no workloads selected"))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
