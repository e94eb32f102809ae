// Package config holds the settings shared by every protocol server.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
)

const (
	DefaultPort    = 5001
	DefaultWorkers = 5
)

// Config is read from an optional YAML file; command-line flags override it.
type Config struct {
	Port     int    `yaml:"port"`
	Workers  int    `yaml:"workers"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the settings used when nothing else is given.
func Default() Config {
	return Config{
		Port:     DefaultPort,
		Workers:  DefaultWorkers,
		LogLevel: "info",
	}
}

// fileConfig mirrors Config with every key optional.
type fileConfig struct {
	Port     *int    `yaml:"port"`
	Workers  *int    `yaml:"workers"`
	LogLevel *string `yaml:"log_level"`
}

// Load reads path over the defaults. Keys the file leaves out keep their
// default, so an empty file yields Default(); unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	var f fileConfig
	if err := yaml.UnmarshalWithOptions(b, &f, yaml.DisallowUnknownField()); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if f.Port != nil {
		cfg.Port = *f.Port
	}
	if f.Workers != nil {
		cfg.Workers = *f.Workers
	}
	if f.LogLevel != nil {
		cfg.LogLevel = *f.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and the log level name.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range 0-65535", c.Port)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. An empty LogLevel is info.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// Addr is the listen address on all interfaces.
func (c Config) Addr() string {
	return net.JoinHostPort("0.0.0.0", strconv.Itoa(c.Port))
}
