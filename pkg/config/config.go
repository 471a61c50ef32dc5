// Package config loads aurora settings from an optional YAML file and the
// environment. Command-line flags are applied on top by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/daviddao/aurora/pkg/logger"
)

const (
	DefaultDir      = ".aurora"
	DefaultLogLevel = "info"
	DefaultWorkers  = 4
)

var (
	// DefaultDB is the database path used when nothing else is configured.
	DefaultDB = filepath.Join(DefaultDir, "aurora.db")

	// DefaultPath is where init writes the config file and where the CLI
	// looks for one when --config is not given.
	DefaultPath = filepath.Join(DefaultDir, "config.yaml")
)

// Environment variables that override the file.
const (
	EnvDB       = "AURORA_DB"
	EnvReplica  = "AURORA_REPLICA"
	EnvLogLevel = "AURORA_LOG_LEVEL"
	EnvWorkers  = "AURORA_WORKERS"
)

// Config holds the settings shared by every command.
type Config struct {
	// DB is the SQLite database path.
	DB string `yaml:"db"`

	// Replica is the local replica ID. Empty means commands that need one
	// must be given --replica.
	Replica string `yaml:"replica"`

	LogLevel string `yaml:"log_level"`

	// Workers bounds how many conversations a batch ingest processes at once.
	Workers int `yaml:"workers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DB:       DefaultDB,
		LogLevel: DefaultLogLevel,
		Workers:  DefaultWorkers,
	}
}

// Load reads path (if non-empty) over the defaults, then applies
// environment overrides and validates the result. A missing file is an
// error only when path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDB); v != "" {
		c.DB = v
	}
	if v := os.Getenv(EnvReplica); v != "" {
		c.Replica = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	return nil
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	if c.DB == "" {
		return errors.New("config: db path is empty")
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// Save writes c as YAML, creating the parent directory.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
