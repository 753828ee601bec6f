// Package config loads application settings from an optional YAML file
// overlaid with TODOAPI_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig `yaml:"server" envPrefix:"TODOAPI_"`
	Store  StoreConfig  `yaml:"store" envPrefix:"TODOAPI_STORE_"`
	Log    LogConfig    `yaml:"log" envPrefix:"TODOAPI_LOG_"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	MetricsEnabled  bool          `yaml:"metrics_enabled" env:"METRICS_ENABLED"`
}

// StoreConfig selects and configures the storage backend.
type StoreConfig struct {
	// Driver is one of memory, sqlite3, postgres or neo4j.
	Driver  string        `yaml:"driver" env:"DRIVER"`
	DSN     string        `yaml:"dsn" env:"DSN"`
	Migrate bool          `yaml:"migrate" env:"MIGRATE"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`

	Neo4j Neo4jConfig `yaml:"neo4j" envPrefix:"NEO4J_"`
}

// Neo4jConfig holds the Neo4j connection settings.
type Neo4jConfig struct {
	URI      string `yaml:"uri" env:"URI"`
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`
	Database string `yaml:"database" env:"DATABASE"`
}

// LogConfig controls the logrus logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            "0.0.0.0:8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MetricsEnabled:  true,
		},
		Store: StoreConfig{
			Driver:  "memory",
			Migrate: true,
			Timeout: 5 * time.Second,
			Neo4j: Neo4jConfig{
				URI:      "neo4j://neo4j:7687",
				Username: "neo4j",
				Password: "password",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty) and the environment, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server addr is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server shutdown timeout must be positive")
	}
	if c.Store.Timeout <= 0 {
		return errors.New("store timeout must be positive")
	}

	switch strings.ToLower(c.Store.Driver) {
	case "memory":
	case "sqlite", "sqlite3", "postgres", "postgresql":
		if c.Store.DSN == "" {
			return fmt.Errorf("store dsn is required for driver %q", c.Store.Driver)
		}
	case "neo4j":
		if c.Store.Neo4j.URI == "" {
			return errors.New("neo4j uri is required for neo4j storage")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
