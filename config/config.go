// Package config loads SDK settings from layered sources with priority:
// environment variables (highest), an optional YAML file, then built-in
// defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/parseflow/parseflow-go/client"
)

const (
	// DefaultFile is the YAML file Load looks for in the working directory
	DefaultFile = "parseflow.yaml"

	envPrefix = "PARSEFLOW_"
	delim     = "."
)

// Config is the full SDK configuration. It is resolved once and read-only
// afterwards.
type Config struct {
	// Endpoint is the API base URL
	Endpoint string `koanf:"endpoint" validate:"required,url"`
	// API carries the credential
	API APIConfig `koanf:"api"`
	// Timeout bounds each request attempt
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	// Retry configures the request pipeline's attempt cap
	Retry RetryConfig `koanf:"retry"`
	// Poll configures operation waiting
	Poll PollConfig `koanf:"poll"`
	// Log configures the SDK's structured logging
	Log LogConfig `koanf:"log"`
}

// APIConfig holds the credential sent with every request
type APIConfig struct {
	Key string `koanf:"key" validate:"required"`
}

// RetryConfig bounds the request pipeline's retries
type RetryConfig struct {
	// Attempts is the total attempt cap per logical call
	Attempts int `koanf:"attempts" validate:"min=1"`
}

// PollConfig tunes waiting for asynchronous operations
type PollConfig struct {
	Interval time.Duration `koanf:"interval" validate:"gt=0"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
}

// LogConfig tunes the SDK's structured logging
type LogConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Pretty bool   `koanf:"pretty"`
}

// Load resolves configuration from defaults, DefaultFile when present, and
// PARSEFLOW_* environment variables.
func Load() (*Config, error) {
	var path string
	if _, err := os.Stat(DefaultFile); err == nil {
		path = DefaultFile
	}
	return LoadFile(path)
}

// LoadFile resolves configuration using the given YAML file as the middle
// layer. An empty path skips the file layer.
func LoadFile(path string) (*Config, error) {
	k, err := newKoanf()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}
	return finish(k)
}

// LoadBytes resolves configuration using in-memory YAML as the middle layer.
func LoadBytes(b []byte) (*Config, error) {
	k, err := newKoanf()
	if err != nil {
		return nil, err
	}
	if err := k.Load(rawbytes.Provider(b), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse config bytes: %w", err)
	}
	return finish(k)
}

func newKoanf() (*koanf.Koanf, error) {
	k := koanf.New(delim)
	if err := k.Load(confmap.Provider(defaults(), delim), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	return k, nil
}

// finish layers environment variables on top, unmarshals, and validates.
func finish(k *koanf.Koanf) (*Config, error) {
	if err := k.Load(envprovider.Provider(envPrefix, delim, func(s string) string {
		// PARSEFLOW_RETRY_ATTEMPTS -> retry.attempts
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", delim)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func defaults() map[string]any {
	return map[string]any{
		"endpoint":       "https://api.parseflow.dev",
		"timeout":        "30s",
		"retry.attempts": 3,
		"poll.interval":  "5s",
		"poll.timeout":   "1h",
		"log.level":      "info",
		"log.pretty":     false,
	}
}

// ClientConfig converts the resolved settings into a request pipeline
// configuration.
func (c *Config) ClientConfig() *client.Config {
	return &client.Config{
		BaseURL:     c.Endpoint,
		APIKey:      c.API.Key,
		Timeout:     c.Timeout,
		MaxAttempts: c.Retry.Attempts,
	}
}
