// Package config loads application configuration from an optional YAML file
// plus environment variables. Credentials only ever come from the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// CredentialEnvPrefix is the environment variable carrying the primary API
// credential. Additional credentials use the _2, _3, ... suffixes.
const CredentialEnvPrefix = "STUDYKIT_API_KEY"

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	ReadTimeout  int    `yaml:"read_timeout_secs"`
	WriteTimeout int    `yaml:"write_timeout_secs"`
}

// GenerationConfig tunes the invocation layer.
type GenerationConfig struct {
	Model       string `yaml:"model"`
	MaxAttempts int    `yaml:"max_attempts"`
	BackoffMS   int    `yaml:"backoff_base_ms"`
}

// CacheConfig tunes the result cache.
type CacheConfig struct {
	Capacity int `yaml:"capacity"`
	TTLHours int `yaml:"ttl_hours"`
}

// RetrievalConfig tunes context retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// Config is the root configuration. Zero fields fall back to defaults.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Generation GenerationConfig `yaml:"generation"`
	Cache      CacheConfig      `yaml:"cache"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server:     ServerConfig{Addr: ":8080", ReadTimeout: 30, WriteTimeout: 120},
		Generation: GenerationConfig{MaxAttempts: 3, BackoffMS: 1000},
		Cache:      CacheConfig{Capacity: 5, TTLHours: 24},
		Retrieval:  RetrievalConfig{TopK: 5},
	}
}

// Load reads path and merges it over the defaults. A missing file is not an
// error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// BackoffBase converts the configured base delay.
func (c GenerationConfig) BackoffBase() time.Duration {
	return time.Duration(c.BackoffMS) * time.Millisecond
}

// TTL converts the configured entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// Credentials collects API credentials from the environment:
// STUDYKIT_API_KEY, then STUDYKIT_API_KEY_2, _3, ... until the first gap.
func Credentials() []string {
	var keys []string
	if k := os.Getenv(CredentialEnvPrefix); k != "" {
		keys = append(keys, k)
	}
	for i := 2; ; i++ {
		k := os.Getenv(CredentialEnvPrefix + "_" + strconv.Itoa(i))
		if k == "" {
			break
		}
		keys = append(keys, k)
	}
	return keys
}

// Env returns an environment variable or a default.
func Env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
