// Package config loads shuowen settings from a TOML file and the
// environment. Environment variables override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/gatzby-git/shuowenjiezi/internal/cache"
	"github.com/gatzby-git/shuowenjiezi/internal/deepseek"
	"github.com/gatzby-git/shuowenjiezi/internal/store"
)

// Config holds all user-facing configuration for shuowen.
type Config struct {
	Data      DataConfig      `toml:"data"`
	Upstream  UpstreamConfig  `toml:"upstream"`
	Cache     CacheConfig     `toml:"cache"`
	Server    ServerConfig    `toml:"server"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

type DataConfig struct {
	DBPath string `toml:"db_path" env:"SHUOWEN_DB"`
}

type UpstreamConfig struct {
	BaseURL string `toml:"base_url" env:"SHUOWEN_BASE_URL"`
	// APIKey is only ever read from the environment.
	APIKey         string        `toml:"-" env:"DEEPSEEK_API_KEY"`
	Model          string        `toml:"model" env:"SHUOWEN_MODEL"`
	ReasoningModel string        `toml:"reasoning_model" env:"SHUOWEN_REASONING_MODEL"`
	MaxTokens      int           `toml:"max_tokens"`
	Temperature    float64       `toml:"temperature"`
	TopP           float64       `toml:"top_p"`
	MaxRetries     int           `toml:"max_retries"`
	BackoffBase    time.Duration `toml:"backoff_base"`
	Timeout        time.Duration `toml:"timeout" env:"SHUOWEN_TIMEOUT"`
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64 `toml:"rate_limit" env:"SHUOWEN_RATE_LIMIT"`
}

type CacheConfig struct {
	CeilingBytes      int           `toml:"ceiling_bytes"`
	QuotaBytes        int64         `toml:"quota_bytes"`
	RecommendationTTL time.Duration `toml:"recommendation_ttl"`
}

type ServerConfig struct {
	Addr string `toml:"addr" env:"SHUOWEN_ADDR"`
}

type TelemetryConfig struct {
	Endpoint    string `toml:"endpoint" env:"SHUOWEN_OTEL_ENDPOINT"`
	ServiceName string `toml:"service_name"`
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Data: DataConfig{DBPath: DefaultDBPath()},
		Upstream: UpstreamConfig{
			BaseURL:        deepseek.DefaultBaseURL,
			Model:          deepseek.DefaultModel,
			ReasoningModel: deepseek.DefaultReasoningModel,
			MaxTokens:      deepseek.DefaultMaxTokens,
			Temperature:    deepseek.DefaultTemperature,
			TopP:           deepseek.DefaultTopP,
			MaxRetries:     deepseek.DefaultMaxRetries,
			BackoffBase:    deepseek.DefaultBackoffBase,
			Timeout:        60 * time.Second,
			RateLimit:      2,
		},
		Cache: CacheConfig{
			CeilingBytes:      cache.DefaultCeiling,
			QuotaBytes:        store.DefaultQuota,
			RecommendationTTL: cache.DefaultRecommendationTTL,
		},
		Server:    ServerConfig{Addr: "localhost:8080"},
		Telemetry: TelemetryConfig{ServiceName: "shuowen"},
	}
}

// DefaultDBPath is ~/.shuowen/shuowen.db.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".shuowen", "shuowen.db")
}

// DefaultPath is ~/.shuowen/config.toml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".shuowen", "config.toml")
}

// Load reads a TOML config file and applies environment overrides. A
// missing file leaves the built-in defaults in place.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail at request time.
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required")
	}
	if c.Upstream.MaxRetries < 0 {
		return fmt.Errorf("upstream.max_retries must not be negative")
	}
	if c.Upstream.RateLimit < 0 {
		return fmt.Errorf("upstream.rate_limit must not be negative")
	}
	return nil
}
