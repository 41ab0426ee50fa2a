package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	API       APIConfig
	Engine    EngineConfig
	Store     StoreConfig
	Search    SearchConfig
	Extension ExtensionConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// APIConfig holds control API configuration.
type APIConfig struct {
	Port    string `envconfig:"API_PORT" default:"8070"`
	Host    string `envconfig:"API_HOST" default:"127.0.0.1"`
	Enabled bool   `envconfig:"API_ENABLED" default:"true"`
}

// EngineConfig selects and tunes the engine backend.
type EngineConfig struct {
	Name            string        `envconfig:"ENGINE_NAME" default:"http"`
	SettingsFile    string        `envconfig:"ENGINE_SETTINGS_FILE"`
	Timeout         time.Duration `envconfig:"ENGINE_TIMEOUT" default:"30s"`
	BreakerFailures uint32        `envconfig:"ENGINE_BREAKER_FAILURES" default:"5"`
}

// StoreConfig holds browser store configuration.
type StoreConfig struct {
	// FatalErrors makes a failing reducer terminate the process.
	FatalErrors bool `envconfig:"STORE_FATAL_ERRORS" default:"false"`
}

// SearchConfig holds search engine configuration.
type SearchConfig struct {
	Region    string `envconfig:"SEARCH_REGION" default:"US"`
	Catalogue string `envconfig:"SEARCH_CATALOGUE"`
}

// ExtensionConfig holds web extension runtime configuration.
type ExtensionConfig struct {
	Timeout   time.Duration `envconfig:"EXTENSION_TIMEOUT" default:"5s"`
	Catalogue string        `envconfig:"EXTENSION_CATALOGUE"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Port:    "8070",
			Host:    "127.0.0.1",
			Enabled: true,
		},
		Engine: EngineConfig{
			Name:            "http",
			Timeout:         30 * time.Second,
			BreakerFailures: 5,
		},
		Store: StoreConfig{
			FatalErrors: false,
		},
		Search: SearchConfig{
			Region: "US",
		},
		Extension: ExtensionConfig{
			Timeout: 5 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}
