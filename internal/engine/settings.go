package engine

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Settings configures engine behavior shared by all sessions.
type Settings struct {
	UserAgent          string   `toml:"user_agent"`
	JavaScriptEnabled  bool     `toml:"javascript_enabled"`
	RequestTimeout     Duration `toml:"request_timeout"`
	MaxRedirects       int      `toml:"max_redirects"`
	MaxBodyBytes       int64    `toml:"max_body_bytes"`
	RetryMax           int      `toml:"retry_max"`
	RequestsPerSecond  float64  `toml:"requests_per_second"`
	Burst              int      `toml:"burst"`
	TrackingProtection bool     `toml:"tracking_protection"`
}

// DefaultSettings returns the settings used when no file is configured.
func DefaultSettings() *Settings {
	return &Settings{
		UserAgent:          "browserkit/1.0",
		JavaScriptEnabled:  true,
		RequestTimeout:     Duration{30 * time.Second},
		MaxRedirects:       10,
		MaxBodyBytes:       10 << 20,
		RetryMax:           2,
		RequestsPerSecond:  20,
		Burst:              40,
		TrackingProtection: false,
	}
}

// ParseSettings decodes TOML on top of the defaults.
func ParseSettings(data []byte) (*Settings, error) {
	settings := DefaultSettings()
	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse engine settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// LoadSettings reads a TOML settings file. An empty path yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine settings: %w", err)
	}
	return ParseSettings(data)
}

// Validate rejects settings no engine can work with.
func (s *Settings) Validate() error {
	if s.RequestTimeout.Duration <= 0 {
		return fmt.Errorf("invalid request_timeout: %s", s.RequestTimeout)
	}
	if s.MaxRedirects < 0 {
		return fmt.Errorf("invalid max_redirects: %d", s.MaxRedirects)
	}
	if s.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max_body_bytes: %d", s.MaxBodyBytes)
	}
	if s.RequestsPerSecond <= 0 || s.Burst <= 0 {
		return fmt.Errorf("invalid rate limit: %v/s burst %d", s.RequestsPerSecond, s.Burst)
	}
	return nil
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
