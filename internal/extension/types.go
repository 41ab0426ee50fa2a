package extension

import (
	"errors"
	"time"
)

var (
	ErrNotInstalled     = errors.New("extension not installed")
	ErrAlreadyInstalled = errors.New("extension already installed")
	ErrRuntimeClosed    = errors.New("extension runtime is closed")
	ErrScript           = errors.New("extension script failed")
)

// Config defines runtime limits.
type Config struct {
	Timeout       time.Duration // per script run or listener call
	EnableConsole bool          // allow console.log/warn/error/info
	MaxCallStack  int           // maximum JS call stack depth
}

// DefaultConfig returns the limits used when none are configured.
func DefaultConfig() Config {
	return Config{
		Timeout:       5 * time.Second,
		EnableConsole: true,
		MaxCallStack:  1024,
	}
}

// Extension is an extension to install.
type Extension struct {
	ID     string
	URL    string
	Name   string
	Script string // background script
}

// LogEntry is one console call made by a script.
type LogEntry struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}
