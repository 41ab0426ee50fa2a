// Package config provides 12-factor configuration for the browser core host.
//
// Configuration is loaded from environment variables with sensible defaults.
//
// Configuration Sections:
//   - API: control API listen address
//   - Engine: which engine backend to use and its settings file
//   - Store: browser store behaviour
//   - Search: default region and search engine catalogue
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting of the control API
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("API listening on %s:%s\n", cfg.API.Host, cfg.API.Port)
//
// Environment Variables:
//   - API_PORT, API_HOST, API_ENABLED
//   - ENGINE_NAME, ENGINE_SETTINGS_FILE, ENGINE_TIMEOUT, ENGINE_BREAKER_FAILURES
//   - STORE_FATAL_ERRORS
//   - SEARCH_REGION, SEARCH_CATALOGUE
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
