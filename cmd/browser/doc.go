// Package main is the entry point of the headless browser core.
//
// It loads configuration from the environment, assembles the engine,
// browser store, session manager, extension host and control API, and
// serves until interrupted.
//
// Configuration:
//   - Environment variables (API_*, ENGINE_*, STORE_*, SEARCH_*,
//     EXTENSION_*, LOG_*, RATE_LIMIT_*)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Serve the control API on the default port
//	./browser
//
//	# Open a start page, debug logs
//	./browser -open https://example.com -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
