// Package logging provides structured logging using uber/zap.
//
// Two output modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components of the browser core take a *Logger and fall back to a no-op
// logger when none is supplied, so libraries never write to stdout unless
// the host application asks for it.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Session added", zap.String("session", s.ID()))
//	logger.Error("Engine session failed to load", zap.Error(err))
package logging
