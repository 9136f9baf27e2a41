// Package logging provides the minimal Logger interface every agentdesk
// component depends on, plus the adapters used to back it.
//
//   - Logger interface for dependency injection
//   - DeskLogger built on log/slog with component scoping and helpers for
//     generation calls and search fan-out
//   - ZerologAdapter for deployments already standardized on zerolog
//   - NoOpLogger for silent operation (tests, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	desk := agentdesk.New(r, func(o *agentdesk.Options) { o.Logger = logger })
package logging
