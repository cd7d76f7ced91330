// Package log provides structured logging for the pnc tools.
//
// Package: log
// Title: pnc Structured Logging
// Description: Structured logging with persistent context fields, level
//              filtering, JSON/text/console/logfmt output and integration with
//              the pnc error package. Log output goes to stderr by default
//              because stdout carries evaluation results.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2026-10-19 v0.2.0: Reduced to what the command line tools need
//
// Usage:
//
//	import mdwlog "github.com/msto63/pnc/foundation/core/log"
//
//	logger := mdwlog.NewWithConfig(mdwlog.Config{
//		Level:  mdwlog.LevelDebug,
//		Format: mdwlog.FormatLogfmt,
//	}).WithField("component", "parser")
//
//	logger.Debug("parsing input", mdwlog.Fields{"tokens": 5})
//
//	timer := logger.StartTimer("evaluate")
//	// ... evaluate
//	timer.Stop()
package log
