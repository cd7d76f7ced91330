// ============================================================================
// pnc - Polish Notation Calculator
// ============================================================================
//
// Package:     logging
// Description: Factory functions that build foundation loggers from settings
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	mdwconfig "github.com/msto63/pnc/foundation/core/config"
	mdwlog "github.com/msto63/pnc/foundation/core/log"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Name appears as the logger field of every entry
	Name string

	// Level (trace, debug, info, warn, error, fatal)
	Level string

	// Format (text, console, json, logfmt). Empty picks console on a
	// terminal and text otherwise.
	Format string

	// Output defaults to stderr
	Output io.Writer

	// Additional outputs besides Output
	AdditionalOutputs []io.Writer

	EnableCaller bool
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(name string) LoggerConfig {
	return LoggerConfig{
		Name:  name,
		Level: "warn",
	}
}

// FromConfig derives a LoggerConfig from the [general] section
func FromConfig(name string, cfg *mdwconfig.Config) LoggerConfig {
	lc := DefaultLoggerConfig(name)
	if cfg != nil {
		lc.Level = cfg.General.LogLevel
		lc.Format = cfg.General.LogFormat
	}
	return lc
}

// NewLogger creates a foundation logger
func NewLogger(cfg LoggerConfig) *mdwlog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	return mdwlog.NewWithConfig(mdwlog.Config{
		Level:        parseLevel(cfg.Level),
		Format:       parseFormat(cfg.Format, cfg.Output),
		Output:       output,
		Name:         cfg.Name,
		EnableCaller: cfg.EnableCaller,
	})
}

// NewSimpleLogger creates a logger with default settings
func NewSimpleLogger(name string) *mdwlog.Logger {
	return NewLogger(DefaultLoggerConfig(name))
}

// parseLevel converts a string level to mdwlog.Level; unknown values map to warn
func parseLevel(level string) mdwlog.Level {
	parsed, err := mdwlog.ParseLevel(level)
	if err != nil {
		return mdwlog.LevelWarn
	}
	return parsed
}

func parseFormat(format string, output io.Writer) mdwlog.Format {
	if strings.TrimSpace(format) != "" {
		if parsed, err := mdwlog.ParseFormat(format); err == nil {
			return parsed
		}
		return mdwlog.FormatText
	}
	if output == nil && isatty.IsTerminal(os.Stderr.Fd()) {
		return mdwlog.FormatConsole
	}
	return mdwlog.FormatText
}
