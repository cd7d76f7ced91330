// Package config loads the configuration of the pnc tools.
//
// Package: config
// Title: pnc Configuration
// Description: Typed configuration read from TOML or YAML. The file is found
//              through an explicit path, the PNC_CONFIG variable or a short
//              list of well-known locations; PNC_* variables override single
//              settings.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation
// - 2026-10-19 v0.2.0: Typed sections for parser, run, history and server
//
// Example pnc.toml:
//
//	[general]
//	log_level  = "debug"
//	log_format = "logfmt"
//
//	[parser]
//	max_depth = 256
//
//	[history]
//	enabled = true
//	path    = "/var/lib/pnc/history.db"
//
//	[server]
//	port         = 9000
//	read_timeout = "30s"
package config
