// File: discovery.go
// Title: Configuration File Discovery
// Description: Locates the configuration file (PNC_CONFIG, working directory,
//              user config directory) and applies PNC_* environment overrides.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation of file discovery
// - 2026-10-19 v0.2.0: Fixed search list, typed environment overrides

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	mdwerror "github.com/msto63/pnc/foundation/core/error"
)

// EnvConfig names the variable that points at a configuration file
const EnvConfig = "PNC_CONFIG"

// EnvPrefix is the prefix of all override variables
const EnvPrefix = "PNC_"

// SearchPaths returns the candidate configuration files in lookup order
func SearchPaths() []string {
	paths := []string{
		"pnc.toml",
		"pnc.yaml",
		"pnc.yml",
	}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths,
			filepath.Join(dir, "pnc", "config.toml"),
			filepath.Join(dir, "pnc", "config.yaml"),
		)
	}
	return paths
}

// Discover loads the configuration. An explicit path wins, then PNC_CONFIG,
// then the first existing file of SearchPaths. Without any file the
// defaults (plus environment overrides) are returned.
func Discover(explicit string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	if path := os.Getenv(EnvConfig); path != "" {
		return Load(path)
	}
	if path, ok := FindConfigFile(SearchPaths()); ok {
		return Load(path)
	}

	cfg := Default()
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile returns the first regular file among candidates
func FindConfigFile(candidates []string) (string, bool) {
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

type lookupFunc func(key string) (string, bool)

// applyEnv overrides individual settings from PNC_* variables, for example
// PNC_PARSER_MAX_DEPTH=64 or PNC_SERVER_READ_TIMEOUT=5s. Unparsable values
// are ignored and later caught by Validate where it matters.
func (c *Config) applyEnv(lookup lookupFunc) {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = n
			}
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				*dst = b
			}
		}
	}
	dur := func(key string, dst *Duration) {
		if v, ok := lookup(EnvPrefix + key); ok {
			if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
				dst.Duration = d
			}
		}
	}

	str("LOG_LEVEL", &c.General.LogLevel)
	str("LOG_FORMAT", &c.General.LogFormat)
	num("PARSER_MAX_DEPTH", &c.Parser.MaxDepth)
	num("PARSER_MAX_INPUT_LENGTH", &c.Parser.MaxInputLength)
	flag("PARSER_LEGACY_UNARY_MULT", &c.Parser.LegacyUnaryMult)
	str("RUN_INPUT", &c.Run.Input)
	str("RUN_OUTPUT", &c.Run.Output)
	flag("HISTORY_ENABLED", &c.History.Enabled)
	str("HISTORY_PATH", &c.History.Path)
	str("SERVER_HOST", &c.Server.Host)
	num("SERVER_PORT", &c.Server.Port)
	num("SERVER_GRPC_PORT", &c.Server.GRPCPort)
	dur("SERVER_READ_TIMEOUT", &c.Server.ReadTimeout)
	num("SERVER_CACHE_SIZE", &c.Server.CacheSize)
	dur("SERVER_CACHE_TTL", &c.Server.CacheTTL)
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	invalid := func(key string, value interface{}, reason string) error {
		return mdwerror.New("invalid configuration: "+key+" "+reason).
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.Validate").
			WithDetail("key", key).
			WithDetail("value", value)
	}

	switch strings.ToLower(c.General.LogLevel) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return invalid("general.log_level", c.General.LogLevel, "is not a known level")
	}
	switch strings.ToLower(c.General.LogFormat) {
	case "text", "json", "console", "logfmt":
	default:
		return invalid("general.log_format", c.General.LogFormat, "is not a known format")
	}
	if c.Parser.MaxDepth < 1 {
		return invalid("parser.max_depth", c.Parser.MaxDepth, "must be positive")
	}
	if c.Parser.MaxInputLength < 1 {
		return invalid("parser.max_input_length", c.Parser.MaxInputLength, "must be positive")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port", c.Server.Port, "must be between 1 and 65535")
	}
	if c.Server.GRPCPort > 65535 || (c.Server.GRPCPort > 0 && c.Server.GRPCPort == c.Server.Port) {
		return invalid("server.grpc_port", c.Server.GRPCPort, "must be at most 65535 and differ from server.port")
	}
	if c.Server.ReadTimeout.Duration < 0 {
		return invalid("server.read_timeout", c.Server.ReadTimeout.String(), "must not be negative")
	}
	if c.Server.CacheTTL.Duration < 0 {
		return invalid("server.cache_ttl", c.Server.CacheTTL.String(), "must not be negative")
	}
	return nil
}
