// File: config.go
// Title: Configuration Loading
// Description: Typed configuration for the pnc tools, loaded from TOML or YAML
//              files. Missing values are filled with defaults, environment
//              overrides are applied last.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with TOML/YAML support
// - 2026-10-19 v0.2.0: Replaced the key/value store with typed sections

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/pnc/foundation/core/error"
	mdwstringx "github.com/msto63/pnc/foundation/utils/stringx"
)

// Format represents the configuration file format
type Format int

const (
	// FormatTOML represents TOML format (default)
	FormatTOML Format = iota

	// FormatYAML represents YAML format
	FormatYAML
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Config holds the complete configuration of the pnc tools
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Parser  ParserConfig  `toml:"parser" yaml:"parser"`
	Run     RunConfig     `toml:"run" yaml:"run"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Server  ServerConfig  `toml:"server" yaml:"server"`

	filePath string
}

// GeneralConfig holds logging settings
type GeneralConfig struct {
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
}

// ParserConfig bounds the work done for a single input
type ParserConfig struct {
	MaxDepth       int `toml:"max_depth" yaml:"max_depth"`
	MaxInputLength int `toml:"max_input_length" yaml:"max_input_length"`

	// LegacyUnaryMult reads "(* a)" as (* 0 a) instead of rejecting it
	LegacyUnaryMult bool `toml:"legacy_unary_mult" yaml:"legacy_unary_mult"`
}

// RunConfig names the files used by "pnc run"
type RunConfig struct {
	Input  string `toml:"input" yaml:"input"`
	Output string `toml:"output" yaml:"output"`
}

// HistoryConfig controls the evaluation history database
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// ServerConfig holds the evaluation server settings
type ServerConfig struct {
	Host        string   `toml:"host" yaml:"host"`
	Port        int      `toml:"port" yaml:"port"`
	ReadTimeout Duration `toml:"read_timeout" yaml:"read_timeout"`

	// GRPCPort serves the gRPC health and evaluator services; a negative
	// value disables gRPC
	GRPCPort int `toml:"grpc_port" yaml:"grpc_port"`

	// CacheSize bounds the result cache; a negative value disables it
	CacheSize int      `toml:"cache_size" yaml:"cache_size"`
	CacheTTL  Duration `toml:"cache_ttl" yaml:"cache_ttl"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the configuration file at path. The format is chosen by the
// file extension. Environment overrides are applied after defaults.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, mdwerror.Wrap(err, "config file not found").
				WithCode(mdwerror.CodeNotFound).
				WithOperation("config.Load").
				WithDetail("path", path)
		}
		return nil, mdwerror.Wrap(err, "failed to read config file").
			WithCode(mdwerror.CodeIO).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	cfg, err := Decode(string(content), DetectFormat(path))
	if err != nil {
		return nil, err
	}
	cfg.filePath = path

	return cfg, nil
}

// Decode parses configuration content in the given format
func Decode(content string, format Format) (*Config, error) {
	var cfg Config

	switch format {
	case FormatTOML:
		if _, err := toml.Decode(content, &cfg); err != nil {
			return nil, mdwerror.Wrap(err, "TOML parse error").
				WithCode(mdwerror.CodeConfigError).
				WithOperation("config.Decode")
		}
	case FormatYAML:
		if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
			return nil, mdwerror.Wrap(err, "YAML parse error").
				WithCode(mdwerror.CodeConfigError).
				WithOperation("config.Decode")
		}
	default:
		return nil, mdwerror.New(fmt.Sprintf("unsupported format: %s", format)).
			WithCode(mdwerror.CodeConfigError).
			WithOperation("config.Decode")
	}

	cfg.applyDefaults()
	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DetectFormat determines the configuration format from file extension
func DetectFormat(filePath string) Format {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// FilePath returns the file the configuration was loaded from, if any
func (c *Config) FilePath() string {
	return c.filePath
}

func (c *Config) applyDefaults() {
	if mdwstringx.IsBlank(c.General.LogLevel) {
		c.General.LogLevel = "warn"
	}
	if mdwstringx.IsBlank(c.General.LogFormat) {
		c.General.LogFormat = "text"
	}

	if c.Parser.MaxDepth == 0 {
		c.Parser.MaxDepth = 512
	}
	if c.Parser.MaxInputLength == 0 {
		c.Parser.MaxInputLength = 1 << 20
	}

	if mdwstringx.IsBlank(c.Run.Input) {
		c.Run.Input = "input"
	}
	if mdwstringx.IsBlank(c.Run.Output) {
		c.Run.Output = "output"
	}

	if mdwstringx.IsBlank(c.History.Path) {
		c.History.Path = defaultHistoryPath()
	}

	if mdwstringx.IsBlank(c.Server.Host) {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8765
	}
	if c.Server.GRPCPort == 0 {
		c.Server.GRPCPort = 8766
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 60 * time.Second
	}
	if c.Server.CacheSize == 0 {
		c.Server.CacheSize = 1024
	}
	if c.Server.CacheTTL.Duration == 0 {
		c.Server.CacheTTL.Duration = 10 * time.Minute
	}
}

func defaultHistoryPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "pnc", "history.db")
	}
	return "pnc-history.db"
}
