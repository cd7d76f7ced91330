package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	mdwconfig "github.com/msto63/pnc/foundation/core/config"
	mdwlog "github.com/msto63/pnc/foundation/core/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected mdwlog.Level
	}{
		{"trace", mdwlog.LevelTrace},
		{"debug", mdwlog.LevelDebug},
		{"info", mdwlog.LevelInfo},
		{"warning", mdwlog.LevelWarn},
		{"error", mdwlog.LevelError},
		{"", mdwlog.LevelWarn},
		{"verbose", mdwlog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		Name:   "pnc-test",
		Level:  "info",
		Format: "json",
		Output: &buf,
	})

	logger.Debug("dropped")
	logger.Info("kept", mdwlog.Fields{"n": 1})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if entry["logger"] != "pnc-test" || entry["message"] != "kept" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewLogger_AdditionalOutputs(t *testing.T) {
	var primary, extra bytes.Buffer
	logger := NewLogger(LoggerConfig{
		Level:             "warn",
		Format:            "logfmt",
		Output:            &primary,
		AdditionalOutputs: []io.Writer{&extra},
	})

	logger.Warn("negative exponent")

	if !strings.Contains(primary.String(), `message="negative exponent"`) {
		t.Errorf("primary output = %q", primary.String())
	}
	if primary.String() != extra.String() {
		t.Errorf("outputs differ: %q vs %q", primary.String(), extra.String())
	}
}

func TestFromConfig(t *testing.T) {
	cfg := mdwconfig.Default()
	cfg.General.LogLevel = "debug"
	cfg.General.LogFormat = "json"

	lc := FromConfig("pnc", cfg)
	if lc.Name != "pnc" || lc.Level != "debug" || lc.Format != "json" {
		t.Errorf("FromConfig() = %+v", lc)
	}

	if lc := FromConfig("pnc", nil); lc.Level != "warn" {
		t.Errorf("FromConfig(nil).Level = %q, want warn", lc.Level)
	}
}

func TestParseFormat(t *testing.T) {
	var buf bytes.Buffer
	if got := parseFormat("logfmt", &buf); got != mdwlog.FormatLogfmt {
		t.Errorf("parseFormat(logfmt) = %v", got)
	}
	if got := parseFormat("xml", &buf); got != mdwlog.FormatText {
		t.Errorf("parseFormat(xml) = %v, want text", got)
	}
	if got := parseFormat("", &buf); got != mdwlog.FormatText {
		t.Errorf("parseFormat(\"\") with explicit output = %v, want text", got)
	}
}
