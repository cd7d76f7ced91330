// File: logger_test.go
// Title: Logger Tests
// Description: Tests for level filtering, context fields, formatters, error
//              integration and timers.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with comprehensive logger tests
// - 2026-10-19 v0.2.0: Adapted to the reduced logger

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	mdwerror "github.com/msto63/pnc/foundation/core/error"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWithConfig(Config{Level: level, Format: format, Output: &buf}), &buf
}

func TestNew(t *testing.T) {
	logger := New()
	if logger == nil {
		t.Fatal("New() should not return nil")
	}
	if logger.GetLevel() != DefaultLevel() {
		t.Errorf("New() level = %v, want %v", logger.GetLevel(), DefaultLevel())
	}
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatText)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("entries below warn were written: %q", out)
	}
	if !strings.Contains(out, "[WRN] visible") {
		t.Errorf("warn entry missing: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{" WARNING ", LevelWarn, false},
		{"err", LevelError, false},
		{"trc", LevelTrace, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevel_UnmarshalText(t *testing.T) {
	var l Level
	if err := l.UnmarshalText([]byte("debug")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if l != LevelDebug {
		t.Errorf("UnmarshalText() = %v, want debug", l)
	}
	if err := l.UnmarshalText([]byte("nope")); err == nil {
		t.Error("UnmarshalText() should reject unknown levels")
	}
}

func TestWithField_DoesNotMutateParent(t *testing.T) {
	parent, buf := newBufferLogger(LevelInfo, FormatLogfmt)
	child := parent.WithField("component", "parser")

	parent.Info("from parent")
	if strings.Contains(buf.String(), "component") {
		t.Errorf("parent picked up child field: %q", buf.String())
	}

	buf.Reset()
	child.Info("from child")
	if !strings.Contains(buf.String(), `component="parser"`) {
		t.Errorf("child field missing: %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatJSON)
	logger.WithName("pnc").WithSession("s-1").Debug("parsed", Fields{"tokens": 3})

	var data map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}

	checks := map[string]interface{}{
		"level":   "debug",
		"message": "parsed",
		"logger":  "pnc",
		"session": "s-1",
		"tokens":  float64(3),
	}
	for k, want := range checks {
		if data[k] != want {
			t.Errorf("data[%q] = %v, want %v", k, data[k], want)
		}
	}
}

func TestTextFormatter_StableFieldOrder(t *testing.T) {
	f := NewTextFormatter()
	f.DisableTimestamp = true

	entry := NewEntry(LevelInfo, "msg")
	entry.Fields = Fields{"b": 2, "a": 1, "c": 3}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "[INF] msg [a=1 b=2 c=3]\n"
	if string(out) != want {
		t.Errorf("Format() = %q, want %q", out, want)
	}
}

func TestLogError_UsesSeverity(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatLogfmt)

	syntax := mdwerror.New("unexpected ')'").
		WithCode(mdwerror.CodeSyntax).
		WithDetail("position", 4)
	logger.LogError(syntax)

	out := buf.String()
	if !strings.Contains(out, "level=warn") {
		t.Errorf("syntax error should log at warn: %q", out)
	}
	if !strings.Contains(out, `error_code=PN_SYNTAX`) || !strings.Contains(out, "error_position=4") {
		t.Errorf("error fields missing: %q", out)
	}

	buf.Reset()
	logger.LogError(mdwerror.New("disk gone").WithCode(mdwerror.CodeIO))
	if !strings.Contains(buf.String(), "level=error") {
		t.Errorf("io error should log at error: %q", buf.String())
	}

	buf.Reset()
	logger.LogError(errors.New("plain"))
	if !strings.Contains(buf.String(), `error="plain"`) {
		t.Errorf("plain error missing: %q", buf.String())
	}
}

func TestTimer(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatLogfmt)

	timer := logger.StartTimer("evaluate")
	if !timer.IsRunning() {
		t.Fatal("timer should be running")
	}
	timer.Stop()
	if timer.IsRunning() {
		t.Error("timer should be stopped")
	}
	if d := timer.Stop(); d != 0 {
		t.Errorf("second Stop() = %v, want 0", d)
	}

	out := buf.String()
	if !strings.Contains(out, `message="evaluate completed"`) || !strings.Contains(out, "duration_ms=") {
		t.Errorf("timer output incomplete: %q", out)
	}
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	if logger.IsLevelEnabled(LevelFatal) {
		t.Error("nop logger should not enable any level")
	}
	logger.Error("dropped")
}
