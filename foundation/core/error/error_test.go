// File: error_test.go
// Title: Error Module Tests
// Description: Tests for error creation, wrapping, codes, severity and JSON output.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with comprehensive test coverage
// - 2026-10-19 v0.2.0: Adjusted to front-end codes

package error

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	msg := "test error message"
	err := New(msg)

	if err == nil {
		t.Fatal("New() returned nil")
	}

	if err.Error() != msg {
		t.Errorf("Error() = %q, want %q", err.Error(), msg)
	}

	if err.Code() != CodeUnknown {
		t.Errorf("Code() = %v, want %v", err.Code(), CodeUnknown)
	}

	if err.Severity() != SeverityMedium {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityMedium)
	}

	if len(err.StackTrace()) == 0 {
		t.Error("StackTrace() is empty")
	}
}

func TestWithCode_SetsSeverity(t *testing.T) {
	tests := []struct {
		code Code
		want Severity
	}{
		{CodeSyntax, SeverityLow},
		{CodeEval, SeverityLow},
		{CodeDatabaseError, SeverityHigh},
		{CodeInternal, SeverityCritical},
		{CodeUnknown, SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := New("x").WithCode(tt.code)
			if err.Severity() != tt.want {
				t.Errorf("Severity() = %v, want %v", err.Severity(), tt.want)
			}
		})
	}
}

func TestWithCode_KeepsExplicitSeverity(t *testing.T) {
	err := New("x").WithSeverity(SeverityCritical).WithCode(CodeSyntax)
	if err.Severity() != SeverityCritical {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityCritical)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "nothing") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	base := errors.New("disk full")
	wrapped := Wrap(base, "write output")

	if wrapped.Error() != "write output: disk full" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("errors.Is should find the cause")
	}
}

func TestWrap_PreservesClassification(t *testing.T) {
	inner := New("bad token").WithCode(CodeSyntax).WithDetail("position", 3)
	outer := Wrap(fmt.Errorf("parse: %w", inner), "evaluate")

	if outer.Code() != CodeSyntax {
		t.Errorf("Code() = %v, want %v", outer.Code(), CodeSyntax)
	}
	if outer.Details()["position"] != 3 {
		t.Errorf("Details() lost position: %v", outer.Details())
	}
	if !HasCode(outer, CodeSyntax) {
		t.Error("HasCode should see wrapped code")
	}
}

func TestGetCodeAndSeverity_StandardError(t *testing.T) {
	err := errors.New("plain")
	if GetCode(err) != CodeUnknown {
		t.Errorf("GetCode() = %v", GetCode(err))
	}
	if GetSeverity(err) != SeverityMedium {
		t.Errorf("GetSeverity() = %v", GetSeverity(err))
	}
}

func TestString(t *testing.T) {
	err := New("unexpected token").
		WithCode(CodeSyntax).
		WithOperation("parser.Parse").
		WithDetail("token", ")").
		WithDetail("position", 7)

	s := err.String()
	for _, want := range []string{
		"Error: unexpected token",
		"Code: PN_SYNTAX",
		"Severity: low",
		"Operation: parser.Parse",
		"Details: {position=7, token=)}",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q in:\n%s", want, s)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	err := Wrap(errors.New("boom"), "history insert").
		WithCode(CodeDatabaseError).
		WithOperation("history.Record")

	data, jerr := json.Marshal(err)
	if jerr != nil {
		t.Fatalf("Marshal() error = %v", jerr)
	}

	var decoded map[string]interface{}
	if jerr := json.Unmarshal(data, &decoded); jerr != nil {
		t.Fatalf("Unmarshal() error = %v", jerr)
	}

	if decoded["code"] != "DATABASE_ERROR" {
		t.Errorf("code = %v", decoded["code"])
	}
	if decoded["severity"] != "high" {
		t.Errorf("severity = %v", decoded["severity"])
	}
	if decoded["cause"] != "boom" {
		t.Errorf("cause = %v", decoded["cause"])
	}
	if decoded["operation"] != "history.Record" {
		t.Errorf("operation = %v", decoded["operation"])
	}
}

func TestCode_Category(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{CodeSyntax, "language"},
		{CodeDatabaseError, "storage"},
		{CodeInvalidConfig, "configuration"},
		{CodeNotFound, "generic"},
	}
	for _, tt := range tests {
		if got := tt.code.Category(); got != tt.want {
			t.Errorf("%s.Category() = %q, want %q", tt.code, got, tt.want)
		}
	}

	if Code("BOGUS").IsValid() {
		t.Error("unknown code reported as valid")
	}
	if !CodeEval.IsValid() {
		t.Error("CodeEval reported as invalid")
	}
}
