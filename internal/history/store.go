// ============================================================================
// pnc - Polish Notation Calculator
// ============================================================================
//
// Package:     history
// Description: Persistent record of evaluated expressions
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/msto63/pnc/foundation/pn"
)

// Source names the surface that produced an entry
type Source string

const (
	SourceCLI    Source = "cli"
	SourceRun    Source = "run"
	SourceREPL   Source = "repl"
	SourceServer Source = "server"
)

// Entry is one evaluated input
type Entry struct {
	ID          string        `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	Source      Source        `json:"source"`
	Input       string        `json:"input"`
	AST         string        `json:"ast"`
	Value       int32         `json:"value"`
	OK          bool          `json:"ok"`
	Error       string        `json:"error,omitempty"`
	Diagnostics []string      `json:"diagnostics,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// FromResult converts an engine result into an entry
func FromResult(source Source, res *pn.Result) *Entry {
	entry := &Entry{
		ID:          uuid.New().String(),
		Timestamp:   time.Now(),
		Source:      source,
		Input:       res.Input,
		AST:         res.AST,
		Value:       res.Value,
		OK:          res.OK,
		Diagnostics: res.Diagnostics,
		Duration:    res.Duration,
	}
	if res.Err != nil {
		entry.Error = res.Err.Error()
	}
	return entry
}

// Filter restricts List results
type Filter struct {
	Source     Source
	OnlyErrors bool
	Since      time.Time
	Limit      int
	Offset     int
}

// Stats summarizes the stored history
type Stats struct {
	Total    int64            `json:"total"`
	Errors   int64            `json:"errors"`
	BySource map[Source]int64 `json:"by_source"`
	First    time.Time        `json:"first,omitempty"`
	Last     time.Time        `json:"last,omitempty"`
}

// Store persists evaluation history
type Store interface {
	Record(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) ([]*Entry, error)
	Stats(ctx context.Context) (*Stats, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Vacuum(ctx context.Context) error
	Close() error
}

// prepare fills in ID and timestamp when missing
func prepare(entry *Entry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
}
