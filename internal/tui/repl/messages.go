package repl

import (
	"time"
)

// Entry is one evaluated line in the scrollback
type Entry struct {
	Input       string
	AST         string
	Value       string
	OK          bool
	Error       string
	Diagnostics []string
	Timestamp   time.Time
	Duration    time.Duration
}

// evalResultMsg is sent when an evaluation finishes
type evalResultMsg struct {
	entry Entry
}

// historyLoadedMsg carries inputs recalled from the history store
type historyLoadedMsg struct {
	inputs []string
	err    error
}
