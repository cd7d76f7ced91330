package repl

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	mdwlog "github.com/msto63/pnc/foundation/core/log"
	"github.com/msto63/pnc/foundation/pn"
	"github.com/msto63/pnc/internal/history"
)

func newTestModel(store history.Store) Model {
	m := New(Config{
		Engine: pn.New(pn.Options{Logger: mdwlog.NewNop()}),
		Store:  store,
		Logger: mdwlog.NewNop(),
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

// submit types line, presses enter and feeds the evaluation result back
func submit(t *testing.T, m Model, line string) Model {
	t.Helper()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(line)})
	m = updated.(Model)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if cmd == nil {
		t.Fatalf("Enter on %q returned no command", line)
	}
	msg := cmd()
	if _, ok := msg.(evalResultMsg); !ok {
		t.Fatalf("command returned %T, want evalResultMsg", msg)
	}
	updated, _ = m.Update(msg)
	return updated.(Model)
}

func TestView_NotReady(t *testing.T) {
	m := New(Config{})
	if got := m.View(); got != "Starting pnc..." {
		t.Errorf("View() = %q", got)
	}
}

func TestEvaluateLines(t *testing.T) {
	store := history.NewMemoryStore()
	m := newTestModel(store)

	m = submit(t, m, "+ 1 25")
	m = submit(t, m, "(* 4)")
	m = submit(t, m, "^ 2 - 0 1")

	entries := m.Entries()
	if len(entries) != 3 {
		t.Fatalf("len(Entries()) = %d, want 3", len(entries))
	}

	ok := entries[0]
	if !ok.OK || ok.AST != "(+ 1 25)" || ok.Value != "26" {
		t.Errorf("entry[0] = %+v", ok)
	}

	bad := entries[1]
	if bad.OK || bad.Value != "error" || bad.Error == "" {
		t.Errorf("entry[1] = %+v", bad)
	}

	if len(entries[2].Diagnostics) != 1 {
		t.Errorf("entry[2].Diagnostics = %v", entries[2].Diagnostics)
	}

	view := m.View()
	for _, want := range []string{"> + 1 25", "(+ 1 25)", "= 26", "requires at least two operands", "warning: negative exponent"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	recorded, err := store.List(context.Background(), history.Filter{Source: history.SourceREPL})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(recorded) != 3 {
		t.Errorf("recorded %d entries, want 3", len(recorded))
	}
}

func TestHistoryNavigation(t *testing.T) {
	m := newTestModel(nil)
	m = submit(t, m, "+ 1 2")
	m = submit(t, m, "* 3 4")

	// Half-typed line is restored after walking past the newest entry
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("- 9")})
	m = updated.(Model)

	press := func(k tea.KeyType) string {
		updated, _ := m.Update(tea.KeyMsg{Type: k})
		m = updated.(Model)
		return m.input.Value()
	}

	got := []string{
		press(tea.KeyUp),
		press(tea.KeyUp),
		press(tea.KeyUp),
		press(tea.KeyDown),
		press(tea.KeyDown),
	}
	want := []string{"* 3 4", "+ 1 2", "+ 1 2", "* 3 4", "- 9"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("history navigation mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateInputsCollapse(t *testing.T) {
	m := newTestModel(nil)
	m = submit(t, m, "+ 1 2")
	m = submit(t, m, "+ 1 2")

	if len(m.inputHistory) != 1 {
		t.Errorf("inputHistory = %v, want one entry", m.inputHistory)
	}
	if len(m.Entries()) != 2 {
		t.Errorf("len(Entries()) = %d, want 2", len(m.Entries()))
	}
}

func TestLoadHistoryFromStore(t *testing.T) {
	store := history.NewMemoryStore()
	engine := pn.New(pn.Options{Logger: mdwlog.NewNop()})
	ctx := context.Background()
	for _, in := range []string{"+ 1 1", "+ 2 2", "+ 2 2"} {
		store.Record(ctx, history.FromResult(history.SourceREPL, engine.Evaluate(ctx, in)))
	}
	store.Record(ctx, history.FromResult(history.SourceCLI, engine.Evaluate(ctx, "+ 9 9")))

	m := newTestModel(store)
	msg := m.loadHistory()
	updated, _ := m.Update(msg)
	m = updated.(Model)

	if diff := cmp.Diff([]string{"+ 1 1", "+ 2 2"}, m.inputHistory); diff != "" {
		t.Errorf("inputHistory mismatch (-want +got):\n%s", diff)
	}
}

func TestQuitAndClear(t *testing.T) {
	m := newTestModel(nil)
	m = submit(t, m, "+ 1 2")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = updated.(Model)
	if len(m.Entries()) != 0 {
		t.Errorf("Ctrl+L left %d entries", len(m.Entries()))
	}

	for _, key := range []tea.KeyMsg{{Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%s returned no command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not quit", key)
		}
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("quit")})
	m = updated.(Model)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("typing quit did not quit")
	}
}
