// ============================================================================
// pnc - Polish Notation Calculator
// ============================================================================
//
// Package:     repl
// Description: Bubbletea model for the interactive evaluator
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package repl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	mdwlog "github.com/msto63/pnc/foundation/core/log"
	"github.com/msto63/pnc/foundation/pn"
	"github.com/msto63/pnc/internal/history"
	"github.com/msto63/pnc/pkg/core/version"
)

// maxInputHistory bounds the up/down recall list
const maxInputHistory = 100

// Model is the Bubbletea model of the REPL
type Model struct {
	width  int
	height int
	ready  bool

	input    textinput.Model
	viewport viewport.Model

	engine *pn.Engine
	store  history.Store
	logger *mdwlog.Logger

	entries []Entry

	// Input history; historyIndex is -1 while editing a new line
	inputHistory []string
	historyIndex int
	currentInput string
}

// Config holds REPL configuration
type Config struct {
	Engine *pn.Engine
	Store  history.Store // optional
	Logger *mdwlog.Logger
}

// New creates a new REPL model
func New(cfg Config) Model {
	ti := textinput.New()
	ti.Placeholder = "+ 1 2   or   (* 2 3 4)"
	ti.Prompt = PromptStyle.Render("pn> ")
	ti.CharLimit = 4096
	ti.Width = 76
	ti.Focus()

	logger := cfg.Logger
	if logger == nil {
		logger = mdwlog.NewNop()
	}
	engine := cfg.Engine
	if engine == nil {
		engine = pn.New(pn.Options{Logger: logger})
	}

	return Model{
		input:        ti,
		engine:       engine,
		store:        cfg.Store,
		logger:       logger,
		historyIndex: -1,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadHistory)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		footerHeight := 4 // input box + help
		viewportHeight := msg.Height - headerHeight - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}
		m.input.Width = msg.Width - 10
		m.updateViewportContent()
		return m, nil

	case evalResultMsg:
		m.entries = append(m.entries, msg.entry)
		m.updateViewportContent()
		m.viewport.GotoBottom()
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.logger.WarnWithErr("Failed to load input history", msg.err)
			return m, nil
		}
		// Inputs typed before the load finished stay newest
		m.inputHistory = append(msg.inputs, m.inputHistory...)
		m.trimHistory()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "ctrl+d", "esc":
		return m, tea.Quit

	case "ctrl+l":
		m.entries = nil
		m.updateViewportContent()
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		line := strings.TrimSpace(m.input.Value())
		if line == "" {
			return m, nil
		}
		switch line {
		case "quit", "exit", ":q":
			return m, tea.Quit
		}

		if len(m.inputHistory) == 0 || m.inputHistory[len(m.inputHistory)-1] != line {
			m.inputHistory = append(m.inputHistory, line)
			m.trimHistory()
		}
		m.historyIndex = -1
		m.currentInput = ""
		m.input.Reset()
		return m, m.evaluate(line)

	case tea.KeyUp:
		if len(m.inputHistory) > 0 {
			if m.historyIndex == -1 {
				m.currentInput = m.input.Value()
				m.historyIndex = len(m.inputHistory) - 1
			} else if m.historyIndex > 0 {
				m.historyIndex--
			}
			m.input.SetValue(m.inputHistory[m.historyIndex])
			m.input.CursorEnd()
		}
		return m, nil

	case tea.KeyDown:
		if m.historyIndex != -1 {
			if m.historyIndex < len(m.inputHistory)-1 {
				m.historyIndex++
				m.input.SetValue(m.inputHistory[m.historyIndex])
			} else {
				m.historyIndex = -1
				m.input.SetValue(m.currentInput)
			}
			m.input.CursorEnd()
		}
		return m, nil

	case tea.KeyPgUp:
		m.viewport.ViewUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) trimHistory() {
	if len(m.inputHistory) > maxInputHistory {
		m.inputHistory = m.inputHistory[len(m.inputHistory)-maxInputHistory:]
	}
}

// evaluate runs the engine off the update loop
func (m Model) evaluate(line string) tea.Cmd {
	engine, store, logger := m.engine, m.store, m.logger
	return func() tea.Msg {
		ctx := context.Background()
		res := engine.Evaluate(ctx, line)

		if store != nil {
			if err := store.Record(ctx, history.FromResult(history.SourceREPL, res)); err != nil {
				logger.WarnWithErr("Failed to record evaluation", err)
			}
		}

		entry := Entry{
			Input:       line,
			AST:         res.AST,
			Value:       res.ValueText(),
			OK:          res.OK,
			Diagnostics: res.Diagnostics,
			Timestamp:   time.Now(),
			Duration:    res.Duration,
		}
		if res.Err != nil {
			entry.Error = res.Err.Error()
		}
		return evalResultMsg{entry: entry}
	}
}

// loadHistory recalls earlier REPL inputs, oldest first
func (m Model) loadHistory() tea.Msg {
	if m.store == nil {
		return historyLoadedMsg{}
	}
	entries, err := m.store.List(context.Background(), history.Filter{
		Source: history.SourceREPL,
		Limit:  maxInputHistory,
	})
	if err != nil {
		return historyLoadedMsg{err: err}
	}

	inputs := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if n := len(inputs); n > 0 && inputs[n-1] == entries[i].Input {
			continue
		}
		inputs = append(inputs, entries[i].Input)
	}
	return historyLoadedMsg{inputs: inputs}
}

// Entries returns the evaluated lines in order
func (m Model) Entries() []Entry {
	return m.entries
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Starting pnc..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(InputStyle.Width(m.width - 2).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())

	return b.String()
}

func (m Model) renderHeader() string {
	logo := LogoStyle.Render("pnc")
	sub := SubHeaderStyle.Render(fmt.Sprintf("Polish notation calculator v%s", version.Version))
	return lipgloss.JoinHorizontal(lipgloss.Top, logo, "  ", sub)
}

func (m Model) renderHelpBar() string {
	items := []string{
		RenderKeyHint("Enter", "evaluate"),
		RenderKeyHint("↑/↓", "history"),
		RenderKeyHint("PgUp/PgDn", "scroll"),
		RenderKeyHint("Ctrl+L", "clear"),
		RenderKeyHint("Ctrl+C", "quit"),
	}
	return HelpStyle.Render(strings.Join(items, "  "))
}

// updateViewportContent renders the scrollback into the viewport
func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}

	var content strings.Builder
	for _, e := range m.entries {
		content.WriteString(InputEchoStyle.Render("> "+e.Input) + "  " +
			MetaStyle.Render(e.Timestamp.Format("15:04:05")))
		content.WriteString("\n")

		if e.OK {
			content.WriteString("  " + ASTStyle.Render(e.AST))
			content.WriteString("\n")
			content.WriteString("  = " + ValueStyle.Render(e.Value))
			content.WriteString("\n")
		} else {
			content.WriteString("  " + ErrorStyle.Render(e.Error))
			content.WriteString("\n")
		}

		for _, d := range e.Diagnostics {
			content.WriteString("  " + DiagnosticStyle.Render("warning: "+d))
			content.WriteString("\n")
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// Run starts the REPL on the terminal and blocks until the user quits
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
