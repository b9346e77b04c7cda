// Package tui hosts a dispatch runtime inside a Bubble Tea program.
//
// The Bubble Tea model does not own application state. It forwards key
// presses and resizes to the runtime as actions and displays the Frame the
// runtime renders after every changed cycle. On top of that it provides the
// inspection surface: F12 freezes the runtime's registries and F11 shows the
// recent action history while frozen.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/tuidispatch/actions"
	"github.com/jask/tuidispatch/history"
)

const historyRows = 15

var (
	freezeKey  = key.NewBinding(key.WithKeys("f12"), key.WithHelp("f12", "freeze"))
	historyKey = key.NewBinding(key.WithKeys("f11"), key.WithHelp("f11", "history"))
	forceQuit  = key.NewBinding(key.WithKeys("ctrl+c"))
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Padding(0, 2)
	frozenStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")).Bold(true).Padding(0, 1)
	modalStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	changedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	unchangedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Frame is one rendered view of application state. Scope selects the key
// bindings that apply while the frame is on screen.
type Frame struct {
	View  string
	Scope string
}

// FrameMsg carries a freshly rendered frame into the Bubble Tea loop.
type FrameMsg Frame

// Inspector is the part of the runtime the freeze toggle needs.
type Inspector interface {
	Freeze()
	Thaw() int
	Frozen() bool
}

// Config wires a Model to a runtime.
type Config[A any] struct {
	Sender actions.Sender[A]
	Keys   *KeyMap[A]
	// Resize maps a terminal size to an action. Optional.
	Resize    func(width, height int) (A, bool)
	Inspector Inspector
	// Status returns a short line describing registry state. Optional.
	Status func() string
	// History returns up to n recent entries, newest first. Optional.
	History func(n int) []history.Entry
	Initial Frame
}

// Model is the Bubble Tea model that bridges terminal input to the runtime.
type Model[A any] struct {
	cfg         Config[A]
	frame       Frame
	width       int
	height      int
	showHistory bool
	flushed     int
}

func NewModel[A any](cfg Config[A]) Model[A] {
	if cfg.Keys == nil {
		cfg.Keys = NewKeyMap[A]()
	}
	return Model[A]{cfg: cfg, frame: cfg.Initial}
}

func (m Model[A]) Init() tea.Cmd {
	return nil
}

func (m Model[A]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		m.frame = Frame(msg)
		return m, nil
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.cfg.Resize != nil {
			if a, ok := m.cfg.Resize(msg.Width, msg.Height); ok {
				m.cfg.Sender.Send(a)
			}
		}
		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model[A]) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	frozen := m.frozen()
	switch {
	case key.Matches(msg, freezeKey) && m.cfg.Inspector != nil:
		if frozen {
			m.flushed = m.cfg.Inspector.Thaw()
			m.showHistory = false
		} else {
			m.cfg.Inspector.Freeze()
			m.flushed = 0
		}
		return m, nil
	case key.Matches(msg, historyKey):
		if frozen && m.cfg.History != nil {
			m.showHistory = !m.showHistory
		}
		return m, nil
	}
	if frozen && !key.Matches(msg, forceQuit) {
		return m, nil
	}
	if a, ok := m.cfg.Keys.Resolve(msg, m.frame.Scope); ok {
		m.cfg.Sender.Send(a)
	}
	return m, nil
}

func (m Model[A]) frozen() bool {
	return m.cfg.Inspector != nil && m.cfg.Inspector.Frozen()
}

func (m Model[A]) View() string {
	body := m.frame.View
	if m.showHistory && m.frozen() {
		body = Overlay(body, m.historyView(), m.width, m.bodyHeight())
	}
	return body + "\n" + m.renderFooter()
}

func (m Model[A]) bodyHeight() int {
	if m.height <= 1 {
		return lipgloss.Height(m.frame.View)
	}
	return m.height - 1
}

func (m Model[A]) renderFooter() string {
	var parts []string
	if m.frozen() {
		parts = append(parts, frozenStyle.Render("FROZEN"))
	}
	if m.cfg.Status != nil {
		if s := m.cfg.Status(); s != "" {
			parts = append(parts, s)
		}
	}
	if !m.frozen() && m.flushed > 0 {
		parts = append(parts, fmt.Sprintf("flushed %d", m.flushed))
	}
	bindings := m.cfg.Keys.HelpBindings(m.frame.Scope)
	if m.cfg.Inspector != nil {
		bindings = append(bindings, freezeKey)
		if m.frozen() && m.cfg.History != nil {
			bindings = append(bindings, historyKey)
		}
	}
	parts = append(parts, renderHelp(bindings))
	text := strings.Join(parts, "  ")
	if m.width == 0 {
		return footerStyle.Render(text)
	}
	return footerStyle.Width(m.width).Render(Truncate(text, max(m.width-4, 1)))
}

func (m Model[A]) historyView() string {
	entries := m.cfg.History(historyRows)
	lines := []string{titleStyle.Render("Recent actions")}
	if len(entries) == 0 {
		lines = append(lines, statusStyle.Render("(empty)"))
	}
	width := 60
	if m.width > 0 {
		width = min(width, max(m.width-6, 10))
	}
	for _, e := range entries {
		mark := unchangedStyle.Render("·")
		if e.Changed {
			mark = changedStyle.Render("●")
		}
		line := fmt.Sprintf("%s %4d %s", mark, e.Seq, e.Name)
		if e.Params != "" {
			line += " " + statusStyle.Render(e.Params)
		}
		if e.Effects > 0 {
			line += fmt.Sprintf(" →%d", e.Effects)
		}
		lines = append(lines, Truncate(line, width))
	}
	return modalStyle.Render(strings.Join(lines, "\n"))
}

func renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		if help.Key == "" && help.Desc == "" {
			continue
		}
		parts = append(parts, boldKey(help.Key)+" "+help.Desc)
	}
	return strings.Join(parts, "  ")
}

func boldKey(text string) string {
	if text == "" {
		return ""
	}
	return "\x1b[1m" + text + "\x1b[22m"
}
