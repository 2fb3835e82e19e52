// Package tui is a terminal view of the live shot feed.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abrezinsky/swishfeed/internal/feed"
)

// RowMsg carries one rendered row to the program
type RowMsg feed.Row

// StatusMsg reports the live channel state
type StatusMsg struct {
	Connected bool
	Err       error
}

// chrome is the number of lines View spends outside the table body
const chrome = 5

// Model holds the rows shown in the terminal, newest first
type Model struct {
	title    string
	source   string
	rows     []feed.Row
	live     bool
	lastErr  error
	height   int
	quitting bool
}

// New creates a Model seeded with rows already rendered top-first
func New(title, source string, rows []feed.Row) *Model {
	return &Model{
		title:  title,
		source: source,
		rows:   append([]feed.Row{}, rows...),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RowMsg:
		m.rows = append([]feed.Row{feed.Row(msg)}, m.rows...)
	case StatusMsg:
		m.live = msg.Connected
		m.lastErr = msg.Err
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	status := liveStyle.Render("● live")
	if !m.live {
		status = offlineStyle.Render("● offline")
	}
	fmt.Fprintf(&b, "%s  %s  %s\n\n", titleStyle.Render(m.title), status, dimStyle.Render(m.source))

	rows := m.rows
	if m.height > chrome && len(rows) > m.height-chrome {
		rows = rows[:m.height-chrome]
	}
	b.WriteString(RenderTable(rows))

	footer := fmt.Sprintf("%d shots · q to quit", len(m.rows))
	if m.lastErr != nil {
		footer += " · " + m.lastErr.Error()
	}
	b.WriteString(dimStyle.Render(footer))
	return b.String()
}

// Rows returns the rows held by the model, newest first
func (m *Model) Rows() []feed.Row {
	return append([]feed.Row{}, m.rows...)
}

// Sender is the part of *tea.Program a Surface needs
type Sender interface {
	Send(msg tea.Msg)
}

// Surface forwards rendered rows to a running program
type Surface struct {
	program Sender
}

var _ feed.Surface = (*Surface)(nil)

// NewSurface creates a Surface for p
func NewSurface(p Sender) *Surface {
	return &Surface{program: p}
}

// Prepend sends the row to the program, which inserts it on top
func (s *Surface) Prepend(row feed.Row) {
	s.program.Send(RowMsg(row))
}
