package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abrezinsky/swishfeed/internal/feed"
)

const (
	idWidth    = 8
	labelWidth = 9
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	liveStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Bold(true)
	offlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CC0000")).Bold(true)

	tagStyles = map[string]lipgloss.Style{
		"perfect": lipgloss.NewStyle().Foreground(lipgloss.Color("#1B873F")).Bold(true),
		"early":   lipgloss.NewStyle().Foreground(lipgloss.Color("#D29922")),
		"late":    lipgloss.NewStyle().Foreground(lipgloss.Color("#CF222E")),
	}
)

// styleFor returns the label style for a row tag
func styleFor(tag string) lipgloss.Style {
	if s, ok := tagStyles[tag]; ok {
		return s
	}
	return tagStyles["late"]
}

// FormatRow renders one row as a fixed-width line
func FormatRow(row feed.Row) string {
	id := fmt.Sprintf("%-*s", idWidth, row.ID)
	label := styleFor(row.Tag).Render(fmt.Sprintf("%-*s", labelWidth, row.Label))
	return id + " " + label + " " + row.Glyph
}

// RenderTable renders a header and rows top to bottom
func RenderTable(rows []feed.Row) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s %s", idWidth, "#", labelWidth, "Timing", "Scored")))
	b.WriteByte('\n')
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("no shots yet"))
		b.WriteByte('\n')
		return b.String()
	}
	for _, row := range rows {
		b.WriteString(FormatRow(row))
		b.WriteByte('\n')
	}
	return b.String()
}
