package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type shortcut struct{ key, desc string }

var helpSections = []struct {
	title     string
	shortcuts []shortcut
}{
	{"Navigation", []shortcut{
		{"j / ↓", "next row"},
		{"k / ↑", "previous row"},
		{"g / G", "first / last row"},
		{"enter", "open lesson, fold step"},
		{"l / →", "expand step"},
		{"h / ←", "collapse, go to step"},
		{"E / C", "expand / collapse all"},
	}},
	{"Lesson", []shortcut{
		{"tab", "focus details"},
		{"[ / ]", "scroll chart"},
		{"s", "save PNG snapshot"},
		{"y", "copy lesson id"},
	}},
	{"General", []shortcut{
		{"?", "toggle help"},
		{"q", "quit"},
	}},
}

func (m Model) renderHelpOverlay() string {
	t := m.theme

	numCols := 3
	if m.width < 100 {
		numCols = 1
	}
	colWidth := max((m.width-8)/numCols, 28)

	colors := []lipgloss.AdaptiveColor{
		{Light: "#7D56F4", Dark: "#BD93F9"}, // Purple
		{Light: "#FF79C6", Dark: "#FF79C6"}, // Pink
		{Light: "#8BE9FD", Dark: "#8BE9FD"}, // Cyan
	}

	panels := make([]string, 0, len(helpSections))
	for i, sec := range helpSections {
		color := colors[i%len(colors)]
		headerStyle := t.Renderer.NewStyle().
			Foreground(color).
			Bold(true).
			BorderStyle(lipgloss.Border{Bottom: "─"}).
			BorderBottom(true).
			BorderForeground(color).
			Width(colWidth - 4)
		keyStyle := t.Renderer.NewStyle().Foreground(color).Bold(true).Width(10)
		descStyle := t.Renderer.NewStyle().Foreground(t.Base.GetForeground())

		var sb strings.Builder
		sb.WriteString(headerStyle.Render(sec.title))
		for _, s := range sec.shortcuts {
			sb.WriteString("\n")
			sb.WriteString(keyStyle.Render(s.key) + descStyle.Render(s.desc))
		}
		panels = append(panels, t.Renderer.NewStyle().Padding(0, 1).Width(colWidth).Render(sb.String()))
	}

	var body string
	if numCols == 1 {
		body = lipgloss.JoinVertical(lipgloss.Left, panels...)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, panels...)
	}
	footer := t.MutedText.Render("Press ? or esc to close")
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, body, "", footer))
}
