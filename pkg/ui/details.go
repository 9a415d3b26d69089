package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/candlecourse/pkg/series"
)

// DetailsPanel is the details surface: the lesson title as plain text, the
// description rendered from markdown, and a summary of the lesson's series.
type DetailsPanel struct {
	theme    Theme
	viewport viewport.Model
	md       *MarkdownRenderer

	title       string
	description string
	summary     *series.Summary
}

// NewDetailsPanel creates an empty panel.
func NewDetailsPanel(theme Theme, width, height int) *DetailsPanel {
	d := &DetailsPanel{
		theme:    theme,
		viewport: viewport.New(max(width, 1), max(height, 1)),
		md:       NewMarkdownRenderer(width),
	}
	d.refresh()
	return d
}

// ShowLesson replaces the title and description. The previous summary is
// dropped until SetSummary is called for the new lesson.
func (d *DetailsPanel) ShowLesson(title, description string) {
	d.title = title
	d.description = description
	d.summary = nil
	d.viewport.GotoTop()
	d.refresh()
}

// SetSummary attaches series statistics below the description.
func (d *DetailsPanel) SetSummary(s series.Summary) {
	d.summary = &s
	d.refresh()
}

// ClearSummary removes the statistics block.
func (d *DetailsPanel) ClearSummary() {
	if d.summary == nil {
		return
	}
	d.summary = nil
	d.refresh()
}

// Title returns the displayed title.
func (d *DetailsPanel) Title() string { return d.title }

// Description returns the displayed description source.
func (d *DetailsPanel) Description() string { return d.description }

// SetSize resizes the viewport and re-wraps the description.
func (d *DetailsPanel) SetSize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if width == d.viewport.Width && height == d.viewport.Height {
		return
	}
	d.viewport.Width = width
	d.viewport.Height = height
	d.md.SetWidth(width)
	d.refresh()
}

// Update forwards scroll keys and mouse wheel events to the viewport.
func (d *DetailsPanel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return cmd
}

// View renders the visible part of the panel.
func (d *DetailsPanel) View() string {
	return d.viewport.View()
}

func (d *DetailsPanel) refresh() {
	d.viewport.SetContent(d.content())
}

func (d *DetailsPanel) content() string {
	t := d.theme
	if d.title == "" && d.description == "" {
		return t.MutedText.Render("Select a lesson.")
	}

	var sb strings.Builder
	sb.WriteString(t.PrimaryBold.Render(truncate(d.title, d.viewport.Width)))
	sb.WriteString("\n")
	if body := d.md.Render(d.description); body != "" {
		sb.WriteString("\n")
		sb.WriteString(body)
		sb.WriteString("\n")
	}
	if d.summary != nil && d.summary.Count > 0 {
		sb.WriteString("\n")
		sb.WriteString(RenderDivider(d.viewport.Width))
		sb.WriteString("\n")
		sb.WriteString(d.renderSummary(*d.summary))
	}
	return sb.String()
}

func (d *DetailsPanel) renderSummary(s series.Summary) string {
	t := d.theme
	label := func(name string) string {
		return t.SecondaryText.Render(padRight(name, 8))
	}
	lines := []string{
		label("Range") + formatRange(s.First, s.Last) + t.MutedText.Render(fmt.Sprintf("  (%d candles)", s.Count)),
		label("Open") + formatPrice(s.Open) + "  " + label("Close") + formatPrice(s.Close) + "  " + RenderChangeBadge(s.ChangePct, t),
		label("High") + formatPrice(s.High) + "  " + label("Low") + formatPrice(s.Low),
		label("Mean") + formatPrice(s.MeanClose) + "  " + label("Vol") + fmt.Sprintf("%.2f%%", s.ReturnStdDev),
		label("Candles") + RenderMiniBar(s.Bullish, s.Count, 10, t) +
			t.MutedText.Render(fmt.Sprintf(" %d up / %d down", s.Bullish, s.Bearish)),
	}
	return strings.Join(lines, "\n")
}
