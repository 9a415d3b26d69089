package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Adaptive colors for light and dark terminals
// Light mode colors tuned for WCAG AA compliance (contrast ratio >= 4.5:1)
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorBg          = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
)

// ══════════════════════════════════════════════════════════════════════════════
// PANEL STYLES - For split view layouts
// ══════════════════════════════════════════════════════════════════════════════

var (
	// PanelStyle is the default style for unfocused panels
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight)

	// FocusedPanelStyle is the style for focused panels
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)
)

// panel renders content inside a bordered box whose outer size is
// width x height.
func panel(style lipgloss.Style, width, height int, content string) string {
	innerW := max(width-2, 1)
	innerH := max(height-2, 1)
	return style.
		Width(innerW).
		Height(innerH).
		MaxHeight(height).
		Render(content)
}

// RenderChangeBadge renders a signed percentage colored by direction.
func RenderChangeBadge(pct float64, t Theme) string {
	arrow := "▲"
	if pct < 0 {
		arrow = "▼"
	}
	return t.ChangeStyle(pct).Bold(true).Render(fmt.Sprintf("%s %+.2f%%", arrow, pct))
}

// RenderMiniBar renders a horizontal bar showing the share of bullish
// candles: up-colored cells first, down-colored for the rest.
func RenderMiniBar(bullish, total, width int, t Theme) string {
	if width <= 0 || total <= 0 {
		return ""
	}
	filled := bullish * width / total
	if filled > width {
		filled = width
	}
	return t.UpText.Render(strings.Repeat("█", filled)) +
		t.DownText.Render(strings.Repeat("░", width-filled))
}

// RenderDivider renders a horizontal divider line
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(ColorBgHighlight).
		Render(strings.Repeat("─", width))
}
