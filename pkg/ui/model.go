// Package ui is the terminal curriculum browser: a navigation tree on the
// left, the lesson details and candlestick chart on the right.
package ui

import (
	"fmt"
	"path/filepath"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/vanderheijden86/candlecourse/pkg/app"
	"github.com/vanderheijden86/candlecourse/pkg/chart"
	"github.com/vanderheijden86/candlecourse/pkg/config"
	"github.com/vanderheijden86/candlecourse/pkg/curriculum"
	"github.com/vanderheijden86/candlecourse/pkg/debug"
	"github.com/vanderheijden86/candlecourse/pkg/metrics"
	"github.com/vanderheijden86/candlecourse/pkg/nav"
	"github.com/vanderheijden86/candlecourse/pkg/selection"
	"github.com/vanderheijden86/candlecourse/pkg/series"
	"github.com/vanderheijden86/candlecourse/pkg/watcher"
)

// Layout constants, in terminal cells.
const (
	defaultWidth  = 120
	defaultHeight = 40
	headerRows    = 1
	footerRows    = 1
	minNavWidth   = 24
	minRightWidth = 20
	// Candles scrolled per [ or ] press.
	chartScrollStep = 5
)

// focus represents which pane has keyboard focus
type focus int

const (
	focusTree focus = iota
	focusDetails
)

// Options configures NewModel. The zero value is usable.
type Options struct {
	Config config.Config
	// Source names where the curriculum came from; shown in the header.
	Source string
	// Reloader, when set, feeds live reloads into the program.
	Reloader *watcher.Reloader
	// SnapshotDir receives PNG snapshots. Defaults to DataDir()/snapshots.
	SnapshotDir string
	// Clipboard writes text to the system clipboard.
	Clipboard func(string) error
	Renderer  *lipgloss.Renderer
	Logger    *zap.Logger
}

// Model is the main Bubble Tea model.
type Model struct {
	session  *app.Session
	theme    Theme
	details  *DetailsPanel   // nil when the details surface is disabled
	chart    *chart.Terminal // nil when the chart could not be built
	chartOpt chart.Options
	reloader *watcher.Reloader
	cfg      config.Config
	source   string
	log      *zap.Logger

	snapshotDir string
	copyText    func(string) error

	width    int
	height   int
	navWidth int
	focused  focus
	showHelp bool

	statusMsg     string
	statusIsError bool
}

// NewModel bootstraps a session for repo and lays it out at a default size
// until the first WindowSizeMsg arrives.
func NewModel(repo *curriculum.Repository, opts Options) (Model, error) {
	r := opts.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	log := debug.Or(opts.Logger).Named("ui")

	m := Model{
		theme:       DefaultTheme(r),
		reloader:    opts.Reloader,
		cfg:         opts.Config,
		source:      opts.Source,
		log:         log,
		snapshotDir: opts.SnapshotDir,
		copyText:    opts.Clipboard,
		width:       defaultWidth,
		height:      defaultHeight,
	}
	if m.snapshotDir == "" {
		m.snapshotDir = filepath.Join(config.DataDir(), "snapshots")
	}
	if m.copyText == nil {
		m.copyText = clipboard.WriteAll
	}

	m.chartOpt = chart.DefaultOptions().WithColors(
		opts.Config.Chart.Background,
		opts.Config.Chart.Text,
		opts.Config.Chart.Grid,
		opts.Config.Chart.Up,
		opts.Config.Chart.Down,
	)

	surfaces := app.Surfaces{Navigation: true}
	if opts.Config.DetailsEnabled() {
		m.details = NewDetailsPanel(m.theme, 60, 10)
		surfaces.Details = m.details
	}
	if opts.Config.ChartEnabled() {
		surfaces.ChartFactory = func() (chart.Adapter, error) {
			t, err := chart.NewTerminal(m.chartOpt, chart.WithRenderer(r))
			if err != nil {
				return nil, err
			}
			m.chart = t
			return t, nil
		}
	}

	sess, err := app.Bootstrap(repo, surfaces, log)
	if err != nil {
		return Model{}, err
	}
	m.session = sess
	if !sess.HasChart() {
		m.chart = nil
	}

	m.layout()
	m.refreshSummary()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	if m.reloader != nil {
		return WatchCurriculumCmd(m.reloader)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case curriculumReloadedMsg:
		m.session.Reload(msg.repo)
		m.layout()
		m.refreshSummary()
		m.setStatus(fmt.Sprintf("Reloaded %d lessons", msg.repo.LessonCount()), false)
		return m, WatchCurriculumCmd(m.reloader)

	case reloadErrorMsg:
		m.log.Warn("keeping previous curriculum", zap.Error(msg.err))
		m.setStatus("Reload failed: "+msg.err.Error(), true)
		return m, WatchCurriculumCmd(m.reloader)

	case snapshotSavedMsg:
		if msg.err != nil {
			m.setStatus("Snapshot failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("Saved "+msg.path, false)
		}

	case clipboardMsg:
		if msg.err != nil {
			m.setStatus("Copy failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("Copied "+msg.id, false)
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	m.statusMsg = ""

	if m.showHelp {
		switch key {
		case "q":
			return m, tea.Quit
		case "?", "esc", "enter":
			m.showHelp = false
		}
		return m, nil
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "tab":
		if m.details != nil {
			if m.focused == focusTree {
				m.focused = focusDetails
			} else {
				m.focused = focusTree
			}
		}
		return m, nil
	case "y":
		return m, m.copyActiveIDCmd()
	case "s":
		return m, m.snapshotCmd()
	case "[":
		m.scrollChart(-chartScrollStep)
		return m, nil
	case "]":
		m.scrollChart(chartScrollStep)
		return m, nil
	}

	if m.focused == focusDetails {
		if key == "esc" {
			m.focused = focusTree
			return m, nil
		}
		return m, m.details.Update(msg)
	}
	m.handleTreeKey(key)
	return m, nil
}

// handleTreeKey handles keyboard input when the navigation tree is focused.
func (m *Model) handleTreeKey(key string) {
	tree := m.session.Tree()
	switch key {
	case "j", "down":
		tree.MoveDown()
	case "k", "up":
		tree.MoveUp()
	case "g", "home":
		tree.JumpToTop()
	case "G", "end":
		tree.JumpToBottom()
	case "enter", " ":
		if tree.ClickCursor() {
			m.refreshSummary()
		}
	case "l", "right":
		tree.ExpandOrMoveToChild()
	case "h", "left":
		tree.CollapseOrJumpToParent()
	case "E":
		tree.ExpandAll()
	case "C":
		tree.CollapseAll()
	}
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	if !m.cfg.MouseEnabled() {
		return m
	}
	inNav := msg.X < m.navWidth
	switch {
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && inNav:
		// One row for the header bar and one for the panel border.
		row := msg.Y - headerRows - 1
		if m.session.Tree().ClickRow(row) {
			m.refreshSummary()
		}
		m.focused = focusTree
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		if inNav {
			if msg.Button == tea.MouseButtonWheelUp {
				m.session.Tree().MoveUp()
			} else {
				m.session.Tree().MoveDown()
			}
		} else if m.details != nil {
			m.details.Update(msg)
		}
	}
	return m
}

func (m *Model) scrollChart(delta int) {
	if m.chart == nil {
		m.setStatus("No chart", true)
		return
	}
	m.chart.Scroll(delta)
}

// refreshSummary attaches statistics for the active lesson to the details
// panel.
func (m *Model) refreshSummary() {
	if m.details == nil {
		return
	}
	l, ok := m.session.Repository().FindLesson(m.session.ActiveLessonID())
	if !ok {
		m.details.ClearSummary()
		return
	}
	m.details.SetSummary(series.Summarize(l.Data))
}

func (m *Model) setStatus(msg string, isError bool) {
	m.statusMsg = msg
	m.statusIsError = isError
}

// bodyHeight returns the rows between the header and the footer.
func (m Model) bodyHeight() int {
	return max(m.height-headerRows-footerRows, 3)
}

// layout sizes the tree, the details viewport and the chart for the current
// terminal size. The tree is rebuilt on reload, so styles are reapplied too.
func (m *Model) layout() {
	ratio := m.cfg.UI.SplitRatio
	if ratio <= 0 {
		ratio = config.DefaultConfig().UI.SplitRatio
	}
	w := int(float64(m.width) * ratio)
	w = max(w, min(minNavWidth, m.width/2))
	w = min(w, max(m.width-minRightWidth, m.width/2))
	m.navWidth = w

	bodyH := m.bodyHeight()
	tree := m.session.Tree()
	tree.SetStyles(m.theme.NavStyles())
	tree.SetSize(w-2, bodyH-2)

	rightW := max(m.width-w, 4)
	detailsH, chartH := m.rightSplit(bodyH)
	if m.details != nil {
		m.details.SetSize(rightW-2, detailsH-2)
	}
	if m.chart != nil {
		m.session.Resize(rightW-2, chartH-2)
	}
}

// rightSplit divides the right column between details and chart.
func (m Model) rightSplit(bodyH int) (detailsH, chartH int) {
	switch {
	case m.details != nil && m.chart != nil:
		detailsH = max(bodyH*2/5, 5)
		return detailsH, max(bodyH-detailsH, 3)
	case m.details != nil:
		return bodyH, 0
	default:
		return 0, bodyH
	}
}

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	var body string
	if m.showHelp {
		body = m.renderHelpOverlay()
	} else {
		body = m.renderSplitView()
	}

	finalStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		MaxHeight(m.height)
	return finalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(), body, m.renderFooter()))
}

func (m Model) renderHeader() string {
	t := m.theme
	repo := m.session.Repository()
	title := t.Header.Render("candlecourse")
	info := fmt.Sprintf(" %s  %d steps · %d lessons", m.source, repo.StepCount(), repo.LessonCount())
	if m.source == "" {
		info = fmt.Sprintf(" %d steps · %d lessons", repo.StepCount(), repo.LessonCount())
	}
	avail := max(m.width-lipgloss.Width(title), 0)
	return title + t.SecondaryText.Render(truncate(info, avail))
}

func (m Model) renderSplitView() string {
	bodyH := m.bodyHeight()
	navStyle, detailStyle := FocusedPanelStyle, PanelStyle
	if m.focused == focusDetails {
		navStyle, detailStyle = PanelStyle, FocusedPanelStyle
	}

	left := panel(navStyle, m.navWidth, bodyH, m.session.Tree().View())

	rightW := max(m.width-m.navWidth, 4)
	detailsH, chartH := m.rightSplit(bodyH)
	var parts []string
	if m.details != nil {
		parts = append(parts, panel(detailStyle, rightW, detailsH, m.details.View()))
	}
	if m.chart != nil {
		parts = append(parts, panel(PanelStyle, rightW, chartH, m.chart.View()))
	} else if m.details == nil {
		parts = append(parts, panel(PanelStyle, rightW, bodyH, m.theme.MutedText.Render("Chart unavailable.")))
	}
	right := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		style, prefix := lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true), "✓ "
		if m.statusIsError {
			style, prefix = m.theme.ErrorText, "✗ "
		}
		return style.Render(truncate(prefix+m.statusMsg, m.width))
	}

	keyStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	labelStyle := lipgloss.NewStyle().Foreground(ColorText)
	type hint struct{ key, label string }
	hints := []hint{{"j/k", "nav"}, {"enter", "open"}, {"h/l", "fold"}}
	if m.details != nil {
		hints = append(hints, hint{"tab", "details"})
	}
	hints = append(hints,
		hint{"[/]", "scroll"},
		hint{"s", "snapshot"},
		hint{"y", "copy id"},
		hint{"?", "help"},
		hint{"q", "quit"},
	)

	var out string
	for _, h := range hints {
		seg := keyStyle.Render(h.key) + " " + labelStyle.Render(h.label) + "  "
		if lipgloss.Width(out)+lipgloss.Width(seg) > m.width {
			break
		}
		out += seg
	}
	return out
}

// Session exposes the bootstrapped session.
func (m Model) Session() *app.Session { return m.session }

// Details returns the details panel, or nil when disabled.
func (m Model) Details() *DetailsPanel { return m.details }

// Chart returns the terminal chart, or nil when running without one.
func (m Model) Chart() *chart.Terminal { return m.chart }

// Tree returns the current navigation tree.
func (m Model) Tree() *nav.Tree { return m.session.Tree() }

// StatusMessage returns the footer status text and whether it is an error.
func (m Model) StatusMessage() (string, bool) { return m.statusMsg, m.statusIsError }

var _ selection.DetailsView = (*DetailsPanel)(nil)
