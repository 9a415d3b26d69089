package ui

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/vanderheijden86/candlecourse/pkg/config"
	"github.com/vanderheijden86/candlecourse/pkg/curriculum"
	"github.com/vanderheijden86/candlecourse/pkg/testutil"
)

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) write(s string) error {
	if c.err != nil {
		return c.err
	}
	c.text = s
	return nil
}

func newTestModel(t *testing.T, repo *curriculum.Repository, mutate func(*Options)) Model {
	t.Helper()
	opts := Options{
		Source:      "test course",
		SnapshotDir: t.TempDir(),
		Clipboard:   (&fakeClipboard{}).write,
		Renderer:    lipgloss.NewRenderer(io.Discard),
		Logger:      zap.NewNop(),
	}
	if mutate != nil {
		mutate(&opts)
	}
	m, err := NewModel(repo, opts)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msgs through Update and returns the final model and the last
// command.
func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

// exec runs cmd and feeds its message back into the model.
func exec(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m, _ = send(t, m, cmd())
	return m
}

func plainView(m Model) string {
	return ansi.Strip(m.View())
}

func boolPtr(b bool) *bool { return &b }

func TestModelStartupSelectsFirstLesson(t *testing.T) {
	repo := testutil.QuickScenario()
	m := newTestModel(t, repo, nil)

	if got := m.Session().ActiveLessonID(); got != "L1" {
		t.Fatalf("active = %q, want L1", got)
	}
	if m.Details().Title() != "Lesson L1" {
		t.Errorf("details title = %q", m.Details().Title())
	}
	if m.Chart() == nil {
		t.Fatal("expected a chart")
	}
	if got := m.Chart().Series(); len(got) != len(testutil.MustLesson(t, repo, "L1").Data) {
		t.Errorf("chart has %d points", len(got))
	}
	if !m.Tree().Collapsed("S1") || !m.Tree().Collapsed("S2") {
		t.Error("steps should start collapsed")
	}

	view := plainView(m)
	for _, want := range []string{"candlecourse", "test course", "Step S1 (2)", "Step S2 (1)", "Lesson L1", "candles"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModelKeyboardScenario(t *testing.T) {
	repo := testutil.QuickScenario()
	m := newTestModel(t, repo, nil)

	// Cursor starts on S1: expand it, walk to L2 and open it.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Tree().Collapsed("S1") {
		t.Fatal("enter on a step should expand it")
	}
	if m.Session().ActiveLessonID() != "L1" {
		t.Fatal("expanding a step must not change the lesson")
	}

	m, _ = send(t, m, runes("j"), runes("j"), tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.Session().ActiveLessonID(); got != "L2" {
		t.Fatalf("active = %q, want L2", got)
	}
	if m.Tree().Collapsed("S1") {
		t.Error("S1 should stay expanded")
	}
	if m.Details().Title() != "Lesson L2" {
		t.Errorf("details title = %q", m.Details().Title())
	}
	if got, want := len(m.Chart().Series()), len(testutil.MustLesson(t, repo, "L2").Data); got != want {
		t.Errorf("chart points = %d, want %d", got, want)
	}

	// Down to S2, expand, open L3.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, runes("l"), runes("l"), runes(" "))
	if got := m.Session().ActiveLessonID(); got != "L3" {
		t.Fatalf("active = %q, want L3", got)
	}
	if m.Tree().ActiveCount() != 1 {
		t.Errorf("active nodes = %d", m.Tree().ActiveCount())
	}

	// h from a lesson goes to its step, h again collapses it.
	m, _ = send(t, m, runes("h"), runes("h"))
	if !m.Tree().Collapsed("S2") {
		t.Error("S2 should be collapsed")
	}
	if m.Session().ActiveLessonID() != "L3" {
		t.Error("collapsing must keep the active lesson")
	}

	m, _ = send(t, m, runes("E"))
	if m.Tree().Collapsed("S1") || m.Tree().Collapsed("S2") {
		t.Error("E should expand all")
	}
	m, _ = send(t, m, runes("C"))
	if !m.Tree().Collapsed("S1") || !m.Tree().Collapsed("S2") {
		t.Error("C should collapse all")
	}
}

func TestModelMouseClick(t *testing.T) {
	m := newTestModel(t, testutil.QuickScenario(), nil)
	m.Tree().Toggle("S1")

	// Rows: S1, L1, L2, S2. Row 2 is below the header bar and panel border.
	click := tea.MouseMsg{X: 2, Y: headerRows + 1 + 2, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}
	m, _ = send(t, m, click)
	if got := m.Session().ActiveLessonID(); got != "L2" {
		t.Fatalf("active = %q, want L2", got)
	}

	click.Y = headerRows + 1 + 3
	m, _ = send(t, m, click)
	if m.Tree().Collapsed("S2") {
		t.Error("clicking a step header should expand it")
	}

	// Clicks right of the tree or below the rows do nothing.
	click.X, click.Y = m.navWidth+5, headerRows+1+1
	m, _ = send(t, m, click)
	click.X, click.Y = 2, 30
	m, _ = send(t, m, click)
	if got := m.Session().ActiveLessonID(); got != "L2" {
		t.Errorf("active = %q, want L2", got)
	}
}

func TestModelMouseDisabled(t *testing.T) {
	m := newTestModel(t, testutil.QuickScenario(), func(o *Options) {
		o.Config.UI.Mouse = boolPtr(false)
	})
	m.Tree().Toggle("S1")
	m, _ = send(t, m, tea.MouseMsg{X: 2, Y: headerRows + 3, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if m.Session().ActiveLessonID() != "L1" {
		t.Error("mouse should be ignored")
	}
}

func TestModelResize(t *testing.T) {
	m := newTestModel(t, testutil.QuickScenario(), nil)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	if m.navWidth != 30 {
		t.Errorf("navWidth = %d, want 30", m.navWidth)
	}
	// Right column is 70 wide; body is 28 rows split 11/17 between
	// details and chart, each losing 2 cells to borders.
	w, h := m.Chart().Size()
	if w != 68 || h != 15 {
		t.Errorf("chart size = %dx%d, want 68x15", w, h)
	}

	lines := strings.Split(plainView(m), "\n")
	if len(lines) != 30 {
		t.Errorf("view has %d lines, want 30", len(lines))
	}
}

func TestModelWithoutChart(t *testing.T) {
	m := newTestModel(t, testutil.QuickScenario(), func(o *Options) {
		o.Config.UI.ShowChart = boolPtr(false)
	})
	if m.Chart() != nil || m.Session().HasChart() {
		t.Fatal("chart should be disabled")
	}
	if m.Session().ActiveLessonID() != "L1" {
		t.Error("selection should work without a chart")
	}

	m, _ = send(t, m, runes("]"))
	if msg, isErr := m.StatusMessage(); msg != "No chart" || !isErr {
		t.Errorf("status = %q, %v", msg, isErr)
	}
	if !strings.Contains(plainView(m), "Lesson L1") {
		t.Error("details should still render")
	}
}

func TestModelWithoutDetails(t *testing.T) {
	m := newTestModel(t, testutil.QuickScenario(), func(o *Options) {
		o.Config.UI.ShowDetails = boolPtr(false)
	})
	if m.Details() != nil {
		t.Fatal("details should be disabled")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEnter}, runes("j"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.focused != focusTree {
		t.Error("tab should not focus a missing panel")
	}
	if m.Session().ActiveLessonID() != "L1" {
		t.Errorf("active = %q", m.Session().ActiveLessonID())
	}
	_ = m.View()
}

func TestModelDetailsFocus(t *testing.T) {
	m := newTestModel(t, testutil.QuickScenario(), nil)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab}, runes("j"))
	if m.focused != focusDetails {
		t.Fatal("tab should focus details")
	}
	if m.Tree().Cursor() != 0 {
		t.Error("keys should go to the details panel")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.focused != focusTree {
		t.Error("esc should return to the tree")
	}
}

func TestModelEmptyCurriculum(t *testing.T) {
	m := newTestModel(t, testutil.Empty(), nil)
	if m.Session().ActiveLessonID() != "" {
		t.Fatal("nothing should be selected")
	}
	if !strings.Contains(plainView(m), "No lessons.") {
		t.Error("expected empty tree placeholder")
	}

	m, cmd := send(t, m, runes("s"))
	m = exec(t, m, cmd)
	if msg, isErr := m.StatusMessage(); !isErr || !strings.Contains(msg, "no active lesson") {
		t.Errorf("status = %q, %v", msg, isErr)
	}
}

func TestModelSnapshot(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, testutil.QuickScenario(), func(o *Options) {
		o.SnapshotDir = dir
	})
	m, cmd := send(t, m, runes("s"))
	m = exec(t, m, cmd)

	want := filepath.Join(dir, "L1.png")
	if msg, isErr := m.StatusMessage(); isErr || msg != "Saved "+want {
		t.Errorf("status = %q, %v", msg, isErr)
	}
	if _, err := os.Stat(want); err != nil {
		t.Error(err)
	}
}

func TestModelCopyLessonID(t *testing.T) {
	clip := &fakeClipboard{}
	m := newTestModel(t, testutil.QuickScenario(), func(o *Options) {
		o.Clipboard = clip.write
	})
	m, cmd := send(t, m, runes("y"))
	m = exec(t, m, cmd)
	if clip.text != "L1" {
		t.Errorf("clipboard = %q", clip.text)
	}
	if msg, _ := m.StatusMessage(); msg != "Copied L1" {
		t.Errorf("status = %q", msg)
	}

	clip.err = errors.New("no xclip")
	m, cmd = send(t, m, runes("y"))
	m = exec(t, m, cmd)
	if msg, isErr := m.StatusMessage(); !isErr || !strings.Contains(msg, "no xclip") {
		t.Errorf("status = %q, %v", msg, isErr)
	}

	// Any key clears the status line.
	m, _ = send(t, m, runes("j"))
	if msg, _ := m.StatusMessage(); msg != "" {
		t.Errorf("status not cleared: %q", msg)
	}
}

func TestModelReload(t *testing.T) {
	m := newTestModel(t, testutil.QuickScenario(), nil)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter}, runes("j"), runes("j"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.Session().ActiveLessonID() != "L2" {
		t.Fatal("setup: expected L2")
	}

	m, cmd := send(t, m, curriculumReloadedMsg{repo: testutil.QuickGrouped(2, 1, 1)})
	if cmd != nil {
		t.Error("no reloader, so no follow-up watch")
	}
	if got := m.Session().ActiveLessonID(); got != "L2" {
		t.Errorf("active after reload = %q, want L2", got)
	}
	if m.Tree().Collapsed("S1") {
		t.Error("collapse state should survive reload")
	}
	if len(m.Tree().Roots()) != 3 {
		t.Errorf("roots = %d, want 3", len(m.Tree().Roots()))
	}
	if msg, _ := m.StatusMessage(); msg != "Reloaded 4 lessons" {
		t.Errorf("status = %q", msg)
	}
	if !strings.Contains(plainView(m), "Step S3 (1)") {
		t.Error("view should show the new step")
	}

	m, _ = send(t, m, reloadErrorMsg{err: errors.New("bad yaml")})
	if msg, isErr := m.StatusMessage(); !isErr || !strings.Contains(msg, "bad yaml") {
		t.Errorf("status = %q, %v", msg, isErr)
	}
	if m.Session().Repository().LessonCount() != 4 {
		t.Error("failed reload must keep the previous curriculum")
	}
}

func TestModelReloadToEmpty(t *testing.T) {
	clip := &fakeClipboard{}
	m := newTestModel(t, testutil.QuickScenario(), func(o *Options) {
		o.Clipboard = clip.write
	})
	if !strings.Contains(plainView(m), "Lesson L1") {
		t.Fatal("setup: details should show L1")
	}

	m, _ = send(t, m, curriculumReloadedMsg{repo: testutil.Empty()})
	if got := m.Details().Title(); got != "" {
		t.Errorf("details title after empty reload = %q", got)
	}
	if n := len(m.Chart().Series()); n != 0 {
		t.Errorf("chart still holds %d points", n)
	}
	view := plainView(m)
	if strings.Contains(view, "candles") || !strings.Contains(view, "Select a lesson.") {
		t.Errorf("stale details after empty reload:\n%s", view)
	}

	m, cmd := send(t, m, runes("y"))
	m = exec(t, m, cmd)
	if clip.text != "" {
		t.Errorf("copied %q from an empty curriculum", clip.text)
	}
	if msg, isErr := m.StatusMessage(); !isErr || !strings.Contains(msg, "no active lesson") {
		t.Errorf("status = %q, %v", msg, isErr)
	}
}

func TestModelHelpAndQuit(t *testing.T) {
	m := newTestModel(t, testutil.QuickScenario(), nil)
	m, _ = send(t, m, runes("?"))
	if !strings.Contains(plainView(m), "Navigation") {
		t.Error("help should list navigation keys")
	}
	m, _ = send(t, m, runes("j"))
	if !m.showHelp {
		t.Error("other keys should not close help")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.showHelp {
		t.Error("esc should close help")
	}

	_, cmd := send(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestNewModelBadChartColors(t *testing.T) {
	m := newTestModel(t, testutil.QuickScenario(), func(o *Options) {
		o.Config = config.Config{Chart: config.ChartConfig{Up: "teal"}}
	})
	if m.Chart() != nil {
		t.Error("invalid colors should disable the chart")
	}
	if m.Session().ActiveLessonID() != "L1" {
		t.Error("selection should still work")
	}
}
