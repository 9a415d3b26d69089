package ui

import (
	"context"
	"errors"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/candlecourse/pkg/curriculum"
	"github.com/vanderheijden86/candlecourse/pkg/export"
	"github.com/vanderheijden86/candlecourse/pkg/watcher"
)

// curriculumReloadedMsg carries a curriculum re-read after a file change.
type curriculumReloadedMsg struct {
	repo *curriculum.Repository
}

// reloadErrorMsg reports a reload that failed; the previous curriculum stays.
type reloadErrorMsg struct {
	err error
}

type snapshotSavedMsg struct {
	path string
	err  error
}

type clipboardMsg struct {
	id  string
	err error
}

var errNoActiveLesson = errors.New("no active lesson")

// WatchCurriculumCmd waits for the next change of the watched curriculum
// file and delivers the reloaded curriculum.
func WatchCurriculumCmd(r *watcher.Reloader) tea.Cmd {
	if r == nil {
		return nil
	}
	return func() tea.Msg {
		repo, err := r.Next(context.Background())
		if err != nil {
			return reloadErrorMsg{err: err}
		}
		return curriculumReloadedMsg{repo: repo}
	}
}

// snapshotCmd renders the active lesson to a PNG off the event loop.
// Lessons are immutable, so the worker shares the slice safely.
func (m Model) snapshotCmd() tea.Cmd {
	l, ok := m.session.Repository().FindLesson(m.session.ActiveLessonID())
	if !ok {
		return func() tea.Msg { return snapshotSavedMsg{err: errNoActiveLesson} }
	}
	path := filepath.Join(m.snapshotDir, export.SnapshotFileName(l.ID, "png"))
	opts := export.SnapshotOptions{
		Path:   path,
		Format: "png",
		Title:  l.Title,
		Points: l.Data,
		Chart:  m.chartOpt,
	}
	return func() tea.Msg {
		return snapshotSavedMsg{path: path, err: export.SaveChartSnapshot(opts)}
	}
}

func (m Model) copyActiveIDCmd() tea.Cmd {
	id := m.session.ActiveLessonID()
	if _, ok := m.session.Repository().FindLesson(id); !ok {
		id = ""
	}
	copyText := m.copyText
	return func() tea.Msg {
		if id == "" {
			return clipboardMsg{err: errNoActiveLesson}
		}
		return clipboardMsg{id: id, err: copyText(id)}
	}
}
