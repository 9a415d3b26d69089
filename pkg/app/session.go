// Package app wires a curriculum to its views: it builds the navigation
// tree, attaches the details and chart surfaces that exist, and selects the
// first lesson.
package app

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vanderheijden86/candlecourse/pkg/chart"
	"github.com/vanderheijden86/candlecourse/pkg/curriculum"
	"github.com/vanderheijden86/candlecourse/pkg/debug"
	"github.com/vanderheijden86/candlecourse/pkg/nav"
	"github.com/vanderheijden86/candlecourse/pkg/selection"
)

// ErrNoNavigation is returned by Bootstrap when there is no navigation
// surface to build the tree into.
var ErrNoNavigation = errors.New("navigation surface missing")

// Surfaces describes which views the host provides. Details and
// ChartFactory may be nil.
type Surfaces struct {
	Navigation   bool
	Details      selection.DetailsView
	ChartFactory func() (chart.Adapter, error)
}

// Session is an initialized browser: a tree and a controller bound to one
// curriculum.
type Session struct {
	repo       *curriculum.Repository
	tree       *nav.Tree
	controller *selection.Controller
	chart      chart.Adapter
	log        *zap.Logger
}

// Bootstrap initializes a session. A missing navigation surface is fatal;
// a missing or failing chart only disables the chart for the session.
func Bootstrap(repo *curriculum.Repository, s Surfaces, logger *zap.Logger) (*Session, error) {
	log := debug.Or(logger).Named("app")
	if !s.Navigation {
		log.Error("navigation surface missing, cannot initialize")
		return nil, fmt.Errorf("bootstrap: %w", ErrNoNavigation)
	}

	sess := &Session{repo: repo, log: log}
	sess.chart = sess.buildChart(s.ChartFactory)
	sess.tree = nav.Build(repo, sess.onSelect)

	opts := []selection.Option{
		selection.WithHighlighter(sess.tree),
		selection.WithLogger(logger),
	}
	if s.Details != nil {
		opts = append(opts, selection.WithDetails(s.Details))
	}
	if sess.chart != nil {
		opts = append(opts, selection.WithChart(sess.chart))
	}
	sess.controller = selection.New(repo, opts...)

	sess.selectFirst()
	return sess, nil
}

// buildChart runs the factory, turning an error or a panic into no-chart
// mode.
func (s *Session) buildChart(factory func() (chart.Adapter, error)) (adapter chart.Adapter) {
	if factory == nil {
		s.log.Warn("chart surface missing")
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("chart construction panicked, continuing without chart", zap.Any("panic", r))
			adapter = nil
		}
	}()
	a, err := factory()
	if err != nil {
		s.log.Error("chart construction failed, continuing without chart", zap.Error(err))
		return nil
	}
	return a
}

func (s *Session) onSelect(id string) {
	// Select already logs unknown ids.
	_ = s.controller.Select(id)
}

// selectFirst reports false when the curriculum has no lessons.
func (s *Session) selectFirst() bool {
	first, ok := s.repo.FirstLesson()
	if !ok {
		s.log.Info("curriculum is empty, nothing to select")
		return false
	}
	if err := s.controller.Select(first.ID); err != nil {
		s.log.Warn("initial selection failed", zap.Error(err))
	}
	return true
}

// Select makes id the active lesson.
func (s *Session) Select(id string) error {
	return s.controller.Select(id)
}

// Tree returns the navigation tree.
func (s *Session) Tree() *nav.Tree {
	return s.tree
}

// Repository returns the current curriculum.
func (s *Session) Repository() *curriculum.Repository {
	return s.repo
}

// Chart returns the chart adapter, or nil in no-chart mode.
func (s *Session) Chart() chart.Adapter {
	return s.chart
}

// HasChart reports whether the chart surface is live.
func (s *Session) HasChart() bool {
	return s.chart != nil
}

// ActiveLessonID returns the selected lesson id, or "" before the first
// selection.
func (s *Session) ActiveLessonID() string {
	return s.controller.State().ActiveLessonID
}

// Resize forwards a container size change to the chart.
func (s *Session) Resize(width, height int) {
	if s.chart != nil {
		s.chart.Resize(width, height)
	}
}

// Reload swaps in a new curriculum. Collapse flags carry over by step id,
// and the active lesson is reselected if it still exists, otherwise the
// first lesson is. With no lessons left the details and chart are blanked.
func (s *Session) Reload(repo *curriculum.Repository) {
	collapse := s.tree.CollapseState()
	cursor := s.tree.CursorID()
	active := s.ActiveLessonID()

	s.repo = repo
	s.tree = nav.Build(repo, s.onSelect)
	s.tree.ApplyCollapseState(collapse)
	s.controller.Rebind(repo, s.tree)

	if _, ok := repo.FindLesson(active); ok {
		if err := s.controller.Select(active); err != nil {
			s.log.Warn("reselect after reload failed", zap.Error(err))
		}
	} else {
		if active != "" {
			s.log.Info("active lesson removed by reload", zap.String("lesson_id", active))
		}
		if !s.selectFirst() {
			s.controller.Clear()
		}
	}
	s.tree.SetCursorByID(cursor)
	s.log.Info("curriculum reloaded",
		zap.Int("steps", repo.StepCount()), zap.Int("lessons", repo.LessonCount()))
}
