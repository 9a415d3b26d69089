// Package selection keeps the three lesson views consistent: the details
// panel, the navigation highlight and the chart dataset all follow the
// active lesson.
package selection

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vanderheijden86/candlecourse/pkg/chart"
	"github.com/vanderheijden86/candlecourse/pkg/debug"
	"github.com/vanderheijden86/candlecourse/pkg/metrics"
	"github.com/vanderheijden86/candlecourse/pkg/model"
)

// ErrLessonNotFound is returned by Select for an unknown lesson id.
var ErrLessonNotFound = errors.New("lesson not found")

// Lookup resolves lesson ids. *curriculum.Repository implements it.
type Lookup interface {
	FindLesson(id string) (*model.Lesson, bool)
}

// DetailsView shows the active lesson. The description is markdown and is
// rendered as rich text; curriculum content is trusted.
type DetailsView interface {
	ShowLesson(title, description string)
}

// Highlighter marks exactly one navigation node active and clears every
// other node, step headers included.
type Highlighter interface {
	SetActive(id string)
}

// State is the selection state. ActiveLessonID is empty until the first
// successful Select and is never cleared afterwards.
type State struct {
	ActiveLessonID string
}

// Option configures a Controller.
type Option func(*Controller)

// WithDetails sets the details view.
func WithDetails(d DetailsView) Option {
	return func(c *Controller) { c.details = d }
}

// WithHighlighter sets the navigation highlighter.
func WithHighlighter(h Highlighter) Option {
	return func(c *Controller) { c.highlighter = h }
}

// WithChart sets the chart adapter.
func WithChart(a chart.Adapter) Option {
	return func(c *Controller) { c.chart = a }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller drives the views on lesson selection. It runs on the UI event
// loop and is not safe for concurrent use.
type Controller struct {
	lessons     Lookup
	details     DetailsView
	highlighter Highlighter
	chart       chart.Adapter
	log         *zap.Logger
	state       State
}

// New creates a Controller. Every collaborator except the lookup is
// optional.
func New(lessons Lookup, opts ...Option) *Controller {
	c := &Controller{lessons: lessons}
	for _, o := range opts {
		o(c)
	}
	c.log = debug.Or(c.log).Named("selection")
	return c
}

// Select makes lessonID the active lesson. An unknown id logs a warning and
// returns ErrLessonNotFound without touching any view or the state.
// Without a chart adapter the details and highlight still update.
func (c *Controller) Select(lessonID string) error {
	defer metrics.Timer(metrics.Select)()

	lesson, ok := c.lessons.FindLesson(lessonID)
	if !ok {
		c.log.Warn("lesson not found", zap.String("lesson_id", lessonID))
		return fmt.Errorf("select %q: %w", lessonID, ErrLessonNotFound)
	}

	if c.details != nil {
		c.details.ShowLesson(lesson.Title, lesson.Description)
	}
	if c.highlighter != nil {
		c.highlighter.SetActive(lessonID)
	}
	if c.chart != nil {
		c.chart.SetSeries(lesson.Data)
		c.chart.FitViewport()
	} else {
		c.log.Warn("chart unavailable, skipping chart update", zap.String("lesson_id", lessonID))
	}

	c.state.ActiveLessonID = lessonID
	debug.Log("selected lesson %s (%d points)", lessonID, len(lesson.Data))
	return nil
}

// Clear blanks the details view, the highlight and the chart, for a
// curriculum with nothing left to show. ActiveLessonID is kept.
func (c *Controller) Clear() {
	if c.details != nil {
		c.details.ShowLesson("", "")
	}
	if c.highlighter != nil {
		c.highlighter.SetActive("")
	}
	if c.chart != nil {
		c.chart.SetSeries(nil)
		c.chart.FitViewport()
	}
}

// State returns a copy of the selection state.
func (c *Controller) State() State {
	return c.state
}

// HasChart reports whether a chart adapter is attached.
func (c *Controller) HasChart() bool {
	return c.chart != nil
}

// Chart returns the attached chart adapter, or nil.
func (c *Controller) Chart() chart.Adapter {
	return c.chart
}

// Rebind swaps the lookup and highlighter after a curriculum reload. The
// state is kept; the caller reselects.
func (c *Controller) Rebind(lessons Lookup, h Highlighter) {
	c.lessons = lessons
	c.highlighter = h
}
