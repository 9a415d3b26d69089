// Package curriculum holds the read-only course content: steps, their
// lessons and any ungrouped lessons, plus the file loader and the built-in
// course.
package curriculum

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vanderheijden86/candlecourse/pkg/model"
)

// Construction errors. Callers match them with errors.Is.
var (
	ErrDuplicateLesson = errors.New("duplicate lesson id")
	ErrDuplicateStep   = errors.New("duplicate step id")
	ErrEmptySeries     = errors.New("lesson has no chart data")
	ErrMissingID       = errors.New("missing id")
	ErrIDConflict      = errors.New("lesson id equals a step id")
)

// Repository is an immutable curriculum. Steps keep document order, and
// lessons keep their order within each step. Loose lessons belong to no
// step; a repository with no steps is the flat variant.
//
// Point slices returned by accessors are shared with the repository and
// must not be modified.
type Repository struct {
	steps []model.Step
	loose []model.Lesson
	count int
}

// New validates and copies the given content. Lesson ids must be unique
// across the whole curriculum and may not reuse a step id, step ids must be
// unique, and every lesson needs at least one point.
func New(steps []model.Step, loose []model.Lesson) (*Repository, error) {
	r := &Repository{
		steps: make([]model.Step, 0, len(steps)),
		loose: make([]model.Lesson, 0, len(loose)),
	}
	stepIDs := make(map[string]struct{}, len(steps))
	lessonIDs := make(map[string]string)
	allSteps := make(map[string]struct{}, len(steps))
	for _, s := range steps {
		allSteps[s.ID] = struct{}{}
	}

	addLesson := func(l model.Lesson, where string) (model.Lesson, error) {
		if l.ID == "" {
			return l, fmt.Errorf("lesson %q in %s: %w", l.Title, where, ErrMissingID)
		}
		if prev, dup := lessonIDs[l.ID]; dup {
			return l, fmt.Errorf("lesson %q in %s (already in %s): %w", l.ID, where, prev, ErrDuplicateLesson)
		}
		if _, clash := allSteps[l.ID]; clash {
			return l, fmt.Errorf("lesson %q in %s: %w", l.ID, where, ErrIDConflict)
		}
		if len(l.Data) == 0 {
			return l, fmt.Errorf("lesson %q: %w", l.ID, ErrEmptySeries)
		}
		lessonIDs[l.ID] = where
		l.Data = slices.Clone(l.Data)
		r.count++
		return l, nil
	}

	for _, s := range steps {
		if s.ID == "" {
			return nil, fmt.Errorf("step %q: %w", s.Title, ErrMissingID)
		}
		if _, dup := stepIDs[s.ID]; dup {
			return nil, fmt.Errorf("step %q: %w", s.ID, ErrDuplicateStep)
		}
		stepIDs[s.ID] = struct{}{}

		step := s
		step.Lessons = make([]model.Lesson, 0, len(s.Lessons))
		for _, l := range s.Lessons {
			l.StepID = s.ID
			added, err := addLesson(l, "step "+s.ID)
			if err != nil {
				return nil, err
			}
			step.Lessons = append(step.Lessons, added)
		}
		r.steps = append(r.steps, step)
	}

	for _, l := range loose {
		l.StepID = ""
		added, err := addLesson(l, "top level")
		if err != nil {
			return nil, err
		}
		r.loose = append(r.loose, added)
	}

	return r, nil
}

// FindLesson looks up a lesson by id across every step and every loose
// lesson.
func (r *Repository) FindLesson(id string) (*model.Lesson, bool) {
	if r == nil || id == "" {
		return nil, false
	}
	for _, s := range r.steps {
		for i := range s.Lessons {
			if s.Lessons[i].ID == id {
				l := s.Lessons[i]
				return &l, true
			}
		}
	}
	for i := range r.loose {
		if r.loose[i].ID == id {
			l := r.loose[i]
			return &l, true
		}
	}
	return nil, false
}

// Step returns the step with the given id.
func (r *Repository) Step(id string) (model.Step, bool) {
	if r == nil {
		return model.Step{}, false
	}
	for _, s := range r.steps {
		if s.ID == id {
			return s, true
		}
	}
	return model.Step{}, false
}

// AllSteps returns the steps in document order.
func (r *Repository) AllSteps() []model.Step {
	if r == nil {
		return nil
	}
	return slices.Clone(r.steps)
}

// LooseLessons returns the lessons that belong to no step.
func (r *Repository) LooseLessons() []model.Lesson {
	if r == nil {
		return nil
	}
	return slices.Clone(r.loose)
}

// AllLessons returns every lesson in document order: step lessons first,
// then loose lessons.
func (r *Repository) AllLessons() []model.Lesson {
	if r == nil {
		return nil
	}
	out := make([]model.Lesson, 0, r.count)
	for _, s := range r.steps {
		out = append(out, s.Lessons...)
	}
	return append(out, r.loose...)
}

// FirstLesson returns the first lesson in document order.
func (r *Repository) FirstLesson() (*model.Lesson, bool) {
	if r == nil {
		return nil, false
	}
	for _, s := range r.steps {
		if len(s.Lessons) > 0 {
			l := s.Lessons[0]
			return &l, true
		}
	}
	if len(r.loose) > 0 {
		l := r.loose[0]
		return &l, true
	}
	return nil, false
}

// IsFlat reports whether the curriculum has no steps.
func (r *Repository) IsFlat() bool {
	return r == nil || len(r.steps) == 0
}

// LessonCount returns the total number of lessons.
func (r *Repository) LessonCount() int {
	if r == nil {
		return 0
	}
	return r.count
}

// StepCount returns the number of steps.
func (r *Repository) StepCount() int {
	if r == nil {
		return 0
	}
	return len(r.steps)
}
