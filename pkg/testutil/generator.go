// Package testutil provides curriculum fixtures for tests.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"

	"github.com/vanderheijden86/candlecourse/pkg/curriculum"
	"github.com/vanderheijden86/candlecourse/pkg/model"
	"github.com/vanderheijden86/candlecourse/pkg/series"
)

// GeneratorConfig controls fixture generation.
type GeneratorConfig struct {
	Seed         uint64     // Random seed for determinism (0 = use current time)
	Start        model.Date // First candle date (default: 2023-01-01)
	Points       int        // Candles per lesson (default: 5)
	Base         float64    // Starting price (default: 100)
	Range        float64    // Body range (default: 10)
	Volatility   float64    // Wick and gap scale (default: 5)
	StepPrefix   string     // Prefix for step IDs (default: "S")
	LessonPrefix string     // Prefix for lesson IDs (default: "L")
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:         42,
		Start:        model.MustDate("2023-01-01"),
		Points:       5,
		Base:         100,
		Range:        10,
		Volatility:   5,
		StepPrefix:   "S",
		LessonPrefix: "L",
	}
}

// Generator creates curriculum fixtures. Lesson ids are numbered across the
// whole curriculum (L1, L2, ...), step ids per step (S1, S2, ...).
type Generator struct {
	cfg    GeneratorConfig
	spec   series.Spec
	nextID int
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	def := DefaultConfig()
	if cfg.Start.IsZero() {
		cfg.Start = def.Start
	}
	if cfg.Points <= 0 {
		cfg.Points = def.Points
	}
	if cfg.Base <= 0 {
		cfg.Base = def.Base
	}
	if cfg.StepPrefix == "" {
		cfg.StepPrefix = def.StepPrefix
	}
	if cfg.LessonPrefix == "" {
		cfg.LessonPrefix = def.LessonPrefix
	}
	return &Generator{
		cfg: cfg,
		spec: series.Spec{
			Start:      cfg.Start,
			Count:      cfg.Points,
			Base:       cfg.Base,
			Range:      cfg.Range,
			Volatility: cfg.Volatility,
		},
	}
}

// NewDefault creates a Generator with DefaultConfig.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Lesson creates the next numbered lesson. Each lesson gets its own series
// seeded from the config seed and the lesson number.
func (g *Generator) Lesson() model.Lesson {
	g.nextID++
	id := fmt.Sprintf("%s%d", g.cfg.LessonPrefix, g.nextID)
	seed := g.cfg.Seed
	if seed != 0 {
		seed += uint64(g.nextID)
	}
	return model.Lesson{
		ID:          id,
		Title:       "Lesson " + id,
		Description: "About **" + id + "**.",
		Data:        g.spec.Generate(series.NewRand(seed)),
	}
}

// Steps creates steps with the given lesson counts, e.g. Steps(2, 1) builds
// S1{L1,L2} and S2{L3}.
func (g *Generator) Steps(lessonCounts ...int) []model.Step {
	steps := make([]model.Step, 0, len(lessonCounts))
	for i, n := range lessonCounts {
		id := fmt.Sprintf("%s%d", g.cfg.StepPrefix, i+1)
		step := model.Step{
			ID:          id,
			Title:       "Step " + id,
			Description: "Goal of " + id,
		}
		for j := 0; j < n; j++ {
			l := g.Lesson()
			l.StepID = id
			step.Lessons = append(step.Lessons, l)
		}
		steps = append(steps, step)
	}
	return steps
}

// Flat creates n ungrouped lessons.
func (g *Generator) Flat(n int) []model.Lesson {
	lessons := make([]model.Lesson, 0, n)
	for i := 0; i < n; i++ {
		lessons = append(lessons, g.Lesson())
	}
	return lessons
}

// Repository builds a grouped repository with the given lesson counts.
func (g *Generator) Repository(lessonCounts ...int) (*curriculum.Repository, error) {
	return curriculum.New(g.Steps(lessonCounts...), nil)
}

// Quick helpers for common cases. They panic on construction errors, which
// cannot happen for generated ids.

// QuickScenario returns the reference curriculum: S1{L1,L2}, S2{L3}.
func QuickScenario() *curriculum.Repository {
	return must(NewDefault().Repository(2, 1))
}

// QuickGrouped returns a grouped curriculum with the given lesson counts.
func QuickGrouped(lessonCounts ...int) *curriculum.Repository {
	return must(NewDefault().Repository(lessonCounts...))
}

// QuickFlat returns a flat curriculum of n lessons.
func QuickFlat(n int) *curriculum.Repository {
	return must(curriculum.New(nil, NewDefault().Flat(n)))
}

// Empty returns a curriculum with no steps and no lessons.
func Empty() *curriculum.Repository {
	return must(curriculum.New(nil, nil))
}

func must(r *curriculum.Repository, err error) *curriculum.Repository {
	if err != nil {
		panic(err)
	}
	return r
}
