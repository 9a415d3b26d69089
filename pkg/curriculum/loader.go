package curriculum

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/candlecourse/pkg/debug"
	"github.com/vanderheijden86/candlecourse/pkg/metrics"
	"github.com/vanderheijden86/candlecourse/pkg/model"
	"github.com/vanderheijden86/candlecourse/pkg/series"
)

//go:embed content/curriculum.yaml
var defaultContent []byte

// DefaultSource names the built-in course in diagnostics.
const DefaultSource = "built-in course"

// ErrUnsupportedFormat is returned for files that are neither YAML nor JSON.
var ErrUnsupportedFormat = errors.New("unsupported curriculum format")

// Format is a curriculum file encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Options control how a curriculum file is materialized.
type Options struct {
	// Seed drives the generator for lessons with a generate block. Zero
	// picks a fresh seed, so generated charts differ between runs.
	Seed uint64
}

// Document is the on-disk curriculum schema. Each lesson carries either
// hand-authored data or a generate block, never both.
type Document struct {
	Steps   []StepDoc   `json:"steps,omitempty" yaml:"steps,omitempty" validate:"dive"`
	Lessons []LessonDoc `json:"lessons,omitempty" yaml:"lessons,omitempty" validate:"dive"`
}

// StepDoc is a step in a curriculum file.
type StepDoc struct {
	ID          string      `json:"id" yaml:"id" validate:"required"`
	Title       string      `json:"title" yaml:"title" validate:"required"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Lessons     []LessonDoc `json:"lessons" yaml:"lessons" validate:"dive"`
}

// LessonDoc is a lesson in a curriculum file.
type LessonDoc struct {
	ID          string        `json:"id" yaml:"id" validate:"required"`
	Title       string        `json:"title" yaml:"title" validate:"required"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Data        []model.Point `json:"data,omitempty" yaml:"data,omitempty"`
	Generate    *series.Spec  `json:"generate,omitempty" yaml:"generate,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterStructValidation(lessonSource, LessonDoc{})
	v.RegisterStructValidation(generateStart, series.Spec{})
	return v
}

func lessonSource(sl validator.StructLevel) {
	l := sl.Current().Interface().(LessonDoc)
	switch {
	case len(l.Data) == 0 && l.Generate == nil:
		sl.ReportError(l.Data, "data", "Data", "data_or_generate", "")
	case len(l.Data) > 0 && l.Generate != nil:
		sl.ReportError(l.Generate, "generate", "Generate", "data_xor_generate", "")
	}
}

func generateStart(sl validator.StructLevel) {
	s := sl.Current().Interface().(series.Spec)
	if s.Start.IsZero() {
		sl.ReportError(s.Start, "start", "Start", "required", "")
	}
}

// Validate checks the document's structure: required ids and titles,
// exactly one data source per lesson, and generate parameter ranges.
func (d *Document) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("invalid curriculum: %s", strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "data_or_generate":
		return strings.TrimSuffix(field, ".data") + " needs data or a generate block"
	case "data_xor_generate":
		return strings.TrimSuffix(field, ".generate") + " has both data and a generate block"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s must satisfy %s", field, fe.Tag())
	}
}

// Build materializes the document into a Repository, generating series for
// lessons that use a generate block. Generation runs in document order from
// a single generator, so a fixed seed gives identical content.
func (d *Document) Build(opts Options) (*Repository, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	rng := series.NewRand(opts.Seed)

	steps := make([]model.Step, 0, len(d.Steps))
	for _, s := range d.Steps {
		step := model.Step{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Lessons:     make([]model.Lesson, 0, len(s.Lessons)),
		}
		for _, l := range s.Lessons {
			step.Lessons = append(step.Lessons, l.lesson(rng))
		}
		steps = append(steps, step)
	}

	loose := make([]model.Lesson, 0, len(d.Lessons))
	for _, l := range d.Lessons {
		loose = append(loose, l.lesson(rng))
	}

	return New(steps, loose)
}

func (l LessonDoc) lesson(rng *rand.Rand) model.Lesson {
	data := l.Data
	if l.Generate != nil {
		data = l.Generate.Generate(rng)
	}
	return model.Lesson{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Data:        data,
	}
}

// DocumentFrom converts a repository back to the file schema with every
// series written out as data.
func DocumentFrom(r *Repository) Document {
	var doc Document
	for _, s := range r.AllSteps() {
		sd := StepDoc{ID: s.ID, Title: s.Title, Description: s.Description}
		for _, l := range s.Lessons {
			sd.Lessons = append(sd.Lessons, lessonDoc(l))
		}
		doc.Steps = append(doc.Steps, sd)
	}
	for _, l := range r.LooseLessons() {
		doc.Lessons = append(doc.Lessons, lessonDoc(l))
	}
	return doc
}

func lessonDoc(l model.Lesson) LessonDoc {
	return LessonDoc{ID: l.ID, Title: l.Title, Description: l.Description, Data: l.Data}
}

// Decode parses a curriculum document. Unknown fields are rejected so that
// typos in hand-written files surface instead of silently dropping data.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing json: %w", err)
		}
	default:
		return nil, ErrUnsupportedFormat
	}
	return &doc, nil
}

// Parse decodes and builds a curriculum from raw bytes.
func Parse(data []byte, format Format, opts Options) (*Repository, error) {
	doc, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, err
	}
	return doc.Build(opts)
}

// Load reads a curriculum file. The format follows the file extension.
func Load(path string, opts Options) (*Repository, error) {
	defer metrics.Timer(metrics.CurriculumLoad)()

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading curriculum: %w", err)
	}
	repo, err := Parse(data, format, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	debug.Log("loaded curriculum %s: %d steps, %d lessons", path, repo.StepCount(), repo.LessonCount())
	return repo, nil
}

// LoadDefault builds the built-in course.
func LoadDefault(opts Options) (*Repository, error) {
	defer metrics.Timer(metrics.CurriculumLoad)()

	repo, err := Parse(defaultContent, FormatYAML, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", DefaultSource, err)
	}
	return repo, nil
}

// LoadOrDefault loads path, or the built-in course when path is empty.
func LoadOrDefault(path string, opts Options) (*Repository, string, error) {
	if path == "" {
		repo, err := LoadDefault(opts)
		return repo, DefaultSource, err
	}
	repo, err := Load(path, opts)
	return repo, path, err
}
