package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/candlecourse/pkg/curriculum"
	"github.com/vanderheijden86/candlecourse/pkg/model"
	"github.com/vanderheijden86/candlecourse/pkg/series"
)

// AssertLessonCount checks the total number of lessons.
func AssertLessonCount(t *testing.T, repo *curriculum.Repository, expected int) {
	t.Helper()
	if got := repo.LessonCount(); got != expected {
		t.Errorf("expected %d lessons, got %d", expected, got)
	}
}

// AssertNoDuplicateIDs checks that lesson ids are unique across the
// curriculum.
func AssertNoDuplicateIDs(t *testing.T, repo *curriculum.Repository) {
	t.Helper()
	seen := make(map[string]bool)
	for _, l := range repo.AllLessons() {
		if seen[l.ID] {
			t.Errorf("duplicate lesson ID: %s", l.ID)
		}
		seen[l.ID] = true
	}
}

// AssertAllValid checks every lesson series for OHLC and date problems.
func AssertAllValid(t *testing.T, repo *curriculum.Repository) {
	t.Helper()
	for _, l := range repo.AllLessons() {
		for _, issue := range series.Validate(l.Data) {
			t.Errorf("lesson %s: %s", l.ID, issue)
		}
	}
}

// AssertJSONEqual compares two values after JSON encoding.
// Useful for comparing structs that may have different Go representations
// but equivalent JSON forms.
func AssertJSONEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}

	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}

	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// WriteCurriculumFile writes repo as a YAML curriculum file at path.
func WriteCurriculumFile(t *testing.T, path string, repo *curriculum.Repository) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	data, err := yaml.Marshal(curriculum.DocumentFrom(repo))
	if err != nil {
		t.Fatalf("failed to marshal curriculum: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write curriculum file: %v", err)
	}
}

// LessonIDs returns lesson ids in document order.
func LessonIDs(repo *curriculum.Repository) []string {
	lessons := repo.AllLessons()
	ids := make([]string, len(lessons))
	for i, l := range lessons {
		ids[i] = l.ID
	}
	return ids
}

// MustLesson returns the lesson with the given id or fails the test.
func MustLesson(t *testing.T, repo *curriculum.Repository, id string) model.Lesson {
	t.Helper()
	l, ok := repo.FindLesson(id)
	if !ok {
		t.Fatalf("lesson %s not found", id)
	}
	return *l
}
