package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/candlecourse/pkg/curriculum"
	"github.com/vanderheijden86/candlecourse/pkg/testutil"
)

func TestWriteJSONReloads(t *testing.T) {
	repo := testutil.QuickScenario()

	var buf bytes.Buffer
	if err := WriteJSON(&buf, repo); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"time": "2023-01-01"`) {
		t.Errorf("dates should be ISO strings:\n%s", buf.String())
	}

	back, err := curriculum.Parse(buf.Bytes(), curriculum.FormatJSON, curriculum.Options{})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if back.LessonCount() != repo.LessonCount() || back.StepCount() != repo.StepCount() {
		t.Fatalf("reloaded %d/%d, want %d/%d", back.StepCount(), back.LessonCount(), repo.StepCount(), repo.LessonCount())
	}
	for _, id := range testutil.LessonIDs(repo) {
		want := testutil.MustLesson(t, repo, id)
		got := testutil.MustLesson(t, back, id)
		testutil.AssertJSONEqual(t, want, got)
	}
}

func TestRunFormats(t *testing.T) {
	repo := testutil.QuickScenario()
	tests := []struct {
		format string
		files  []string
	}{
		{FormatPNG, []string{"L1.png", "L2.png", "L3.png"}},
		{FormatSVG, []string{"L1.svg", "L2.svg", "L3.svg"}},
		{FormatSQLite, []string{DatabaseName}},
		{FormatJSON, []string{JSONFileName}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := t.TempDir()
			paths, err := Run(context.Background(), repo, Options{Format: tt.format, Dir: dir})
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if len(paths) != len(tt.files) {
				t.Fatalf("paths = %v", paths)
			}
			for i, name := range tt.files {
				if paths[i] != filepath.Join(dir, name) {
					t.Errorf("path %d = %s", i, paths[i])
				}
				if _, err := os.Stat(paths[i]); err != nil {
					t.Error(err)
				}
			}
		})
	}
}

func TestRunRejects(t *testing.T) {
	repo := testutil.QuickScenario()
	if _, err := Run(context.Background(), repo, Options{Format: "pdf", Dir: t.TempDir()}); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := Run(context.Background(), repo, Options{Format: FormatJSON}); err == nil {
		t.Error("expected error for missing dir")
	}
}

func TestWizardConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wizard.json")

	missing, err := loadWizardConfigFrom(path)
	if err != nil || missing != nil {
		t.Fatalf("missing file: got %v, %v", missing, err)
	}

	in := &WizardConfig{Format: FormatSQLite, OutputDir: "out", Workers: 3, Title: "Course"}
	if err := saveWizardConfigTo(in, path); err != nil {
		t.Fatal(err)
	}
	out, err := loadWizardConfigFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if *out != *in {
		t.Errorf("round trip = %+v, want %+v", *out, *in)
	}
}

func TestWizardDefaults(t *testing.T) {
	w := NewWizard()
	cfg := w.GetConfig()
	if cfg.Format != FormatPNG || cfg.OutputDir == "" {
		t.Errorf("defaults = %+v", cfg)
	}
	if !strings.HasSuffix(WizardConfigPath(), "export-wizard.json") {
		t.Errorf("WizardConfigPath = %s", WizardConfigPath())
	}
}
