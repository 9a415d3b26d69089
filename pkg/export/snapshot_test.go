package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/candlecourse/pkg/chart"
	"github.com/vanderheijden86/candlecourse/pkg/model"
	"github.com/vanderheijden86/candlecourse/pkg/testutil"
)

func testPoints(t *testing.T) []model.Point {
	t.Helper()
	return testutil.MustLesson(t, testutil.QuickScenario(), "L1").Data
}

func TestSaveChartSnapshot_SVGAndPNG(t *testing.T) {
	tmp := t.TempDir()
	cases := []struct {
		name   string
		file   string
		format string
	}{
		{"svg by extension", "chart.svg", ""},
		{"png by extension", "chart.png", ""},
		{"explicit format", "chart.out", "svg"},
		{"no extension defaults to png", "chart", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := filepath.Join(tmp, tc.file)
			err := SaveChartSnapshot(SnapshotOptions{
				Path:   out,
				Format: tc.format,
				Title:  "Lesson L1",
				Points: testPoints(t),
			})
			if err != nil {
				t.Fatalf("SaveChartSnapshot error: %v", err)
			}
			if tc.file == "chart" {
				out += ".png"
			}
			info, err := os.Stat(out)
			if err != nil {
				t.Fatalf("output not created: %v", err)
			}
			if info.Size() == 0 {
				t.Fatalf("output file is empty")
			}
		})
	}
}

func TestSaveChartSnapshot_Errors(t *testing.T) {
	tmp := t.TempDir()

	err := SaveChartSnapshot(SnapshotOptions{Path: filepath.Join(tmp, "a.png")})
	if !errors.Is(err, ErrNoData) {
		t.Errorf("empty series: got %v, want ErrNoData", err)
	}

	err = SaveChartSnapshot(SnapshotOptions{Path: filepath.Join(tmp, "a.txt"), Format: "txt", Points: testPoints(t)})
	if err == nil {
		t.Error("expected error for invalid format")
	}

	err = SaveChartSnapshot(SnapshotOptions{Format: "png", Points: testPoints(t)})
	if err == nil {
		t.Error("expected error for missing path")
	}

	bad := chart.DefaultOptions().WithColors("nope", "", "", "", "")
	err = SaveChartSnapshot(SnapshotOptions{Path: filepath.Join(tmp, "b.png"), Points: testPoints(t), Chart: bad})
	if !errors.Is(err, chart.ErrInvalidColor) {
		t.Errorf("bad color: got %v, want ErrInvalidColor", err)
	}
}

func TestRenderSVGUsesChartColors(t *testing.T) {
	layout, err := buildLayout(SnapshotOptions{Title: "Colors", Points: testPoints(t)})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := renderSVGToWriter(&buf, layout); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"#131722", "#363a45", "Colors", "2023-01-01", "2023-01-05"} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if !strings.Contains(out, "#26a69a") && !strings.Contains(out, "#ef5350") {
		t.Error("svg has no candle colors")
	}
}

func TestBuildLayoutCandlesInsidePlot(t *testing.T) {
	layout, err := buildLayout(SnapshotOptions{Points: testPoints(t), Width: 400, Height: 300})
	if err != nil {
		t.Fatal(err)
	}
	if len(layout.Candles) != 5 {
		t.Fatalf("candles = %d", len(layout.Candles))
	}
	top, bottom := layout.PlotY-0.001, layout.PlotY+layout.PlotH+0.001
	for i, c := range layout.Candles {
		if c.WickTop < top || c.WickBottom > bottom {
			t.Errorf("candle %d wick outside plot: %+v", i, c)
		}
		if c.BodyTop < c.WickTop || c.BodyBottom > c.WickBottom {
			t.Errorf("candle %d body outside wick: %+v", i, c)
		}
		if i > 0 && c.X <= layout.Candles[i-1].X {
			t.Errorf("candle %d not right of previous", i)
		}
	}
	if layout.Title != "Chart Snapshot" {
		t.Errorf("default title = %q", layout.Title)
	}
}

func TestExportSnapshots(t *testing.T) {
	dir := t.TempDir()
	repo := testutil.QuickScenario()

	paths, err := ExportSnapshots(context.Background(), repo, BatchOptions{Dir: dir, Format: "svg", Workers: 2})
	if err != nil {
		t.Fatalf("ExportSnapshots: %v", err)
	}
	want := []string{"L1.svg", "L2.svg", "L3.svg"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for i, p := range paths {
		if filepath.Base(p) != want[i] {
			t.Errorf("path %d = %s, want %s", i, p, want[i])
		}
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
}

func TestExportSnapshots_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExportSnapshots(ctx, testutil.QuickGrouped(3), BatchOptions{Dir: t.TempDir(), Format: "png"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestSnapshotFileName(t *testing.T) {
	tests := map[string]string{
		"L1":        "L1.png",
		"step/1 a":  "step_1_a.png",
		"캔들-01":     "캔들-01.png",
		"":          "lesson.png",
		"../escape": "___escape.png",
	}
	for in, want := range tests {
		if got := SnapshotFileName(in, "png"); got != want {
			t.Errorf("SnapshotFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
