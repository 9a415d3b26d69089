package export

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/candlecourse/pkg/chart"
	"github.com/vanderheijden86/candlecourse/pkg/curriculum"
	"github.com/vanderheijden86/candlecourse/pkg/debug"
)

// BatchOptions controls ExportSnapshots.
type BatchOptions struct {
	Dir     string        // Output directory
	Format  string        // "png" or "svg"
	Workers int           // Parallel renders; <= 0 uses GOMAXPROCS
	Chart   chart.Options // Colors
	Logger  *zap.Logger
}

// ExportSnapshots renders one snapshot per lesson into opts.Dir and returns
// the written paths in curriculum order. Lessons are immutable, so workers
// share nothing but the output directory. The first failure cancels the
// remaining renders.
func ExportSnapshots(ctx context.Context, repo *curriculum.Repository, opts BatchOptions) ([]string, error) {
	format, _, err := SnapshotFormat(opts.Format, "")
	if err != nil {
		return nil, err
	}
	log := debug.Or(opts.Logger).Named("export")

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	lessons := repo.AllLessons()
	paths := make([]string, len(lessons))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, lesson := range lessons {
		paths[i] = filepath.Join(opts.Dir, SnapshotFileName(lesson.ID, format))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := SaveChartSnapshot(SnapshotOptions{
				Path:   paths[i],
				Format: format,
				Title:  lesson.Title,
				Points: lesson.Data,
				Chart:  opts.Chart,
			})
			if err != nil {
				return fmt.Errorf("lesson %s: %w", lesson.ID, err)
			}
			log.Debug("snapshot written", zap.String("lesson_id", lesson.ID), zap.String("path", paths[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Info("snapshots exported", zap.Int("count", len(paths)), zap.String("dir", opts.Dir))
	return paths, nil
}

// SnapshotFileName builds a file-system safe name for a lesson snapshot.
func SnapshotFileName(lessonID, format string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, lessonID)
	if name == "" {
		name = "lesson"
	}
	return name + "." + format
}
