package export

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vanderheijden86/candlecourse/pkg/chart"
	"github.com/vanderheijden86/candlecourse/pkg/curriculum"
)

// Options selects what Run writes and where.
type Options struct {
	Format  string
	Dir     string
	Workers int
	Title   string
	Source  string
	Chart   chart.Options
	Logger  *zap.Logger
}

// Run exports repo in the requested format and returns the written paths.
func Run(ctx context.Context, repo *curriculum.Repository, opts Options) ([]string, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	switch opts.Format {
	case FormatPNG, FormatSVG:
		return ExportSnapshots(ctx, repo, BatchOptions{
			Dir:     opts.Dir,
			Format:  opts.Format,
			Workers: opts.Workers,
			Chart:   opts.Chart,
			Logger:  opts.Logger,
		})
	case FormatSQLite:
		e := NewSQLiteExporter(repo)
		e.Title, e.Source, e.Logger = opts.Title, opts.Source, opts.Logger
		path, err := e.Export(opts.Dir)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	case FormatJSON:
		path, err := WriteJSONFile(opts.Dir, repo)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (want one of %v)", opts.Format, Formats)
	}
}
