package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/candlecourse/pkg/chart"
	"github.com/vanderheijden86/candlecourse/pkg/debug"
	"github.com/vanderheijden86/candlecourse/pkg/export"
)

func newExportCmd(g *globals) *cobra.Command {
	var (
		format  string
		dir     string
		workers int
		title   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export lesson charts or the curriculum",
		Long: `Export writes one chart image per lesson (png, svg), a SQLite database
of steps, lessons and points (sqlite), or the curriculum as JSON (json).

Run without flags in a terminal to choose interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := g.loadConfig()
			flush, err := initLogging(cfg, false)
			if err != nil {
				return err
			}
			defer flush()

			if cmd.Flags().NFlag() == 0 && export.IsTerminal() {
				answers, err := export.NewWizard().Run()
				if err != nil {
					return err
				}
				format, dir, title = answers.Format, answers.OutputDir, answers.Title
				if answers.Workers > 0 {
					workers = answers.Workers
				}
			}

			repo, source, err := g.loadCurriculum(cfg)
			if err != nil {
				return err
			}
			paths, err := export.Run(cmd.Context(), repo, export.Options{
				Format:  format,
				Dir:     dir,
				Workers: workers,
				Title:   title,
				Source:  source,
				Chart: chart.DefaultOptions().WithColors(
					cfg.Chart.Background, cfg.Chart.Text, cfg.Chart.Grid, cfg.Chart.Up, cfg.Chart.Down),
				Logger: debug.Logger(),
			})
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(g.out, p)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&format, "format", "f", export.FormatPNG, fmt.Sprintf("output format %v", export.Formats))
	f.StringVarP(&dir, "out", "o", "candlecourse-export", "output directory")
	f.IntVar(&workers, "workers", 0, "parallel chart renderers (0 = one per CPU)")
	f.StringVar(&title, "title", "", "title stored in the SQLite export")
	return cmd
}
