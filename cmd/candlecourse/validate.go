package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/candlecourse/pkg/series"
)

var errInvalidSeries = errors.New("curriculum has invalid series")

func newValidateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a curriculum file and every lesson's candles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.loadConfig()
			if len(args) == 1 {
				g.curriculum = args[0]
			}
			repo, source, err := g.loadCurriculum(cfg)
			if err != nil {
				return err
			}

			bad := 0
			for _, l := range repo.AllLessons() {
				issues := series.Validate(l.Data)
				if len(issues) == 0 {
					continue
				}
				bad++
				fmt.Fprintf(g.out, "%s (%s):\n", l.ID, l.Title)
				for _, is := range issues {
					fmt.Fprintf(g.out, "  %s\n", is)
				}
			}
			if bad > 0 {
				return fmt.Errorf("%w: %d of %d lessons", errInvalidSeries, bad, repo.LessonCount())
			}
			fmt.Fprintf(g.out, "ok: %s has %d steps, %d lessons\n", source, repo.StepCount(), repo.LessonCount())
			return nil
		},
	}
}
