package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/candlecourse/pkg/curriculum"
	"github.com/vanderheijden86/candlecourse/pkg/model"
)

// lessonEntry is one row of `lessons --json`.
type lessonEntry struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	StepID  string     `json:"step_id,omitempty"`
	Candles int        `json:"candles"`
	From    *model.Date `json:"from,omitempty"`
	To      *model.Date `json:"to,omitempty"`
}

func newLessonsCmd(g *globals) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "lessons",
		Short: "List steps and lessons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, _, err := g.loadCurriculum(g.loadConfig())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(g.out)
				enc.SetIndent("", "  ")
				return enc.Encode(lessonEntries(repo))
			}
			printLessonTree(g, repo)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print lessons as JSON")
	return cmd
}

func lessonEntries(repo *curriculum.Repository) []lessonEntry {
	all := repo.AllLessons()
	out := make([]lessonEntry, 0, len(all))
	for _, l := range all {
		e := lessonEntry{ID: l.ID, Title: l.Title, StepID: l.StepID, Candles: len(l.Data)}
		if n := len(l.Data); n > 0 {
			e.From, e.To = &l.Data[0].Time, &l.Data[n-1].Time
		}
		out = append(out, e)
	}
	return out
}

func printLessonTree(g *globals, repo *curriculum.Repository) {
	for _, s := range repo.AllSteps() {
		fmt.Fprintf(g.out, "%s  %s (%d)\n", s.ID, s.Title, len(s.Lessons))
		for _, l := range s.Lessons {
			fmt.Fprintf(g.out, "  %s  %s\n", l.ID, l.Title)
		}
	}
	for _, l := range repo.LooseLessons() {
		fmt.Fprintf(g.out, "%s  %s\n", l.ID, l.Title)
	}
}
