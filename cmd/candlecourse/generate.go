package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/candlecourse/pkg/model"
	"github.com/vanderheijden86/candlecourse/pkg/series"
)

func newGenerateCmd(g *globals) *cobra.Command {
	var (
		start string
		spec  = series.Spec{Count: 30, Base: 100, Range: 10, Volatility: 2}
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a generated candle series as JSON",
		Long: `Generate prints a random-walk candle series. The output can be pasted
into a lesson's data field. Use --seed for repeatable output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := model.ParseDate(start)
			if err != nil {
				return err
			}
			spec.Start = d
			if spec.Count < 1 {
				return fmt.Errorf("--count must be at least 1, got %d", spec.Count)
			}
			points := spec.Generate(series.NewRand(g.seed))
			enc := json.NewEncoder(g.out)
			enc.SetIndent("", "  ")
			return enc.Encode(points)
		},
	}
	f := cmd.Flags()
	f.StringVar(&start, "start", "2023-01-01", "first candle date (YYYY-MM-DD)")
	f.IntVarP(&spec.Count, "count", "n", spec.Count, "number of candles")
	f.Float64Var(&spec.Base, "base", spec.Base, "base price")
	f.Float64Var(&spec.Range, "range", spec.Range, "open-to-close swing")
	f.Float64Var(&spec.Volatility, "volatility", spec.Volatility, "gap and wick size")
	return cmd
}
