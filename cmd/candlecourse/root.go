package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/candlecourse/pkg/config"
	"github.com/vanderheijden86/candlecourse/pkg/curriculum"
	"github.com/vanderheijden86/candlecourse/pkg/debug"
	"github.com/vanderheijden86/candlecourse/pkg/metrics"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	configPath string
	curriculum string
	seed       uint64

	out    io.Writer
	errOut io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	g := &globals{out: out, errOut: errOut}
	tui := &tuiOptions{}

	root := &cobra.Command{
		Use:   "candlecourse",
		Short: "Browse a candlestick trading curriculum in the terminal",
		Long: `candlecourse shows a curriculum of trading lessons grouped into steps.
Pick a lesson to read its description and study its candlestick chart.

Without --curriculum the built-in course is shown.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(g, tui)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default: "+config.ConfigPath()+")")
	pf.StringVarP(&g.curriculum, "curriculum", "c", "", "curriculum file (.yaml or .json)")
	pf.Uint64Var(&g.seed, "seed", 0, "seed for generated lesson charts (0 picks a fresh one)")

	f := root.Flags()
	f.BoolVar(&tui.noChart, "no-chart", false, "run without the chart pane")
	f.BoolVar(&tui.noMouse, "no-mouse", false, "do not capture the mouse")
	f.BoolVarP(&tui.watch, "watch", "w", false, "reload the curriculum file when it changes")

	root.AddCommand(
		newExportCmd(g),
		newValidateCmd(g),
		newLessonsCmd(g),
		newGenerateCmd(g),
		newVersionCmd(g),
	)
	return root
}

// loadConfig reads the config file. A broken file is reported and the
// defaults are used.
func (g *globals) loadConfig() config.Config {
	var (
		cfg config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFrom(g.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(g.errOut, "Warning: %v; using defaults\n", err)
	}
	return cfg
}

// curriculumOptions resolves the curriculum path and seed: flags win over
// the config file.
func (g *globals) curriculumOptions(cfg config.Config) (string, curriculum.Options) {
	path := g.curriculum
	if path == "" {
		path = cfg.Curriculum.Path
	}
	seed := g.seed
	if seed == 0 {
		seed = cfg.Curriculum.Seed
	}
	return path, curriculum.Options{Seed: seed}
}

// loadCurriculum loads the configured curriculum, or the built-in course.
func (g *globals) loadCurriculum(cfg config.Config) (*curriculum.Repository, string, error) {
	path, opts := g.curriculumOptions(cfg)
	return curriculum.LoadOrDefault(path, opts)
}

// initLogging installs the process logger. The TUI owns the terminal, so it
// logs to a file; other commands log to stderr.
func initLogging(cfg config.Config, toFile bool) (func(), error) {
	output := "stderr"
	if toFile {
		path, err := cfg.LogPath()
		if err != nil {
			return func() {}, err
		}
		output = path
	}
	flush, err := debug.Init(cfg.Log.Level, output)
	if err != nil {
		return func() {}, err
	}
	return func() {
		metrics.LogAll()
		flush()
	}, nil
}
