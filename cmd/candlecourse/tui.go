package main

import (
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/vanderheijden86/candlecourse/pkg/debug"
	"github.com/vanderheijden86/candlecourse/pkg/ui"
	"github.com/vanderheijden86/candlecourse/pkg/watcher"
)

type tuiOptions struct {
	noChart bool
	noMouse bool
	watch   bool
}

func runTUI(g *globals, o *tuiOptions) error {
	cfg := g.loadConfig()
	if o.noChart {
		off := false
		cfg.UI.ShowChart = &off
	}
	if o.noMouse {
		off := false
		cfg.UI.Mouse = &off
	}

	flush, err := initLogging(cfg, true)
	if err != nil {
		return err
	}
	defer flush()
	log := debug.Logger().Named("main")

	path, copts := g.curriculumOptions(cfg)
	repo, source, err := g.loadCurriculum(cfg)
	if err != nil {
		return err
	}

	var reloader *watcher.Reloader
	if o.watch || cfg.Curriculum.Watch {
		if path == "" {
			log.Warn("nothing to watch, showing the built-in course")
		} else {
			reloader, err = watcher.NewReloader(path, copts, watcher.WithLogger(log))
			if err != nil {
				return err
			}
			if err := reloader.Start(); err != nil {
				return err
			}
			defer reloader.Stop()
		}
	}

	m, err := ui.NewModel(repo, ui.Options{
		Config:   cfg,
		Source:   source,
		Reloader: reloader,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithoutSignalHandler()}
	if cfg.MouseEnabled() {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	log.Info("starting", zap.String("source", source), zap.Int("lessons", repo.LessonCount()))
	return runTUIProgram(tea.NewProgram(m, opts...))
}

func runTUIProgram(p *tea.Program) error {
	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated runs: set CANDLE_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("CANDLE_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
