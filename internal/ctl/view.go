package ctl

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/large-farva/tickscope/internal/config"
	"github.com/large-farva/tickscope/internal/tui"
)

// ViewOptions controls the interactive viewer.
type ViewOptions struct {
	Viewer config.ViewerConfig
	Logger *log.Logger
}

// View runs the full-screen chart until the user quits or ctx is
// cancelled. The stream controller and the TUI program run side by side;
// whichever stops first stops the other.
func View(ctx context.Context, baseURL string, opts ViewOptions) error {
	bridge := &tui.Bridge{}
	ctrl, url, err := newController(baseURL, opts.Viewer, opts.Logger, bridge)
	if err != nil {
		return err
	}

	app := tui.NewApp(ctrl, tui.Options{
		URL:        url,
		IntervalMs: opts.Viewer.IntervalMs,
		Series:     opts.Viewer.Series,
		Capacity:   opts.Viewer.WindowSize,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(runCtx))
	bridge.Attach(p)

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return ctrl.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if err != nil && ctx.Err() != nil {
			// Killed by the caller's context; not a failure.
			return nil
		}
		return err
	})
	return g.Wait()
}
