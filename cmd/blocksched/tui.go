package main

import (
	"errors"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/blocksched/pkg/adapters/cronticker"
	"github.com/user/blocksched/pkg/adapters/diskvstore"
	"github.com/user/blocksched/pkg/adapters/logger"
	"github.com/user/blocksched/pkg/adapters/osfilesystem"
	"github.com/user/blocksched/pkg/config"
	"github.com/user/blocksched/pkg/orchestrator"
	"github.com/user/blocksched/pkg/ports"
	"github.com/user/blocksched/pkg/tui"
)

// TUICmd defines the tui subcommand.
type TUICmd struct {
	DatasetFlags

	Tick           string `help:"Cron spec of the current-time tick (default: @every 30s)."`
	StateDir       string `help:"Directory the selection and tui.log are kept in."`
	ColumnsPerHour int    `help:"Terminal cells per hour (default: 4)."`
}

// Run executes the tui command.
func (cmd *TUICmd) Run(g *Globals) error {
	cfg, err := g.load(cmd.DatasetFlags)
	if err != nil {
		return err
	}
	if cmd.Tick != "" {
		cfg.Tick = cmd.Tick
	}
	if cmd.StateDir != "" {
		cfg.StateDir = cmd.StateDir
	}
	if cmd.ColumnsPerHour > 0 {
		cfg.Terminal.ColumnsPerHour = cmd.ColumnsPerHour
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	stateDir := config.Expand(cfg.StateDir)
	fs := osfilesystem.New()
	if err := fs.MkdirAll(stateDir); err != nil {
		return err
	}

	// The alternate screen owns stdout, so log lines go to a file.
	var log ports.Logger = logger.NewNoop()
	if !g.Quiet {
		f, err := os.OpenFile(filepath.Join(stateDir, "tui.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		log = logger.NewConsoleTo(ports.ParseLogLevel(g.LogLevel), f, f)
	}

	ctx, cancel := signalContext(log)
	defer cancel()

	clock, err := newClock(cfg)
	if err != nil {
		return err
	}
	loc, _ := cfg.Location()

	source := newSource(cfg, fs, log)
	repo, err := orchestrator.Load(ctx, source, loc, log)
	if err != nil {
		return err
	}

	opts := tui.DefaultOptions()
	opts.Theme = cfg.LayoutTheme()
	opts.Style = cfg.Style()
	opts.ShrinkDelay = cfg.ShrinkDelay()
	opts.Terminal = cfg.TerminalOptions()
	opts.TickEvery = 0

	store := diskvstore.New(stateDir, diskvstore.WithNamespace(source.Name()))
	model, err := tui.New(ctx, repo, store, clock, log, opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))

	ticker := cronticker.New(cfg.Tick)
	if err := ticker.Start(func() { p.Send(tui.TickMsg(clock.Now())) }); err != nil {
		return err
	}
	defer ticker.Stop()

	if _, err := p.Run(); err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return err
	}
	return nil
}
