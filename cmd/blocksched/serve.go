package main

import (
	"github.com/user/blocksched/pkg/adapters/cronticker"
	"github.com/user/blocksched/pkg/adapters/datasource"
	"github.com/user/blocksched/pkg/adapters/diskvstore"
	"github.com/user/blocksched/pkg/adapters/fswatch"
	"github.com/user/blocksched/pkg/adapters/osfilesystem"
	"github.com/user/blocksched/pkg/config"
	"github.com/user/blocksched/pkg/server"
)

// ServeCmd defines the serve subcommand.
type ServeCmd struct {
	DatasetFlags

	Listen   string `short:"L" help:"Address to listen on (default: 127.0.0.1:8080)."`
	Tick     string `help:"Cron spec of the current-time tick (default: @every 30s)."`
	StateDir string `help:"Directory the selection is persisted in."`
	NoWatch  bool   `help:"Do not reload when the dataset file changes."`
}

// Run executes the serve command.
func (cmd *ServeCmd) Run(g *Globals) error {
	cfg, err := g.load(cmd.DatasetFlags)
	if err != nil {
		return err
	}
	if cmd.Listen != "" {
		cfg.Listen = cmd.Listen
	}
	if cmd.Tick != "" {
		cfg.Tick = cmd.Tick
	}
	if cmd.StateDir != "" {
		cfg.StateDir = cmd.StateDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, flush := g.newLogger()
	defer flush()

	ctx, cancel := signalContext(log)
	defer cancel()

	clock, err := newClock(cfg)
	if err != nil {
		return err
	}
	loc, _ := cfg.Location()

	fs := osfilesystem.New()
	source := newSource(cfg, fs, log)
	store := diskvstore.New(config.Expand(cfg.StateDir), diskvstore.WithNamespace(source.Name()))

	opts := server.DefaultOptions()
	opts.Theme = cfg.LayoutTheme()
	opts.Style = cfg.Style()
	opts.ShrinkDelay = cfg.ShrinkDelay()
	opts.Location = loc
	if cfg.Theme.Background != "" {
		opts.Background = config.ParseColor(cfg.Theme.Background)
	}

	srv := server.New(source, newEncodeStage(cfg, log), store, clock, cronticker.New(cfg.Tick), log, opts)
	if err := srv.Load(ctx); err != nil {
		return err
	}
	defer srv.Close()

	if file, ok := source.(*datasource.File); ok && !cmd.NoWatch {
		watcher, err := fswatch.New(func(string) { srv.Reload(ctx) }, log)
		if err != nil {
			return err
		}
		defer watcher.Close()
		if err := watcher.AddFile(file.Path()); err != nil {
			return err
		}
	}

	return srv.Serve(ctx, cfg.Listen)
}
