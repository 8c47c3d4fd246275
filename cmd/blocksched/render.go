package main

import (
	"github.com/user/blocksched/pkg/adapters/osfilesystem"
	"github.com/user/blocksched/pkg/adapters/scene"
	"github.com/user/blocksched/pkg/orchestrator"
	"github.com/user/blocksched/pkg/stages/composite"
	"github.com/user/blocksched/pkg/stages/layout"
)

// RenderCmd defines the render subcommand.
type RenderCmd struct {
	DatasetFlags
	SelectionFlags

	Output *string `short:"o" help:"Output file path (default: schedule.svg)."`
	Format string  `short:"f" help:"Output format: svg, png or png-chrome (default: svg)."`
	Now    string  `help:"Draw the cursor at this time, as \"YYYY-MM-DD HH:MM\" (default: now)."`

	MaxWidth int `help:"Scale PNG output down to at most this width in pixels."`

	ChromePath string `help:"Path to Chrome executable for png-chrome (falls back to CHROME_PATH env, then system default)."`
	NoSandbox  bool   `help:"Run Chrome without its sandbox."`

	Debug    bool    `help:"Write intermediate artifacts."`
	DebugDir *string `help:"Directory for debug output (default: ./debug)."`
}

// Run executes the render command.
func (cmd *RenderCmd) Run(g *Globals) error {
	cfg, err := g.load(cmd.DatasetFlags)
	if err != nil {
		return err
	}
	cmd.SelectionFlags.apply(&cfg)
	if cmd.Output != nil {
		cfg.Output = *cmd.Output
	}
	if cmd.Format != "" {
		cfg.Format = cmd.Format
	}
	if cmd.ChromePath != "" {
		cfg.ChromePath = cmd.ChromePath
	}
	cfg.NoSandbox = cfg.NoSandbox || cmd.NoSandbox
	cfg.Debug = cfg.Debug || cmd.Debug
	if cmd.DebugDir != nil {
		cfg.DebugDir = *cmd.DebugDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, flush := g.newLogger()
	defer flush()

	ctx, cancel := signalContext(log)
	defer cancel()

	oc, err := cfg.ToOrchestratorConfig()
	if err != nil {
		return err
	}
	clock, err := newClock(cfg)
	if err != nil {
		return err
	}
	oc.Now = clock.Now()
	oc.MaxWidth = cmd.MaxWidth
	if cmd.Now != "" {
		if oc.Now, err = parseNow(cmd.Now, oc.Location); err != nil {
			return err
		}
	}

	fs := osfilesystem.New()
	sink, err := newDebugSink(cfg, fs)
	if err != nil {
		return err
	}

	orch := orchestrator.New(
		layout.NewStage(cfg.LayoutTheme(), cfg.Style(), log),
		composite.NewStage(clock, log),
		newEncodeStage(cfg, log),
		scene.New(),
		fs,
		sink,
		log,
	)

	result, err := orch.Run(ctx, newSource(cfg, fs, log), oc)
	if err != nil {
		return err
	}
	log.Debug("Rendered %v: %dx%d px, %d bytes", result.Arrangement.Visible, result.Width, result.Height, result.Bytes)
	return nil
}
