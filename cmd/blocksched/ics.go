package main

import (
	"os"

	"github.com/user/blocksched/pkg/adapters/icsexport"
	"github.com/user/blocksched/pkg/adapters/osfilesystem"
	"github.com/user/blocksched/pkg/orchestrator"
)

// ICSCmd defines the ics subcommand.
type ICSCmd struct {
	DatasetFlags

	Output string   `short:"o" default:"-" help:"Output .ics file path, or - for stdout."`
	Days   []string `short:"d" name:"day" help:"Day id to export. Repeat for several (default: all)."`
	Stages []string `short:"s" name:"stage" help:"Stage id to export. Repeat for several (default: all)."`
}

// Run executes the ics command.
func (cmd *ICSCmd) Run(g *Globals) error {
	cfg, err := g.load(cmd.DatasetFlags)
	if err != nil {
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
	repo, err := orchestrator.Load(ctx, newSource(cfg, fs, log), loc, log)
	if err != nil {
		return err
	}

	sel := icsexport.Selection{DayIDs: cmd.Days, StageIDs: cmd.Stages}
	cal, err := icsexport.Build(repo, sel, clock.Now())
	if err != nil {
		return err
	}
	data := []byte(cal.Serialize())

	if cmd.Output == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := fs.WriteFile(cmd.Output, data); err != nil {
		return err
	}
	log.Info("Wrote %d events to %s", len(cal.Events()), cmd.Output)
	return nil
}
