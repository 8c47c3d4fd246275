package main

import (
	"github.com/ideamans/go-l10n"

	"github.com/user/blocksched/pkg/adapters/osfilesystem"
	"github.com/user/blocksched/pkg/orchestrator"
	"github.com/user/blocksched/pkg/summarizer"
)

// SummaryCmd defines the summary subcommand.
type SummaryCmd struct {
	DatasetFlags
	SelectionFlags

	Output string `short:"o" default:"programme.md" help:"Output Markdown file path."`
}

// Run executes the summary command.
func (cmd *SummaryCmd) Run(g *Globals) error {
	cfg, err := g.load(cmd.DatasetFlags)
	if err != nil {
		return err
	}
	cmd.SelectionFlags.apply(&cfg)

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
	repo, err := orchestrator.Load(ctx, source, loc, log)
	if err != nil {
		return err
	}

	dayID := cfg.Day
	if dayID == "" {
		dayID = repo.DayIDs()[0]
	}
	summary, err := summarizer.FromRepository(repo, dayID, cfg.Stages)
	if err != nil {
		return err
	}
	summary.Dataset = source.Name()
	summary.GeneratedAt = clock.Now()

	formatter := summarizer.NewMarkdownFormatter(
		summarizer.WithTranslator(l10n.T),
		summarizer.WithVersion(version),
	)
	if err := summarizer.NewWriter(formatter, fs).Write(cmd.Output, summary); err != nil {
		return err
	}
	log.Info("Output saved to %s", cmd.Output)
	return nil
}
