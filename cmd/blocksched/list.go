package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/ideamans/go-l10n"

	"github.com/user/blocksched/pkg/adapters/osfilesystem"
	"github.com/user/blocksched/pkg/orchestrator"
	"github.com/user/blocksched/pkg/schedule"
)

// ListCmd defines the list subcommand.
type ListCmd struct {
	DatasetFlags
}

var bold = color.New(color.Bold).SprintFunc()

// Run executes the list command.
func (cmd *ListCmd) Run(g *Globals) error {
	cfg, err := g.load(cmd.DatasetFlags)
	if err != nil {
		return err
	}

	log, flush := g.newLogger()
	defer flush()

	ctx, cancel := signalContext(log)
	defer cancel()

	loc, _ := cfg.Location()
	repo, err := orchestrator.Load(ctx, newSource(cfg, osfilesystem.New(), log), loc, log)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(color.Output, bold(l10n.T("Days")))
	_, _ = fmt.Fprintln(color.Output, dayTable(repo))
	_, _ = fmt.Fprintln(color.Output)
	_, _ = fmt.Fprintln(color.Output, bold(l10n.T("Stages")))
	_, _ = fmt.Fprintln(color.Output, stageTable(repo))
	return nil
}

func dayTable(repo *schedule.Repository) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("ID"), bold(l10n.T("Name")), bold(l10n.T("Date")), bold(l10n.T("Range")), bold(l10n.T("Stages")))
	for _, day := range repo.Days() {
		present, _ := repo.DayStageIDs(day.ID)
		rng, err := repo.RangeForSelection(day.ID, present)
		span := "-"
		if err == nil && len(present) > 0 {
			span = hhmm(rng.Start) + "–" + hhmm(rng.End)
		}
		tbl.AddRow(day.ID, day.Name, day.Date, span, strings.Join(present, ","))
	}
	return tbl
}

func stageTable(repo *schedule.Repository) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("ID"), bold(l10n.T("Name")), bold(l10n.T("Colour")), bold(l10n.T("Events")))
	for _, stage := range repo.Stages() {
		events := 0
		for _, dayID := range repo.DayIDs() {
			if slots, err := repo.Events(dayID, stage.ID); err == nil {
				events += len(slots)
			}
		}
		tbl.AddRow(stage.ID, stage.Name, stage.Colour, events)
	}
	return tbl
}

// hhmm formats a coordinate as a wall-clock time; past midnight wraps.
func hhmm(coord float64) string {
	m := int(coord)
	return fmt.Sprintf("%02d:%02d", (m/60)%24, m%60)
}
