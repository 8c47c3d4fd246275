// Package icsexport writes the events of a selection as an iCalendar feed.
package icsexport

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/user/blocksched/pkg/schedule"
)

// ProductID identifies the generator in PRODID.
const ProductID = "-//blocksched//block schedule//EN"

// Selection picks the events to export. Empty fields select everything.
type Selection struct {
	DayIDs   []string
	StageIDs []string
}

// Build converts the selected slots to a calendar. Start and end are absolute
// instants, so events past midnight land on the following date. stamp fills
// DTSTAMP.
func Build(repo *schedule.Repository, sel Selection, stamp time.Time) (*ical.Calendar, error) {
	dayIDs := sel.DayIDs
	if len(dayIDs) == 0 {
		dayIDs = repo.DayIDs()
	}
	stageIDs := sel.StageIDs
	if len(stageIDs) == 0 {
		stageIDs = repo.StageIDs()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	for _, dayID := range dayIDs {
		dayStart, err := repo.DayStart(dayID)
		if err != nil {
			return nil, err
		}
		for _, stageID := range stageIDs {
			stage, err := repo.Stage(stageID)
			if err != nil {
				return nil, err
			}
			if !repo.HasStage(dayID, stageID) {
				continue
			}
			slots, err := repo.Events(dayID, stageID)
			if err != nil {
				return nil, err
			}
			for i, slot := range slots {
				ev := cal.AddEvent(fmt.Sprintf("%s-%s-%d@blocksched", dayID, stageID, i))
				ev.SetDtStampTime(stamp)
				ev.SetStartAt(schedule.ToInstant(dayStart, slot.StartClock))
				ev.SetEndAt(schedule.ToInstant(dayStart, slot.EndClock))
				ev.SetSummary(slot.Name)
				ev.SetLocation(stage.Name)
				if slot.URL != "" {
					ev.SetURL(slot.URL)
				}
			}
		}
	}
	return cal, nil
}

// Write serializes the selection to w.
func Write(w io.Writer, repo *schedule.Repository, sel Selection, stamp time.Time) error {
	cal, err := Build(repo, sel, stamp)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, cal.Serialize())
	return err
}
