// Package summarizer builds and formats a day's programme across stages.
package summarizer

import (
	"sort"
	"time"

	"github.com/user/blocksched/pkg/schedule"
)

// Summary is the programme of one day for a set of stages.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	Dataset     string

	Day DayInfo

	// Stages lists the included stages in declared order.
	Stages []StageInfo

	// Entries are in programme order.
	Entries []Entry
}

// DayInfo describes the summarised day.
type DayInfo struct {
	ID   string
	Name string
	Date string
}

// StageInfo describes one included stage.
type StageInfo struct {
	ID     string
	Name   string
	Colour string
	Events int
}

// Entry is one event of the programme.
type Entry struct {
	Start   string
	End     string
	Stage   string
	Name    string
	URL     string
	SortKey int

	// order breaks ties by declared stage order.
	order int
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithDataset sets the dataset name.
func (b *Builder) WithDataset(name string) *Builder {
	b.summary.Dataset = name
	return b
}

// WithDay sets the day information.
func (b *Builder) WithDay(day DayInfo) *Builder {
	b.summary.Day = day
	return b
}

// WithGeneratedAt overrides the timestamp.
func (b *Builder) WithGeneratedAt(t time.Time) *Builder {
	b.summary.GeneratedAt = t
	return b
}

// AddStage appends a stage and its slots.
func (b *Builder) AddStage(stage schedule.Stage, slots []schedule.Slot) *Builder {
	order := len(b.summary.Stages)
	b.summary.Stages = append(b.summary.Stages, StageInfo{
		ID:     stage.ID,
		Name:   stage.Name,
		Colour: stage.Colour,
		Events: len(slots),
	})
	for _, slot := range slots {
		b.summary.Entries = append(b.summary.Entries, Entry{
			Start:   slot.StartClock.String(),
			End:     slot.EndClock.String(),
			Stage:   stage.Name,
			Name:    slot.Name,
			URL:     slot.URL,
			SortKey: schedule.ProgrammeSortKey(slot.StartClock),
			order:   order,
		})
	}
	return b
}

// Build returns the constructed Summary with entries in programme order.
func (b *Builder) Build() *Summary {
	sort.SliceStable(b.summary.Entries, func(i, j int) bool {
		a, c := b.summary.Entries[i], b.summary.Entries[j]
		if a.SortKey != c.SortKey {
			return a.SortKey < c.SortKey
		}
		return a.order < c.order
	})
	return b.summary
}

// FromRepository summarises dayID for stageIDs, or every stage when stageIDs is empty.
// Stages absent on the day are skipped.
func FromRepository(repo *schedule.Repository, dayID string, stageIDs []string) (*Summary, error) {
	day, err := repo.Day(dayID)
	if err != nil {
		return nil, err
	}
	if len(stageIDs) == 0 {
		stageIDs = repo.StageIDs()
	}
	want := make(map[string]bool, len(stageIDs))
	for _, id := range stageIDs {
		if !repo.KnowsStage(id) {
			return nil, &schedule.LookupError{Kind: "stage", ID: id}
		}
		want[id] = true
	}

	b := NewBuilder().WithDay(DayInfo{ID: day.ID, Name: day.Name, Date: day.Date})
	for _, stage := range repo.Stages() {
		if !want[stage.ID] || !repo.HasStage(dayID, stage.ID) {
			continue
		}
		slots, err := repo.Events(dayID, stage.ID)
		if err != nil {
			return nil, err
		}
		b.AddStage(stage, slots)
	}
	return b.Build(), nil
}
