// Package scheduletest provides datasets for tests of packages built on schedule.
package scheduletest

import (
	"encoding/json"
	"time"

	"github.com/user/blocksched/pkg/schedule"
)

// Festival returns a two-day, three-stage dataset.
//
// Day "fri" has events for stages "a" and "b" and an empty list for "c".
// Day "sat" has events for stages "a" and "c".
func Festival() *schedule.Dataset {
	return &schedule.Dataset{
		Config: schedule.DisplayConfig{
			BlockHeight: schedule.BlockHeight{Coords: 30, Pixels: 100},
		},
		Stages: []schedule.Stage{
			{ID: "a", Name: "Hotot", Colour: "#e41a1c"},
			{ID: "b", Name: "Teddy Widder", Colour: "#377eb8"},
			{ID: "c", Name: "Fuzzy Lop", Colour: "#4daf4a"},
		},
		Days: []schedule.Day{
			{
				ID:   "fri",
				Name: "Friday",
				Date: "2025-06-20",
				Events: map[string][]schedule.Event{
					"a": {
						{Start: "23:00", End: "01:00", Name: "Late Set", URL: "https://example.com/late"},
						{Start: "14:00", End: "15:00", Name: "Opening"},
					},
					"b": {
						{Start: "16:00", End: "17:30", Name: "Brass Band", URL: "https://example.com/brass"},
					},
					"c": {},
				},
			},
			{
				ID:   "sat",
				Name: "Saturday",
				Date: "2025-06-21",
				Events: map[string][]schedule.Event{
					"a": {
						{Start: "12:00", End: "13:00", Name: "Matinee"},
					},
					"c": {
						{Start: "20:00", End: "2:30", Name: "Night Shift"},
					},
				},
			},
		},
	}
}

// Repository builds the Festival repository in UTC.
// It panics on error since the dataset is fixed.
func Repository() *schedule.Repository {
	repo, err := RepositoryFrom(Festival())
	if err != nil {
		panic(err)
	}
	return repo
}

// RepositoryFrom builds a repository over ds in UTC.
func RepositoryFrom(ds *schedule.Dataset) (*schedule.Repository, error) {
	return schedule.NewRepository(ds, schedule.WithLocation(time.UTC))
}

// At returns the UTC instant of a date and HH:MM.
func At(date, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

// JSON returns Festival encoded as a dataset document.
func JSON() []byte {
	data, err := json.Marshal(Festival())
	if err != nil {
		panic(err)
	}
	return data
}
