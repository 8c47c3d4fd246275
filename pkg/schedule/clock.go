package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RolloverHour is the first hour that belongs to the current day.
// Earlier times are late-night slots of the previous conceptual day.
const RolloverHour = 6

// DateLayout is the calendar date format used by datasets.
const DateLayout = "2006-01-02"

// Clock is a wall-clock time as written in a dataset.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "H:MM" or "HH:MM".
func ParseClock(s string) (Clock, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok || len(h) < 1 || len(h) > 2 || len(m) != 2 {
		return Clock{}, &ParseError{Field: "time", Value: s, Err: ErrMalformedTime}
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 || !isDigits(h) {
		return Clock{}, &ParseError{Field: "time", Value: s, Err: ErrMalformedTime}
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 || !isDigits(m) {
		return Clock{}, &ParseError{Field: "time", Value: s, Err: ErrMalformedTime}
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String formats the clock as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// NormalizedHour returns the hour with the past-midnight rule applied.
func (c Clock) NormalizedHour() int {
	if c.Hour < RolloverHour {
		return c.Hour + 24
	}
	return c.Hour
}

// Minutes returns the wall-clock minutes since the day start, after normalization.
func (c Clock) Minutes() int {
	return c.NormalizedHour()*60 + c.Minute
}

// DayStart returns t at 00:00:00.000 in its own location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ToInstant returns the instant at which c occurs on the given day.
func ToInstant(date time.Time, c Clock) time.Time {
	start := DayStart(date)
	return time.Date(start.Year(), start.Month(), start.Day(), c.NormalizedHour(), c.Minute, 0, 0, start.Location())
}

// ToCoordinate returns the minutes elapsed from dayStart to c on that day.
func ToCoordinate(dayStart time.Time, c Clock) float64 {
	return ToInstant(dayStart, c).Sub(DayStart(dayStart)).Minutes()
}

// InstantCoordinate returns the minutes elapsed from dayStart to t.
func InstantCoordinate(dayStart, t time.Time) float64 {
	return t.Sub(DayStart(dayStart)).Minutes()
}

// ParseDate parses a YYYY-MM-DD date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, &ParseError{Field: "date", Value: s, Err: ErrMalformedDataset}
	}
	return t, nil
}

// ProgrammeSortKey orders clock times the way a festival programme reads:
// minutes past noon, with morning hours wrapped to the end.
func ProgrammeSortKey(c Clock) int {
	h := c.Hour
	if h < 12 {
		h += 24
	}
	return (h-12)*60 + c.Minute
}
