package schedule

import (
	"fmt"
	"sort"
	"time"
)

// MaxCoordinate is the end of the 48-hour coordinate space of a day.
const MaxCoordinate = 48 * 60

// Range is an inclusive coordinate interval in minutes since the day start.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Width returns End - Start.
func (r Range) Width() float64 {
	return r.End - r.Start
}

// Union returns the smallest range covering r and o.
func (r Range) Union(o Range) Range {
	if o.Start < r.Start {
		r.Start = o.Start
	}
	if o.End > r.End {
		r.End = o.End
	}
	return r
}

// Contains reports whether c lies within r, ends included.
func (r Range) Contains(c float64) bool {
	return c >= r.Start && c <= r.End
}

// Slot is an event with its parsed times and coordinates on the owning day.
type Slot struct {
	Event
	StartClock Clock
	EndClock   Clock
	StartCoord float64
	EndCoord   float64
}

// Span returns the coordinate range covered by the slot.
func (s Slot) Span() Range {
	return Range{Start: s.StartCoord, End: s.EndCoord}
}

type dayEntry struct {
	day     Day
	start   time.Time
	slots   map[string][]Slot
	ranges  map[string]Range
	present []string
}

// Repository is a read-only, indexed view over a validated dataset.
// It is safe for concurrent readers.
type Repository struct {
	config     DisplayConfig
	stages     []Stage
	stageIndex map[string]int
	days       []*dayEntry
	dayIndex   map[string]int
}

// Option configures a Repository.
type Option func(*options)

type options struct {
	loc *time.Location
}

// WithLocation sets the time zone dataset dates are interpreted in.
// The default is time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.loc = loc
	}
}

// NewRepository validates ds and precomputes every stage range.
func NewRepository(ds *Dataset, opts ...Option) (*Repository, error) {
	o := options{loc: time.Local}
	for _, opt := range opts {
		opt(&o)
	}

	if ds == nil || len(ds.Days) == 0 {
		return nil, ErrNoDays
	}
	bh := ds.Config.BlockHeight
	if bh.Coords <= 0 || bh.Pixels <= 0 {
		return nil, fmt.Errorf("%w: blockHeight must be positive, got %gx%g", ErrMalformedDataset, bh.Coords, bh.Pixels)
	}

	r := &Repository{
		config:     ds.Config,
		stages:     append([]Stage(nil), ds.Stages...),
		stageIndex: make(map[string]int, len(ds.Stages)),
		dayIndex:   make(map[string]int, len(ds.Days)),
	}

	for i, st := range ds.Stages {
		if st.ID == "" {
			return nil, fmt.Errorf("%w: stage %d has no id", ErrMalformedDataset, i)
		}
		if _, dup := r.stageIndex[st.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate stage id %q", ErrMalformedDataset, st.ID)
		}
		r.stageIndex[st.ID] = i
	}

	for i, d := range ds.Days {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: day %d has no id", ErrMalformedDataset, i)
		}
		if _, dup := r.dayIndex[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate day id %q", ErrMalformedDataset, d.ID)
		}
		entry, err := r.buildDay(d, o.loc)
		if err != nil {
			return nil, fmt.Errorf("day %q: %w", d.ID, err)
		}
		r.dayIndex[d.ID] = len(r.days)
		r.days = append(r.days, entry)
	}

	return r, nil
}

func (r *Repository) buildDay(d Day, loc *time.Location) (*dayEntry, error) {
	date, err := ParseDate(d.Date, loc)
	if err != nil {
		return nil, err
	}
	entry := &dayEntry{
		day:    d,
		start:  DayStart(date),
		slots:  make(map[string][]Slot),
		ranges: make(map[string]Range),
	}

	for stageID, events := range d.Events {
		if _, ok := r.stageIndex[stageID]; !ok {
			return nil, fmt.Errorf("%w: events for unknown stage %q", ErrMalformedDataset, stageID)
		}
		// an empty list is treated as absent so every present stage has a range
		if len(events) == 0 {
			continue
		}
		slots := make([]Slot, 0, len(events))
		for _, ev := range events {
			slot, err := newSlot(entry.start, ev)
			if err != nil {
				return nil, fmt.Errorf("stage %q: %w", stageID, err)
			}
			slots = append(slots, slot)
		}
		sort.SliceStable(slots, func(i, j int) bool {
			return slots[i].StartCoord < slots[j].StartCoord
		})

		rng := slots[0].Span()
		for _, s := range slots[1:] {
			rng = rng.Union(s.Span())
		}
		entry.slots[stageID] = slots
		entry.ranges[stageID] = rng
	}

	for _, st := range r.stages {
		if _, ok := entry.slots[st.ID]; ok {
			entry.present = append(entry.present, st.ID)
		}
	}
	return entry, nil
}

func newSlot(dayStart time.Time, ev Event) (Slot, error) {
	start, err := ParseClock(ev.Start)
	if err != nil {
		return Slot{}, fmt.Errorf("event %q: %w", ev.Name, err)
	}
	end, err := ParseClock(ev.End)
	if err != nil {
		return Slot{}, fmt.Errorf("event %q: %w", ev.Name, err)
	}
	s := Slot{
		Event:      ev,
		StartClock: start,
		EndClock:   end,
		StartCoord: ToCoordinate(dayStart, start),
		EndCoord:   ToCoordinate(dayStart, end),
	}
	if s.EndCoord <= s.StartCoord {
		return Slot{}, fmt.Errorf("%w: event %q ends at %s before it starts at %s", ErrMalformedDataset, ev.Name, ev.End, ev.Start)
	}
	return s, nil
}

// Config returns the display parameters.
func (r *Repository) Config() DisplayConfig {
	return r.config
}

// DayIDs returns every day id in declared order.
func (r *Repository) DayIDs() []string {
	ids := make([]string, len(r.days))
	for i, d := range r.days {
		ids[i] = d.day.ID
	}
	return ids
}

// StageIDs returns every stage id in declared order.
func (r *Repository) StageIDs() []string {
	ids := make([]string, len(r.stages))
	for i, st := range r.stages {
		ids[i] = st.ID
	}
	return ids
}

// DayStageIDs returns, in declared order, the stages with at least one event on dayID.
func (r *Repository) DayStageIDs(dayID string) ([]string, error) {
	d, err := r.entry(dayID)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), d.present...), nil
}

// HasStage reports whether stageID has events on dayID.
func (r *Repository) HasStage(dayID, stageID string) bool {
	d, err := r.entry(dayID)
	if err != nil {
		return false
	}
	_, ok := d.slots[stageID]
	return ok
}

// HasDay reports whether dayID is known.
func (r *Repository) HasDay(dayID string) bool {
	_, ok := r.dayIndex[dayID]
	return ok
}

// KnowsStage reports whether stageID is declared.
func (r *Repository) KnowsStage(stageID string) bool {
	_, ok := r.stageIndex[stageID]
	return ok
}

// Stage returns the stage declared with id.
func (r *Repository) Stage(id string) (Stage, error) {
	i, ok := r.stageIndex[id]
	if !ok {
		return Stage{}, &LookupError{Kind: "stage", ID: id}
	}
	return r.stages[i], nil
}

// Stages returns every stage in declared order.
func (r *Repository) Stages() []Stage {
	return append([]Stage(nil), r.stages...)
}

// Day returns the day declared with id.
func (r *Repository) Day(id string) (Day, error) {
	d, err := r.entry(id)
	if err != nil {
		return Day{}, err
	}
	return d.day, nil
}

// Days returns every day in declared order.
func (r *Repository) Days() []Day {
	days := make([]Day, len(r.days))
	for i, d := range r.days {
		days[i] = d.day
	}
	return days
}

// DayStart returns 00:00 local time of dayID.
func (r *Repository) DayStart(dayID string) (time.Time, error) {
	d, err := r.entry(dayID)
	if err != nil {
		return time.Time{}, err
	}
	return d.start, nil
}

// Events returns the slots of stageID on dayID, ordered by start.
// It fails with ErrNotFound when the stage has no events that day.
func (r *Repository) Events(dayID, stageID string) ([]Slot, error) {
	d, err := r.entry(dayID)
	if err != nil {
		return nil, err
	}
	slots, ok := d.slots[stageID]
	if !ok {
		return nil, &LookupError{Kind: "stage on day " + dayID, ID: stageID}
	}
	return append([]Slot(nil), slots...), nil
}

// RangeForStage returns the precomputed range of stageID on dayID.
func (r *Repository) RangeForStage(dayID, stageID string) (Range, error) {
	d, err := r.entry(dayID)
	if err != nil {
		return Range{}, err
	}
	rng, ok := d.ranges[stageID]
	if !ok {
		return Range{}, &LookupError{Kind: "stage on day " + dayID, ID: stageID}
	}
	return rng, nil
}

// RangeForSelection returns the union range of the stages in stageIDs present on dayID.
// Stages absent from the day are ignored. It fails with ErrEmptySelection if none remain.
func (r *Repository) RangeForSelection(dayID string, stageIDs []string) (Range, error) {
	d, err := r.entry(dayID)
	if err != nil {
		return Range{}, err
	}
	var (
		out   Range
		found bool
	)
	for _, id := range stageIDs {
		rng, ok := d.ranges[id]
		if !ok {
			continue
		}
		if !found {
			out, found = rng, true
			continue
		}
		out = out.Union(rng)
	}
	if !found {
		return Range{}, fmt.Errorf("day %q: %w", dayID, ErrEmptySelection)
	}
	return out, nil
}

// DayContainingInstant returns the first day, in declared order, whose selection
// range contains t. Overlapping days resolve to the earlier entry in the list.
func (r *Repository) DayContainingInstant(t time.Time, stageIDs []string) (string, bool) {
	for _, d := range r.days {
		rng, err := r.RangeForSelection(d.day.ID, stageIDs)
		if err != nil {
			continue
		}
		if rng.Contains(InstantCoordinate(d.start, t)) {
			return d.day.ID, true
		}
	}
	return "", false
}

func (r *Repository) entry(dayID string) (*dayEntry, error) {
	i, ok := r.dayIndex[dayID]
	if !ok {
		return nil, &LookupError{Kind: "day", ID: dayID}
	}
	return r.days[i], nil
}
