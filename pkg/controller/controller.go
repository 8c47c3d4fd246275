// Package controller owns the selection state of a block schedule and drives
// the composite view as that state changes.
package controller

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/user/blocksched/pkg/adapters/logger"
	"github.com/user/blocksched/pkg/adapters/systemclock"
	"github.com/user/blocksched/pkg/pipeline"
	"github.com/user/blocksched/pkg/ports"
	"github.com/user/blocksched/pkg/schedule"
)

// Keys under which the selection is persisted.
const (
	KeyDayID           = "dayId"
	KeyEnabledStageIDs = "enabledStageIds"
	KeyScrollOffset    = "scrollOffset"
)

var errNotAnArray = errors.New("not a JSON array")

// View is the part of the composite view the controller drives.
type View interface {
	UpdateBlockSchedule(dayID string, enabled []string) (pipeline.Arrangement, error)
	UpdateCurrentTimeLines(dayID string, enabled []string, now time.Time)
	CurrentTimeLine(dayID string, enabled []string) (ports.Line, bool)
	PixelX(coordinate float64) float64
}

// State is a copy of the selection.
type State struct {
	DayID           string   `json:"dayId"`
	EnabledStageIDs []string `json:"enabledStageIds"`
	ScrollOffset    *float64 `json:"scrollOffset,omitempty"`

	// CurrentTimeDayID is the day containing now for the enabled stages, if any.
	CurrentTimeDayID string `json:"currentTimeDayId,omitempty"`
}

// DayToggle is one entry of the day picker.
type DayToggle struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// StageToggle is one entry of the stage picker.
type StageToggle struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Colour  string `json:"colour"`
	Enabled bool   `json:"enabled"`

	// Available is false when the stage has no events on the active day.
	Available bool `json:"available"`
}

// Toolbar is the state of the selection controls.
type Toolbar struct {
	Days         []DayToggle   `json:"days"`
	Stages       []StageToggle `json:"stages"`
	NowAvailable bool          `json:"nowAvailable"`
}

// Controller is the only mutator of the selection.
// It is not safe for concurrent use; see WithLocker for ticker callbacks.
type Controller struct {
	repo     *schedule.Repository
	view     View
	store    ports.KeyValueStore
	clock    ports.Clock
	viewport ports.Viewport
	logger   ports.Logger
	locker   sync.Locker

	dayID            string
	enabled          map[string]bool
	scrollOffset     *float64
	currentTimeDayID string
	arrangement      pipeline.Arrangement

	ticker ports.Ticker
}

// Option configures a Controller.
type Option func(*Controller)

// WithStore persists the selection in store.
func WithStore(store ports.KeyValueStore) Option {
	return func(c *Controller) { c.store = store }
}

// WithClock sets the source of now.
func WithClock(clock ports.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithViewport sets the scrollable area scrolled by JumpToNow and init.
func WithViewport(viewport ports.Viewport) Option {
	return func(c *Controller) { c.viewport = viewport }
}

// WithLogger sets the logger.
func WithLogger(logger ports.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithLocker makes ticker callbacks hold l while they run.
func WithLocker(l sync.Locker) Option {
	return func(c *Controller) { c.locker = l }
}

// New restores the persisted selection, lays out the initial day and runs one Tick.
func New(repo *schedule.Repository, view View, opts ...Option) (*Controller, error) {
	if repo == nil || len(repo.DayIDs()) == 0 {
		return nil, schedule.ErrNoDays
	}

	c := &Controller{
		repo:    repo,
		view:    view,
		store:   newMemoryStore(),
		clock:   systemclock.New(nil),
		logger:  logger.NewNoop(),
		enabled: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("controller")

	c.restore()

	if err := c.layout(); err != nil {
		return nil, err
	}
	c.Tick()

	if c.scrollOffset != nil && c.viewport != nil {
		c.viewport.ScrollTo(*c.scrollOffset)
	}
	return c, nil
}

// restore applies defaults, then every persisted value that validates.
func (c *Controller) restore() {
	c.dayID = c.repo.DayIDs()[0]
	for _, id := range c.repo.StageIDs() {
		c.enabled[id] = true
	}

	if v, ok := c.store.Get(KeyDayID); ok {
		if c.repo.HasDay(v) {
			c.dayID = v
		} else {
			c.logger.Warn("Ignoring persisted day %q", v)
		}
	}

	if v, ok := c.store.Get(KeyEnabledStageIDs); ok {
		var ids []string
		err := json.Unmarshal([]byte(v), &ids)
		if err == nil && ids == nil {
			err = errNotAnArray
		}
		if err != nil {
			c.logger.Warn("Ignoring persisted stages %q: %v", v, err)
		} else {
			c.enabled = make(map[string]bool, len(ids))
			for _, id := range ids {
				if c.repo.KnowsStage(id) {
					c.enabled[id] = true
				} else {
					c.logger.Warn("Dropping persisted stage %q", id)
				}
			}
		}
	}

	if v, ok := c.store.Get(KeyScrollOffset); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			c.logger.Warn("Ignoring persisted scroll offset %q", v)
		} else {
			c.scrollOffset = &f
		}
	}
}

// enabledIDs returns the enabled stages in declared order.
func (c *Controller) enabledIDs() []string {
	out := make([]string, 0, len(c.enabled))
	for _, id := range c.repo.StageIDs() {
		if c.enabled[id] {
			out = append(out, id)
		}
	}
	return out
}

func (c *Controller) layout() error {
	arr, err := c.view.UpdateBlockSchedule(c.dayID, c.enabledIDs())
	if err != nil {
		return err
	}
	c.arrangement = arr
	return nil
}

// SetDay makes dayID the active day. An unknown id leaves the selection unchanged
// and returns a *schedule.LookupError.
func (c *Controller) SetDay(dayID string) error {
	if !c.repo.HasDay(dayID) {
		c.logger.Warn("Ignoring unknown day %q", dayID)
		return &schedule.LookupError{Kind: "day", ID: dayID}
	}
	c.dayID = dayID
	if err := c.layout(); err != nil {
		return err
	}
	c.Tick()
	c.persist()
	return nil
}

// ToggleStage flips stageID in the enabled set. The active day is unchanged.
// Deselecting the last stage is allowed and renders nothing.
func (c *Controller) ToggleStage(stageID string) error {
	if !c.repo.KnowsStage(stageID) {
		c.logger.Warn("Ignoring unknown stage %q", stageID)
		return &schedule.LookupError{Kind: "stage", ID: stageID}
	}
	if c.enabled[stageID] {
		delete(c.enabled, stageID)
	} else {
		c.enabled[stageID] = true
	}
	if err := c.layout(); err != nil {
		return err
	}
	// newly shown stages still have their cursor where it was last moved
	c.Tick()
	c.persist()
	return nil
}

// Tick moves the visible cursor lines to now and recomputes which day contains now.
func (c *Controller) Tick() {
	now := c.clock.Now()
	enabled := c.enabledIDs()
	c.view.UpdateCurrentTimeLines(c.dayID, enabled, now)

	day, ok := c.repo.DayContainingInstant(now, enabled)
	if !ok {
		day = ""
	}
	if day != c.currentTimeDayID {
		c.logger.Debug("Current time day: %q -> %q", c.currentTimeDayID, day)
	}
	c.currentTimeDayID = day
}

// FocusRegained is the hook hosts call when the display regains focus.
func (c *Controller) FocusRegained() {
	c.Tick()
}

// JumpToNow switches to the day containing now and centres its cursor.
// It reports false and does nothing when no enabled stage is live.
func (c *Controller) JumpToNow() bool {
	if c.currentTimeDayID == "" {
		return false
	}
	if err := c.SetDay(c.currentTimeDayID); err != nil {
		c.logger.Error("Jump to now failed: %v", err)
		return false
	}
	line, ok := c.view.CurrentTimeLine(c.dayID, c.enabledIDs())
	if !ok {
		return true
	}
	from, _ := line.Points()
	if c.viewport != nil {
		c.viewport.CenterOn(c.view.PixelX(from.X))
	}
	return true
}

// ScrollSettled records the scroll offset once scrolling has stopped.
func (c *Controller) ScrollSettled(offset float64) {
	if math.IsNaN(offset) || math.IsInf(offset, 0) || offset < 0 {
		return
	}
	c.scrollOffset = &offset
	c.persist()
}

// State returns a copy of the selection.
func (c *Controller) State() State {
	s := State{
		DayID:            c.dayID,
		EnabledStageIDs:  c.enabledIDs(),
		CurrentTimeDayID: c.currentTimeDayID,
	}
	if c.scrollOffset != nil {
		offset := *c.scrollOffset
		s.ScrollOffset = &offset
	}
	return s
}

// Arrangement returns the arrangement of the last layout.
func (c *Controller) Arrangement() pipeline.Arrangement {
	return c.arrangement
}

// Toolbar returns the state of the selection controls.
func (c *Controller) Toolbar() Toolbar {
	tb := Toolbar{NowAvailable: c.currentTimeDayID != ""}
	for _, d := range c.repo.Days() {
		tb.Days = append(tb.Days, DayToggle{ID: d.ID, Name: d.Name, Active: d.ID == c.dayID})
	}
	for _, s := range c.repo.Stages() {
		tb.Stages = append(tb.Stages, StageToggle{
			ID:        s.ID,
			Name:      s.Name,
			Colour:    s.Colour,
			Enabled:   c.enabled[s.ID],
			Available: c.repo.HasStage(c.dayID, s.ID),
		})
	}
	return tb
}

// StartTicker runs Tick on t's schedule until Close.
func (c *Controller) StartTicker(t ports.Ticker) error {
	if c.ticker != nil {
		c.ticker.Stop()
	}
	c.ticker = t
	return t.Start(func() {
		if c.locker != nil {
			c.locker.Lock()
			defer c.locker.Unlock()
		}
		c.Tick()
	})
}

// Close stops the ticker.
func (c *Controller) Close() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

func (c *Controller) persist() {
	ids, err := json.Marshal(c.enabledIDs())
	if err != nil {
		c.logger.Error("Failed to encode stages: %v", err)
		return
	}
	values := [][2]string{
		{KeyDayID, c.dayID},
		{KeyEnabledStageIDs, string(ids)},
	}
	if c.scrollOffset != nil {
		values = append(values, [2]string{KeyScrollOffset, strconv.FormatFloat(*c.scrollOffset, 'f', -1, 64)})
	}
	for _, kv := range values {
		if err := c.store.Set(kv[0], kv[1]); err != nil {
			c.logger.Error("Failed to persist %s: %v", kv[0], err)
		}
	}
}
