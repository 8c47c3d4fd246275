package controller

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/user/blocksched/pkg/adapters/logger"
	"github.com/user/blocksched/pkg/adapters/scene"
	"github.com/user/blocksched/pkg/mocks"
	"github.com/user/blocksched/pkg/ports"
	"github.com/user/blocksched/pkg/schedule"
	"github.com/user/blocksched/pkg/schedule/scheduletest"
	"github.com/user/blocksched/pkg/stages/composite"
	"github.com/user/blocksched/pkg/stages/layout"
)

type harness struct {
	store    *mocks.KeyValueStore
	clock    *mocks.Clock
	viewport *mocks.Viewport
	logger   *mocks.Logger
	surface  *scene.Surface
	view     *composite.View
}

func newHarness(t *testing.T, persisted map[string]string, now time.Time) *harness {
	t.Helper()
	repo := scheduletest.Repository()
	surface := scene.New()
	engine := layout.NewEngine(repo, layout.DefaultTheme(), nil, logger.NewNoop())
	result, err := layout.BuildAll(context.Background(), engine, repo, surface)
	if err != nil {
		t.Fatalf("BuildAll failed: %v", err)
	}
	clock := mocks.NewClock(now)
	return &harness{
		store:    mocks.NewKeyValueStore(persisted),
		clock:    clock,
		viewport: &mocks.Viewport{},
		logger:   mocks.NewLogger(),
		surface:  surface,
		view:     composite.NewView(repo, result.Layouts, surface, clock, logger.NewNoop()),
	}
}

func (h *harness) controller(t *testing.T) *Controller {
	t.Helper()
	c, err := New(scheduletest.Repository(), h.view,
		WithStore(h.store),
		WithClock(h.clock),
		WithViewport(h.viewport),
		WithLogger(h.logger),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

// friAfternoon is inside stage a's range on fri only.
var friAfternoon = scheduletest.At("2025-06-20", "14:30")

func TestNew_Defaults(t *testing.T) {
	h := newHarness(t, nil, friAfternoon)
	c := h.controller(t)

	s := c.State()
	if s.DayID != "fri" {
		t.Errorf("day: expected fri, got %s", s.DayID)
	}
	if !reflect.DeepEqual(s.EnabledStageIDs, []string{"a", "b", "c"}) {
		t.Errorf("stages: expected [a b c], got %v", s.EnabledStageIDs)
	}
	if s.ScrollOffset != nil {
		t.Errorf("scroll: expected none, got %v", *s.ScrollOffset)
	}
	if s.CurrentTimeDayID != "fri" {
		t.Errorf("current day: expected fri, got %q", s.CurrentTimeDayID)
	}
	if len(h.viewport.ScrollToCalls) != 0 {
		t.Errorf("expected no scroll restore, got %v", h.viewport.ScrollToCalls)
	}
	if !reflect.DeepEqual(c.Arrangement().Visible, []string{"a", "b"}) {
		t.Errorf("visible: expected [a b], got %v", c.Arrangement().Visible)
	}
}

func TestNew_RestoresPersisted(t *testing.T) {
	h := newHarness(t, map[string]string{
		KeyDayID:           "sat",
		KeyEnabledStageIDs: `["c"]`,
		KeyScrollOffset:    "120",
	}, friAfternoon)
	c := h.controller(t)

	s := c.State()
	if s.DayID != "sat" || !reflect.DeepEqual(s.EnabledStageIDs, []string{"c"}) {
		t.Errorf("expected sat/[c], got %s/%v", s.DayID, s.EnabledStageIDs)
	}
	if !reflect.DeepEqual(h.viewport.ScrollToCalls, []float64{120}) {
		t.Errorf("expected scroll restore to 120, got %v", h.viewport.ScrollToCalls)
	}
	if h.store.SetCalls != 0 {
		t.Errorf("expected no writes during init, got %d", h.store.SetCalls)
	}
}

func TestNew_PersistedFallback(t *testing.T) {
	tests := []struct {
		name      string
		persisted map[string]string
		day       string
		stages    []string
		warnings  int
	}{
		{
			name:      "unknown day",
			persisted: map[string]string{KeyDayID: "sun"},
			day:       "fri",
			stages:    []string{"a", "b", "c"},
			warnings:  1,
		},
		{
			name:      "unknown stage dropped",
			persisted: map[string]string{KeyEnabledStageIDs: `["zz","b"]`},
			day:       "fri",
			stages:    []string{"b"},
			warnings:  1,
		},
		{
			name:      "malformed stages",
			persisted: map[string]string{KeyEnabledStageIDs: `b,c`},
			day:       "fri",
			stages:    []string{"a", "b", "c"},
			warnings:  1,
		},
		{
			name:      "null stage list",
			persisted: map[string]string{KeyEnabledStageIDs: `null`},
			day:       "fri",
			stages:    []string{"a", "b", "c"},
			warnings:  1,
		},
		{
			name:      "non-array stage list",
			persisted: map[string]string{KeyEnabledStageIDs: `{"a":true}`},
			day:       "fri",
			stages:    []string{"a", "b", "c"},
			warnings:  1,
		},
		{
			name:      "empty stage list is kept",
			persisted: map[string]string{KeyEnabledStageIDs: `[]`},
			day:       "fri",
			stages:    []string{},
			warnings:  0,
		},
		{
			name:      "bad scroll offset",
			persisted: map[string]string{KeyScrollOffset: "left"},
			day:       "fri",
			stages:    []string{"a", "b", "c"},
			warnings:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.persisted, friAfternoon)
			c := h.controller(t)

			s := c.State()
			if s.DayID != tt.day {
				t.Errorf("day: expected %s, got %s", tt.day, s.DayID)
			}
			if !reflect.DeepEqual(s.EnabledStageIDs, tt.stages) {
				t.Errorf("stages: expected %v, got %v", tt.stages, s.EnabledStageIDs)
			}
			if got := h.logger.Count(ports.LevelWarn); got != tt.warnings {
				t.Errorf("warnings: expected %d, got %d", tt.warnings, got)
			}
		})
	}
}

func TestNew_NoDays(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, schedule.ErrNoDays) {
		t.Errorf("expected ErrNoDays, got %v", err)
	}
}

func TestEndToEnd_StageAbsentOnOneDay(t *testing.T) {
	h := newHarness(t, nil, friAfternoon)
	c := h.controller(t)

	// c is enabled but has no events on fri
	tb := c.Toolbar()
	stageC := tb.Stages[2]
	if stageC.ID != "c" || !stageC.Enabled || stageC.Available {
		t.Errorf("fri toolbar c: expected enabled and unavailable, got %+v", stageC)
	}
	if len(h.surface.Attached()) != 2 {
		t.Errorf("fri: expected 2 stages drawn, got %d", len(h.surface.Attached()))
	}

	if err := c.SetDay("sat"); err != nil {
		t.Fatalf("SetDay failed: %v", err)
	}
	if !reflect.DeepEqual(c.Arrangement().Visible, []string{"a", "c"}) {
		t.Errorf("sat: expected [a c], got %v", c.Arrangement().Visible)
	}
	if c.Arrangement().Range != (schedule.Range{Start: 720, End: 1590}) {
		t.Errorf("sat range: expected 720-1590, got %+v", c.Arrangement().Range)
	}

	tb = c.Toolbar()
	if !tb.Days[1].Active || tb.Days[0].Active {
		t.Errorf("expected sat active, got %+v", tb.Days)
	}
	if tb.Stages[1].Available {
		t.Error("sat toolbar b: expected unavailable")
	}

	if h.store.Values[KeyDayID] != "sat" {
		t.Errorf("persisted day: expected sat, got %q", h.store.Values[KeyDayID])
	}
	if h.store.Values[KeyEnabledStageIDs] != `["a","b","c"]` {
		t.Errorf("persisted stages: expected [a b c], got %s", h.store.Values[KeyEnabledStageIDs])
	}

	// a fresh controller over the same store comes back on sat
	restored := newHarness(t, h.store.Values, friAfternoon).controller(t)
	if restored.State().DayID != "sat" {
		t.Errorf("restored day: expected sat, got %s", restored.State().DayID)
	}
}

func TestSetDay_Unknown(t *testing.T) {
	h := newHarness(t, nil, friAfternoon)
	c := h.controller(t)

	err := c.SetDay("sun")
	var lookup *schedule.LookupError
	if !errors.As(err, &lookup) {
		t.Fatalf("expected LookupError, got %v", err)
	}
	if c.State().DayID != "fri" {
		t.Errorf("expected day unchanged, got %s", c.State().DayID)
	}
	if h.store.SetCalls != 0 {
		t.Errorf("expected no writes, got %d", h.store.SetCalls)
	}
}

func TestToggleStage(t *testing.T) {
	h := newHarness(t, nil, friAfternoon)
	c := h.controller(t)

	if err := c.ToggleStage("a"); err != nil {
		t.Fatalf("ToggleStage failed: %v", err)
	}
	s := c.State()
	if s.DayID != "fri" {
		t.Errorf("expected day unchanged, got %s", s.DayID)
	}
	if !reflect.DeepEqual(s.EnabledStageIDs, []string{"b", "c"}) {
		t.Errorf("expected [b c], got %v", s.EnabledStageIDs)
	}
	if h.store.Values[KeyEnabledStageIDs] != `["b","c"]` {
		t.Errorf("persisted: expected [b c], got %s", h.store.Values[KeyEnabledStageIDs])
	}
	// only a was live at 14:30
	if c.Toolbar().NowAvailable {
		t.Error("expected now button unavailable without stage a")
	}

	if err := c.ToggleStage("a"); err != nil {
		t.Fatal(err)
	}
	if !c.Toolbar().NowAvailable {
		t.Error("expected now button available again")
	}
}

func TestToggleStage_DeselectAll(t *testing.T) {
	h := newHarness(t, nil, friAfternoon)
	c := h.controller(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := c.ToggleStage(id); err != nil {
			t.Fatalf("ToggleStage(%s) failed: %v", id, err)
		}
	}
	if !c.Arrangement().Empty {
		t.Errorf("expected empty arrangement, got %+v", c.Arrangement())
	}
	if h.store.Values[KeyEnabledStageIDs] != `[]` {
		t.Errorf("persisted: expected [], got %s", h.store.Values[KeyEnabledStageIDs])
	}
}

func TestToggleStage_Unknown(t *testing.T) {
	h := newHarness(t, nil, friAfternoon)
	c := h.controller(t)

	if err := c.ToggleStage("zz"); !errors.Is(err, schedule.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if len(c.State().EnabledStageIDs) != 3 {
		t.Errorf("expected selection unchanged, got %v", c.State().EnabledStageIDs)
	}
}

func TestTick(t *testing.T) {
	h := newHarness(t, nil, scheduletest.At("2025-07-01", "12:00"))
	c := h.controller(t)

	if c.State().CurrentTimeDayID != "" {
		t.Errorf("expected no current day, got %q", c.State().CurrentTimeDayID)
	}

	// 00:30 on the morning after fri belongs to fri
	h.clock.Set(scheduletest.At("2025-06-21", "00:30"))
	c.Tick()
	if c.State().CurrentTimeDayID != "fri" {
		t.Errorf("expected fri, got %q", c.State().CurrentTimeDayID)
	}

	h.clock.Set(scheduletest.At("2025-06-22", "01:00"))
	c.FocusRegained()
	if c.State().CurrentTimeDayID != "sat" {
		t.Errorf("expected sat, got %q", c.State().CurrentTimeDayID)
	}
}

func TestJumpToNow(t *testing.T) {
	h := newHarness(t, nil, scheduletest.At("2025-06-21", "21:00"))
	c := h.controller(t)

	if c.State().DayID != "fri" {
		t.Fatalf("expected to start on fri, got %s", c.State().DayID)
	}
	if !c.JumpToNow() {
		t.Fatal("expected jump")
	}
	if c.State().DayID != "sat" {
		t.Errorf("expected sat, got %s", c.State().DayID)
	}
	// (1260 - 720) * 100/30
	if !reflect.DeepEqual(h.viewport.CenterOnCalls, []float64{1800}) {
		t.Errorf("expected CenterOn(1800), got %v", h.viewport.CenterOnCalls)
	}
}

func TestJumpToNow_NothingLive(t *testing.T) {
	h := newHarness(t, nil, scheduletest.At("2025-07-01", "12:00"))
	c := h.controller(t)

	if c.JumpToNow() {
		t.Error("expected no jump")
	}
	if len(h.viewport.CenterOnCalls) != 0 || h.store.SetCalls != 0 {
		t.Error("expected no side effects")
	}
}

func TestScrollSettled(t *testing.T) {
	h := newHarness(t, nil, friAfternoon)
	c := h.controller(t)

	c.ScrollSettled(250.5)
	if h.store.Values[KeyScrollOffset] != "250.5" {
		t.Errorf("expected 250.5, got %q", h.store.Values[KeyScrollOffset])
	}
	if off := c.State().ScrollOffset; off == nil || *off != 250.5 {
		t.Errorf("expected state offset 250.5, got %v", off)
	}

	c.ScrollSettled(-1)
	if h.store.Values[KeyScrollOffset] != "250.5" {
		t.Errorf("negative offset: expected unchanged, got %q", h.store.Values[KeyScrollOffset])
	}
}

func TestPersistErrorsAreLogged(t *testing.T) {
	h := newHarness(t, nil, friAfternoon)
	h.store.SetErr = mocks.ErrStoreUnavailable
	c := h.controller(t)

	if err := c.ToggleStage("b"); err != nil {
		t.Fatalf("expected persist failure to be swallowed, got %v", err)
	}
	if h.logger.Count(ports.LevelError) == 0 {
		t.Error("expected persist failure to be logged")
	}
	if len(c.State().EnabledStageIDs) != 2 {
		t.Errorf("expected in-memory state updated, got %v", c.State().EnabledStageIDs)
	}
}

type countingLocker struct {
	sync.Mutex
	locks int
}

func (l *countingLocker) Lock() {
	l.Mutex.Lock()
	l.locks++
}

func TestStartTicker(t *testing.T) {
	h := newHarness(t, nil, scheduletest.At("2025-07-01", "12:00"))
	locker := &countingLocker{}
	c, err := New(scheduletest.Repository(), h.view, WithClock(h.clock), WithLocker(locker))
	if err != nil {
		t.Fatal(err)
	}

	ticker := &mocks.Ticker{}
	if err := c.StartTicker(ticker); err != nil {
		t.Fatalf("StartTicker failed: %v", err)
	}
	if !ticker.Started {
		t.Error("expected ticker started")
	}

	h.clock.Set(friAfternoon)
	ticker.Fire()
	if c.State().CurrentTimeDayID != "fri" {
		t.Errorf("expected tick to find fri, got %q", c.State().CurrentTimeDayID)
	}
	if locker.locks != 1 {
		t.Errorf("expected 1 lock, got %d", locker.locks)
	}

	c.Close()
	if !ticker.Stopped {
		t.Error("expected ticker stopped")
	}
}
