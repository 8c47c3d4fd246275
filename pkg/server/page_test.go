package server

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/user/blocksched/pkg/controller"
	"github.com/user/blocksched/pkg/stages/composite"
)

func TestPage_Toolbar(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`class="day active" data-day="fri">Friday<`,
		`class="day" data-day="sat">Saturday<`,
		`data-stage="a"`,
		`data-stage="c"`,
		`id="now"`,
		"<svg",
		"Brass Band",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
	// c has no events on fri
	if !strings.Contains(body, `class="stage unavailable" data-stage="c"`) {
		t.Error("expected stage c to be marked unavailable")
	}
}

func TestPage_DisabledStage(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/stages/b/toggle", "")

	body := f.do(t, http.MethodGet, "/", "").Body.String()
	if !strings.Contains(body, `class="stage off" data-stage="b"`) {
		t.Error("expected stage b to be marked off")
	}
	if !strings.Contains(body, "setTimeout(reload") {
		t.Error("expected a redraw scheduled for the pending shrink")
	}
}

func TestPage_EmptySelection(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/stages/a/toggle", "")
	f.do(t, http.MethodPost, "/api/stages/b/toggle", "")

	body := f.do(t, http.MethodGet, "/", "").Body.String()
	if !strings.Contains(body, "No stages selected") {
		t.Error("expected empty placeholder")
	}
	if strings.Contains(body, `id="now"`) {
		t.Error("expected no now button without a live stage")
	}
}

func TestPage_RestoresScroll(t *testing.T) {
	f := newUnloaded()
	f.store.Values[controller.KeyScrollOffset] = "320"
	if err := f.server.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(f.server.Close)

	body := f.do(t, http.MethodGet, "/", "").Body.String()
	if !strings.Contains(body, "scrollArea({offset:") {
		t.Error("expected initial scroll to be applied")
	}

	// the request is consumed by the first page
	body = f.do(t, http.MethodGet, "/", "").Body.String()
	if strings.Contains(body, "scrollArea({offset:") {
		t.Error("expected scroll request to be applied once")
	}
}

func TestNewPageVars_ShrinkIn(t *testing.T) {
	now := time.Date(2025, 6, 20, 20, 0, 0, 0, time.UTC)
	due := now.Add(composite.ShrinkDelay)

	vars := newPageVars(controller.Toolbar{}, nil, 10, 10, stateResponse{ShrinkAt: &due}, now)
	if vars.ShrinkInMs != 500 {
		t.Errorf("expected 500ms, got %d", vars.ShrinkInMs)
	}

	past := now.Add(-time.Second)
	vars = newPageVars(controller.Toolbar{}, nil, 10, 10, stateResponse{ShrinkAt: &past}, now)
	if vars.ShrinkInMs != 1 {
		t.Errorf("overdue: expected 1ms, got %d", vars.ShrinkInMs)
	}
}
