package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/user/blocksched/pkg/adapters/scene"
	"github.com/user/blocksched/pkg/controller"
	"github.com/user/blocksched/pkg/ports"
	"github.com/user/blocksched/pkg/schedule"
	"github.com/user/blocksched/pkg/stages/composite"
	"github.com/user/blocksched/pkg/stages/layout"
)

// session is everything built from one dataset load.
type session struct {
	repo    *schedule.Repository
	surface *scene.Surface
	view    *composite.View
	ctrl    *controller.Controller
}

// viewport records the scroll position the controller asks for,
// so responses can tell the page where to scroll.
type viewport struct {
	offset  *float64
	centred bool
}

func (v *viewport) ScrollTo(offset float64) {
	v.offset = &offset
	v.centred = false
}

func (v *viewport) CenterOn(x float64) {
	v.offset = &x
	v.centred = true
}

func (v *viewport) Offset() float64 {
	if v.offset == nil {
		return 0
	}
	return *v.offset
}

// take returns and clears the pending scroll request.
func (v *viewport) take() *scrollRequest {
	if v.offset == nil {
		return nil
	}
	req := &scrollRequest{Offset: *v.offset, Centre: v.centred}
	v.offset = nil
	return req
}

type scrollRequest struct {
	Offset float64 `json:"offset"`
	Centre bool    `json:"centre"`
}

var _ ports.Viewport = (*viewport)(nil)

func (s *Server) buildSession(ctx context.Context, repo *schedule.Repository, locker sync.Locker) (*session, error) {
	surface := scene.New()
	engine := layout.NewEngine(repo, s.opts.Theme, s.opts.Style, s.logger)
	built, err := layout.BuildAll(ctx, engine, repo, surface)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	view := composite.NewView(repo, built.Layouts, surface, s.clock, s.logger, composite.WithShrinkDelay(s.opts.ShrinkDelay))

	ctrl, err := controller.New(repo, view,
		controller.WithStore(s.store),
		controller.WithClock(s.clock),
		controller.WithViewport(s.viewport),
		controller.WithLogger(s.logger),
		controller.WithLocker(locker),
	)
	if err != nil {
		return nil, fmt.Errorf("controller: %w", err)
	}
	return &session{repo: repo, surface: surface, view: view, ctrl: ctrl}, nil
}
