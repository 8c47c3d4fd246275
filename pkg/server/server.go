// Package server hosts one selection controller over HTTP.
package server

import (
	"context"
	"errors"
	"image/color"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/user/blocksched/pkg/adapters/icsexport"
	"github.com/user/blocksched/pkg/adapters/svgexport"
	"github.com/user/blocksched/pkg/controller"
	"github.com/user/blocksched/pkg/orchestrator"
	"github.com/user/blocksched/pkg/pipeline"
	"github.com/user/blocksched/pkg/ports"
	"github.com/user/blocksched/pkg/schedule"
	"github.com/user/blocksched/pkg/stages/composite"
	"github.com/user/blocksched/pkg/stages/layout"
)

// Options configures a Server.
type Options struct {
	Theme       layout.Theme
	Style       ports.StyleProvider
	ShrinkDelay time.Duration
	Background  color.RGBA
	Location    *time.Location
}

// DefaultOptions returns the built-in theme and shrink delay.
func DefaultOptions() Options {
	return Options{
		Theme:       layout.DefaultTheme(),
		ShrinkDelay: composite.ShrinkDelay,
		Background:  svgexport.DefaultOptions().Background,
	}
}

// Server serves the schedule and the selection operations.
// Handlers, ticks and reloads are serialized by one mutex.
type Server struct {
	mu sync.Mutex

	source  ports.DatasetSource
	encoder pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	store   ports.KeyValueStore
	clock   ports.Clock
	ticker  ports.Ticker
	logger  ports.Logger
	opts    Options

	viewport *viewport
	session  *session
	engine   *gin.Engine
}

// New creates a server. Call Load before serving.
func New(
	source ports.DatasetSource,
	encoder pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult],
	store ports.KeyValueStore,
	clock ports.Clock,
	ticker ports.Ticker,
	logger ports.Logger,
	opts Options,
) *Server {
	s := &Server{
		source:   source,
		encoder:  encoder,
		store:    store,
		clock:    clock,
		ticker:   ticker,
		logger:   logger.WithComponent("server"),
		opts:     opts,
		viewport: &viewport{},
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Load fetches the dataset and replaces the session. On failure the
// previous session keeps serving.
func (s *Server) Load(ctx context.Context) error {
	repo, err := orchestrator.Load(ctx, s.source, s.opts.Location, s.logger)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.buildSession(ctx, repo, &s.mu)
	if err != nil {
		return err
	}
	if s.session != nil {
		s.session.ctrl.Close()
	}
	s.session = next
	if s.ticker != nil {
		if err := next.ctrl.StartTicker(s.ticker); err != nil {
			return err
		}
	}
	return nil
}

// Reload is the dataset watcher callback.
func (s *Server) Reload(ctx context.Context) {
	s.logger.Info("Dataset changed, reloading")
	if err := s.Load(ctx); err != nil {
		s.logger.Error("Reload failed: %v", err)
		return
	}
	s.mu.Lock()
	repo := s.session.repo
	s.mu.Unlock()
	s.logger.Info("Dataset reloaded: %d days, %d stages", len(repo.DayIDs()), len(repo.StageIDs()))
}

// Close stops the tick of the current session.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		s.session.ctrl.Close()
	}
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/", s.handlePage)
	r.GET("/healthz", s.handleHealth)
	r.GET("/schedule.svg", s.handleImage(pipeline.OutputSVG))
	r.GET("/schedule.png", s.handleImage(pipeline.OutputPNG))
	r.GET("/calendar.ics", s.handleCalendar)

	api := r.Group("/api")
	{
		api.GET("/state", s.handleState)
		api.GET("/toolbar", s.handleToolbar)
		api.POST("/day/:id", s.handleSetDay)
		api.POST("/stages/:id/toggle", s.handleToggleStage)
		api.POST("/now", s.handleJumpToNow)
		api.POST("/focus", s.handleFocus)
		api.POST("/scroll", s.handleScroll)
	}
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// withSession runs fn under the lock after applying any due shrink.
func (s *Server) withSession(c *gin.Context, fn func(sess *session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dataset not loaded"})
		return
	}
	s.session.view.Flush(s.clock.Now())
	fn(s.session)
}

type stateResponse struct {
	controller.State
	Arrangement pipeline.Arrangement `json:"arrangement"`
	Scroll      *scrollRequest       `json:"scroll,omitempty"`

	// ShrinkAt is when the page should fetch the image again to see a deferred shrink.
	ShrinkAt *time.Time `json:"shrinkAt,omitempty"`
}

func (s *Server) state(sess *session) stateResponse {
	resp := stateResponse{
		State:       sess.ctrl.State(),
		Arrangement: sess.ctrl.Arrangement(),
		Scroll:      s.viewport.take(),
	}
	if due, ok := sess.view.PendingUntil(); ok {
		resp.ShrinkAt = &due
	}
	return resp
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleState(c *gin.Context) {
	s.withSession(c, func(sess *session) {
		c.JSON(http.StatusOK, s.state(sess))
	})
}

func (s *Server) handleToolbar(c *gin.Context) {
	s.withSession(c, func(sess *session) {
		c.JSON(http.StatusOK, sess.ctrl.Toolbar())
	})
}

func (s *Server) handleSetDay(c *gin.Context) {
	s.withSession(c, func(sess *session) {
		if err := sess.ctrl.SetDay(c.Param("id")); err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, s.state(sess))
	})
}

func (s *Server) handleToggleStage(c *gin.Context) {
	s.withSession(c, func(sess *session) {
		if err := sess.ctrl.ToggleStage(c.Param("id")); err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, s.state(sess))
	})
}

func (s *Server) handleJumpToNow(c *gin.Context) {
	s.withSession(c, func(sess *session) {
		jumped := sess.ctrl.JumpToNow()
		c.JSON(http.StatusOK, gin.H{"jumped": jumped, "state": s.state(sess)})
	})
}

func (s *Server) handleFocus(c *gin.Context) {
	s.withSession(c, func(sess *session) {
		sess.ctrl.FocusRegained()
		c.JSON(http.StatusOK, s.state(sess))
	})
}

type scrollBody struct {
	Offset *float64 `json:"offset" binding:"required"`
}

func (s *Server) handleScroll(c *gin.Context) {
	var body scrollBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offset := *body.Offset
	if offset < 0 || math.IsNaN(offset) || math.IsInf(offset, 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a finite, non-negative number"})
		return
	}
	s.withSession(c, func(sess *session) {
		sess.ctrl.ScrollSettled(offset)
		c.Status(http.StatusNoContent)
	})
}

func (s *Server) handleImage(format pipeline.OutputFormat) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.withSession(c, func(sess *session) {
			result, err := s.encode(c.Request.Context(), sess, format)
			if err != nil {
				s.writeError(c, err)
				return
			}
			c.Header("Cache-Control", "no-store")
			c.Data(http.StatusOK, result.ContentType, result.Data)
		})
	}
}

func (s *Server) encode(ctx context.Context, sess *session, format pipeline.OutputFormat) (pipeline.EncodeResult, error) {
	return s.encoder.Execute(ctx, pipeline.EncodeInput{
		Document:   sess.surface.Snapshot(),
		Format:     format,
		Background: s.opts.Background,
	})
}

func (s *Server) handlePage(c *gin.Context) {
	s.withSession(c, func(sess *session) {
		result, err := s.encode(c.Request.Context(), sess, pipeline.OutputSVG)
		if err != nil {
			s.writeError(c, err)
			return
		}
		vars := newPageVars(sess.ctrl.Toolbar(), result.Data, result.Width, result.Height, s.state(sess), s.clock.Now())
		page, err := renderPage(vars)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
}

func (s *Server) handleCalendar(c *gin.Context) {
	s.withSession(c, func(sess *session) {
		state := sess.ctrl.State()
		if len(state.EnabledStageIDs) == 0 {
			s.writeError(c, schedule.ErrEmptySelection)
			return
		}
		cal, err := icsexport.Build(sess.repo, icsexport.Selection{
			DayIDs:   []string{state.DayID},
			StageIDs: state.EnabledStageIDs,
		}, s.clock.Now())
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(cal.Serialize()))
	})
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, schedule.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, schedule.ErrEmptySelection):
		status = http.StatusUnprocessableEntity
	default:
		s.logger.Error("Request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
