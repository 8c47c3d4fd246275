// Package tui drives a selection controller from the keyboard and draws the
// schedule in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/blocksched/pkg/adapters/scene"
	"github.com/user/blocksched/pkg/adapters/termrender"
	"github.com/user/blocksched/pkg/controller"
	"github.com/user/blocksched/pkg/ports"
	"github.com/user/blocksched/pkg/schedule"
	"github.com/user/blocksched/pkg/stages/composite"
	"github.com/user/blocksched/pkg/stages/layout"
)

// Options configures the model.
type Options struct {
	Theme       layout.Theme
	Style       ports.StyleProvider
	ShrinkDelay time.Duration
	Terminal    termrender.Options

	// TickEvery is the interval of the built-in current-time tick. Zero
	// disables it, for hosts that send TickMsg from their own ticker.
	TickEvery time.Duration
}

// DefaultOptions returns the built-in theme, a 30 second tick and the default grid.
func DefaultOptions() Options {
	return Options{
		Theme:       layout.DefaultTheme(),
		ShrinkDelay: composite.ShrinkDelay,
		Terminal:    termrender.DefaultOptions(),
		TickEvery:   30 * time.Second,
	}
}

// TickMsg moves the cursor lines to now.
type TickMsg time.Time

type flushMsg time.Time

type styles struct {
	Active   lipgloss.Style
	Inactive lipgloss.Style
	Disabled lipgloss.Style
	Help     lipgloss.Style
	Message  lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Active:   lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1),
		Inactive: lipgloss.NewStyle().Padding(0, 1),
		Disabled: lipgloss.NewStyle().Faint(true).Padding(0, 1),
		Help:     lipgloss.NewStyle().Faint(true),
		Message:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0066")),
	}
}

// Model is the bubbletea model of the terminal host.
type Model struct {
	repo     *schedule.Repository
	surface  *scene.Surface
	view     *composite.View
	ctrl     *controller.Controller
	clock    ports.Clock
	viewport *viewport
	opts     Options
	styles   styles

	width   int
	message string
}

// New lays out repo and restores the selection from store.
func New(ctx context.Context, repo *schedule.Repository, store ports.KeyValueStore, clock ports.Clock, logger ports.Logger, opts Options) (*Model, error) {
	surface := scene.New()
	engine := layout.NewEngine(repo, opts.Theme, opts.Style, logger)
	built, err := layout.BuildAll(ctx, engine, repo, surface)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	view := composite.NewView(repo, built.Layouts, surface, clock, logger, composite.WithShrinkDelay(opts.ShrinkDelay))

	m := &Model{
		repo:    repo,
		surface: surface,
		view:    view,
		clock:   clock,
		opts:    opts,
		styles:  defaultStyles(),
	}
	m.viewport = newViewport(repo.Config().BlockHeight.PixelsPerCoord(), opts.Terminal)

	m.ctrl, err = controller.New(repo, view,
		controller.WithStore(store),
		controller.WithClock(clock),
		controller.WithViewport(m.viewport),
		controller.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	for _, s := range repo.Stages() {
		names[s.ID] = s.Name
	}
	m.opts.Terminal.StageNames = names
	return m, nil
}

// Controller returns the controller driven by the model.
func (m *Model) Controller() *controller.Controller {
	return m.ctrl
}

// Init starts the tick.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.flushLater())
}

func (m *Model) tick() tea.Cmd {
	if m.opts.TickEvery <= 0 {
		return nil
	}
	return tea.Tick(m.opts.TickEvery, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// flushLater schedules the deferred shrink, if one is pending.
func (m *Model) flushLater() tea.Cmd {
	due, ok := m.view.PendingUntil()
	if !ok {
		return nil
	}
	return tea.Tick(max(due.Sub(m.clock.Now()), 0), func(t time.Time) tea.Msg { return flushMsg(t) })
}

// Update handles keys, ticks, focus and resize.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.width = max(msg.Width-m.opts.Terminal.NameWidth, 1)
		return m, nil

	case TickMsg:
		m.ctrl.Tick()
		return m, m.tick()

	case flushMsg:
		m.view.Flush(m.clock.Now())
		return m, m.flushLater()

	case tea.FocusMsg:
		m.ctrl.FocusRegained()
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.message = ""
	key := msg.String()

	switch key {
	case "q", "ctrl+c", "esc":
		m.ctrl.Close()
		return tea.Quit

	case "tab", "]":
		m.shiftDay(1)
	case "shift+tab", "[":
		m.shiftDay(-1)

	case "n":
		if !m.ctrl.JumpToNow() {
			m.message = "Nothing is on right now"
		}

	case "left", "h":
		m.scroll(-m.scrollStep())
	case "right", "l":
		m.scroll(m.scrollStep())
	case "home":
		m.scroll(-m.viewport.column)

	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			m.toggle(int(key[0] - '1'))
		}
	}
	return m.flushLater()
}

func (m *Model) shiftDay(delta int) {
	ids := m.repo.DayIDs()
	current := m.ctrl.State().DayID
	for i, id := range ids {
		if id == current {
			next := ids[(i+delta+len(ids))%len(ids)]
			if err := m.ctrl.SetDay(next); err != nil {
				m.message = err.Error()
			}
			return
		}
	}
}

func (m *Model) toggle(index int) {
	ids := m.repo.StageIDs()
	if index >= len(ids) {
		return
	}
	if err := m.ctrl.ToggleStage(ids[index]); err != nil {
		m.message = err.Error()
	}
}

func (m *Model) scrollStep() int {
	return max(m.opts.Terminal.ColumnsPerHour, 1)
}

// scroll moves the window and records the settled offset.
func (m *Model) scroll(delta int) {
	cols := termrender.Columns(m.surface.Snapshot(), m.opts.Terminal)
	m.viewport.column = min(max(m.viewport.column+delta, 0), max(cols-1, 0))
	m.ctrl.ScrollSettled(m.viewport.Offset())
}

// View draws the toolbar, the schedule and the key help.
func (m *Model) View() string {
	var sections []string
	sections = append(sections, m.toolbar())

	opts := m.opts.Terminal
	opts.Offset = m.viewport.column
	if m.width > 0 {
		opts.Width = m.viewport.width
	}
	body := termrender.Render(m.surface.Snapshot(), opts)
	if m.ctrl.Arrangement().Empty {
		body = m.styles.Help.Render("No stages selected")
	}
	sections = append(sections, "", body, "")

	if m.message != "" {
		sections = append(sections, m.styles.Message.Render(m.message))
	}
	sections = append(sections, m.styles.Help.Render("tab/shift+tab day • 1-9 stage • ←/→ scroll • n now • q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) toolbar() string {
	tb := m.ctrl.Toolbar()

	var days []string
	for _, d := range tb.Days {
		style := m.styles.Inactive
		if d.Active {
			style = m.styles.Active
		}
		days = append(days, style.Render(d.Name))
	}
	if tb.NowAvailable {
		days = append(days, m.styles.Inactive.Render("[n] now"))
	}

	var stages []string
	for i, s := range tb.Stages {
		mark := " "
		if s.Enabled {
			mark = "x"
		}
		label := fmt.Sprintf("%d [%s] %s", i+1, mark, s.Name)
		style := m.styles.Inactive
		if !s.Available {
			style = m.styles.Disabled
		}
		stages = append(stages, style.Foreground(lipgloss.Color(s.Colour)).Render(label))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(days, " "),
		strings.Join(stages, " "),
	)
}

// viewport maps the controller's pixel offsets to terminal columns.
type viewport struct {
	pixelsPerColumn float64
	width           int
	column          int
}

func newViewport(pixelsPerCoord float64, opts termrender.Options) *viewport {
	perHour := max(opts.ColumnsPerHour, 1)
	return &viewport{pixelsPerColumn: pixelsPerCoord * 60 / float64(perHour)}
}

func (v *viewport) ScrollTo(offset float64) {
	if v.pixelsPerColumn > 0 {
		v.column = max(int(offset/v.pixelsPerColumn), 0)
	}
}

func (v *viewport) CenterOn(x float64) {
	if v.pixelsPerColumn > 0 {
		v.column = max(int(x/v.pixelsPerColumn)-v.width/2, 0)
	}
}

func (v *viewport) Offset() float64 {
	return float64(v.column) * v.pixelsPerColumn
}

var (
	_ tea.Model      = (*Model)(nil)
	_ ports.Viewport = (*viewport)(nil)
)
