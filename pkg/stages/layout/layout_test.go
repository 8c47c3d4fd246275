package layout

import (
	"context"
	"testing"

	"github.com/user/blocksched/pkg/adapters/logger"
	"github.com/user/blocksched/pkg/adapters/scene"
	"github.com/user/blocksched/pkg/mocks"
	"github.com/user/blocksched/pkg/pipeline"
	"github.com/user/blocksched/pkg/ports"
	"github.com/user/blocksched/pkg/schedule/scheduletest"
)

func buildStage(t *testing.T, dayID, stageID string) (*scene.Surface, pipeline.StageLayout) {
	t.Helper()
	repo := scheduletest.Repository()
	surface := scene.New()
	engine := NewEngine(repo, DefaultTheme(), nil, logger.NewNoop())

	sl, err := engine.BuildStage(surface, dayID, stageID)
	if err != nil {
		t.Fatalf("BuildStage(%s, %s) failed: %v", dayID, stageID, err)
	}
	surface.Append(sl.Group)
	return surface, sl
}

func TestBuildStage_LayerOrder(t *testing.T) {
	surface, _ := buildStage(t, "fri", "a")
	doc := surface.Snapshot()

	root := doc.Nodes[0]
	if !root.HasClass(ClassStage) || !root.HasClass("stage-a") {
		t.Errorf("root classes: expected stage and stage-a, got %v", root.Classes)
	}
	if len(root.Children) != 4 {
		t.Fatalf("expected 4 layers, got %d", len(root.Children))
	}

	// grid, blocks, cursor, labels
	if !root.Children[0].HasClass("grid") {
		t.Errorf("layer 0: expected grid, got %v", root.Children[0].Classes)
	}
	if !root.Children[1].HasClass("blocks") {
		t.Errorf("layer 1: expected blocks, got %v", root.Children[1].Classes)
	}
	if root.Children[2].Kind != ports.NodeLine || !root.Children[2].HasClass(ClassCursor) {
		t.Errorf("layer 2: expected cursor line, got %+v", root.Children[2])
	}
	if !root.Children[3].HasClass("labels") {
		t.Errorf("layer 3: expected labels, got %v", root.Children[3].Classes)
	}
}

func TestBuildStage_Gridlines(t *testing.T) {
	surface, _ := buildStage(t, "sat", "a")
	grid := surface.Snapshot().Nodes[0].Children[0]

	if len(grid.Children) != 49 {
		t.Fatalf("expected 49 gridlines, got %d", len(grid.Children))
	}
	for i, line := range grid.Children {
		want := float64(i * HourStep)
		if line.From.X != want || line.To.X != want {
			t.Errorf("gridline %d: expected x=%v, got %v..%v", i, want, line.From.X, line.To.X)
		}
		if !line.HasClass(ClassHourLine) {
			t.Errorf("gridline %d: missing class %s", i, ClassHourLine)
		}
		if line.To.Y != 30 {
			t.Errorf("gridline %d: expected height 30, got %v", i, line.To.Y)
		}
	}
}

func TestBuildStage_Blocks(t *testing.T) {
	surface, sl := buildStage(t, "fri", "a")
	blocks := surface.Snapshot().Nodes[0].Children[1].Children

	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}

	opening := blocks[0]
	if opening.Bounds.X != 840 || opening.Bounds.Width != 60 {
		t.Errorf("opening: expected x=840 w=60, got %+v", opening.Bounds)
	}
	if opening.HasClass(ClassClickable) || opening.Link != "" {
		t.Errorf("opening: expected not clickable, got %+v", opening)
	}

	late := blocks[1]
	if late.Bounds.X != 1380 || late.Bounds.Width != 120 {
		t.Errorf("late: expected x=1380 w=120, got %+v", late.Bounds)
	}
	if !late.HasClass(ClassClickable) || late.Link != "https://example.com/late" {
		t.Errorf("late: expected clickable link, got %+v", late)
	}
	if late.Shape.Radius != DefaultBlockRadius {
		t.Errorf("radius: expected %v, got %v", DefaultBlockRadius, late.Shape.Radius)
	}
	if late.Shape.Fill.R != 0xe4 || late.Shape.Fill.G != 0x1a || late.Shape.Fill.B != 0x1c {
		t.Errorf("fill: expected #e41a1c, got %+v", late.Shape.Fill)
	}

	if sl.Range.Start != 840 || sl.Range.End != 1500 {
		t.Errorf("range: expected 840-1500, got %+v", sl.Range)
	}
	for _, b := range blocks {
		if b.Bounds.X < sl.Range.Start || b.Bounds.X+b.Bounds.Width > sl.Range.End {
			t.Errorf("block %+v outside range %+v", b.Bounds, sl.Range)
		}
	}
}

func TestBuildStage_Labels(t *testing.T) {
	surface, _ := buildStage(t, "sat", "c")
	labels := surface.Snapshot().Nodes[0].Children[3].Children

	if len(labels) != 1 {
		t.Fatalf("expected 1 label, got %d", len(labels))
	}
	want := "Night Shift\n20:00–02:30"
	if labels[0].Text != want {
		t.Errorf("label: expected %q, got %q", want, labels[0].Text)
	}
	if !labels[0].HasClass(ClassLabel) {
		t.Errorf("label: missing class %s", ClassLabel)
	}
}

func TestBuildStage_AbsentStage(t *testing.T) {
	repo := scheduletest.Repository()
	engine := NewEngine(repo, DefaultTheme(), nil, logger.NewNoop())

	if _, err := engine.BuildStage(scene.New(), "fri", "c"); err == nil {
		t.Error("expected error for stage without events")
	}
}

func TestBuildStage_StyleRadius(t *testing.T) {
	repo := scheduletest.Repository()
	style := &mocks.StyleProvider{Radius: 9, OK: true}
	engine := NewEngine(repo, DefaultTheme(), style, logger.NewNoop())

	if engine.Radius() != 9 {
		t.Errorf("expected radius 9, got %v", engine.Radius())
	}

	missing := &mocks.StyleProvider{}
	engine = NewEngine(repo, DefaultTheme(), missing, logger.NewNoop())
	if engine.Radius() != DefaultBlockRadius {
		t.Errorf("expected fallback radius, got %v", engine.Radius())
	}
}

func TestBuildStage_InvalidColour(t *testing.T) {
	ds := scheduletest.Festival()
	ds.Stages[0].Colour = "not-a-colour"
	repo, err := scheduletest.RepositoryFrom(ds)
	if err != nil {
		t.Fatal(err)
	}
	log := mocks.NewLogger()
	engine := NewEngine(repo, DefaultTheme(), nil, log)
	surface := scene.New()

	sl, err := engine.BuildStage(surface, "fri", "a")
	if err != nil {
		t.Fatalf("BuildStage failed: %v", err)
	}
	surface.Append(sl.Group)

	block := surface.Snapshot().Nodes[0].Children[1].Children[0]
	if block.Shape.Fill != DefaultTheme().FallbackColour {
		t.Errorf("expected fallback colour, got %+v", block.Shape.Fill)
	}
	if log.Count(ports.LevelWarn) != 1 {
		t.Errorf("expected 1 warning, got %d", log.Count(ports.LevelWarn))
	}
}

func TestUpdateCurrentTimeLine(t *testing.T) {
	repo := scheduletest.Repository()
	engine := NewEngine(repo, DefaultTheme(), nil, logger.NewNoop())
	sl, err := engine.BuildStage(scene.New(), "fri", "a")
	if err != nil {
		t.Fatal(err)
	}

	a, _ := sl.Cursor.Points()
	if a.X != 0 {
		t.Errorf("initial cursor: expected 0, got %v", a.X)
	}

	dayStart, _ := repo.DayStart("fri")
	engine.UpdateCurrentTimeLine(sl, dayStart, scheduletest.At("2025-06-21", "00:30"))

	a, b := sl.Cursor.Points()
	if a.X != 1470 || b.X != 1470 {
		t.Errorf("cursor: expected 1470, got %v..%v", a.X, b.X)
	}
	if b.Y != 30 {
		t.Errorf("cursor height: expected 30, got %v", b.Y)
	}
}

func TestStage_Execute(t *testing.T) {
	repo := scheduletest.Repository()
	stage := NewStage(DefaultTheme(), nil, logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.LayoutInput{
		Repository: repo,
		Surface:    scene.New(),
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(result.Layouts) != 4 {
		t.Errorf("expected 4 layouts, got %d", len(result.Layouts))
	}
	if _, ok := result.Layouts.Get("fri", "c"); ok {
		t.Error("expected no layout for absent stage fri/c")
	}
	if sl, ok := result.Layouts.Get("sat", "c"); !ok || sl.Range.End != 1590 {
		t.Errorf("sat/c: expected range end 1590, got %+v", sl.Range)
	}
}

func TestStage_Execute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stage := NewStage(DefaultTheme(), nil, logger.NewNoop())
	_, err := stage.Execute(ctx, pipeline.LayoutInput{Repository: scheduletest.Repository(), Surface: scene.New()})
	if err == nil {
		t.Error("expected context error")
	}
}

func TestLabel(t *testing.T) {
	repo := scheduletest.Repository()
	slots, _ := repo.Events("fri", "b")
	if got := Label(slots[0]); got != "Brass Band\n16:00–17:30" {
		t.Errorf("expected label, got %q", got)
	}
}
