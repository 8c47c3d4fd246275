package encode

import (
	"context"
	"errors"
	"image"
	"math"
	"strings"
	"testing"

	"github.com/user/blocksched/pkg/adapters/logger"
	"github.com/user/blocksched/pkg/adapters/scene"
	"github.com/user/blocksched/pkg/mocks"
	"github.com/user/blocksched/pkg/pipeline"
	"github.com/user/blocksched/pkg/ports"
	"github.com/user/blocksched/pkg/schedule"
	"github.com/user/blocksched/pkg/schedule/scheduletest"
	"github.com/user/blocksched/pkg/stages/composite"
	"github.com/user/blocksched/pkg/stages/layout"
)

func document(t *testing.T, dayID string, stages ...string) ports.Document {
	t.Helper()
	repo := scheduletest.Repository()
	surface := scene.New()
	built, err := layout.NewStage(layout.DefaultTheme(), nil, logger.NewNoop()).
		Execute(context.Background(), pipeline.LayoutInput{Repository: repo, Surface: surface})
	if err != nil {
		t.Fatal(err)
	}
	result, err := composite.NewStage(mocks.NewClock(scheduletest.At("2025-06-20", "12:00")), logger.NewNoop()).
		Execute(context.Background(), pipeline.CompositeInput{
			Repository: repo,
			Layouts:    built.Layouts,
			Surface:    surface,
			DayID:      dayID,
			StageIDs:   stages,
		})
	if err != nil {
		t.Fatal(err)
	}
	return result.Document
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestStage_SVG(t *testing.T) {
	stage := NewStage(&mocks.Renderer{}, nil, logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.EncodeInput{
		Document: document(t, "fri", "a", "b"),
		Format:   pipeline.OutputSVG,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.ContentType != ContentTypeSVG {
		t.Errorf("content type: expected %s, got %s", ContentTypeSVG, result.ContentType)
	}
	if result.Width != 2200 || result.Height != 200 {
		t.Errorf("size: expected 2200x200, got %dx%d", result.Width, result.Height)
	}
	if !strings.HasPrefix(string(result.Data), "<svg") {
		t.Errorf("expected SVG, got %.40s", result.Data)
	}
}

func TestStage_PNG(t *testing.T) {
	renderer := &mocks.Renderer{}
	stage := NewStage(renderer, nil, logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.EncodeInput{
		Document: document(t, "fri", "a", "b"),
		Format:   pipeline.OutputPNG,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.ContentType != ContentTypePNG {
		t.Errorf("content type: expected %s, got %s", ContentTypePNG, result.ContentType)
	}
	if result.Width != 2200 || result.Height != 200 {
		t.Errorf("size: expected 2200x200, got %dx%d", result.Width, result.Height)
	}

	canvas := renderer.Canvases[0]
	if got := canvas.Count("rounded"); got != 3 {
		t.Errorf("blocks: expected 3, got %d", got)
	}
	if got := canvas.Count("text"); got != 3 {
		t.Errorf("labels: expected 3, got %d", got)
	}
	if got := canvas.Count("line"); got != 100 {
		t.Errorf("lines: expected 100, got %d", got)
	}
}

func TestStage_PNG_MaxWidth(t *testing.T) {
	stage := NewStage(&mocks.Renderer{}, nil, logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.EncodeInput{
		Document: document(t, "fri", "a", "b"),
		Format:   pipeline.OutputPNG,
		MaxWidth: 1100,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Width != 1100 || result.Height != 100 {
		t.Errorf("size: expected 1100x100, got %dx%d", result.Width, result.Height)
	}

	result, err = stage.Execute(context.Background(), pipeline.EncodeInput{
		Document: document(t, "fri", "a", "b"),
		Format:   pipeline.OutputPNG,
		MaxWidth: 4000,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Width != 2200 {
		t.Errorf("narrower than the limit: expected 2200, got %d", result.Width)
	}
}

func TestRasterize_Coordinates(t *testing.T) {
	renderer := &mocks.Renderer{}
	Rasterize(renderer, document(t, "fri", "a", "b"), DefaultBackground())

	var blocks []mocks.DrawCall
	for _, c := range renderer.Canvases[0].Calls {
		if c.Op == "rounded" {
			blocks = append(blocks, c)
		}
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}

	// Opening, 14:00-15:00 on the first row
	if !near(blocks[0].X, 0) || !near(blocks[0].Y, 2*100.0/30) || !near(blocks[0].W, 200) {
		t.Errorf("opening: unexpected %+v", blocks[0])
	}
	// Brass Band, 16:00 on the second row
	if !near(blocks[2].X, 400) || !near(blocks[2].Y, 32*100.0/30) {
		t.Errorf("brass band: unexpected %+v", blocks[2])
	}
}

func TestStage_PNGChrome(t *testing.T) {
	capturer := &mocks.PageCapturer{}
	stage := NewStage(&mocks.Renderer{}, capturer, logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.EncodeInput{
		Document: document(t, "sat", "c"),
		Format:   pipeline.OutputPNGChrome,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(capturer.Captures) != 1 {
		t.Fatalf("expected 1 capture, got %d", len(capturer.Captures))
	}
	call := capturer.Captures[0]
	if call.Width != 1300 || call.Height != 100 {
		t.Errorf("viewport: expected 1300x100, got %dx%d", call.Width, call.Height)
	}
	if !strings.Contains(call.Page, "<svg") {
		t.Error("expected page to embed the SVG")
	}
	if result.Width != 1300 {
		t.Errorf("width: expected 1300, got %d", result.Width)
	}
}

func TestStage_PNGChrome_NoBrowser(t *testing.T) {
	stage := NewStage(&mocks.Renderer{}, nil, logger.NewNoop())

	_, err := stage.Execute(context.Background(), pipeline.EncodeInput{
		Document: document(t, "sat", "c"),
		Format:   pipeline.OutputPNGChrome,
	})
	if err == nil {
		t.Error("expected error without capturer")
	}
}

func TestStage_CaptureError(t *testing.T) {
	capturer := &mocks.PageCapturer{}
	capturer.CapturePageFunc = func(ctx context.Context, page string, w, h int) (image.Image, error) {
		return nil, errors.New("browser crashed")
	}
	stage := NewStage(&mocks.Renderer{}, capturer, logger.NewNoop())

	_, err := stage.Execute(context.Background(), pipeline.EncodeInput{
		Document: document(t, "sat", "c"),
		Format:   pipeline.OutputPNGChrome,
	})
	if err == nil || !strings.Contains(err.Error(), "browser crashed") {
		t.Errorf("expected wrapped capture error, got %v", err)
	}
}

func TestStage_EmptyPNG(t *testing.T) {
	stage := NewStage(&mocks.Renderer{}, nil, logger.NewNoop())

	_, err := stage.Execute(context.Background(), pipeline.EncodeInput{
		Document: document(t, "fri", "c"),
		Format:   pipeline.OutputPNG,
	})
	if !errors.Is(err, schedule.ErrEmptySelection) {
		t.Errorf("expected ErrEmptySelection, got %v", err)
	}
}

func TestStage_UnsupportedFormat(t *testing.T) {
	stage := NewStage(&mocks.Renderer{}, nil, logger.NewNoop())

	_, err := stage.Execute(context.Background(), pipeline.EncodeInput{Format: "gif"})
	if err == nil {
		t.Error("expected error for unsupported format")
	}
}
