// Package orchestrator coordinates the headless render pipeline.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"image/png"
	"time"

	"github.com/user/blocksched/pkg/pipeline"
	"github.com/user/blocksched/pkg/ports"
	"github.com/user/blocksched/pkg/schedule"
)

// Config contains all configuration for one render.
type Config struct {
	// Output
	OutputPath string
	Format     pipeline.OutputFormat

	// Selection. An empty DayID selects the first day; nil StageIDs selects every stage.
	DayID    string
	StageIDs []string

	// Now positions the cursor lines. The zero time leaves them at the day start.
	Now time.Time

	// Style
	Background color.RGBA

	// MaxWidth limits the width of raster output. Zero keeps full size.
	MaxWidth int

	// Location interprets dataset dates. Nil means time.Local.
	Location *time.Location
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		OutputPath: "schedule.svg",
		Format:     pipeline.OutputSVG,
		Background: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	layoutStage    pipeline.Stage[pipeline.LayoutInput, pipeline.LayoutResult]
	compositeStage pipeline.Stage[pipeline.CompositeInput, pipeline.CompositeResult]
	encodeStage    pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	surface        ports.Surface
	fs             ports.FileSystem
	sink           ports.DebugSink
	logger         ports.Logger
}

// New creates a new Orchestrator drawing on surface.
func New(
	layoutStage pipeline.Stage[pipeline.LayoutInput, pipeline.LayoutResult],
	compositeStage pipeline.Stage[pipeline.CompositeInput, pipeline.CompositeResult],
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult],
	surface ports.Surface,
	fs ports.FileSystem,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		layoutStage:    layoutStage,
		compositeStage: compositeStage,
		encodeStage:    encodeStage,
		surface:        surface,
		fs:             fs,
		sink:           sink,
		logger:         logger,
	}
}

// Load fetches, decodes and indexes a dataset.
func Load(ctx context.Context, source ports.DatasetSource, loc *time.Location, logger ports.Logger) (*schedule.Repository, error) {
	logger.Info("Loading dataset from %s", source.Name())

	data, err := source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	ds, err := schedule.Decode(data, schedule.FormatFromName(source.Name()))
	if err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	var opts []schedule.Option
	if loc != nil {
		opts = append(opts, schedule.WithLocation(loc))
	}
	repo, err := schedule.NewRepository(ds, opts...)
	if err != nil {
		return nil, fmt.Errorf("index dataset: %w", err)
	}

	logger.Info("Loaded %d days and %d stages", len(repo.DayIDs()), len(repo.StageIDs()))
	return repo, nil
}

// Run executes the complete pipeline.
func (o *Orchestrator) Run(ctx context.Context, source ports.DatasetSource, config Config) (RunResult, error) {
	// 1. Load dataset
	repo, err := Load(ctx, source, config.Location, o.logger)
	if err != nil {
		o.logger.Error("Failed to load dataset: %s", err)
		return RunResult{}, fmt.Errorf("load: %w", err)
	}

	dayID, stageIDs, err := resolveSelection(repo, config)
	if err != nil {
		o.logger.Error("Invalid selection: %s", err)
		return RunResult{}, err
	}

	if o.sink.Enabled() {
		if data, err := json.MarshalIndent(rangesOf(repo), "", "  "); err == nil {
			o.sink.SaveRangesJSON(data)
		}
	}

	// 2. Layout every stage on every day
	o.logger.Info("Building layouts")
	layout, err := o.layoutStage.Execute(ctx, pipeline.LayoutInput{Repository: repo, Surface: o.surface})
	if err != nil {
		o.logger.Error("Failed to build layouts: %s", err)
		return RunResult{}, fmt.Errorf("layout stage: %w", err)
	}
	o.logger.Info("Built %d stage layouts", len(layout.Layouts))

	// 3. Arrange the selection
	composite, err := o.compositeStage.Execute(ctx, pipeline.CompositeInput{
		Repository: repo,
		Layouts:    layout.Layouts,
		Surface:    o.surface,
		DayID:      dayID,
		StageIDs:   stageIDs,
		Now:        config.Now,
	})
	if err != nil {
		o.logger.Error("Failed to compose schedule: %s", err)
		return RunResult{}, fmt.Errorf("composite stage: %w", err)
	}

	if o.sink.Enabled() {
		o.saveDebug(ctx, composite, config)
	}

	// 4. Encode
	o.logger.Info("Rendering %s for %s", formatName(config.Format), dayID)
	encoded, err := o.encodeStage.Execute(ctx, pipeline.EncodeInput{
		Document:   composite.Document,
		Format:     config.Format,
		Background: config.Background,
		MaxWidth:   config.MaxWidth,
	})
	if err != nil {
		o.logger.Error("Failed to encode schedule: %s", err)
		return RunResult{}, fmt.Errorf("encode stage: %w", err)
	}

	// 5. Write output file
	if err := o.fs.WriteFile(config.OutputPath, encoded.Data); err != nil {
		o.logger.Error("Failed to write output: %s", err)
		return RunResult{}, fmt.Errorf("write output: %w", err)
	}
	o.logger.Info("Output saved to %s", config.OutputPath)
	o.logger.Info("Pipeline completed successfully")

	return RunResult{
		Dataset:     source.Name(),
		Days:        len(repo.DayIDs()),
		Stages:      len(repo.StageIDs()),
		Arrangement: composite.Arrangement,
		Format:      config.Format,
		ContentType: encoded.ContentType,
		Bytes:       len(encoded.Data),
		Width:       encoded.Width,
		Height:      encoded.Height,
	}, nil
}

// resolveSelection applies defaults and rejects ids unknown to the dataset.
func resolveSelection(repo *schedule.Repository, config Config) (string, []string, error) {
	dayID := config.DayID
	if dayID == "" {
		dayID = repo.DayIDs()[0]
	}
	if !repo.HasDay(dayID) {
		return "", nil, &schedule.LookupError{Kind: "day", ID: dayID}
	}

	stageIDs := config.StageIDs
	if stageIDs == nil {
		stageIDs = repo.StageIDs()
	}
	for _, id := range stageIDs {
		if !repo.KnowsStage(id) {
			return "", nil, &schedule.LookupError{Kind: "stage", ID: id}
		}
	}
	return dayID, stageIDs, nil
}

// saveDebug writes the scene snapshot, its SVG and, for PNG output, the raster.
func (o *Orchestrator) saveDebug(ctx context.Context, composite pipeline.CompositeResult, config Config) {
	if data, err := json.MarshalIndent(composite.Document, "", "  "); err == nil {
		o.sink.SaveSceneJSON(data)
	}
	if svg, err := o.encodeStage.Execute(ctx, pipeline.EncodeInput{
		Document:   composite.Document,
		Format:     pipeline.OutputSVG,
		Background: config.Background,
	}); err == nil {
		o.sink.SaveSceneSVG(svg.Data)
	}
	if config.Format != pipeline.OutputPNG || composite.Document.Empty() {
		return
	}
	raster, err := o.encodeStage.Execute(ctx, pipeline.EncodeInput{
		Document:   composite.Document,
		Format:     pipeline.OutputPNG,
		Background: config.Background,
	})
	if err != nil {
		return
	}
	if img, err := png.Decode(bytes.NewReader(raster.Data)); err == nil {
		o.sink.SaveRaster(img)
	}
}

type stageRange struct {
	DayID   string         `json:"dayId"`
	StageID string         `json:"stageId"`
	Range   schedule.Range `json:"range"`
}

func rangesOf(repo *schedule.Repository) []stageRange {
	var out []stageRange
	for _, dayID := range repo.DayIDs() {
		stageIDs, _ := repo.DayStageIDs(dayID)
		for _, stageID := range stageIDs {
			if rng, err := repo.RangeForStage(dayID, stageID); err == nil {
				out = append(out, stageRange{DayID: dayID, StageID: stageID, Range: rng})
			}
		}
	}
	return out
}

func formatName(f pipeline.OutputFormat) string {
	if f == "" {
		return string(pipeline.OutputSVG)
	}
	return string(f)
}

// RunResult contains the results of a pipeline run.
type RunResult struct {
	// Dataset information
	Dataset string
	Days    int
	Stages  int

	// Arrangement of the rendered selection
	Arrangement pipeline.Arrangement

	// Output information
	Format      pipeline.OutputFormat
	ContentType string
	Bytes       int
	Width       int
	Height      int
}
