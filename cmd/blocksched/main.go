// Package main provides the CLI entry point for blocksched.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/blocksched/pkg/adapters/capturehtml"
	"github.com/user/blocksched/pkg/adapters/datasource"
	"github.com/user/blocksched/pkg/adapters/filesink"
	"github.com/user/blocksched/pkg/adapters/ggrenderer"
	"github.com/user/blocksched/pkg/adapters/logger"
	"github.com/user/blocksched/pkg/adapters/nullsink"
	"github.com/user/blocksched/pkg/adapters/systemclock"
	"github.com/user/blocksched/pkg/config"
	"github.com/user/blocksched/pkg/ports"
	"github.com/user/blocksched/pkg/stages/encode"
)

// Globals are the flags shared by every subcommand.
type Globals struct {
	Config    string `short:"C" type:"path" help:"YAML configuration file (default: ~/.config/blocksched/config.yaml if present)."`
	LogLevel  string `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)."`
	LogFormat string `default:"console" enum:"console,json" help:"Log format (console or json)."`
	Quiet     bool   `short:"Q" help:"Suppress all log output."`
}

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Globals

	Render  RenderCmd  `cmd:"" help:"Render one day of the schedule as SVG or PNG."`
	Serve   ServeCmd   `cmd:"" help:"Serve the interactive schedule over HTTP."`
	TUI     TUICmd     `cmd:"" name:"tui" help:"Browse the schedule in the terminal."`
	ICS     ICSCmd     `cmd:"" name:"ics" help:"Export events as an iCalendar file."`
	Summary SummaryCmd `cmd:"" help:"Write a Markdown programme for one day."`
	List    ListCmd    `cmd:"" help:"List the days and stages of a dataset."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// DatasetFlags select the dataset and override its location in the config.
type DatasetFlags struct {
	Dataset  string `arg:"" optional:"" help:"Dataset file or http(s) URL (JSON or YAML)."`
	Timezone string `help:"Time zone dataset dates are read in (default: local)."`
	CacheDir string `help:"Directory for cached remote datasets."`
}

// SelectionFlags select a day and stages.
type SelectionFlags struct {
	Day    string   `short:"d" help:"Day id (default: first day)."`
	Stages []string `short:"s" name:"stage" help:"Stage id to show. Repeat for several (default: all)."`
}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("blocksched"),
		kong.Description(l10n.T("Draw festival block schedules")),
		kong.UsageOnError(),
	)

	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// load reads the config file and applies the dataset flags over it.
func (g *Globals) load(df DatasetFlags) (config.Config, error) {
	path := g.Config
	if path == "" {
		candidate := config.Expand("~/.config/blocksched/config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}

	cfg := config.Defaults()
	if path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if df.Dataset != "" {
		cfg.Dataset = df.Dataset
	}
	if df.Timezone != "" {
		cfg.Timezone = df.Timezone
	}
	if df.CacheDir != "" {
		cfg.CacheDir = df.CacheDir
	}
	if cfg.Dataset == "" {
		return cfg, errors.New(l10n.T("No dataset given. Pass a file or URL, or set dataset in the config file."))
	}
	return cfg, cfg.Validate()
}

func (sf SelectionFlags) apply(cfg *config.Config) {
	if sf.Day != "" {
		cfg.Day = sf.Day
	}
	if len(sf.Stages) > 0 {
		cfg.Stages = sf.Stages
	}
}

// newLogger creates the logger selected by the global flags.
// The returned func flushes buffered output.
func (g *Globals) newLogger() (ports.Logger, func()) {
	if g.Quiet {
		return logger.NewNoop(), func() {}
	}
	level := ports.ParseLogLevel(g.LogLevel)
	if g.LogFormat == "json" {
		zl, err := logger.NewZap(level)
		if err == nil {
			return zl, func() { _ = zl.Sync() }
		}
		fmt.Fprintln(os.Stderr, err)
	}
	return logger.NewConsole(level), func() {}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func newSource(cfg config.Config, fs ports.FileSystem, log ports.Logger) ports.DatasetSource {
	return datasource.New(config.Expand(cfg.Dataset), fs, config.Expand(cfg.CacheDir), log)
}

func newClock(cfg config.Config) (*systemclock.Clock, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return systemclock.New(loc), nil
}

// newEncodeStage wires the rasterizer and, for png-chrome, headless Chrome.
func newEncodeStage(cfg config.Config, log ports.Logger) *encode.Stage {
	var opts []capturehtml.Option
	if cfg.ChromePath != "" {
		opts = append(opts, capturehtml.WithChromePath(config.Expand(cfg.ChromePath)))
	}
	if cfg.NoSandbox {
		opts = append(opts, capturehtml.WithNoSandbox())
	}
	return encode.NewStage(ggrenderer.New(), capturehtml.New(opts...), log)
}

func newDebugSink(cfg config.Config, fs ports.FileSystem) (ports.DebugSink, error) {
	if !cfg.Debug {
		return nullsink.New(), nil
	}
	dir := config.Expand(cfg.DebugDir)
	if err := fs.MkdirAll(dir); err != nil {
		return nil, fmt.Errorf("create debug directory: %w", err)
	}
	return filesink.New(dir, fs, ggrenderer.New()), nil
}

// parseNow reads --now as "YYYY-MM-DD HH:MM" in loc.
func parseNow(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("--now: expected \"YYYY-MM-DD HH:MM\": %w", err)
	}
	return t, nil
}

// VersionCmd shows version information.
type VersionCmd struct{}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("blocksched version %s", version))
	return nil
}
