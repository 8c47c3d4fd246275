// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/user/blocksched/pkg/adapters/cronticker"
	"github.com/user/blocksched/pkg/adapters/termrender"
	"github.com/user/blocksched/pkg/orchestrator"
	"github.com/user/blocksched/pkg/pipeline"
	"github.com/user/blocksched/pkg/stages/composite"
	"github.com/user/blocksched/pkg/stages/layout"
)

// Config represents the full configuration for blocksched.
type Config struct {
	// Input/Output
	Dataset  string `yaml:"dataset"`
	Output   string `yaml:"output"`
	Format   string `yaml:"format"`
	CacheDir string `yaml:"cache_dir"`

	// Selection used by render, ics and summary
	Day    string   `yaml:"day"`
	Stages []string `yaml:"stages"`

	// Interactive hosts
	StateDir      string `yaml:"state_dir"`
	Listen        string `yaml:"listen"`
	Tick          string `yaml:"tick"`
	ShrinkDelayMs int    `yaml:"shrink_delay_ms"`
	Timezone      string `yaml:"timezone"`

	// Browser raster
	ChromePath string `yaml:"chrome_path"`
	NoSandbox  bool   `yaml:"no_sandbox"`

	Theme    ThemeConfig    `yaml:"theme"`
	Terminal TerminalConfig `yaml:"terminal"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// ThemeConfig represents theming options.
type ThemeConfig struct {
	Background   string   `yaml:"background"`
	GridColour   string   `yaml:"grid_colour"`
	CursorColour string   `yaml:"cursor_colour"`
	TextColour   string   `yaml:"text_colour"`
	BlockRadius  *float64 `yaml:"block_radius"`
	FontPath     string   `yaml:"font_path"`
	FontSize     float64  `yaml:"font_size"`
}

// TerminalConfig represents the terminal grid.
type TerminalConfig struct {
	ColumnsPerHour int `yaml:"columns_per_hour"`
	NameWidth      int `yaml:"name_width"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Output:   "schedule.svg",
		Format:   string(pipeline.OutputSVG),
		CacheDir: "~/.cache/blocksched",

		StateDir:      "~/.local/state/blocksched",
		Listen:        "127.0.0.1:8080",
		Tick:          cronticker.DefaultSpec,
		ShrinkDelayMs: int(composite.ShrinkDelay / time.Millisecond),

		Theme: ThemeConfig{
			Background:   "#ffffff",
			GridColour:   "#cccccc",
			CursorColour: "#ff0066",
			TextColour:   "#111111",
			FontSize:     6,
		},
		Terminal: TerminalConfig{
			ColumnsPerHour: 4,
			NameWidth:      12,
		},

		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	path, err := homedir.Expand(path)
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	switch pipeline.OutputFormat(c.Format) {
	case pipeline.OutputSVG, pipeline.OutputPNG, pipeline.OutputPNGChrome, "":
	default:
		return fmt.Errorf("format: unsupported %q", c.Format)
	}
	if c.Tick != "" {
		if err := cronticker.Validate(c.Tick); err != nil {
			return fmt.Errorf("tick: %w", err)
		}
	}
	if c.ShrinkDelayMs < 0 {
		return fmt.Errorf("shrink_delay_ms: must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	for name, hex := range map[string]string{
		"background":    c.Theme.Background,
		"grid_colour":   c.Theme.GridColour,
		"cursor_colour": c.Theme.CursorColour,
		"text_colour":   c.Theme.TextColour,
	} {
		if hex == "" {
			continue
		}
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("theme.%s: %w", name, err)
		}
	}
	return nil
}

// ParseColor parses a hex color string. Invalid input yields opaque black.
func ParseColor(hex string) color.RGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Location returns the zone dataset dates are read in.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// ShrinkDelay returns the deferred shrink delay.
func (c Config) ShrinkDelay() time.Duration {
	return time.Duration(c.ShrinkDelayMs) * time.Millisecond
}

// Expand resolves a leading ~ in path.
func Expand(path string) string {
	if expanded, err := homedir.Expand(path); err == nil {
		return expanded
	}
	return path
}

// LayoutTheme converts the theme section to a layout theme.
func (c Config) LayoutTheme() layout.Theme {
	theme := layout.DefaultTheme()
	if c.Theme.GridColour != "" {
		theme.GridColour = ParseColor(c.Theme.GridColour)
	}
	if c.Theme.CursorColour != "" {
		theme.CursorColour = ParseColor(c.Theme.CursorColour)
	}
	if c.Theme.TextColour != "" {
		theme.DarkText = ParseColor(c.Theme.TextColour)
	}
	if c.Theme.FontSize > 0 {
		theme.FontSize = c.Theme.FontSize
	}
	theme.FontPath = Expand(c.Theme.FontPath)
	return theme
}

// Style is the ports.StyleProvider backed by theme.block_radius.
type Style struct {
	radius *float64
}

// BlockRadius returns the configured radius, if any.
func (s Style) BlockRadius() (float64, bool) {
	if s.radius == nil {
		return 0, false
	}
	return *s.radius, true
}

// Style returns the host style read by the layout engine.
func (c Config) Style() Style {
	return Style{radius: c.Theme.BlockRadius}
}

// TerminalOptions converts the terminal section.
func (c Config) TerminalOptions() termrender.Options {
	opts := termrender.DefaultOptions()
	if c.Terminal.ColumnsPerHour > 0 {
		opts.ColumnsPerHour = c.Terminal.ColumnsPerHour
	}
	if c.Terminal.NameWidth > 0 {
		opts.NameWidth = c.Terminal.NameWidth
	}
	return opts
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() (orchestrator.Config, error) {
	loc, err := c.Location()
	if err != nil {
		return orchestrator.Config{}, err
	}
	oc := orchestrator.DefaultConfig()
	oc.OutputPath = Expand(c.Output)
	oc.Format = pipeline.OutputFormat(c.Format)
	oc.DayID = c.Day
	oc.StageIDs = c.Stages
	oc.Location = loc
	if c.Theme.Background != "" {
		oc.Background = ParseColor(c.Theme.Background)
	}
	return oc, nil
}
