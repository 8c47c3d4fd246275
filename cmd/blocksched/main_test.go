package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
)

func TestParse_Render(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("blocksched"))
	if err != nil {
		t.Fatal(err)
	}

	ctx, err := parser.Parse([]string{"--log-level", "debug", "render", "festival.json", "-f", "png", "-d", "sat", "-s", "a", "-s", "c", "--max-width", "800"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !strings.HasPrefix(ctx.Command(), "render") {
		t.Errorf("command: expected render, got %q", ctx.Command())
	}
	if cli.LogLevel != "debug" {
		t.Errorf("log level: expected debug, got %s", cli.LogLevel)
	}
	r := cli.Render
	if r.Dataset != "festival.json" || r.Format != "png" || r.Day != "sat" || r.MaxWidth != 800 {
		t.Errorf("unexpected flags: %+v", r)
	}
	if !reflect.DeepEqual(r.Stages, []string{"a", "c"}) {
		t.Errorf("stages: expected [a c], got %v", r.Stages)
	}
}

func TestParse_ICSDefaults(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.Parse([]string{"ics", "festival.json"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cli.ICS.Output != "-" {
		t.Errorf("output: expected -, got %q", cli.ICS.Output)
	}
	if cli.LogFormat != "console" {
		t.Errorf("log format: expected console, got %q", cli.LogFormat)
	}
}

func TestGlobals_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "dataset: from-config.json\nday: fri\ntimezone: UTC\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	g := &Globals{Config: path}

	cfg, err := g.load(DatasetFlags{})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Dataset != "from-config.json" || cfg.Day != "fri" {
		t.Errorf("expected config values, got dataset=%q day=%q", cfg.Dataset, cfg.Day)
	}

	cfg, err = g.load(DatasetFlags{Dataset: "flag.json", Timezone: "Asia/Tokyo"})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Dataset != "flag.json" || cfg.Timezone != "Asia/Tokyo" {
		t.Errorf("expected flag overrides, got dataset=%q timezone=%q", cfg.Dataset, cfg.Timezone)
	}

	SelectionFlags{Day: "sat", Stages: []string{"b"}}.apply(&cfg)
	if cfg.Day != "sat" || !reflect.DeepEqual(cfg.Stages, []string{"b"}) {
		t.Errorf("expected selection overrides, got day=%q stages=%v", cfg.Day, cfg.Stages)
	}
}

func TestGlobals_Load_NoDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("listen: 127.0.0.1:9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	g := &Globals{Config: path}
	if _, err := g.load(DatasetFlags{}); err == nil {
		t.Error("expected an error without a dataset")
	}
}

func TestParseNow(t *testing.T) {
	got, err := parseNow("2025-06-21 21:00", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2025, 6, 21, 21, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if _, err := parseNow("21:00", time.UTC); err == nil {
		t.Error("expected an error for a bare time")
	}
}

func TestHHMM(t *testing.T) {
	tests := []struct {
		coord float64
		want  string
	}{
		{840, "14:00"},
		{1500, "01:00"},
		{1590, "02:30"},
	}
	for _, tt := range tests {
		if got := hhmm(tt.coord); got != tt.want {
			t.Errorf("%v: expected %s, got %s", tt.coord, tt.want, got)
		}
	}
}
