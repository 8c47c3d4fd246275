package schedule

import (
	"errors"
	"testing"
)

const jsonDataset = `{
  "config": {"blockHeight": {"coords": 30, "pixels": 100}},
  "stages": [{"id": "hotot", "name": "Hotot", "colour": "#e41a1c"}],
  "schedule": [{
    "id": "fri", "name": "Friday", "date": "2025-06-20",
    "events": {"hotot": [{"start": "20:00", "end": "21:00", "name": "Band", "url": null}]}
  }]
}`

const yamlDataset = `
config:
  blockHeight:
    coordinateUnit: 20
    pixelUnit: 80
stages:
  - id: hotot
    name: Hotot
    colour: "#e41a1c"
schedule:
  - id: fri
    name: Friday
    date: "2025-06-20"
    events:
      hotot:
        - start: "20:00"
          end: "21:00"
          name: Band
          url: https://example.com
`

func TestDecode_JSON(t *testing.T) {
	ds, err := Decode([]byte(jsonDataset), FormatJSON)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if ds.Config.BlockHeight != (BlockHeight{Coords: 30, Pixels: 100}) {
		t.Errorf("blockHeight: expected 30x100, got %+v", ds.Config.BlockHeight)
	}
	if len(ds.Days) != 1 || ds.Days[0].ID != "fri" {
		t.Fatalf("days: expected [fri], got %+v", ds.Days)
	}
	ev := ds.Days[0].Events["hotot"][0]
	if ev.URL != "" {
		t.Errorf("url: expected empty for null, got %q", ev.URL)
	}
}

func TestDecode_YAML(t *testing.T) {
	ds, err := Decode([]byte(yamlDataset), FormatYAML)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if ds.Config.BlockHeight != (BlockHeight{Coords: 20, Pixels: 80}) {
		t.Errorf("blockHeight: expected 20x80 from long names, got %+v", ds.Config.BlockHeight)
	}
	if got := ds.Config.BlockHeight.PixelsPerCoord(); got != 4 {
		t.Errorf("PixelsPerCoord: expected 4, got %v", got)
	}
	if ds.Days[0].Events["hotot"][0].URL != "https://example.com" {
		t.Errorf("url: expected https://example.com, got %q", ds.Days[0].Events["hotot"][0].URL)
	}
}

func TestDecode_Malformed(t *testing.T) {
	if _, err := Decode([]byte(`{"schedule": [`), FormatJSON); !errors.Is(err, ErrMalformedDataset) {
		t.Errorf("expected ErrMalformedDataset, got %v", err)
	}
}

func TestFormatFromName(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"schedule.json", FormatJSON},
		{"schedule.yaml", FormatYAML},
		{"SCHEDULE.YML", FormatYAML},
		{"https://example.com/dtrh2025.yml?rev=3", FormatYAML},
		{"https://example.com/schedule", FormatJSON},
	}
	for _, tt := range tests {
		if got := FormatFromName(tt.name); got != tt.want {
			t.Errorf("FormatFromName(%q): expected %v, got %v", tt.name, tt.want, got)
		}
	}
}
