// Package schedule holds the festival dataset, its time rules and the read-only repository over it.
package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dataset is a festival programme as loaded from disk or the network.
type Dataset struct {
	Config DisplayConfig `json:"config" yaml:"config"`
	Stages []Stage       `json:"stages" yaml:"stages"`
	Days   []Day         `json:"schedule" yaml:"schedule"`
}

// DisplayConfig holds display parameters shared by every stage row.
type DisplayConfig struct {
	BlockHeight BlockHeight `json:"blockHeight" yaml:"blockHeight"`
}

// BlockHeight pairs the coordinate height of one stage row with its pixel height.
type BlockHeight struct {
	Coords float64 `json:"coords" yaml:"coords"`
	Pixels float64 `json:"pixels" yaml:"pixels"`
}

// PixelsPerCoord is the coordinate to pixel conversion ratio.
func (b BlockHeight) PixelsPerCoord() float64 {
	if b.Coords == 0 {
		return 0
	}
	return b.Pixels / b.Coords
}

// blockHeightDoc accepts both the short and the long field names.
type blockHeightDoc struct {
	Coords         *float64 `json:"coords" yaml:"coords"`
	Pixels         *float64 `json:"pixels" yaml:"pixels"`
	CoordinateUnit *float64 `json:"coordinateUnit" yaml:"coordinateUnit"`
	PixelUnit      *float64 `json:"pixelUnit" yaml:"pixelUnit"`
}

func (d blockHeightDoc) resolve() BlockHeight {
	var b BlockHeight
	if d.Coords != nil {
		b.Coords = *d.Coords
	} else if d.CoordinateUnit != nil {
		b.Coords = *d.CoordinateUnit
	}
	if d.Pixels != nil {
		b.Pixels = *d.Pixels
	} else if d.PixelUnit != nil {
		b.Pixels = *d.PixelUnit
	}
	return b
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *BlockHeight) UnmarshalJSON(data []byte) error {
	var doc blockHeightDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*b = doc.resolve()
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *BlockHeight) UnmarshalYAML(value *yaml.Node) error {
	var doc blockHeightDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	*b = doc.resolve()
	return nil
}

// Stage is a venue running its own sequence of events.
type Stage struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Colour string `json:"colour" yaml:"colour"`
}

// Day is one festival date with its events grouped by stage id.
type Day struct {
	ID     string             `json:"id" yaml:"id"`
	Name   string             `json:"name" yaml:"name"`
	Date   string             `json:"date" yaml:"date"`
	Events map[string][]Event `json:"events" yaml:"events"`
}

// Event is a single performance. Start and End are wall-clock times of the owning day.
type Event struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
	Name  string `json:"name" yaml:"name"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Format selects a dataset decoder.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFromName picks the decoder from a file name or URL path.
// Unknown extensions decode as JSON.
func FormatFromName(name string) Format {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a dataset document.
func Decode(data []byte, format Format) (*Dataset, error) {
	var ds Dataset
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&ds); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
		}
	}
	return &ds, nil
}
