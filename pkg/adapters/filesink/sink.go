// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/blocksched/pkg/ports"
)

// Sink saves debug output to files under baseDir.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveRangesJSON saves the per day and stage ranges as JSON.
func (s *Sink) SaveRangesJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "ranges.json"), data)
}

// SaveSceneJSON saves the scene snapshot as JSON.
func (s *Sink) SaveSceneJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "scene.json"), data)
}

// SaveSceneSVG saves the scene as SVG.
func (s *Sink) SaveSceneSVG(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "scene.svg"), data)
}

// SaveRaster saves the rasterised scene as PNG.
func (s *Sink) SaveRaster(img image.Image) error {
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG)
	if err != nil {
		return fmt.Errorf("encode raster: %w", err)
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "scene.png"), data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
