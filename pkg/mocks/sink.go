package mocks

import (
	"image"
	"sync"

	"github.com/user/blocksched/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	RangesJSON []byte
	SceneJSON  []byte
	SceneSVG   []byte
	Raster     image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{enabled: enabled}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveRangesJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RangesJSON = data
	return nil
}

func (m *DebugSink) SaveSceneJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SceneJSON = data
	return nil
}

func (m *DebugSink) SaveSceneSVG(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SceneSVG = data
	return nil
}

func (m *DebugSink) SaveRaster(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Raster = img
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)
