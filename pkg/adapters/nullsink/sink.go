// Package nullsink is the debug sink used when --debug is off.
package nullsink

import (
	"image"

	"github.com/user/blocksched/pkg/ports"
)

type Sink struct{}

func New() *Sink { return &Sink{} }

// Enabled reports false so the orchestrator skips building debug payloads.
func (*Sink) Enabled() bool { return false }

func (*Sink) SaveRangesJSON([]byte) error  { return nil }
func (*Sink) SaveSceneJSON([]byte) error   { return nil }
func (*Sink) SaveSceneSVG([]byte) error    { return nil }
func (*Sink) SaveRaster(image.Image) error { return nil }

var _ ports.DebugSink = (*Sink)(nil)
