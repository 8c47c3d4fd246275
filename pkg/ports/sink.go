package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
// It allows saving intermediate processing results for debugging purposes.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveRangesJSON saves the per day and stage ranges as JSON.
	SaveRangesJSON(data []byte) error

	// SaveSceneJSON saves the composed scene snapshot as JSON.
	SaveSceneJSON(data []byte) error

	// SaveSceneSVG saves the composed scene as SVG.
	SaveSceneSVG(data []byte) error

	// SaveRaster saves the rasterised scene.
	SaveRaster(img image.Image) error
}
