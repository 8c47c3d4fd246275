package ports

import (
	"context"
	"image"
)

// PageCapturer rasterises an HTML page in a browser.
type PageCapturer interface {
	// CapturePage loads page in a width x height viewport and returns the
	// screenshot cropped to the body element.
	CapturePage(ctx context.Context, page string, width, height int) (image.Image, error)
}
