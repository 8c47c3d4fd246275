package mocks

import (
	"context"
	"image"

	"github.com/user/blocksched/pkg/ports"
)

// PageCapture records one CapturePage call.
type PageCapture struct {
	Page   string
	Width  int
	Height int
}

// PageCapturer returns a blank image of the viewport size unless CapturePageFunc is set.
type PageCapturer struct {
	CapturePageFunc func(ctx context.Context, page string, width, height int) (image.Image, error)

	Captures []PageCapture
}

func (m *PageCapturer) CapturePage(ctx context.Context, page string, width, height int) (image.Image, error) {
	m.Captures = append(m.Captures, PageCapture{Page: page, Width: width, Height: height})
	if m.CapturePageFunc != nil {
		return m.CapturePageFunc(ctx, page, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}

var _ ports.PageCapturer = (*PageCapturer)(nil)
