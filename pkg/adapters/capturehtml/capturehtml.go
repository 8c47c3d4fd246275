// Package capturehtml rasterises HTML pages, such as a wrapped SVG schedule,
// with a headless browser.
package capturehtml

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/chromedp/chromedp"
	"golang.org/x/image/draw"

	"github.com/user/blocksched/pkg/ports"
)

// Capturer drives headless Chrome through chromedp.
type Capturer struct {
	chromePath string
	noSandbox  bool
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithChromePath sets the browser executable. See ResolveChromePath.
func WithChromePath(path string) Option {
	return func(c *Capturer) { c.chromePath = path }
}

// WithNoSandbox disables the browser sandbox, which containers usually need.
func WithNoSandbox() Option {
	return func(c *Capturer) { c.noSandbox = true }
}

// New creates a new HTML capturer.
func New(opts ...Option) *Capturer {
	c := &Capturer{}
	for _, opt := range opts {
		opt(c)
	}
	c.chromePath = ResolveChromePath(c.chromePath)
	return c
}

var _ ports.PageCapturer = (*Capturer)(nil)

// CapturePage renders page at a width x height viewport and crops the
// screenshot to the body.
func (c *Capturer) CapturePage(ctx context.Context, page string, width, height int) (image.Image, error) {
	var body struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	var buf []byte
	err := c.run(ctx, page,
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Evaluate(`(() => { const r = document.body.getBoundingClientRect(); return {width: r.width, height: r.height}; })()`, &body),
		chromedp.FullScreenshot(&buf, 100),
	)
	if err != nil {
		return nil, err
	}

	img, err := decode(buf)
	if err != nil {
		return nil, err
	}
	return crop(img, int(body.Width), int(body.Height)), nil
}

// run loads html from a temporary file and performs actions after navigation.
func (c *Capturer) run(ctx context.Context, html string, actions ...chromedp.Action) error {
	tmp, err := os.CreateTemp("", "blocksched-*.html")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", "new"),
		chromedp.Flag("hide-scrollbars", true),
	)
	if c.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(c.chromePath))
	}
	if c.noSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	tasks := chromedp.Tasks{chromedp.Navigate("file://" + tmp.Name())}
	for _, a := range actions {
		tasks = append(tasks, a)
	}
	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}
	return nil
}

func decode(buf []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return img, nil
}

// crop returns the top-left width x height of img. Non-positive sizes return img.
func crop(img image.Image, width, height int) image.Image {
	if width <= 0 || height <= 0 {
		return img
	}
	b := img.Bounds()
	width = min(width, b.Dx())
	height = min(height, b.Dy())
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
