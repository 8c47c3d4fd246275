package capturehtml

import (
	"context"
	"image"
	"image/color"
	"os"
	"runtime"
	"testing"
	"time"
)

func TestResolveChromePath_ExplicitPath(t *testing.T) {
	if got := ResolveChromePath("/custom/path/to/chrome"); got != "/custom/path/to/chrome" {
		t.Errorf("expected explicit path to be returned, got %s", got)
	}
}

func TestResolveChromePath_EnvVar(t *testing.T) {
	t.Setenv("CHROME_PATH", "/env/chrome")

	if got := ResolveChromePath(""); got != "/env/chrome" {
		t.Errorf("expected CHROME_PATH to be used, got %s", got)
	}
	if got := ResolveChromePath("/explicit/chrome"); got != "/explicit/chrome" {
		t.Errorf("expected explicit path to take precedence, got %s", got)
	}
}

func TestResolveExecutable(t *testing.T) {
	if got := resolveExecutable("definitely-not-a-real-command-xyz123"); got != "" {
		t.Errorf("expected empty, got %s", got)
	}
	if got := resolveExecutable("/definitely/not/a/real/path/chrome"); got != "" {
		t.Errorf("expected empty for missing path, got %s", got)
	}
	if runtime.GOOS != "windows" {
		if got := resolveExecutable("/bin/sh"); got != "/bin/sh" {
			t.Errorf("expected /bin/sh, got %s", got)
		}
	}
}

func TestCrop(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	src.Set(10, 10, color.RGBA{R: 255, A: 255})

	got := crop(src, 40, 80)
	if got.Bounds().Dx() != 40 || got.Bounds().Dy() != 50 {
		t.Errorf("expected 40x50, got %dx%d", got.Bounds().Dx(), got.Bounds().Dy())
	}
	if r, _, _, _ := got.At(10, 10).RGBA(); r == 0 {
		t.Error("expected pixel to be copied")
	}

	if crop(src, 0, 0) != image.Image(src) {
		t.Error("expected original image for zero size")
	}
}

func TestCapturer_CapturePage(t *testing.T) {
	if os.Getenv("BLOCKSCHED_BROWSER_TESTS") == "" {
		t.Skip("set BLOCKSCHED_BROWSER_TESTS to run headless browser tests")
	}
	c := New(WithNoSandbox())
	if c.chromePath == "" {
		t.Skip("Chrome not installed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	html := `<html><body style="margin:0;width:120px;height:40px;background:#e41a1c"></body></html>`
	img, err := c.CapturePage(ctx, html, 200, 100)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 40 {
		t.Errorf("expected 120x40, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}
