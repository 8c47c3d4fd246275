package ggrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/user/blocksched/pkg/ports"
)

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()

	canvas := r.CreateCanvas(100, 60, color.White)
	bounds := canvas.ToImage().Bounds()

	if bounds.Dx() != 100 || bounds.Dy() != 60 {
		t.Errorf("expected 100x60, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestCanvas_DrawRoundedRect(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)
	red := color.RGBA{R: 255, A: 255}

	canvas.DrawRoundedRect(10, 10, 80, 80, 4, red)

	img := canvas.ToImage()
	if got := color.RGBAModel.Convert(img.At(50, 50)).(color.RGBA); got != red {
		t.Errorf("centre: expected red, got %+v", got)
	}
	if got := color.RGBAModel.Convert(img.At(2, 2)).(color.RGBA); got.R != 255 || got.G != 255 {
		t.Errorf("outside: expected white, got %+v", got)
	}
}

func TestCanvas_DrawText(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(200, 60, color.White)

	canvas.DrawText("Brass Band\n16:00–17:30", 4, 4, 192, ports.TextStyle{
		FontSize: 14,
		Color:    color.RGBA{A: 255},
	})

	img := canvas.ToImage()
	dark := 0
	for y := 0; y < 60; y++ {
		for x := 0; x < 200; x++ {
			if c := color.GrayModel.Convert(img.At(x, y)).(color.Gray); c.Y < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("expected text pixels")
	}
}

func TestRenderer_FaceCache(t *testing.T) {
	r := New()

	a := r.face("", 10)
	b := r.face("", 10)
	if a == nil || a != b {
		t.Error("expected cached face")
	}
	if r.face("/nonexistent.ttf", 10) == nil {
		t.Error("expected fallback face for missing font")
	}
}

func TestRenderer_EncodePNG(t *testing.T) {
	r := New()
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))

	data, err := r.EncodeImage(img, ports.FormatPNG)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Bounds().Dx() != 20 {
		t.Errorf("expected width 20, got %d", decoded.Bounds().Dx())
	}
}

func TestRenderer_EncodeUnsupported(t *testing.T) {
	r := New()
	if _, err := r.EncodeImage(image.NewRGBA(image.Rect(0, 0, 1, 1)), ports.ImageFormat(99)); err == nil {
		t.Error("expected error")
	}
}

func TestRenderer_ResizeImage(t *testing.T) {
	r := New()
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))

	resized := r.ResizeImage(img, 50, 25)

	if resized.Bounds().Dx() != 50 || resized.Bounds().Dy() != 25 {
		t.Errorf("expected 50x25, got %dx%d", resized.Bounds().Dx(), resized.Bounds().Dy())
	}
}
