package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"testing"
)

func solidJPEG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestIsWallpaperAspect(t *testing.T) {
	cases := []struct {
		name string
		w, h int
		want bool
	}{
		{"ideal 9:16", 1080, 1920, true},
		{"tall high-res", 1200, 2000, true},
		{"portrait but low-res", 540, 960, false},
		{"landscape", 1920, 1080, false},
		{"square", 2000, 2000, false},
		{"too narrow", 900, 1920, false},
		{"zero", 0, 0, false},
	}
	for _, tc := range cases {
		if got := IsWallpaperAspect(tc.w, tc.h); got != tc.want {
			t.Errorf("%s: IsWallpaperAspect(%d, %d) = %v, want %v", tc.name, tc.w, tc.h, got, tc.want)
		}
	}
}

func TestDimensions(t *testing.T) {
	data := solidJPEG(t, 320, 240, color.White)
	w, h, err := Dimensions(data)
	if err != nil {
		t.Fatalf("dimensions: %v", err)
	}
	if w != 320 || h != 240 {
		t.Fatalf("got %dx%d, want 320x240", w, h)
	}
}

func TestDetailCropProducesSquare(t *testing.T) {
	p := NewPipeline(rand.New(rand.NewSource(1)))
	data := solidJPEG(t, 1000, 800, color.RGBA{200, 30, 30, 255})

	crop := p.DetailCrop(data)
	if crop == nil {
		t.Fatalf("expected a crop from a large image")
	}
	w, h, err := Dimensions(crop)
	if err != nil {
		t.Fatalf("crop dimensions: %v", err)
	}
	if w != detailCropSize || h != detailCropSize {
		t.Fatalf("crop is %dx%d, want %dx%d", w, h, detailCropSize, detailCropSize)
	}
}

func TestDetailCropRejectsTinyImage(t *testing.T) {
	p := NewPipeline(rand.New(rand.NewSource(1)))
	data := solidJPEG(t, 200, 200, color.White)
	if crop := p.DetailCrop(data); crop != nil {
		t.Fatalf("images below the minimum crop size should yield nil")
	}
}

func TestDominantColorOnSolidImage(t *testing.T) {
	data := solidJPEG(t, 64, 64, color.RGBA{250, 10, 10, 255})
	if got := DominantColor(data); got != "Red" {
		t.Fatalf("dominant color = %q, want Red", got)
	}
}

func TestNearestColorName(t *testing.T) {
	if got := NearestColorName(255, 255, 255); got != "White" {
		t.Fatalf("pure white mapped to %q", got)
	}
	if got := NearestColorName(130, 125, 130); got != "Gray" {
		t.Fatalf("mid gray mapped to %q", got)
	}
}
