// Package imaging downloads and post-processes artwork images for posting:
// resize to platform-friendly dimensions, detail crops for zoom posts, and
// simple dominant-color extraction for analytics.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"golang.org/x/image/draw"

	"github.com/kayz/muse/internal/logger"
)

const (
	maxPostWidth   = 1200
	jpegQuality    = 85
	detailCropSize = 600
)

// Pipeline downloads and transforms artwork images.
type Pipeline struct {
	http *http.Client
	rand *rand.Rand
}

// NewPipeline creates an image pipeline. rng may be nil.
func NewPipeline(rng *rand.Rand) *Pipeline {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Pipeline{
		http: &http.Client{Timeout: 30 * time.Second},
		rand: rng,
	}
}

// Download fetches the raw image bytes.
func (p *Pipeline) Download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download failed: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Enhance downloads the image, scales it down to a maximum width of 1200px
// and re-encodes it as a progressive-quality JPEG. On processing failure the
// original bytes are returned untouched.
func (p *Pipeline) Enhance(ctx context.Context, imageURL string) ([]byte, error) {
	raw, err := p.Download(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		logger.Warn("image decode failed, posting original bytes: %v", err)
		return raw, nil
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxPostWidth {
		scaled := scaleTo(src, maxPostWidth, h*maxPostWidth/w)
		src = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: jpegQuality}); err != nil {
		logger.Warn("jpeg encode failed, posting original bytes: %v", err)
		return raw, nil
	}
	logger.Debug("image enhanced: %dx%d -> %d bytes", w, h, buf.Len())
	return buf.Bytes(), nil
}

// Dimensions decodes only the image header.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// IsWallpaperAspect reports whether the image suits a phone lock screen:
// portrait ratio in [0.5, 0.65] at no less than 1080x1920.
func IsWallpaperAspect(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	ratio := float64(width) / float64(height)
	return ratio >= 0.5 && ratio <= 0.65 && width >= 1080 && height >= 1920
}

// DetailCrop extracts a random square region (40% of the smaller dimension,
// at least 300px) and normalizes it to 600x600. Returns nil when the source
// is too small or cannot be decoded.
func (p *Pipeline) DetailCrop(data []byte) []byte {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Debug("detail crop decode failed: %v", err)
		return nil
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	minDim := w
	if h < minDim {
		minDim = h
	}
	cropSize := int(math.Max(300, float64(minDim)*0.4))
	if cropSize > minDim {
		return nil
	}

	maxLeft := w - cropSize
	maxTop := h - cropSize
	left, top := 0, 0
	if maxLeft > 0 {
		left = p.rand.Intn(maxLeft)
	}
	if maxTop > 0 {
		top = p.rand.Intn(maxTop)
	}

	region := image.Rect(bounds.Min.X+left, bounds.Min.Y+top,
		bounds.Min.X+left+cropSize, bounds.Min.Y+top+cropSize)

	crop := image.NewRGBA(image.Rect(0, 0, detailCropSize, detailCropSize))
	draw.CatmullRom.Scale(crop, crop.Bounds(), src, region, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, crop, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil
	}
	return buf.Bytes()
}

func scaleTo(src image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
