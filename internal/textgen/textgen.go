// Package textgen produces the base caption for a post via a generative
// model. Providers share a small interface with one implementation per
// vendor; callers recover from failures with the deterministic fallback
// text.
package textgen

import (
	"context"
	"fmt"

	"github.com/kayz/muse/internal/museum"
)

// Generator writes post text for an artwork.
type Generator interface {
	// Name identifies the provider for logging.
	Name() string
	// BaseText writes the main caption, optionally looking at the image.
	BaseText(ctx context.Context, art museum.Artwork, imageURL string) (string, error)
	// DetailZoomText writes the short caption used by detail-zoom posts.
	DetailZoomText(ctx context.Context, art museum.Artwork) (string, error)
}

// Fallback is the deterministic caption used when generation fails. It
// always carries the title, artist and date so a degraded post is still
// informative.
func Fallback(art museum.Artwork) string {
	return fmt.Sprintf("%s by %s (%s). From the collection of %s.",
		art.Title, art.Artist, art.Date, art.Museum)
}

// FallbackGenerator serves deployments without an AI key. Every caption is
// the deterministic fallback string.
type FallbackGenerator struct{}

// Name returns the provider name.
func (FallbackGenerator) Name() string { return "fallback" }

// BaseText returns the deterministic caption.
func (FallbackGenerator) BaseText(_ context.Context, art museum.Artwork, _ string) (string, error) {
	return Fallback(art), nil
}

// DetailZoomText always fails, which keeps detail-zoom mode disabled when
// no model is configured.
func (FallbackGenerator) DetailZoomText(context.Context, museum.Artwork) (string, error) {
	return "", fmt.Errorf("no generative model configured")
}

func basePrompt(art museum.Artwork) string {
	return fmt.Sprintf(`You are an art historian writing a social media caption.

Artwork: %q
Artist: %s
Date: %s
Medium: %s
Museum: %s

Look at the image and write ONE vivid, accessible sentence (max 180
characters) about what makes this piece remarkable. No hashtags, no
quotation marks, no emoji.`,
		art.Title, art.Artist, art.Date, art.Medium, art.Museum)
}

func detailZoomPrompt(art museum.Artwork) string {
	return fmt.Sprintf(`Write a short, playful caption (max 150 characters) inviting viewers
to look closely at a zoomed-in detail of %q by %s. Mention that the second
image is a close-up. No hashtags.`,
		art.Title, art.Artist)
}
