// Package publisher sends finished posts to a social platform. The X client
// is the primary target; a Telegram channel publisher and a dry-run
// publisher share the same interface so the orchestrator never knows which
// one it is holding.
package publisher

import (
	"context"
	"fmt"

	"github.com/kayz/muse/internal/logger"
)

// Post is a finished, length-checked post ready for upload.
type Post struct {
	Text     string
	Images   [][]byte
	AltTexts []string // parallel to Images; missing entries are skipped
}

// Publisher uploads a post to one platform.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, post Post) error
}

// DryRun logs the intended action instead of publishing. It records the
// last post so tests and the report command can inspect it.
type DryRun struct {
	LastPost *Post
}

// Name returns the publisher name.
func (d *DryRun) Name() string { return "dry-run" }

// Publish logs the post and stores it on the struct.
func (d *DryRun) Publish(_ context.Context, post Post) error {
	logger.Info("dry run: would publish %d chars with %d image(s)", len(post.Text), len(post.Images))
	logger.Info("dry run text:\n%s", post.Text)
	for i, img := range post.Images {
		alt := ""
		if i < len(post.AltTexts) {
			alt = post.AltTexts[i]
		}
		logger.Debug("dry run image %d: %d bytes, alt %q", i+1, len(img), alt)
	}
	p := post
	d.LastPost = &p
	return nil
}

func validate(post Post) error {
	if post.Text == "" {
		return fmt.Errorf("post text is empty")
	}
	if len(post.Images) == 0 {
		return fmt.Errorf("post has no images")
	}
	if len(post.Images) > 4 {
		return fmt.Errorf("post has %d images, platform limit is 4", len(post.Images))
	}
	return nil
}
