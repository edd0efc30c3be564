// Package bot wires the posting pipeline together: schedule gate, artwork
// fetch, image processing, caption generation, composition, safety filter,
// publication, and analytics. All collaborators enter through interfaces so
// the state machine is testable without the network.
package bot

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kayz/muse/internal/features"
	"github.com/kayz/muse/internal/gate"
	"github.com/kayz/muse/internal/imaging"
	"github.com/kayz/muse/internal/logger"
	"github.com/kayz/muse/internal/museum"
	"github.com/kayz/muse/internal/publisher"
	"github.com/kayz/muse/internal/safety"
	"github.com/kayz/muse/internal/store"
	"github.com/kayz/muse/internal/textgen"
)

// ArtSource provides artworks from museum open-data APIs.
type ArtSource interface {
	FetchArtwork(ctx context.Context) (*museum.Artwork, error)
	FetchQuartet(ctx context.Context) ([]museum.Artwork, error)
	SearchByArtist(ctx context.Context, artistName string) (*museum.Artwork, error)
}

// ImagePipeline downloads and processes artwork images.
type ImagePipeline interface {
	Enhance(ctx context.Context, imageURL string) ([]byte, error)
	DetailCrop(data []byte) []byte
}

// Store persists scheduler state and posting analytics.
type Store interface {
	GetLastRun() (*time.Time, error)
	SetLastRun(t time.Time) error
	MonthlyCount(now time.Time) (int, error)
	RecordPost(rec store.PostRecord) error
}

// Bot runs one posting cycle per Run call.
type Bot struct {
	Art       ArtSource
	Images    ImagePipeline
	Text      textgen.Generator
	Publisher publisher.Publisher
	Store     Store
	Catalog   *features.Catalog

	DryRun       bool
	MonthlyLimit int
	BackupDir    string

	rand *rand.Rand
	now  func() time.Time
}

// Option mutates a Bot during construction.
type Option func(*Bot)

// WithRand injects the random source, for reproducible runs.
func WithRand(rng *rand.Rand) Option { return func(b *Bot) { b.rand = rng } }

// WithClock injects the clock.
func WithClock(now func() time.Time) Option { return func(b *Bot) { b.now = now } }

// New creates a Bot with production defaults for the clock and randomness.
func New(art ArtSource, images ImagePipeline, text textgen.Generator,
	pub publisher.Publisher, st Store, catalog *features.Catalog, opts ...Option) *Bot {
	b := &Bot{
		Art:          art,
		Images:       images,
		Text:         text,
		Publisher:    pub,
		Store:        st,
		Catalog:      catalog,
		MonthlyLimit: gate.DefaultMonthlyLimit,
		rand:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

const specialModeChance = 0.2

// wallpaperCTAs rotate on phone-wallpaper-shaped artworks.
var wallpaperCTAs = []string{
	"This one's shaped for your phone. Save it as a wallpaper!",
	"Tall enough for your lock screen. You're welcome.",
	"Museum-grade wallpaper, free of charge.",
	"Your phone background called. It wants an upgrade.",
	"Perfect portrait proportions. Wallpaper material.",
}

// Run executes one full posting cycle. A gated skip returns nil; a real
// failure returns an error and leaves the last-run timestamp untouched, so
// the next scheduler tick retries.
func (b *Bot) Run(ctx context.Context) error {
	now := b.now()

	lastRun, err := b.Store.GetLastRun()
	if err != nil {
		return fmt.Errorf("failed to read last run: %w", err)
	}
	if dec := gate.CheckSchedule(now, lastRun, b.DryRun); !dec.Allowed {
		logger.Info("skipping run: %s", dec.Reason)
		return nil
	} else {
		logger.Debug("schedule gate passed: %s", dec.Reason)
	}

	count, err := b.Store.MonthlyCount(now)
	if err != nil {
		return fmt.Errorf("failed to count monthly posts: %w", err)
	}
	if q := gate.CheckQuota(count, b.MonthlyLimit); !q.Allowed {
		logger.Warn("monthly quota reached (%d/%d), skipping", q.Count, q.Limit)
		return nil
	}

	art, err := b.pickArtwork(ctx, now)
	if err != nil {
		return err
	}
	logger.Info("selected %q by %s (%s)", art.Title, art.Artist, art.Museum)

	image, err := b.Images.Enhance(ctx, art.ImageURL)
	if err != nil {
		return fmt.Errorf("failed to prepare image: %w", err)
	}

	width, height, dimErr := imaging.Dimensions(image)
	dominant := imaging.DominantColor(image)

	baseText, err := b.Text.BaseText(ctx, *art, art.ImageURL)
	if err != nil || baseText == "" {
		logger.Warn("caption generation failed (%v), using fallback", err)
		baseText = textgen.Fallback(*art)
	}

	movement := ""
	if md := b.Catalog.MovementForDay(int(now.Weekday())); md != nil {
		movement = md.Theme
	}

	composer := features.NewComposer(b.Catalog, b.rand, b.now)
	result := composer.Compose(baseText, *art, movement)
	finalText := result.FinalText
	images := [][]byte{image}
	altTexts := []string{altText(*art)}

	// Mode selection: wallpaper callout wins; the special modes only fire
	// on plain posts where no fragment landed. A detail-zoom roll that
	// fails to produce a zoom does not consume the turn: the quartet roll
	// still happens afterwards.
	if dimErr == nil && imaging.IsWallpaperAspect(width, height) {
		cta := "\n\n📱 " + wallpaperCTAs[b.rand.Intn(len(wallpaperCTAs))]
		if withCTA := finalText + cta; charLen(withCTA) <= features.HardLimit {
			finalText = withCTA
			logger.Info("wallpaper aspect detected, call-to-action appended")
		}
	} else if len(result.Used) == 0 {
		zoomed := false
		if b.rand.Float64() < specialModeChance {
			if text, crop := b.tryDetailZoom(ctx, *art, image); crop != nil {
				finalText = text
				images = append(images, crop)
				altTexts = append(altTexts, "Detail view of "+art.Title)
				zoomed = true
				logger.Info("detail zoom mode selected")
			}
		}
		if !zoomed && b.rand.Float64() < specialModeChance {
			posted, err := b.tryQuartet(ctx, now)
			if err != nil {
				return err
			}
			if posted {
				return nil
			}
			// quartet fell through, continue with the single post
		}
	}

	if err := safety.Validate(finalText); err != nil {
		return fmt.Errorf("post text rejected: %w", err)
	}

	post := publisher.Post{Text: finalText, Images: images, AltTexts: altTexts}
	if err := b.Publisher.Publish(ctx, post); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	if b.DryRun {
		logger.Info("dry run complete, no state recorded")
		return nil
	}

	rec := store.PostRecord{
		Artist:        art.Artist,
		Title:         art.Title,
		Museum:        art.Museum,
		TweetLength:   charLen(finalText),
		HasBirthday:   result.Has(features.KindBirthday),
		HasGlossary:   result.Has(features.KindGlossary),
		MovementTheme: movement,
		DominantColor: dominant,
		PostedAt:      now,
	}
	if dimErr == nil {
		rec.ImageSize = fmt.Sprintf("%dx%d", width, height)
	}
	if err := b.Store.RecordPost(rec); err != nil {
		logger.Error("failed to record post: %v", err)
	}
	if err := store.Backup(b.BackupDir, rec, finalText, image); err != nil {
		logger.Error("backup failed: %v", err)
	}
	if err := b.Store.SetLastRun(now); err != nil {
		return fmt.Errorf("failed to advance last run: %w", err)
	}
	logger.Info("posted %d chars, features: %v", rec.TweetLength, result.Used)
	return nil
}

// pickArtwork prefers a work by today's birthday artist; otherwise a random
// public-domain piece.
func (b *Bot) pickArtwork(ctx context.Context, now time.Time) (*museum.Artwork, error) {
	if artist := b.Catalog.TodaysBirthdayArtist(features.Context{Now: now}); artist != nil {
		art, err := b.Art.SearchByArtist(ctx, artist.Name)
		if err == nil && art != nil {
			logger.Info("birthday pick: %s", artist.Name)
			return art, nil
		}
		logger.Debug("no artwork found for birthday artist %s, falling back", artist.Name)
	}

	art, err := b.Art.FetchArtwork(ctx)
	if err != nil {
		return nil, fmt.Errorf("artwork fetch failed: %w", err)
	}
	if art == nil {
		return nil, fmt.Errorf("no suitable artwork found")
	}
	return art, nil
}

// tryDetailZoom builds the crop and its caption. Either both succeed or the
// post stays in normal mode.
func (b *Bot) tryDetailZoom(ctx context.Context, art museum.Artwork, image []byte) (string, []byte) {
	crop := b.Images.DetailCrop(image)
	if crop == nil {
		return "", nil
	}
	text, err := b.Text.DetailZoomText(ctx, art)
	if err != nil || text == "" {
		logger.Debug("detail zoom caption failed (%v), staying in normal mode", err)
		return "", nil
	}
	zoomed := fmt.Sprintf("🔍 %s\n\n%s by %s", text, art.Title, art.Artist)
	if charLen(zoomed) > features.HardLimit {
		zoomed = features.Assemble(zoomed, nil)
	}
	return zoomed, crop
}

// tryQuartet publishes a four-image gallery post. All four artworks must
// fetch and process, otherwise it reports not-posted and the caller falls
// back to the single post. Returns whether a quartet was published.
func (b *Bot) tryQuartet(ctx context.Context, now time.Time) (bool, error) {
	arts, err := b.Art.FetchQuartet(ctx)
	if err != nil || len(arts) != 4 {
		logger.Debug("quartet unavailable (%v), staying in normal mode", err)
		return false, nil
	}

	var images [][]byte
	var altTexts []string
	var lines []string
	for _, a := range arts {
		img, err := b.Images.Enhance(ctx, a.ImageURL)
		if err != nil {
			logger.Debug("quartet image failed for %q, staying in normal mode", a.Title)
			return false, nil
		}
		images = append(images, img)
		altTexts = append(altTexts, altText(a))
		lines = append(lines, fmt.Sprintf("• %s - %s", a.Title, a.Artist))
	}

	text := features.Assemble("🖼️ An impromptu gallery wall:\n"+strings.Join(lines, "\n"), nil)
	if err := safety.Validate(text); err != nil {
		return false, fmt.Errorf("quartet text rejected: %w", err)
	}

	post := publisher.Post{Text: text, Images: images, AltTexts: altTexts}
	if err := b.Publisher.Publish(ctx, post); err != nil {
		return false, fmt.Errorf("quartet publish failed: %w", err)
	}

	if b.DryRun {
		logger.Info("dry run quartet complete, no state recorded")
		return true, nil
	}

	// Quartets get a single minimal analytics entry and no backup.
	rec := store.PostRecord{
		Artist:      "various",
		Title:       "quartet",
		Museum:      arts[0].Museum,
		TweetLength: charLen(text),
		PostedAt:    now,
	}
	if err := b.Store.RecordPost(rec); err != nil {
		logger.Error("failed to record quartet: %v", err)
	}
	if err := b.Store.SetLastRun(now); err != nil {
		return true, fmt.Errorf("failed to advance last run: %w", err)
	}
	logger.Info("posted quartet of %d works", len(arts))
	return true, nil
}

func charLen(s string) int {
	return utf8.RuneCountInString(s)
}

func altText(a museum.Artwork) string {
	parts := []string{a.Title}
	if a.Artist != "" {
		parts = append(parts, "by "+a.Artist)
	}
	if a.Date != "" {
		parts = append(parts, "("+a.Date+")")
	}
	return strings.Join(parts, " ")
}
