package bot

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/kayz/muse/internal/features"
	"github.com/kayz/muse/internal/museum"
	"github.com/kayz/muse/internal/publisher"
	"github.com/kayz/muse/internal/store"
)

type fakeArt struct {
	art        *museum.Artwork
	artErr     error
	quartet    []museum.Artwork
	quartetErr error
	byArtist   *museum.Artwork
}

func (f *fakeArt) FetchArtwork(context.Context) (*museum.Artwork, error) {
	return f.art, f.artErr
}
func (f *fakeArt) FetchQuartet(context.Context) ([]museum.Artwork, error) {
	return f.quartet, f.quartetErr
}
func (f *fakeArt) SearchByArtist(context.Context, string) (*museum.Artwork, error) {
	if f.byArtist == nil {
		return nil, errors.New("not found")
	}
	return f.byArtist, nil
}

type fakeImages struct {
	enhanceErr error
	crop       []byte
}

func (f *fakeImages) Enhance(context.Context, string) ([]byte, error) {
	if f.enhanceErr != nil {
		return nil, f.enhanceErr
	}
	return []byte{0xff, 0xd8, 0xff, 0x00}, nil
}
func (f *fakeImages) DetailCrop([]byte) []byte { return f.crop }

type fakeText struct {
	base    string
	baseErr error
	zoom    string
	zoomErr error
}

func (f *fakeText) Name() string { return "fake" }
func (f *fakeText) BaseText(context.Context, museum.Artwork, string) (string, error) {
	return f.base, f.baseErr
}
func (f *fakeText) DetailZoomText(context.Context, museum.Artwork) (string, error) {
	return f.zoom, f.zoomErr
}

type fakePub struct {
	posts []publisher.Post
	err   error
}

func (f *fakePub) Name() string { return "fake" }
func (f *fakePub) Publish(_ context.Context, post publisher.Post) error {
	if f.err != nil {
		return f.err
	}
	f.posts = append(f.posts, post)
	return nil
}

type fakeStore struct {
	lastRun *time.Time
	count   int
	records []store.PostRecord
}

func (f *fakeStore) GetLastRun() (*time.Time, error) { return f.lastRun, nil }
func (f *fakeStore) SetLastRun(t time.Time) error    { f.lastRun = &t; return nil }
func (f *fakeStore) MonthlyCount(time.Time) (int, error) {
	return f.count, nil
}
func (f *fakeStore) RecordPost(rec store.PostRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func testArtwork() *museum.Artwork {
	return &museum.Artwork{
		Title:    "The Harvesters",
		Artist:   "Pieter Bruegel the Elder",
		Date:     "1565",
		Museum:   "The Met Museum",
		ImageURL: "https://example.org/harvesters.jpg",
	}
}

// June 2nd has no birthday artist and no high-priority special day, so runs
// on this date stay free of calendar-driven fragments.
var neutralNow = time.Date(2026, 6, 2, 15, 0, 0, 0, time.UTC)

func testBot(t *testing.T, art *fakeArt, img *fakeImages, txt *fakeText, pub *fakePub, st *fakeStore, seed int64) *Bot {
	t.Helper()
	catalog, err := features.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	return New(art, img, txt, pub, st, catalog,
		WithRand(rand.New(rand.NewSource(seed))),
		WithClock(func() time.Time { return neutralNow }))
}

func TestRunSkipsWhenTooSoon(t *testing.T) {
	last := neutralNow.Add(-30 * time.Minute)
	st := &fakeStore{lastRun: &last}
	pub := &fakePub{}
	b := testBot(t, &fakeArt{art: testArtwork()}, &fakeImages{}, &fakeText{base: "A caption."}, pub, st, 1)

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("gated run should not error: %v", err)
	}
	if len(pub.posts) != 0 {
		t.Fatalf("gated run must not publish")
	}
	if !st.lastRun.Equal(last) {
		t.Fatalf("gated run must not advance last run")
	}
}

func TestRunSkipsWhenQuotaReached(t *testing.T) {
	st := &fakeStore{count: 495}
	pub := &fakePub{}
	b := testBot(t, &fakeArt{art: testArtwork()}, &fakeImages{}, &fakeText{base: "A caption."}, pub, st, 1)

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("quota skip should not error: %v", err)
	}
	if len(pub.posts) != 0 {
		t.Fatalf("quota skip must not publish")
	}
}

func TestRunPublishesAndAdvancesState(t *testing.T) {
	st := &fakeStore{}
	pub := &fakePub{}
	b := testBot(t, &fakeArt{art: testArtwork()}, &fakeImages{}, &fakeText{base: "Golden fields under a heavy summer sky."}, pub, st, 7)

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(pub.posts) != 1 {
		t.Fatalf("expected one post, got %d", len(pub.posts))
	}
	post := pub.posts[0]
	if utf8.RuneCountInString(post.Text) > features.HardLimit {
		t.Fatalf("post text exceeds limit: %d", utf8.RuneCountInString(post.Text))
	}
	if len(post.Images) == 0 || len(post.AltTexts) != len(post.Images) {
		t.Fatalf("post images/alt texts malformed: %d/%d", len(post.Images), len(post.AltTexts))
	}
	if !strings.Contains(post.AltTexts[0], "The Harvesters") {
		t.Fatalf("alt text missing title: %q", post.AltTexts[0])
	}
	if st.lastRun == nil || !st.lastRun.Equal(neutralNow) {
		t.Fatalf("last run not advanced: %v", st.lastRun)
	}
	if len(st.records) != 1 || st.records[0].Artist != "Pieter Bruegel the Elder" {
		t.Fatalf("post not recorded: %+v", st.records)
	}
}

func TestRunPublishFailureKeepsState(t *testing.T) {
	st := &fakeStore{}
	pub := &fakePub{err: errors.New("rate limited")}
	b := testBot(t, &fakeArt{art: testArtwork()}, &fakeImages{}, &fakeText{base: "A caption."}, pub, st, 7)

	if err := b.Run(context.Background()); err == nil {
		t.Fatalf("publish failure must surface")
	}
	if st.lastRun != nil {
		t.Fatalf("failed run must not advance last run")
	}
	if len(st.records) != 0 {
		t.Fatalf("failed run must not record a post")
	}
}

func TestRunSafetyAbort(t *testing.T) {
	st := &fakeStore{}
	pub := &fakePub{}
	b := testBot(t, &fakeArt{art: testArtwork()}, &fakeImages{}, &fakeText{base: "Amazing giveaway, follow me for more!"}, pub, st, 7)

	err := b.Run(context.Background())
	if err == nil {
		t.Fatalf("unsafe text must abort the run")
	}
	if len(pub.posts) != 0 {
		t.Fatalf("unsafe text must not be published")
	}
	if st.lastRun != nil {
		t.Fatalf("aborted run must not advance last run")
	}
}

func TestRunFallsBackWhenCaptionFails(t *testing.T) {
	st := &fakeStore{}
	pub := &fakePub{}
	b := testBot(t, &fakeArt{art: testArtwork()}, &fakeImages{}, &fakeText{baseErr: errors.New("api down")}, pub, st, 7)

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run should survive caption failure: %v", err)
	}
	if len(pub.posts) != 1 || !strings.Contains(pub.posts[0].Text, "The Harvesters") {
		t.Fatalf("fallback caption missing title: %+v", pub.posts)
	}
}

func TestDryRunSkipsRecording(t *testing.T) {
	st := &fakeStore{}
	pub := &fakePub{}
	b := testBot(t, &fakeArt{art: testArtwork()}, &fakeImages{}, &fakeText{base: "A caption."}, pub, st, 7)
	b.DryRun = true

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if len(pub.posts) != 1 {
		t.Fatalf("dry run still publishes through its publisher")
	}
	if st.lastRun != nil || len(st.records) != 0 {
		t.Fatalf("dry run must not touch state")
	}
}

// zeroSource makes every Float64 draw 0, so both special-mode rolls always
// land under the threshold.
type zeroSource struct{}

func (zeroSource) Int63() int64 { return 0 }
func (zeroSource) Seed(int64)   {}

// A base caption too long for any fragment keeps the composition plain, so
// the special-mode rolls actually run.
func plainBase() string { return strings.Repeat("a", 278) }

func TestRunQuartetStillRollsAfterFailedDetailZoom(t *testing.T) {
	st := &fakeStore{}
	pub := &fakePub{}
	// crop stays nil: the detail-zoom roll fires but produces nothing
	art := &fakeArt{art: testArtwork(), quartet: quartetArtworks()}
	b := testBot(t, art, &fakeImages{}, &fakeText{base: plainBase()}, pub, st, 1)
	b.rand = rand.New(zeroSource{})

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(pub.posts) != 1 || len(pub.posts[0].Images) != 4 {
		t.Fatalf("expected a quartet post after the zoom fell through, got %+v", pub.posts)
	}
	if len(st.records) != 1 || st.records[0].Title != "quartet" {
		t.Fatalf("quartet record missing: %+v", st.records)
	}
}

func TestRunDetailZoomConsumesTheSpecialTurn(t *testing.T) {
	st := &fakeStore{}
	pub := &fakePub{}
	art := &fakeArt{art: testArtwork(), quartet: quartetArtworks()}
	b := testBot(t, art, &fakeImages{crop: []byte{1, 2}},
		&fakeText{base: plainBase(), zoom: "Look closer at the wheat."}, pub, st, 1)
	b.rand = rand.New(zeroSource{})

	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(pub.posts) != 1 || len(pub.posts[0].Images) != 2 {
		t.Fatalf("expected a zoom post with two images, got %+v", pub.posts)
	}
	if !strings.Contains(pub.posts[0].Text, "🔍") {
		t.Fatalf("zoom text not applied: %q", pub.posts[0].Text)
	}
}

func quartetArtworks() []museum.Artwork {
	return []museum.Artwork{
		{Title: "A", Artist: "W", Museum: "M", ImageURL: "https://example.org/a.jpg"},
		{Title: "B", Artist: "X", Museum: "M", ImageURL: "https://example.org/b.jpg"},
		{Title: "C", Artist: "Y", Museum: "M", ImageURL: "https://example.org/c.jpg"},
		{Title: "D", Artist: "Z", Museum: "M", ImageURL: "https://example.org/d.jpg"},
	}
}

func TestQuartetPublishesFourImages(t *testing.T) {
	st := &fakeStore{}
	pub := &fakePub{}
	b := testBot(t, &fakeArt{quartet: quartetArtworks()}, &fakeImages{}, &fakeText{}, pub, st, 7)

	posted, err := b.tryQuartet(context.Background(), neutralNow)
	if err != nil {
		t.Fatalf("tryQuartet failed: %v", err)
	}
	if !posted {
		t.Fatalf("quartet should have posted")
	}
	if len(pub.posts) != 1 || len(pub.posts[0].Images) != 4 {
		t.Fatalf("quartet must carry four images: %+v", pub.posts)
	}
	if len(st.records) != 1 || st.records[0].Title != "quartet" {
		t.Fatalf("quartet record missing: %+v", st.records)
	}
	if st.lastRun == nil {
		t.Fatalf("quartet must advance last run")
	}
}

func TestQuartetIsAllOrNothing(t *testing.T) {
	st := &fakeStore{}
	pub := &fakePub{}
	short := quartetArtworks()[:3]
	b := testBot(t, &fakeArt{quartet: short}, &fakeImages{}, &fakeText{}, pub, st, 7)

	posted, err := b.tryQuartet(context.Background(), neutralNow)
	if err != nil {
		t.Fatalf("tryQuartet failed: %v", err)
	}
	if posted {
		t.Fatalf("three artworks must not post as a quartet")
	}
	if len(pub.posts) != 0 || st.lastRun != nil {
		t.Fatalf("failed quartet must leave no trace")
	}
}

func TestQuartetEnhanceFailureFallsBack(t *testing.T) {
	st := &fakeStore{}
	pub := &fakePub{}
	b := testBot(t, &fakeArt{quartet: quartetArtworks()}, &fakeImages{enhanceErr: errors.New("404")}, &fakeText{}, pub, st, 7)

	posted, err := b.tryQuartet(context.Background(), neutralNow)
	if err != nil || posted {
		t.Fatalf("broken image should fall back, got posted=%v err=%v", posted, err)
	}
}

func TestDetailZoomReplacesText(t *testing.T) {
	b := testBot(t, &fakeArt{}, &fakeImages{crop: []byte{1, 2, 3}},
		&fakeText{zoom: "Brushwork detail in the wheat."}, &fakePub{}, &fakeStore{}, 7)

	text, crop := b.tryDetailZoom(context.Background(), *testArtwork(), []byte{9})
	if crop == nil {
		t.Fatalf("expected crop")
	}
	if !strings.Contains(text, "🔍") || !strings.Contains(text, "The Harvesters") {
		t.Fatalf("zoom text malformed: %q", text)
	}
}

func TestDetailZoomRequiresBothCropAndCaption(t *testing.T) {
	// no crop
	b := testBot(t, &fakeArt{}, &fakeImages{}, &fakeText{zoom: "x"}, &fakePub{}, &fakeStore{}, 7)
	if text, crop := b.tryDetailZoom(context.Background(), *testArtwork(), []byte{9}); crop != nil || text != "" {
		t.Fatalf("missing crop must cancel zoom mode")
	}

	// no caption
	b = testBot(t, &fakeArt{}, &fakeImages{crop: []byte{1}}, &fakeText{zoomErr: errors.New("down")}, &fakePub{}, &fakeStore{}, 7)
	if _, crop := b.tryDetailZoom(context.Background(), *testArtwork(), []byte{9}); crop != nil {
		t.Fatalf("missing caption must cancel zoom mode")
	}
}

func TestPickArtworkPrefersBirthdayArtist(t *testing.T) {
	vanGogh := &museum.Artwork{
		Title: "Wheatfield with Crows", Artist: "Vincent van Gogh",
		Museum: "Van Gogh Museum", ImageURL: "https://example.org/crows.jpg",
	}
	art := &fakeArt{art: testArtwork(), byArtist: vanGogh}
	b := testBot(t, art, &fakeImages{}, &fakeText{}, &fakePub{}, &fakeStore{}, 7)
	b.now = func() time.Time { return time.Date(2026, 3, 30, 12, 0, 0, 0, time.UTC) }

	got, err := b.pickArtwork(context.Background(), b.now())
	if err != nil {
		t.Fatalf("pickArtwork failed: %v", err)
	}
	if got.Artist != "Vincent van Gogh" {
		t.Fatalf("birthday artist not preferred: %+v", got)
	}
}

func TestPickArtworkFallsBackToRandom(t *testing.T) {
	art := &fakeArt{art: testArtwork()}
	b := testBot(t, art, &fakeImages{}, &fakeText{}, &fakePub{}, &fakeStore{}, 7)
	b.now = func() time.Time { return time.Date(2026, 3, 30, 12, 0, 0, 0, time.UTC) }

	got, err := b.pickArtwork(context.Background(), b.now())
	if err != nil {
		t.Fatalf("pickArtwork failed: %v", err)
	}
	if got.Title != "The Harvesters" {
		t.Fatalf("fallback artwork expected: %+v", got)
	}
}
