// Package museum fetches public-domain artworks from museum open-data APIs.
// The Art Institute of Chicago is the primary source; The Met and the
// Cleveland Museum of Art serve as fallbacks for artist searches.
package museum

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kayz/muse/internal/logger"
)

// Artwork is an immutable record of a fetched piece.
type Artwork struct {
	Title    string
	Artist   string
	Date     string // free-form historical date, possibly "c. 1900" or a range
	Medium   string
	Museum   string
	Link     string
	ImageURL string
}

const (
	articBase     = "https://api.artic.edu/api/v1"
	metBase       = "https://collectionapi.metmuseum.org/public/collection/v1"
	clevelandBase = "https://openaccess-api.clevelandart.org/api"

	userAgent = "muse-artbot/1.0"
)

// Client queries museum open-data endpoints.
type Client struct {
	http *http.Client
	rand *rand.Rand
}

// NewClient creates a museum client. rng may be nil, in which case a
// time-seeded source is used.
func NewClient(rng *rand.Rand) *Client {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Client{
		http: &http.Client{Timeout: 15 * time.Second},
		rand: rng,
	}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type articSearchResponse struct {
	Data []articArtwork `json:"data"`
}

type articArtwork struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	ImageID       string `json:"image_id"`
	ArtistTitle   string `json:"artist_title"`
	DateDisplay   string `json:"date_display"`
	MediumDisplay string `json:"medium_display"`
}

func (a articArtwork) toArtwork() *Artwork {
	artist := a.ArtistTitle
	if artist == "" {
		artist = "Unknown Artist"
	}
	date := a.DateDisplay
	if date == "" {
		date = "Unknown Date"
	}
	return &Artwork{
		Title:    a.Title,
		Artist:   artist,
		Date:     date,
		Medium:   a.MediumDisplay,
		Museum:   "Art Institute of Chicago",
		Link:     fmt.Sprintf("https://www.artic.edu/artworks/%d", a.ID),
		ImageURL: fmt.Sprintf("https://www.artic.edu/iiif/2/%s/full/843,/0/default.jpg", a.ImageID),
	}
}

// FetchArtwork returns a random public-domain artwork, or nil if none could
// be found. A random result page gives variety between invocations.
func (c *Client) FetchArtwork(ctx context.Context) (*Artwork, error) {
	page := c.rand.Intn(100) + 1
	u := fmt.Sprintf(
		"%s/artworks/search?query[term][is_public_domain]=true&limit=1&page=%d&fields=id,title,image_id,artist_title,date_display,medium_display",
		articBase, page)

	var res articSearchResponse
	if err := c.getJSON(ctx, u, &res); err != nil {
		return nil, fmt.Errorf("artic search failed: %w", err)
	}
	if len(res.Data) == 0 || res.Data[0].ImageID == "" {
		return nil, nil
	}
	return res.Data[0].toArtwork(), nil
}

// FetchQuartet fetches four artworks with distinct titles. It retries a
// bounded number of times and returns nil if four distinct pieces could not
// be assembled.
func (c *Client) FetchQuartet(ctx context.Context) ([]Artwork, error) {
	const maxAttempts = 12

	seen := make(map[string]struct{}, 4)
	quartet := make([]Artwork, 0, 4)

	for attempt := 0; attempt < maxAttempts && len(quartet) < 4; attempt++ {
		art, err := c.FetchArtwork(ctx)
		if err != nil {
			logger.Debug("quartet fetch attempt %d failed: %v", attempt+1, err)
			continue
		}
		if art == nil {
			continue
		}
		key := strings.ToLower(art.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		quartet = append(quartet, *art)
	}

	if len(quartet) != 4 {
		return nil, nil
	}
	return quartet, nil
}

// SearchArtworks runs a general keyword search against Chicago, returning up
// to limit results that have images.
func (c *Client) SearchArtworks(ctx context.Context, query string, limit int) ([]Artwork, error) {
	u := fmt.Sprintf(
		"%s/artworks/search?q=%s&query[term][is_public_domain]=true&limit=%d&fields=id,title,image_id,artist_title,date_display",
		articBase, url.QueryEscape(query), limit*2)

	var res articSearchResponse
	if err := c.getJSON(ctx, u, &res); err != nil {
		return nil, fmt.Errorf("artic search failed: %w", err)
	}

	out := make([]Artwork, 0, limit)
	for _, a := range res.Data {
		if a.ImageID == "" {
			continue
		}
		out = append(out, *a.toArtwork())
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
