package museum

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kayz/muse/internal/logger"
)

// SearchByArtist tries each museum in turn and returns the first artwork
// whose artist actually matches the queried name, or nil if every source
// comes up empty.
func (c *Client) SearchByArtist(ctx context.Context, artistName string) (*Artwork, error) {
	if art := c.searchArticByArtist(ctx, artistName); art != nil {
		return art, nil
	}
	if art := c.searchMetByArtist(ctx, artistName); art != nil {
		return art, nil
	}
	if art := c.searchClevelandByArtist(ctx, artistName); art != nil {
		return art, nil
	}
	return nil, nil
}

func (c *Client) searchArticByArtist(ctx context.Context, artistName string) *Artwork {
	u := fmt.Sprintf(
		"%s/artworks/search?q=%s&query[term][is_public_domain]=true&limit=10&fields=id,title,image_id,artist_title,date_display",
		articBase, url.QueryEscape(artistName))

	var res articSearchResponse
	if err := c.getJSON(ctx, u, &res); err != nil {
		logger.Debug("artic artist search (%s): %v", artistName, err)
		return nil
	}
	needle := strings.ToLower(artistName)
	for _, a := range res.Data {
		if a.ImageID == "" || a.ArtistTitle == "" {
			continue
		}
		if strings.Contains(strings.ToLower(a.ArtistTitle), needle) {
			return a.toArtwork()
		}
	}
	return nil
}

type metSearchResponse struct {
	ObjectIDs []int `json:"objectIDs"`
}

type metObject struct {
	Title             string `json:"title"`
	ArtistDisplayName string `json:"artistDisplayName"`
	ObjectDate        string `json:"objectDate"`
	ObjectURL         string `json:"objectURL"`
	PrimaryImage      string `json:"primaryImage"`
}

func (c *Client) searchMetByArtist(ctx context.Context, artistName string) *Artwork {
	u := fmt.Sprintf(
		"%s/search?hasImages=true&isPublicDomain=true&artistOrCulture=true&q=%s",
		metBase, url.QueryEscape(artistName))

	var res metSearchResponse
	if err := c.getJSON(ctx, u, &res); err != nil {
		logger.Debug("met artist search (%s): %v", artistName, err)
		return nil
	}

	needle := strings.ToLower(artistName)
	// Only the first few objects are tried to stay clear of rate limits.
	limit := len(res.ObjectIDs)
	if limit > 5 {
		limit = 5
	}
	for i := 0; i < limit; i++ {
		var obj metObject
		objURL := fmt.Sprintf("%s/objects/%d", metBase, res.ObjectIDs[i])
		if err := c.getJSON(ctx, objURL, &obj); err != nil {
			continue
		}
		if obj.PrimaryImage == "" || obj.ArtistDisplayName == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(obj.ArtistDisplayName), needle) {
			continue
		}
		date := obj.ObjectDate
		if date == "" {
			date = "Unknown Date"
		}
		return &Artwork{
			Title:    obj.Title,
			Artist:   obj.ArtistDisplayName,
			Date:     date,
			Museum:   "The Met Museum",
			Link:     obj.ObjectURL,
			ImageURL: obj.PrimaryImage,
		}
	}
	return nil
}

type clevelandResponse struct {
	Data []struct {
		Title        string `json:"title"`
		URL          string `json:"url"`
		CreationDate string `json:"creation_date"`
		Creators     []struct {
			Description string `json:"description"`
		} `json:"creators"`
		Images struct {
			Web struct {
				URL string `json:"url"`
			} `json:"web"`
		} `json:"images"`
	} `json:"data"`
}

func (c *Client) searchClevelandByArtist(ctx context.Context, artistName string) *Artwork {
	u := fmt.Sprintf(
		"%s/artworks/?q=%s&share_license_status=CC0&has_image=1&limit=10&format=json",
		clevelandBase, url.QueryEscape(artistName))

	var res clevelandResponse
	if err := c.getJSON(ctx, u, &res); err != nil {
		logger.Debug("cleveland artist search (%s): %v", artistName, err)
		return nil
	}

	needle := strings.ToLower(artistName)
	for _, a := range res.Data {
		if a.Images.Web.URL == "" || len(a.Creators) == 0 {
			continue
		}
		creator := a.Creators[0].Description
		if !strings.Contains(strings.ToLower(creator), needle) {
			continue
		}
		date := a.CreationDate
		if date == "" {
			date = "Unknown Date"
		}
		return &Artwork{
			Title:    a.Title,
			Artist:   creator,
			Date:     date,
			Museum:   "Cleveland Museum of Art",
			Link:     a.URL,
			ImageURL: a.Images.Web.URL,
		}
	}
	return nil
}
