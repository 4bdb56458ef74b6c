package catalog

import (
	"context"
	"fmt"
	"net/url"

	"tracktide/model"
)

// SearchResult is the transformed catalog search response.
type SearchResult struct {
	Songs []model.Song `json:"songs"`
	Total int          `json:"total"`
	Query string       `json:"query"`
}

// rawSearchResponse mirrors the catalog's own search payload shape.
type rawSearchResponse struct {
	Data []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
		Link  string `json:"link"`
		Artist struct {
			Name          string `json:"name"`
			PictureMedium string `json:"picture_medium"`
		} `json:"artist"`
		Album struct {
			Title       string `json:"title"`
			CoverMedium string `json:"cover_medium"`
			CoverSmall  string `json:"cover_small"`
		} `json:"album"`
		Duration int    `json:"duration"`
		Preview  string `json:"preview"`
	} `json:"data"`
	Total int `json:"total"`
}

// SearchSongs queries the catalog and transforms the payload into the
// application's Song shape.
func (c *Client) SearchSongs(ctx context.Context, query string) (*SearchResult, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s", c.baseURL, url.QueryEscape(query))

	var raw rawSearchResponse
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("song search %q failed: %w", query, err)
	}

	songs := make([]model.Song, 0, len(raw.Data))
	for _, s := range raw.Data {
		songs = append(songs, model.Song{
			ID:            s.ID,
			Title:         s.Title,
			Artist:        s.Artist.Name,
			Album:         s.Album.Title,
			Duration:      s.Duration,
			Preview:       s.Preview,
			Cover:         s.Album.CoverMedium,
			CoverSmall:    s.Album.CoverSmall,
			ArtistPicture: s.Artist.PictureMedium,
			Link:          s.Link,
		})
	}

	return &SearchResult{
		Songs: songs,
		Total: raw.Total,
		Query: query,
	}, nil
}
