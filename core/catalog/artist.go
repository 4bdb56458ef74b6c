package catalog

import (
	"context"
	"fmt"

	"tracktide/model"
)

// rawArtistResponse mirrors the catalog's artist payload shape.
type rawArtistResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	PictureMedium string `json:"picture_medium"`
	PictureBig    string `json:"picture_big"`
	NbFan         int64  `json:"nb_fan"`
}

// Placeholder shown when the catalog has no artist picture.
const artistPlaceholder = "https://via.placeholder.com/300x300?text=Artist"

// GetArtist fetches one artist's metadata from the catalog.
func (c *Client) GetArtist(ctx context.Context, artistID string) (*model.Artist, error) {
	endpoint := fmt.Sprintf("%s/artist/%s", c.baseURL, artistID)

	var raw rawArtistResponse
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("artist lookup %s failed: %w", artistID, err)
	}

	artist := &model.Artist{
		ID:         raw.ID,
		Name:       raw.Name,
		Picture:    raw.PictureMedium,
		PictureBig: raw.PictureBig,
		Followers:  raw.NbFan,
	}
	if artist.Name == "" {
		artist.Name = "Unknown Artist"
	}
	if artist.Picture == "" {
		artist.Picture = artistPlaceholder
	}
	if artist.PictureBig == "" {
		artist.PictureBig = artist.Picture
	}
	return artist, nil
}
