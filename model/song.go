package model

// Song is an immutable track record as returned by the catalog.
// IDs are catalog-scoped and not globally unique across data sources.
type Song struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	Album         string `json:"album"`
	Duration      int    `json:"duration"` // Whole seconds
	Preview       string `json:"preview"`  // Preview audio URL
	Cover         string `json:"cover"`
	CoverSmall    string `json:"cover_small,omitempty"`
	ArtistPicture string `json:"artistPicture,omitempty"`
	Link          string `json:"link,omitempty"`
}
