package model

import "time"

// Favorite context tags. A favorite remembers where the user liked the song.
const (
	FavoriteContextSearch         = "search"
	FavoriteContextPlaylist       = "playlist"
	FavoriteContextRecommendation = "recommendation"
)

// Favorite is a liked song, unique per (user, song).
// Song fields are denormalized so the record stands on its own
// even if the catalog stops returning the track.
type Favorite struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	SongID     string    `json:"songId"`
	SongTitle  string    `json:"songTitle"`
	ArtistName string    `json:"artistName"`
	AlbumName  string    `json:"albumName"`
	Duration   int       `json:"duration"`
	Cover      string    `json:"cover"`
	Preview    string    `json:"preview"`
	LikedAt    time.Time `json:"likedAt"`
	Context    string    `json:"context"`
}

// ValidFavoriteContext reports whether tag is one of the known context tags.
func ValidFavoriteContext(tag string) bool {
	switch tag {
	case FavoriteContextSearch, FavoriteContextPlaylist, FavoriteContextRecommendation:
		return true
	}
	return false
}
