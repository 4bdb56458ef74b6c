package model

import "time"

// PlayRecord is a play-history entry, upserted by (user, song):
// playing a song again updates PlayedAt instead of inserting a duplicate.
type PlayRecord struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	SongID     string    `json:"songId"`
	SongTitle  string    `json:"songTitle"`
	ArtistName string    `json:"artistName"`
	AlbumName  string    `json:"albumName"`
	Duration   int       `json:"duration"`
	Cover      string    `json:"cover"`
	Preview    string    `json:"preview"`
	PlayedAt   time.Time `json:"playedAt"`
	Completed  bool      `json:"completed"`
}
