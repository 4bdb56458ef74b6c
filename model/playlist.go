package model

import "time"

// Playlist is a user-owned collection of songs. SongCount and TotalDuration
// are derived from memberships on read, never stored authoritatively.
type Playlist struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	OwnerID     int64     `json:"ownerId" gorm:"index:idx_playlists_owner;not null"`
	IsPublic    bool      `json:"isPublic" gorm:"default:false"`
	CoverImage  string    `json:"coverImage" gorm:"size:767"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	SongCount     int            `json:"songCount" gorm:"-"`
	TotalDuration int            `json:"totalDuration" gorm:"-"`
	Songs         []PlaylistSong `json:"songs,omitempty" gorm:"-"`
}

// PlaylistSong is a playlist membership record, unique per (playlist, song).
// Position is assigned as max(existing)+1 on insert and never renumbered on
// removal, so gaps are expected. Ordering is ascending position, ties broken
// by descending added-time.
type PlaylistSong struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PlaylistID int64     `json:"playlistId" gorm:"uniqueIndex:uq_playlist_song;index:idx_playlist_position;not null"`
	SongID     string    `json:"songId" gorm:"uniqueIndex:uq_playlist_song;size:64;not null"`
	SongTitle  string    `json:"songTitle" gorm:"size:255;not null"`
	ArtistName string    `json:"artistName" gorm:"size:255;not null"`
	AlbumName  string    `json:"albumName" gorm:"size:255;not null"`
	Duration   int       `json:"duration" gorm:"not null"`
	Cover      string    `json:"cover" gorm:"size:767"`
	Preview    string    `json:"preview" gorm:"size:767"`
	AddedBy    int64     `json:"addedBy" gorm:"not null"`
	AddedAt    time.Time `json:"addedAt"`
	Position   int       `json:"position" gorm:"index:idx_playlist_position"`
}
