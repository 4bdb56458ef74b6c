package repository

import (
	"errors"
	"fmt"
	"time"

	"tracktide/model"

	"gorm.io/gorm"
)

// PlaylistRepository defines the interface for playlist and membership
// operations. Built on GORM; see db.ConnectGormDB.
//
// All reads and writes are scoped to the owner: a playlist id that exists
// but belongs to another user behaves exactly like a missing playlist.
type PlaylistRepository interface {
	ListByOwner(ownerID int64) ([]model.Playlist, error)
	Create(pl *model.Playlist) error
	// Get returns the playlist with derived aggregates and its memberships
	// ordered by ascending position, ties broken by descending added-time.
	Get(ownerID, playlistID int64) (*model.Playlist, []model.PlaylistSong, error)
	Update(ownerID, playlistID int64, fields map[string]interface{}) (*model.Playlist, error)
	// Delete removes the playlist and cascades to all its memberships.
	Delete(ownerID, playlistID int64) (*model.Playlist, error)
	// AddSong appends a membership at position max(existing)+1.
	AddSong(ownerID int64, song *model.PlaylistSong) error
	// RemoveSong deletes a membership without renumbering the remaining
	// positions.
	RemoveSong(ownerID, playlistID int64, songID string) (*model.PlaylistSong, error)
}

type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository creates a new gormPlaylistRepository.
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

// ListByOwner returns the user's playlists, most recently updated first,
// with derived song counts, total durations and a songs summary.
func (r *gormPlaylistRepository) ListByOwner(ownerID int64) ([]model.Playlist, error) {
	var playlists []model.Playlist
	if err := r.db.Where("owner_id = ?", ownerID).Order("updated_at DESC").Find(&playlists).Error; err != nil {
		return nil, fmt.Errorf("failed to list playlists for user %d: %w", ownerID, err)
	}

	for i := range playlists {
		songs, err := r.songsFor(playlists[i].ID)
		if err != nil {
			return nil, err
		}
		playlists[i].SongCount = len(songs)
		playlists[i].TotalDuration = totalDuration(songs)
		playlists[i].Songs = songs
	}
	return playlists, nil
}

// Create inserts a new playlist.
func (r *gormPlaylistRepository) Create(pl *model.Playlist) error {
	if err := r.db.Create(pl).Error; err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	return nil
}

// Get returns one playlist with its songs.
func (r *gormPlaylistRepository) Get(ownerID, playlistID int64) (*model.Playlist, []model.PlaylistSong, error) {
	pl, err := r.owned(ownerID, playlistID)
	if err != nil {
		return nil, nil, err
	}

	songs, err := r.songsFor(playlistID)
	if err != nil {
		return nil, nil, err
	}
	pl.SongCount = len(songs)
	pl.TotalDuration = totalDuration(songs)
	return pl, songs, nil
}

// Update applies partial field changes and bumps the updated timestamp.
func (r *gormPlaylistRepository) Update(ownerID, playlistID int64, fields map[string]interface{}) (*model.Playlist, error) {
	pl, err := r.owned(ownerID, playlistID)
	if err != nil {
		return nil, err
	}

	fields["updated_at"] = time.Now()
	if err := r.db.Model(pl).Updates(fields).Error; err != nil {
		return nil, fmt.Errorf("failed to update playlist %d: %w", playlistID, err)
	}
	return pl, nil
}

// Delete removes the playlist and all of its memberships.
func (r *gormPlaylistRepository) Delete(ownerID, playlistID int64) (*model.Playlist, error) {
	pl, err := r.owned(ownerID, playlistID)
	if err != nil {
		return nil, err
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", playlistID).Delete(&model.PlaylistSong{}).Error; err != nil {
			return err
		}
		return tx.Delete(pl).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete playlist %d: %w", playlistID, err)
	}
	return pl, nil
}

// AddSong appends a song to the playlist. Position is max(existing)+1;
// removed positions are never reused.
func (r *gormPlaylistRepository) AddSong(ownerID int64, song *model.PlaylistSong) error {
	pl, err := r.owned(ownerID, song.PlaylistID)
	if err != nil {
		return err
	}

	var count int64
	if err := r.db.Model(&model.PlaylistSong{}).
		Where("playlist_id = ? AND song_id = ?", song.PlaylistID, song.SongID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check for existing playlist song: %w", err)
	}
	if count > 0 {
		return ErrDuplicateSong
	}

	var maxPos int
	row := r.db.Model(&model.PlaylistSong{}).
		Where("playlist_id = ?", song.PlaylistID).
		Select("COALESCE(MAX(position), 0)").Row()
	if err := row.Scan(&maxPos); err != nil {
		return fmt.Errorf("failed to determine next position: %w", err)
	}
	song.Position = maxPos + 1
	song.AddedAt = time.Now()

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(song).Error; err != nil {
			return fmt.Errorf("failed to add song to playlist %d: %w", song.PlaylistID, err)
		}
		return tx.Model(pl).Update("updated_at", time.Now()).Error
	})
}

// RemoveSong removes one membership and returns it.
func (r *gormPlaylistRepository) RemoveSong(ownerID, playlistID int64, songID string) (*model.PlaylistSong, error) {
	pl, err := r.owned(ownerID, playlistID)
	if err != nil {
		return nil, err
	}

	var song model.PlaylistSong
	err = r.db.Where("playlist_id = ? AND song_id = ?", playlistID, songID).First(&song).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find playlist song: %w", err)
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&song).Error; err != nil {
			return err
		}
		return tx.Model(pl).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove song from playlist %d: %w", playlistID, err)
	}
	return &song, nil
}

func (r *gormPlaylistRepository) owned(ownerID, playlistID int64) (*model.Playlist, error) {
	var pl model.Playlist
	err := r.db.Where("id = ? AND owner_id = ?", playlistID, ownerID).First(&pl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load playlist %d: %w", playlistID, err)
	}
	return &pl, nil
}

func (r *gormPlaylistRepository) songsFor(playlistID int64) ([]model.PlaylistSong, error) {
	var songs []model.PlaylistSong
	err := r.db.Where("playlist_id = ?", playlistID).
		Order("position ASC, added_at DESC").
		Find(&songs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list songs for playlist %d: %w", playlistID, err)
	}
	return songs, nil
}

func totalDuration(songs []model.PlaylistSong) int {
	total := 0
	for _, s := range songs {
		total += s.Duration
	}
	return total
}
