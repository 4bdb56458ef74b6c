package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"tracktide/model"
)

// FavoriteRepository defines the interface for liked-song operations.
// Favorites are unique per (user, song); a duplicate add is an error,
// never a silent no-op.
type FavoriteRepository interface {
	ListByUser(userID int64) ([]model.Favorite, error)
	Add(fav *model.Favorite) (int64, error)
	Remove(userID int64, songID string) (*model.Favorite, error)
}

type mysqlFavoriteRepository struct {
	db *sql.DB
}

// NewMySQLFavoriteRepository creates a new mysqlFavoriteRepository.
func NewMySQLFavoriteRepository(db *sql.DB) FavoriteRepository {
	return &mysqlFavoriteRepository{db: db}
}

// ListByUser returns all favorites for a user, most recently liked first.
func (r *mysqlFavoriteRepository) ListByUser(userID int64) ([]model.Favorite, error) {
	query := `SELECT id, user_id, song_id, song_title, artist_name, album_name, duration, cover, preview, liked_at, context
		FROM favorites WHERE user_id = ? ORDER BY liked_at DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites for user %d: %w", userID, err)
	}
	defer rows.Close()

	favorites := []model.Favorite{}
	for rows.Next() {
		var fav model.Favorite
		if err := rows.Scan(&fav.ID, &fav.UserID, &fav.SongID, &fav.SongTitle, &fav.ArtistName,
			&fav.AlbumName, &fav.Duration, &fav.Cover, &fav.Preview, &fav.LikedAt, &fav.Context); err != nil {
			return nil, fmt.Errorf("failed to scan favorite row: %w", err)
		}
		favorites = append(favorites, fav)
	}
	return favorites, rows.Err()
}

// Add inserts a new favorite. Returns ErrDuplicateFavorite if the song is
// already liked by this user.
func (r *mysqlFavoriteRepository) Add(fav *model.Favorite) (int64, error) {
	query := `INSERT INTO favorites (user_id, song_id, song_title, artist_name, album_name, duration, cover, preview, context)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.Exec(query, fav.UserID, fav.SongID, fav.SongTitle, fav.ArtistName,
		fav.AlbumName, fav.Duration, fav.Cover, fav.Preview, fav.Context)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return 0, ErrDuplicateFavorite
		}
		return 0, fmt.Errorf("failed to insert favorite: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for favorite: %w", err)
	}
	return id, nil
}

// Remove deletes a favorite and returns the removed record.
// Returns ErrNotFound if the song is not in the user's favorites.
func (r *mysqlFavoriteRepository) Remove(userID int64, songID string) (*model.Favorite, error) {
	query := `SELECT id, user_id, song_id, song_title, artist_name, album_name, duration, cover, preview, liked_at, context
		FROM favorites WHERE user_id = ? AND song_id = ?`
	var fav model.Favorite
	err := r.db.QueryRow(query, userID, songID).Scan(&fav.ID, &fav.UserID, &fav.SongID, &fav.SongTitle,
		&fav.ArtistName, &fav.AlbumName, &fav.Duration, &fav.Cover, &fav.Preview, &fav.LikedAt, &fav.Context)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find favorite to remove: %w", err)
	}

	if _, err := r.db.Exec("DELETE FROM favorites WHERE id = ?", fav.ID); err != nil {
		return nil, fmt.Errorf("failed to delete favorite %d: %w", fav.ID, err)
	}
	return &fav, nil
}
