package repository

import (
	"database/sql"
	"fmt"
	"time"

	"tracktide/model"
)

// Play history keeps a bounded window of the user's most recent plays.
const playHistoryLimit = 20

// HistoryRepository defines the interface for play-history operations.
// Records are upserted by (user, song): a repeat play refreshes the
// timestamp of the existing record instead of inserting a duplicate.
type HistoryRepository interface {
	ListByUser(userID int64) ([]model.PlayRecord, error)
	// Upsert records a play. The returned bool is true when an existing
	// record was refreshed rather than created.
	Upsert(rec *model.PlayRecord) (*model.PlayRecord, bool, error)
}

type mysqlHistoryRepository struct {
	db *sql.DB
}

// NewMySQLHistoryRepository creates a new mysqlHistoryRepository.
func NewMySQLHistoryRepository(db *sql.DB) HistoryRepository {
	return &mysqlHistoryRepository{db: db}
}

// ListByUser returns the most recent plays, newest first.
func (r *mysqlHistoryRepository) ListByUser(userID int64) ([]model.PlayRecord, error) {
	query := `SELECT id, user_id, song_id, song_title, artist_name, album_name, duration, cover, preview, played_at, completed
		FROM play_history WHERE user_id = ? ORDER BY played_at DESC LIMIT ?`
	rows, err := r.db.Query(query, userID, playHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query play history for user %d: %w", userID, err)
	}
	defer rows.Close()

	records := []model.PlayRecord{}
	for rows.Next() {
		var rec model.PlayRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.SongID, &rec.SongTitle, &rec.ArtistName,
			&rec.AlbumName, &rec.Duration, &rec.Cover, &rec.Preview, &rec.PlayedAt, &rec.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan play history row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Upsert records a play, refreshing the timestamp when the song was played
// before.
func (r *mysqlHistoryRepository) Upsert(rec *model.PlayRecord) (*model.PlayRecord, bool, error) {
	var existing model.PlayRecord
	query := `SELECT id, user_id, song_id, song_title, artist_name, album_name, duration, cover, preview, played_at, completed
		FROM play_history WHERE user_id = ? AND song_id = ?`
	err := r.db.QueryRow(query, rec.UserID, rec.SongID).Scan(&existing.ID, &existing.UserID, &existing.SongID,
		&existing.SongTitle, &existing.ArtistName, &existing.AlbumName, &existing.Duration,
		&existing.Cover, &existing.Preview, &existing.PlayedAt, &existing.Completed)
	if err != nil && err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("failed to look up play history record: %w", err)
	}

	now := time.Now()

	if err == nil {
		if _, err := r.db.Exec("UPDATE play_history SET played_at = ? WHERE id = ?", now, existing.ID); err != nil {
			return nil, false, fmt.Errorf("failed to refresh play history record %d: %w", existing.ID, err)
		}
		existing.PlayedAt = now
		return &existing, true, nil
	}

	insert := `INSERT INTO play_history (user_id, song_id, song_title, artist_name, album_name, duration, cover, preview, played_at, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.Exec(insert, rec.UserID, rec.SongID, rec.SongTitle, rec.ArtistName,
		rec.AlbumName, rec.Duration, rec.Cover, rec.Preview, now, rec.Completed)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert play history record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get last insert ID for play history: %w", err)
	}

	created := *rec
	created.ID = id
	created.PlayedAt = now
	return &created, false, nil
}
