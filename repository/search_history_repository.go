package repository

import (
	"database/sql"
	"fmt"
	"time"

	"tracktide/model"
)

// Listing returns at most this many entries.
const searchHistoryLimit = 5

// SearchHistoryRepository defines the interface for search-history
// operations. Repeating a query refreshes the existing record's timestamp
// so it moves to the top without duplicating the entry.
type SearchHistoryRepository interface {
	ListByUser(userID int64) ([]model.SearchRecord, error)
	Upsert(userID int64, query string) error
	Delete(userID, recordID int64) error
}

type mysqlSearchHistoryRepository struct {
	db *sql.DB
}

// NewMySQLSearchHistoryRepository creates a new mysqlSearchHistoryRepository.
func NewMySQLSearchHistoryRepository(db *sql.DB) SearchHistoryRepository {
	return &mysqlSearchHistoryRepository{db: db}
}

// ListByUser returns the most recent queries, newest first.
func (r *mysqlSearchHistoryRepository) ListByUser(userID int64) ([]model.SearchRecord, error) {
	query := "SELECT id, user_id, query, timestamp FROM search_history WHERE user_id = ? ORDER BY timestamp DESC LIMIT ?"
	rows, err := r.db.Query(query, userID, searchHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query search history for user %d: %w", userID, err)
	}
	defer rows.Close()

	records := []model.SearchRecord{}
	for rows.Next() {
		var rec model.SearchRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Query, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan search history row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Upsert records a search query, refreshing the timestamp when the same
// query was searched before.
func (r *mysqlSearchHistoryRepository) Upsert(userID int64, searchQuery string) error {
	var id int64
	err := r.db.QueryRow("SELECT id FROM search_history WHERE user_id = ? AND query = ?", userID, searchQuery).Scan(&id)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to look up search history record: %w", err)
	}

	if err == nil {
		if _, err := r.db.Exec("UPDATE search_history SET timestamp = ? WHERE id = ?", time.Now(), id); err != nil {
			return fmt.Errorf("failed to refresh search history record %d: %w", id, err)
		}
		return nil
	}

	if _, err := r.db.Exec("INSERT INTO search_history (user_id, query) VALUES (?, ?)", userID, searchQuery); err != nil {
		return fmt.Errorf("failed to insert search history record: %w", err)
	}
	return nil
}

// Delete removes one search history entry owned by the user.
// Returns ErrNotFound if no such entry exists.
func (r *mysqlSearchHistoryRepository) Delete(userID, recordID int64) error {
	res, err := r.db.Exec("DELETE FROM search_history WHERE id = ? AND user_id = ?", recordID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete search history record %d: %w", recordID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
