package model

import "time"

// SearchRecord is one remembered search query. Repeating a query moves the
// existing record to the top by refreshing its timestamp.
type SearchRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}
