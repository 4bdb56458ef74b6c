package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"tracktide/model"
)

// SearchHistoryStore caches the user's remembered search queries. The
// server keeps at most five, upserting by query text.
type SearchHistoryStore struct {
	client *Client

	mu      sync.RWMutex
	records []model.SearchRecord
}

// NewSearchHistoryStore creates a search-history store bound to the
// client's session. Logging out drops the cache; logging in reloads it.
func NewSearchHistoryStore(c *Client) *SearchHistoryStore {
	s := &SearchHistoryStore{client: c}
	c.bindSession(s.reset, s.Load)
	return s
}

func (s *SearchHistoryStore) reset() {
	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()
}

// Load fetches the remembered queries and replaces the cache.
func (s *SearchHistoryStore) Load(ctx context.Context) error {
	if err := s.client.requireAuth(); err != nil {
		return err
	}

	var out struct {
		History []model.SearchRecord `json:"history"`
	}
	if err := s.client.do(ctx, http.MethodGet, "/api/search/history", nil, &out); err != nil {
		return err
	}

	s.mu.Lock()
	s.records = out.History
	s.mu.Unlock()
	return nil
}

// Delete removes one remembered query by id.
func (s *SearchHistoryStore) Delete(ctx context.Context, id int64) error {
	if err := s.client.requireAuth(); err != nil {
		return err
	}

	path := fmt.Sprintf("/api/search/history/%d", id)
	if err := s.client.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// All returns a snapshot of the cached queries, most recent first.
func (s *SearchHistoryStore) All() []model.SearchRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.SearchRecord, len(s.records))
	copy(out, s.records)
	return out
}
