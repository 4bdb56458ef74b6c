package client

import (
	"context"
	"net/http"
	"sync"

	"tracktide/model"
)

// playHistoryLimit mirrors the server-side cap on the history listing.
const playHistoryLimit = 20

// HistoryStore caches the user's recent plays.
type HistoryStore struct {
	client *Client

	mu      sync.RWMutex
	records []model.PlayRecord
}

// NewHistoryStore creates a play-history store bound to the client's
// session. Logging out drops the cache; logging in reloads it.
func NewHistoryStore(c *Client) *HistoryStore {
	s := &HistoryStore{client: c}
	c.bindSession(s.reset, s.Load)
	return s
}

func (s *HistoryStore) reset() {
	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()
}

// Load fetches the play history and replaces the cache.
func (s *HistoryStore) Load(ctx context.Context) error {
	if err := s.client.requireAuth(); err != nil {
		return err
	}

	var out struct {
		PlayHistory []model.PlayRecord `json:"playHistory"`
	}
	if err := s.client.do(ctx, http.MethodGet, "/api/history", nil, &out); err != nil {
		return err
	}

	s.mu.Lock()
	s.records = out.PlayHistory
	s.mu.Unlock()
	return nil
}

// Record reports a play to the server. Replaying a song the server already
// knows moves its record to the top rather than adding a duplicate; the
// cache mirrors that.
func (s *HistoryStore) Record(ctx context.Context, song model.Song) (*model.PlayRecord, error) {
	if err := s.client.requireAuth(); err != nil {
		return nil, err
	}

	var out struct {
		Message    string           `json:"message"`
		PlayRecord model.PlayRecord `json:"playRecord"`
	}
	if err := s.client.do(ctx, http.MethodPost, "/api/history", payloadFromSong(song), &out); err != nil {
		return nil, err
	}

	s.mu.Lock()
	kept := s.records[:0]
	for i := range s.records {
		if s.records[i].SongID != out.PlayRecord.SongID {
			kept = append(kept, s.records[i])
		}
	}
	s.records = append([]model.PlayRecord{out.PlayRecord}, kept...)
	if len(s.records) > playHistoryLimit {
		s.records = s.records[:playHistoryLimit]
	}
	s.mu.Unlock()

	return &out.PlayRecord, nil
}

// All returns a snapshot of the cached history, most recent first.
func (s *HistoryStore) All() []model.PlayRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PlayRecord, len(s.records))
	copy(out, s.records)
	return out
}
