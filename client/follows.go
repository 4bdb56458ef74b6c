package client

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"tracktide/model"
)

// FollowsStore caches the artists the user follows.
type FollowsStore struct {
	client *Client

	mu      sync.RWMutex
	artists []model.Artist
}

// NewFollowsStore creates an artist-follow store bound to the client's
// session. Logging out drops the cache; logging in reloads it.
func NewFollowsStore(c *Client) *FollowsStore {
	s := &FollowsStore{client: c}
	c.bindSession(s.reset, s.Load)
	return s
}

func (s *FollowsStore) reset() {
	s.mu.Lock()
	s.artists = nil
	s.mu.Unlock()
}

// Load fetches the followed artists and replaces the cache.
func (s *FollowsStore) Load(ctx context.Context) error {
	if err := s.client.requireAuth(); err != nil {
		return err
	}

	var out struct {
		Artists []model.Artist `json:"artists"`
	}
	if err := s.client.do(ctx, http.MethodGet, "/api/artists/following", nil, &out); err != nil {
		return err
	}

	s.mu.Lock()
	s.artists = out.Artists
	s.mu.Unlock()
	return nil
}

// Popular fetches a sample of popular artists. Works logged out; when
// logged in each artist carries the caller's follow state. Not cached.
func (s *FollowsStore) Popular(ctx context.Context, limit int) ([]model.Artist, error) {
	path := "/api/artists/popular"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var out struct {
		Artists []model.Artist `json:"artists"`
	}
	if err := s.client.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Artists, nil
}

// Follow starts following an artist. The cache gains the artist only after
// the server acknowledged the follow.
func (s *FollowsStore) Follow(ctx context.Context, artist model.Artist) error {
	if err := s.client.requireAuth(); err != nil {
		return err
	}

	path := "/api/artists/" + strconv.FormatInt(artist.ID, 10) + "/follow"
	if err := s.client.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return err
	}

	artist.IsFollowing = true
	s.mu.Lock()
	s.artists = append(s.artists, artist)
	s.mu.Unlock()
	return nil
}

// Unfollow stops following an artist and drops it from the cache.
func (s *FollowsStore) Unfollow(ctx context.Context, artistID int64) error {
	if err := s.client.requireAuth(); err != nil {
		return err
	}

	path := "/api/artists/" + strconv.FormatInt(artistID, 10) + "/follow"
	if err := s.client.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.artists {
		if s.artists[i].ID == artistID {
			s.artists = append(s.artists[:i], s.artists[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// IsFollowing reports whether the artist is in the cached list.
func (s *FollowsStore) IsFollowing(artistID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.artists {
		if s.artists[i].ID == artistID {
			return true
		}
	}
	return false
}

// All returns a snapshot of the cached followed artists.
func (s *FollowsStore) All() []model.Artist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Artist, len(s.artists))
	copy(out, s.artists)
	return out
}
