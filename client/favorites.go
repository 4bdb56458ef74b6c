package client

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"tracktide/model"
)

// FavoritesStore caches the user's liked songs. The cache only ever holds
// server-acknowledged state: Add and Remove update it after the API call
// succeeded, and a failed call leaves it untouched.
type FavoritesStore struct {
	client *Client

	mu        sync.RWMutex
	favorites []model.Favorite
	loaded    bool
}

// NewFavoritesStore creates a favorites store bound to the client's
// session. Logging out drops the cache; logging in reloads it.
func NewFavoritesStore(c *Client) *FavoritesStore {
	s := &FavoritesStore{client: c}
	c.bindSession(s.reset, s.Load)
	return s
}

// Load fetches the favorites list and replaces the cache.
func (s *FavoritesStore) Load(ctx context.Context) error {
	if err := s.client.requireAuth(); err != nil {
		return err
	}

	var out struct {
		Favorites []model.Favorite `json:"favorites"`
	}
	if err := s.client.do(ctx, http.MethodGet, "/api/favorites", nil, &out); err != nil {
		return err
	}

	s.mu.Lock()
	s.favorites = out.Favorites
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Add likes a song. On success the acknowledged favorite is prepended to
// the cache, matching the server's newest-first ordering.
func (s *FavoritesStore) Add(ctx context.Context, song model.Song, contextTag string) (*model.Favorite, error) {
	if err := s.client.requireAuth(); err != nil {
		return nil, err
	}

	payload := payloadFromSong(song)
	payload.Context = contextTag

	var out struct {
		Message  string         `json:"message"`
		Favorite model.Favorite `json:"favorite"`
	}
	if err := s.client.do(ctx, http.MethodPost, "/api/favorites", payload, &out); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.favorites = append([]model.Favorite{out.Favorite}, s.favorites...)
	s.mu.Unlock()
	return &out.Favorite, nil
}

// Remove unlikes a song and drops it from the cache.
func (s *FavoritesStore) Remove(ctx context.Context, songID string) error {
	if err := s.client.requireAuth(); err != nil {
		return err
	}

	if err := s.client.do(ctx, http.MethodDelete, "/api/favorites/"+songID, nil, nil); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.favorites {
		if s.favorites[i].SongID == songID {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// IsFavorite reports whether the song is in the cached list.
func (s *FavoritesStore) IsFavorite(songID int64) bool {
	id := strconv.FormatInt(songID, 10)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.favorites {
		if s.favorites[i].SongID == id {
			return true
		}
	}
	return false
}

// All returns a snapshot of the cached favorites, newest first.
func (s *FavoritesStore) All() []model.Favorite {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Favorite, len(s.favorites))
	copy(out, s.favorites)
	return out
}

// Loaded reports whether Load has succeeded since the last reset.
func (s *FavoritesStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *FavoritesStore) reset() {
	s.mu.Lock()
	s.favorites = nil
	s.loaded = false
	s.mu.Unlock()
}
