package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"tracktide/model"
)

// PlaylistsStore caches the user's playlists. Membership mutations go
// through the server first; the cached summaries are refreshed from the
// acknowledged response.
type PlaylistsStore struct {
	client *Client

	mu        sync.RWMutex
	playlists []model.Playlist
}

// NewPlaylistsStore creates a playlists store bound to the client's
// session. Logging out drops the cache; logging in reloads it.
func NewPlaylistsStore(c *Client) *PlaylistsStore {
	s := &PlaylistsStore{client: c}
	c.bindSession(s.reset, s.Load)
	return s
}

func (s *PlaylistsStore) reset() {
	s.mu.Lock()
	s.playlists = nil
	s.mu.Unlock()
}

// Load fetches the playlist summaries and replaces the cache.
func (s *PlaylistsStore) Load(ctx context.Context) error {
	if err := s.client.requireAuth(); err != nil {
		return err
	}

	var out struct {
		Playlists []model.Playlist `json:"playlists"`
	}
	if err := s.client.do(ctx, http.MethodGet, "/api/playlists", nil, &out); err != nil {
		return err
	}

	s.mu.Lock()
	s.playlists = out.Playlists
	s.mu.Unlock()
	return nil
}

// Create makes a new playlist and prepends it to the cache.
func (s *PlaylistsStore) Create(ctx context.Context, name, description string, isPublic bool) (*model.Playlist, error) {
	if err := s.client.requireAuth(); err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"name":        name,
		"description": description,
		"isPublic":    isPublic,
	}
	var out struct {
		Message  string         `json:"message"`
		Playlist model.Playlist `json:"playlist"`
	}
	if err := s.client.do(ctx, http.MethodPost, "/api/playlists", body, &out); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.playlists = append([]model.Playlist{out.Playlist}, s.playlists...)
	s.mu.Unlock()
	return &out.Playlist, nil
}

// Get fetches one playlist with its songs ordered for playback. Not
// cached: the song list is only needed when opening a playlist.
func (s *PlaylistsStore) Get(ctx context.Context, id int64) (*model.Playlist, []model.PlaylistSong, error) {
	if err := s.client.requireAuth(); err != nil {
		return nil, nil, err
	}

	var out struct {
		Playlist model.Playlist       `json:"playlist"`
		Songs    []model.PlaylistSong `json:"songs"`
	}
	if err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/api/playlists/%d", id), nil, &out); err != nil {
		return nil, nil, err
	}
	return &out.Playlist, out.Songs, nil
}

// Rename updates a playlist's name.
func (s *PlaylistsStore) Rename(ctx context.Context, id int64, name string) error {
	if err := s.client.requireAuth(); err != nil {
		return err
	}

	body := map[string]string{"name": name}
	var out struct {
		Message  string         `json:"message"`
		Playlist model.Playlist `json:"playlist"`
	}
	if err := s.client.do(ctx, http.MethodPut, fmt.Sprintf("/api/playlists/%d", id), body, &out); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.playlists {
		if s.playlists[i].ID == id {
			s.playlists[i].Name = out.Playlist.Name
			s.playlists[i].UpdatedAt = out.Playlist.UpdatedAt
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// Delete removes a playlist and drops it from the cache.
func (s *PlaylistsStore) Delete(ctx context.Context, id int64) error {
	if err := s.client.requireAuth(); err != nil {
		return err
	}

	if err := s.client.do(ctx, http.MethodDelete, fmt.Sprintf("/api/playlists/%d", id), nil, nil); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.playlists {
		if s.playlists[i].ID == id {
			s.playlists = append(s.playlists[:i], s.playlists[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// AddSong appends a song to a playlist. The cached summary's song count
// only moves after the server acknowledged the insert.
func (s *PlaylistsStore) AddSong(ctx context.Context, playlistID int64, song model.Song) (*model.PlaylistSong, error) {
	if err := s.client.requireAuth(); err != nil {
		return nil, err
	}

	var out struct {
		Message      string             `json:"message"`
		PlaylistSong model.PlaylistSong `json:"playlistSong"`
	}
	path := fmt.Sprintf("/api/playlists/%d/songs", playlistID)
	if err := s.client.do(ctx, http.MethodPost, path, payloadFromSong(song), &out); err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i := range s.playlists {
		if s.playlists[i].ID == playlistID {
			s.playlists[i].SongCount++
			s.playlists[i].TotalDuration += out.PlaylistSong.Duration
			break
		}
	}
	s.mu.Unlock()
	return &out.PlaylistSong, nil
}

// RemoveSong removes a song from a playlist.
func (s *PlaylistsStore) RemoveSong(ctx context.Context, playlistID int64, songID string) error {
	if err := s.client.requireAuth(); err != nil {
		return err
	}

	path := fmt.Sprintf("/api/playlists/%d/songs/%s", playlistID, songID)
	var out struct {
		Message     string             `json:"message"`
		RemovedSong model.PlaylistSong `json:"removedSong"`
	}
	if err := s.client.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.playlists {
		if s.playlists[i].ID == playlistID {
			s.playlists[i].SongCount--
			s.playlists[i].TotalDuration -= out.RemovedSong.Duration
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// All returns a snapshot of the cached playlist summaries.
func (s *PlaylistsStore) All() []model.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Playlist, len(s.playlists))
	copy(out, s.playlists)
	return out
}
