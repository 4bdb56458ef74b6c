package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tracktide/config"
	"tracktide/core/auth"
	"tracktide/core/catalog"
	"tracktide/model"
	"tracktide/repository"

	"github.com/gorilla/mux"
)

const testJWTSecret = "test-secret"

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users  map[string]*model.User // by email
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User), nextID: 1}
}

func (f *fakeUserRepo) CreateUser(user *model.User) (int64, error) {
	if _, exists := f.users[user.Email]; exists {
		return 0, repository.ErrDuplicateUser
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	f.users[user.Email] = user
	return user.ID, nil
}

func (f *fakeUserRepo) GetUserByID(id int64) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetUserByEmail(email string) (*model.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (f *fakeUserRepo) UpdateLastLogin(userID int64, at time.Time) error {
	for _, u := range f.users {
		if u.ID == userID {
			u.LastLoginAt = &at
			return nil
		}
	}
	return repository.ErrNotFound
}

// fakeFavoriteRepo is an in-memory FavoriteRepository.
type fakeFavoriteRepo struct {
	favorites []model.Favorite
	nextID    int64
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{nextID: 1}
}

func (f *fakeFavoriteRepo) ListByUser(userID int64) ([]model.Favorite, error) {
	var out []model.Favorite
	for i := len(f.favorites) - 1; i >= 0; i-- {
		if f.favorites[i].UserID == userID {
			out = append(out, f.favorites[i])
		}
	}
	return out, nil
}

func (f *fakeFavoriteRepo) Add(fav *model.Favorite) (int64, error) {
	for _, existing := range f.favorites {
		if existing.UserID == fav.UserID && existing.SongID == fav.SongID {
			return 0, repository.ErrDuplicateFavorite
		}
	}
	id := f.nextID
	f.nextID++
	fav.ID = id
	fav.LikedAt = time.Now()
	f.favorites = append(f.favorites, *fav)
	return id, nil
}

func (f *fakeFavoriteRepo) Remove(userID int64, songID string) (*model.Favorite, error) {
	for i, existing := range f.favorites {
		if existing.UserID == userID && existing.SongID == songID {
			removed := existing
			f.favorites = append(f.favorites[:i], f.favorites[i+1:]...)
			return &removed, nil
		}
	}
	return nil, repository.ErrNotFound
}

// fakeHistoryRepo is an in-memory HistoryRepository with upsert semantics.
type fakeHistoryRepo struct {
	records []model.PlayRecord
	nextID  int64
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{nextID: 1}
}

func (f *fakeHistoryRepo) ListByUser(userID int64) ([]model.PlayRecord, error) {
	var out []model.PlayRecord
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].UserID == userID {
			out = append(out, f.records[i])
		}
		if len(out) == 20 {
			break
		}
	}
	return out, nil
}

func (f *fakeHistoryRepo) Upsert(rec *model.PlayRecord) (*model.PlayRecord, bool, error) {
	for i := range f.records {
		if f.records[i].UserID == rec.UserID && f.records[i].SongID == rec.SongID {
			f.records[i].PlayedAt = time.Now()
			out := f.records[i]
			return &out, true, nil
		}
	}
	rec.ID = f.nextID
	f.nextID++
	rec.PlayedAt = time.Now()
	f.records = append(f.records, *rec)
	out := *rec
	return &out, false, nil
}

// fakeSearchRepo is an in-memory SearchHistoryRepository. The slice is kept
// in ascending-timestamp order (a refreshed record moves to the end), so
// reading it back to front matches ORDER BY timestamp DESC.
type fakeSearchRepo struct {
	records []model.SearchRecord
	nextID  int64
}

func newFakeSearchRepo() *fakeSearchRepo {
	return &fakeSearchRepo{nextID: 1}
}

func (f *fakeSearchRepo) ListByUser(userID int64) ([]model.SearchRecord, error) {
	var out []model.SearchRecord
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].UserID == userID {
			out = append(out, f.records[i])
		}
		if len(out) == 5 {
			break
		}
	}
	return out, nil
}

func (f *fakeSearchRepo) Upsert(userID int64, query string) error {
	for i := range f.records {
		if f.records[i].UserID == userID && f.records[i].Query == query {
			rec := f.records[i]
			rec.Timestamp = time.Now()
			f.records = append(f.records[:i], f.records[i+1:]...)
			f.records = append(f.records, rec)
			return nil
		}
	}
	f.records = append(f.records, model.SearchRecord{
		ID: f.nextID, UserID: userID, Query: query, Timestamp: time.Now(),
	})
	f.nextID++
	return nil
}

func (f *fakeSearchRepo) Delete(userID, recordID int64) error {
	for i := range f.records {
		if f.records[i].UserID == userID && f.records[i].ID == recordID {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// fakePlaylistRepo is an in-memory PlaylistRepository honoring the
// max(position)+1 append rule.
type fakePlaylistRepo struct {
	playlists  []model.Playlist
	songs      []model.PlaylistSong
	nextID     int64
	nextSongID int64
}

func newFakePlaylistRepo() *fakePlaylistRepo {
	return &fakePlaylistRepo{nextID: 1, nextSongID: 1}
}

func (f *fakePlaylistRepo) find(ownerID, playlistID int64) *model.Playlist {
	for i := range f.playlists {
		if f.playlists[i].ID == playlistID && f.playlists[i].OwnerID == ownerID {
			return &f.playlists[i]
		}
	}
	return nil
}

func (f *fakePlaylistRepo) ListByOwner(ownerID int64) ([]model.Playlist, error) {
	var out []model.Playlist
	for _, pl := range f.playlists {
		if pl.OwnerID == ownerID {
			out = append(out, pl)
		}
	}
	return out, nil
}

func (f *fakePlaylistRepo) Create(pl *model.Playlist) error {
	pl.ID = f.nextID
	f.nextID++
	pl.CreatedAt = time.Now()
	pl.UpdatedAt = pl.CreatedAt
	f.playlists = append(f.playlists, *pl)
	return nil
}

func (f *fakePlaylistRepo) Get(ownerID, playlistID int64) (*model.Playlist, []model.PlaylistSong, error) {
	pl := f.find(ownerID, playlistID)
	if pl == nil {
		return nil, nil, repository.ErrNotFound
	}
	out := *pl
	songs := f.songsFor(playlistID)
	out.SongCount = len(songs)
	return &out, songs, nil
}

func (f *fakePlaylistRepo) songsFor(playlistID int64) []model.PlaylistSong {
	var out []model.PlaylistSong
	for _, s := range f.songs {
		if s.PlaylistID == playlistID {
			out = append(out, s)
		}
	}
	// Ascending position; positions are unique per playlist here.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Position < out[j-1].Position; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func (f *fakePlaylistRepo) Update(ownerID, playlistID int64, fields map[string]interface{}) (*model.Playlist, error) {
	pl := f.find(ownerID, playlistID)
	if pl == nil {
		return nil, repository.ErrNotFound
	}
	if v, ok := fields["name"].(string); ok {
		pl.Name = v
	}
	if v, ok := fields["description"].(string); ok {
		pl.Description = v
	}
	if v, ok := fields["is_public"].(bool); ok {
		pl.IsPublic = v
	}
	pl.UpdatedAt = time.Now()
	out := *pl
	return &out, nil
}

func (f *fakePlaylistRepo) Delete(ownerID, playlistID int64) (*model.Playlist, error) {
	for i := range f.playlists {
		if f.playlists[i].ID == playlistID && f.playlists[i].OwnerID == ownerID {
			removed := f.playlists[i]
			f.playlists = append(f.playlists[:i], f.playlists[i+1:]...)
			var kept []model.PlaylistSong
			for _, s := range f.songs {
				if s.PlaylistID != playlistID {
					kept = append(kept, s)
				}
			}
			f.songs = kept
			return &removed, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlaylistRepo) AddSong(ownerID int64, song *model.PlaylistSong) error {
	if f.find(ownerID, song.PlaylistID) == nil {
		return repository.ErrNotFound
	}
	maxPos := 0
	for _, s := range f.songs {
		if s.PlaylistID == song.PlaylistID {
			if s.SongID == song.SongID {
				return repository.ErrDuplicateSong
			}
			if s.Position > maxPos {
				maxPos = s.Position
			}
		}
	}
	song.ID = f.nextSongID
	f.nextSongID++
	song.Position = maxPos + 1
	song.AddedAt = time.Now()
	f.songs = append(f.songs, *song)
	return nil
}

func (f *fakePlaylistRepo) RemoveSong(ownerID, playlistID int64, songID string) (*model.PlaylistSong, error) {
	if f.find(ownerID, playlistID) == nil {
		return nil, repository.ErrNotFound
	}
	for i, s := range f.songs {
		if s.PlaylistID == playlistID && s.SongID == songID {
			removed := s
			f.songs = append(f.songs[:i], f.songs[i+1:]...)
			return &removed, nil
		}
	}
	return nil, repository.ErrNotFound
}

// fakeFollowRepo is an in-memory FollowRepository.
type fakeFollowRepo struct {
	follows []model.Follow
	nextID  int64
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{nextID: 1}
}

func (f *fakeFollowRepo) ListByFollower(followerID int64, followedType string) ([]model.Follow, error) {
	var out []model.Follow
	for _, fl := range f.follows {
		if fl.FollowerID == followerID && fl.FollowedType == followedType {
			out = append(out, fl)
		}
	}
	return out, nil
}

func (f *fakeFollowRepo) Add(follow *model.Follow) error {
	for _, fl := range f.follows {
		if fl.FollowerID == follow.FollowerID && fl.FollowedType == follow.FollowedType && fl.FollowedID == follow.FollowedID {
			return repository.ErrDuplicateFollow
		}
	}
	follow.ID = f.nextID
	f.nextID++
	follow.FollowedAt = time.Now()
	f.follows = append(f.follows, *follow)
	return nil
}

func (f *fakeFollowRepo) Remove(followerID int64, followedType, followedID string) (*model.Follow, error) {
	for i, fl := range f.follows {
		if fl.FollowerID == followerID && fl.FollowedType == followedType && fl.FollowedID == followedID {
			removed := fl
			f.follows = append(f.follows[:i], f.follows[i+1:]...)
			return &removed, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeFollowRepo) IsFollowing(followerID int64, followedType, followedID string) (bool, error) {
	for _, fl := range f.follows {
		if fl.FollowerID == followerID && fl.FollowedType == followedType && fl.FollowedID == followedID {
			return true, nil
		}
	}
	return false, nil
}

// testEnv bundles a handler with its fakes.
type testEnv struct {
	handler   *APIHandler
	users     *fakeUserRepo
	favorites *fakeFavoriteRepo
	history   *fakeHistoryRepo
	searches  *fakeSearchRepo
	playlists *fakePlaylistRepo
	follows   *fakeFollowRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithCatalog(t, "")
}

func newTestEnvWithCatalog(t *testing.T, catalogURL string) *testEnv {
	t.Helper()

	env := &testEnv{
		users:     newFakeUserRepo(),
		favorites: newFakeFavoriteRepo(),
		history:   newFakeHistoryRepo(),
		searches:  newFakeSearchRepo(),
		playlists: newFakePlaylistRepo(),
		follows:   newFakeFollowRepo(),
	}

	cfg := &config.Config{JWTSecret: testJWTSecret, CatalogBaseURL: catalogURL}
	env.handler = NewAPIHandler(env.users, env.favorites, env.history, env.searches,
		env.playlists, env.follows, catalog.NewClient(catalogURL), nil, cfg)
	return env
}

// router wires the handler into the API route table.
func (env *testEnv) router() *mux.Router {
	h := env.handler
	r := mux.NewRouter()

	r.HandleFunc("/api/auth/signup", h.SignupHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/songs/search", h.SearchSongsHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/search/history", h.AuthMiddleware(h.GetSearchHistoryHandler)).Methods(http.MethodGet)
	r.HandleFunc("/api/search/history/{id}", h.AuthMiddleware(h.DeleteSearchHistoryHandler)).Methods(http.MethodDelete)
	r.HandleFunc("/api/favorites", h.AuthMiddleware(h.GetFavoritesHandler)).Methods(http.MethodGet)
	r.HandleFunc("/api/favorites", h.AuthMiddleware(h.AddFavoriteHandler)).Methods(http.MethodPost)
	r.HandleFunc("/api/favorites/{songId}", h.AuthMiddleware(h.RemoveFavoriteHandler)).Methods(http.MethodDelete)
	r.HandleFunc("/api/history", h.AuthMiddleware(h.GetPlayHistoryHandler)).Methods(http.MethodGet)
	r.HandleFunc("/api/history", h.AuthMiddleware(h.RecordPlayHandler)).Methods(http.MethodPost)
	r.HandleFunc("/api/playlists", h.AuthMiddleware(h.GetPlaylistsHandler)).Methods(http.MethodGet)
	r.HandleFunc("/api/playlists", h.AuthMiddleware(h.CreatePlaylistHandler)).Methods(http.MethodPost)
	r.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.GetPlaylistHandler)).Methods(http.MethodGet)
	r.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.UpdatePlaylistHandler)).Methods(http.MethodPut)
	r.HandleFunc("/api/playlists/{id}", h.AuthMiddleware(h.DeletePlaylistHandler)).Methods(http.MethodDelete)
	r.HandleFunc("/api/playlists/{id}/songs", h.AuthMiddleware(h.AddPlaylistSongHandler)).Methods(http.MethodPost)
	r.HandleFunc("/api/playlists/{id}/songs/{songId}", h.AuthMiddleware(h.RemovePlaylistSongHandler)).Methods(http.MethodDelete)
	r.HandleFunc("/api/artists/following", h.AuthMiddleware(h.GetFollowingArtistsHandler)).Methods(http.MethodGet)
	r.HandleFunc("/api/artists/popular", h.GetPopularArtistsHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/artists/{artistId}/follow", h.AuthMiddleware(h.FollowArtistHandler)).Methods(http.MethodPost)
	r.HandleFunc("/api/artists/{artistId}/follow", h.AuthMiddleware(h.UnfollowArtistHandler)).Methods(http.MethodDelete)
	r.HandleFunc("/api/health", h.HealthHandler).Methods(http.MethodGet)

	return r
}

// bearerFor returns an Authorization header value for the given user id.
func bearerFor(t *testing.T, userID int64) string {
	t.Helper()
	token, err := auth.GenerateToken(testJWTSecret, userID)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return "Bearer " + token
}

// doJSON runs one request through the handler and decodes the JSON answer.
func doJSON(t *testing.T, h http.Handler, method, target, bearer string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if out != nil && rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
			t.Fatalf("unmarshal response %q: %v", rr.Body.String(), err)
		}
	}
	return rr
}

func validSongBody(id string) map[string]interface{} {
	return map[string]interface{}{
		"songId":     id,
		"songTitle":  "Harder Better Faster Stronger",
		"artistName": "Daft Punk",
		"albumName":  "Discovery",
		"duration":   224,
		"cover":      "https://cdn.example.com/cover.jpg",
		"preview":    "https://cdn.example.com/preview.mp3",
	}
}
