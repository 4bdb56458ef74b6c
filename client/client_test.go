package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"tracktide/core/session"
	"tracktide/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sess := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	return New(srv.URL, sess), sess
}

func TestLoginStoresSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body["email"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Login successful",
			"token":   "tok-abc",
			"user":    model.User{ID: 1, Name: "ada", Email: "ada@example.com"},
		})
	})

	c, sess := newTestClient(t, mux)

	user, err := c.Login(context.Background(), "ada@example.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "tok-abc", sess.Token())
	assert.True(t, sess.LoggedIn())
}

func TestAPIErrorDecoded(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
	})

	c, sess := newTestClient(t, mux)

	_, err := c.Login(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.False(t, sess.LoggedIn())
}

func TestBearerTokenSent(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/favorites", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"favorites": []model.Favorite{}})
	})

	c, sess := newTestClient(t, mux)
	require.NoError(t, sess.Set("tok-abc", nil))

	store := NewFavoritesStore(c)
	require.NoError(t, store.Load(context.Background()))
	assert.Equal(t, "Bearer tok-abc", gotAuth)
}

func TestMutationRequiresLogin(t *testing.T) {
	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { called = true })

	c, _ := newTestClient(t, mux)
	store := NewFavoritesStore(c)

	_, err := store.Add(context.Background(), model.Song{ID: 1}, "search")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.False(t, called, "no request should reach the server without a token")
}

func TestSearchWorksLoggedOut(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/songs/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "daft punk", r.URL.Query().Get("q"))
		assert.Empty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"songs": []model.Song{{ID: 10, Title: "One More Time"}},
			"total": 1,
		})
	})

	c, _ := newTestClient(t, mux)

	songs, err := c.Search(context.Background(), "daft punk")
	require.NoError(t, err)
	require.Len(t, songs, 1)
	assert.Equal(t, "One More Time", songs[0].Title)
}
