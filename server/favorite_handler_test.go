package server

import (
	"net/http"
	"testing"

	"tracktide/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFavorite(t *testing.T) {
	env := newTestEnv(t)
	router := env.router()
	bearer := bearerFor(t, 1)

	var out struct {
		Message  string         `json:"message"`
		Favorite model.Favorite `json:"favorite"`
	}
	rr := doJSON(t, router, http.MethodPost, "/api/favorites", bearer, validSongBody("42"), &out)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "42", out.Favorite.SongID)
	assert.Equal(t, int64(1), out.Favorite.UserID)
	assert.Equal(t, model.FavoriteContextSearch, out.Favorite.Context, "context defaults to search")
	assert.False(t, out.Favorite.LikedAt.IsZero())
}

func TestAddFavoriteDuplicate(t *testing.T) {
	env := newTestEnv(t)
	router := env.router()
	bearer := bearerFor(t, 1)

	rr := doJSON(t, router, http.MethodPost, "/api/favorites", bearer, validSongBody("42"), nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	var out struct {
		Error string `json:"error"`
	}
	rr = doJSON(t, router, http.MethodPost, "/api/favorites", bearer, validSongBody("42"), &out)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Song is already in favorites", out.Error)
}

func TestAddFavoriteIncompleteBody(t *testing.T) {
	env := newTestEnv(t)
	router := env.router()
	bearer := bearerFor(t, 1)

	body := validSongBody("42")
	delete(body, "preview")

	var out struct {
		Error string `json:"error"`
	}
	rr := doJSON(t, router, http.MethodPost, "/api/favorites", bearer, body, &out)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "All song details are required", out.Error)
}

func TestAddFavoriteRejectsUnknownContext(t *testing.T) {
	env := newTestEnv(t)
	router := env.router()
	bearer := bearerFor(t, 1)

	body := validSongBody("42")
	body["context"] = "homepage"

	rr := doJSON(t, router, http.MethodPost, "/api/favorites", bearer, body, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFavoritesScopedToUser(t *testing.T) {
	env := newTestEnv(t)
	router := env.router()

	doJSON(t, router, http.MethodPost, "/api/favorites", bearerFor(t, 1), validSongBody("42"), nil)
	doJSON(t, router, http.MethodPost, "/api/favorites", bearerFor(t, 2), validSongBody("43"), nil)

	var out struct {
		Favorites []model.Favorite `json:"favorites"`
	}
	rr := doJSON(t, router, http.MethodGet, "/api/favorites", bearerFor(t, 1), nil, &out)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, out.Favorites, 1)
	assert.Equal(t, "42", out.Favorites[0].SongID)
}

func TestRemoveFavorite(t *testing.T) {
	env := newTestEnv(t)
	router := env.router()
	bearer := bearerFor(t, 1)

	doJSON(t, router, http.MethodPost, "/api/favorites", bearer, validSongBody("42"), nil)

	var out struct {
		Message     string         `json:"message"`
		RemovedSong model.Favorite `json:"removedSong"`
	}
	rr := doJSON(t, router, http.MethodDelete, "/api/favorites/42", bearer, nil, &out)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "42", out.RemovedSong.SongID)

	rr = doJSON(t, router, http.MethodDelete, "/api/favorites/42", bearer, nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
