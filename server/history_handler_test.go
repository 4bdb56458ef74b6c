package server

import (
	"net/http"
	"testing"

	"tracktide/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPlayFirstTime(t *testing.T) {
	env := newTestEnv(t)
	router := env.router()
	bearer := bearerFor(t, 1)

	var out struct {
		Message    string           `json:"message"`
		PlayRecord model.PlayRecord `json:"playRecord"`
	}
	rr := doJSON(t, router, http.MethodPost, "/api/history", bearer, validSongBody("42"), &out)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Song added to play history successfully", out.Message)
	assert.Equal(t, "42", out.PlayRecord.SongID)
}

func TestRecordPlayRepeatRefreshes(t *testing.T) {
	env := newTestEnv(t)
	router := env.router()
	bearer := bearerFor(t, 1)

	rr := doJSON(t, router, http.MethodPost, "/api/history", bearer, validSongBody("42"), nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	var out struct {
		Message    string           `json:"message"`
		PlayRecord model.PlayRecord `json:"playRecord"`
	}
	rr = doJSON(t, router, http.MethodPost, "/api/history", bearer, validSongBody("42"), &out)

	// A repeat play refreshes the record instead of duplicating it.
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Song updated in play history successfully", out.Message)

	var list struct {
		PlayHistory []model.PlayRecord `json:"playHistory"`
	}
	rr = doJSON(t, router, http.MethodGet, "/api/history", bearer, nil, &list)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, list.PlayHistory, 1)
}

func TestRecordPlayIncompleteBody(t *testing.T) {
	env := newTestEnv(t)
	router := env.router()

	body := validSongBody("42")
	delete(body, "songTitle")

	rr := doJSON(t, router, http.MethodPost, "/api/history", bearerFor(t, 1), body, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPlayHistoryScopedToUser(t *testing.T) {
	env := newTestEnv(t)
	router := env.router()

	doJSON(t, router, http.MethodPost, "/api/history", bearerFor(t, 1), validSongBody("42"), nil)
	doJSON(t, router, http.MethodPost, "/api/history", bearerFor(t, 2), validSongBody("43"), nil)

	var list struct {
		PlayHistory []model.PlayRecord `json:"playHistory"`
	}
	rr := doJSON(t, router, http.MethodGet, "/api/history", bearerFor(t, 2), nil, &list)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, list.PlayHistory, 1)
	assert.Equal(t, "43", list.PlayHistory[0].SongID)
}
