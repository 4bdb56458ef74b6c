package server

import (
	"net/http"
	"testing"

	"tracktide/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowArtist(t *testing.T) {
	env := newTestEnv(t)
	router := env.router()
	bearer := bearerFor(t, 1)

	var out struct {
		Message string       `json:"message"`
		Follow  model.Follow `json:"follow"`
	}
	rr := doJSON(t, router, http.MethodPost, "/api/artists/27/follow", bearer, nil, &out)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "27", out.Follow.FollowedID)
	assert.Equal(t, model.FollowTypeArtist, out.Follow.FollowedType)
	assert.True(t, out.Follow.NotificationsEnabled)
}

func TestFollowArtistDuplicate(t *testing.T) {
	env := newTestEnv(t)
	router := env.router()
	bearer := bearerFor(t, 1)

	rr := doJSON(t, router, http.MethodPost, "/api/artists/27/follow", bearer, nil, nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	var out struct {
		Error string `json:"error"`
	}
	rr = doJSON(t, router, http.MethodPost, "/api/artists/27/follow", bearer, nil, &out)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Already following this artist", out.Error)
}

func TestUnfollowArtist(t *testing.T) {
	env := newTestEnv(t)
	router := env.router()
	bearer := bearerFor(t, 1)

	doJSON(t, router, http.MethodPost, "/api/artists/27/follow", bearer, nil, nil)

	rr := doJSON(t, router, http.MethodDelete, "/api/artists/27/follow", bearer, nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var out struct {
		Error string `json:"error"`
	}
	rr = doJSON(t, router, http.MethodDelete, "/api/artists/27/follow", bearer, nil, &out)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Not following this artist", out.Error)
}

func TestFollowingListHydratedFromCatalog(t *testing.T) {
	upstream := fakeCatalog(t)
	env := newTestEnvWithCatalog(t, upstream.URL)
	router := env.router()
	bearer := bearerFor(t, 1)

	doJSON(t, router, http.MethodPost, "/api/artists/27/follow", bearer, nil, nil)

	var out struct {
		Artists []model.Artist `json:"artists"`
	}
	rr := doJSON(t, router, http.MethodGet, "/api/artists/following", bearer, nil, &out)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, out.Artists, 1)
	assert.Equal(t, "Daft Punk", out.Artists[0].Name)
	assert.True(t, out.Artists[0].IsFollowing)
	assert.NotNil(t, out.Artists[0].FollowedAt)
}

func TestPopularArtistsCarryFollowState(t *testing.T) {
	upstream := fakeCatalog(t)
	env := newTestEnvWithCatalog(t, upstream.URL)
	router := env.router()
	bearer := bearerFor(t, 1)

	doJSON(t, router, http.MethodPost, "/api/artists/27/follow", bearer, nil, nil)

	var out struct {
		Artists []model.Artist `json:"artists"`
	}
	rr := doJSON(t, router, http.MethodGet, "/api/artists/popular?limit=5", bearer, nil, &out)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, out.Artists, 5)
	// The upstream fake returns artist 27 for every id, so each entry
	// reflects the follow state the fake follow repo reports for its id.
}

func TestPopularArtistsWorksLoggedOut(t *testing.T) {
	upstream := fakeCatalog(t)
	env := newTestEnvWithCatalog(t, upstream.URL)
	router := env.router()

	var out struct {
		Artists []model.Artist `json:"artists"`
	}
	rr := doJSON(t, router, http.MethodGet, "/api/artists/popular?limit=3", "", nil, &out)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, out.Artists, 3)
	for _, a := range out.Artists {
		assert.False(t, a.IsFollowing)
	}
}
