package server

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"strconv"

	"tracktide/logger"
	"tracktide/model"
	"tracktide/repository"

	"github.com/gorilla/mux"
)

// Catalog ids of well-known artists, sampled for the popular listing.
var popularArtistIDs = []int64{
	13, 27, 412, 75798, 1039, 116, 118, 119, 120, 121, 122, 123, 124, 125,
	126, 127, 128, 129, 130, 131, 132, 133, 134, 135, 136, 137, 138, 139,
	140, 141, 142, 143, 144, 145, 146, 147, 148, 149, 150,
}

// GetFollowingArtistsHandler returns the artists the user follows, hydrated
// with catalog details.
func (h *APIHandler) GetFollowingArtistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	follows, err := h.followRepo.ListByFollower(userID, model.FollowTypeArtist)
	if err != nil {
		logger.Error("[Artists] failed to list follows", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get following artists")
		return
	}

	ctx := r.Context()
	artists := make([]model.Artist, 0, len(follows))
	for _, follow := range follows {
		artist, err := h.lookupArtist(ctx, follow.FollowedID)
		if err != nil {
			// An artist the catalog no longer returns is skipped, not fatal.
			logger.Warn("[Artists] catalog lookup failed",
				logger.String("artistId", follow.FollowedID), logger.ErrorField(err))
			continue
		}
		artist.IsFollowing = true
		followedAt := follow.FollowedAt
		artist.FollowedAt = &followedAt
		artists = append(artists, *artist)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"artists": artists})
}

// GetPopularArtistsHandler returns a random sample of popular artists.
// Auth is optional; when present, each artist carries the caller's follow
// state.
func (h *APIHandler) GetPopularArtistsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	userID, authed := h.bearerUserID(r)

	shuffled := make([]int64, len(popularArtistIDs))
	copy(shuffled, popularArtistIDs)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if limit > len(shuffled) {
		limit = len(shuffled)
	}

	ctx := r.Context()
	artists := make([]model.Artist, 0, limit)
	for _, id := range shuffled[:limit] {
		artistID := strconv.FormatInt(id, 10)
		artist, err := h.lookupArtist(ctx, artistID)
		if err != nil {
			logger.Warn("[Artists] catalog lookup failed",
				logger.String("artistId", artistID), logger.ErrorField(err))
			continue
		}

		if authed {
			following, err := h.followRepo.IsFollowing(userID, model.FollowTypeArtist, artistID)
			if err == nil {
				artist.IsFollowing = following
			}
		}
		artists = append(artists, *artist)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"artists": artists})
}

// FollowArtistHandler starts following an artist.
func (h *APIHandler) FollowArtistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	artistID := mux.Vars(r)["artistId"]

	follow := &model.Follow{
		FollowerID:           userID,
		FollowedType:         model.FollowTypeArtist,
		FollowedID:           artistID,
		NotificationsEnabled: true,
	}

	if err := h.followRepo.Add(follow); err != nil {
		if errors.Is(err, repository.ErrDuplicateFollow) {
			writeError(w, http.StatusBadRequest, "Already following this artist")
			return
		}
		logger.Error("[Artists] failed to follow", logger.String("artistId", artistID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to follow artist")
		return
	}

	logger.Info("[Artists] follow added", logger.Int64("userId", userID), logger.String("artistId", artistID))

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Artist followed successfully",
		"follow":  follow,
	})
}

// UnfollowArtistHandler stops following an artist.
func (h *APIHandler) UnfollowArtistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	artistID := mux.Vars(r)["artistId"]

	removed, err := h.followRepo.Remove(userID, model.FollowTypeArtist, artistID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not following this artist")
			return
		}
		logger.Error("[Artists] failed to unfollow", logger.String("artistId", artistID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to unfollow artist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Artist unfollowed successfully",
		"removedFollow": removed,
	})
}

// lookupArtist consults the Redis cache before the live catalog.
func (h *APIHandler) lookupArtist(ctx context.Context, artistID string) (*model.Artist, error) {
	var artist model.Artist
	if h.catalogCache.GetArtist(ctx, artistID, &artist) {
		return &artist, nil
	}

	fresh, err := h.catalog.GetArtist(ctx, artistID)
	if err != nil {
		return nil, err
	}
	h.catalogCache.SetArtist(ctx, artistID, fresh)
	return fresh, nil
}
