package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"tracktide/logger"
	"tracktide/model"
	"tracktide/repository"
	"tracktide/storage"

	"github.com/gorilla/mux"
)

// songRequest is the denormalized song payload shared by favorites, play
// history and playlist membership requests.
type songRequest struct {
	SongID     string `json:"songId"`
	SongTitle  string `json:"songTitle"`
	ArtistName string `json:"artistName"`
	AlbumName  string `json:"albumName"`
	Duration   int    `json:"duration"`
	Cover      string `json:"cover"`
	Preview    string `json:"preview"`
	Context    string `json:"context,omitempty"`
}

func (s *songRequest) complete() bool {
	return s.SongID != "" && s.SongTitle != "" && s.ArtistName != "" &&
		s.AlbumName != "" && s.Duration != 0 && s.Cover != "" && s.Preview != ""
}

// GetFavoritesHandler returns the user's liked songs.
func (h *APIHandler) GetFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	favorites, err := h.favoriteRepo.ListByUser(userID)
	if err != nil {
		logger.Error("[Favorites] failed to list", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get favorites")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"favorites": favorites})
}

// AddFavoriteHandler likes a song for the user.
func (h *APIHandler) AddFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req songRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.complete() {
		writeError(w, http.StatusBadRequest, "All song details are required")
		return
	}

	if req.Context == "" {
		req.Context = model.FavoriteContextSearch
	}
	if !model.ValidFavoriteContext(req.Context) {
		writeError(w, http.StatusBadRequest, "Invalid favorite context")
		return
	}

	fav := &model.Favorite{
		UserID:     userID,
		SongID:     req.SongID,
		SongTitle:  req.SongTitle,
		ArtistName: req.ArtistName,
		AlbumName:  req.AlbumName,
		Duration:   req.Duration,
		Cover:      req.Cover,
		Preview:    req.Preview,
		Context:    req.Context,
	}

	id, err := h.favoriteRepo.Add(fav)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateFavorite) {
			writeError(w, http.StatusBadRequest, "Song is already in favorites")
			return
		}
		logger.Error("[Favorites] failed to add", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to add song to favorites")
		return
	}
	fav.ID = id
	fav.LikedAt = time.Now()

	// Mirror the cover into object storage in the background.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		storage.MirrorCover(ctx, h.cfg, fav.SongID, fav.Cover)
	}()

	logger.Info("[Favorites] song added",
		logger.String("title", fav.SongTitle), logger.String("artist", fav.ArtistName))

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Song added to favorites successfully",
		"favorite": fav,
	})
}

// RemoveFavoriteHandler removes a liked song.
func (h *APIHandler) RemoveFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	songID := mux.Vars(r)["songId"]

	removed, err := h.favoriteRepo.Remove(userID, songID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Song not found in favorites")
			return
		}
		logger.Error("[Favorites] failed to remove", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to remove song from favorites")
		return
	}

	logger.Info("[Favorites] song removed", logger.String("title", removed.SongTitle))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Song removed from favorites successfully",
		"removedSong": removed,
	})
}
