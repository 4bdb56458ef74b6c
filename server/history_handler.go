package server

import (
	"encoding/json"
	"net/http"

	"tracktide/logger"
	"tracktide/model"
)

// GetPlayHistoryHandler returns the user's recent plays.
func (h *APIHandler) GetPlayHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	history, err := h.historyRepo.ListByUser(userID)
	if err != nil {
		logger.Error("[History] failed to list", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get play history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"playHistory": history})
}

// RecordPlayHandler upserts a play record by (user, song). A repeat play
// answers 200 with the refreshed record; a first play answers 201.
func (h *APIHandler) RecordPlayHandler(w http.ResponseWriter, r *http.Request) {
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

	rec := &model.PlayRecord{
		UserID:     userID,
		SongID:     req.SongID,
		SongTitle:  req.SongTitle,
		ArtistName: req.ArtistName,
		AlbumName:  req.AlbumName,
		Duration:   req.Duration,
		Cover:      req.Cover,
		Preview:    req.Preview,
	}

	saved, refreshed, err := h.historyRepo.Upsert(rec)
	if err != nil {
		logger.Error("[History] failed to record play", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to add song to play history")
		return
	}

	if refreshed {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":    "Song updated in play history successfully",
			"playRecord": saved,
		})
		return
	}

	logger.Info("[History] play recorded",
		logger.String("title", saved.SongTitle), logger.String("artist", saved.ArtistName))

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Song added to play history successfully",
		"playRecord": saved,
	})
}
