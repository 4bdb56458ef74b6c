package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"tracktide/logger"
	"tracktide/model"
	"tracktide/repository"

	"github.com/gorilla/mux"
)

// createPlaylistRequest represents the playlist creation body.
type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
}

// updatePlaylistRequest carries partial playlist field updates. Pointers
// distinguish "absent" from zero values.
type updatePlaylistRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"isPublic"`
}

// GetPlaylistsHandler returns the user's playlists with derived aggregates.
func (h *APIHandler) GetPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	playlists, err := h.playlistRepo.ListByOwner(userID)
	if err != nil {
		logger.Error("[Playlists] failed to list", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get playlists")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"playlists": playlists})
}

// CreatePlaylistHandler creates a new playlist for the user.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req createPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Playlist name is required")
		return
	}

	pl := &model.Playlist{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		OwnerID:     userID,
		IsPublic:    req.IsPublic,
	}

	if err := h.playlistRepo.Create(pl); err != nil {
		logger.Error("[Playlists] failed to create", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to create playlist")
		return
	}

	logger.Info("[Playlists] created", logger.String("name", pl.Name), logger.Int64("userId", userID))

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Playlist created successfully",
		"playlist": pl,
	})
}

// GetPlaylistHandler returns one playlist with its songs.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, playlistID, ok := h.playlistRequest(w, r)
	if !ok {
		return
	}

	pl, songs, err := h.playlistRepo.Get(userID, playlistID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Playlist not found")
			return
		}
		logger.Error("[Playlists] failed to get", logger.Int64("playlistId", playlistID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get playlist details")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"playlist": pl,
		"songs":    songs,
	})
}

// UpdatePlaylistHandler applies partial field changes.
func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, playlistID, ok := h.playlistRequest(w, r)
	if !ok {
		return
	}

	var req updatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "Playlist name is required")
			return
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.IsPublic != nil {
		fields["is_public"] = *req.IsPublic
	}

	pl, err := h.playlistRepo.Update(userID, playlistID, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Playlist not found")
			return
		}
		logger.Error("[Playlists] failed to update", logger.Int64("playlistId", playlistID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to update playlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Playlist updated successfully",
		"playlist": pl,
	})
}

// DeletePlaylistHandler deletes a playlist and all of its songs.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, playlistID, ok := h.playlistRequest(w, r)
	if !ok {
		return
	}

	pl, err := h.playlistRepo.Delete(userID, playlistID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Playlist not found")
			return
		}
		logger.Error("[Playlists] failed to delete", logger.Int64("playlistId", playlistID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete playlist")
		return
	}

	logger.Info("[Playlists] deleted", logger.String("name", pl.Name), logger.Int64("userId", userID))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "Playlist deleted successfully",
		"deletedPlaylist": pl,
	})
}

// AddPlaylistSongHandler appends a song to a playlist.
func (h *APIHandler) AddPlaylistSongHandler(w http.ResponseWriter, r *http.Request) {
	userID, playlistID, ok := h.playlistRequest(w, r)
	if !ok {
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

	song := &model.PlaylistSong{
		PlaylistID: playlistID,
		SongID:     req.SongID,
		SongTitle:  req.SongTitle,
		ArtistName: req.ArtistName,
		AlbumName:  req.AlbumName,
		Duration:   req.Duration,
		Cover:      req.Cover,
		Preview:    req.Preview,
		AddedBy:    userID,
	}

	if err := h.playlistRepo.AddSong(userID, song); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "Playlist not found")
		case errors.Is(err, repository.ErrDuplicateSong):
			writeError(w, http.StatusBadRequest, "Song is already in this playlist")
		default:
			logger.Error("[Playlists] failed to add song", logger.Int64("playlistId", playlistID), logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "Failed to add song to playlist")
		}
		return
	}

	logger.Info("[Playlists] song added",
		logger.String("title", song.SongTitle), logger.Int64("playlistId", playlistID))

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "Song added to playlist successfully",
		"playlistSong": song,
	})
}

// RemovePlaylistSongHandler removes a song from a playlist. Remaining
// positions are not renumbered.
func (h *APIHandler) RemovePlaylistSongHandler(w http.ResponseWriter, r *http.Request) {
	userID, playlistID, ok := h.playlistRequest(w, r)
	if !ok {
		return
	}

	songID := mux.Vars(r)["songId"]

	removed, err := h.playlistRepo.RemoveSong(userID, playlistID, songID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Song not found in playlist")
			return
		}
		logger.Error("[Playlists] failed to remove song", logger.Int64("playlistId", playlistID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to remove song from playlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Song removed from playlist successfully",
		"removedSong": removed,
	})
}

// playlistRequest resolves the authenticated user and the playlist id path
// variable, answering the error response itself when either is missing.
func (h *APIHandler) playlistRequest(w http.ResponseWriter, r *http.Request) (userID, playlistID int64, ok bool) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return 0, 0, false
	}

	playlistID, err = strconv.ParseInt(mux.Vars(r)["playlistId"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid playlist id")
		return 0, 0, false
	}
	return userID, playlistID, true
}
