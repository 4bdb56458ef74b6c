package server

import (
	"net/http"
	"strconv"

	"tracktide/core/catalog"
	"tracktide/logger"
	"tracktide/repository"

	"github.com/gorilla/mux"
)

// SearchSongsHandler proxies the catalog search. Auth is optional: with a
// valid bearer token the query is also recorded in the user's search
// history.
func (h *APIHandler) SearchSongsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	ctx := r.Context()

	var result catalog.SearchResult
	if !h.catalogCache.GetSearch(ctx, query, &result) {
		fresh, err := h.catalog.SearchSongs(ctx, query)
		if err != nil {
			logger.Error("[Search] catalog search failed", logger.String("query", query), logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "Failed to search songs")
			return
		}
		result = *fresh
		h.catalogCache.SetSearch(ctx, query, result)
	}

	// Record the query when the caller is authenticated. Failure here never
	// fails the search.
	if userID, ok := h.bearerUserID(r); ok {
		if err := h.searchRepo.Upsert(userID, query); err != nil {
			logger.Warn("[Search] failed to record search history",
				logger.Int64("userId", userID), logger.ErrorField(err))
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// GetSearchHistoryHandler returns the user's most recent queries.
func (h *APIHandler) GetSearchHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	history, err := h.searchRepo.ListByUser(userID)
	if err != nil {
		logger.Error("[SearchHistory] failed to list", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get search history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

// DeleteSearchHistoryHandler removes one search history entry.
func (h *APIHandler) DeleteSearchHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	recordID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid history id")
		return
	}

	if err := h.searchRepo.Delete(userID, recordID); err != nil {
		if err == repository.ErrNotFound {
			writeError(w, http.StatusNotFound, "Search history item not found")
			return
		}
		logger.Error("[SearchHistory] failed to delete", logger.Int64("recordId", recordID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete search history item")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Search history item deleted successfully"})
}
