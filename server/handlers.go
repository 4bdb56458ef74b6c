package server

import (
	"encoding/json"
	"net/http"

	"tracktide/cache"
	"tracktide/config"
	"tracktide/core/catalog"
	"tracktide/logger"
	"tracktide/repository"

	"github.com/google/uuid"
)

// APIHandler bundles the dependencies shared by all HTTP handlers.
type APIHandler struct {
	userRepo     repository.UserRepository
	favoriteRepo repository.FavoriteRepository
	historyRepo  repository.HistoryRepository
	searchRepo   repository.SearchHistoryRepository
	playlistRepo repository.PlaylistRepository
	followRepo   repository.FollowRepository
	catalog      *catalog.Client
	catalogCache *cache.CatalogCache
	cfg          *config.Config
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	favoriteRepo repository.FavoriteRepository,
	historyRepo repository.HistoryRepository,
	searchRepo repository.SearchHistoryRepository,
	playlistRepo repository.PlaylistRepository,
	followRepo repository.FollowRepository,
	catalogClient *catalog.Client,
	catalogCache *cache.CatalogCache,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:     userRepo,
		favoriteRepo: favoriteRepo,
		historyRepo:  historyRepo,
		searchRepo:   searchRepo,
		playlistRepo: playlistRepo,
		followRepo:   followRepo,
		catalog:      catalogClient,
		catalogCache: catalogCache,
		cfg:          cfg,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("[HTTP] failed to encode response", logger.ErrorField(err))
	}
}

// writeError writes the API's JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// RequestIDMiddleware tags every request with an id for log correlation.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		logger.Debug("[HTTP] request",
			logger.String("requestId", reqID),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path))

		next.ServeHTTP(w, r)
	})
}

// CORSMiddleware allows the SPA frontend to call the API cross-origin.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
