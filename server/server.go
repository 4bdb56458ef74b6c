package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tracktide/cache"
	"tracktide/config"
	"tracktide/core/catalog"
	"tracktide/db"
	"tracktide/logger"
	"tracktide/model"
	"tracktide/repository"
	"tracktide/storage"

	"github.com/gorilla/mux"
	"github.com/minio/minio-go/v7"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.InfoLevel,
		OutputPath: "logs/tracktide.log",
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("Failed to initialize MinIO", logger.ErrorField(err))
	}

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()
	logger.Info("Successfully connected to Redis")

	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database schema", logger.ErrorField(err))
	}
	if err := db.AutoMigrateModels(&model.Playlist{}, &model.PlaylistSong{}, &model.Follow{}); err != nil {
		logger.Fatal("Failed to migrate models", logger.ErrorField(err))
	}

	userRepo := repository.NewMySQLUserRepository(db.DB)
	favoriteRepo := repository.NewMySQLFavoriteRepository(db.DB)
	historyRepo := repository.NewMySQLHistoryRepository(db.DB)
	searchRepo := repository.NewMySQLSearchHistoryRepository(db.DB)
	playlistRepo := repository.NewGormPlaylistRepository(db.GormDB)
	followRepo := repository.NewGormFollowRepository(db.GormDB)

	catalogClient := catalog.NewClient(cfg.CatalogBaseURL)
	catalogCache := cache.NewCatalogCache(time.Duration(cfg.CatalogCacheTTLSeconds) * time.Second)

	apiHandler := NewAPIHandler(userRepo, favoriteRepo, historyRepo, searchRepo,
		playlistRepo, followRepo, catalogClient, catalogCache, cfg)

	router := mux.NewRouter()
	router.Use(CORSMiddleware)
	router.Use(RequestIDMiddleware)

	// Auth
	router.HandleFunc("/api/auth/signup", apiHandler.SignupHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)

	// Catalog search. Auth is optional; a bearer token also records search history.
	router.HandleFunc("/api/songs/search", apiHandler.SearchSongsHandler).Methods(http.MethodGet)

	// Search history
	router.HandleFunc("/api/search/history", apiHandler.AuthMiddleware(apiHandler.GetSearchHistoryHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/search/history/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteSearchHistoryHandler)).Methods(http.MethodDelete)

	// Favorites
	router.HandleFunc("/api/favorites", apiHandler.AuthMiddleware(apiHandler.GetFavoritesHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/favorites", apiHandler.AuthMiddleware(apiHandler.AddFavoriteHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/favorites/{songId}", apiHandler.AuthMiddleware(apiHandler.RemoveFavoriteHandler)).Methods(http.MethodDelete)

	// Play history
	router.HandleFunc("/api/history", apiHandler.AuthMiddleware(apiHandler.GetPlayHistoryHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/history", apiHandler.AuthMiddleware(apiHandler.RecordPlayHandler)).Methods(http.MethodPost)

	// Playlists
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.GetPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.GetPlaylistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.UpdatePlaylistHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{id}/songs", apiHandler.AuthMiddleware(apiHandler.AddPlaylistSongHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}/songs/{songId}", apiHandler.AuthMiddleware(apiHandler.RemovePlaylistSongHandler)).Methods(http.MethodDelete)

	// Artists
	router.HandleFunc("/api/artists/following", apiHandler.AuthMiddleware(apiHandler.GetFollowingArtistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/artists/popular", apiHandler.GetPopularArtistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/artists/{artistId}/follow", apiHandler.AuthMiddleware(apiHandler.FollowArtistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/artists/{artistId}/follow", apiHandler.AuthMiddleware(apiHandler.UnfollowArtistHandler)).Methods(http.MethodDelete)

	// Health
	router.HandleFunc("/api/health", apiHandler.HealthHandler).Methods(http.MethodGet)
	router.HandleFunc("/", apiHandler.WelcomeHandler).Methods(http.MethodGet)

	// Mirrored cover art served out of MinIO.
	router.PathPrefix("/static/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		objectPath := strings.TrimPrefix(r.URL.Path, "/static/")
		client := storage.GetMinioClient()
		if client == nil {
			http.Error(w, "MinIO client not available", http.StatusInternalServerError)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		object, err := client.GetObject(ctx, cfg.MinioBucket, objectPath, minio.GetObjectOptions{})
		if err != nil {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		defer object.Close()

		contentType := "application/octet-stream"
		if strings.HasPrefix(objectPath, "covers/") {
			contentType = "image/jpeg"
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Cache-Control", "public, max-age=31536000")

		if _, err := io.Copy(w, object); err != nil {
			logger.Warn("Error serving file from MinIO", logger.ErrorField(err))
		}
	})

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}
