package server

import (
	"net/http"
	"time"

	"tracktide/db"
)

// HealthHandler reports service and database status.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	database := "connected"
	if db.DB == nil {
		database = "disconnected"
	} else if err := db.DB.Ping(); err != nil {
		database = "disconnected"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "OK",
		"message":   "TrackTide server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  database,
	})
}

// WelcomeHandler answers the API root.
func (h *APIHandler) WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Welcome to the TrackTide API",
	})
}
