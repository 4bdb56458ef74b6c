package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tracktide/core/auth"
	"tracktide/logger"
	"tracktide/model"
	"tracktide/repository"
)

type contextKey string

const userIDKey contextKey = "userID"

// SignupRequest represents the registration request body.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the shared shape of signup/login responses.
type authResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

// SignupHandler handles user registration requests.
func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("[Signup] failed to hash password", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
	}

	userID, err := h.userRepo.CreateUser(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			logger.Warn("[Signup] user already exists", logger.String("email", req.Email))
			writeError(w, http.StatusBadRequest, "User already exists")
			return
		}
		logger.Error("[Signup] failed to create user", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	user.ID = userID

	token, err := auth.GenerateToken(h.cfg.JWTSecret, userID)
	if err != nil {
		logger.Error("[Signup] failed to generate token", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	logger.Info("[Signup] new user registered", logger.String("email", req.Email))

	writeJSON(w, http.StatusCreated, authResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    user,
	})
}

// LoginHandler handles user login requests.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.userRepo.GetUserByEmail(req.Email)
	if err != nil {
		logger.Error("[Login] failed to query user", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		logger.Warn("[Login] unknown email", logger.String("email", req.Email))
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Warn("[Login] password mismatch", logger.String("email", req.Email))
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := time.Now()
	if err := h.userRepo.UpdateLastLogin(user.ID, now); err != nil {
		// Login still succeeds; the timestamp is best effort.
		logger.Warn("[Login] failed to update last login", logger.ErrorField(err))
	}
	user.LastLoginAt = &now

	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID)
	if err != nil {
		logger.Error("[Login] failed to generate token", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	logger.Info("[Login] user logged in", logger.String("email", req.Email))

	writeJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   token,
		User:    user,
	})
}

// AuthMiddleware checks for a valid bearer token and injects the user id
// into the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := h.bearerUserID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// bearerUserID extracts and validates the Authorization header. The second
// return value is false when the header is missing or the token invalid.
func (h *APIHandler) bearerUserID(r *http.Request) (int64, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	claims, err := auth.ParseToken(h.cfg.JWTSecret, parts[1])
	if err != nil {
		return 0, false
	}
	return claims.UserID, true
}

// GetUserIDFromContext extracts the user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(userIDKey).(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}
