package repository

import "errors"

// Sentinel errors shared by all repositories. Handlers map these onto HTTP
// status codes with errors.Is.
var (
	ErrDuplicateUser     = errors.New("user already exists")
	ErrDuplicateFavorite = errors.New("song is already in favorites")
	ErrDuplicateSong     = errors.New("song is already in this playlist")
	ErrDuplicateFollow   = errors.New("already following")
	ErrNotFound          = errors.New("record not found")
)
