package db

import (
	"database/sql"
	"fmt"
	"log"

	"tracktide/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// InitDB initializes the database schema, creating tables if they don't exist.
// Playlist and follow tables are migrated separately through GORM.
func InitDB() error {
	if err := createUsersTable(); err != nil {
		return err
	}
	if err := createFavoritesTable(); err != nil {
		return err
	}
	if err := createPlayHistoryTable(); err != nil {
		return err
	}
	if err := createSearchHistoryTable(); err != nil {
		return err
	}

	log.Println("Database initialization completed.")
	return nil
}

func createUsersTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_login_at TIMESTAMP NULL
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

func createFavoritesTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS favorites (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		song_id VARCHAR(64) NOT NULL,
		song_title VARCHAR(255) NOT NULL,
		artist_name VARCHAR(255) NOT NULL,
		album_name VARCHAR(255) NOT NULL,
		duration INT NOT NULL,
		cover VARCHAR(767) NOT NULL,
		preview VARCHAR(767) NOT NULL,
		liked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		context VARCHAR(20) NOT NULL DEFAULT 'search',
		CONSTRAINT fk_user_favorites FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT uq_user_song UNIQUE (user_id, song_id),
		INDEX idx_favorites_liked (user_id, liked_at)
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create favorites table: %w", err)
	}
	return nil
}

func createPlayHistoryTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS play_history (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		song_id VARCHAR(64) NOT NULL,
		song_title VARCHAR(255) NOT NULL,
		artist_name VARCHAR(255) NOT NULL,
		album_name VARCHAR(255) NOT NULL,
		duration INT NOT NULL,
		cover VARCHAR(767) NOT NULL,
		preview VARCHAR(767) NOT NULL,
		played_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		CONSTRAINT fk_user_history FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT uq_history_user_song UNIQUE (user_id, song_id),
		INDEX idx_history_played (user_id, played_at)
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create play_history table: %w", err)
	}
	return nil
}

func createSearchHistoryTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS search_history (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		query VARCHAR(255) NOT NULL,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_user_search FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		INDEX idx_search_timestamp (user_id, timestamp)
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create search_history table: %w", err)
	}
	return nil
}
