package db

import (
	"database/sql"
	"fmt"
	"log"

	"KaraFM/config"

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

// InitDB initializes the schema for the raw-SQL modules, creating tables if
// they don't exist. GORM-managed modules migrate separately via AutoMigrate.
func InitDB() error {
	if err := createUsersTable(); err != nil {
		return err
	}
	if err := createSongsTable(); err != nil {
		return err
	}
	if err := createRecordingsTables(); err != nil {
		return err
	}
	if err := createPlaylistTables(); err != nil {
		return err
	}
	log.Println("Database initialization completed.")
	return nil
}

func createUsersTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		avatar_url VARCHAR(512) NOT NULL DEFAULT '',
		bio TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`
	if _, err := DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

func createSongsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS songs (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		artist VARCHAR(255) NOT NULL DEFAULT '',
		duration DOUBLE NOT NULL DEFAULT 0,
		audio_url VARCHAR(512) NOT NULL DEFAULT '',
		lyrics MEDIUMTEXT,
		cover_image VARCHAR(512) NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_songs_artist (artist),
		INDEX idx_songs_title (title)
	);
	`
	if _, err := DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create songs table: %w", err)
	}
	return nil
}

func createRecordingsTables() error {
	recordings := `
	CREATE TABLE IF NOT EXISTS recordings (
		id CHAR(36) PRIMARY KEY,
		user_id BIGINT NOT NULL,
		song_id BIGINT NOT NULL,
		title VARCHAR(255) NOT NULL,
		audio_url VARCHAR(512) NOT NULL,
		duration DOUBLE NOT NULL DEFAULT 0,
		is_public TINYINT(1) NOT NULL DEFAULT 1,
		play_count BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_recordings_user (user_id, created_at),
		INDEX idx_recordings_song (song_id, is_public, created_at),
		INDEX idx_recordings_public (is_public, created_at)
	);
	`
	if _, err := DB.Exec(recordings); err != nil {
		return fmt.Errorf("failed to create recordings table: %w", err)
	}

	// Like membership table. Set semantics: the primary key makes
	// INSERT IGNORE the add-if-absent primitive and DELETE the
	// remove-if-present primitive, so toggles never lose updates.
	likes := `
	CREATE TABLE IF NOT EXISTS recording_likes (
		recording_id CHAR(36) NOT NULL,
		user_id BIGINT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (recording_id, user_id)
	);
	`
	if _, err := DB.Exec(likes); err != nil {
		return fmt.Errorf("failed to create recording_likes table: %w", err)
	}
	return nil
}

func createPlaylistTables() error {
	playlists := `
	CREATE TABLE IF NOT EXISTS playlists (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		is_public TINYINT(1) NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_playlists_user (user_id)
	);
	`
	if _, err := DB.Exec(playlists); err != nil {
		return fmt.Errorf("failed to create playlists table: %w", err)
	}

	playlistSongs := `
	CREATE TABLE IF NOT EXISTS playlist_songs (
		playlist_id BIGINT NOT NULL,
		song_id BIGINT NOT NULL,
		position INT NOT NULL DEFAULT 0,
		added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (playlist_id, song_id)
	);
	`
	if _, err := DB.Exec(playlistSongs); err != nil {
		return fmt.Errorf("failed to create playlist_songs table: %w", err)
	}
	return nil
}
