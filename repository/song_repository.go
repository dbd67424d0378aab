package repository

import (
	"database/sql"
	"fmt"
	"time"

	"KaraFM/db"
	"KaraFM/model"
)

// SongRepository defines the interface for song catalog operations.
type SongRepository interface {
	CreateSong(song *model.Song) (int64, error)
	GetSongByID(id int64) (*model.Song, error)
	ListSongs(limit, offset int) ([]*model.Song, error)
	SearchSongs(query string, limit int) ([]*model.Song, error)
	UpdateSong(song *model.Song) error
	UpdateLyrics(songID int64, lyricsText string) error
	DeleteSong(id int64) error
	AllFileURLs() ([]string, error)
}

// mysqlSongRepository implements SongRepository for MySQL.
type mysqlSongRepository struct {
	DB *sql.DB
}

// NewMySQLSongRepository creates a new instance of mysqlSongRepository.
func NewMySQLSongRepository(database *sql.DB) SongRepository {
	if database == nil {
		database = db.DB
	}
	return &mysqlSongRepository{DB: database}
}

const songColumns = `id, title, artist, duration, audio_url, lyrics, cover_image, created_at, updated_at`

// CreateSong adds a new song to the catalog.
func (r *mysqlSongRepository) CreateSong(song *model.Song) (int64, error) {
	query := `INSERT INTO songs (title, artist, duration, audio_url, lyrics, cover_image, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.DB.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateSong: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	res, err := stmt.Exec(song.Title, song.Artist, song.Duration, song.AudioURL, song.Lyrics, song.CoverImage, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateSong: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateSong: %w", err)
	}
	return id, nil
}

func scanSong(scan func(dest ...interface{}) error) (*model.Song, error) {
	song := &model.Song{}
	var lyricsText sql.NullString
	err := scan(&song.ID, &song.Title, &song.Artist, &song.Duration, &song.AudioURL, &lyricsText, &song.CoverImage, &song.CreatedAt, &song.UpdatedAt)
	if err != nil {
		return nil, err
	}
	song.Lyrics = lyricsText.String
	return song, nil
}

// GetSongByID retrieves a song by its ID. Returns (nil, nil) when absent.
func (r *mysqlSongRepository) GetSongByID(id int64) (*model.Song, error) {
	row := r.DB.QueryRow(`SELECT `+songColumns+` FROM songs WHERE id = ?`, id)
	song, err := scanSong(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan song by ID %d: %w", id, err)
	}
	return song, nil
}

func (r *mysqlSongRepository) querySongs(query string, args ...interface{}) ([]*model.Song, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	songs := make([]*model.Song, 0)
	for rows.Next() {
		song, err := scanSong(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song row: %w", err)
		}
		songs = append(songs, song)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during song rows iteration: %w", err)
	}
	return songs, nil
}

// ListSongs retrieves songs newest first.
func (r *mysqlSongRepository) ListSongs(limit, offset int) ([]*model.Song, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return r.querySongs(`SELECT `+songColumns+` FROM songs ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
}

// SearchSongs matches title or artist by substring. Relevance ranking is out
// of scope; ordering is newest first.
func (r *mysqlSongRepository) SearchSongs(query string, limit int) ([]*model.Song, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	like := "%" + query + "%"
	return r.querySongs(`SELECT `+songColumns+` FROM songs WHERE title LIKE ? OR artist LIKE ? ORDER BY created_at DESC LIMIT ?`, like, like, limit)
}

// UpdateSong updates the song's metadata fields.
func (r *mysqlSongRepository) UpdateSong(song *model.Song) error {
	query := `UPDATE songs SET title = ?, artist = ?, duration = ?, audio_url = ?, cover_image = ?, updated_at = ? WHERE id = ?`
	if _, err := r.DB.Exec(query, song.Title, song.Artist, song.Duration, song.AudioURL, song.CoverImage, time.Now(), song.ID); err != nil {
		return fmt.Errorf("failed to execute UpdateSong for song %d: %w", song.ID, err)
	}
	return nil
}

// UpdateLyrics replaces the stored lyrics text.
func (r *mysqlSongRepository) UpdateLyrics(songID int64, lyricsText string) error {
	query := `UPDATE songs SET lyrics = ?, updated_at = ? WHERE id = ?`
	if _, err := r.DB.Exec(query, lyricsText, time.Now(), songID); err != nil {
		return fmt.Errorf("failed to execute UpdateLyrics for song %d: %w", songID, err)
	}
	return nil
}

// DeleteSong removes the song row.
func (r *mysqlSongRepository) DeleteSong(id int64) error {
	if _, err := r.DB.Exec(`DELETE FROM songs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to execute DeleteSong for song %d: %w", id, err)
	}
	return nil
}

// AllFileURLs returns every audio and cover URL referenced by the catalog.
// Consumed by the orphan sweep.
func (r *mysqlSongRepository) AllFileURLs() ([]string, error) {
	rows, err := r.DB.Query(`SELECT audio_url, cover_image FROM songs`)
	if err != nil {
		return nil, fmt.Errorf("failed to query song file urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var audioURL, coverImage string
		if err := rows.Scan(&audioURL, &coverImage); err != nil {
			return nil, fmt.Errorf("failed to scan song file urls: %w", err)
		}
		if audioURL != "" {
			urls = append(urls, audioURL)
		}
		if coverImage != "" {
			urls = append(urls, coverImage)
		}
	}
	return urls, rows.Err()
}
