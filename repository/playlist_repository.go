package repository

import (
	"database/sql"
	"fmt"
	"time"

	"KaraFM/db"
	"KaraFM/model"
)

// PlaylistRepository defines the interface for playlist operations.
type PlaylistRepository interface {
	CreatePlaylist(p *model.Playlist) (int64, error)
	GetPlaylistByID(id int64) (*model.Playlist, error)
	ListByUser(userID int64) ([]*model.Playlist, error)
	UpdatePlaylist(p *model.Playlist) error
	DeletePlaylist(id int64) error
	AddSong(playlistID, songID int64) error
	RemoveSong(playlistID, songID int64) error
	ListSongs(playlistID int64) ([]*model.Song, error)
}

// mysqlPlaylistRepository implements PlaylistRepository for MySQL.
type mysqlPlaylistRepository struct {
	DB *sql.DB
}

// NewMySQLPlaylistRepository creates a new instance of mysqlPlaylistRepository.
func NewMySQLPlaylistRepository(database *sql.DB) PlaylistRepository {
	if database == nil {
		database = db.DB
	}
	return &mysqlPlaylistRepository{DB: database}
}

// CreatePlaylist adds a new playlist.
func (r *mysqlPlaylistRepository) CreatePlaylist(p *model.Playlist) (int64, error) {
	query := `INSERT INTO playlists (user_id, name, description, is_public, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	res, err := r.DB.Exec(query, p.UserID, p.Name, p.Description, p.IsPublic, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreatePlaylist: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreatePlaylist: %w", err)
	}
	return id, nil
}

func scanPlaylist(scan func(dest ...interface{}) error) (*model.Playlist, error) {
	p := &model.Playlist{}
	var description sql.NullString
	err := scan(&p.ID, &p.UserID, &p.Name, &description, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	return p, nil
}

const playlistColumns = `id, user_id, name, description, is_public, created_at, updated_at`

// GetPlaylistByID retrieves a playlist. Returns (nil, nil) when absent.
func (r *mysqlPlaylistRepository) GetPlaylistByID(id int64) (*model.Playlist, error) {
	row := r.DB.QueryRow(`SELECT `+playlistColumns+` FROM playlists WHERE id = ?`, id)
	p, err := scanPlaylist(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan playlist by ID %d: %w", id, err)
	}
	return p, nil
}

// ListByUser returns all playlists owned by a user, newest first.
func (r *mysqlPlaylistRepository) ListByUser(userID int64) ([]*model.Playlist, error) {
	rows, err := r.DB.Query(`SELECT `+playlistColumns+` FROM playlists WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists for user %d: %w", userID, err)
	}
	defer rows.Close()

	playlists := make([]*model.Playlist, 0)
	for rows.Next() {
		p, err := scanPlaylist(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist row: %w", err)
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// UpdatePlaylist updates name, description and visibility.
func (r *mysqlPlaylistRepository) UpdatePlaylist(p *model.Playlist) error {
	query := `UPDATE playlists SET name = ?, description = ?, is_public = ?, updated_at = ? WHERE id = ?`
	if _, err := r.DB.Exec(query, p.Name, p.Description, p.IsPublic, time.Now(), p.ID); err != nil {
		return fmt.Errorf("failed to execute UpdatePlaylist for playlist %d: %w", p.ID, err)
	}
	return nil
}

// DeletePlaylist removes the playlist and its memberships.
func (r *mysqlPlaylistRepository) DeletePlaylist(id int64) error {
	if _, err := r.DB.Exec(`DELETE FROM playlist_songs WHERE playlist_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete playlist songs for playlist %d: %w", id, err)
	}
	if _, err := r.DB.Exec(`DELETE FROM playlists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete playlist %d: %w", id, err)
	}
	return nil
}

// AddSong appends a song at the end of the playlist. Adding a song already
// present is a no-op.
func (r *mysqlPlaylistRepository) AddSong(playlistID, songID int64) error {
	query := `INSERT IGNORE INTO playlist_songs (playlist_id, song_id, position, added_at)
	           SELECT ?, ?, COALESCE(MAX(position), 0) + 1, ? FROM playlist_songs WHERE playlist_id = ?`
	if _, err := r.DB.Exec(query, playlistID, songID, time.Now(), playlistID); err != nil {
		return fmt.Errorf("failed to add song %d to playlist %d: %w", songID, playlistID, err)
	}
	return nil
}

// RemoveSong drops a song from the playlist.
func (r *mysqlPlaylistRepository) RemoveSong(playlistID, songID int64) error {
	if _, err := r.DB.Exec(`DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?`, playlistID, songID); err != nil {
		return fmt.Errorf("failed to remove song %d from playlist %d: %w", songID, playlistID, err)
	}
	return nil
}

// ListSongs returns the playlist's songs in position order.
func (r *mysqlPlaylistRepository) ListSongs(playlistID int64) ([]*model.Song, error) {
	query := `SELECT s.id, s.title, s.artist, s.duration, s.audio_url, s.lyrics, s.cover_image, s.created_at, s.updated_at
	           FROM playlist_songs ps
	           JOIN songs s ON s.id = ps.song_id
	           WHERE ps.playlist_id = ?
	           ORDER BY ps.position ASC`
	rows, err := r.DB.Query(query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs for playlist %d: %w", playlistID, err)
	}
	defer rows.Close()

	songs := make([]*model.Song, 0)
	for rows.Next() {
		song, err := scanSong(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist song row: %w", err)
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}
