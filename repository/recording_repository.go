package repository

import (
	"database/sql"
	"fmt"

	"KaraFM/db"
	"KaraFM/model"
)

// PublicFeedLimit bounds the public recordings feed page.
const PublicFeedLimit = 50

// RecordingRepository defines the interface for karaoke recording
// operations. Like toggles and play counts are single-statement updates so
// concurrent requests never lose writes.
type RecordingRepository interface {
	CreateRecording(rec *model.Recording) error
	GetRecordingByID(id string, viewerID int64) (*model.Recording, error)
	ListByUser(userID int64) ([]*model.Recording, error)
	ListPublic(viewerID int64) ([]*model.Recording, error)
	ListPublicBySong(songID, viewerID int64) ([]*model.Recording, error)
	ToggleLike(recordingID string, userID int64) (likes int64, isLiked bool, err error)
	IncrementPlayCount(recordingID string) (int64, error)
	DeleteRecording(id string) error
	AllFileURLs() ([]string, error)
}

// mysqlRecordingRepository implements RecordingRepository for MySQL.
type mysqlRecordingRepository struct {
	DB *sql.DB
}

// NewMySQLRecordingRepository creates a new instance of mysqlRecordingRepository.
func NewMySQLRecordingRepository(database *sql.DB) RecordingRepository {
	if database == nil {
		database = db.DB
	}
	return &mysqlRecordingRepository{DB: database}
}

// CreateRecording inserts the recording document. Called only after the
// audio file write succeeded; there is no draft state.
func (r *mysqlRecordingRepository) CreateRecording(rec *model.Recording) error {
	query := `INSERT INTO recordings (id, user_id, song_id, title, audio_url, duration, is_public, play_count, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`
	stmt, err := r.DB.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for CreateRecording: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(rec.ID, rec.UserID, rec.SongID, rec.Title, rec.AudioURL, rec.Duration, rec.IsPublic, rec.CreatedAt); err != nil {
		return fmt.Errorf("failed to execute CreateRecording: %w", err)
	}
	return nil
}

// joinedRecordingQuery selects recordings with song and uploader summaries,
// the like count, and whether viewerID already liked each row.
const joinedRecordingQuery = `
	SELECT r.id, r.user_id, r.song_id, r.title, r.audio_url, r.duration, r.is_public, r.play_count, r.created_at,
	       s.title, s.artist, s.cover_image,
	       u.username,
	       (SELECT COUNT(*) FROM recording_likes l WHERE l.recording_id = r.id) AS likes,
	       EXISTS(SELECT 1 FROM recording_likes l WHERE l.recording_id = r.id AND l.user_id = ?) AS is_liked
	FROM recordings r
	JOIN songs s ON s.id = r.song_id
	JOIN users u ON u.id = r.user_id`

func (r *mysqlRecordingRepository) queryJoined(where string, args ...interface{}) ([]*model.Recording, error) {
	rows, err := r.DB.Query(joinedRecordingQuery+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recordings: %w", err)
	}
	defer rows.Close()

	recs := make([]*model.Recording, 0)
	for rows.Next() {
		rec := &model.Recording{Song: &model.SongSummary{}, User: &model.UserSummary{}}
		err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.SongID, &rec.Title, &rec.AudioURL, &rec.Duration, &rec.IsPublic, &rec.PlayCount, &rec.CreatedAt,
			&rec.Song.Title, &rec.Song.Artist, &rec.Song.CoverImage,
			&rec.User.Username,
			&rec.Likes, &rec.IsLiked,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recording row: %w", err)
		}
		rec.Song.ID = rec.SongID
		rec.User.ID = rec.UserID
		recs = append(recs, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during recording rows iteration: %w", err)
	}
	return recs, nil
}

// GetRecordingByID retrieves one recording with joins. Returns (nil, nil)
// when absent.
func (r *mysqlRecordingRepository) GetRecordingByID(id string, viewerID int64) (*model.Recording, error) {
	recs, err := r.queryJoined(` WHERE r.id = ?`, viewerID, id)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

// ListByUser returns all of a user's recordings, newest first.
func (r *mysqlRecordingRepository) ListByUser(userID int64) ([]*model.Recording, error) {
	return r.queryJoined(` WHERE r.user_id = ? ORDER BY r.created_at DESC`, userID, userID)
}

// ListPublic returns the public feed across all users, newest first, bounded
// to one page.
func (r *mysqlRecordingRepository) ListPublic(viewerID int64) ([]*model.Recording, error) {
	return r.queryJoined(` WHERE r.is_public = 1 ORDER BY r.created_at DESC LIMIT ?`, viewerID, PublicFeedLimit)
}

// ListPublicBySong returns public recordings for one song, newest first.
func (r *mysqlRecordingRepository) ListPublicBySong(songID, viewerID int64) ([]*model.Recording, error) {
	return r.queryJoined(` WHERE r.song_id = ? AND r.is_public = 1 ORDER BY r.created_at DESC`, viewerID, songID)
}

// ToggleLike flips the caller's membership in the like set. INSERT IGNORE is
// the add-if-absent primitive; when it affects no row the membership already
// existed and is removed instead. No read-modify-write anywhere.
func (r *mysqlRecordingRepository) ToggleLike(recordingID string, userID int64) (int64, bool, error) {
	res, err := r.DB.Exec(`INSERT IGNORE INTO recording_likes (recording_id, user_id) VALUES (?, ?)`, recordingID, userID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to add like for recording %s: %w", recordingID, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read like insert result: %w", err)
	}

	isLiked := inserted == 1
	if !isLiked {
		if _, err := r.DB.Exec(`DELETE FROM recording_likes WHERE recording_id = ? AND user_id = ?`, recordingID, userID); err != nil {
			return 0, false, fmt.Errorf("failed to remove like for recording %s: %w", recordingID, err)
		}
	}

	var likes int64
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM recording_likes WHERE recording_id = ?`, recordingID).Scan(&likes); err != nil {
		return 0, false, fmt.Errorf("failed to count likes for recording %s: %w", recordingID, err)
	}
	return likes, isLiked, nil
}

// IncrementPlayCount bumps the counter by one and returns the new value.
// The UPDATE is atomic at the database; N concurrent calls from zero land on
// exactly N.
func (r *mysqlRecordingRepository) IncrementPlayCount(recordingID string) (int64, error) {
	res, err := r.DB.Exec(`UPDATE recordings SET play_count = play_count + 1 WHERE id = ?`, recordingID)
	if err != nil {
		return 0, fmt.Errorf("failed to increment play count for recording %s: %w", recordingID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read play count update result: %w", err)
	}
	if affected == 0 {
		return 0, sql.ErrNoRows
	}

	var playCount int64
	if err := r.DB.QueryRow(`SELECT play_count FROM recordings WHERE id = ?`, recordingID).Scan(&playCount); err != nil {
		return 0, fmt.Errorf("failed to read play count for recording %s: %w", recordingID, err)
	}
	return playCount, nil
}

// DeleteRecording removes the document and its like memberships.
func (r *mysqlRecordingRepository) DeleteRecording(id string) error {
	if _, err := r.DB.Exec(`DELETE FROM recording_likes WHERE recording_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete likes for recording %s: %w", id, err)
	}
	if _, err := r.DB.Exec(`DELETE FROM recordings WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete recording %s: %w", id, err)
	}
	return nil
}

// AllFileURLs returns every audio URL referenced by a recording. Consumed by
// the orphan sweep.
func (r *mysqlRecordingRepository) AllFileURLs() ([]string, error) {
	rows, err := r.DB.Query(`SELECT audio_url FROM recordings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recording file urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan recording file url: %w", err)
		}
		if url != "" {
			urls = append(urls, url)
		}
	}
	return urls, rows.Err()
}
