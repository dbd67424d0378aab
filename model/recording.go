package model

import (
	"time"

	"github.com/google/uuid"
)

// Recording is a user-submitted karaoke take over a catalog song.
// Lifecycle: created after the audio upload succeeds, mutated by like toggles
// and play-count increments, removed by owner-only delete (which also
// reclaims the backing file).
type Recording struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	SongID    int64     `json:"songId"`
	Title     string    `json:"title"`
	AudioURL  string    `json:"audioUrl"`
	Duration  float64   `json:"duration"` // seconds, client-reported
	IsPublic  bool      `json:"isPublic"`
	PlayCount int64     `json:"playCount"`
	CreatedAt time.Time `json:"createdAt"`

	// Joined fields, not columns of the recordings table.
	Likes   int64        `json:"likes"`
	IsLiked bool         `json:"isLiked"`
	Song    *SongSummary `json:"song,omitempty"`
	User    *UserSummary `json:"user,omitempty"`
}

// NewRecording builds a recording ready for insert.
func NewRecording(userID, songID int64, title, audioURL string, duration float64, isPublic bool) *Recording {
	return &Recording{
		ID:        uuid.New().String(),
		UserID:    userID,
		SongID:    songID,
		Title:     title,
		AudioURL:  audioURL,
		Duration:  duration,
		IsPublic:  isPublic,
		CreatedAt: time.Now(),
	}
}
