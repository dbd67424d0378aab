package model

import "time"

// Song represents a track in the catalog. AudioURL is always dereferenceable
// once the song is playable: root-relative in local storage mode, absolute in
// cloud mode.
type Song struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Duration   float64   `json:"duration"` // seconds
	AudioURL   string    `json:"audioUrl"`
	Lyrics     string    `json:"lyrics"` // empty string means absent
	CoverImage string    `json:"coverImage,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SongSummary is the subset of song fields joined into recording listings.
type SongSummary struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	CoverImage string `json:"coverImage,omitempty"`
}

// Summary returns the joined-view projection of the song.
func (s *Song) Summary() SongSummary {
	return SongSummary{ID: s.ID, Title: s.Title, Artist: s.Artist, CoverImage: s.CoverImage}
}
