package model

import "time"

// Playlist is a user-owned ordered collection of songs.
type Playlist struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Songs []*Song `json:"songs,omitempty"`
}

// PlaylistSong is the membership row binding a song to a playlist.
type PlaylistSong struct {
	PlaylistID int64     `json:"playlistId"`
	SongID     int64     `json:"songId"`
	Position   int       `json:"position"`
	AddedAt    time.Time `json:"addedAt"`
}
