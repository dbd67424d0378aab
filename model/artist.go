package model

import "time"

// ArtistFollow records that a user follows an artist. Artists are free-text
// names from the catalog, there is no artist entity of its own.
type ArtistFollow struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"userId" gorm:"uniqueIndex:idx_user_artist;not null"`
	Artist    string    `json:"artist" gorm:"size:255;uniqueIndex:idx_user_artist;not null"`
	CreatedAt time.Time `json:"createdAt"`
}
