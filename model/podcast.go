package model

import "time"

// PodcastShow is a hosted podcast feed.
type PodcastShow struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	OwnerID     int64     `json:"ownerId" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Author      string    `json:"author" gorm:"size:255"`
	Description string    `json:"description" gorm:"type:text"`
	CoverURL    string    `json:"coverUrl" gorm:"size:512"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Episodes []PodcastEpisode `json:"episodes,omitempty" gorm:"foreignKey:ShowID"`
}

// PodcastEpisode is one uploaded episode of a show.
type PodcastEpisode struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ShowID      int64     `json:"showId" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	AudioURL    string    `json:"audioUrl" gorm:"size:512;not null"`
	Duration    float64   `json:"duration"`
	PublishedAt time.Time `json:"publishedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}
