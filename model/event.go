package model

import "time"

// Event is a concert or live-show listing.
type Event struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Artist      string    `json:"artist" gorm:"size:255;index"`
	Venue       string    `json:"venue" gorm:"size:255"`
	City        string    `json:"city" gorm:"size:100;index"`
	Description string    `json:"description" gorm:"type:text"`
	ImageURL    string    `json:"imageUrl" gorm:"size:512"`
	StartsAt    time.Time `json:"startsAt" gorm:"index"`
	CreatedBy   int64     `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
